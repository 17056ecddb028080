package bootstrap

import (
	"context"

	"smart-opd/config"
	deliveryhttp "smart-opd/internal/delivery/http"
	"smart-opd/internal/delivery/http/handler"
	"smart-opd/internal/delivery/http/middleware"
	"smart-opd/internal/domain/entity"
	"smart-opd/internal/infrastructure/cache"
	"smart-opd/internal/infrastructure/database"
	"smart-opd/internal/repository"
	"smart-opd/internal/service"
	"smart-opd/internal/usecase"
	"smart-opd/pkg/jwt"
	"smart-opd/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Router      *mux.Router
}

func NewApp() (*App, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.App.Env == "production" {
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetLevel(logrus.DebugLevel)
	}

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, err
	}

	// Repositories
	tokenRepo := repository.NewTokenRepository()
	departmentRepo := repository.NewDepartmentRepository()
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	doctorRepo := repository.NewDoctorRepository()
	auditRepo := repository.NewAuditLogRepository()

	// Services
	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()
	auditService := service.NewAuditService(log, auditRepo)
	eventService := service.NewQueueEventService(redisClient, log, cfg.Queue.LiveCacheTTL)

	// Usecases
	queueUsecase := usecase.NewQueueUsecase(db, log, tokenRepo, departmentRepo, doctorRepo, auditService, eventService)
	authUsecase := usecase.NewAuthUsecase(db, log, redisClient, jwtService, userRepo, roleRepo, doctorRepo, departmentRepo, auditService)
	doctorUsecase := usecase.NewDoctorUsecase(db, log, doctorRepo, auditService)
	departmentUsecase := usecase.NewDepartmentUsecase(db, log, departmentRepo, tokenRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditRepo)

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	router := deliveryhttp.NewRouter(deliveryhttp.RouterConfig{
		TokenHandler:      handler.NewTokenHandler(queueUsecase, customValidator),
		QueueHandler:      handler.NewQueueHandler(queueUsecase),
		AuthHandler:       handler.NewAuthHandler(authUsecase, customValidator),
		DoctorHandler:     handler.NewDoctorHandler(doctorUsecase),
		DepartmentHandler: handler.NewDepartmentHandler(departmentUsecase, customValidator),
		AuditLogHandler:   handler.NewAuditLogHandler(auditLogUsecase),
		AuthMiddleware:    authMiddleware,
	})

	app := &App{
		Config:      cfg,
		Log:         log,
		DB:          db,
		RedisClient: redisClient,
		Router:      router,
	}

	if err := app.seed(context.Background()); err != nil {
		return nil, err
	}

	return app, nil
}

// seed makes the system usable on first start: roles, the standard OPD
// departments and the bootstrap admin account. Every step is idempotent.
func (a *App) seed(ctx context.Context) error {
	db := a.DB.WithContext(ctx)
	roleRepo := repository.NewRoleRepository()
	departmentRepo := repository.NewDepartmentRepository()
	userRepo := repository.NewUserRepository()

	roles := []entity.Role{
		{ID: entity.RoleIDAdmin, RoleName: entity.RoleAdmin, Description: "Hospital administrator"},
		{ID: entity.RoleIDDoctor, RoleName: entity.RoleDoctor, Description: "Consulting doctor"},
	}
	for _, role := range roles {
		existing, err := roleRepo.FindByID(db, role.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			if err := roleRepo.Save(db, &role); err != nil {
				return err
			}
		}
	}

	departments := []entity.Department{
		{Name: "General Medicine", Prefix: "GEN", AvgConsultationMinutes: 10},
		{Name: "Cardiology", Prefix: "CAR", AvgConsultationMinutes: 15},
		{Name: "Pediatrics", Prefix: "PED", AvgConsultationMinutes: 10},
		{Name: "Orthopedics", Prefix: "ORT", AvgConsultationMinutes: 12},
		{Name: "Dermatology", Prefix: "DER", AvgConsultationMinutes: 8},
		{Name: "Gastroenterology", Prefix: "GAS", AvgConsultationMinutes: 12},
		{Name: "Neurology", Prefix: "NEU", AvgConsultationMinutes: 15},
	}
	for _, department := range departments {
		existing, err := departmentRepo.FindByName(db, department.Name)
		if err != nil {
			return err
		}
		if existing == nil {
			if err := departmentRepo.Create(db, &department); err != nil {
				return err
			}
			a.Log.Infof("Seeded department: %s (%s)", department.Name, department.Prefix)
		}
	}

	if a.Config.Admin.Email != "" && a.Config.Admin.Password != "" {
		existing, err := userRepo.FindByEmail(db, a.Config.Admin.Email)
		if err != nil {
			return err
		}
		if existing == nil {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(a.Config.Admin.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			admin := &entity.User{
				RoleID:   entity.RoleIDAdmin,
				Email:    a.Config.Admin.Email,
				Password: string(hashedPassword),
				FullName: "Administrator",
			}
			if err := userRepo.Create(db, admin); err != nil {
				return err
			}
			a.Log.Infof("Seeded admin account: %s", admin.Email)
		}
	}

	return nil
}
