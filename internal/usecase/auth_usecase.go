package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smart-opd/internal/converter"
	"smart-opd/internal/delivery/dto"
	"smart-opd/internal/domain/entity"
	"smart-opd/internal/domain/repository"
	"smart-opd/internal/service"
	"smart-opd/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrLicenseTaken       = errors.New("license number already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type AuthUsecase interface {
	RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthTokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthTokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, tokenID string) error
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	redisClient    *redis.Client
	jwtService     *jwt.JWTService
	userRepo       repository.UserRepository
	roleRepo       repository.RoleRepository
	doctorRepo     repository.DoctorRepository
	departmentRepo repository.DepartmentRepository
	auditService   service.AuditService
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	redisClient *redis.Client,
	jwtService *jwt.JWTService,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	doctorRepo repository.DoctorRepository,
	departmentRepo repository.DepartmentRepository,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:             db,
		log:            log,
		redisClient:    redisClient,
		jwtService:     jwtService,
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		doctorRepo:     doctorRepo,
		departmentRepo: departmentRepo,
		auditService:   auditService,
	}
}

// RegisterDoctor creates a user with the doctor role and a pending profile.
// The account cannot advance any queue until an admin approves it.
func (u *authUsecase) RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.UserResponse, error) {
	dept, err := u.departmentRepo.FindByName(u.db.WithContext(ctx), req.Department)
	if err != nil {
		u.log.Warnf("Failed to find department %s: %+v", req.Department, err)
		return nil, err
	}
	if dept == nil {
		return nil, ErrDepartmentNotFound
	}

	existing, err := u.userRepo.FindByEmail(u.db.WithContext(ctx), req.Email)
	if err != nil {
		u.log.Warnf("Failed to check email %s: %+v", req.Email, err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	user := &entity.User{
		RoleID:   entity.RoleIDDoctor,
		Email:    req.Email,
		Password: string(hashedPassword),
		FullName: req.FullName,
	}
	if err := u.userRepo.Create(tx, user); err != nil {
		if isDuplicateKeyError(err, "") {
			return nil, ErrEmailTaken
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	profile := &entity.DoctorProfile{
		UserID:          user.ID,
		Department:      dept.Name,
		LicenseNumber:   req.LicenseNumber,
		ExperienceYears: req.ExperienceYears,
		ApprovalStatus:  entity.DoctorStatusPending,
	}
	if err := u.doctorRepo.Create(tx, profile); err != nil {
		if isDuplicateKeyError(err, "") {
			return nil, ErrLicenseTaken
		}
		u.log.Warnf("Failed to create doctor profile: %+v", err)
		return nil, err
	}

	if err := u.auditService.Record(tx, &user.ID, entity.AuditActionDoctorRegister, "user", user.ID.String(), nil, map[string]interface{}{
		"email":      user.Email,
		"department": dept.Name,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit doctor registration: %+v", err)
		return nil, err
	}

	u.log.Infof("Doctor registered: email=%s, department=%s", user.Email, dept.Name)

	role, err := u.roleRepo.FindByID(u.db.WithContext(ctx), user.RoleID)
	if err == nil && role != nil {
		user.Role = *role
	}
	user.DoctorProfile = profile
	profile.User = *user

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthTokenResponse, error) {
	user, err := u.userRepo.FindByEmail(u.db.WithContext(ctx), req.Email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.IsActive != nil && !*user.IsActive {
		return nil, ErrUserInactive
	}

	tokens, err := u.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := u.auditService.Record(u.db.WithContext(ctx), &user.ID, entity.AuditActionUserLogin, "user", user.ID.String(), nil, nil); err != nil {
		u.log.Warnf("Failed to audit login: %+v", err)
	}

	return tokens, nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthTokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	key := tokenKey("refresh_token", claims.UserID, claims.TokenID)
	exists, err := u.redisClient.Exists(ctx, key).Result()
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return nil, err
	}
	if exists == 0 {
		return nil, ErrInvalidToken
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", claims.UserID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, ErrUserInactive
	}

	// Rotate: the old refresh token is single-use.
	if err := u.redisClient.Del(ctx, key).Err(); err != nil {
		u.log.Warnf("Failed to revoke refresh token: %+v", err)
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) Logout(ctx context.Context, userID uuid.UUID, tokenID string) error {
	keys := []string{
		tokenKey("access_token", userID, tokenID),
		tokenKey("refresh_token", userID, tokenID),
	}
	if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
		u.log.Warnf("Failed to revoke tokens: %+v", err)
		return err
	}

	if err := u.auditService.Record(u.db.WithContext(ctx), &userID, entity.AuditActionUserLogout, "user", userID.String(), nil, nil); err != nil {
		u.log.Warnf("Failed to audit logout: %+v", err)
	}
	return nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return converter.UserToResponse(user), nil
}

// issueTokens mints an access/refresh pair and allowlists both token IDs in
// Redis with TTLs matching their expiries.
func (u *authUsecase) issueTokens(ctx context.Context, user *entity.User) (*dto.AuthTokenResponse, error) {
	department := ""
	if user.DoctorProfile != nil {
		department = user.DoctorProfile.Department
	}

	accessToken, accessID, err := u.jwtService.GenerateAccessToken(user.ID, user.Email, user.RoleID, department)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshID, err := u.jwtService.GenerateRefreshToken(user.ID, user.Email, user.RoleID, department)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.redisClient.Set(ctx, tokenKey("access_token", user.ID, accessID), "1", u.jwtService.GetAccessExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store access token: %+v", err)
		return nil, err
	}
	if err := u.redisClient.Set(ctx, tokenKey("refresh_token", user.ID, refreshID), "1", u.jwtService.GetRefreshExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store refresh token: %+v", err)
		return nil, err
	}

	return &dto.AuthTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry() / time.Second),
	}, nil
}

func tokenKey(kind string, userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", kind, userID, tokenID)
}
