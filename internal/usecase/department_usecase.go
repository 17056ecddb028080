package usecase

import (
	"context"
	"errors"

	"smart-opd/internal/converter"
	"smart-opd/internal/delivery/dto"
	"smart-opd/internal/domain/entity"
	"smart-opd/internal/domain/repository"
	"smart-opd/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDepartmentExists = errors.New("department name or prefix already in use")
	ErrDepartmentInUse  = errors.New("department still has tokens")
)

type DepartmentUsecase interface {
	Create(ctx context.Context, req *dto.CreateDepartmentRequest, actorID *uuid.UUID) (*dto.DepartmentResponse, error)
	Update(ctx context.Context, id int, req *dto.UpdateDepartmentRequest, actorID *uuid.UUID) (*dto.DepartmentResponse, error)
	Delete(ctx context.Context, id int, actorID *uuid.UUID) error
	Get(ctx context.Context, id int) (*dto.DepartmentResponse, error)
	GetAll(ctx context.Context) (*dto.DepartmentListResponse, error)
}

type departmentUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	departmentRepo repository.DepartmentRepository
	tokenRepo      repository.TokenRepository
	auditService   service.AuditService
}

func NewDepartmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	departmentRepo repository.DepartmentRepository,
	tokenRepo repository.TokenRepository,
	auditService service.AuditService,
) DepartmentUsecase {
	return &departmentUsecase{
		db:             db,
		log:            log,
		departmentRepo: departmentRepo,
		tokenRepo:      tokenRepo,
		auditService:   auditService,
	}
}

func (u *departmentUsecase) Create(ctx context.Context, req *dto.CreateDepartmentRequest, actorID *uuid.UUID) (*dto.DepartmentResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	department := &entity.Department{
		Name:                   req.Name,
		Prefix:                 req.Prefix,
		AvgConsultationMinutes: req.AvgConsultationMinutes,
	}
	if department.AvgConsultationMinutes <= 0 {
		department.AvgConsultationMinutes = 10
	}

	if err := u.departmentRepo.Create(tx, department); err != nil {
		if isDuplicateKeyError(err, "") {
			return nil, ErrDepartmentExists
		}
		u.log.Warnf("Failed to create department %s: %+v", req.Name, err)
		return nil, err
	}

	if err := u.auditService.Record(tx, actorID, entity.AuditActionDepartmentCreate, "department", department.Name, nil, map[string]interface{}{
		"prefix": department.Prefix,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit department create: %+v", err)
		return nil, err
	}

	return converter.DepartmentToResponse(department), nil
}

func (u *departmentUsecase) Update(ctx context.Context, id int, req *dto.UpdateDepartmentRequest, actorID *uuid.UUID) (*dto.DepartmentResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	department, err := u.departmentRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find department %d: %+v", id, err)
		return nil, err
	}
	if department == nil {
		return nil, ErrDepartmentNotFound
	}

	old := *department
	if req.Name != "" {
		department.Name = req.Name
	}
	if req.Prefix != "" {
		department.Prefix = req.Prefix
	}
	if req.AvgConsultationMinutes != nil && *req.AvgConsultationMinutes > 0 {
		department.AvgConsultationMinutes = *req.AvgConsultationMinutes
	}

	if err := u.departmentRepo.Update(tx, department); err != nil {
		if isDuplicateKeyError(err, "") {
			return nil, ErrDepartmentExists
		}
		u.log.Warnf("Failed to update department %d: %+v", id, err)
		return nil, err
	}

	if err := u.auditService.Record(tx, actorID, entity.AuditActionDepartmentUpdate, "department", department.Name, map[string]interface{}{
		"name": old.Name, "prefix": old.Prefix, "avg_consultation_minutes": old.AvgConsultationMinutes,
	}, map[string]interface{}{
		"name": department.Name, "prefix": department.Prefix, "avg_consultation_minutes": department.AvgConsultationMinutes,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit department update: %+v", err)
		return nil, err
	}

	return converter.DepartmentToResponse(department), nil
}

// Delete removes a department. Departments that ever issued tokens keep their
// history and cannot be deleted.
func (u *departmentUsecase) Delete(ctx context.Context, id int, actorID *uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	department, err := u.departmentRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find department %d: %+v", id, err)
		return err
	}
	if department == nil {
		return ErrDepartmentNotFound
	}

	tokens, err := u.tokenRepo.CountByDepartment(tx, department.Name)
	if err != nil {
		u.log.Warnf("Failed to count tokens for %s: %+v", department.Name, err)
		return err
	}
	if tokens > 0 {
		return ErrDepartmentInUse
	}

	if _, err := u.departmentRepo.Delete(tx, id); err != nil {
		if isForeignKeyError(err) {
			return ErrDepartmentInUse
		}
		u.log.Warnf("Failed to delete department %d: %+v", id, err)
		return err
	}

	if err := u.auditService.Record(tx, actorID, entity.AuditActionDepartmentDelete, "department", department.Name, map[string]interface{}{
		"prefix": department.Prefix,
	}, nil); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit department delete: %+v", err)
		return err
	}

	return nil
}

func (u *departmentUsecase) Get(ctx context.Context, id int) (*dto.DepartmentResponse, error) {
	department, err := u.departmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find department %d: %+v", id, err)
		return nil, err
	}
	if department == nil {
		return nil, ErrDepartmentNotFound
	}
	return converter.DepartmentToResponse(department), nil
}

func (u *departmentUsecase) GetAll(ctx context.Context) (*dto.DepartmentListResponse, error) {
	departments, err := u.departmentRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list departments: %+v", err)
		return nil, err
	}

	return &dto.DepartmentListResponse{
		Departments: converter.DepartmentsToResponses(departments),
		Total:       len(departments),
	}, nil
}
