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
	ErrDoctorNotFound   = errors.New("doctor not found")
	ErrDoctorNotPending = errors.New("doctor is not awaiting review")
	ErrDoctorNotActive  = errors.New("doctor is not approved")
)

type DoctorUsecase interface {
	Approve(ctx context.Context, doctorID uuid.UUID, actorID *uuid.UUID) (*dto.DoctorResponse, error)
	Reject(ctx context.Context, doctorID uuid.UUID, actorID *uuid.UUID) (*dto.DoctorResponse, error)
	SetQueuePaused(ctx context.Context, doctorID uuid.UUID, paused bool) (*dto.DoctorResponse, error)
	GetAll(ctx context.Context, approvalStatus string) (*dto.DoctorListResponse, error)
	Get(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
}

type doctorUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	doctorRepo   repository.DoctorRepository
	auditService service.AuditService
}

func NewDoctorUsecase(db *gorm.DB, log *logrus.Logger, doctorRepo repository.DoctorRepository, auditService service.AuditService) DoctorUsecase {
	return &doctorUsecase{
		db:           db,
		log:          log,
		doctorRepo:   doctorRepo,
		auditService: auditService,
	}
}

// Approve moves a pending doctor to approved, unlocking queue advancement for
// their department.
func (u *doctorUsecase) Approve(ctx context.Context, doctorID uuid.UUID, actorID *uuid.UUID) (*dto.DoctorResponse, error) {
	return u.review(ctx, doctorID, actorID, entity.DoctorStatusApproved, entity.AuditActionDoctorApprove)
}

// Reject declines a pending doctor registration.
func (u *doctorUsecase) Reject(ctx context.Context, doctorID uuid.UUID, actorID *uuid.UUID) (*dto.DoctorResponse, error) {
	return u.review(ctx, doctorID, actorID, entity.DoctorStatusRejected, entity.AuditActionDoctorReject)
}

func (u *doctorUsecase) review(ctx context.Context, doctorID uuid.UUID, actorID *uuid.UUID, newStatus entity.DoctorApprovalStatus, auditAction string) (*dto.DoctorResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	profile, err := u.doctorRepo.FindByUserID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}
	if !profile.IsPending() {
		return nil, ErrDoctorNotPending
	}

	oldStatus := profile.ApprovalStatus
	profile.ApprovalStatus = newStatus
	if err := u.doctorRepo.Update(tx, profile); err != nil {
		u.log.Warnf("Failed to update doctor %s: %+v", doctorID, err)
		return nil, err
	}

	if err := u.auditService.Record(tx, actorID, auditAction, "doctor", doctorID.String(), string(oldStatus), string(newStatus)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit doctor review: %+v", err)
		return nil, err
	}

	u.log.Infof("Doctor %s: %s -> %s", doctorID, oldStatus, newStatus)

	return converter.DoctorToResponse(profile), nil
}

// SetQueuePaused lets an approved doctor pause or resume their own queue.
func (u *doctorUsecase) SetQueuePaused(ctx context.Context, doctorID uuid.UUID, paused bool) (*dto.DoctorResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	profile, err := u.doctorRepo.FindByUserID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}
	if !profile.IsApproved() {
		return nil, ErrDoctorNotActive
	}

	if profile.QueuePaused == paused {
		if err := tx.Commit().Error; err != nil {
			return nil, err
		}
		return converter.DoctorToResponse(profile), nil
	}

	profile.QueuePaused = paused
	if err := u.doctorRepo.Update(tx, profile); err != nil {
		u.log.Warnf("Failed to update doctor %s: %+v", doctorID, err)
		return nil, err
	}

	auditAction := entity.AuditActionQueuePause
	if !paused {
		auditAction = entity.AuditActionQueueResume
	}
	if err := u.auditService.Record(tx, &doctorID, auditAction, "doctor", doctorID.String(), !paused, paused); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit queue pause change: %+v", err)
		return nil, err
	}

	return converter.DoctorToResponse(profile), nil
}

func (u *doctorUsecase) GetAll(ctx context.Context, approvalStatus string) (*dto.DoctorListResponse, error) {
	profiles, err := u.doctorRepo.FindAll(u.db.WithContext(ctx), approvalStatus)
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(profiles),
		Total:   len(profiles),
	}, nil
}

func (u *doctorUsecase) Get(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	profile, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}
	return converter.DoctorToResponse(profile), nil
}
