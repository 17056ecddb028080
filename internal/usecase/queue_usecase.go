package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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
	ErrTokenNotFound          = errors.New("token not found")
	ErrDepartmentNotFound     = errors.New("department not found")
	ErrConsultationInProgress = errors.New("a patient is already in consultation")
	ErrNoActiveConsultation   = errors.New("no patient is currently called")
	ErrNoApprovedDoctor       = errors.New("department has no approved doctor")
	ErrQueuePaused            = errors.New("department queue is paused")
	ErrInvalidTransition      = errors.New("invalid queue transition")
)

const liveQueueLimit = 10

type QueueUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.TokenResponse, error)
	CallNext(ctx context.Context, department string, actorID *uuid.UUID) (*dto.CallNextResponse, error)
	CompleteCurrent(ctx context.Context, department string, actorID *uuid.UUID) (*dto.TokenResponse, error)
	MarkMissed(ctx context.Context, department string, actorID *uuid.UUID) (*dto.TokenResponse, error)
	CurrentlyServing(ctx context.Context, department string) (*dto.CurrentServingResponse, error)
	LiveQueue(ctx context.Context, department string) (*dto.LiveQueueResponse, error)
	ResetQueue(ctx context.Context, department string, actorID *uuid.UUID) (*dto.ResetQueueResponse, error)
	TokenStatus(ctx context.Context, tokenID uuid.UUID) (*dto.TokenStatusResponse, error)
	GetAllTokens(ctx context.Context, department string, page, limit int) (*dto.TokenListResponse, error)
}

// QueueEventSink receives queue change broadcasts and holds the live-queue
// snapshot cache. Satisfied by service.QueueEventService.
type QueueEventSink interface {
	Publish(ctx context.Context, department, event string, tokenNumber int, payload interface{})
	CachedLiveQueue(ctx context.Context, department string) (*dto.LiveQueueResponse, bool)
	StoreLiveQueue(ctx context.Context, department string, snapshot *dto.LiveQueueResponse)
}

type queueUsecase struct {
	log            *logrus.Logger
	tokenRepo      repository.TokenRepository
	departmentRepo repository.DepartmentRepository
	doctorRepo     repository.DoctorRepository
	auditService   service.AuditService
	events         QueueEventSink

	read func(ctx context.Context) *gorm.DB
	inTx func(ctx context.Context, fn func(tx *gorm.DB) error) error
}

func NewQueueUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	tokenRepo repository.TokenRepository,
	departmentRepo repository.DepartmentRepository,
	doctorRepo repository.DoctorRepository,
	auditService service.AuditService,
	events QueueEventSink,
) QueueUsecase {
	return &queueUsecase{
		log:            log,
		tokenRepo:      tokenRepo,
		departmentRepo: departmentRepo,
		doctorRepo:     doctorRepo,
		auditService:   auditService,
		events:         events,
		read: func(ctx context.Context) *gorm.DB {
			return db.WithContext(ctx)
		},
		inTx: func(ctx context.Context, fn func(tx *gorm.DB) error) error {
			return db.WithContext(ctx).Transaction(fn)
		},
	}
}

// RegisterPatient allocates the next token number in the department and
// creates the token in one transaction. A duplicate-number conflict from a
// concurrent registration is retried once; the second failure surfaces.
func (u *queueUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.TokenResponse, error) {
	dept, err := u.resolveDepartment(ctx, req.Department)
	if err != nil {
		return nil, err
	}

	var token *entity.Token
	for attempt := 0; attempt < 2; attempt++ {
		token, err = u.allocateToken(ctx, dept, req)
		if err == nil {
			break
		}
		if !isDuplicateKeyError(err, "idx_tokens_department_number") {
			u.log.Warnf("Failed to register patient in %s: %+v", dept.Name, err)
			return nil, err
		}
		u.log.Infof("Token number conflict in %s, retrying allocation", dept.Name)
	}
	if err != nil {
		u.log.Warnf("Token allocation kept conflicting in %s: %+v", dept.Name, err)
		return nil, err
	}

	u.events.Publish(ctx, dept.Name, service.QueueEventRegistered, token.TokenNumber, nil)
	u.log.Infof("Patient registered: department=%s, token=%d", dept.Name, token.TokenNumber)

	return converter.TokenToResponse(token, dept.Prefix), nil
}

func (u *queueUsecase) allocateToken(ctx context.Context, dept *entity.Department, req *dto.RegisterPatientRequest) (*entity.Token, error) {
	var token *entity.Token
	err := u.inTx(ctx, func(tx *gorm.DB) error {
		maxNumber, err := u.tokenRepo.MaxTokenNumberForUpdate(tx, dept.Name)
		if err != nil {
			return err
		}

		token = &entity.Token{
			PatientName: strings.TrimSpace(req.Name),
			Phone:       req.Phone,
			Age:         req.Age,
			Gender:      req.Gender,
			Symptoms:    req.Symptoms,
			Department:  dept.Name,
			TokenNumber: maxNumber + 1,
			Status:      entity.TokenStatusWaiting,
		}

		if err := u.tokenRepo.Create(tx, token); err != nil {
			return err
		}

		return u.auditService.Record(tx, nil, entity.AuditActionTokenRegister, "token", token.ID.String(), nil, map[string]interface{}{
			"token_number": token.TokenNumber,
			"department":   dept.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

// CallNext promotes the lowest-numbered waiting token to called. It refuses
// while another token is already called in the department, and while the
// department has no approved doctor with an unpaused queue.
func (u *queueUsecase) CallNext(ctx context.Context, department string, actorID *uuid.UUID) (*dto.CallNextResponse, error) {
	dept, err := u.resolveDepartment(ctx, department)
	if err != nil {
		return nil, err
	}

	if err := u.checkDoctorGate(ctx, dept.Name); err != nil {
		return nil, err
	}

	var (
		next     *entity.Token
		upcoming *entity.Token
	)
	err = u.inTx(ctx, func(tx *gorm.DB) error {
		// Lock the department row before the called-check. When no token is
		// called there is no row for the check to lock, so two concurrent
		// advances could both pass it and promote two tokens; the department
		// row gives them a common lock to serialize on.
		if err := u.lockDepartment(tx, dept); err != nil {
			return err
		}

		current, err := u.tokenRepo.FindCalledForUpdate(tx, dept.Name)
		if err != nil {
			return err
		}
		if current != nil {
			return ErrConsultationInProgress
		}

		next, err = u.tokenRepo.FindFirstWaitingForUpdate(tx, dept.Name)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}

		if !entity.ValidTransition(entity.ActionCallNext, next.Status) {
			return ErrInvalidTransition
		}

		now := time.Now().UTC()
		next.Status = entity.TokenStatusCalled
		next.CalledAt = &now
		if err := u.tokenRepo.Update(tx, next); err != nil {
			return err
		}

		upcoming, err = u.tokenRepo.FindFirstWaiting(tx, dept.Name)
		if err != nil {
			return err
		}

		return u.auditService.Record(tx, actorID, entity.AuditActionQueueCall, "token", next.ID.String(), string(entity.TokenStatusWaiting), string(entity.TokenStatusCalled))
	})
	if err != nil {
		if !isQueueStateError(err) {
			u.log.Warnf("Failed to call next token in %s: %+v", dept.Name, err)
		}
		return nil, err
	}

	if next == nil {
		// Queue empty is informational, not an error; nothing was mutated.
		return &dto.CallNextResponse{Message: "No more patients in queue"}, nil
	}

	u.events.Publish(ctx, dept.Name, service.QueueEventCalled, next.TokenNumber, nil)

	resp := &dto.CallNextResponse{
		CalledToken: converter.TokenToResponse(next, dept.Prefix),
		Message:     fmt.Sprintf("Token %d called", next.TokenNumber),
	}
	if upcoming != nil {
		n := upcoming.TokenNumber
		resp.NextToken = &n
	}
	return resp, nil
}

// CompleteCurrent finishes the consultation of the department's called token.
func (u *queueUsecase) CompleteCurrent(ctx context.Context, department string, actorID *uuid.UUID) (*dto.TokenResponse, error) {
	return u.transitionCurrent(ctx, department, actorID, entity.ActionComplete, entity.TokenStatusCompleted, entity.AuditActionQueueComplete, service.QueueEventCompleted)
}

// MarkMissed records that the called patient did not show up.
func (u *queueUsecase) MarkMissed(ctx context.Context, department string, actorID *uuid.UUID) (*dto.TokenResponse, error) {
	return u.transitionCurrent(ctx, department, actorID, entity.ActionMiss, entity.TokenStatusMissed, entity.AuditActionQueueMiss, service.QueueEventMissed)
}

func (u *queueUsecase) transitionCurrent(ctx context.Context, department string, actorID *uuid.UUID, action string, newStatus entity.TokenStatus, auditAction, event string) (*dto.TokenResponse, error) {
	dept, err := u.resolveDepartment(ctx, department)
	if err != nil {
		return nil, err
	}

	var current *entity.Token
	err = u.inTx(ctx, func(tx *gorm.DB) error {
		if err := u.lockDepartment(tx, dept); err != nil {
			return err
		}

		current, err = u.tokenRepo.FindCalledForUpdate(tx, dept.Name)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNoActiveConsultation
		}

		if !entity.ValidTransition(action, current.Status) {
			return ErrInvalidTransition
		}

		oldStatus := current.Status
		current.Status = newStatus
		if newStatus == entity.TokenStatusCompleted {
			now := time.Now().UTC()
			current.CompletedAt = &now
		}

		if err := u.tokenRepo.Update(tx, current); err != nil {
			return err
		}

		return u.auditService.Record(tx, actorID, auditAction, "token", current.ID.String(), string(oldStatus), string(newStatus))
	})
	if err != nil {
		if !isQueueStateError(err) {
			u.log.Warnf("Failed to %s token in %s: %+v", action, dept.Name, err)
		}
		return nil, err
	}

	u.events.Publish(ctx, dept.Name, event, current.TokenNumber, nil)

	return converter.TokenToResponse(current, dept.Prefix), nil
}

func (u *queueUsecase) CurrentlyServing(ctx context.Context, department string) (*dto.CurrentServingResponse, error) {
	dept, err := u.resolveDepartment(ctx, department)
	if err != nil {
		return nil, err
	}

	current, err := u.tokenRepo.FindCalled(u.read(ctx), dept.Name)
	if err != nil {
		u.log.Warnf("Failed to find current token in %s: %+v", dept.Name, err)
		return nil, err
	}

	resp := &dto.CurrentServingResponse{}
	if current != nil {
		resp.CurrentToken = current.TokenNumber
		resp.Patient = converter.TokenToResponse(current, dept.Prefix)
	}
	return resp, nil
}

// LiveQueue builds the public display snapshot: current serving plus the next
// waiting tokens. Snapshots are served from the Redis cache within its TTL.
func (u *queueUsecase) LiveQueue(ctx context.Context, department string) (*dto.LiveQueueResponse, error) {
	dept, err := u.resolveDepartment(ctx, department)
	if err != nil {
		return nil, err
	}

	if cached, ok := u.events.CachedLiveQueue(ctx, dept.Name); ok {
		return cached, nil
	}

	db := u.read(ctx)

	current, err := u.tokenRepo.FindCalled(db, dept.Name)
	if err != nil {
		u.log.Warnf("Failed to find current token in %s: %+v", dept.Name, err)
		return nil, err
	}

	waiting, err := u.tokenRepo.FindWaiting(db, dept.Name, liveQueueLimit)
	if err != nil {
		u.log.Warnf("Failed to list waiting tokens in %s: %+v", dept.Name, err)
		return nil, err
	}

	totalWaiting, err := u.tokenRepo.CountWaiting(db, dept.Name)
	if err != nil {
		u.log.Warnf("Failed to count waiting tokens in %s: %+v", dept.Name, err)
		return nil, err
	}

	snapshot := &dto.LiveQueueResponse{
		Department:     dept.Name,
		CurrentServing: converter.TokenToResponse(current, dept.Prefix),
		WaitingQueue:   converter.TokensToResponses(waiting, dept.Prefix),
		TotalWaiting:   totalWaiting,
		LastUpdated:    time.Now().UTC(),
	}

	u.events.StoreLiveQueue(ctx, dept.Name, snapshot)

	return snapshot, nil
}

// ResetQueue flips every completed token of the department back to waiting.
func (u *queueUsecase) ResetQueue(ctx context.Context, department string, actorID *uuid.UUID) (*dto.ResetQueueResponse, error) {
	dept, err := u.resolveDepartment(ctx, department)
	if err != nil {
		return nil, err
	}

	var requeued int64
	err = u.inTx(ctx, func(tx *gorm.DB) error {
		requeued, err = u.tokenRepo.RequeueCompleted(tx, dept.Name)
		if err != nil {
			return err
		}

		return u.auditService.Record(tx, actorID, entity.AuditActionQueueReset, "department", dept.Name, nil, map[string]interface{}{
			"tokens_requeued": requeued,
		})
	})
	if err != nil {
		u.log.Warnf("Failed to reset queue in %s: %+v", dept.Name, err)
		return nil, err
	}

	u.events.Publish(ctx, dept.Name, service.QueueEventReset, 0, map[string]interface{}{
		"tokens_requeued": requeued,
	})
	u.log.Infof("Queue reset: department=%s, requeued=%d", dept.Name, requeued)

	return &dto.ResetQueueResponse{
		Department:     dept.Name,
		TokensRequeued: requeued,
		Message:        "Queue reset successfully",
	}, nil
}

// TokenStatus answers the patient status page: position in line, the token
// currently being served and the estimated wait.
func (u *queueUsecase) TokenStatus(ctx context.Context, tokenID uuid.UUID) (*dto.TokenStatusResponse, error) {
	db := u.read(ctx)

	token, err := u.tokenRepo.FindByID(db, tokenID)
	if err != nil {
		u.log.Warnf("Failed to find token %s: %+v", tokenID, err)
		return nil, err
	}
	if token == nil {
		return nil, ErrTokenNotFound
	}

	dept, err := u.departmentRepo.FindByName(db, token.Department)
	if err != nil {
		u.log.Warnf("Failed to find department %s: %+v", token.Department, err)
		return nil, err
	}
	if dept == nil {
		return nil, ErrDepartmentNotFound
	}

	position := 0
	if token.IsWaiting() {
		ahead, err := u.tokenRepo.CountWaitingBefore(db, dept.Name, token.TokenNumber)
		if err != nil {
			u.log.Warnf("Failed to count tokens ahead of %d in %s: %+v", token.TokenNumber, dept.Name, err)
			return nil, err
		}
		position = int(ahead)
	}

	current, err := u.tokenRepo.FindCalled(db, dept.Name)
	if err != nil {
		u.log.Warnf("Failed to find current token in %s: %+v", dept.Name, err)
		return nil, err
	}

	resp := &dto.TokenStatusResponse{
		TokenNumber:          token.TokenNumber,
		DisplayCode:          entity.DisplayCode(dept.Prefix, token.TokenNumber),
		Department:           dept.Name,
		Status:               string(token.Status),
		Position:             position,
		EstimatedWaitMinutes: estimateWaitMinutes(token.Status, position, current != nil, dept.AvgConsultationMinutes),
	}
	if current != nil {
		n := current.TokenNumber
		resp.CurrentlyServing = &n
	}
	return resp, nil
}

func (u *queueUsecase) GetAllTokens(ctx context.Context, department string, page, limit int) (*dto.TokenListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	tokens, total, err := u.tokenRepo.FindPage(u.read(ctx), department, (page-1)*limit, limit)
	if err != nil {
		u.log.Warnf("Failed to list tokens: %+v", err)
		return nil, err
	}

	return &dto.TokenListResponse{
		Tokens: converter.TokensToResponses(tokens, ""),
		Total:  total,
	}, nil
}

// lockDepartment takes the per-department mutation lock.
func (u *queueUsecase) lockDepartment(tx *gorm.DB, dept *entity.Department) error {
	locked, err := u.departmentRepo.FindByIDForUpdate(tx, dept.ID)
	if err != nil {
		return err
	}
	if locked == nil {
		return ErrDepartmentNotFound
	}
	return nil
}

// resolveDepartment maps an optional department name to its row; empty names
// fall back to the default department so the single-queue deployment works
// without clients ever naming one.
func (u *queueUsecase) resolveDepartment(ctx context.Context, name string) (*entity.Department, error) {
	if name == "" {
		name = entity.DefaultDepartment
	}

	dept, err := u.departmentRepo.FindByName(u.read(ctx), name)
	if err != nil {
		u.log.Warnf("Failed to find department %s: %+v", name, err)
		return nil, err
	}
	if dept == nil {
		return nil, ErrDepartmentNotFound
	}
	return dept, nil
}

// checkDoctorGate enforces that only departments with an approved doctor whose
// queue is not paused may have patients advanced.
func (u *queueUsecase) checkDoctorGate(ctx context.Context, department string) error {
	doctors, err := u.doctorRepo.FindApprovedByDepartment(u.read(ctx), department)
	if err != nil {
		u.log.Warnf("Failed to find doctors for %s: %+v", department, err)
		return err
	}
	if len(doctors) == 0 {
		return ErrNoApprovedDoctor
	}

	for _, doctor := range doctors {
		if doctor.CanAdvanceQueue() {
			return nil
		}
	}
	return ErrQueuePaused
}

// isQueueStateError reports whether err is an expected queue-state refusal
// rather than an infrastructure failure worth a warning.
func isQueueStateError(err error) bool {
	return errors.Is(err, ErrConsultationInProgress) ||
		errors.Is(err, ErrNoActiveConsultation) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrDepartmentNotFound)
}

// estimateWaitMinutes mirrors the status page maths: zero once the token has
// left the waiting state, a half slot when the token is first in line while
// someone is being served, otherwise position times the average consultation.
func estimateWaitMinutes(status entity.TokenStatus, position int, serving bool, avgMinutes int) int {
	if status != entity.TokenStatusWaiting {
		return 0
	}
	if position == 0 && serving {
		return avgMinutes / 2
	}
	return position * avgMinutes
}
