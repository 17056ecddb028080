package usecase

import (
	"context"
	"io"
	"sort"
	"testing"

	"smart-opd/internal/delivery/dto"
	"smart-opd/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// fakeTokenStore is an in-memory TokenRepository. The db argument is unused,
// so tests can drive the usecase with a pass-through transaction.
type fakeTokenStore struct {
	tokens  []*entity.Token
	updates int
}

func (s *fakeTokenStore) Create(db *gorm.DB, token *entity.Token) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	copied := *token
	s.tokens = append(s.tokens, &copied)
	return nil
}

func (s *fakeTokenStore) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Token, error) {
	for _, t := range s.tokens {
		if t.ID == id {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeTokenStore) FindPage(db *gorm.DB, department string, offset, limit int) ([]entity.Token, int64, error) {
	var matched []entity.Token
	for _, t := range s.tokens {
		if department == "" || t.Department == department {
			matched = append(matched, *t)
		}
	}
	return matched, int64(len(matched)), nil
}

func (s *fakeTokenStore) MaxTokenNumberForUpdate(db *gorm.DB, department string) (int, error) {
	max := 0
	for _, t := range s.tokens {
		if t.Department == department && t.TokenNumber > max {
			max = t.TokenNumber
		}
	}
	return max, nil
}

func (s *fakeTokenStore) FindCalledForUpdate(db *gorm.DB, department string) (*entity.Token, error) {
	return s.first(department, entity.TokenStatusCalled), nil
}

func (s *fakeTokenStore) FindCalled(db *gorm.DB, department string) (*entity.Token, error) {
	return s.first(department, entity.TokenStatusCalled), nil
}

func (s *fakeTokenStore) FindFirstWaitingForUpdate(db *gorm.DB, department string) (*entity.Token, error) {
	return s.first(department, entity.TokenStatusWaiting), nil
}

func (s *fakeTokenStore) FindFirstWaiting(db *gorm.DB, department string) (*entity.Token, error) {
	return s.first(department, entity.TokenStatusWaiting), nil
}

func (s *fakeTokenStore) first(department string, status entity.TokenStatus) *entity.Token {
	var found *entity.Token
	for _, t := range s.tokens {
		if t.Department != department || t.Status != status {
			continue
		}
		if found == nil || t.TokenNumber < found.TokenNumber {
			found = t
		}
	}
	if found == nil {
		return nil
	}
	copied := *found
	return &copied
}

func (s *fakeTokenStore) FindWaiting(db *gorm.DB, department string, limit int) ([]entity.Token, error) {
	var waiting []entity.Token
	for _, t := range s.tokens {
		if t.Department == department && t.Status == entity.TokenStatusWaiting {
			waiting = append(waiting, *t)
		}
	}
	sort.Slice(waiting, func(i, j int) bool { return waiting[i].TokenNumber < waiting[j].TokenNumber })
	if limit > 0 && len(waiting) > limit {
		waiting = waiting[:limit]
	}
	return waiting, nil
}

func (s *fakeTokenStore) CountWaiting(db *gorm.DB, department string) (int64, error) {
	var count int64
	for _, t := range s.tokens {
		if t.Department == department && t.Status == entity.TokenStatusWaiting {
			count++
		}
	}
	return count, nil
}

func (s *fakeTokenStore) CountWaitingBefore(db *gorm.DB, department string, tokenNumber int) (int64, error) {
	var count int64
	for _, t := range s.tokens {
		if t.Department == department && t.Status == entity.TokenStatusWaiting && t.TokenNumber < tokenNumber {
			count++
		}
	}
	return count, nil
}

func (s *fakeTokenStore) CountByDepartment(db *gorm.DB, department string) (int64, error) {
	var count int64
	for _, t := range s.tokens {
		if t.Department == department {
			count++
		}
	}
	return count, nil
}

func (s *fakeTokenStore) Update(db *gorm.DB, token *entity.Token) error {
	s.updates++
	for i, t := range s.tokens {
		if t.ID == token.ID {
			copied := *token
			s.tokens[i] = &copied
			return nil
		}
	}
	return nil
}

func (s *fakeTokenStore) RequeueCompleted(db *gorm.DB, department string) (int64, error) {
	var affected int64
	for _, t := range s.tokens {
		if t.Department == department && t.Status == entity.TokenStatusCompleted {
			t.Status = entity.TokenStatusWaiting
			affected++
		}
	}
	return affected, nil
}

func (s *fakeTokenStore) statusOf(number int) entity.TokenStatus {
	for _, t := range s.tokens {
		if t.TokenNumber == number {
			return t.Status
		}
	}
	return ""
}

type fakeDepartmentStore struct {
	department entity.Department
	lockCalls  int
}

func (s *fakeDepartmentStore) Create(db *gorm.DB, department *entity.Department) error { return nil }

func (s *fakeDepartmentStore) FindByID(db *gorm.DB, id int) (*entity.Department, error) {
	if id != s.department.ID {
		return nil, nil
	}
	copied := s.department
	return &copied, nil
}

func (s *fakeDepartmentStore) FindByIDForUpdate(db *gorm.DB, id int) (*entity.Department, error) {
	s.lockCalls++
	return s.FindByID(db, id)
}

func (s *fakeDepartmentStore) FindByName(db *gorm.DB, name string) (*entity.Department, error) {
	if name != s.department.Name {
		return nil, nil
	}
	copied := s.department
	return &copied, nil
}

func (s *fakeDepartmentStore) FindAll(db *gorm.DB) ([]entity.Department, error) {
	return []entity.Department{s.department}, nil
}

func (s *fakeDepartmentStore) Update(db *gorm.DB, department *entity.Department) error { return nil }

func (s *fakeDepartmentStore) Delete(db *gorm.DB, id int) (int64, error) { return 0, nil }

type fakeDoctorStore struct {
	doctors []entity.DoctorProfile
}

func (s *fakeDoctorStore) Create(db *gorm.DB, profile *entity.DoctorProfile) error { return nil }

func (s *fakeDoctorStore) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	return nil, nil
}

func (s *fakeDoctorStore) FindAll(db *gorm.DB, approvalStatus string) ([]entity.DoctorProfile, error) {
	return s.doctors, nil
}

func (s *fakeDoctorStore) FindApprovedByDepartment(db *gorm.DB, department string) ([]entity.DoctorProfile, error) {
	var approved []entity.DoctorProfile
	for _, d := range s.doctors {
		if d.Department == department && d.IsApproved() {
			approved = append(approved, d)
		}
	}
	return approved, nil
}

func (s *fakeDoctorStore) Update(db *gorm.DB, profile *entity.DoctorProfile) error { return nil }

type fakeAuditTrail struct {
	actions []string
}

func (s *fakeAuditTrail) Record(tx *gorm.DB, actorID *uuid.UUID, action, entityName, entityID string, oldValue, newValue interface{}) error {
	s.actions = append(s.actions, action)
	return nil
}

type fakeEventSink struct {
	events []string
}

func (s *fakeEventSink) Publish(ctx context.Context, department, event string, tokenNumber int, payload interface{}) {
	s.events = append(s.events, event)
}

func (s *fakeEventSink) CachedLiveQueue(ctx context.Context, department string) (*dto.LiveQueueResponse, bool) {
	return nil, false
}

func (s *fakeEventSink) StoreLiveQueue(ctx context.Context, department string, snapshot *dto.LiveQueueResponse) {
}

type queueFixture struct {
	usecase     *queueUsecase
	tokens      *fakeTokenStore
	departments *fakeDepartmentStore
	events      *fakeEventSink
	audit       *fakeAuditTrail
}

func newQueueFixture() *queueFixture {
	log := logrus.New()
	log.SetOutput(io.Discard)

	tokens := &fakeTokenStore{}
	departments := &fakeDepartmentStore{
		department: entity.Department{ID: 1, Name: "General Medicine", Prefix: "GEN", AvgConsultationMinutes: 10},
	}
	doctors := &fakeDoctorStore{
		doctors: []entity.DoctorProfile{
			{UserID: uuid.New(), Department: "General Medicine", ApprovalStatus: entity.DoctorStatusApproved},
		},
	}
	events := &fakeEventSink{}
	audit := &fakeAuditTrail{}

	u := &queueUsecase{
		log:            log,
		tokenRepo:      tokens,
		departmentRepo: departments,
		doctorRepo:     doctors,
		auditService:   audit,
		events:         events,
		read:           func(ctx context.Context) *gorm.DB { return nil },
		inTx: func(ctx context.Context, fn func(tx *gorm.DB) error) error {
			return fn(nil)
		},
	}

	return &queueFixture{
		usecase:     u,
		tokens:      tokens,
		departments: departments,
		events:      events,
		audit:       audit,
	}
}

func (f *queueFixture) seedToken(number int, status entity.TokenStatus) {
	f.tokens.tokens = append(f.tokens.tokens, &entity.Token{
		ID:          uuid.New(),
		PatientName: "Patient",
		Phone:       "9876543210",
		Department:  "General Medicine",
		TokenNumber: number,
		Status:      status,
	})
}

func TestRegisterPatientSequentialNumbers(t *testing.T) {
	f := newQueueFixture()
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		token, err := f.usecase.RegisterPatient(ctx, &dto.RegisterPatientRequest{
			Name:  "Asha Rao",
			Phone: "9876543210",
		})
		if err != nil {
			t.Fatalf("RegisterPatient() error = %v", err)
		}
		if token.TokenNumber != want {
			t.Errorf("TokenNumber = %d, want %d", token.TokenNumber, want)
		}
		if token.Status != string(entity.TokenStatusWaiting) {
			t.Errorf("Status = %q, want %q", token.Status, entity.TokenStatusWaiting)
		}
	}
}

func TestCallNextPromotesFirstWaiting(t *testing.T) {
	f := newQueueFixture()
	f.seedToken(1, entity.TokenStatusWaiting)
	f.seedToken(2, entity.TokenStatusWaiting)

	resp, err := f.usecase.CallNext(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("CallNext() error = %v", err)
	}

	if resp.CalledToken == nil || resp.CalledToken.TokenNumber != 1 {
		t.Fatalf("CalledToken = %+v, want token 1", resp.CalledToken)
	}
	if resp.CalledToken.CalledAt == nil {
		t.Error("expected CalledAt to be set")
	}
	if resp.NextToken == nil || *resp.NextToken != 2 {
		t.Errorf("NextToken = %v, want 2", resp.NextToken)
	}
	if got := f.tokens.statusOf(1); got != entity.TokenStatusCalled {
		t.Errorf("token 1 status = %q, want %q", got, entity.TokenStatusCalled)
	}
}

func TestCallNextEmptyQueueMutatesNothing(t *testing.T) {
	f := newQueueFixture()

	resp, err := f.usecase.CallNext(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("CallNext() error = %v", err)
	}

	if resp.CalledToken != nil {
		t.Errorf("CalledToken = %+v, want nil", resp.CalledToken)
	}
	if resp.Message == "" {
		t.Error("expected an informational message")
	}
	if f.tokens.updates != 0 {
		t.Errorf("updates = %d, want 0", f.tokens.updates)
	}
	if len(f.events.events) != 0 {
		t.Errorf("events = %v, want none", f.events.events)
	}
	if len(f.audit.actions) != 0 {
		t.Errorf("audit actions = %v, want none", f.audit.actions)
	}
}

func TestCallNextRejectedWhileConsultationInProgress(t *testing.T) {
	f := newQueueFixture()
	f.seedToken(1, entity.TokenStatusCalled)
	f.seedToken(2, entity.TokenStatusWaiting)

	_, err := f.usecase.CallNext(context.Background(), "", nil)
	if err != ErrConsultationInProgress {
		t.Fatalf("CallNext() error = %v, want %v", err, ErrConsultationInProgress)
	}
	if got := f.tokens.statusOf(2); got != entity.TokenStatusWaiting {
		t.Errorf("token 2 status = %q, want %q", got, entity.TokenStatusWaiting)
	}
}

func TestAdvanceLocksDepartmentRow(t *testing.T) {
	f := newQueueFixture()
	f.seedToken(1, entity.TokenStatusWaiting)

	if _, err := f.usecase.CallNext(context.Background(), "", nil); err != nil {
		t.Fatalf("CallNext() error = %v", err)
	}
	if f.departments.lockCalls != 1 {
		t.Errorf("department lock calls after CallNext = %d, want 1", f.departments.lockCalls)
	}

	if _, err := f.usecase.CompleteCurrent(context.Background(), "", nil); err != nil {
		t.Fatalf("CompleteCurrent() error = %v", err)
	}
	if f.departments.lockCalls != 2 {
		t.Errorf("department lock calls after CompleteCurrent = %d, want 2", f.departments.lockCalls)
	}
}

func TestCompleteCurrentWithoutCalledToken(t *testing.T) {
	f := newQueueFixture()
	f.seedToken(1, entity.TokenStatusWaiting)

	_, err := f.usecase.CompleteCurrent(context.Background(), "", nil)
	if err != ErrNoActiveConsultation {
		t.Fatalf("CompleteCurrent() error = %v, want %v", err, ErrNoActiveConsultation)
	}
}

func TestCompleteCurrentFinishesConsultation(t *testing.T) {
	f := newQueueFixture()
	f.seedToken(1, entity.TokenStatusCalled)

	token, err := f.usecase.CompleteCurrent(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("CompleteCurrent() error = %v", err)
	}
	if token.Status != string(entity.TokenStatusCompleted) {
		t.Errorf("Status = %q, want %q", token.Status, entity.TokenStatusCompleted)
	}
	if token.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
}

func TestCallNextBlockedWithoutApprovedDoctor(t *testing.T) {
	f := newQueueFixture()
	f.seedToken(1, entity.TokenStatusWaiting)
	f.usecase.doctorRepo = &fakeDoctorStore{}

	_, err := f.usecase.CallNext(context.Background(), "", nil)
	if err != ErrNoApprovedDoctor {
		t.Fatalf("CallNext() error = %v, want %v", err, ErrNoApprovedDoctor)
	}
}

func TestCallNextBlockedWhileQueuePaused(t *testing.T) {
	f := newQueueFixture()
	f.seedToken(1, entity.TokenStatusWaiting)
	f.usecase.doctorRepo = &fakeDoctorStore{
		doctors: []entity.DoctorProfile{
			{UserID: uuid.New(), Department: "General Medicine", ApprovalStatus: entity.DoctorStatusApproved, QueuePaused: true},
		},
	}

	_, err := f.usecase.CallNext(context.Background(), "", nil)
	if err != ErrQueuePaused {
		t.Fatalf("CallNext() error = %v, want %v", err, ErrQueuePaused)
	}
}

func TestResetQueueRequeuesOnlyCompleted(t *testing.T) {
	f := newQueueFixture()
	f.seedToken(1, entity.TokenStatusCompleted)
	f.seedToken(2, entity.TokenStatusMissed)
	f.seedToken(3, entity.TokenStatusCalled)
	f.seedToken(4, entity.TokenStatusWaiting)

	resp, err := f.usecase.ResetQueue(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("ResetQueue() error = %v", err)
	}

	if resp.TokensRequeued != 1 {
		t.Errorf("TokensRequeued = %d, want 1", resp.TokensRequeued)
	}
	if got := f.tokens.statusOf(1); got != entity.TokenStatusWaiting {
		t.Errorf("completed token status = %q, want %q", got, entity.TokenStatusWaiting)
	}
	if got := f.tokens.statusOf(2); got != entity.TokenStatusMissed {
		t.Errorf("missed token status = %q, want %q", got, entity.TokenStatusMissed)
	}
	if got := f.tokens.statusOf(3); got != entity.TokenStatusCalled {
		t.Errorf("called token status = %q, want %q", got, entity.TokenStatusCalled)
	}
	if got := f.tokens.statusOf(4); got != entity.TokenStatusWaiting {
		t.Errorf("waiting token status = %q, want %q", got, entity.TokenStatusWaiting)
	}
}
