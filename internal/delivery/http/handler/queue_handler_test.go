package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smart-opd/internal/delivery/dto"
	"smart-opd/internal/usecase"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type fakeQueueUsecase struct {
	callNextFn func(ctx context.Context, department string, actorID *uuid.UUID) (*dto.CallNextResponse, error)
	completeFn func(ctx context.Context, department string, actorID *uuid.UUID) (*dto.TokenResponse, error)
	statusFn   func(ctx context.Context, tokenID uuid.UUID) (*dto.TokenStatusResponse, error)
	liveFn     func(ctx context.Context, department string) (*dto.LiveQueueResponse, error)
}

func (f *fakeQueueUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.TokenResponse, error) {
	return nil, nil
}

func (f *fakeQueueUsecase) CallNext(ctx context.Context, department string, actorID *uuid.UUID) (*dto.CallNextResponse, error) {
	return f.callNextFn(ctx, department, actorID)
}

func (f *fakeQueueUsecase) CompleteCurrent(ctx context.Context, department string, actorID *uuid.UUID) (*dto.TokenResponse, error) {
	return f.completeFn(ctx, department, actorID)
}

func (f *fakeQueueUsecase) MarkMissed(ctx context.Context, department string, actorID *uuid.UUID) (*dto.TokenResponse, error) {
	return nil, nil
}

func (f *fakeQueueUsecase) CurrentlyServing(ctx context.Context, department string) (*dto.CurrentServingResponse, error) {
	return nil, nil
}

func (f *fakeQueueUsecase) LiveQueue(ctx context.Context, department string) (*dto.LiveQueueResponse, error) {
	return f.liveFn(ctx, department)
}

func (f *fakeQueueUsecase) ResetQueue(ctx context.Context, department string, actorID *uuid.UUID) (*dto.ResetQueueResponse, error) {
	return nil, nil
}

func (f *fakeQueueUsecase) TokenStatus(ctx context.Context, tokenID uuid.UUID) (*dto.TokenStatusResponse, error) {
	return f.statusFn(ctx, tokenID)
}

func (f *fakeQueueUsecase) GetAllTokens(ctx context.Context, department string, page, limit int) (*dto.TokenListResponse, error) {
	return nil, nil
}

func TestCallNextSuccess(t *testing.T) {
	fake := &fakeQueueUsecase{
		callNextFn: func(ctx context.Context, department string, actorID *uuid.UUID) (*dto.CallNextResponse, error) {
			next := 8
			return &dto.CallNextResponse{
				CalledToken: &dto.TokenResponse{TokenNumber: 7, Status: "called"},
				NextToken:   &next,
				Message:     "Token 7 called",
			}, nil
		},
	}
	h := NewQueueHandler(fake)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue/next", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.CallNext(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Success bool                 `json:"success"`
		Data    dto.CallNextResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Success {
		t.Error("expected success response")
	}
	if body.Data.CalledToken == nil || body.Data.CalledToken.TokenNumber != 7 {
		t.Errorf("CalledToken = %+v, want token 7", body.Data.CalledToken)
	}
	if body.Data.NextToken == nil || *body.Data.NextToken != 8 {
		t.Errorf("NextToken = %v, want 8", body.Data.NextToken)
	}
}

func TestCallNextConflict(t *testing.T) {
	fake := &fakeQueueUsecase{
		callNextFn: func(ctx context.Context, department string, actorID *uuid.UUID) (*dto.CallNextResponse, error) {
			return nil, usecase.ErrConsultationInProgress
		},
	}
	h := NewQueueHandler(fake)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue/next", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.CallNext(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestCompleteWithoutActiveConsultation(t *testing.T) {
	fake := &fakeQueueUsecase{
		completeFn: func(ctx context.Context, department string, actorID *uuid.UUID) (*dto.TokenResponse, error) {
			return nil, usecase.ErrNoActiveConsultation
		},
	}
	h := NewQueueHandler(fake)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue/complete", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.Complete(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestLiveQueuePassesDepartment(t *testing.T) {
	var gotDepartment string
	fake := &fakeQueueUsecase{
		liveFn: func(ctx context.Context, department string) (*dto.LiveQueueResponse, error) {
			gotDepartment = department
			return &dto.LiveQueueResponse{Department: department}, nil
		},
	}
	h := NewQueueHandler(fake)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue/live?department=Cardiology", nil)
	rec := httptest.NewRecorder()

	h.Live(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotDepartment != "Cardiology" {
		t.Errorf("department = %q, want %q", gotDepartment, "Cardiology")
	}
}

func TestGetStatusNotFound(t *testing.T) {
	fake := &fakeQueueUsecase{
		statusFn: func(ctx context.Context, tokenID uuid.UUID) (*dto.TokenStatusResponse, error) {
			return nil, usecase.ErrTokenNotFound
		},
	}
	h := NewTokenHandler(fake, nil)

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tokens/"+id+"/status", nil)
	req = mux.SetURLVars(req, map[string]string{"id": id})
	rec := httptest.NewRecorder()

	h.GetStatus(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestGetStatusInvalidID(t *testing.T) {
	h := NewTokenHandler(&fakeQueueUsecase{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tokens/not-a-uuid/status", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "not-a-uuid"})
	rec := httptest.NewRecorder()

	h.GetStatus(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
