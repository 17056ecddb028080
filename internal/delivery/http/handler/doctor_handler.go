package handler

import (
	"context"
	"errors"
	"net/http"

	"smart-opd/internal/delivery/dto"
	"smart-opd/internal/delivery/http/middleware"
	"smart-opd/internal/usecase"
	"smart-opd/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type DoctorHandler struct {
	doctorUsecase usecase.DoctorUsecase
}

func NewDoctorHandler(doctorUsecase usecase.DoctorUsecase) *DoctorHandler {
	return &DoctorHandler{doctorUsecase: doctorUsecase}
}

// List handles GET /api/v1/admin/doctors
func (h *DoctorHandler) List(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.doctorUsecase.GetAll(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved", doctors)
}

// Get handles GET /api/v1/admin/doctors/{id}
func (h *DoctorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	doctor, err := h.doctorUsecase.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrDoctorNotFound) {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved", doctor)
}

// Approve handles POST /api/v1/admin/doctors/{id}/approve
func (h *DoctorHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.doctorUsecase.Approve, "Doctor approved")
}

// Reject handles POST /api/v1/admin/doctors/{id}/reject
func (h *DoctorHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.doctorUsecase.Reject, "Doctor rejected")
}

type reviewFunc func(ctx context.Context, doctorID uuid.UUID, actorID *uuid.UUID) (*dto.DoctorResponse, error)

func (h *DoctorHandler) review(w http.ResponseWriter, r *http.Request, action reviewFunc, message string) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	doctor, err := action(r.Context(), id, actor(r))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDoctorNotFound):
			response.NotFound(w, "Doctor not found")
		case errors.Is(err, usecase.ErrDoctorNotPending):
			response.Conflict(w, "Doctor is not awaiting review")
		default:
			response.InternalServerError(w, "")
		}
		return
	}

	response.Success(w, http.StatusOK, message, doctor)
}

// PauseQueue handles POST /api/v1/doctor/queue/pause and
// POST /api/v1/doctor/queue/resume via the paused flag in the body.
func (h *DoctorHandler) SetQueuePaused(paused bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r.Context())
		if !ok {
			response.Unauthorized(w, "")
			return
		}

		doctor, err := h.doctorUsecase.SetQueuePaused(r.Context(), userID, paused)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrDoctorNotFound):
				response.NotFound(w, "Doctor not found")
			case errors.Is(err, usecase.ErrDoctorNotActive):
				response.Forbidden(w, "Doctor is not approved")
			default:
				response.InternalServerError(w, "")
			}
			return
		}

		message := "Queue resumed"
		if paused {
			message = "Queue paused"
		}
		response.Success(w, http.StatusOK, message, doctor)
	}
}

// Profile handles GET /api/v1/doctor/profile
func (h *DoctorHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	doctor, err := h.doctorUsecase.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrDoctorNotFound) {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved", doctor)
}
