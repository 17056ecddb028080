package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"smart-opd/internal/delivery/dto"
	"smart-opd/internal/delivery/http/middleware"
	"smart-opd/internal/domain/entity"
	"smart-opd/internal/usecase"
	"smart-opd/pkg/response"

	"github.com/google/uuid"
)

type QueueHandler struct {
	queueUsecase usecase.QueueUsecase
}

func NewQueueHandler(queueUsecase usecase.QueueUsecase) *QueueHandler {
	return &QueueHandler{queueUsecase: queueUsecase}
}

// CallNext handles POST /api/v1/queue/next
func (h *QueueHandler) CallNext(w http.ResponseWriter, r *http.Request) {
	department := h.actionDepartment(r)
	actorID := actor(r)

	result, err := h.queueUsecase.CallNext(r.Context(), department, actorID)
	if err != nil {
		h.writeQueueError(w, err)
		return
	}

	response.Success(w, http.StatusOK, result.Message, result)
}

// Complete handles POST /api/v1/queue/complete
func (h *QueueHandler) Complete(w http.ResponseWriter, r *http.Request) {
	department := h.actionDepartment(r)
	actorID := actor(r)

	token, err := h.queueUsecase.CompleteCurrent(r.Context(), department, actorID)
	if err != nil {
		h.writeQueueError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Consultation completed", token)
}

// Missed handles POST /api/v1/queue/missed
func (h *QueueHandler) Missed(w http.ResponseWriter, r *http.Request) {
	department := h.actionDepartment(r)
	actorID := actor(r)

	token, err := h.queueUsecase.MarkMissed(r.Context(), department, actorID)
	if err != nil {
		h.writeQueueError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Token marked as missed", token)
}

// Current handles GET /api/v1/queue/current
func (h *QueueHandler) Current(w http.ResponseWriter, r *http.Request) {
	department := r.URL.Query().Get("department")

	result, err := h.queueUsecase.CurrentlyServing(r.Context(), department)
	if err != nil {
		h.writeQueueError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Current serving retrieved", result)
}

// Live handles GET /api/v1/queue/live
func (h *QueueHandler) Live(w http.ResponseWriter, r *http.Request) {
	department := r.URL.Query().Get("department")

	result, err := h.queueUsecase.LiveQueue(r.Context(), department)
	if err != nil {
		h.writeQueueError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Live queue retrieved", result)
}

// Reset handles POST /api/v1/queue/reset
func (h *QueueHandler) Reset(w http.ResponseWriter, r *http.Request) {
	department := h.bodyDepartment(r)
	actorID := actor(r)

	result, err := h.queueUsecase.ResetQueue(r.Context(), department, actorID)
	if err != nil {
		h.writeQueueError(w, err)
		return
	}

	response.Success(w, http.StatusOK, result.Message, result)
}

// actionDepartment resolves which department a staff queue action targets.
// Doctors are always scoped to their own department from the token claims;
// admins may name one in the body and otherwise act on the default.
func (h *QueueHandler) actionDepartment(r *http.Request) string {
	if roleID, ok := middleware.GetRoleID(r.Context()); ok && roleID == entity.RoleIDDoctor {
		if department, ok := middleware.GetDepartment(r.Context()); ok && department != "" {
			return department
		}
	}
	return h.bodyDepartment(r)
}

func (h *QueueHandler) bodyDepartment(r *http.Request) string {
	var req dto.QueueActionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Department != "" {
		return req.Department
	}
	return r.URL.Query().Get("department")
}

func (h *QueueHandler) writeQueueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrDepartmentNotFound):
		response.NotFound(w, "Department not found")
	case errors.Is(err, usecase.ErrConsultationInProgress):
		response.Conflict(w, "A patient is already in consultation")
	case errors.Is(err, usecase.ErrNoActiveConsultation):
		response.Conflict(w, "No patient is currently called")
	case errors.Is(err, usecase.ErrNoApprovedDoctor):
		response.Conflict(w, "Department has no approved doctor")
	case errors.Is(err, usecase.ErrQueuePaused):
		response.Conflict(w, "Queue is paused")
	case errors.Is(err, usecase.ErrInvalidTransition):
		response.Conflict(w, "Invalid queue transition")
	default:
		response.InternalServerError(w, "")
	}
}

func actor(r *http.Request) *uuid.UUID {
	if id, ok := middleware.GetUserID(r.Context()); ok {
		return &id
	}
	return nil
}
