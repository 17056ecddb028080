package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"smart-opd/internal/delivery/dto"
	"smart-opd/internal/usecase"
	"smart-opd/pkg/response"
	"smart-opd/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type TokenHandler struct {
	queueUsecase usecase.QueueUsecase
	validator    *validator.CustomValidator
}

func NewTokenHandler(queueUsecase usecase.QueueUsecase, validator *validator.CustomValidator) *TokenHandler {
	return &TokenHandler{
		queueUsecase: queueUsecase,
		validator:    validator,
	}
}

// Register handles POST /api/v1/tokens
func (h *TokenHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	token, err := h.queueUsecase.RegisterPatient(r.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrDepartmentNotFound) {
			response.NotFound(w, "Department not found")
			return
		}
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, http.StatusCreated, "Token issued successfully", token)
}

// GetStatus handles GET /api/v1/tokens/{id}/status
func (h *TokenHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid token ID", nil)
		return
	}

	status, err := h.queueUsecase.TokenStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrTokenNotFound) {
			response.NotFound(w, "Token not found")
			return
		}
		if errors.Is(err, usecase.ErrDepartmentNotFound) {
			response.NotFound(w, "Department not found")
			return
		}
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, http.StatusOK, "Token status retrieved", status)
}

// List handles GET /api/v1/admin/tokens
func (h *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	department := r.URL.Query().Get("department")

	tokens, err := h.queueUsecase.GetAllTokens(r.Context(), department, page, limit)
	if err != nil {
		response.InternalServerError(w, "")
		return
	}

	totalPages := int((tokens.Total + int64(limit) - 1) / int64(limit))
	response.SuccessWithMeta(w, http.StatusOK, "Tokens retrieved", tokens.Tokens, &response.Meta{
		Page:       page,
		Limit:      limit,
		Total:      tokens.Total,
		TotalPages: totalPages,
	})
}
