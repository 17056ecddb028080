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

	"github.com/gorilla/mux"
)

type DepartmentHandler struct {
	departmentUsecase usecase.DepartmentUsecase
	validator         *validator.CustomValidator
}

func NewDepartmentHandler(departmentUsecase usecase.DepartmentUsecase, validator *validator.CustomValidator) *DepartmentHandler {
	return &DepartmentHandler{
		departmentUsecase: departmentUsecase,
		validator:         validator,
	}
}

// List handles GET /api/v1/departments
func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	departments, err := h.departmentUsecase.GetAll(r.Context())
	if err != nil {
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, http.StatusOK, "Departments retrieved", departments)
}

// Get handles GET /api/v1/departments/{id}
func (h *DepartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid department ID", nil)
		return
	}

	department, err := h.departmentUsecase.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrDepartmentNotFound) {
			response.NotFound(w, "Department not found")
			return
		}
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, http.StatusOK, "Department retrieved", department)
}

// Create handles POST /api/v1/admin/departments
func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	department, err := h.departmentUsecase.Create(r.Context(), &req, actor(r))
	if err != nil {
		if errors.Is(err, usecase.ErrDepartmentExists) {
			response.Conflict(w, "Department name or prefix already in use")
			return
		}
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, http.StatusCreated, "Department created", department)
}

// Update handles PUT /api/v1/admin/departments/{id}
func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid department ID", nil)
		return
	}

	var req dto.UpdateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	department, err := h.departmentUsecase.Update(r.Context(), id, &req, actor(r))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDepartmentNotFound):
			response.NotFound(w, "Department not found")
		case errors.Is(err, usecase.ErrDepartmentExists):
			response.Conflict(w, "Department name or prefix already in use")
		default:
			response.InternalServerError(w, "")
		}
		return
	}

	response.Success(w, http.StatusOK, "Department updated", department)
}

// Delete handles DELETE /api/v1/admin/departments/{id}
func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid department ID", nil)
		return
	}

	if err := h.departmentUsecase.Delete(r.Context(), id, actor(r)); err != nil {
		switch {
		case errors.Is(err, usecase.ErrDepartmentNotFound):
			response.NotFound(w, "Department not found")
		case errors.Is(err, usecase.ErrDepartmentInUse):
			response.Conflict(w, "Department still has tokens")
		default:
			response.InternalServerError(w, "")
		}
		return
	}

	response.Success(w, http.StatusOK, "Department deleted", nil)
}
