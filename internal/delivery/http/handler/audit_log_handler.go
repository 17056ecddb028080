package handler

import (
	"errors"
	"net/http"
	"strconv"

	"smart-opd/internal/usecase"
	"smart-opd/pkg/response"

	"github.com/gorilla/mux"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{auditLogUsecase: auditLogUsecase}
}

// List handles GET /api/v1/admin/audit-logs
func (h *AuditLogHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	logs, err := h.auditLogUsecase.GetPage(r.Context(), page, limit)
	if err != nil {
		response.InternalServerError(w, "")
		return
	}

	totalPages := int((logs.Total + int64(limit) - 1) / int64(limit))
	response.SuccessWithMeta(w, http.StatusOK, "Audit logs retrieved", logs.Logs, &response.Meta{
		Page:       page,
		Limit:      limit,
		Total:      logs.Total,
		TotalPages: totalPages,
	})
}

// Get handles GET /api/v1/admin/audit-logs/{id}
func (h *AuditLogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid audit log ID", nil)
		return
	}

	log, err := h.auditLogUsecase.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrAuditLogNotFound) {
			response.NotFound(w, "Audit log not found")
			return
		}
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, http.StatusOK, "Audit log retrieved", log)
}
