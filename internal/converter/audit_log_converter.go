package converter

import (
	"smart-opd/internal/delivery/dto"
	"smart-opd/internal/domain/entity"
)

func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	response := &dto.AuditLogResponse{
		ID:        log.ID,
		Action:    log.Action,
		Metadata:  log.Metadata,
		CreatedAt: log.CreatedAt,
	}

	if log.User != nil {
		response.User = &dto.UserResponse{
			ID:        log.User.ID,
			Email:     log.User.Email,
			FullName:  log.User.FullName,
			Role:      log.User.Role.RoleName,
			CreatedAt: log.User.CreatedAt,
			UpdatedAt: log.User.UpdatedAt,
		}
	}

	return response
}

func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i, log := range logs {
		resp := AuditLogToResponse(&log)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
