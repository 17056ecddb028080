package converter

import (
	"smart-opd/internal/delivery/dto"
	"smart-opd/internal/domain/entity"
)

func DepartmentToResponse(department *entity.Department) *dto.DepartmentResponse {
	if department == nil {
		return nil
	}

	return &dto.DepartmentResponse{
		ID:                     department.ID,
		Name:                   department.Name,
		Prefix:                 department.Prefix,
		AvgConsultationMinutes: department.AvgConsultationMinutes,
		CreatedAt:              department.CreatedAt,
		UpdatedAt:              department.UpdatedAt,
	}
}

func DepartmentsToResponses(departments []entity.Department) []dto.DepartmentResponse {
	responses := make([]dto.DepartmentResponse, len(departments))
	for i, department := range departments {
		resp := DepartmentToResponse(&department)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
