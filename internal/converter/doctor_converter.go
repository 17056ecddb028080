package converter

import (
	"smart-opd/internal/delivery/dto"
	"smart-opd/internal/domain/entity"
)

// DoctorToResponse converts a DoctorProfile entity to DoctorResponse DTO
func DoctorToResponse(profile *entity.DoctorProfile) *dto.DoctorResponse {
	if profile == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:              profile.UserID,
		Email:           profile.User.Email,
		FullName:        profile.User.FullName,
		Department:      profile.Department,
		LicenseNumber:   profile.LicenseNumber,
		ExperienceYears: profile.ExperienceYears,
		ApprovalStatus:  string(profile.ApprovalStatus),
		QueuePaused:     profile.QueuePaused,
		IsActive:        profile.User.IsActive,
	}
}

// DoctorsToResponses converts a slice of DoctorProfile entities to DTOs
func DoctorsToResponses(profiles []entity.DoctorProfile) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(profiles))
	for i, profile := range profiles {
		resp := DoctorToResponse(&profile)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
