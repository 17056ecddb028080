package dto

import (
	"github.com/google/uuid"
)

// Response DTOs

type DoctorResponse struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	Department      string    `json:"department"`
	LicenseNumber   string    `json:"license_number"`
	ExperienceYears int       `json:"experience_years,omitempty"`
	ApprovalStatus  string    `json:"approval_status"`
	QueuePaused     bool      `json:"queue_paused"`
	IsActive        *bool     `json:"is_active,omitempty"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
