package dto

import "time"

// Request DTOs

type CreateDepartmentRequest struct {
	Name                   string `json:"name" validate:"required,min=2,max=100"`
	Prefix                 string `json:"prefix" validate:"required,min=2,max=10"`
	AvgConsultationMinutes int    `json:"avg_consultation_minutes" validate:"omitempty,gte=1,lte=120"`
}

type UpdateDepartmentRequest struct {
	Name                   string `json:"name" validate:"omitempty,min=2,max=100"`
	Prefix                 string `json:"prefix" validate:"omitempty,min=2,max=10"`
	AvgConsultationMinutes *int   `json:"avg_consultation_minutes" validate:"omitempty,gte=1,lte=120"`
}

// Response DTOs

type DepartmentResponse struct {
	ID                     int       `json:"id"`
	Name                   string    `json:"name"`
	Prefix                 string    `json:"prefix"`
	AvgConsultationMinutes int       `json:"avg_consultation_minutes"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

type DepartmentListResponse struct {
	Departments []DepartmentResponse `json:"departments"`
	Total       int                  `json:"total"`
}
