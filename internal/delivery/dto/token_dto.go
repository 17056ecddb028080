package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type RegisterPatientRequest struct {
	Name       string `json:"name" validate:"required,min=2"`
	Phone      string `json:"phone" validate:"required,len=10,numeric"`
	Age        int    `json:"age" validate:"omitempty,gte=0,lte=120"`
	Gender     string `json:"gender" validate:"omitempty,oneof=male female other"`
	Symptoms   string `json:"symptoms" validate:"omitempty,max=500"`
	Department string `json:"department" validate:"omitempty"`
}

// Response DTOs

type TokenResponse struct {
	ID          uuid.UUID  `json:"id"`
	PatientName string     `json:"patient_name"`
	Phone       string     `json:"phone"`
	Age         int        `json:"age,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	Symptoms    string     `json:"symptoms,omitempty"`
	Department  string     `json:"department"`
	TokenNumber int        `json:"token_number"`
	DisplayCode string     `json:"display_code,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CalledAt    *time.Time `json:"called_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type TokenListResponse struct {
	Tokens []TokenResponse `json:"tokens"`
	Total  int64           `json:"total"`
}

// TokenStatusResponse is polled by the patient's status page.
type TokenStatusResponse struct {
	TokenNumber          int    `json:"token_number"`
	DisplayCode          string `json:"display_code"`
	Department           string `json:"department"`
	Status               string `json:"status"`
	Position             int    `json:"position"`
	CurrentlyServing     *int   `json:"currently_serving"`
	EstimatedWaitMinutes int    `json:"estimated_wait_minutes"`
}
