package dto

import "time"

// Request DTOs

// QueueActionRequest selects the department a queue action applies to.
// Doctors are locked to their own department; the field is only honored for
// admins and falls back to the default department when empty.
type QueueActionRequest struct {
	Department string `json:"department" validate:"omitempty"`
}

// Response DTOs

type CallNextResponse struct {
	CalledToken *TokenResponse `json:"called_token,omitempty"`
	NextToken   *int           `json:"next_token,omitempty"`
	Message     string         `json:"message"`
}

type CurrentServingResponse struct {
	CurrentToken int            `json:"current_token"`
	Patient      *TokenResponse `json:"patient"`
}

type LiveQueueResponse struct {
	Department     string          `json:"department"`
	CurrentServing *TokenResponse  `json:"current_serving"`
	WaitingQueue   []TokenResponse `json:"waiting_queue"`
	TotalWaiting   int64           `json:"total_waiting"`
	LastUpdated    time.Time       `json:"last_updated"`
}

type ResetQueueResponse struct {
	Department     string `json:"department"`
	TokensRequeued int64  `json:"tokens_requeued"`
	Message        string `json:"message"`
}
