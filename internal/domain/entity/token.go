package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TokenStatus is the lifecycle state of a queue token
type TokenStatus string

const (
	TokenStatusWaiting   TokenStatus = "waiting"
	TokenStatusCalled    TokenStatus = "called"
	TokenStatusCompleted TokenStatus = "completed"
	TokenStatusMissed    TokenStatus = "missed"
)

// Token represents one patient visit in the OPD queue. Patients are walk-ins
// and do not hold user accounts; the token row is the only record of the visit.
// Token numbers are unique and strictly increasing within a department.
type Token struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientName string      `gorm:"type:varchar(255);not null" json:"patient_name"`
	Phone       string      `gorm:"type:varchar(20);not null" json:"phone"`
	Age         int         `json:"age,omitempty"`
	Gender      string      `gorm:"type:varchar(10)" json:"gender,omitempty"`
	Symptoms    string      `gorm:"type:text" json:"symptoms,omitempty"`
	Department  string      `gorm:"type:varchar(100);not null;uniqueIndex:idx_tokens_department_number,priority:1" json:"department"`
	TokenNumber int         `gorm:"not null;uniqueIndex:idx_tokens_department_number,priority:2" json:"token_number"`
	Status      TokenStatus `gorm:"type:varchar(20);not null;default:'waiting';index" json:"status"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	CalledAt    *time.Time  `json:"called_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

func (Token) TableName() string {
	return "tokens"
}

// IsWaiting checks if the token is still in the queue
func (t *Token) IsWaiting() bool {
	return t.Status == TokenStatusWaiting
}

// IsCalled checks if the token is currently in consultation
func (t *Token) IsCalled() bool {
	return t.Status == TokenStatusCalled
}

// DisplayCode formats a token number with its department prefix, e.g. GEN-007
func DisplayCode(prefix string, number int) string {
	return fmt.Sprintf("%s-%03d", prefix, number)
}
