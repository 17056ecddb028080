package entity

import (
	"time"

	"github.com/google/uuid"
)

// DoctorApprovalStatus is the admin approval state of a doctor account
type DoctorApprovalStatus string

const (
	DoctorStatusPending  DoctorApprovalStatus = "pending"
	DoctorStatusApproved DoctorApprovalStatus = "approved"
	DoctorStatusRejected DoctorApprovalStatus = "rejected"
)

// DoctorProfile represents doctor-specific profile data. A doctor owns the
// queue of their department; only approved doctors with an unpaused queue may
// have patients advanced on their behalf.
type DoctorProfile struct {
	UserID          uuid.UUID            `gorm:"type:uuid;primaryKey" json:"user_id"`
	Department      string               `gorm:"type:varchar(100);not null;index" json:"department"`
	LicenseNumber   string               `gorm:"column:license_number;type:varchar(50);uniqueIndex;not null" json:"license_number"`
	ExperienceYears int                  `json:"experience_years,omitempty"`
	ApprovalStatus  DoctorApprovalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"approval_status"`
	QueuePaused     bool                 `gorm:"not null;default:false" json:"queue_paused"`
	CreatedAt       time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time            `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

// IsPending checks if the doctor is awaiting admin review
func (d *DoctorProfile) IsPending() bool {
	return d.ApprovalStatus == DoctorStatusPending
}

// IsApproved checks if the doctor has been approved by an admin
func (d *DoctorProfile) IsApproved() bool {
	return d.ApprovalStatus == DoctorStatusApproved
}

// CanAdvanceQueue reports whether the queue may be advanced for this doctor
func (d *DoctorProfile) CanAdvanceQueue() bool {
	return d.IsApproved() && !d.QueuePaused
}

// Approve marks the doctor as approved
func (d *DoctorProfile) Approve() {
	d.ApprovalStatus = DoctorStatusApproved
}

// Reject marks the doctor as rejected
func (d *DoctorProfile) Reject() {
	d.ApprovalStatus = DoctorStatusRejected
}
