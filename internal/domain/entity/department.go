package entity

import "time"

// DefaultDepartment receives tokens registered without an explicit department.
const DefaultDepartment = "General Medicine"

// Department partitions the queue: token numbering, the single-called
// invariant and queue advancement are all scoped to one department.
type Department struct {
	ID     int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Prefix string `gorm:"type:varchar(10);uniqueIndex;not null" json:"prefix"`
	// Average consultation length in minutes, used for wait estimates.
	AvgConsultationMinutes int       `gorm:"not null;default:10" json:"avg_consultation_minutes"`
	CreatedAt              time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Department) TableName() string {
	return "departments"
}
