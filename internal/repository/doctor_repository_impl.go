package repository

import (
	"errors"

	"smart-opd/internal/domain/entity"
	domainRepo "smart-opd/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorRepository struct{}

func NewDoctorRepository() domainRepo.DoctorRepository {
	return &doctorRepository{}
}

func (r *doctorRepository) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Create(profile).Error
}

func (r *doctorRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *doctorRepository) FindAll(db *gorm.DB, approvalStatus string) ([]entity.DoctorProfile, error) {
	query := db.Preload("User")
	if approvalStatus != "" {
		query = query.Where("approval_status = ?", approvalStatus)
	}

	var profiles []entity.DoctorProfile
	err := query.Order("created_at ASC").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// FindApprovedByDepartment returns approved doctors whose user account is
// active, paused or not. Callers decide whether a paused queue blocks them.
func (r *doctorRepository) FindApprovedByDepartment(db *gorm.DB, department string) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	err := db.
		Joins("JOIN users ON users.id = doctor_profiles.user_id").
		Where("doctor_profiles.department = ?", department).
		Where("doctor_profiles.approval_status = ?", entity.DoctorStatusApproved).
		Where("users.is_active = ?", true).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorRepository) Update(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Omit("User").Save(profile).Error
}
