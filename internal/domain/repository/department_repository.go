package repository

import (
	"smart-opd/internal/domain/entity"

	"gorm.io/gorm"
)

type DepartmentRepository interface {
	Create(db *gorm.DB, department *entity.Department) error
	FindByID(db *gorm.DB, id int) (*entity.Department, error)
	// FindByIDForUpdate locks the department row for the duration of the
	// transaction. Queue mutations lock it first so check-then-act sequences
	// on the department's tokens serialize even when no token row exists to
	// carry the lock.
	FindByIDForUpdate(db *gorm.DB, id int) (*entity.Department, error)
	FindByName(db *gorm.DB, name string) (*entity.Department, error)
	FindAll(db *gorm.DB) ([]entity.Department, error)
	Update(db *gorm.DB, department *entity.Department) error
	Delete(db *gorm.DB, id int) (int64, error)
}
