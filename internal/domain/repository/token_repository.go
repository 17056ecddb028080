package repository

import (
	"smart-opd/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TokenRepository interface {
	Create(db *gorm.DB, token *entity.Token) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Token, error)
	FindPage(db *gorm.DB, department string, offset, limit int) ([]entity.Token, int64, error)
	// MaxTokenNumberForUpdate locks the highest-numbered token row of the
	// department for the duration of the transaction and returns its number,
	// or 0 when the department has no tokens yet.
	MaxTokenNumberForUpdate(db *gorm.DB, department string) (int, error)
	FindCalledForUpdate(db *gorm.DB, department string) (*entity.Token, error)
	FindCalled(db *gorm.DB, department string) (*entity.Token, error)
	FindFirstWaitingForUpdate(db *gorm.DB, department string) (*entity.Token, error)
	FindFirstWaiting(db *gorm.DB, department string) (*entity.Token, error)
	FindWaiting(db *gorm.DB, department string, limit int) ([]entity.Token, error)
	CountWaiting(db *gorm.DB, department string) (int64, error)
	CountWaitingBefore(db *gorm.DB, department string, tokenNumber int) (int64, error)
	CountByDepartment(db *gorm.DB, department string) (int64, error)
	Update(db *gorm.DB, token *entity.Token) error
	// RequeueCompleted flips every completed token of the department back to
	// waiting and returns how many rows changed.
	RequeueCompleted(db *gorm.DB, department string) (int64, error)
}
