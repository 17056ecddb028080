package repository

import (
	"errors"

	"smart-opd/internal/domain/entity"
	domainRepo "smart-opd/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type tokenRepository struct{}

func NewTokenRepository() domainRepo.TokenRepository {
	return &tokenRepository{}
}

func (r *tokenRepository) Create(db *gorm.DB, token *entity.Token) error {
	return db.Create(token).Error
}

func (r *tokenRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Token, error) {
	var token entity.Token
	err := db.Where("id = ?", id).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) FindPage(db *gorm.DB, department string, offset, limit int) ([]entity.Token, int64, error) {
	query := db.Model(&entity.Token{})
	if department != "" {
		query = query.Where("department = ?", department)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tokens []entity.Token
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&tokens).Error
	if err != nil {
		return nil, 0, err
	}
	return tokens, total, nil
}

// MaxTokenNumberForUpdate uses a locking read on the highest-numbered row so
// two concurrent registrations in the same department serialize on it. The
// unique (department, token_number) index is the backstop for the empty-queue
// case where there is no row to lock.
func (r *tokenRepository) MaxTokenNumberForUpdate(db *gorm.DB, department string) (int, error) {
	var token entity.Token
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("department = ?", department).
		Order("token_number DESC").
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return token.TokenNumber, nil
}

func (r *tokenRepository) FindCalledForUpdate(db *gorm.DB, department string) (*entity.Token, error) {
	return r.findCalled(db.Clauses(clause.Locking{Strength: "UPDATE"}), department)
}

func (r *tokenRepository) FindCalled(db *gorm.DB, department string) (*entity.Token, error) {
	return r.findCalled(db, department)
}

func (r *tokenRepository) findCalled(db *gorm.DB, department string) (*entity.Token, error) {
	var token entity.Token
	err := db.Where("department = ? AND status = ?", department, entity.TokenStatusCalled).
		Order("token_number ASC").
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) FindFirstWaitingForUpdate(db *gorm.DB, department string) (*entity.Token, error) {
	return r.findFirstWaiting(db.Clauses(clause.Locking{Strength: "UPDATE"}), department)
}

func (r *tokenRepository) FindFirstWaiting(db *gorm.DB, department string) (*entity.Token, error) {
	return r.findFirstWaiting(db, department)
}

func (r *tokenRepository) findFirstWaiting(db *gorm.DB, department string) (*entity.Token, error) {
	var token entity.Token
	err := db.Where("department = ? AND status = ?", department, entity.TokenStatusWaiting).
		Order("token_number ASC").
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) FindWaiting(db *gorm.DB, department string, limit int) ([]entity.Token, error) {
	var tokens []entity.Token
	query := db.Where("department = ? AND status = ?", department, entity.TokenStatusWaiting).
		Order("token_number ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *tokenRepository) CountWaiting(db *gorm.DB, department string) (int64, error) {
	var count int64
	err := db.Model(&entity.Token{}).
		Where("department = ? AND status = ?", department, entity.TokenStatusWaiting).
		Count(&count).Error
	return count, err
}

func (r *tokenRepository) CountWaitingBefore(db *gorm.DB, department string, tokenNumber int) (int64, error) {
	var count int64
	err := db.Model(&entity.Token{}).
		Where("department = ? AND status = ? AND token_number < ?", department, entity.TokenStatusWaiting, tokenNumber).
		Count(&count).Error
	return count, err
}

func (r *tokenRepository) CountByDepartment(db *gorm.DB, department string) (int64, error) {
	var count int64
	err := db.Model(&entity.Token{}).Where("department = ?", department).Count(&count).Error
	return count, err
}

func (r *tokenRepository) Update(db *gorm.DB, token *entity.Token) error {
	return db.Save(token).Error
}

func (r *tokenRepository) RequeueCompleted(db *gorm.DB, department string) (int64, error) {
	result := db.Model(&entity.Token{}).
		Where("department = ? AND status = ?", department, entity.TokenStatusCompleted).
		Update("status", entity.TokenStatusWaiting)
	return result.RowsAffected, result.Error
}
