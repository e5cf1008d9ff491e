package repository

import (
	"github.com/lshigami/PrepDeck/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(attempt *model.CodingAttempt) error
	FindByID(id uint) (*model.CodingAttempt, error)
	FindAllByUser(userID *uint) ([]model.CodingAttempt, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.CodingAttempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) FindByID(id uint) (*model.CodingAttempt, error) {
	var attempt model.CodingAttempt
	if err := r.db.Preload("Problem").First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindAllByUser lists attempts newest first. A nil userID lists every attempt.
func (r *attemptRepository) FindAllByUser(userID *uint) ([]model.CodingAttempt, error) {
	var attempts []model.CodingAttempt
	query := r.db.Model(&model.CodingAttempt{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if err := query.Order("submitted_at desc").Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
