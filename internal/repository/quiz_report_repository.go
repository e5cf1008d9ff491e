package repository

import (
	"github.com/lshigami/PrepDeck/internal/model"
	"gorm.io/gorm"
)

type QuizReportRepository interface {
	Create(report *model.QuizReport) error
	FindAll() ([]model.QuizReport, error)
	FindAllByUser(userID uint) ([]model.QuizReport, error)
}

type quizReportRepository struct {
	db *gorm.DB
}

func NewQuizReportRepository(db *gorm.DB) QuizReportRepository {
	return &quizReportRepository{db: db}
}

func (r *quizReportRepository) Create(report *model.QuizReport) error {
	return r.db.Create(report).Error
}

func (r *quizReportRepository) FindAll() ([]model.QuizReport, error) {
	var reports []model.QuizReport
	err := r.db.Preload("Answers").Order("completed_at DESC").Find(&reports).Error
	return reports, err
}

func (r *quizReportRepository) FindAllByUser(userID uint) ([]model.QuizReport, error) {
	var reports []model.QuizReport
	err := r.db.Preload("Answers").Where("user_id = ?", userID).Order("completed_at DESC").Find(&reports).Error
	return reports, err
}
