package repository

import (
	"context"
	"time"

	"github.com/lshigami/PrepDeck/internal/model"
	"gorm.io/gorm"
)

type InterviewRepository interface {
	Create(interview *model.Interview) error
	FindByID(id uint) (*model.Interview, error)
	FindByIDWithQuestions(id uint) (*model.Interview, error)
	FindAllByUser(userID uint) ([]model.Interview, error)
	// Complete replaces the question log with the recorded turns and marks the interview completed.
	// The transaction is bound to ctx.
	Complete(ctx context.Context, id uint, turns []model.InterviewQuestion, totalScore float64, duration time.Duration, completedAt time.Time) error
}

type interviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) Create(interview *model.Interview) error {
	return r.db.Create(interview).Error
}

func (r *interviewRepository) FindByID(id uint) (*model.Interview, error) {
	var interview model.Interview
	err := r.db.First(&interview, id).Error
	return &interview, err
}

func (r *interviewRepository) FindByIDWithQuestions(id uint) (*model.Interview, error) {
	var interview model.Interview
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("interview_questions.position ASC")
	}).First(&interview, id).Error
	return &interview, err
}

func (r *interviewRepository) FindAllByUser(userID uint) ([]model.Interview, error) {
	var interviews []model.Interview
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("interview_questions.position ASC")
	}).Where("user_id = ?", userID).Order("created_at DESC").Find(&interviews).Error
	return interviews, err
}

func (r *interviewRepository) Complete(ctx context.Context, id uint, turns []model.InterviewQuestion, totalScore float64, duration time.Duration, completedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var interview model.Interview
		if err := tx.First(&interview, id).Error; err != nil {
			return err
		}
		if err := tx.Where("interview_id = ?", id).Delete(&model.InterviewQuestion{}).Error; err != nil {
			return err
		}
		for i := range turns {
			turns[i].ID = 0
			turns[i].InterviewID = id
			turns[i].Position = i
		}
		if len(turns) > 0 {
			if err := tx.Create(&turns).Error; err != nil {
				return err
			}
		}
		return tx.Model(&interview).Updates(map[string]interface{}{
			"status":             model.InterviewStatusCompleted,
			"total_score":        totalScore,
			"interview_duration": int(duration.Seconds()),
			"completed_at":       completedAt,
		}).Error
	})
}
