package model

import (
	"time"

	"gorm.io/gorm"
)

type QuizReport struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	UserID         uint           `json:"user_id" gorm:"not null;index"`
	QuizID         string         `json:"quiz_id" gorm:"not null"` // quiz category, e.g. "Numerical"
	Score          float64        `json:"score"`
	TotalQuestions int            `json:"total_questions"`
	CorrectAnswers int            `json:"correct_answers"`
	WrongAnswers   int            `json:"wrong_answers"`
	Answers        []QuizAnswer   `json:"answers,omitempty" gorm:"foreignKey:QuizReportID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CompletedAt    time.Time      `json:"completed_at" gorm:"autoCreateTime"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

type QuizAnswer struct {
	ID             uint   `gorm:"primarykey" json:"id"`
	QuizReportID   uint   `json:"quiz_report_id" gorm:"not null;index"`
	QuestionID     string `json:"question_id"`
	Question       string `json:"question" gorm:"type:text"`
	SelectedOption string `json:"selected_option"`
	CorrectOption  string `json:"correct_option"`
	IsCorrect      bool   `json:"is_correct"`
}
