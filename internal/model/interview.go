package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	InterviewStatusInProgress = "in-progress"
	InterviewStatusCompleted  = "completed"
)

type Interview struct {
	ID                uint                `gorm:"primarykey" json:"id"`
	UserID            uint                `json:"user_id" gorm:"not null;index"`
	Category          string              `json:"category" gorm:"not null"`
	ResumeText        string              `json:"resume_text,omitempty" gorm:"type:text"`
	Questions         []InterviewQuestion `json:"questions,omitempty" gorm:"foreignKey:InterviewID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	TotalScore        float64             `json:"total_score"`
	Status            string              `json:"status" gorm:"default:'in-progress'"` // "in-progress", "completed"
	InterviewDuration int                 `json:"interview_duration"`                  // seconds
	LLMModel          string              `json:"llm_model"`
	CompletedAt       *time.Time          `json:"completed_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	DeletedAt         gorm.DeletedAt      `gorm:"index" json:"-"`
}

// InterviewQuestion holds one generated question and, once the turn is recorded, its answer.
type InterviewQuestion struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	InterviewID uint      `json:"interview_id" gorm:"not null;index"`
	Position    int       `json:"position" gorm:"not null"`
	Question    string    `json:"question" gorm:"type:text;not null"`
	Answer      string    `json:"answer" gorm:"type:text"`
	Feedback    string    `json:"feedback" gorm:"type:text"`
	Score       float64   `json:"score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
