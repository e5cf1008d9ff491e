package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	AttemptStatusAccepted    = "Accepted"
	AttemptStatusWrongAnswer = "Wrong Answer"
)

// CodingAttempt is one submission of source code against a problem's sample tests.
type CodingAttempt struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	UserID      uint           `json:"user_id" gorm:"not null;index"`
	ProblemID   uint           `json:"problem_id" gorm:"not null;index"`
	Problem     CodingProblem  `json:"problem,omitempty" gorm:"foreignKey:ProblemID"`
	Title       string         `json:"title"`
	Status      string         `json:"status" gorm:"not null"` // "Accepted", "Wrong Answer"
	Language    string         `json:"language"`
	Code        string         `json:"code" gorm:"type:text"`
	SubmittedAt time.Time      `json:"submitted_at" gorm:"autoCreateTime"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
