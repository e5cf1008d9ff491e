package model

import (
	"time"

	"gorm.io/gorm"
)

type CodingProblem struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Title       string         `json:"title" gorm:"not null;uniqueIndex"`
	Description string         `json:"description" gorm:"type:text"`
	Difficulty  string         `json:"difficulty" gorm:"not null"` // "Easy", "Medium", "Hard"
	Topic       string         `json:"topic,omitempty"`
	SampleTests []SampleTest   `json:"sample_tests,omitempty" gorm:"foreignKey:ProblemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type SampleTest struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	ProblemID uint   `json:"problem_id" gorm:"not null;index"`
	Position  int    `json:"position" gorm:"not null"`
	Input     string `json:"input" gorm:"type:text"`
	Output    string `json:"output" gorm:"type:text"`
}
