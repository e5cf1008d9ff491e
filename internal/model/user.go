package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Name         string         `json:"name" gorm:"not null"`
	Email        string         `json:"email" gorm:"not null;uniqueIndex"`
	PasswordHash string         `json:"-" gorm:"not null"`
	Contact      string         `json:"contact"`
	Image        string         `json:"image" gorm:"type:text"` // data URI
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

type ContactMessage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}
