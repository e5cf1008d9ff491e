package repository

import (
	"github.com/lshigami/PrepDeck/internal/model"
	"gorm.io/gorm"
)

type ContactRepository interface {
	Create(msg *model.ContactMessage) error
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(msg *model.ContactMessage) error {
	return r.db.Create(msg).Error
}
