package service

import (
	"fmt"
	"strings"

	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/model"
	"github.com/lshigami/PrepDeck/internal/repository"
	"github.com/rs/zerolog/log"
)

type ContactService interface {
	Submit(req dto.ContactRequestDTO) error
}

type contactService struct {
	contactRepo repository.ContactRepository
}

func NewContactService(contactRepo repository.ContactRepository) ContactService {
	return &contactService{contactRepo: contactRepo}
}

func (s *contactService) Submit(req dto.ContactRequestDTO) error {
	msg := model.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.contactRepo.Create(&msg); err != nil {
		return fmt.Errorf("database error saving contact message: %w", err)
	}
	log.Info().Uint("messageID", msg.ID).Str("email", msg.Email).Msg("Contact message received")
	return nil
}
