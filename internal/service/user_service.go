package service

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	GetUser(id uint) (*dto.UserResponseDTO, error)
	// UpdateUser changes profile fields. image may be nil; when set it is stored as a data URI.
	UpdateUser(id uint, req dto.UserUpdateDTO, image []byte) (*dto.UserResponseDTO, error)
	ChangePassword(id uint, req dto.PasswordChangeDTO) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetUser(id uint) (*dto.UserResponseDTO, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	var resp dto.UserResponseDTO
	copier.Copy(&resp, user)
	return &resp, nil
}

var imageTypes = map[string]bool{"image/png": true, "image/jpeg": true, "image/gif": true, "image/webp": true}

func (s *userService) UpdateUser(id uint, req dto.UserUpdateDTO, image []byte) (*dto.UserResponseDTO, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if contact := strings.TrimSpace(req.Contact); contact != "" {
		user.Contact = contact
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if len(image) > 0 {
		mimeType := http.DetectContentType(image)
		if !imageTypes[mimeType] {
			return nil, ErrUnsupportedImage
		}
		user.Image = "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
	}

	if err := s.userRepo.Update(user); err != nil {
		log.Error().Err(err).Uint("userID", id).Msg("Failed to update user")
		return nil, fmt.Errorf("database error updating user: %w", err)
	}
	var resp dto.UserResponseDTO
	copier.Copy(&resp, user)
	return &resp, nil
}

func (s *userService) ChangePassword(id uint, req dto.PasswordChangeDTO) error {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("database error updating password: %w", err)
	}
	log.Info().Uint("userID", id).Msg("Password changed")
	return nil
}
