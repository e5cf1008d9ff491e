package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jinzhu/copier"
	"github.com/lshigami/PrepDeck/config"
	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/model"
	"github.com/lshigami/PrepDeck/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

type AuthService interface {
	Signup(req dto.SignupRequestDTO) (*dto.AuthResponseDTO, error)
	Login(req dto.LoginRequestDTO) (*dto.AuthResponseDTO, error)
	// ParseToken returns the user id carried by a valid token.
	ParseToken(token string) (uint, error)
}

type authService struct {
	userRepo repository.UserRepository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	ttl := cfg.Auth.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{userRepo: userRepo, secret: []byte(cfg.Auth.JWTSecret), ttl: ttl, now: time.Now}
}

func (s *authService) Signup(req dto.SignupRequestDTO) (*dto.AuthResponseDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	user := model.User{Name: strings.TrimSpace(req.Name), Email: email, PasswordHash: string(hash)}
	if err := s.userRepo.Create(&user); err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to create user")
		return nil, fmt.Errorf("database error creating user: %w", err)
	}
	log.Info().Uint("userID", user.ID).Msg("User signed up")
	return s.authResponse(&user)
}

func (s *authService) Login(req dto.LoginRequestDTO) (*dto.AuthResponseDTO, error) {
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.authResponse(user)
}

func (s *authService) authResponse(user *model.User) (*dto.AuthResponseDTO, error) {
	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	var resp dto.AuthResponseDTO
	if err := copier.Copy(&resp.User, user); err != nil {
		return nil, fmt.Errorf("error preparing response data: %w", err)
	}
	resp.Token = token
	return &resp, nil
}

func (s *authService) issueToken(userID uint) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (s *authService) ParseToken(token string) (uint, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
