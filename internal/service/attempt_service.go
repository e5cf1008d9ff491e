package service

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/model"
	"github.com/lshigami/PrepDeck/internal/repository"
	"github.com/rs/zerolog/log"
)

type AttemptService interface {
	SaveAttempt(req dto.AttemptCreateDTO) (*dto.AttemptDTO, error)
	ListAttempts(userID *uint) ([]dto.AttemptDTO, error)
}

type attemptService struct {
	attemptRepo repository.AttemptRepository
	problemRepo repository.ProblemRepository
}

func NewAttemptService(attemptRepo repository.AttemptRepository, problemRepo repository.ProblemRepository) AttemptService {
	return &attemptService{attemptRepo: attemptRepo, problemRepo: problemRepo}
}

func (s *attemptService) SaveAttempt(req dto.AttemptCreateDTO) (*dto.AttemptDTO, error) {
	problem, err := s.problemRepo.FindByIDWithSampleTests(req.ProblemID)
	if err != nil {
		log.Error().Err(err).Uint("problemID", req.ProblemID).Msg("Failed to find problem for attempt")
		return nil, err
	}
	title := req.Title
	if title == "" {
		title = problem.Title
	}
	attempt := model.CodingAttempt{
		UserID:    req.UserID,
		ProblemID: req.ProblemID,
		Title:     title,
		Status:    req.Status,
		Language:  req.Language,
		Code:      req.Code,
	}
	if err := s.attemptRepo.Create(&attempt); err != nil {
		log.Error().Err(err).Msg("Failed to create attempt in DB")
		return nil, fmt.Errorf("database error saving attempt: %w", err)
	}
	var resp dto.AttemptDTO
	copier.Copy(&resp, &attempt)
	return &resp, nil
}

func (s *attemptService) ListAttempts(userID *uint) ([]dto.AttemptDTO, error) {
	attempts, err := s.attemptRepo.FindAllByUser(userID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.AttemptDTO, 0, len(attempts))
	copier.Copy(&resp, &attempts)
	return resp, nil
}
