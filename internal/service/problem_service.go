package service

import (
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/model"
	"github.com/lshigami/PrepDeck/internal/repository"
	"github.com/rs/zerolog/log"
)

type ProblemService interface {
	CreateProblem(req dto.ProblemCreateDTO) (*dto.ProblemResponseDTO, error)
	GetProblem(id uint) (*dto.ProblemResponseDTO, error)
	ListProblems() ([]dto.ProblemResponseDTO, error)
}

type problemService struct {
	problemRepo repository.ProblemRepository
}

func NewProblemService(problemRepo repository.ProblemRepository) ProblemService {
	return &problemService{problemRepo: problemRepo}
}

func (s *problemService) CreateProblem(req dto.ProblemCreateDTO) (*dto.ProblemResponseDTO, error) {
	if len(req.SampleTests) == 0 {
		return nil, ErrNoSampleTests
	}
	problem := model.CodingProblem{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Topic:       strings.TrimSpace(req.Topic),
	}
	for i, t := range req.SampleTests {
		if strings.TrimSpace(t.Output) == "" {
			return nil, fmt.Errorf("sample test %d has an empty expected output", i+1)
		}
		problem.SampleTests = append(problem.SampleTests, model.SampleTest{Position: i, Input: t.Input, Output: t.Output})
	}

	if err := s.problemRepo.Create(&problem); err != nil {
		log.Error().Err(err).Str("title", problem.Title).Msg("Failed to create problem in database")
		return nil, fmt.Errorf("database error creating problem: %w", err)
	}
	var resp dto.ProblemResponseDTO
	if err := copier.Copy(&resp, &problem); err != nil {
		return nil, fmt.Errorf("error preparing response data: %w", err)
	}
	return &resp, nil
}

func (s *problemService) GetProblem(id uint) (*dto.ProblemResponseDTO, error) {
	problem, err := s.problemRepo.FindByIDWithSampleTests(id)
	if err != nil {
		return nil, err
	}
	var resp dto.ProblemResponseDTO
	copier.Copy(&resp, problem)
	return &resp, nil
}

func (s *problemService) ListProblems() ([]dto.ProblemResponseDTO, error) {
	problems, err := s.problemRepo.FindAllWithSampleTests()
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProblemResponseDTO, 0, len(problems))
	copier.Copy(&resp, &problems)
	return resp, nil
}
