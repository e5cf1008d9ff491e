package service

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/PrepDeck/internal/catalog"
	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/model"
	"github.com/lshigami/PrepDeck/internal/repository"
	"github.com/rs/zerolog/log"
)

type QuizReportService interface {
	CreateReport(req dto.QuizReportCreateDTO) (*dto.QuizReportDTO, error)
	ListReports() ([]dto.QuizReportDTO, error)
	ListUserReports(userID uint) ([]dto.QuizReportDTO, error)
}

type quizReportService struct {
	reportRepo repository.QuizReportRepository
	catalog    *catalog.Catalog
}

func NewQuizReportService(reportRepo repository.QuizReportRepository, cat *catalog.Catalog) QuizReportService {
	return &quizReportService{reportRepo: reportRepo, catalog: cat}
}

func (s *quizReportService) CreateReport(req dto.QuizReportCreateDTO) (*dto.QuizReportDTO, error) {
	if !s.catalog.IsQuizCategory(req.QuizID) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuiz, req.QuizID)
	}
	if req.CorrectAnswers+req.WrongAnswers != req.TotalQuestions {
		return nil, ErrInvalidQuizTotals
	}

	var report model.QuizReport
	copier.Copy(&report, &req)
	if err := s.reportRepo.Create(&report); err != nil {
		log.Error().Err(err).Uint("userID", req.UserID).Msg("Failed to save quiz report")
		return nil, fmt.Errorf("database error saving quiz report: %w", err)
	}

	var resp dto.QuizReportDTO
	copier.Copy(&resp, &report)
	return &resp, nil
}

func (s *quizReportService) ListReports() ([]dto.QuizReportDTO, error) {
	reports, err := s.reportRepo.FindAll()
	if err != nil {
		return nil, err
	}
	resp := make([]dto.QuizReportDTO, 0, len(reports))
	copier.Copy(&resp, &reports)
	return resp, nil
}

func (s *quizReportService) ListUserReports(userID uint) ([]dto.QuizReportDTO, error) {
	reports, err := s.reportRepo.FindAllByUser(userID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.QuizReportDTO, 0, len(reports))
	copier.Copy(&resp, &reports)
	return resp, nil
}
