package service

import (
	"math"
	"sort"

	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/model"
	"github.com/lshigami/PrepDeck/internal/repository"
)

// DashboardService aggregates a user's quiz, coding and interview history per category.
type DashboardService interface {
	UserDashboard(userID uint) (*dto.DashboardDTO, error)
}

type dashboardService struct {
	quizRepo      repository.QuizReportRepository
	attemptRepo   repository.AttemptRepository
	interviewRepo repository.InterviewRepository
	converter     ScoreConverterService
}

func NewDashboardService(
	quizRepo repository.QuizReportRepository,
	attemptRepo repository.AttemptRepository,
	interviewRepo repository.InterviewRepository,
	converter ScoreConverterService,
) DashboardService {
	return &dashboardService{
		quizRepo:      quizRepo,
		attemptRepo:   attemptRepo,
		interviewRepo: interviewRepo,
		converter:     converter,
	}
}

type statAccumulator map[string]*dto.CategoryStatDTO

func (a statAccumulator) add(category string, score float64) {
	st, ok := a[category]
	if !ok {
		st = &dto.CategoryStatDTO{Category: category}
		a[category] = st
	}
	// running mean
	st.Count++
	st.AverageScore += (score - st.AverageScore) / float64(st.Count)
}

func (a statAccumulator) list() []dto.CategoryStatDTO {
	out := make([]dto.CategoryStatDTO, 0, len(a))
	for _, st := range a {
		st.AverageScore = math.Round(st.AverageScore*10) / 10
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

func (s *dashboardService) UserDashboard(userID uint) (*dto.DashboardDTO, error) {
	quizzes, err := s.quizRepo.FindAllByUser(userID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.attemptRepo.FindAllByUser(&userID)
	if err != nil {
		return nil, err
	}
	interviews, err := s.interviewRepo.FindAllByUser(userID)
	if err != nil {
		return nil, err
	}

	quizStats := statAccumulator{}
	for _, q := range quizzes {
		pct := 0.0
		if q.TotalQuestions > 0 {
			pct = float64(q.CorrectAnswers) / float64(q.TotalQuestions) * 100
		}
		quizStats.add(q.QuizID, pct)
	}

	interviewStats := statAccumulator{}
	for _, iv := range interviews {
		if iv.Status != model.InterviewStatusCompleted {
			continue
		}
		interviewStats.add(iv.Category, s.converter.ToPercent(iv.TotalScore, len(iv.Questions)))
	}

	out := &dto.DashboardDTO{
		UserID:          userID,
		Quizzes:         quizStats.list(),
		Interviews:      interviewStats.list(),
		CodingAttempts:  len(attempts),
		CodingLanguages: map[string]int{},
	}
	solved := map[uint]bool{}
	for _, a := range attempts {
		out.CodingLanguages[a.Language]++
		if a.Status == model.AttemptStatusAccepted {
			out.CodingAccepted++
			solved[a.ProblemID] = true
		}
	}
	out.ProblemsSolved = len(solved)
	return out, nil
}
