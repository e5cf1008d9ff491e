package service

import "math"

// ScoreConverterService maps raw interview totals onto a 0-100 scale so sessions of
// different lengths compare on the dashboard.
type ScoreConverterService interface {
	ToPercent(rawTotal float64, questions int) float64
}

type scoreConverterService struct{}

func NewScoreConverterService() ScoreConverterService {
	return &scoreConverterService{}
}

func (s *scoreConverterService) ToPercent(rawTotal float64, questions int) float64 {
	if questions <= 0 || rawTotal <= 0 {
		return 0
	}
	pct := rawTotal / (float64(questions) * MaxAnswerScore) * 100
	if pct > 100 {
		pct = 100
	}
	// one decimal place
	return math.Round(pct*10) / 10
}
