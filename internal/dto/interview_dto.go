package dto

import "time"

type InterviewStartResponseDTO struct {
	InterviewID uint     `json:"interview_id"`
	Category    string   `json:"category"`
	Questions   []string `json:"questions"`
}

type FeedbackRequestDTO struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

type FeedbackResponseDTO struct {
	Feedback string  `json:"feedback"`
	Score    float64 `json:"score"`
}

type InterviewTurnDTO struct {
	Question string  `json:"question" binding:"required"`
	Answer   string  `json:"answer"`
	Feedback string  `json:"feedback"`
	Score    float64 `json:"score"`
}

// InterviewReportDTO is posted by clients that run the turn loop themselves.
type InterviewReportDTO struct {
	Turns           []InterviewTurnDTO `json:"turns" binding:"required,min=1,dive"`
	DurationSeconds int                `json:"duration_seconds" binding:"min=0"`
}

type InterviewQuestionDTO struct {
	Position int     `json:"position"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Feedback string  `json:"feedback"`
	Score    float64 `json:"score"`
}

type InterviewDTO struct {
	ID                uint                   `json:"id"`
	UserID            uint                   `json:"user_id"`
	Category          string                 `json:"category"`
	Status            string                 `json:"status"`
	TotalScore        float64                `json:"total_score"`
	ScorePercent      float64                `json:"score_percent"`
	InterviewDuration int                    `json:"interview_duration"`
	LLMModel          string                 `json:"llm_model"`
	Questions         []InterviewQuestionDTO `json:"questions"`
	CompletedAt       *time.Time             `json:"completed_at,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

type CategoriesDTO struct {
	Interview           []string `json:"interview"`
	Quiz                []string `json:"quiz"`
	QuestionsPerSession int      `json:"questions_per_session"`
}
