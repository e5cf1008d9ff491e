package dto

import "time"

type QuizAnswerDTO struct {
	QuestionID     string `json:"question_id"`
	Question       string `json:"question"`
	SelectedOption string `json:"selected_option"`
	CorrectOption  string `json:"correct_option"`
	IsCorrect      bool   `json:"is_correct"`
}

type QuizReportCreateDTO struct {
	UserID         uint            `json:"user_id"` // set from the token
	QuizID         string          `json:"quiz_id" binding:"required"`
	Score          float64         `json:"score" binding:"min=0"`
	TotalQuestions int             `json:"total_questions" binding:"required,min=1"`
	CorrectAnswers int             `json:"correct_answers" binding:"min=0"`
	WrongAnswers   int             `json:"wrong_answers" binding:"min=0"`
	Answers        []QuizAnswerDTO `json:"answers" binding:"omitempty,dive"`
}

type QuizReportDTO struct {
	ID             uint            `json:"id"`
	UserID         uint            `json:"user_id"`
	QuizID         string          `json:"quiz_id"`
	Score          float64         `json:"score"`
	TotalQuestions int             `json:"total_questions"`
	CorrectAnswers int             `json:"correct_answers"`
	WrongAnswers   int             `json:"wrong_answers"`
	Answers        []QuizAnswerDTO `json:"answers,omitempty"`
	CompletedAt    time.Time       `json:"completed_at"`
}
