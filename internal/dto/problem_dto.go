package dto

import "time"

type SampleTestDTO struct {
	Input  string `json:"input"`
	Output string `json:"output" binding:"required"`
}

type ProblemCreateDTO struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Difficulty  string          `json:"difficulty" binding:"required,oneof=Easy Medium Hard"`
	Topic       string          `json:"topic"`
	SampleTests []SampleTestDTO `json:"sample_tests" binding:"required,min=1,dive"`
}

type ProblemResponseDTO struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Difficulty  string          `json:"difficulty"`
	Topic       string          `json:"topic,omitempty"`
	SampleTests []SampleTestDTO `json:"sample_tests"`
	CreatedAt   time.Time       `json:"created_at"`
}

type CodeRunDTO struct {
	Language string `json:"language" binding:"required,oneof=javascript python java cpp"`
	Code     string `json:"code" binding:"required"`
}

// TestResultDTO is the outcome of running code against one sample test.
type TestResultDTO struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Stderr   string `json:"stderr,omitempty"`
	Passed   bool   `json:"passed"`
}

type SubmissionResultDTO struct {
	Status  string          `json:"status"`
	Results []TestResultDTO `json:"results"`
	Attempt *AttemptDTO     `json:"attempt,omitempty"`
}

type AttemptCreateDTO struct {
	UserID    uint   `json:"user_id"` // set from the token
	ProblemID uint   `json:"problem_id" binding:"required"`
	Title     string `json:"title"`
	Status    string `json:"status" binding:"required,oneof=Accepted 'Wrong Answer'"`
	Language  string `json:"language" binding:"required"`
	Code      string `json:"code" binding:"required"`
}

type AttemptDTO struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	ProblemID   uint      `json:"problem_id"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	Language    string    `json:"language"`
	Code        string    `json:"code"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type LanguageDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
