package dto

type CategoryStatDTO struct {
	Category     string  `json:"category"`
	Count        int     `json:"count"`
	AverageScore float64 `json:"average_score"`
}

type DashboardDTO struct {
	UserID          uint              `json:"user_id"`
	Quizzes         []CategoryStatDTO `json:"quizzes"`
	Interviews      []CategoryStatDTO `json:"interviews"`
	CodingAttempts  int               `json:"coding_attempts"`
	CodingAccepted  int               `json:"coding_accepted"`
	ProblemsSolved  int               `json:"problems_solved"`
	CodingLanguages map[string]int    `json:"coding_languages"`
}
