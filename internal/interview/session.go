// Package interview runs a spoken mock interview one turn at a time: ask a question,
// listen for an answer until a final transcript or a timeout, score it, record it, move on.
package interview

import "time"

// Status is the lifecycle of an interview session.
type Status string

const (
	StatusCollectingStartInput Status = "collecting-start-input"
	StatusInProgress           Status = "in-progress"
	StatusCompleted            Status = "completed"
)

// TurnState is the ephemeral position of the sequencer within the current turn.
type TurnState string

const (
	StateIdle               TurnState = "idle"
	StateSpeakingQuestion   TurnState = "speaking-question"
	StateListeningForAnswer TurnState = "listening-for-answer"
	StateScoringAnswer      TurnState = "scoring-answer"
	StateShowingFeedback    TurnState = "showing-feedback"
	StateSessionComplete    TurnState = "session-complete"
)

const (
	// NoResponse is recorded as the answer when a turn times out without a transcript.
	NoResponse = "No response"
	// NoResponseFeedback is recorded as feedback for NoResponse turns; the scorer is not called.
	NoResponseFeedback = "No response recorded"
	// FeedbackUnavailable is recorded when the scorer failed.
	FeedbackUnavailable = "Feedback unavailable"
)

// Session identifies one interview attempt.
type Session struct {
	ID        uint
	UserID    uint
	Category  string
	Questions []string
	TurnIndex int
	Status    Status
	StartedAt time.Time
}

// Turn is one question/answer/feedback triple. Never mutated after it is recorded.
type Turn struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Feedback string  `json:"feedback"`
	Score    float64 `json:"score"`
}

// Answered reports whether the respondent gave an actual answer.
func (t Turn) Answered() bool {
	return t.Answer != NoResponse
}
