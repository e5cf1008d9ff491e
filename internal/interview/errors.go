package interview

import "errors"

var (
	// ErrInputMissing is returned when a session is started without a category,
	// respondent or resume.
	ErrInputMissing = errors.New("category, respondent and resume are required")
	// ErrInvalidSequence is returned for an empty question sequence, or a turn log that does not
	// follow it.
	ErrInvalidSequence = errors.New("invalid question sequence")
	// ErrUnknownCategory is returned for categories outside the configured set.
	ErrUnknownCategory = errors.New("unknown interview category")
	ErrAlreadyStarted  = errors.New("session already started")
	ErrNotCompleted    = errors.New("session has not completed")

	ErrRecognitionUnavailable = errors.New("speech recognition unavailable")
)
