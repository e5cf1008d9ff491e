package service

import "errors"

// Client errors. Controllers map these to 4xx responses.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("old password is incorrect")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("not allowed to act on another user's data")
	ErrNoSampleTests      = errors.New("no sample tests available")
	ErrInvalidQuizTotals  = errors.New("correct and wrong answers must add up to the total")
	ErrUnknownQuiz        = errors.New("unknown quiz category")
	ErrUnsupportedImage   = errors.New("profile image must be a png, jpeg, gif or webp file")
	ErrInterviewCompleted = errors.New("interview already completed")
)
