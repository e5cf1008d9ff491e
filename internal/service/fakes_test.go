package service

import (
	"context"
	"sync"

	"github.com/lshigami/PrepDeck/internal/piston"
)

type fakeLLM struct {
	questions   []string
	generateErr error
	feedback    string
	score       float64
	scoreErr    error

	mu       sync.Mutex
	requests []QuestionRequest
	scored   []string
}

func (f *fakeLLM) Provider() string { return "fake" }
func (f *fakeLLM) Model() string    { return "fake-1" }

func (f *fakeLLM) GenerateQuestions(_ context.Context, req QuestionRequest) ([]string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return f.questions, nil
}

func (f *fakeLLM) ScoreAnswer(_ context.Context, question, answer string) (string, float64, error) {
	f.mu.Lock()
	f.scored = append(f.scored, answer)
	f.mu.Unlock()
	if f.scoreErr != nil {
		return "", 0, f.scoreErr
	}
	return f.feedback, f.score, nil
}

// echoExecutor prints its stdin back, or fails for the configured input.
type echoExecutor struct {
	failOn string
	prefix string
}

func (e echoExecutor) Execute(_ context.Context, req piston.Request) (*piston.Result, error) {
	if e.failOn != "" && req.Stdin == e.failOn {
		return nil, context.DeadlineExceeded
	}
	out := e.prefix + req.Stdin + "\n"
	return &piston.Result{Stdout: out, Output: out}, nil
}
