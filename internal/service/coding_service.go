package service

import (
	"context"
	"strings"

	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/model"
	"github.com/lshigami/PrepDeck/internal/piston"
	"github.com/lshigami/PrepDeck/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// CodingService runs user code against a problem's sample tests.
type CodingService interface {
	// Run executes only the first sample test.
	Run(ctx context.Context, problemID uint, req dto.CodeRunDTO) (*dto.TestResultDTO, error)
	// Submit executes every sample test and records the attempt for userID.
	Submit(ctx context.Context, userID, problemID uint, req dto.CodeRunDTO) (*dto.SubmissionResultDTO, error)
}

type codingService struct {
	problemRepo repository.ProblemRepository
	attempts    AttemptService
	executor    piston.Executor
}

func NewCodingService(problemRepo repository.ProblemRepository, attempts AttemptService, executor piston.Executor) CodingService {
	return &codingService{problemRepo: problemRepo, attempts: attempts, executor: executor}
}

func (s *codingService) Run(ctx context.Context, problemID uint, req dto.CodeRunDTO) (*dto.TestResultDTO, error) {
	problem, err := s.problemRepo.FindByIDWithSampleTests(problemID)
	if err != nil {
		return nil, err
	}
	if len(problem.SampleTests) == 0 {
		return nil, ErrNoSampleTests
	}
	result, err := s.runTest(ctx, req, problem.SampleTests[0])
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *codingService) Submit(ctx context.Context, userID, problemID uint, req dto.CodeRunDTO) (*dto.SubmissionResultDTO, error) {
	problem, err := s.problemRepo.FindByIDWithSampleTests(problemID)
	if err != nil {
		return nil, err
	}
	if len(problem.SampleTests) == 0 {
		return nil, ErrNoSampleTests
	}

	results := make([]dto.TestResultDTO, len(problem.SampleTests))
	g, gctx := errgroup.WithContext(ctx)
	for i, test := range problem.SampleTests {
		g.Go(func() error {
			r, err := s.runTest(gctx, req, test)
			if err != nil {
				// an execution error fails the test case, not the submission
				log.Warn().Err(err).Uint("problemID", problemID).Int("test", i).Msg("Sample test execution failed")
				r = dto.TestResultDTO{Input: test.Input, Expected: strings.TrimSpace(test.Output), Stderr: "Error running code"}
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	status := model.AttemptStatusAccepted
	for _, r := range results {
		if !r.Passed {
			status = model.AttemptStatusWrongAnswer
			break
		}
	}

	resp := &dto.SubmissionResultDTO{Status: status, Results: results}
	attempt, err := s.attempts.SaveAttempt(dto.AttemptCreateDTO{
		UserID:    userID,
		ProblemID: problemID,
		Title:     problem.Title,
		Status:    status,
		Language:  piston.DisplayName(req.Language),
		Code:      req.Code,
	})
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Uint("problemID", problemID).Msg("Failed to save attempt")
		return nil, err
	}
	resp.Attempt = attempt
	log.Info().Uint("userID", userID).Uint("problemID", problemID).Str("status", status).Msg("Code submission judged")
	return resp, nil
}

func (s *codingService) runTest(ctx context.Context, req dto.CodeRunDTO, test model.SampleTest) (dto.TestResultDTO, error) {
	res, err := s.executor.Execute(ctx, piston.Request{Language: req.Language, Code: req.Code, Stdin: test.Input})
	if err != nil {
		return dto.TestResultDTO{}, err
	}
	got := strings.TrimSpace(res.Output)
	expected := strings.TrimSpace(test.Output)
	return dto.TestResultDTO{
		Input:    test.Input,
		Expected: expected,
		Actual:   got,
		Stderr:   res.Stderr,
		Passed:   got == expected,
	}, nil
}
