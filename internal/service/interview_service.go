package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lshigami/PrepDeck/internal/catalog"
	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/interview"
	"github.com/lshigami/PrepDeck/internal/model"
	"github.com/lshigami/PrepDeck/internal/repository"
	"github.com/rs/zerolog/log"
)

// InterviewService starts interview sessions, scores answers and stores finished reports.
type InterviewService interface {
	StartInterview(ctx context.Context, userID uint, category string, resume ResumeArtifact) (*dto.InterviewStartResponseDTO, error)
	Feedback(ctx context.Context, req dto.FeedbackRequestDTO) (*dto.FeedbackResponseDTO, error)
	SubmitReport(ctx context.Context, userID, interviewID uint, req dto.InterviewReportDTO) (*dto.InterviewDTO, error)
	GetInterview(id uint) (*dto.InterviewDTO, error)
	ListUserInterviews(userID uint) ([]dto.InterviewDTO, error)
	// LoadSession returns the question sequence of an unfinished interview owned by userID.
	LoadSession(userID, interviewID uint) (interview.Session, error)
	Scorer() interview.Scorer
	interview.ReportStore
}

type interviewService struct {
	interviewRepo repository.InterviewRepository
	llm           LLMService
	catalog       *catalog.Catalog
	converter     ScoreConverterService
}

func NewInterviewService(
	interviewRepo repository.InterviewRepository,
	llm LLMService,
	cat *catalog.Catalog,
	converter ScoreConverterService,
) InterviewService {
	return &interviewService{
		interviewRepo: interviewRepo,
		llm:           llm,
		catalog:       cat,
		converter:     converter,
	}
}

func (s *interviewService) StartInterview(ctx context.Context, userID uint, category string, resume ResumeArtifact) (*dto.InterviewStartResponseDTO, error) {
	category = strings.TrimSpace(category)
	if userID == 0 || category == "" || len(resume.Data) == 0 {
		return nil, interview.ErrInputMissing
	}
	cat, ok := s.catalog.Category(category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", interview.ErrUnknownCategory, category)
	}

	count := s.catalog.QuestionsPerSession
	modelName := s.llm.Provider() + "/" + s.llm.Model()
	questions, err := s.llm.GenerateQuestions(ctx, QuestionRequest{Category: cat, Resume: resume, Count: count})
	if errors.Is(err, ErrLLMUnavailable) {
		log.Warn().Str("category", category).Msg("No LLM configured, using catalog fallback questions")
		questions = fallbackQuestions(cat, count)
		modelName = "catalog"
	} else if err != nil {
		log.Error().Err(err).Uint("userID", userID).Str("category", category).Msg("Question generation failed")
		return nil, fmt.Errorf("generating questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, interview.ErrInvalidSequence
	}

	record := model.Interview{
		UserID:   userID,
		Category: category,
		Status:   model.InterviewStatusInProgress,
		LLMModel: modelName,
	}
	if text, ok := resumeAsText(resume); ok {
		record.ResumeText = text
	}
	for i, q := range questions {
		record.Questions = append(record.Questions, model.InterviewQuestion{Position: i, Question: q})
	}
	if err := s.interviewRepo.Create(&record); err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Failed to create interview")
		return nil, fmt.Errorf("database error creating interview: %w", err)
	}

	log.Info().Uint("interviewID", record.ID).Uint("userID", userID).Str("category", category).
		Int("questions", len(questions)).Msg("Interview created")
	return &dto.InterviewStartResponseDTO{InterviewID: record.ID, Category: category, Questions: questions}, nil
}

func fallbackQuestions(cat catalog.InterviewCategory, count int) []string {
	if count <= 0 || count > len(cat.FallbackQuestions) {
		count = len(cat.FallbackQuestions)
	}
	out := make([]string, count)
	copy(out, cat.FallbackQuestions[:count])
	return out
}

func (s *interviewService) Feedback(ctx context.Context, req dto.FeedbackRequestDTO) (*dto.FeedbackResponseDTO, error) {
	answer := strings.TrimSpace(req.Answer)
	if answer == "" || answer == interview.NoResponse {
		return &dto.FeedbackResponseDTO{Feedback: interview.NoResponseFeedback}, nil
	}
	feedback, score, err := s.llm.ScoreAnswer(ctx, req.Question, answer)
	if err != nil {
		return nil, fmt.Errorf("scoring answer: %w", err)
	}
	if feedback == "" {
		feedback = interview.DefaultFeedback
	}
	return &dto.FeedbackResponseDTO{Feedback: feedback, Score: score}, nil
}

func (s *interviewService) SubmitReport(ctx context.Context, userID, interviewID uint, req dto.InterviewReportDTO) (*dto.InterviewDTO, error) {
	record, err := s.interviewRepo.FindByIDWithQuestions(interviewID)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, ErrForbidden
	}
	if record.Status == model.InterviewStatusCompleted {
		return nil, ErrInterviewCompleted
	}

	var total float64
	asked := make([]string, 0, len(req.Turns))
	turns := make([]model.InterviewQuestion, 0, len(req.Turns))
	for _, t := range req.Turns {
		total += t.Score
		asked = append(asked, t.Question)
		turns = append(turns, model.InterviewQuestion{
			Question: t.Question,
			Answer:   t.Answer,
			Feedback: t.Feedback,
			Score:    t.Score,
		})
	}
	if err := matchQuestions(record, asked); err != nil {
		return nil, err
	}
	duration := time.Duration(req.DurationSeconds) * time.Second
	if err := s.interviewRepo.Complete(ctx, interviewID, turns, total, duration, time.Now()); err != nil {
		log.Error().Err(err).Uint("interviewID", interviewID).Msg("Failed to store interview report")
		return nil, fmt.Errorf("database error storing report: %w", err)
	}
	return s.GetInterview(interviewID)
}

// SaveReport stores a report produced by a live session.
func (s *interviewService) SaveReport(ctx context.Context, report interview.Report) error {
	record, err := s.interviewRepo.FindByIDWithQuestions(report.SessionID)
	if err != nil {
		return err
	}
	if record.Status == model.InterviewStatusCompleted {
		return ErrInterviewCompleted
	}

	asked := make([]string, 0, len(report.Turns))
	turns := make([]model.InterviewQuestion, 0, len(report.Turns))
	for _, t := range report.Turns {
		asked = append(asked, t.Question)
		turns = append(turns, model.InterviewQuestion{
			Question: t.Question,
			Answer:   t.Answer,
			Feedback: t.Feedback,
			Score:    t.Score,
		})
	}
	if err := matchQuestions(record, asked); err != nil {
		return err
	}
	if err := s.interviewRepo.Complete(ctx, report.SessionID, turns, report.TotalScore, report.Duration(), report.CompletedAt); err != nil {
		return fmt.Errorf("database error storing report: %w", err)
	}
	log.Info().Uint("interviewID", report.SessionID).Int("turns", len(turns)).Msg("Interview report stored")
	return nil
}

// matchQuestions requires one turn per generated question, in the generated order.
func matchQuestions(record *model.Interview, asked []string) error {
	if len(asked) != len(record.Questions) {
		return fmt.Errorf("%w: got %d turns for %d questions", interview.ErrInvalidSequence, len(asked), len(record.Questions))
	}
	for i, q := range record.Questions {
		if asked[i] != q.Question {
			return fmt.Errorf("%w: turn %d does not answer question %d", interview.ErrInvalidSequence, i+1, i+1)
		}
	}
	return nil
}

func (s *interviewService) GetInterview(id uint) (*dto.InterviewDTO, error) {
	record, err := s.interviewRepo.FindByIDWithQuestions(id)
	if err != nil {
		return nil, err
	}
	resp := s.toDTO(record)
	return &resp, nil
}

func (s *interviewService) ListUserInterviews(userID uint) ([]dto.InterviewDTO, error) {
	records, err := s.interviewRepo.FindAllByUser(userID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.InterviewDTO, 0, len(records))
	for i := range records {
		resp = append(resp, s.toDTO(&records[i]))
	}
	return resp, nil
}

func (s *interviewService) LoadSession(userID, interviewID uint) (interview.Session, error) {
	record, err := s.interviewRepo.FindByIDWithQuestions(interviewID)
	if err != nil {
		return interview.Session{}, err
	}
	if record.UserID != userID {
		return interview.Session{}, ErrForbidden
	}
	if record.Status == model.InterviewStatusCompleted {
		return interview.Session{}, ErrInterviewCompleted
	}
	questions := make([]string, 0, len(record.Questions))
	for _, q := range record.Questions {
		questions = append(questions, q.Question)
	}
	return interview.Session{
		ID:        record.ID,
		UserID:    record.UserID,
		Category:  record.Category,
		Questions: questions,
	}, nil
}

func (s *interviewService) Scorer() interview.Scorer {
	return llmScorer{llm: s.llm}
}

func (s *interviewService) toDTO(record *model.Interview) dto.InterviewDTO {
	out := dto.InterviewDTO{
		ID:                record.ID,
		UserID:            record.UserID,
		Category:          record.Category,
		Status:            record.Status,
		TotalScore:        record.TotalScore,
		InterviewDuration: record.InterviewDuration,
		LLMModel:          record.LLMModel,
		CompletedAt:       record.CompletedAt,
		CreatedAt:         record.CreatedAt,
		Questions:         make([]dto.InterviewQuestionDTO, 0, len(record.Questions)),
	}
	for _, q := range record.Questions {
		out.Questions = append(out.Questions, dto.InterviewQuestionDTO{
			Position: q.Position,
			Question: q.Question,
			Answer:   q.Answer,
			Feedback: q.Feedback,
			Score:    q.Score,
		})
	}
	out.ScorePercent = s.converter.ToPercent(record.TotalScore, len(record.Questions))
	return out
}

// llmScorer adapts an LLMService to the live session's Scorer.
type llmScorer struct {
	llm LLMService
}

func (s llmScorer) ScoreAnswer(ctx context.Context, question, answer string) (interview.Feedback, error) {
	feedback, score, err := s.llm.ScoreAnswer(ctx, question, answer)
	if err != nil {
		return interview.Feedback{}, err
	}
	return interview.Feedback{Text: feedback, Score: score}, nil
}
