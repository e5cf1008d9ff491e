package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lshigami/PrepDeck/internal/catalog"
	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/interview"
	"github.com/lshigami/PrepDeck/internal/model"
	"github.com/lshigami/PrepDeck/internal/repository"
	"github.com/lshigami/PrepDeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var textResume = ResumeArtifact{FileName: "cv.txt", MIMEType: "text/plain", Data: []byte("Go developer, 5 years")}

func newInterviewFixture(t *testing.T, llm LLMService) (InterviewService, repository.InterviewRepository, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.Load("")
	require.NoError(t, err)
	repo := repository.NewInterviewRepository(testutil.NewDB(t))
	return NewInterviewService(repo, llm, cat, NewScoreConverterService()), repo, cat
}

func firstCategory(t *testing.T, cat *catalog.Catalog) string {
	t.Helper()
	require.NotEmpty(t, cat.InterviewCategories)
	return cat.InterviewCategories[0].Name
}

func TestStartInterview_StoresGeneratedQuestions(t *testing.T) {
	llm := &fakeLLM{questions: []string{"Why Go?", "Tell me about a hard bug."}}
	svc, repo, cat := newInterviewFixture(t, llm)
	category := firstCategory(t, cat)

	resp, err := svc.StartInterview(context.Background(), 7, category, textResume)
	require.NoError(t, err)
	assert.Equal(t, llm.questions, resp.Questions)
	assert.Equal(t, category, resp.Category)

	require.Len(t, llm.requests, 1)
	assert.Equal(t, cat.QuestionsPerSession, llm.requests[0].Count)

	stored, err := repo.FindByIDWithQuestions(resp.InterviewID)
	require.NoError(t, err)
	assert.Equal(t, model.InterviewStatusInProgress, stored.Status)
	assert.Equal(t, "fake/fake-1", stored.LLMModel)
	assert.Equal(t, "Go developer, 5 years", stored.ResumeText)
	require.Len(t, stored.Questions, 2)
	assert.Equal(t, "Tell me about a hard bug.", stored.Questions[1].Question)
}

func TestStartInterview_FallsBackWithoutProvider(t *testing.T) {
	svc, _, cat := newInterviewFixture(t, &fakeLLM{generateErr: ErrLLMUnavailable})
	category := firstCategory(t, cat)

	resp, err := svc.StartInterview(context.Background(), 1, category, textResume)
	require.NoError(t, err)

	fallback := cat.InterviewCategories[0].FallbackQuestions
	want := len(fallback)
	if cat.QuestionsPerSession < want {
		want = cat.QuestionsPerSession
	}
	assert.Equal(t, fallback[:want], resp.Questions)
}

func TestStartInterview_RejectsBadInput(t *testing.T) {
	svc, repo, cat := newInterviewFixture(t, &fakeLLM{questions: []string{"Q?"}})
	category := firstCategory(t, cat)
	ctx := context.Background()

	_, err := svc.StartInterview(ctx, 1, category, ResumeArtifact{})
	assert.ErrorIs(t, err, interview.ErrInputMissing)

	_, err = svc.StartInterview(ctx, 1, "  ", textResume)
	assert.ErrorIs(t, err, interview.ErrInputMissing)

	_, err = svc.StartInterview(ctx, 0, category, textResume)
	assert.ErrorIs(t, err, interview.ErrInputMissing)

	_, err = svc.StartInterview(ctx, 1, "Astrology", textResume)
	assert.ErrorIs(t, err, interview.ErrUnknownCategory)

	all, err := repo.FindAllByUser(1)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStartInterview_EmptyGenerationIsNotStored(t *testing.T) {
	svc, repo, cat := newInterviewFixture(t, &fakeLLM{questions: nil})

	_, err := svc.StartInterview(context.Background(), 3, firstCategory(t, cat), textResume)
	assert.ErrorIs(t, err, interview.ErrInvalidSequence)

	all, err := repo.FindAllByUser(3)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStartInterview_ProviderFailure(t *testing.T) {
	svc, _, cat := newInterviewFixture(t, &fakeLLM{generateErr: errors.New("quota exceeded")})

	_, err := svc.StartInterview(context.Background(), 3, firstCategory(t, cat), textResume)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestFeedback(t *testing.T) {
	llm := &fakeLLM{feedback: "Clear and concise.", score: 8}
	svc, _, _ := newInterviewFixture(t, llm)
	ctx := context.Background()

	resp, err := svc.Feedback(ctx, dto.FeedbackRequestDTO{Question: "Why Go?", Answer: "Simplicity."})
	require.NoError(t, err)
	assert.Equal(t, "Clear and concise.", resp.Feedback)
	assert.Equal(t, 8.0, resp.Score)

	resp, err = svc.Feedback(ctx, dto.FeedbackRequestDTO{Question: "Why Go?", Answer: interview.NoResponse})
	require.NoError(t, err)
	assert.Equal(t, interview.NoResponseFeedback, resp.Feedback)
	assert.Zero(t, resp.Score)
	assert.Equal(t, []string{"Simplicity."}, llm.scored)
}

func TestFeedback_EmptyProviderTextUsesDefault(t *testing.T) {
	svc, _, _ := newInterviewFixture(t, &fakeLLM{score: 5})

	resp, err := svc.Feedback(context.Background(), dto.FeedbackRequestDTO{Question: "Q?", Answer: "A"})
	require.NoError(t, err)
	assert.Equal(t, interview.DefaultFeedback, resp.Feedback)
}

func TestSaveReport_CompletesInterview(t *testing.T) {
	llm := &fakeLLM{questions: []string{"Q1?", "Q2?"}}
	svc, _, cat := newInterviewFixture(t, llm)
	ctx := context.Background()

	started, err := svc.StartInterview(ctx, 9, firstCategory(t, cat), textResume)
	require.NoError(t, err)

	begin := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	report := interview.Report{
		SessionID: started.InterviewID,
		UserID:    9,
		Category:  started.Category,
		Turns: []interview.Turn{
			{Question: "Q1?", Answer: "A1", Feedback: "ok", Score: 6},
			{Question: "Q2?", Answer: interview.NoResponse, Feedback: interview.NoResponseFeedback},
		},
		TotalScore:  6,
		StartedAt:   begin,
		CompletedAt: begin.Add(95 * time.Second),
	}
	require.NoError(t, svc.SaveReport(ctx, report))

	got, err := svc.GetInterview(started.InterviewID)
	require.NoError(t, err)
	assert.Equal(t, model.InterviewStatusCompleted, got.Status)
	assert.Equal(t, 95, got.InterviewDuration)
	assert.Equal(t, 6.0, got.TotalScore)
	assert.Equal(t, 30.0, got.ScorePercent)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, interview.NoResponse, got.Questions[1].Answer)

	assert.ErrorIs(t, svc.SaveReport(ctx, report), ErrInterviewCompleted)
}

func TestSubmitReport(t *testing.T) {
	svc, _, cat := newInterviewFixture(t, &fakeLLM{questions: []string{"Q1?"}})
	started, err := svc.StartInterview(context.Background(), 4, firstCategory(t, cat), textResume)
	require.NoError(t, err)

	req := dto.InterviewReportDTO{
		Turns:           []dto.InterviewTurnDTO{{Question: "Q1?", Answer: "A", Feedback: "fine", Score: 9}},
		DurationSeconds: 40,
	}

	_, err = svc.SubmitReport(context.Background(), 5, started.InterviewID, req)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.SubmitReport(context.Background(), 4, started.InterviewID, req)
	require.NoError(t, err)
	assert.Equal(t, 9.0, got.TotalScore)
	assert.Equal(t, 90.0, got.ScorePercent)
	assert.Equal(t, 40, got.InterviewDuration)

	_, err = svc.SubmitReport(context.Background(), 4, started.InterviewID, req)
	assert.ErrorIs(t, err, ErrInterviewCompleted)
}

func TestSubmitReport_RejectsTurnsOffTheQuestionSequence(t *testing.T) {
	svc, repo, cat := newInterviewFixture(t, &fakeLLM{questions: []string{"Q1?", "Q2?", "Q3?"}})
	ctx := context.Background()
	started, err := svc.StartInterview(ctx, 4, firstCategory(t, cat), textResume)
	require.NoError(t, err)

	tests := []struct {
		name  string
		turns []dto.InterviewTurnDTO
	}{
		{"too few turns", []dto.InterviewTurnDTO{{Question: "Q1?", Answer: "A", Score: 10}}},
		{"made up question", []dto.InterviewTurnDTO{
			{Question: "Something else?", Answer: "A", Score: 10},
			{Question: "Q2?", Answer: "A", Score: 10},
			{Question: "Q3?", Answer: "A", Score: 10},
		}},
		{"reordered", []dto.InterviewTurnDTO{
			{Question: "Q2?", Answer: "A"},
			{Question: "Q1?", Answer: "A"},
			{Question: "Q3?", Answer: "A"},
		}},
		{"extra turn", []dto.InterviewTurnDTO{
			{Question: "Q1?"}, {Question: "Q2?"}, {Question: "Q3?"}, {Question: "Q4?"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitReport(ctx, 4, started.InterviewID, dto.InterviewReportDTO{Turns: tt.turns})
			assert.ErrorIs(t, err, interview.ErrInvalidSequence)
		})
	}

	stored, err := repo.FindByIDWithQuestions(started.InterviewID)
	require.NoError(t, err)
	assert.Equal(t, model.InterviewStatusInProgress, stored.Status)
	require.Len(t, stored.Questions, 3)
	assert.Equal(t, "Q1?", stored.Questions[0].Question)
}

func TestSaveReport_RejectsMismatchedTurnLog(t *testing.T) {
	svc, _, cat := newInterviewFixture(t, &fakeLLM{questions: []string{"Q1?", "Q2?"}})
	ctx := context.Background()
	started, err := svc.StartInterview(ctx, 9, firstCategory(t, cat), textResume)
	require.NoError(t, err)

	err = svc.SaveReport(ctx, interview.Report{
		SessionID: started.InterviewID,
		UserID:    9,
		Turns:     []interview.Turn{{Question: "Q1?", Answer: "A1", Score: 10}},
	})
	assert.ErrorIs(t, err, interview.ErrInvalidSequence)

	got, err := svc.GetInterview(started.InterviewID)
	require.NoError(t, err)
	assert.Equal(t, model.InterviewStatusInProgress, got.Status)
}

func TestLoadSession(t *testing.T) {
	svc, _, cat := newInterviewFixture(t, &fakeLLM{questions: []string{"Q1?", "Q2?"}})
	started, err := svc.StartInterview(context.Background(), 2, firstCategory(t, cat), textResume)
	require.NoError(t, err)

	session, err := svc.LoadSession(2, started.InterviewID)
	require.NoError(t, err)
	assert.Equal(t, started.InterviewID, session.ID)
	assert.Equal(t, uint(2), session.UserID)
	assert.Equal(t, []string{"Q1?", "Q2?"}, session.Questions)

	_, err = svc.LoadSession(3, started.InterviewID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestScorerAdapter(t *testing.T) {
	svc, _, _ := newInterviewFixture(t, &fakeLLM{feedback: "nice", score: 7})

	fb, err := svc.Scorer().ScoreAnswer(context.Background(), "Q?", "A")
	require.NoError(t, err)
	assert.Equal(t, interview.Feedback{Text: "nice", Score: 7}, fb)

	failing, _, _ := newInterviewFixture(t, &fakeLLM{scoreErr: errors.New("boom")})
	_, err = failing.Scorer().ScoreAnswer(context.Background(), "Q?", "A")
	assert.Error(t, err)
}
