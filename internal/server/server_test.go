package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/PrepDeck/config"
	"github.com/lshigami/PrepDeck/internal/cache"
	"github.com/lshigami/PrepDeck/internal/catalog"
	adminctrl "github.com/lshigami/PrepDeck/internal/controller/admin"
	userctrl "github.com/lshigami/PrepDeck/internal/controller/user"
	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/interview"
	"github.com/lshigami/PrepDeck/internal/live"
	"github.com/lshigami/PrepDeck/internal/metrics"
	"github.com/lshigami/PrepDeck/internal/piston"
	"github.com/lshigami/PrepDeck/internal/repository"
	"github.com/lshigami/PrepDeck/internal/service"
	"github.com/lshigami/PrepDeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoExecutor prints stdin back, so a problem whose expected output equals its input passes.
type echoExecutor struct{}

func (echoExecutor) Execute(_ context.Context, req piston.Request) (*piston.Result, error) {
	return &piston.Result{Stdout: req.Stdin + "\n", Output: req.Stdin + "\n"}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *live.Hub) {
	t.Helper()
	cfg := &config.Config{
		Server:   config.Server{Port: "0", AllowedOrigins: []string{"*"}},
		Auth:     config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour},
		LogLevel: "error",
	}
	db := testutil.NewDB(t)
	cat, err := catalog.Load("")
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	problemRepo := repository.NewProblemRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	quizRepo := repository.NewQuizReportRepository(db)
	interviewRepo := repository.NewInterviewRepository(db)

	llm, err := service.NewLLMService(cfg)
	require.NoError(t, err)
	converter := service.NewScoreConverterService()
	auth := service.NewAuthService(userRepo, cfg)
	problems := service.NewProblemService(problemRepo)
	attempts := service.NewAttemptService(attemptRepo, problemRepo)
	quizzes := service.NewQuizReportService(quizRepo, cat)
	interviews := service.NewInterviewService(interviewRepo, llm, cat, converter)

	hub := live.NewHub(cache.NewMemorySessionCache())
	liveServer := live.NewServer(hub, interviews.Scorer(), interviews, live.Options{})

	router := NewGinEngine(cfg, metrics.NewRegistry())
	gin.SetMode(gin.TestMode)
	RegisterRoutes(router, auth,
		adminctrl.NewAdminController(problems, quizzes, attempts),
		userctrl.NewAccountController(auth, service.NewUserService(userRepo), service.NewContactService(repository.NewContactRepository(db))),
		userctrl.NewPracticeController(problems, service.NewCodingService(problemRepo, attempts, echoExecutor{}), attempts, quizzes,
			service.NewDashboardService(quizRepo, attemptRepo, interviewRepo, converter)),
		userctrl.NewInterviewController(interviews, cat, hub, liveServer, cfg),
	)
	return router, hub
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signup(t *testing.T, r http.Handler, email string) dto.AuthResponseDTO {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/auth/signup", "", dto.SignupRequestDTO{Name: "Ada", Email: email, Password: "secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.AuthResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func startInterview(t *testing.T, r http.Handler, token, category string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("category", category))
	fw, err := mw.CreateFormFile("resume", "resume.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Backend engineer. Go, PostgreSQL, Kubernetes."))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/interviews", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndRequestID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/attempts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/attempts", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupLoginAndDuplicate(t *testing.T) {
	r, _ := newTestRouter(t)
	first := signup(t, r, "ada@example.com")
	assert.NotEmpty(t, first.Token)

	w := do(t, r, http.MethodPost, "/api/v1/auth/signup", "", dto.SignupRequestDTO{Name: "Ada", Email: "ada@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "User already exists")

	w = do(t, r, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequestDTO{Email: "ada@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequestDTO{Email: "ada@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInterviewLifecycleOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	ada := signup(t, r, "ada@example.com")
	bob := signup(t, r, "bob@example.com")

	w := startInterview(t, r, ada.Token, "Astrology")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = startInterview(t, r, ada.Token, "Web Development")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var started dto.InterviewStartResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	require.NotEmpty(t, started.Questions)

	path := fmt.Sprintf("/api/v1/interviews/%d", started.InterviewID)

	w = do(t, r, http.MethodGet, path, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodGet, path+"/state", ada.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	turns := make([]dto.InterviewTurnDTO, 0, len(started.Questions))
	for _, q := range started.Questions {
		turns = append(turns, dto.InterviewTurnDTO{Question: q, Answer: "An answer", Feedback: "Good answer", Score: 8})
	}
	w = do(t, r, http.MethodPost, path+"/report", ada.Token, dto.InterviewReportDTO{Turns: turns[:1]})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, path+"/report", ada.Token, dto.InterviewReportDTO{Turns: turns, DurationSeconds: 120})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var done dto.InterviewDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &done))
	assert.Equal(t, "completed", done.Status)
	assert.Len(t, done.Questions, len(started.Questions))

	w = do(t, r, http.MethodPost, path+"/report", ada.Token, dto.InterviewReportDTO{Turns: turns})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/interviews/user/%d", ada.User.ID), ada.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"completed"`))

	w = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/interviews/user/%d", ada.User.ID), bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFeedbackWithoutProvider(t *testing.T) {
	r, _ := newTestRouter(t)
	ada := signup(t, r, "ada@example.com")

	w := do(t, r, http.MethodPost, "/api/v1/interviews/feedback", ada.Token, dto.FeedbackRequestDTO{Question: "Why Go?", Answer: "No response"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No response recorded")

	w = do(t, r, http.MethodPost, "/api/v1/interviews/feedback", ada.Token, dto.FeedbackRequestDTO{Question: "Why Go?", Answer: "Simplicity"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCodingSubmitRecordsAttempt(t *testing.T) {
	r, _ := newTestRouter(t)
	ada := signup(t, r, "ada@example.com")

	w := do(t, r, http.MethodPost, "/api/v1/admin/problems", ada.Token, dto.ProblemCreateDTO{
		Title:       "Echo",
		Description: "Print the input",
		Difficulty:  "Easy",
		SampleTests: []dto.SampleTestDTO{{Input: "42", Output: "42"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var problem dto.ProblemResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))

	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/problems/%d/submit", problem.ID), ada.Token,
		dto.CodeRunDTO{Language: "python", Code: "print(input())"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"Accepted"`)

	w = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/reports/user/%d", ada.User.ID), ada.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"problems_solved":1`)
}

func TestSubmitReportRejectedWhileLive(t *testing.T) {
	r, hub := newTestRouter(t)
	ada := signup(t, r, "ada@example.com")

	w := startInterview(t, r, ada.Token, "HR")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var started dto.InterviewStartResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))

	running := interview.NewSequencer(nil, nil, nil, nil, nil, interview.Options{})
	require.NoError(t, hub.Register(started.InterviewID, running))

	turns := make([]dto.InterviewTurnDTO, 0, len(started.Questions))
	for _, q := range started.Questions {
		turns = append(turns, dto.InterviewTurnDTO{Question: q, Answer: "An answer", Score: 5})
	}
	path := fmt.Sprintf("/api/v1/interviews/%d", started.InterviewID)
	w = do(t, r, http.MethodPost, path+"/report", ada.Token, dto.InterviewReportDTO{Turns: turns})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, path, ada.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"in-progress"`)
}
