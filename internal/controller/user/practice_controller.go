package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/PrepDeck/internal/controller"
	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/middleware"
	"github.com/lshigami/PrepDeck/internal/piston"
	"github.com/lshigami/PrepDeck/internal/service"
	"github.com/rs/zerolog/log"
)

type PracticeController struct {
	problemService    service.ProblemService
	codingService     service.CodingService
	attemptService    service.AttemptService
	quizReportService service.QuizReportService
	dashboardService  service.DashboardService
}

func NewPracticeController(
	ps service.ProblemService,
	cs service.CodingService,
	as service.AttemptService,
	qrs service.QuizReportService,
	ds service.DashboardService,
) *PracticeController {
	return &PracticeController{
		problemService:    ps,
		codingService:     cs,
		attemptService:    as,
		quizReportService: qrs,
		dashboardService:  ds,
	}
}

// ListLanguages godoc
// @Summary List supported programming languages
// @Tags Coding
// @Produce json
// @Success 200 {array} dto.LanguageDTO
// @Router /languages [get]
func (c *PracticeController) ListLanguages(ctx *gin.Context) {
	out := make([]dto.LanguageDTO, 0, len(piston.Languages))
	for _, l := range piston.Languages {
		out = append(out, dto.LanguageDTO{ID: l.ID, DisplayName: l.DisplayName})
	}
	ctx.JSON(http.StatusOK, out)
}

// ListProblems godoc
// @Summary List coding problems
// @Tags Coding
// @Produce json
// @Success 200 {array} dto.ProblemResponseDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /problems [get]
func (c *PracticeController) ListProblems(ctx *gin.Context) {
	problems, err := c.problemService.ListProblems()
	if err != nil {
		controller.RespondError(ctx, err, "Failed to retrieve problems")
		return
	}
	ctx.JSON(http.StatusOK, problems)
}

// GetProblem godoc
// @Summary Get a coding problem with its sample tests
// @Tags Coding
// @Produce json
// @Param problem_id path int true "Problem ID"
// @Success 200 {object} dto.ProblemResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Problem ID format"
// @Failure 404 {object} dto.ErrorResponse "Problem not found"
// @Router /problems/{problem_id} [get]
func (c *PracticeController) GetProblem(ctx *gin.Context) {
	id, ok := controller.ParamID(ctx, "problem_id")
	if !ok {
		return
	}
	problem, err := c.problemService.GetProblem(id)
	if err != nil {
		controller.RespondError(ctx, err, "Problem not found")
		return
	}
	ctx.JSON(http.StatusOK, problem)
}

// RunCode godoc
// @Summary Run code against the first sample test
// @Description Nothing is recorded.
// @Tags Coding
// @Accept json
// @Produce json
// @Param problem_id path int true "Problem ID"
// @Param code body dto.CodeRunDTO true "Language and source code"
// @Success 200 {object} dto.TestResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input or no sample tests"
// @Failure 404 {object} dto.ErrorResponse "Problem not found"
// @Failure 500 {object} dto.ErrorResponse "Error running code"
// @Router /problems/{problem_id}/run [post]
func (c *PracticeController) RunCode(ctx *gin.Context) {
	id, ok := controller.ParamID(ctx, "problem_id")
	if !ok {
		return
	}
	var req dto.CodeRunDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	result, err := c.codingService.Run(ctx.Request.Context(), id, req)
	if err != nil {
		controller.RespondError(ctx, err, "Error running code")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// SubmitCode godoc
// @Summary Judge code against every sample test
// @Description The attempt is recorded for the caller as Accepted or Wrong Answer.
// @Tags Coding
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param problem_id path int true "Problem ID"
// @Param code body dto.CodeRunDTO true "Language and source code"
// @Success 200 {object} dto.SubmissionResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input or no sample tests"
// @Failure 404 {object} dto.ErrorResponse "Problem not found"
// @Failure 500 {object} dto.ErrorResponse "Error submitting code"
// @Router /problems/{problem_id}/submit [post]
func (c *PracticeController) SubmitCode(ctx *gin.Context) {
	id, ok := controller.ParamID(ctx, "problem_id")
	if !ok {
		return
	}
	var req dto.CodeRunDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	result, err := c.codingService.Submit(ctx.Request.Context(), middleware.UserID(ctx), id, req)
	if err != nil {
		controller.RespondError(ctx, err, "Error submitting code")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// SaveAttempt godoc
// @Summary Record a coding attempt judged elsewhere
// @Tags Coding
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attempt body dto.AttemptCreateDTO true "Attempt"
// @Success 201 {object} dto.AttemptDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Problem not found"
// @Router /attempts [post]
func (c *PracticeController) SaveAttempt(ctx *gin.Context) {
	var req dto.AttemptCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	req.UserID = middleware.UserID(ctx)
	attempt, err := c.attemptService.SaveAttempt(req)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to save attempt")
		return
	}
	ctx.JSON(http.StatusCreated, attempt)
}

// ListAttempts godoc
// @Summary List the caller's coding attempts
// @Tags Coding
// @Produce json
// @Security BearerAuth
// @Param user_id query int false "Must match the caller when given"
// @Success 200 {array} dto.AttemptDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid User ID format"
// @Failure 403 {object} dto.ErrorResponse "Another user's attempts"
// @Router /attempts [get]
func (c *PracticeController) ListAttempts(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	if q := ctx.Query("user_id"); q != "" {
		val, err := strconv.ParseUint(q, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid User ID format in query"})
			return
		}
		if uint(val) != userID {
			controller.RespondError(ctx, service.ErrForbidden, "Not allowed")
			return
		}
	}
	attempts, err := c.attemptService.ListAttempts(&userID)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to retrieve attempts")
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}

// CreateQuizReport godoc
// @Summary Record a finished quiz
// @Description correct_answers + wrong_answers must equal total_questions.
// @Tags Quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param report body dto.QuizReportCreateDTO true "Quiz result"
// @Success 201 {object} dto.QuizReportDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Router /quiz-reports [post]
func (c *PracticeController) CreateQuizReport(ctx *gin.Context) {
	var req dto.QuizReportCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	req.UserID = middleware.UserID(ctx)
	report, err := c.quizReportService.CreateReport(req)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to save quiz report")
		return
	}
	log.Info().Uint("userID", req.UserID).Str("quiz", req.QuizID).Msg("Quiz report saved")
	ctx.JSON(http.StatusCreated, report)
}

// ListUserQuizReports godoc
// @Summary List a user's quiz reports
// @Tags Quiz
// @Produce json
// @Security BearerAuth
// @Param user_id path int true "User ID"
// @Success 200 {array} dto.QuizReportDTO
// @Failure 403 {object} dto.ErrorResponse "Another user's reports"
// @Router /quiz-reports/user/{user_id} [get]
func (c *PracticeController) ListUserQuizReports(ctx *gin.Context) {
	userID, ok := controller.OwnParam(ctx, "user_id")
	if !ok {
		return
	}
	reports, err := c.quizReportService.ListUserReports(userID)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to retrieve quiz reports")
		return
	}
	ctx.JSON(http.StatusOK, reports)
}

// Dashboard godoc
// @Summary Per-category progress for a user
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param user_id path int true "User ID"
// @Success 200 {object} dto.DashboardDTO
// @Failure 403 {object} dto.ErrorResponse "Another user's dashboard"
// @Router /reports/user/{user_id} [get]
func (c *PracticeController) Dashboard(ctx *gin.Context) {
	userID, ok := controller.OwnParam(ctx, "user_id")
	if !ok {
		return
	}
	dashboard, err := c.dashboardService.UserDashboard(userID)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to build dashboard")
		return
	}
	ctx.JSON(http.StatusOK, dashboard)
}
