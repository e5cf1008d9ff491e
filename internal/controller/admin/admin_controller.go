package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/PrepDeck/internal/controller"
	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminController struct {
	problemService    service.ProblemService
	quizReportService service.QuizReportService
	attemptService    service.AttemptService
}

func NewAdminController(ps service.ProblemService, qrs service.QuizReportService, as service.AttemptService) *AdminController {
	return &AdminController{problemService: ps, quizReportService: qrs, attemptService: as}
}

// CreateProblem godoc
// @Summary (Admin) Create a coding problem
// @Description Admin creates a coding problem with at least one sample test.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param problem body dto.ProblemCreateDTO true "Problem with sample tests"
// @Success 201 {object} dto.ProblemResponseDTO "Problem created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/problems [post]
func (c *AdminController) CreateProblem(ctx *gin.Context) {
	var req dto.ProblemCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}

	resp, err := c.problemService.CreateProblem(req)
	if err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("Admin CreateProblem: Service error")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to create problem", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ListQuizReports godoc
// @Summary (Admin) List every quiz report
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.QuizReportDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /quiz-reports [get]
func (c *AdminController) ListQuizReports(ctx *gin.Context) {
	reports, err := c.quizReportService.ListReports()
	if err != nil {
		controller.RespondError(ctx, err, "Failed to retrieve quiz reports")
		return
	}
	ctx.JSON(http.StatusOK, reports)
}

// ListAttempts godoc
// @Summary (Admin) List every coding attempt
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AttemptDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/attempts [get]
func (c *AdminController) ListAttempts(ctx *gin.Context) {
	attempts, err := c.attemptService.ListAttempts(nil)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to retrieve attempts")
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}
