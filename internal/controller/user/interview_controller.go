package user

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lshigami/PrepDeck/config"
	"github.com/lshigami/PrepDeck/internal/cache"
	"github.com/lshigami/PrepDeck/internal/catalog"
	"github.com/lshigami/PrepDeck/internal/controller"
	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/interview"
	"github.com/lshigami/PrepDeck/internal/live"
	"github.com/lshigami/PrepDeck/internal/middleware"
	"github.com/lshigami/PrepDeck/internal/service"
	"github.com/rs/zerolog/log"
)

const maxResumeBytes = 5 << 20

type InterviewController struct {
	interviewService service.InterviewService
	catalog          *catalog.Catalog
	hub              *live.Hub
	liveServer       *live.Server
	upgrader         websocket.Upgrader
}

func NewInterviewController(
	is service.InterviewService,
	cat *catalog.Catalog,
	hub *live.Hub,
	liveServer *live.Server,
	cfg *config.Config,
) *InterviewController {
	return &InterviewController{
		interviewService: is,
		catalog:          cat,
		hub:              hub,
		liveServer:       liveServer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(cfg.Server.AllowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ListCategories godoc
// @Summary List interview and quiz categories
// @Tags Interviews
// @Produce json
// @Success 200 {object} dto.CategoriesDTO
// @Router /categories [get]
func (c *InterviewController) ListCategories(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.CategoriesDTO{
		Interview:           c.catalog.InterviewCategoryNames(),
		Quiz:                c.catalog.QuizCategories,
		QuestionsPerSession: c.catalog.QuestionsPerSession,
	})
}

// StartInterview godoc
// @Summary Start an interview from a resume
// @Description Generates questions for the category from the uploaded resume and stores the interview as in-progress.
// @Tags Interviews
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param category formData string true "Interview category"
// @Param resume formData file true "Resume (PDF or text)"
// @Success 201 {object} dto.InterviewStartResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Missing input, unknown category or no questions generated"
// @Failure 500 {object} dto.ErrorResponse "Question generation failed"
// @Router /interviews [post]
func (c *InterviewController) StartInterview(ctx *gin.Context) {
	category := ctx.PostForm("category")
	resume, err := readResume(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid resume upload", Details: []string{err.Error()}})
		return
	}

	resp, err := c.interviewService.StartInterview(ctx.Request.Context(), middleware.UserID(ctx), category, resume)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to start interview")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// readResume returns an empty artifact when no file was sent; the service rejects it.
func readResume(ctx *gin.Context) (service.ResumeArtifact, error) {
	header, err := ctx.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return service.ResumeArtifact{}, nil
	}
	if err != nil {
		return service.ResumeArtifact{}, err
	}
	if header.Size > maxResumeBytes {
		return service.ResumeArtifact{}, errors.New("resume must be 5 MB or smaller")
	}
	f, err := header.Open()
	if err != nil {
		return service.ResumeArtifact{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return service.ResumeArtifact{}, err
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return service.ResumeArtifact{FileName: header.Filename, MIMEType: mimeType, Data: data}, nil
}

// Feedback godoc
// @Summary Score one answer
// @Tags Interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param answer body dto.FeedbackRequestDTO true "Question and answer"
// @Success 200 {object} dto.FeedbackResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 503 {object} dto.ErrorResponse "No LLM provider configured"
// @Router /interviews/feedback [post]
func (c *InterviewController) Feedback(ctx *gin.Context) {
	var req dto.FeedbackRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.interviewService.Feedback(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to score answer")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitReport godoc
// @Summary Complete an interview with a client-side turn log
// @Tags Interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param interview_id path int true "Interview ID"
// @Param report body dto.InterviewReportDTO true "Recorded turns"
// @Success 200 {object} dto.InterviewDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Another user's interview"
// @Failure 404 {object} dto.ErrorResponse "Interview not found"
// @Failure 409 {object} dto.ErrorResponse "Interview already completed or running live"
// @Router /interviews/{interview_id}/report [post]
func (c *InterviewController) SubmitReport(ctx *gin.Context) {
	id, ok := controller.ParamID(ctx, "interview_id")
	if !ok {
		return
	}
	var req dto.InterviewReportDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	if err := c.hub.Claimable(id); err != nil {
		controller.RespondError(ctx, err, "Interview is running live")
		return
	}
	resp, err := c.interviewService.SubmitReport(ctx.Request.Context(), middleware.UserID(ctx), id, req)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to store report")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetInterview godoc
// @Summary Get an interview with its questions and answers
// @Tags Interviews
// @Produce json
// @Security BearerAuth
// @Param interview_id path int true "Interview ID"
// @Success 200 {object} dto.InterviewDTO
// @Failure 403 {object} dto.ErrorResponse "Another user's interview"
// @Failure 404 {object} dto.ErrorResponse "Interview not found"
// @Router /interviews/{interview_id} [get]
func (c *InterviewController) GetInterview(ctx *gin.Context) {
	id, ok := controller.ParamID(ctx, "interview_id")
	if !ok {
		return
	}
	resp, err := c.interviewService.GetInterview(id)
	if err != nil {
		controller.RespondError(ctx, err, "Interview not found")
		return
	}
	if resp.UserID != middleware.UserID(ctx) {
		controller.RespondError(ctx, service.ErrForbidden, "Not allowed")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListUserInterviews godoc
// @Summary List a user's interviews
// @Tags Interviews
// @Produce json
// @Security BearerAuth
// @Param user_id path int true "User ID"
// @Success 200 {array} dto.InterviewDTO
// @Failure 403 {object} dto.ErrorResponse "Another user's interviews"
// @Router /interviews/user/{user_id} [get]
func (c *InterviewController) ListUserInterviews(ctx *gin.Context) {
	userID, ok := controller.OwnParam(ctx, "user_id")
	if !ok {
		return
	}
	resp, err := c.interviewService.ListUserInterviews(userID)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to retrieve interviews")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Live godoc
// @Summary Run an interview over a websocket
// @Description Upgrades to a websocket. The browser speaks questions and streams transcripts; the server runs the turn sequence. Pass the token as the "token" query parameter.
// @Tags Interviews
// @Security BearerAuth
// @Param interview_id path int true "Interview ID"
// @Param token query string false "Bearer token for browsers"
// @Success 101 "Switching protocols"
// @Failure 403 {object} dto.ErrorResponse "Another user's interview"
// @Failure 404 {object} dto.ErrorResponse "Interview not found"
// @Failure 409 {object} dto.ErrorResponse "Interview completed, already running, or awaiting a report retry"
// @Router /interviews/{interview_id}/live [get]
func (c *InterviewController) Live(ctx *gin.Context) {
	id, ok := controller.ParamID(ctx, "interview_id")
	if !ok {
		return
	}
	session, err := c.interviewService.LoadSession(middleware.UserID(ctx), id)
	if err != nil {
		controller.RespondError(ctx, err, "Cannot run interview")
		return
	}
	if err := c.hub.Claimable(id); err != nil {
		controller.RespondError(ctx, err, "Cannot run interview")
		return
	}

	ws, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// the upgrader has already written the response
		log.Warn().Err(err).Uint("interviewID", id).Msg("Websocket upgrade failed")
		return
	}
	if err := c.liveServer.Serve(ctx.Request.Context(), ws, session); err != nil {
		log.Warn().Err(err).Uint("interviewID", id).Msg("Live interview ended with error")
	}
}

// State godoc
// @Summary Progress of a live interview
// @Tags Interviews
// @Produce json
// @Security BearerAuth
// @Param interview_id path int true "Interview ID"
// @Success 200 {object} interview.Snapshot
// @Failure 403 {object} dto.ErrorResponse "Another user's interview"
// @Failure 404 {object} dto.ErrorResponse "No live state for this interview"
// @Router /interviews/{interview_id}/state [get]
func (c *InterviewController) State(ctx *gin.Context) {
	snap, ok := c.ownSnapshot(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, snap)
}

// ListLive godoc
// @Summary The caller's recent live interviews
// @Tags Interviews
// @Produce json
// @Security BearerAuth
// @Success 200 {array} interview.Snapshot
// @Router /interviews/live [get]
func (c *InterviewController) ListLive(ctx *gin.Context) {
	snaps, err := c.hub.ListByUser(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		controller.RespondError(ctx, err, "Failed to retrieve live interviews")
		return
	}
	ctx.JSON(http.StatusOK, snaps)
}

// CancelLive godoc
// @Summary Abandon a live interview
// @Tags Interviews
// @Produce json
// @Security BearerAuth
// @Param interview_id path int true "Interview ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse "Another user's interview"
// @Failure 404 {object} dto.ErrorResponse "Interview is not running"
// @Router /interviews/{interview_id}/live [delete]
func (c *InterviewController) CancelLive(ctx *gin.Context) {
	snap, ok := c.ownSnapshot(ctx)
	if !ok {
		return
	}
	if err := c.hub.Cancel(snap.SessionID); err != nil {
		controller.RespondError(ctx, err, "Interview is not running")
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

// RetryReport godoc
// @Summary Store the report of a live interview whose first save failed
// @Tags Interviews
// @Produce json
// @Security BearerAuth
// @Param interview_id path int true "Interview ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse "Another user's interview"
// @Failure 404 {object} dto.ErrorResponse "No pending report"
// @Failure 500 {object} dto.ErrorResponse "Store still failing"
// @Router /interviews/{interview_id}/live/retry [post]
func (c *InterviewController) RetryReport(ctx *gin.Context) {
	snap, ok := c.ownSnapshot(ctx)
	if !ok {
		return
	}
	if err := c.hub.RetryPersist(ctx.Request.Context(), snap.SessionID); err != nil {
		controller.RespondError(ctx, err, "Failed to store report")
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Report stored"})
}

func (c *InterviewController) ownSnapshot(ctx *gin.Context) (*interview.Snapshot, bool) {
	id, ok := controller.ParamID(ctx, "interview_id")
	if !ok {
		return nil, false
	}
	snap, err := c.hub.Snapshot(ctx.Request.Context(), id)
	if errors.Is(err, cache.ErrNotFound) {
		err = live.ErrNotLive
	}
	if err != nil {
		controller.RespondError(ctx, err, "No live state for this interview")
		return nil, false
	}
	if snap.UserID != middleware.UserID(ctx) {
		controller.RespondError(ctx, service.ErrForbidden, "Not allowed")
		return nil, false
	}
	return snap, true
}
