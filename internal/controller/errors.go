// Package controller holds helpers shared by the admin and user HTTP controllers.
package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/interview"
	"github.com/lshigami/PrepDeck/internal/live"
	"github.com/lshigami/PrepDeck/internal/middleware"
	"github.com/lshigami/PrepDeck/internal/service"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, live.ErrNotLive):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInterviewCompleted),
		errors.Is(err, live.ErrSessionLive),
		errors.Is(err, live.ErrReportPending):
		return http.StatusConflict
	case errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrNoSampleTests),
		errors.Is(err, service.ErrInvalidQuizTotals),
		errors.Is(err, service.ErrUnknownQuiz),
		errors.Is(err, service.ErrUnsupportedImage),
		errors.Is(err, interview.ErrInputMissing),
		errors.Is(err, interview.ErrInvalidSequence),
		errors.Is(err, interview.ErrUnknownCategory),
		errors.Is(err, interview.ErrNotCompleted):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrLLMUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err as an ErrorResponse. Internal errors are logged and their
// details withheld.
func RespondError(ctx *gin.Context, err error, message string) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg(message)
		ctx.JSON(status, dto.ErrorResponse{Message: message})
		return
	}
	ctx.JSON(status, dto.ErrorResponse{Message: message, Details: []string{err.Error()}})
}

// BindError answers a request whose body or form failed validation.
func BindError(ctx *gin.Context, err error) {
	log.Warn().Err(err).Str("path", ctx.FullPath()).Msg("Failed to bind request")
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
}

// ParamID parses a numeric path parameter, answering 400 when it is malformed.
func ParamID(ctx *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || val == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}

// OwnParam parses a user id path parameter and checks it names the authenticated user.
func OwnParam(ctx *gin.Context, name string) (uint, bool) {
	id, ok := ParamID(ctx, name)
	if !ok {
		return 0, false
	}
	if id != middleware.UserID(ctx) {
		RespondError(ctx, service.ErrForbidden, "Not allowed")
		return 0, false
	}
	return id, true
}
