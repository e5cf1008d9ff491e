package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/rs/zerolog/log"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "requestID"
	userIDKey       = "userID"
)

// RequestID tags each request with an id, reusing the caller's X-Request-ID when present.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := strings.TrimSpace(ctx.GetHeader(RequestIDHeader))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		ctx.Set(RequestIDKey, id)
		ctx.Header(RequestIDHeader, id)
		ctx.Next()
	}
}

func GetRequestID(ctx *gin.Context) string {
	return ctx.GetString(RequestIDKey)
}

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	ParseToken(token string) (uint, error)
}

// RequireAuth rejects requests without a valid token. Browsers cannot set headers on
// websocket upgrades, so the token may also come from the "token" query parameter.
func RequireAuth(parser TokenParser) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx.GetHeader("Authorization"))
		if token == "" {
			token = ctx.Query("token")
		}
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing authorization token"})
			return
		}
		userID, err := parser.ParseToken(token)
		if err != nil {
			log.Warn().Err(err).Str("requestID", GetRequestID(ctx)).Msg("Rejected token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid or expired token"})
			return
		}
		ctx.Set(userIDKey, userID)
		ctx.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserID returns the authenticated user, or 0 outside RequireAuth.
func UserID(ctx *gin.Context) uint {
	id, _ := ctx.Get(userIDKey)
	v, _ := id.(uint)
	return v
}
