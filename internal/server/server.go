// Package server assembles the gin engine, its routes and the HTTP server lifecycle.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/PrepDeck/config"
	adminctrl "github.com/lshigami/PrepDeck/internal/controller/admin"
	userctrl "github.com/lshigami/PrepDeck/internal/controller/user"
	"github.com/lshigami/PrepDeck/internal/metrics"
	"github.com/lshigami/PrepDeck/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/fx"
)

func NewGinEngine(cfg *config.Config, reg *prometheus.Registry) *gin.Engine {
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		requestID, _ := param.Keys[middleware.RequestIDKey].(string)
		log.Info().
			Str("request_id", requestID).
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return "" // zerolog already wrote the line
	}))
	r.Use(gin.Recovery())
	r.Use(metrics.Middleware())

	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", metrics.Handler(reg))
	r.GET("/healthz", func(ctx *gin.Context) { ctx.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	return r
}

// RegisterRoutes mounts every API route under /api/v1.
func RegisterRoutes(
	router *gin.Engine,
	auth middleware.TokenParser,
	adminCtrl *adminctrl.AdminController,
	accountCtrl *userctrl.AccountController,
	practiceCtrl *userctrl.PracticeController,
	interviewCtrl *userctrl.InterviewController,
) {
	api := router.Group("/api/v1")
	requireAuth := middleware.RequireAuth(auth)

	// Public
	{
		api.POST("/auth/signup", accountCtrl.Signup)
		api.POST("/auth/login", accountCtrl.Login)
		api.POST("/contact", accountCtrl.Contact)

		api.GET("/categories", interviewCtrl.ListCategories)
		api.GET("/languages", practiceCtrl.ListLanguages)
		api.GET("/problems", practiceCtrl.ListProblems)
		api.GET("/problems/:problem_id", practiceCtrl.GetProblem)
		api.POST("/problems/:problem_id/run", practiceCtrl.RunCode)
	}

	admin := api.Group("/admin", requireAuth)
	{
		admin.POST("/problems", adminCtrl.CreateProblem)
		admin.GET("/attempts", adminCtrl.ListAttempts)
	}

	user := api.Group("", requireAuth)
	{
		user.GET("/users/:user_id", accountCtrl.GetUser)
		user.PUT("/users/:user_id", accountCtrl.UpdateUser)
		user.PUT("/users/:user_id/password", accountCtrl.ChangePassword)

		user.POST("/problems/:problem_id/submit", practiceCtrl.SubmitCode)
		user.POST("/attempts", practiceCtrl.SaveAttempt)
		user.GET("/attempts", practiceCtrl.ListAttempts)

		user.POST("/quiz-reports", practiceCtrl.CreateQuizReport)
		user.GET("/quiz-reports", adminCtrl.ListQuizReports)
		user.GET("/quiz-reports/user/:user_id", practiceCtrl.ListUserQuizReports)
		user.GET("/reports/user/:user_id", practiceCtrl.Dashboard)

		user.POST("/interviews", interviewCtrl.StartInterview)
		user.POST("/interviews/feedback", interviewCtrl.Feedback)
		user.GET("/interviews/live", interviewCtrl.ListLive)
		user.GET("/interviews/user/:user_id", interviewCtrl.ListUserInterviews)
		user.GET("/interviews/:interview_id", interviewCtrl.GetInterview)
		user.POST("/interviews/:interview_id/report", interviewCtrl.SubmitReport)
		user.GET("/interviews/:interview_id/live", interviewCtrl.Live)
		user.DELETE("/interviews/:interview_id/live", interviewCtrl.CancelLive)
		user.POST("/interviews/:interview_id/live/retry", interviewCtrl.RetryReport)
		user.GET("/interviews/:interview_id/state", interviewCtrl.State)
	}
}

// NewHTTPServer wraps router with OpenTelemetry instrumentation and ties the listener
// to the fx lifecycle.
func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, router *gin.Engine) *http.Server {
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           otelhttp.NewHandler(router, "prepdeck"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("PrepDeck API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
	return server
}
