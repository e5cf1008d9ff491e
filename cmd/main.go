package main

import (
	"os"

	"github.com/lshigami/PrepDeck/internal/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// @title PrepDeck Interview Preparation API
// @version 1.0
// @description Mock interviews with AI feedback, coding practice and aptitude quizzes.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
var rootCmd = &cobra.Command{
	Use:   "prepdeck",
	Short: "PrepDeck interview preparation API",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(os.Getenv("LOG_LEVEL"))
	},
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
