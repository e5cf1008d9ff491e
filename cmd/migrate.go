package main

import (
	"context"
	"fmt"

	"github.com/lshigami/PrepDeck/database"
	"github.com/lshigami/PrepDeck/internal/seed"
	"github.com/lshigami/PrepDeck/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(fx.Invoke(database.AutoMigrate))
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate and load starter coding problems into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(fx.Invoke(func(db *gorm.DB, problems service.ProblemService) error {
			if err := database.AutoMigrate(db); err != nil {
				return err
			}
			n, err := seed.Problems(problems)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d problems\n", n)
			return nil
		}))
	},
}

// runOnce builds the core graph, runs its invokes and stops.
func runOnce(invoke fx.Option) error {
	app := fx.New(coreModule(), invoke, fx.NopLogger)
	if err := app.Err(); err != nil {
		return err
	}
	return app.Stop(context.Background())
}
