package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/lshigami/PrepDeck/config"
	"github.com/lshigami/PrepDeck/internal/model"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the configured database. Postgres in production, SQLite for local runs.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.Path)
	case "postgres", "":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.Database.Host, cfg.Database.User, cfg.Database.Password, cfg.Database.Name, cfg.Database.Port)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("Database connection established")
	return db, nil
}

// AutoMigrate creates or updates every table the application owns.
func AutoMigrate(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.CodingProblem{},
		&model.SampleTest{},
		&model.CodingAttempt{},
		&model.QuizReport{},
		&model.QuizAnswer{},
		&model.Interview{},
		&model.InterviewQuestion{},
		&model.ContactMessage{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
