package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server    Server
	Database  Database
	Redis     Redis
	LLM       LLM
	Auth      Auth
	Piston    Piston
	Interview Interview
	LogLevel  string
}

type Server struct {
	Port           string
	AllowedOrigins []string
}

type Database struct {
	Driver   string // "postgres" or "sqlite"
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	Path     string // sqlite file, ":memory:" for tests
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type LLM struct {
	Provider      string // "gemini" or "openai"
	GeminiApiKey  string
	GeminiModel   string
	OpenAIApiKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

type Auth struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type Piston struct {
	BaseURL        string
	RequestsPerSec float64
	MaxParallel    int
	Timeout        time.Duration
}

type Interview struct {
	CatalogPath   string
	TurnSeconds   int
	TickInterval  time.Duration
	FeedbackPause time.Duration
	RemoteTimeout time.Duration
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_PATH", "prepdeck.db")
	viper.SetDefault("REDIS_TTL", "2h")
	viper.SetDefault("LLM_PROVIDER", "gemini")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	viper.SetDefault("JWT_TTL", "24h")
	viper.SetDefault("PISTON_BASE_URL", "https://emkc.org/api/v2/piston")
	viper.SetDefault("PISTON_RPS", 5)
	viper.SetDefault("PISTON_MAX_PARALLEL", 3)
	viper.SetDefault("PISTON_TIMEOUT", "15s")
	viper.SetDefault("INTERVIEW_CATALOG", "")
	viper.SetDefault("INTERVIEW_TURN_SECONDS", 50)
	viper.SetDefault("INTERVIEW_TICK", "1s")
	viper.SetDefault("INTERVIEW_FEEDBACK_PAUSE", "2s")
	viper.SetDefault("INTERVIEW_REMOTE_TIMEOUT", "30s")
	viper.SetDefault("LOG_LEVEL", "info")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Server.AllowedOrigins = viper.GetStringSlice("CORS_ALLOWED_ORIGINS")

	config.Database.Driver = viper.GetString("DATABASE_DRIVER")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.Path = viper.GetString("DATABASE_PATH")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")
	config.Redis.TTL = viper.GetDuration("REDIS_TTL")

	config.LLM.Provider = viper.GetString("LLM_PROVIDER")
	config.LLM.GeminiApiKey = viper.GetString("GEMINI_API_KEY")
	config.LLM.GeminiModel = viper.GetString("GEMINI_MODEL")
	config.LLM.OpenAIApiKey = viper.GetString("OPENAI_API_KEY")
	config.LLM.OpenAIBaseURL = viper.GetString("OPENAI_BASE_URL")
	config.LLM.OpenAIModel = viper.GetString("OPENAI_MODEL")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	config.Auth.TokenTTL = viper.GetDuration("JWT_TTL")

	config.Piston.BaseURL = viper.GetString("PISTON_BASE_URL")
	config.Piston.RequestsPerSec = viper.GetFloat64("PISTON_RPS")
	config.Piston.MaxParallel = viper.GetInt("PISTON_MAX_PARALLEL")
	config.Piston.Timeout = viper.GetDuration("PISTON_TIMEOUT")

	config.Interview.CatalogPath = viper.GetString("INTERVIEW_CATALOG")
	config.Interview.TurnSeconds = viper.GetInt("INTERVIEW_TURN_SECONDS")
	config.Interview.TickInterval = viper.GetDuration("INTERVIEW_TICK")
	config.Interview.FeedbackPause = viper.GetDuration("INTERVIEW_FEEDBACK_PAUSE")
	config.Interview.RemoteTimeout = viper.GetDuration("INTERVIEW_REMOTE_TIMEOUT")

	config.LogLevel = viper.GetString("LOG_LEVEL")

	if config.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is not set. Tokens are signed with an insecure development secret.")
		config.Auth.JWTSecret = "dev-secret-change-me"
	}

	log.Info().
		Str("port", config.Server.Port).
		Str("dbDriver", config.Database.Driver).
		Str("llmProvider", config.LLM.Provider).
		Bool("redis", config.Redis.Addr != "").
		Msg("Config loaded")
	return &config, nil
}
