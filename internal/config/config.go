package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	OAuth    OAuthConfig
	Server   ServerConfig
	AI       AIConfig
	Live     LiveConfig
	Slack    SlackConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds JWT authentication settings.
type JWTConfig struct {
	Secret     string //nolint:gosec // G117: JWT signing secret config
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// OAuthConfig holds OAuth2 sign-in settings. A provider is enabled only when
// both its client id and secret are set.
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string //nolint:gosec // G117: OAuth credential config
	GitHubClientID     string
	GitHubClientSecret string //nolint:gosec // G117: OAuth credential config
	RedirectBase       string // public base URL for OAuth callbacks
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// AIConfig holds model provider settings. Anthropic serves text generation
// and condensation; Gemini serves transcription and speech synthesis.
type AIConfig struct {
	AnthropicAPIKey   string //nolint:gosec // G117: provider credential config
	GeminiAPIKey      string //nolint:gosec // G117: provider credential config
	GenerateModel     string
	CondenseModel     string
	TranscribeModel   string
	SpeechModel       string
	GenerateTimeout   time.Duration
	SpeechTimeout     time.Duration
	TranscribeTimeout time.Duration
	MaxTokens         int
}

// LiveConfig holds tuning knobs for the live session core.
type LiveConfig struct {
	SilenceThreshold   time.Duration // idle time before a session is force-finalized
	SweepInterval      time.Duration // how often the inactivity monitor scans
	SummarizeAfter     int           // exchanges accumulated before condensation
	ContextRecentTurns int           // raw turns kept verbatim in prompts
	CacheTTL           time.Duration // context cache entry lifetime since last use
	CacheSweepInterval time.Duration // how often expired cache entries are evicted
}

// SlackConfig holds the completion-notification settings.
type SlackConfig struct {
	BotToken string
	Channel  string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password, API keys) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("PARLEY_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("PARLEY_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("PARLEY_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("PARLEY_JWT_ACCESS_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	refreshTTL, err := getEnvDuration("PARLEY_JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("PARLEY_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("PARLEY_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	generateTimeout, err := getEnvDuration("PARLEY_AI_GENERATE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	speechTimeout, err := getEnvDuration("PARLEY_AI_SPEECH_TIMEOUT", 20*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	transcribeTimeout, err := getEnvDuration("PARLEY_AI_TRANSCRIBE_TIMEOUT", 20*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	maxTokens, err := getEnvInt("PARLEY_AI_MAX_TOKENS", 1024)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	silenceThreshold, err := getEnvDuration("PARLEY_LIVE_SILENCE_THRESHOLD", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	sweepInterval, err := getEnvDuration("PARLEY_LIVE_SWEEP_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	summarizeAfter, err := getEnvInt("PARLEY_LIVE_SUMMARIZE_AFTER", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	contextRecentTurns, err := getEnvInt("PARLEY_LIVE_CONTEXT_RECENT_TURNS", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cacheTTL, err := getEnvDuration("PARLEY_LIVE_CACHE_TTL", 2*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cacheSweepInterval, err := getEnvDuration("PARLEY_LIVE_CACHE_SWEEP_INTERVAL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("PARLEY_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("PARLEY_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("PARLEY_DB_USER", "parley"),
			Password: getEnv("PARLEY_DB_PASSWORD", ""),
			DBName:   getEnv("PARLEY_DB_NAME", "parley_dev"),
			SSLMode:  getEnv("PARLEY_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("PARLEY_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("PARLEY_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:     getEnv("PARLEY_JWT_SECRET", ""),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("PARLEY_OAUTH_GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("PARLEY_OAUTH_GOOGLE_CLIENT_SECRET", ""),
			GitHubClientID:     getEnv("PARLEY_OAUTH_GITHUB_CLIENT_ID", ""),
			GitHubClientSecret: getEnv("PARLEY_OAUTH_GITHUB_CLIENT_SECRET", ""),
			RedirectBase:       getEnv("PARLEY_OAUTH_REDIRECT_BASE", "http://localhost:8080"),
		},
		Server: ServerConfig{
			Addr:         getEnv("PARLEY_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		AI: AIConfig{
			AnthropicAPIKey:   getEnv("PARLEY_ANTHROPIC_API_KEY", ""),
			GeminiAPIKey:      getEnv("PARLEY_GEMINI_API_KEY", ""),
			GenerateModel:     getEnv("PARLEY_AI_GENERATE_MODEL", "claude-sonnet-4-5"),
			CondenseModel:     getEnv("PARLEY_AI_CONDENSE_MODEL", "claude-3-5-haiku-latest"),
			TranscribeModel:   getEnv("PARLEY_AI_TRANSCRIBE_MODEL", "gemini-2.5-flash"),
			SpeechModel:       getEnv("PARLEY_AI_SPEECH_MODEL", "gemini-2.5-flash-preview-tts"),
			GenerateTimeout:   generateTimeout,
			SpeechTimeout:     speechTimeout,
			TranscribeTimeout: transcribeTimeout,
			MaxTokens:         maxTokens,
		},
		Live: LiveConfig{
			SilenceThreshold:   silenceThreshold,
			SweepInterval:      sweepInterval,
			SummarizeAfter:     summarizeAfter,
			ContextRecentTurns: contextRecentTurns,
			CacheTTL:           cacheTTL,
			CacheSweepInterval: cacheSweepInterval,
		},
		Slack: SlackConfig{
			BotToken: getEnv("PARLEY_SLACK_BOT_TOKEN", ""),
			Channel:  getEnv("PARLEY_SLACK_CHANNEL", ""),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("PARLEY_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("PARLEY_JWT_SECRET must be at least 32 characters")
	}

	if c.Database.SSLMode == "disable" {
		log.Warn().Msg("PARLEY_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("PARLEY_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("PARLEY_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("PARLEY_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("PARLEY_JWT_REFRESH_TTL must be positive, got %s", c.JWT.RefreshTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("PARLEY_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("PARLEY_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.AI.GenerateTimeout <= 0 {
		return fmt.Errorf("PARLEY_AI_GENERATE_TIMEOUT must be positive, got %s", c.AI.GenerateTimeout)
	}
	if c.AI.SpeechTimeout <= 0 {
		return fmt.Errorf("PARLEY_AI_SPEECH_TIMEOUT must be positive, got %s", c.AI.SpeechTimeout)
	}
	if c.AI.TranscribeTimeout <= 0 {
		return fmt.Errorf("PARLEY_AI_TRANSCRIBE_TIMEOUT must be positive, got %s", c.AI.TranscribeTimeout)
	}
	if c.AI.MaxTokens < 1 {
		return fmt.Errorf("PARLEY_AI_MAX_TOKENS must be >= 1, got %d", c.AI.MaxTokens)
	}
	if c.Live.SilenceThreshold <= 0 {
		return fmt.Errorf("PARLEY_LIVE_SILENCE_THRESHOLD must be positive, got %s", c.Live.SilenceThreshold)
	}
	if c.Live.SweepInterval <= 0 {
		return fmt.Errorf("PARLEY_LIVE_SWEEP_INTERVAL must be positive, got %s", c.Live.SweepInterval)
	}
	if c.Live.SummarizeAfter < 1 {
		return fmt.Errorf("PARLEY_LIVE_SUMMARIZE_AFTER must be >= 1, got %d", c.Live.SummarizeAfter)
	}
	if c.Live.ContextRecentTurns < 1 {
		return fmt.Errorf("PARLEY_LIVE_CONTEXT_RECENT_TURNS must be >= 1, got %d", c.Live.ContextRecentTurns)
	}
	if c.Live.CacheTTL <= 0 {
		return fmt.Errorf("PARLEY_LIVE_CACHE_TTL must be positive, got %s", c.Live.CacheTTL)
	}
	if c.Live.CacheSweepInterval <= 0 {
		return fmt.Errorf("PARLEY_LIVE_CACHE_SWEEP_INTERVAL must be positive, got %s", c.Live.CacheSweepInterval)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
