package model

import "time"

// ----------------------------------------------------
// ================ Config ================

// LogConfig holds configuration for the zerolog logger
type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	Format     string `envconfig:"LOG_FORMAT" default:"console"` // console, json
	Output     string `envconfig:"LOG_OUTPUT" default:"stdout"` // stdout, stderr, file
	FilePath   string `envconfig:"LOG_FILE_PATH" default:"logs/minebot.log"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"rfc3339"` // rfc3339, unix, iso8601
}

// LLMConfig holds configuration for the action model
type LLMConfig struct {
	Provider    string        `envconfig:"LLM_PROVIDER" default:"openai"` // openai, deepseek, ollama, ark
	APIKey      string        `envconfig:"OPENAI_API_KEY"`
	BaseURL     string        `envconfig:"LLM_BASE_URL"`
	Model       string        `envconfig:"LLM_MODEL"` // empty picks the provider default
	MaxTokens   int           `envconfig:"LLM_MAX_TOKENS" default:"300"`
	Temperature float32       `envconfig:"LLM_TEMPERATURE" default:"0.7"`
	Timeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"10s"`
}

// BotConfig holds identity and pacing of the run loop
type BotConfig struct {
	Name             string        `envconfig:"BOT_NAME" default:"GitHub_AI_Bot"`
	Server           string        `envconfig:"PIKAMC_SERVER" default:"play.pikamc.net"`
	Goal             string        `envconfig:"BOT_GOAL" default:"Explore and survive"`
	CycleInterval    time.Duration `envconfig:"BOT_CYCLE_INTERVAL" default:"30s"`
	RecoveryInterval time.Duration `envconfig:"BOT_RECOVERY_INTERVAL" default:"10s"`
	CatalogPath      string        `envconfig:"BOT_CATALOG_PATH" default:"config.yaml"`
}

// ServerConfig holds configuration for the dashboard HTTP server
type ServerConfig struct {
	Port           int     `envconfig:"PORT" default:"8080"`
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`
}

// RedisConfig holds configuration for the optional memory mirror
type RedisConfig struct {
	URL string        `envconfig:"REDIS_URL"`
	TTL time.Duration `envconfig:"REDIS_TTL" default:"1h"`
}
