package src

import (
	"fmt"

	"minebot/src/model"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Log    model.LogConfig
	LLM    model.LLMConfig
	Bot    model.BotConfig
	Server model.ServerConfig
	Redis  model.RedisConfig
}

func LoadConfig() (*Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	if err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}

	return &config, nil
}
