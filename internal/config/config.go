// Package config loads application configuration from CHESS_* environment
// variables, layered over an optional config.yaml, via spf13/viper.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ProviderConfig holds the dial settings for one Model Client provider.
type ProviderConfig struct {
	APIKey   string
	Endpoint string
}

// Config holds every setting the self-play pipeline needs at startup.
type Config struct {
	OpenAI    ProviderConfig
	Anthropic ProviderConfig
	XAI       ProviderConfig

	Concurrency int
	LogLevel    string
	LogFile     string

	RequestTimeout time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("openai.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("anthropic.endpoint", "https://api.anthropic.com/v1/messages")
	v.SetDefault("xai.endpoint", "https://api.x.ai/v1/chat/completions")
	v.SetDefault("concurrency", 4)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("request_timeout", "60s")
}

// Load reads configuration from environment variables prefixed CHESS_
// (CHESS_OPENAI_API_KEY, CHESS_CONCURRENCY, ...), optionally layered under a
// config.yaml discovered in the working directory or /etc/chess-llm-arena.
func Load() (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("chess")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/chess-llm-arena")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Config{
		OpenAI: ProviderConfig{
			APIKey:   v.GetString("openai.api_key"),
			Endpoint: v.GetString("openai.endpoint"),
		},
		Anthropic: ProviderConfig{
			APIKey:   v.GetString("anthropic.api_key"),
			Endpoint: v.GetString("anthropic.endpoint"),
		},
		XAI: ProviderConfig{
			APIKey:   v.GetString("xai.api_key"),
			Endpoint: v.GetString("xai.endpoint"),
		},
		Concurrency:    v.GetInt("concurrency"),
		LogLevel:       v.GetString("log_level"),
		LogFile:        v.GetString("log_file"),
		RequestTimeout: v.GetDuration("request_timeout"),
	}, nil
}
