package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config — всё, что сервис читает из окружения при старте.
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// OpenAIAPIKey не проверяется на старте: без ключа упадёт первый запрос.
	OpenAIAPIKey  string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel   string        `mapstructure:"OPENAI_MODEL"`
	OpenAIBaseURL string        `mapstructure:"OPENAI_BASE_URL"`
	OpenAITimeout time.Duration `mapstructure:"OPENAI_TIMEOUT"`
}

const (
	DefaultPort    = "8080"
	DefaultModel   = "gpt-3.5-turbo"
	DefaultTimeout = 20 * time.Second
)

// Load читает необязательный .env, затем окружение процесса.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", DefaultModel)
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("OPENAI_TIMEOUT", DefaultTimeout)

	// OPENAI_TIMEOUT=20 — секунды; "20s", "1m" тоже работают
	if secs, err := strconv.Atoi(strings.TrimSpace(v.GetString("OPENAI_TIMEOUT"))); err == nil {
		v.Set("OPENAI_TIMEOUT", time.Duration(secs)*time.Second)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if cfg.OpenAITimeout <= 0 {
		return Config{}, fmt.Errorf("config: OPENAI_TIMEOUT must be positive, got %s", cfg.OpenAITimeout)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
