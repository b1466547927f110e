package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TelegramToken string        `envconfig:"TELEGRAM_TOKEN" required:"true"`
	DBDSN         string        `envconfig:"DB_DSN" required:"true"`
	Environment   string        `envconfig:"ENV" default:"development"`
	AdminID       int64         `envconfig:"ADMIN_ID"` // 0 - панель администратора отключена
	MetricsAddr   string        `envconfig:"METRICS_ADDR"`
	RestartDelay  time.Duration `envconfig:"RESTART_DELAY" default:"5s"`
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	// Пустая переменная считается заданной, поэтому required её не ловит
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.RestartDelay <= 0 {
		return nil, fmt.Errorf("RESTART_DELAY must be positive, got %s", cfg.RestartDelay)
	}

	return &cfg, nil
}
