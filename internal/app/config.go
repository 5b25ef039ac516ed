package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Хранилище выбирается конфигурацией: PostgreSQL для продакшена, память для
// локальной разработки и тестов.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config описывает настройки запуска приложения. Все значения читаются из
// окружения с префиксом TIENDA_.
type Config struct {
	HTTPAddr    string
	MetricsAddr string
	Storage     string
	PostgresDSN string
	JWTSecret   string
	TokenTTL    time.Duration
}

// DefaultConfig возвращает базовые адреса и срок жизни токена.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
		Storage:     StorageMemory,
		TokenTTL:    24 * time.Hour,
	}
}

// LoadConfig читает .env (если есть) и переменные окружения поверх умолчаний.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if v := os.Getenv("TIENDA_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("TIENDA_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("TIENDA_STORAGE"); v != "" {
		cfg.Storage = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("TIENDA_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
		if os.Getenv("TIENDA_STORAGE") == "" {
			cfg.Storage = StoragePostgres
		}
	}
	cfg.JWTSecret = os.Getenv("TIENDA_JWT_SECRET")
	if v := os.Getenv("TIENDA_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse TIENDA_TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = ttl
	}

	return cfg, cfg.Validate()
}

// Validate проверяет согласованность конфигурации.
func (c Config) Validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("TIENDA_POSTGRES_DSN is required for postgres storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unsupported storage %q (use postgres|memory)", c.Storage)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("TIENDA_JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	return nil
}
