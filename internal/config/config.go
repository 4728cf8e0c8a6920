package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	HTTPAddr        string // default 127.0.0.1:5000
	StateDir        string // where vetoresult.json is written
	DatabaseURL     string // optional, switches persistence to postgres
	DefaultLanguage string
	LogLevel        zapcore.Level
	Dev             bool
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from any getenv-like lookup.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		HTTPAddr:        get("MAPVETO_ADDR", "127.0.0.1:5000"),
		StateDir:        get("MAPVETO_STATE_DIR", "."),
		DatabaseURL:     get("DATABASE_URL", ""),
		DefaultLanguage: get("MAPVETO_DEFAULT_LANG", "de"),
	}

	if cfg.DefaultLanguage != "de" && cfg.DefaultLanguage != "en" {
		return Config{}, fmt.Errorf("MAPVETO_DEFAULT_LANG: unsupported language %q", cfg.DefaultLanguage)
	}

	level, err := zapcore.ParseLevel(get("MAPVETO_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("MAPVETO_LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if v := getenv("MAPVETO_DEV"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("MAPVETO_DEV: %w", err)
		}
		cfg.Dev = dev
	}
	return cfg, nil
}

// Logger builds the process logger: console output in dev mode, JSON otherwise.
func (c Config) Logger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Dev {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(c.LogLevel)
	return zc.Build()
}
