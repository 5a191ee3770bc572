package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	HeaderExtension string
	OutputDirName   string
	WorkerCount     int
	Recursive       bool
	DatabaseURL     string
	WatchDebounce   time.Duration
	LogLevel        string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		HeaderExtension: getEnv("HEADER_EXTENSION", ".wotwrh"),
		OutputDirName:   getEnv("OUTPUT_DIR_NAME", "converted"),
		WorkerCount:     getEnvInt("WORKER_COUNT", 4),
		Recursive:       getEnvBool("RECURSIVE", false),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		WatchDebounce:   time.Duration(getEnvInt("WATCH_DEBOUNCE_MS", 300)) * time.Millisecond,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
