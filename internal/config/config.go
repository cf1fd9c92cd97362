package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr    string
	PublicURL   string
	DatabaseURL string
	LogLevel    logrus.Level

	SchoolAPIURL     string
	SchoolAPIToken   string
	SchoolAPITimeout time.Duration
	SchoolName       string

	FetchConcurrency  int
	RenderConcurrency int

	ArchiveDir string
	ArchiveTTL time.Duration

	AcademicYearStart time.Time
	AcademicYearEnd   time.Time

	TelegramToken   string
	BaseAdminChatID int64
}

var instance *Config
var once sync.Once

// GetConfig загружает конфигурацию один раз; ошибки конфигурации фатальны
func GetConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Infof("No .env file loaded: %s", err.Error())
		}

		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("invalid configuration: %s", err.Error())
		}
		instance = cfg
	})

	return instance
}

// Load читает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		PublicURL:         strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:8080"), "/"),
		DatabaseURL:       getEnv("DATABASE_URL", "bulletins.db"),
		SchoolAPIURL:      getEnv("SCHOOL_API_URL", ""),
		SchoolAPIToken:    getEnv("SCHOOL_API_TOKEN", ""),
		SchoolAPITimeout:  getEnvAsDuration("SCHOOL_API_TIMEOUT", 30*time.Second),
		SchoolName:        getEnv("SCHOOL_NAME", "ÉCOLE SUPÉRIEURE DE L'IMMOBILIER"),
		FetchConcurrency:  int(getEnvAsInt("FETCH_CONCURRENCY", 4)),
		RenderConcurrency: int(getEnvAsInt("RENDER_CONCURRENCY", 4)),
		ArchiveDir:        getEnv("ARCHIVE_DIR", "archives"),
		ArchiveTTL:        getEnvAsDuration("ARCHIVE_TTL", 24*time.Hour),
		TelegramToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		BaseAdminChatID:   getEnvAsInt("BASE_ADMIN_CHAT_ID", 0),
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if cfg.SchoolAPIURL == "" {
		return nil, errors.New("could not get school api url")
	}
	if cfg.SchoolAPIToken == "" {
		return nil, errors.New("could not get school api token")
	}

	cfg.AcademicYearStart, err = getEnvAsDate("ACADEMIC_YEAR_START", "2024-08-26")
	if err != nil {
		return nil, err
	}
	cfg.AcademicYearEnd, err = getEnvAsDate("ACADEMIC_YEAR_END", "2025-07-31")
	if err != nil {
		return nil, err
	}
	if cfg.AcademicYearEnd.Before(cfg.AcademicYearStart) {
		return nil, errors.New("academic year ends before it starts")
	}

	if cfg.FetchConcurrency < 1 {
		cfg.FetchConcurrency = 1
	}
	if cfg.RenderConcurrency < 1 {
		cfg.RenderConcurrency = 1
	}

	return cfg, nil
}

// BotEnabled - бот запускается только при наличии токена
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(name, "")
	if val, err := time.ParseDuration(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsDate(name string, defaultVal string) (time.Time, error) {
	valStr := getEnv(name, defaultVal)
	t, err := time.ParseInLocation("2006-01-02", valStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}
