// config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TelegramToken string         `yaml:"telegram_token"`
	Env           string         `yaml:"env"`
	Debug         bool           `yaml:"debug"`
	Database      DatabaseConfig `yaml:"database"`
	Tender        TenderConfig   `yaml:"tender"`
	Log           LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	// Driver: sqlite или postgres
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// TenderConfig — параметры розыгрыша дейли
type TenderConfig struct {
	DailyHour       int           `yaml:"daily_hour"`
	DailyMinute     int           `yaml:"daily_minute"`
	CandidatesCount int           `yaml:"candidates_count"`
	SchedulerTick   time.Duration `yaml:"scheduler_tick"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func defaults() *Config {
	return &Config{
		Env: "development",
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "bot.db",
		},
		Tender: TenderConfig{
			DailyHour:       7,
			DailyMinute:     0,
			CandidatesCount: 3,
			SchedulerTick:   time.Second,
		},
		Log: LogConfig{Level: "info", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 30},
	}
}

// LoadConfig читает .env, затем YAML из CONFIG_FILE (если задан), затем переменные среды.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Не удалось загрузить .env файл, используем переменные среды")
	}

	c := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("чтение %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("разбор %s: %w", path, err)
		}
	}

	envOverride(&c.TelegramToken, "TELEGRAM_BOT_TOKEN")
	envOverride(&c.Env, "APP_ENV")
	envOverride(&c.Database.Driver, "DB_DRIVER")
	envOverride(&c.Database.DSN, "DB_DSN")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverrideInt(&c.Tender.DailyHour, "DAILY_HOUR")
	envOverrideInt(&c.Tender.DailyMinute, "DAILY_MINUTE")
	envOverrideInt(&c.Tender.CandidatesCount, "CANDIDATES_COUNT")
	if val, ok := os.LookupEnv("SCHEDULER_TICK"); ok {
		if d, err := time.ParseDuration(val); err == nil {
			c.Tender.SchedulerTick = d
		}
	}
	if c.Tender.SchedulerTick <= 0 {
		c.Tender.SchedulerTick = time.Second
	}
	if val, ok := os.LookupEnv("DEBUG"); ok {
		// "1" или "true" включают отладку
		c.Debug, _ = strconv.ParseBool(val)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return errors.New("не задан TELEGRAM_BOT_TOKEN")
	}
	if c.Tender.DailyHour < 0 || c.Tender.DailyHour > 23 || c.Tender.DailyMinute < 0 || c.Tender.DailyMinute > 59 {
		return fmt.Errorf("некорректное время дейли по умолчанию %02d:%02d", c.Tender.DailyHour, c.Tender.DailyMinute)
	}
	if c.Tender.CandidatesCount < 2 {
		return fmt.Errorf("CANDIDATES_COUNT должен быть не меньше 2, получено %d", c.Tender.CandidatesCount)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("неизвестный DB_DRIVER %q", c.Database.Driver)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
