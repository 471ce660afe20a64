package db

import (
	"fmt"
	"time"

	"github.com/MonsieurPatate/daily-tender-bot/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open подключается к базе и мигрирует таблицы.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("неизвестный драйвер базы данных %q", cfg.Driver)
	}

	gormLog := gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})

	conn, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	if err := conn.AutoMigrate(&Member{}, &ChatConfig{}, &TenderParticipant{}); err != nil {
		return nil, fmt.Errorf("ошибка миграции таблиц: %w", err)
	}

	log.Info("✅ База данных инициализирована", zap.String("driver", cfg.Driver))
	return conn, nil
}
