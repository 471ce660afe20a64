package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/MonsieurPatate/daily-tender-bot/config"
	"github.com/MonsieurPatate/daily-tender-bot/internal/bot"
	"github.com/MonsieurPatate/daily-tender-bot/internal/db"
	"github.com/MonsieurPatate/daily-tender-bot/internal/logger"
	"github.com/MonsieurPatate/daily-tender-bot/internal/scheduler"
	"github.com/MonsieurPatate/daily-tender-bot/internal/tender"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Ошибка конфигурации: ", err)
	}
	logg := logger.New(cfg)
	defer func() { _ = logg.Sync() }()

	conn, err := db.Open(cfg.Database, logg)
	if err != nil {
		logg.Fatal("Ошибка подключения к базе", zap.Error(err))
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		logg.Fatal("Ошибка запуска бота", zap.Error(err))
	}
	botAPI.Debug = cfg.Debug
	logg.Info("✅ Бот запущен", zap.String("username", botAPI.Self.UserName), zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobs := scheduler.New(cfg.Tender.SchedulerTick, logg)
	defer jobs.Stop()

	transport := bot.NewTelegramTransport(botAPI, logg)
	engine := tender.NewEngine(conn, transport, jobs, logg, tender.Settings{
		CandidatesCount: cfg.Tender.CandidatesCount,
	})

	// задачи планировщика живут в памяти, после рестарта их нужно восстановить
	if _, err := engine.RestorePending(ctx); err != nil {
		logg.Error("❌ Не удалось восстановить подведение итогов", zap.Error(err))
	}

	handler := bot.NewHandler(botAPI, engine, cfg.Tender, logg)
	if err := handler.SetCommands(); err != nil {
		logg.Warn("⚠️ Не удалось установить меню команд", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "poll", "callback_query"}
	updates := botAPI.GetUpdatesChan(u)

	handler.Run(ctx, updates)
	botAPI.StopReceivingUpdates()
	logg.Info("👋 Бот остановлен")
}
