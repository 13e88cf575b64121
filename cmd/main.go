package main

import (
	"context"
	"log"
	"time"

	"github.com/Adrien7782/BankVocabulary/internal/auth"
	"github.com/Adrien7782/BankVocabulary/internal/bot"
	"github.com/Adrien7782/BankVocabulary/internal/config"
	"github.com/Adrien7782/BankVocabulary/internal/feed"
	"github.com/Adrien7782/BankVocabulary/internal/persist"
	"github.com/Adrien7782/BankVocabulary/internal/scheduler"
	"github.com/Adrien7782/BankVocabulary/internal/storage/cache"
	"github.com/Adrien7782/BankVocabulary/internal/storage/db"
	"github.com/Adrien7782/BankVocabulary/internal/storage/kv"
	"go.uber.org/zap"
)

func setupLogger(env string) *zap.Logger {
	var logger *zap.Logger
	if env == "development" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	return logger
}

func main() {
	cfg, err := config.Init()
	if err != nil {
		log.Fatalf("failed to init config: %v", err)
	}

	logger := setupLogger(cfg.Env)
	defer logger.Sync()

	database, err := db.InitDB(cfg.DB)
	if err != nil {
		logger.Fatal("failed to init db", zap.Error(err))
	}
	defer database.Close()

	var store persist.Store
	if cfg.Local.Path != "" {
		local, err := kv.Open(cfg.Local.Path)
		if err != nil {
			logger.Fatal("failed to open local store", zap.Error(err))
		}
		defer local.Close()
		store = local
	} else {
		logger.Warn("no local store path configured, anonymous state will not survive restarts")
		store = kv.NewMemory()
	}

	cards := feed.NewCardStore(database, logger)
	identityDB := database

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := cards.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to ensure cards schema", zap.Error(err))
	}
	if err := auth.NewProvider(identityDB, logger).EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to ensure users schema", zap.Error(err))
	}

	handler, err := bot.NewTelegramAPI(cfg.BotToken, cfg.Env, identityDB, cards, store, cache.NewCache(), logger)
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}

	reminders := scheduler.New(handler, handler, cfg.App.ReminderHour, logger)
	if err := reminders.Start(); err != nil {
		logger.Fatal("failed to start reminder scheduler", zap.Error(err))
	}
	defer reminders.Stop()

	logger.Info("bot started")
	handler.Start()
}
