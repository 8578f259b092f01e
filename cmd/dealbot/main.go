package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"dealbot/internal/api"
	"dealbot/internal/config"
	"dealbot/internal/ggdeals"
	"dealbot/internal/handlers"
	"dealbot/internal/metrics"
	"dealbot/internal/repository/jsonfile"
	"dealbot/internal/service"
	"dealbot/internal/telegram"
	"dealbot/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting dealbot...")

	// Watchlist store. A malformed file is fatal: data integrity over
	// availability.
	store, err := jsonfile.Open(cfg.DataFile, l)
	if err != nil {
		l.Fatalf("Failed to open watchlist store: %v", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// GG.deals client and service layer
	prices := ggdeals.NewClient(cfg.GGDealsAPIKey, cfg.Region, l)
	svc := service.New(store, prices, m, l)

	// Telegram bot
	bot, err := telegram.NewBot(cfg.TelegramToken, l)
	if err != nil {
		l.Fatalf("Failed to create Telegram bot: %v", err)
	}

	// Register command handlers
	bot.RegisterCommand("start", handlers.NewStartHandler(l))
	bot.RegisterCommand("help", handlers.NewHelpHandler(l))
	bot.RegisterCommand("watch", handlers.NewWatchHandler(svc, l))
	bot.RegisterCommand("unwatch", handlers.NewUnwatchHandler(svc, l))
	bot.RegisterCommand("watchlist", handlers.NewWatchlistHandler(svc, l))
	bot.RegisterCommand("price", handlers.NewPriceHandler(svc, l))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	// Start the price poll scheduler
	notifier := telegram.NewDropNotifier(bot, cfg.AlertChatID, l)
	go svc.StartPriceScheduler(ctx, cfg.CheckInterval, notifier.NotifyDrop)

	// Start HTTP server for the status API and metrics
	apiServer := api.NewServer(svc, registry, l)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: apiServer.Handler(),
	}

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	// Start Telegram bot polling
	go func() {
		if err := bot.Start(ctx); err != nil {
			l.Errorf("Bot error: %v", err)
		}
	}()

	l.Infof("dealbot started, checking prices every %s (region %s)", cfg.CheckInterval, cfg.Region)

	<-ctx.Done()

	l.Info("Shutting down HTTP server...")
	httpServer.Close()

	l.Info("dealbot stopped")
}
