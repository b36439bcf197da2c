package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mafia-stats/internal/club"
	"github.com/mauv0809/mafia-stats/internal/config"
	"github.com/mauv0809/mafia-stats/internal/database"
	server "github.com/mauv0809/mafia-stats/internal/http"
	"github.com/mauv0809/mafia-stats/internal/metrics"
	"github.com/mauv0809/mafia-stats/internal/notifier/slack"
	"github.com/mauv0809/mafia-stats/internal/processor"
	"github.com/mauv0809/mafia-stats/internal/pubsub"
	"github.com/mauv0809/mafia-stats/internal/rules"
	"github.com/mauv0809/mafia-stats/internal/session"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	clubStore := club.New(db)
	if cfg.Features.SeedSampleData {
		if err := club.Seed(clubStore); err != nil {
			log.Fatalf("Failed to seed sample data: %s", err)
		}
	}

	ruleStore := rules.New(db)
	if err := ruleStore.EnsureDefault(); err != nil {
		log.Fatalf("Failed to store default rule set: %s", err)
	}

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	counters := metrics.New(db)
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	pubsub := pubsub.New(cfg.ProjectID)
	defer pubsub.Close()

	opts := []processor.Option{processor.WithRuleSource(ruleStore)}
	if cfg.ProjectID == "" {
		// Without Pub/Sub nothing pushes the result back, so notify directly.
		opts = append(opts, processor.WithInlineNotifications())
	}
	processor := processor.New(clubStore, notifier, metricsSvc, pubsub, opts...)
	sess := session.New(clubStore, processor, metricsSvc, session.Options{
		RecordGames: cfg.Features.GameRecording,
		Counters:    counters,
	})

	s := server.NewServer(
		sess,
		ruleStore,
		metricsHandler,
		counters,
		cfg,
		notifier,
		processor,
		pubsub,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server started", "port", cfg.Port, "gameRecording", cfg.Features.GameRecording)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutdown signal received")

		// Create a context with a timeout for the shutdown.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
			return err
		}
		log.Info("Server gracefully stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Server error", "error", err)
	}
	log.Info("Server process shutting down")
}
