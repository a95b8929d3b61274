package main

import (
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/coldcall/internal/api"
	"github.com/nikhilbhutani/coldcall/internal/config"
	"github.com/nikhilbhutani/coldcall/internal/dialer"
	"github.com/nikhilbhutani/coldcall/internal/dialog"
	"github.com/nikhilbhutani/coldcall/internal/queue"
	"github.com/nikhilbhutani/coldcall/internal/queue/workers"
	"github.com/nikhilbhutani/coldcall/internal/synth"
	"github.com/nikhilbhutani/coldcall/internal/telephony"
)

// Nil *synth.Cache must be passed as a nil interface.

func clipProvider(c *synth.Cache) dialog.ClipProvider {
	if c == nil {
		return nil
	}
	return c
}

func warmer(c *synth.Cache) dialer.Warmer {
	if c == nil {
		return nil
	}
	return c
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	tel := telephony.NewTwilio(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)

	cache, err := api.BuildSynthCache(cfg)
	if err != nil {
		slog.Error("failed to set up synthesis cache", "error", err)
		os.Exit(1)
	}

	engine := dialog.NewEngine(clipProvider(cache), tel, dialog.Config{
		BaseURL:  cfg.Dialer.PublicBaseURL,
		LinkURL:  cfg.Dialer.LinkURL,
		LinkBody: cfg.Dialer.LinkBody,
	})

	dispatcher := dialer.New(tel, engine, warmer(cache), dialer.Config{
		FromNumber:     cfg.Twilio.FromNumber,
		PublicBaseURL:  cfg.Dialer.PublicBaseURL,
		RingTimeoutSec: cfg.Dialer.RingTimeoutSec,
	})

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			// Low worker concurrency: each task places a live phone call, and
			// the synthesis semaphore already bounds upstream load.
			Concurrency: 4,
		},
	)

	registry := queue.NewHandlersRegistry()

	dialWorker := workers.NewDialWorker(dispatcher)
	registry.Register(queue.TypeLeadDial, asynq.HandlerFunc(dialWorker.ProcessTask))

	slog.Info("starting dial worker", "concurrency", 4)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
