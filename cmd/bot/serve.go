package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"frontdesk-bot/internal/auth"
	"frontdesk-bot/internal/config"
	"frontdesk-bot/internal/dialog"
	"frontdesk-bot/internal/scheduler"
	"frontdesk-bot/internal/state"
	"frontdesk-bot/internal/telegram"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.New()

	s, err := openStore(ctx, &cfg.Storage)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer s.Close()

	states, closeStates, err := newStateStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStates()

	authSvc := auth.New(cfg.AdminIDs)
	log.Printf("✅ %d admin(s) configured", len(authSvc.List()))

	bot, err := telegram.New(cfg.BotToken)
	if err != nil {
		return err
	}
	notifier := bot.Notifier()
	engine := dialog.New(s, states, authSvc, notifier, dialog.WithFilesDir(cfg.FilesDir))

	sched := scheduler.New(cfg.ReportSchedule)
	sched.SetReportFunction(scheduler.DailyReport(s, notifier, time.Now))
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	log.Println("🤖 Bot started")
	bot.Start(ctx, engine)

	engine.Wait()
	log.Println("Bot stopped")
	return nil
}

func newStateStore(ctx context.Context, cfg *config.Config) (state.Store, func(), error) {
	switch cfg.StateBackend {
	case config.BackendRedis:
		client, err := state.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("✅ Conversation state in redis (ttl %s)", cfg.StateTTL)
		return state.NewRedisStore(client, cfg.StateTTL), func() { _ = client.Close() }, nil
	default:
		log.Println("⚠️ Conversation state kept in memory, it is lost on restart")
		return state.NewMemoryStore(), func() {}, nil
	}
}
