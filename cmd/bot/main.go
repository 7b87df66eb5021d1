package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"frontdesk-bot/internal/analytics"
	"frontdesk-bot/internal/config"
	"frontdesk-bot/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frontdesk-bot",
		Short: "Telegram menu bot for small businesses",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(".env"); err != nil {
				log.Printf("Warning: .env file not found: %v", err)
			}
		},
		// serve is the default so the bare binary keeps working in containers
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and seed default content",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := config.ParseStorage()
			if err != nil {
				return err
			}
			s, err := openStore(cmd.Context(), st)
			if err != nil {
				return err
			}
			defer s.Close()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print submission statistics for the last 24 hours",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := config.ParseStorage()
			if err != nil {
				return err
			}
			s, err := store.Open(st.DatabaseURL)
			if err != nil {
				return err
			}
			defer s.Close()

			stats, err := analytics.Collect(cmd.Context(), s, time.Now())
			if err != nil {
				return err
			}
			out := stats.Summary()
			if asJSON {
				if out, err = stats.ToJSON(); err != nil {
					return err
				}
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text.")
	return cmd
}

// openStore connects, migrates and seeds.
func openStore(ctx context.Context, st *config.Storage) (*store.Store, error) {
	s, err := store.Open(st.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := s.AutoMigrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	err = s.Seed(ctx, store.SeedOptions{
		GreetingText:   st.DefaultGreeting,
		RequestsChatID: st.RequestsChatID,
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
