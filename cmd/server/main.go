// Command server runs the sqlmanager HTTP API.
//
//	server [serve]     start the API (default)
//	server seed        load demo data and exit
//
// Both read settings from the environment, after loading the env file named
// by -c/--config.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sakif/sql-manager/internal/auth"
	"github.com/sakif/sql-manager/internal/config"
	sqliteRepo "github.com/sakif/sql-manager/internal/repository/sqlite"
	"github.com/sakif/sql-manager/internal/server"
	"github.com/sakif/sql-manager/internal/service"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "server",
		Short:         "Shared workspace for SQL snippets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".env", "env file to load before reading the environment")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo user, categories, tags and an example snippet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			db, err := sqliteRepo.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			seeder := service.NewSeeder(db, db, db, db, auth.NewPasswordService(), logger)
			created, err := seeder.Seed(cmd.Context())
			if err != nil {
				return err
			}

			if created {
				fmt.Printf("Seeded demo data. Log in as %s / %s\n", service.DemoEmail, service.DemoPassword)
			} else {
				fmt.Println("Demo data already present, nothing to do.")
			}
			return nil
		},
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Start blocks until SIGINT/SIGTERM and closes the database on return.
	return srv.Start(ctx)
}

// setup loads config, builds the logger and makes sure the database
// directory exists.
func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return config.Config{}, nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	return cfg, logger, nil
}
