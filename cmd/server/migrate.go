package main

import (
	"fmt"
	"log"
	"time"

	"github.com/dom/uptask-server/internal/auth"
	"github.com/dom/uptask-server/internal/config"
	"github.com/dom/uptask-server/internal/notify"
	"github.com/dom/uptask-server/internal/repository/postgres"
	"github.com/dom/uptask-server/internal/service"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			if err := postgres.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			log.Println("Schema is up to date")
			return nil
		},
	}
}

func purgeTokensCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "purge-tokens",
		Short: "Delete expired confirmation and reset tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("ttl") {
				cfg.TokenTTL = ttl
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}

			repos := postgres.NewRepositories(db)
			sessions := auth.NewSessionCodec(cfg.JWTSecret, cfg.SessionValidity())
			authService := service.NewAuthService(repos, postgres.NewTransactor(db), sessions, notify.LogNotifier{}, cfg.TokenTTL)

			n, err := authService.PurgeExpiredTokens(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to purge tokens: %w", err)
			}
			log.Printf("Purged %d expired tokens", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime to apply instead of TOKEN_TTL_MINUTES")
	return cmd
}
