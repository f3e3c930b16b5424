package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/uptask-server/internal/api"
	"github.com/dom/uptask-server/internal/auth"
	"github.com/dom/uptask-server/internal/config"
	"github.com/dom/uptask-server/internal/notify"
	"github.com/dom/uptask-server/internal/repository/postgres"
	"github.com/dom/uptask-server/internal/service"
	"github.com/dom/uptask-server/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
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

	// Initialize repositories
	repos := postgres.NewRepositories(db)
	tx := postgres.NewTransactor(db)

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	sessions := auth.NewSessionCodec(cfg.JWTSecret, cfg.SessionValidity())
	mailer := notify.NewAsync(newNotifier(cfg))

	// Initialize services
	services := service.NewServices(repos, tx, sessions, mailer, hub, cfg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize router
	router := api.NewRouter(api.Deps{
		Services: services,
		Repos:    repos,
		Sessions: sessions,
		Hub:      hub,
		Registry: registry,
		Config:   cfg,
	})

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepTokens(ctx, services.Auth, cfg.TokenSweepInterval)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	hub.Stop()
	mailer.Wait()

	log.Println("Server stopped")
	return nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.IsDevelopment() {
		level = logger.Info
	}
	db, err := postgres.NewConnection(cfg.DatabaseURL, level)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// newNotifier sends real mail when an SMTP relay is configured and logs
// messages otherwise.
func newNotifier(cfg *config.Config) notify.Notifier {
	if cfg.SMTPHost == "" {
		log.Println("SMTP_HOST not set, mail will be logged")
		return notify.LogNotifier{}
	}
	return notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUser,
		Password:    cfg.SMTPPassword,
		From:        cfg.MailFrom,
		FrontendURL: cfg.FrontendURL,
		TTLMinutes:  int(cfg.TokenTTL / time.Minute),
	})
}

func sweepTokens(ctx context.Context, authService *service.AuthService, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authService.PurgeExpiredTokens(ctx)
			if err != nil {
				log.Printf("ERROR [main.sweepTokens] failed to purge tokens: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Purged %d expired tokens", n)
			}
		}
	}
}
