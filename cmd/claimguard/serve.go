package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/claimguard/internal/auth"
	"github.com/Veraticus/claimguard/internal/common"
	"github.com/Veraticus/claimguard/internal/metrics"
	"github.com/Veraticus/claimguard/internal/prediction"
	"github.com/Veraticus/claimguard/internal/service"
	"github.com/Veraticus/claimguard/internal/session"
	"github.com/Veraticus/claimguard/internal/web"
)

const purgeInterval = 10 * time.Minute

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard web server",
		Long: `Start the session-authenticated dashboard and JSON prediction API.

Accounts are configured under auth.users as bcrypt hashes; generate them
with 'claimguard hash-password'.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":5001", "listen address")
	cmd.Flags().Bool("offline", false, "disable the remote inference client")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	offline, _ := cmd.Flags().GetBool("offline")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := slog.Default()

	sessions, err := session.New(ctx, cfg.Session)
	if err != nil {
		return err
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			logger.Warn("Failed to close session store", "error", err)
		}
	}()

	authenticator, err := auth.NewBcryptAuthenticator(cfg.Auth.Users)
	if err != nil {
		return err
	}
	if authenticator.Users() == 0 {
		logger.Warn("No users configured; nobody can log in. Add bcrypt hashes under auth.users")
	}

	m := metrics.New()
	dispatcher, _, err := newDispatcher(ctx, cfg, offline, prediction.WithRecorder(m))
	if err != nil {
		return err
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := web.NewServer(cfg, web.Deps{
		Sessions:  sessions,
		Auth:      authenticator,
		Predictor: dispatcher,
		Retrainer: web.StubRetrainer{},
		Metrics:   m,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	go purgeSessions(ctx, sessions, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting web server", common.Fields{
			"addr":            cfg.Server.Addr,
			"session_backend": cfg.Session.Backend,
			"llm_provider":    cfg.LLM.Provider,
			"offline":         offline,
		}.Attrs()...)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down web server", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	return nil
}

// purgeSessions periodically removes expired rows from stores that keep them.
func purgeSessions(ctx context.Context, store service.SessionStore, logger *slog.Logger) {
	purger, ok := store.(interface {
		PurgeExpired(ctx context.Context) (int64, error)
	})
	if !ok {
		return
	}

	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purger.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("Failed to purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("Purged expired sessions", "count", n)
			}
		}
	}
}
