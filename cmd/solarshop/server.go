package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/artpar/solarshop/internal/core/auth"
	"github.com/artpar/solarshop/internal/shell/api"
	"github.com/artpar/solarshop/internal/shell/api/middleware"
	"github.com/artpar/solarshop/internal/shell/imagehost"
	"github.com/artpar/solarshop/internal/shell/media"
	"github.com/artpar/solarshop/internal/shell/metrics"
	"github.com/artpar/solarshop/internal/shell/notify"
	"github.com/artpar/solarshop/internal/shell/store"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitDatabaseError   = 2
	ExitStorageError    = 3
	ExitHTTPServerError = 4
	ExitSeedError       = 5
)

// =============================================================================
// Server
// =============================================================================

// Server represents the solarshop application server.
type Server struct {
	config     *Config
	httpServer *http.Server
	store      *store.SQLiteStore
	relay      *notify.Relay
	logger     *slog.Logger
}

// NewServer creates a new server with the given config.
func NewServer(ctx context.Context, cfg *Config, logger *slog.Logger) (*Server, error) {
	s, err := openStore(cfg)
	if err != nil {
		return nil, &ServerError{Op: "NewServer", Err: err, ExitCode: ExitDatabaseError}
	}

	storage, err := media.NewStorage(ctx, media.Config{
		Driver:  cfg.Media.Driver,
		Dir:     cfg.Media.Dir,
		BaseURL: cfg.Media.BaseURL,
		S3: media.S3Config{
			Bucket:          cfg.Media.S3.Bucket,
			Region:          cfg.Media.S3.Region,
			Endpoint:        cfg.Media.S3.Endpoint,
			AccessKeyID:     cfg.Media.S3.AccessKeyID,
			SecretAccessKey: cfg.Media.S3.SecretAccessKey,
			PublicURL:       cfg.Media.S3.PublicURL,
			UsePathStyle:    cfg.Media.S3.UsePathStyle,
		},
	}, logger.With("component", "media"))
	if err != nil {
		s.Close()
		return nil, &ServerError{Op: "NewServer", Err: err, ExitCode: ExitStorageError}
	}

	// Local uploads are served by this process; bucket objects are not.
	var mediaHandler http.Handler
	if local, ok := storage.(*media.LocalStorage); ok {
		mediaHandler = local.Handler()
	}
	logger.Info("media storage ready", "driver", cfg.Media.Driver, "max_upload_mb", cfg.Media.MaxUploadMB)

	var imageHost imagehost.Client = imagehost.NewNoopClient()
	if cfg.ImageHost.APIKey != "" {
		ihCfg := imagehost.DefaultConfig()
		if cfg.ImageHost.BaseURL != "" {
			ihCfg.BaseURL = cfg.ImageHost.BaseURL
		}
		ihCfg.APIKey = cfg.ImageHost.APIKey
		ihCfg.Expiration = cfg.ImageHost.Expiration
		if cfg.ImageHost.Timeout > 0 {
			ihCfg.Timeout = cfg.ImageHost.Timeout
		}
		imageHost = imagehost.NewHTTPClient(ihCfg)
		logger.Info("image relay enabled", "base_url", ihCfg.BaseURL)
	} else {
		logger.Info("image relay disabled")
	}

	recorder := metrics.NewRecorder()

	tokens := adminTokens(cfg.Auth)
	if len(tokens) == 0 {
		logger.Warn("no admin tokens configured, back office is unreachable")
	}
	authMW := middleware.NewAuthMiddleware(middleware.AuthConfig{
		Tokens: tokens,
		Logger: logger.With("component", "auth"),
	})

	relay := newRelay(cfg.WhatsApp, cfg.Checkout.Currency, s, recorder, logger)

	handler := api.NewHandler(api.Config{
		Store:        s,
		Uploader:     media.NewUploader(storage, cfg.Media.MaxUploadBytes()),
		MediaHandler: mediaHandler,
		MediaPrefix:  cfg.Media.BaseURL,
		ImageHost:    imageHost,
		Metrics:      recorder,
		Auth:         authMW,
		Logger:       logger.With("component", "api"),
		Shop: api.ShopConfig{
			Currency:         cfg.Checkout.Currency,
			WhatsAppNumber:   cfg.WhatsApp.Number,
			ConfirmationPath: cfg.Checkout.RedirectPath,
		},
		FrontendDir: cfg.Server.FrontendDir,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		store:      s,
		relay:      relay,
		logger:     logger,
	}, nil
}

// openStore opens the database, creating its directory when needed.
func openStore(cfg *Config) (*store.SQLiteStore, error) {
	dsn := cfg.Database.DSN
	if !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	return store.NewSQLiteStore(dsn)
}

// adminTokens collects configured credentials.
func adminTokens(cfg AuthConfig) []middleware.Token {
	var tokens []middleware.Token
	if cfg.AdminTokenHash != "" {
		tokens = append(tokens, middleware.Token{Name: "admin", Role: auth.RoleAdmin, Hash: cfg.AdminTokenHash})
	}
	for _, t := range cfg.Tokens {
		tokens = append(tokens, middleware.Token{Name: t.Name, Role: auth.Role(t.Role), Hash: t.Hash})
	}
	return tokens
}

// newRelay returns the order notification relay, or nil when the WhatsApp
// Cloud API is not configured. Orders stay unnotified until it is.
func newRelay(cfg WhatsAppConfig, currency string, s store.Store, recorder *metrics.Recorder, logger *slog.Logger) *notify.Relay {
	ncfg := notify.DefaultConfig()
	if cfg.APIBaseURL != "" {
		ncfg.BaseURL = cfg.APIBaseURL
	}
	ncfg.PhoneNumberID = cfg.PhoneNumberID
	ncfg.AccessToken = cfg.AccessToken
	ncfg.Recipient = cfg.Recipient
	ncfg.Currency = currency
	if cfg.Timeout > 0 {
		ncfg.Timeout = cfg.Timeout
	}

	if !ncfg.Enabled() {
		logger.Info("order notifications disabled")
		return nil
	}

	logger.Info("order notifications enabled", "recipient", ncfg.Recipient)
	return notify.NewRelay(notify.RelayConfig{
		Queue:     s,
		Notifier:  notify.New(ncfg),
		Counter:   recorder,
		Interval:  cfg.RelayInterval,
		BatchSize: cfg.BatchSize,
		Logger:    logger.With("component", "notify"),
	})
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if s.relay != nil {
		go s.relay.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", s.config.Server.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		s.Shutdown(context.Background())
		return &ServerError{Op: "Start", Err: err, ExitCode: ExitHTTPServerError}
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.relay != nil {
		s.relay.Stop()
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("database close error", "error", err)
	}

	s.logger.Info("shutdown complete")
	return nil
}

// =============================================================================
// Server Error
// =============================================================================

// ServerError represents an error during server operation.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
