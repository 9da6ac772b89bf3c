package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mcoot/realmgate/internal/config"
	"github.com/mcoot/realmgate/internal/factory"
	"github.com/mcoot/realmgate/internal/server"
	"github.com/mcoot/realmgate/internal/web"
	"github.com/mcoot/realmgate/internal/web/handler"
	"github.com/mcoot/realmgate/internal/web/middleware"
)

// throttleSweepInterval is how often idle per-address limiters are dropped
const throttleSweepInterval = time.Minute

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(".env")
	if err != nil {
		// Operators get the detail in the log; the console only gets the generic message
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, config.OperatorMessage)
		os.Exit(1)
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create application factory
	app, err := factory.New(ctx, factory.ConfigFrom(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, config.OperatorMessage)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close backends", slog.String("error", err.Error()))
		}
	}()

	headers := middleware.DefaultHeaderConfig()
	router, err := web.NewRouter(web.RouterConfig{
		Logger:              logger,
		Metrics:             app.Metrics,
		SessionService:      app.SessionService,
		RegistrationService: app.RegistrationService,
		TokenGuard:          app.TokenGuard,
		Register: handler.RegisterConfig{
			CaptchaSiteKey:   cfg.Captcha.SiteKey,
			CaptchaScriptURL: cfg.Captcha.ScriptURL,
		},
		HealthChecks:   app.HealthChecks,
		Throttle:       app.Throttle,
		Headers:        headers,
		CookieSecure:   cfg.CookieSecure,
		TrustedOrigins: cfg.TrustedOrigins,
		StaticDir:      findStaticDir(cfg.StaticDir),
	})
	if err != nil {
		logger.Error("failed to create router", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, config.OperatorMessage)
		os.Exit(1)
	}

	if app.Throttle.Enabled() {
		go app.Throttle.Run(ctx, throttleSweepInterval)
	}

	// Create server
	serverConfig := server.DefaultConfig()
	serverConfig.Host = cfg.HTTPHost
	serverConfig.Port = cfg.HTTPPort
	srv := server.New(router, serverConfig, logger)

	servers := []*server.Server{srv}

	// Metrics and health for operators, bound to loopback by default
	if cfg.MetricsEnabled() {
		opsConfig := server.DefaultConfig()
		opsConfig.Host = cfg.MetricsHost
		opsConfig.Port = cfg.MetricsPort
		servers = append(servers, server.New(web.NewOperatorRouter(app.Metrics, app.HealthChecks, logger), opsConfig, logger))
	}

	// Start servers in goroutines
	errCh := make(chan error, len(servers))
	for _, s := range servers {
		go func() {
			errCh <- s.Start()
		}()
	}

	logger.Info("server started",
		slog.String("addr", srv.Addr()),
		slog.Bool("metrics_enabled", cfg.MetricsEnabled()),
		slog.String("session_backend", cfg.SessionBackend),
		slog.String("account_backend", cfg.AccountBackend))

	// Wait for shutdown or error
	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}
	for _, s := range servers {
		if err := s.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	logger.Info("server stopped")
	if exitCode != 0 {
		stop()
		_ = app.Close()
		os.Exit(exitCode)
	}
}

// findStaticDir returns the configured directory, or the first conventional one that exists
func findStaticDir(configured string) string {
	if configured != "" {
		return configured
	}

	candidates := []string{
		"internal/web/static",
		"./internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	// No static files
	return ""
}
