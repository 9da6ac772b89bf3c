package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/realmgate/internal/config"
	"github.com/mcoot/realmgate/internal/dependencies/clock"
	"github.com/mcoot/realmgate/internal/dependencies/random"
	"github.com/mcoot/realmgate/internal/metrics"
	"github.com/mcoot/realmgate/internal/middleware"
	"github.com/mcoot/realmgate/internal/model"
	"github.com/mcoot/realmgate/internal/services/audit"
	"github.com/mcoot/realmgate/internal/services/botcheck"
	"github.com/mcoot/realmgate/internal/services/csrf"
	"github.com/mcoot/realmgate/internal/services/ratelimit"
	"github.com/mcoot/realmgate/internal/services/registration"
	"github.com/mcoot/realmgate/internal/services/session"
	"github.com/mcoot/realmgate/internal/storage"
	"github.com/mcoot/realmgate/internal/storage/memory"
	"github.com/mcoot/realmgate/internal/storage/postgres"
	redisstorage "github.com/mcoot/realmgate/internal/storage/redis"
	"github.com/mcoot/realmgate/internal/web/handler"
)

// Storage backend names
const (
	StorageTypeMemory   = config.BackendMemory
	StorageTypeRedis    = config.BackendRedis
	StorageTypePostgres = config.BackendPostgres
)

// App contains all wired application components
type App struct {
	// Storage
	SessionStore storage.SessionStore
	AccountStore storage.AccountStore

	// External dependencies
	Clock   clock.Clock
	Random  random.Random
	Captcha botcheck.CaptchaVerifier

	// Services
	Metrics             *metrics.Metrics
	Recorder            audit.Recorder
	SessionService      *session.Service
	RateLimiter         *ratelimit.Limiter
	TokenGuard          *csrf.Guard
	RegistrationService *registration.Service
	Throttle            *middleware.Throttle

	// HealthChecks are the reachable backends reported by /healthz
	HealthChecks map[string]handler.Pinger

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger

	// SessionBackend selects session storage ("memory" or "redis"), default memory
	SessionBackend string
	// RedisConfig is required if SessionBackend is "redis"
	RedisConfig *redisstorage.Config

	// AccountBackend selects account storage ("memory" or "postgres"), default memory
	AccountBackend string
	// PostgresConfig is required if AccountBackend is "postgres" or SecurityLogDB is set
	PostgresConfig *postgres.Config
	// AutoMigrate applies pending migrations at startup
	AutoMigrate bool

	// SecurityLogPath is the security event file; empty disables it
	SecurityLogPath string
	// SecurityLogDB also appends security events to the database
	SecurityLogDB bool

	// Captcha configures the HTTP verifier. CaptchaVerifier overrides it when set.
	Captcha         botcheck.HTTPVerifierConfig
	CaptchaVerifier botcheck.CaptchaVerifier

	Session      session.Config
	RateLimit    ratelimit.Config
	Registration registration.Config
	Throttle     middleware.ThrottleConfig
}

// DefaultConfig returns an in-memory configuration with default service settings
func DefaultConfig() Config {
	return Config{
		SessionBackend: StorageTypeMemory,
		AccountBackend: StorageTypeMemory,
		Session:        session.DefaultConfig(),
		RateLimit:      ratelimit.DefaultConfig(),
		Registration:   registration.DefaultConfig(),
		Throttle:       middleware.DefaultThrottleConfig(),
	}
}

// ConfigFrom maps loaded environment settings onto a factory Config
func ConfigFrom(c *config.Config, logger *slog.Logger) Config {
	cfg := Config{
		Logger:          logger,
		SessionBackend:  c.SessionBackend,
		AccountBackend:  c.AccountBackend,
		AutoMigrate:     c.AutoMigrate,
		SecurityLogPath: c.SecurityLogPath,
		SecurityLogDB:   c.SecurityLogDB,
		Captcha: botcheck.HTTPVerifierConfig{
			Secret:    c.Captcha.Secret,
			VerifyURL: c.Captcha.VerifyURL,
		},
		Session: session.DefaultConfig(),
		RateLimit: ratelimit.Config{
			MaxAttempts: c.RateMaxAttempts,
			Window:      c.RateWindow,
		},
		Registration: registration.Config{
			Expansion:         model.Expansion(c.Expansion),
			Realmlist:         c.Realmlist,
			SuccessMessage:    c.SuccessMessage,
			DisposableDomains: c.DisposableDomains,
		},
		Throttle: middleware.ThrottleConfig{
			RequestsPerSecond: c.IPThrottleRPS,
			Burst:             c.IPThrottleBurst,
		},
	}

	if c.SessionBackend == config.BackendRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		cfg.RedisConfig = &redisCfg
	}
	if c.UsesPostgres() {
		pgCfg := PostgresConfig(c.DB)
		cfg.PostgresConfig = &pgCfg
	}
	return cfg
}

// PostgresConfig maps DB_ settings onto the pool configuration
func PostgresConfig(db config.Database) postgres.Config {
	pgCfg := postgres.DefaultConfig()
	pgCfg.Host = db.Host
	pgCfg.Port = db.Port
	pgCfg.Database = db.Name
	pgCfg.User = db.User
	pgCfg.Password = db.Password
	pgCfg.SSLMode = db.SSLMode
	return pgCfg
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (_ *App, err error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	app := &App{HealthChecks: make(map[string]handler.Pinger)}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	sessionStore, err := app.openSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	var pg *postgres.Storage
	if cfg.AccountBackend == StorageTypePostgres || cfg.SecurityLogDB {
		pg, err = app.openPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	var accounts storage.AccountStore
	switch cfg.AccountBackend {
	case "", StorageTypeMemory:
		accounts = memory.New()
	case StorageTypePostgres:
		accounts = pg
	default:
		return nil, fmt.Errorf("invalid AccountBackend %q: must be 'memory' or 'postgres'", cfg.AccountBackend)
	}

	var recorders audit.Multi
	if cfg.SecurityLogPath != "" {
		fileRecorder, err := audit.OpenFile(cfg.SecurityLogPath, logger)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, fileRecorder.Close)
		recorders = append(recorders, fileRecorder)
	}
	if cfg.SecurityLogDB {
		recorders = append(recorders, audit.NewStoreRecorder(pg, logger))
	}

	captcha := cfg.CaptchaVerifier
	if captcha == nil {
		captcha = botcheck.NewHTTPVerifier(cfg.Captcha, logger)
	}

	app.wire(sessionStore, accounts, recorders, captcha, clock.New(), random.New(), cfg, logger)
	return app, nil
}

// wire creates the services over the given dependencies
func (a *App) wire(
	sessionStore storage.SessionStore,
	accounts storage.AccountStore,
	recorder audit.Recorder,
	captcha botcheck.CaptchaVerifier,
	clk clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) {
	a.SessionStore = sessionStore
	a.AccountStore = accounts
	a.Clock = clk
	a.Random = rnd
	a.Captcha = captcha
	a.Recorder = recorder
	a.Metrics = metrics.New()
	a.SessionService = session.New(sessionStore, clk, rnd, cfg.Session, logger)
	a.RateLimiter = ratelimit.New(clk, cfg.RateLimit)
	a.TokenGuard = csrf.New(clk, rnd, csrf.DefaultLifetime)
	a.Throttle = middleware.NewThrottle(cfg.Throttle)
	a.RegistrationService = registration.New(
		a.RateLimiter,
		a.TokenGuard,
		captcha,
		accounts,
		recorder,
		a.Metrics,
		clk,
		cfg.Registration,
		logger,
	)
}

func (a *App) openSessionStore(cfg Config) (storage.SessionStore, error) {
	switch cfg.SessionBackend {
	case "", StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when SessionBackend is redis")
		}
		store, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		a.HealthChecks["redis"] = store
		return store, nil
	default:
		return nil, fmt.Errorf("invalid SessionBackend %q: must be 'memory' or 'redis'", cfg.SessionBackend)
	}
}

func (a *App) openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*postgres.Storage, error) {
	if cfg.PostgresConfig == nil {
		return nil, errors.New("PostgresConfig required when the database is used")
	}

	if cfg.AutoMigrate {
		if err := migrateUp(cfg.PostgresConfig.URL(), logger); err != nil {
			return nil, err
		}
	}

	pool, err := postgres.Open(ctx, *cfg.PostgresConfig)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})

	store := postgres.New(pool)
	a.HealthChecks["postgres"] = store
	logger.Info("connected to account database", slog.String("target", cfg.PostgresConfig.Redacted()))
	return store, nil
}

func migrateUp(databaseURL string, logger *slog.Logger) error {
	m, err := postgres.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			logger.Warn("closing migrator", slog.String("error", cerr.Error()))
		}
	}()

	if err := m.Up(); err != nil {
		return err
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	logger.Info("database schema ready", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	return nil
}

// Close releases every backend connection, newest first
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
