// Package config loads the server's settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/samber/oops"

	"github.com/mcoot/realmgate/internal/model"
)

// Backend names
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// OperatorMessage is the only text shown when configuration is rejected
const OperatorMessage = "Invalid configuration. Please contact the administrator."

// Config holds all runtime settings
type Config struct {
	HTTPHost       string   `env:"HTTP_HOST"`
	HTTPPort       int      `env:"HTTP_PORT" envDefault:"8080"`
	CookieSecure   bool     `env:"COOKIE_SECURE" envDefault:"true"`
	TrustedOrigins []string `env:"TRUSTED_ORIGINS" envSeparator:","`
	StaticDir      string   `env:"STATIC_DIR"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`

	// MetricsPort 0 disables the operator listener
	MetricsHost string `env:"METRICS_HOST" envDefault:"127.0.0.1"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"9090"`

	SessionBackend string `env:"SESSION_BACKEND" envDefault:"memory"`
	RedisURL       string `env:"REDIS_URL"`

	AccountBackend string   `env:"ACCOUNT_BACKEND" envDefault:"memory"`
	DB             Database `envPrefix:"DB_"`
	AutoMigrate    bool     `env:"AUTO_MIGRATE"`

	Captcha Captcha `envPrefix:"CAPTCHA_"`

	Expansion         int      `env:"EXPANSION" envDefault:"2"`
	Realmlist         string   `env:"REALMLIST" envDefault:"set realmlist 127.0.0.1"`
	SuccessMessage    string   `env:"SUCCESS_MESSAGE" envDefault:"Account created successfully"`
	DisposableDomains []string `env:"DISPOSABLE_DOMAINS" envSeparator:"," envDefault:"tempmail.com,throwaway.email,10minutemail.com"`

	SecurityLogPath string `env:"SECURITY_LOG_PATH" envDefault:"logs/security.log"`
	SecurityLogDB   bool   `env:"SECURITY_LOG_DB"`

	RateMaxAttempts int           `env:"RATE_MAX_ATTEMPTS" envDefault:"5"`
	RateWindow      time.Duration `env:"RATE_WINDOW" envDefault:"300s"`
	IPThrottleRPS   float64       `env:"IP_THROTTLE_RPS" envDefault:"0"`
	IPThrottleBurst int           `env:"IP_THROTTLE_BURST" envDefault:"10"`
}

// Database holds account database settings
type Database struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	Name     string `env:"NAME" envDefault:"auth"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// Captcha holds CAPTCHA provider settings
type Captcha struct {
	Secret    string `env:"SECRET"`
	SiteKey   string `env:"SITE_KEY"`
	VerifyURL string `env:"VERIFY_URL" envDefault:"https://www.google.com/recaptcha/api/siteverify"`
	ScriptURL string `env:"SCRIPT_URL" envDefault:"https://www.google.com/recaptcha/api.js"`
}

// Load reads dotenv files (missing files are skipped) into the process
// environment without overriding existing variables, then parses and validates it
func Load(dotenvFiles ...string) (*Config, error) {
	if err := loadDotenv(dotenvFiles); err != nil {
		return nil, err
	}
	return Parse(env.ToMap(os.Environ()))
}

// Parse builds a Config from the given variables and validates it
func Parse(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, oops.Code("CONFIG_PARSE_FAILED").Wrap(errors.Join(model.ErrInvalidConfig, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase reads only the DB_ settings, for tools that never serve HTTP
func LoadDatabase(dotenvFiles ...string) (Database, error) {
	if err := loadDotenv(dotenvFiles); err != nil {
		return Database{}, err
	}

	var cfg struct {
		DB Database `envPrefix:"DB_"`
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: env.ToMap(os.Environ())}); err != nil {
		return Database{}, oops.Code("CONFIG_PARSE_FAILED").Wrap(errors.Join(model.ErrInvalidConfig, err))
	}
	if err := invalid(cfg.DB.problems()); err != nil {
		return Database{}, err
	}
	return cfg.DB, nil
}

// loadDotenv loads files without overriding set variables; production never reads them
func loadDotenv(files []string) error {
	if os.Getenv("APP_ENV") == "production" {
		return nil
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return oops.Code("CONFIG_DOTENV_FAILED").With("file", f).Wrap(errors.Join(model.ErrInvalidConfig, err))
		}
	}
	return nil
}

// Validate checks every setting for well-formedness
func (c *Config) Validate() error {
	var problems []string

	if !validPort(c.HTTPPort) {
		problems = append(problems, fmt.Sprintf("HTTP_PORT %d out of range", c.HTTPPort))
	}
	if c.MetricsPort != 0 {
		if !validPort(c.MetricsPort) {
			problems = append(problems, fmt.Sprintf("METRICS_PORT %d out of range", c.MetricsPort))
		} else if c.MetricsPort == c.HTTPPort {
			problems = append(problems, "METRICS_PORT must differ from HTTP_PORT")
		}
	}
	if !slices.Contains([]string{BackendMemory, BackendRedis}, c.SessionBackend) {
		problems = append(problems, fmt.Sprintf("SESSION_BACKEND %q must be memory or redis", c.SessionBackend))
	}
	if c.SessionBackend == BackendRedis {
		if c.RedisURL == "" {
			problems = append(problems, "REDIS_URL required when SESSION_BACKEND=redis")
		} else if !validURL(c.RedisURL, "redis", "rediss", "unix") {
			problems = append(problems, "REDIS_URL is not a redis:// URL")
		}
	}
	if !slices.Contains([]string{BackendMemory, BackendPostgres}, c.AccountBackend) {
		problems = append(problems, fmt.Sprintf("ACCOUNT_BACKEND %q must be memory or postgres", c.AccountBackend))
	}
	if c.UsesPostgres() {
		problems = append(problems, c.DB.problems()...)
	}
	if c.Captcha.Secret == "" || c.Captcha.SiteKey == "" {
		problems = append(problems, "CAPTCHA_SECRET and CAPTCHA_SITE_KEY required")
	}
	if !validURL(c.Captcha.VerifyURL, "https", "http") {
		problems = append(problems, "CAPTCHA_VERIFY_URL is not an http(s) URL")
	}
	if c.Captcha.ScriptURL != "" && !validURL(c.Captcha.ScriptURL, "https", "http") {
		problems = append(problems, "CAPTCHA_SCRIPT_URL is not an http(s) URL")
	}
	for _, origin := range c.TrustedOrigins {
		if !validURL(origin, "https", "http") {
			problems = append(problems, fmt.Sprintf("TRUSTED_ORIGINS entry %q is not an origin URL", origin))
		}
	}
	if c.Expansion < 0 || c.Expansion > 9 {
		problems = append(problems, fmt.Sprintf("EXPANSION %d out of range", c.Expansion))
	}
	if c.RateMaxAttempts < 1 {
		problems = append(problems, "RATE_MAX_ATTEMPTS must be positive")
	}
	if c.RateWindow <= 0 {
		problems = append(problems, "RATE_WINDOW must be positive")
	}
	if c.IPThrottleRPS < 0 {
		problems = append(problems, "IP_THROTTLE_RPS must not be negative")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}

	return invalid(problems)
}

func invalid(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return oops.Code("CONFIG_INVALID").
		With("problems", problems).
		Wrapf(model.ErrInvalidConfig, "%s", strings.Join(problems, "; "))
}

// HTTPAddr returns the listen address
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// MetricsEnabled reports whether the operator listener should run
func (c *Config) MetricsEnabled() bool {
	return c.MetricsPort != 0
}

// UsesPostgres reports whether any component needs the database
func (c *Config) UsesPostgres() bool {
	return c.AccountBackend == BackendPostgres || c.SecurityLogDB
}

func (d Database) problems() []string {
	var problems []string
	if strings.TrimSpace(d.Host) == "" {
		problems = append(problems, "DB_HOST required")
	}
	if !validPort(d.Port) {
		problems = append(problems, fmt.Sprintf("DB_PORT %d out of range", d.Port))
	}
	if strings.TrimSpace(d.Name) == "" {
		problems = append(problems, "DB_NAME required")
	}
	return problems
}

func validURL(raw string, schemes ...string) bool {
	u, err := url.Parse(raw)
	if err != nil || !slices.Contains(schemes, u.Scheme) {
		return false
	}
	return u.Host != "" || u.Scheme == "unix"
}

func validPort(p int) bool {
	return p >= 1 && p <= 65535
}
