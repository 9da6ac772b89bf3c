package postgres

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config holds PostgreSQL connection settings
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// Pool settings
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

// DefaultConfig returns sensible defaults for a local TrinityCore auth database
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            5432,
		Database:        "auth",
		User:            "postgres",
		SSLMode:         "disable",
		MaxConns:        10,
		MinConns:        1,
		MaxConnIdleTime: 5 * time.Minute,
	}
}

// URL builds a postgres:// connection URL
// Every component is escaped by net/url, so no configured value can inject DSN options
func (c Config) URL() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Database,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	if c.SSLMode != "" {
		q := url.Values{}
		q.Set("sslmode", c.SSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Redacted returns a description of the target safe for logs
func (c Config) Redacted() string {
	return fmt.Sprintf("host=%s port=%d database=%s user=%s", c.Host, c.Port, c.Database, c.User)
}
