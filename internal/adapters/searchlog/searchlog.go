// Package searchlog records trace.moe attempts per user in a SQL store.
package searchlog

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jpp0ca/tracemoe-telegram-bot/internal/ports"
)

// Supported drivers.
const (
	DriverNone     = ""
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// successCode is the status recorded for an answered search.
const successCode = 200

// Config selects and locates the store.
type Config struct {
	Driver   string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	Path     string
}

// Open returns the store selected by cfg.Driver. DriverNone yields a no-op log.
func Open(ctx context.Context, cfg Config) (ports.SearchLog, error) {
	switch cfg.Driver {
	case DriverNone:
		return Nop{}, nil
	case DriverPostgres:
		return NewPostgres(ctx, PostgresDSN(cfg))
	case DriverSQLite:
		return NewSQLite(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("searchlog: unsupported driver %q", cfg.Driver)
	}
}

// PostgresDSN builds a connection URL from the discrete settings.
func PostgresDSN(cfg Config) string {
	u := postgresURL(cfg)
	return u.String()
}

func postgresURL(cfg Config) *url.URL {
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	return &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, port),
		Path:   "/" + cfg.Name,
	}
}

// Describe renders the store location with the password masked, for startup logs.
func Describe(cfg Config) string {
	switch cfg.Driver {
	case DriverPostgres:
		return postgresURL(cfg).Redacted()
	case DriverSQLite:
		return "sqlite://" + cfg.Path
	default:
		return "disabled"
	}
}

// Nop discards every record.
type Nop struct{}

func (Nop) Record(context.Context, int64, int) error { return nil }

func (Nop) CountSuccess(context.Context, int64, time.Time) (int, error) { return 0, nil }

func (Nop) Enabled() bool { return false }

func (Nop) Close() error { return nil }
