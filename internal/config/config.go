// Package config loads the server configuration.
//
// PRECEDENCE (later wins):
//
//	1. Default()
//	2. YAML file named by --config or CONTACTBOOK_CONFIG
//	3. environment: PORT, CONTACTBOOK_BACKEND, DB_PATH, DATABASE_URL,
//	   SESSION_SECRET, LOG_LEVEL
//	4. command-line flags that were set explicitly
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/sakif/contact-book/internal/auth"
	"github.com/sakif/contact-book/internal/view"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	Backend       string        `yaml:"backend"`
	SQLitePath    string        `yaml:"sqlitePath"`
	PostgresDSN   string        `yaml:"postgresDSN"`
	SessionSecret string        `yaml:"sessionSecret"`
	SessionTTL    time.Duration `yaml:"sessionTTL"`
	SecureCookies bool          `yaml:"secureCookies"`
	PageSize      int           `yaml:"pageSize"`
	LogLevel      string        `yaml:"logLevel"`
}

func Default() Config {
	return Config{
		Addr:       ":8080",
		Backend:    BackendSQLite,
		SQLitePath: "data/contacts.db",
		SessionTTL: auth.DefaultTTL,
		PageSize:   view.DefaultPageSize,
		LogLevel:   "info",
	}
}

// ErrHelp is returned by Load when --help was given; the usage has already
// been printed.
var ErrHelp = pflag.ErrHelp

// Load builds the configuration from args (without the program name) and
// the environment read through getenv.
func Load(args []string, getenv func(string) string) (Config, error) {
	cfg := Default()

	fs := pflag.NewFlagSet("contact-book", pflag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	addr := fs.String("addr", cfg.Addr, "HTTP listen address")
	backend := fs.String("backend", cfg.Backend, "storage backend: memory, sqlite or postgres")
	sqlitePath := fs.String("sqlite-path", cfg.SQLitePath, "SQLite database file")
	postgresDSN := fs.String("postgres-dsn", "", "PostgreSQL connection string")
	sessionTTL := fs.Duration("session-ttl", cfg.SessionTTL, "session cookie lifetime")
	secureCookies := fs.Bool("secure-cookies", false, "mark the session cookie Secure (HTTPS only)")
	pageSize := fs.Int("page-size", cfg.PageSize, "contacts per page")
	logLevel := fs.String("log-level", cfg.LogLevel, "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	path := *configPath
	if path == "" {
		path = getenv("CONTACTBOOK_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv(getenv)

	// only flags given on the command line override file and environment
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "backend":
			cfg.Backend = *backend
		case "sqlite-path":
			cfg.SQLitePath = *sqlitePath
		case "postgres-dsn":
			cfg.PostgresDSN = *postgresDSN
		case "session-ttl":
			cfg.SessionTTL = *sessionTTL
		case "secure-cookies":
			cfg.SecureCookies = *secureCookies
		case "page-size":
			cfg.PageSize = *pageSize
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile merges the YAML file at path into c. Keys not in Config are
// rejected.
func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	if v := getenv("CONTACTBOOK_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := getenv("DB_PATH"); v != "" {
		c.SQLitePath = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.PostgresDSN = v
	}
	if v := getenv("SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate reports every problem with c at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite backend needs a database path"))
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("postgres backend needs DATABASE_URL or --postgres-dsn"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}

	if c.SessionSecret != "" && len(c.SessionSecret) < auth.MinSecretLength {
		errs = append(errs, fmt.Errorf("session secret must be at least %d characters", auth.MinSecretLength))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session TTL must be positive"))
	}
	if c.PageSize < 1 {
		errs = append(errs, errors.New("page size must be at least 1"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}
