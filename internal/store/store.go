package store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	// Postgres via pgx's database/sql adapter.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Drivers understood by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Config selects the relational backend.
type Config struct {
	Driver string

	// Path is the SQLite database file (or an in-memory DSN).
	Path string

	// Postgres connection settings.
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the postgres connection URL.
func (c Config) DSN() string {
	port := c.Port
	if port == 0 {
		port = 5432
	}
	ssl := c.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(ssl),
	}
	return u.String()
}

// Store holds the database handle and provides access to repositories.
type Store struct {
	db      *sqlx.DB
	dialect dialect
}

// Open connects to the configured database, applies SQLite pragmas where
// relevant, and creates missing tables.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	var (
		db  *sqlx.DB
		err error
		d   dialect
	)

	switch cfg.Driver {
	case "", DriverSQLite:
		d = sqliteDialect
		db, err = sqlx.Open("sqlite", cfg.Path)
		if err == nil {
			// One writer at a time; also keeps in-memory databases alive.
			db.SetMaxOpenConns(1)
			err = applyPragmas(ctx, db)
		}
	case DriverPostgres:
		d = postgresDialect
		db, err = sqlx.Open("pgx", cfg.DSN())
		if err == nil {
			db.SetMaxOpenConns(10)
		}
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, classify(fmt.Errorf("open database: %w", err))
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, classify(fmt.Errorf("ping database: %w", err))
	}

	s := &Store{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return s, nil
}

// OpenSQLite is shorthand for a SQLite store at path.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	return Open(ctx, Config{Driver: DriverSQLite, Path: path})
}

// DB returns the underlying handle for raw queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CatalogRepo returns the course/topic/progress repository.
func (s *Store) CatalogRepo() CatalogRepo {
	return &catalogRepo{db: s.db}
}

// EventRepo returns the LLM request event log.
func (s *Store) EventRepo() *LLMEventRepo {
	return &LLMEventRepo{db: s.db}
}

// applyPragmas configures SQLite for a single-process bot.
func applyPragmas(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the SQLite file path in priority order:
// 1. EDUBOT_DB environment variable
// 2. $XDG_DATA_HOME/edubot/edubot.db
// 3. ~/.local/share/edubot/edubot.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("EDUBOT_DB"); p != "" {
		return p, EnsureDir(p)
	}
	return DataPath("edubot.db")
}

// DataPath returns name inside the edubot data directory, creating it.
func DataPath(name string) (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "edubot", name)
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
// In-memory DSNs are left alone.
func EnsureDir(path string) error {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, ":memory:") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
