// Package config reads edubot settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/llm"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/store"
)

// Commands that Validate knows about.
const (
	CommandServe = "serve"
	CommandChat  = "chat"
	CommandIndex = "index"
	CommandGraph = "graph"
	CommandSeed  = "seed"
	CommandLLM   = "llm"
)

// Vector index backends.
const (
	VectorLocal    = "local"
	VectorPinecone = "pinecone"
)

// Session backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Config is the fully resolved runtime configuration.
type Config struct {
	TelegramToken string
	TavilyAPIKey  string

	LLM   llm.Config
	Store store.Config

	Vector  VectorConfig
	Session SessionConfig

	Locale  string
	LogMode string
	Workers int

	// GraphFont is a TrueType font for progress graph labels; empty uses
	// the built-in ASCII face.
	GraphFont string
}

// VectorConfig selects and configures the document index.
type VectorConfig struct {
	Backend string

	// LocalPath is the SQLite file holding the pdf_docs table.
	LocalPath string

	PineconeAPIKey    string
	PineconeIndex     string
	PineconeNamespace string
}

// SessionConfig selects where dialogue sessions live.
type SessionConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// LoadEnvFile merges a .env file into the process environment. Variables
// already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the environment. Path defaults that need the filesystem
// (the XDG data directory) are resolved here.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	e := env{get: getenv}

	cfg := Config{
		TelegramToken: e.str("TELEGRAM_BOT_TOKEN", ""),
		TavilyAPIKey:  e.str("TAVILY_API_KEY", ""),
		Locale:        strings.ToLower(e.str("EDUBOT_LOCALE", "en")),
		LogMode:       e.str("EDUBOT_LOG_MODE", "dev"),
		Workers:       e.int("EDUBOT_WORKERS", 16),
		GraphFont:     e.str("EDUBOT_GRAPH_FONT", ""),
	}

	cfg.LLM = llm.DefaultConfig()
	cfg.LLM.Provider = e.str("EDUBOT_LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.Model = e.str("EDUBOT_LLM_MODEL", "")
	cfg.LLM.Temperature = e.float("EDUBOT_LLM_TEMPERATURE", cfg.LLM.Temperature)
	cfg.LLM.OpenAI.APIKey = e.str("OPENAI_API_KEY", "")
	cfg.LLM.OpenAI.BaseURL = e.str("OPENAI_BASE_URL", "")
	cfg.LLM.Anthropic.APIKey = e.str("ANTHROPIC_API_KEY", "")
	cfg.LLM.Gemini.APIKey = e.str("GEMINI_API_KEY", "")

	host := e.str("DB_HOST", "")
	defaultDriver := store.DriverSQLite
	if host != "" {
		defaultDriver = store.DriverPostgres
	}
	cfg.Store = store.Config{
		Driver:   e.str("DB_DRIVER", defaultDriver),
		Host:     host,
		Port:     e.int("DB_PORT", 5432),
		User:     e.str("DB_USER", ""),
		Password: e.str("DB_PASSWORD", ""),
		Name:     e.str("DB_NAME", ""),
		SSLMode:  e.str("DB_SSLMODE", "disable"),
		Path:     e.str("EDUBOT_DB", ""),
	}

	cfg.Vector = VectorConfig{
		Backend:           e.str("VECTOR_BACKEND", VectorLocal),
		LocalPath:         e.str("LANCE_DB_PATH", ""),
		PineconeAPIKey:    e.str("PINECONE_API_KEY", ""),
		PineconeIndex:     e.str("PINECONE_INDEX", "pdf-docs"),
		PineconeNamespace: e.str("PINECONE_NAMESPACE", "pdf_docs"),
	}

	cfg.Session = SessionConfig{
		Backend:       e.str("SESSION_BACKEND", SessionMemory),
		RedisAddr:     e.str("REDIS_ADDR", "localhost:6379"),
		RedisPassword: e.str("REDIS_PASSWORD", ""),
		RedisDB:       e.int("REDIS_DB", 0),
		TTL:           e.duration("SESSION_TTL", 24*time.Hour),
	}

	if e.err != nil {
		return Config{}, e.err
	}
	return cfg, nil
}

// ResolvePaths fills the SQLite and local vector paths from the XDG data
// directory when they were not configured.
func (c *Config) ResolvePaths() error {
	if c.Store.Driver == store.DriverSQLite {
		if c.Store.Path == "" {
			p, err := store.DefaultDBPath()
			if err != nil {
				return err
			}
			c.Store.Path = p
		} else if err := store.EnsureDir(c.Store.Path); err != nil {
			return err
		}
	}
	if c.Vector.Backend == VectorLocal {
		if c.Vector.LocalPath == "" {
			p, err := store.DataPath("vectors.db")
			if err != nil {
				return err
			}
			c.Vector.LocalPath = p
		} else if err := store.EnsureDir(c.Vector.LocalPath); err != nil {
			return err
		}
	}
	return nil
}

// Validate reports the first setting missing for command.
func (c Config) Validate(command string) error {
	if command == CommandServe && c.TelegramToken == "" {
		return missing("TELEGRAM_BOT_TOKEN")
	}

	switch c.Store.Driver {
	case store.DriverSQLite:
	case store.DriverPostgres:
		for _, kv := range [][2]string{
			{"DB_HOST", c.Store.Host},
			{"DB_USER", c.Store.User},
			{"DB_NAME", c.Store.Name},
		} {
			if kv[1] == "" {
				return missing(kv[0])
			}
		}
	default:
		return fmt.Errorf("DB_DRIVER: unknown driver %q", c.Store.Driver)
	}

	switch command {
	case CommandGraph, CommandSeed, CommandLLM:
		return nil
	}

	switch c.Vector.Backend {
	case VectorLocal:
	case VectorPinecone:
		if c.Vector.PineconeAPIKey == "" {
			return missing("PINECONE_API_KEY")
		}
	default:
		return fmt.Errorf("VECTOR_BACKEND: unknown backend %q", c.Vector.Backend)
	}

	// Embeddings always go through OpenAI.
	if c.LLM.Provider != "mock" && c.LLM.OpenAI.APIKey == "" {
		return missing("OPENAI_API_KEY")
	}

	if command == CommandIndex {
		return nil
	}

	if err := c.LLM.Validate(); err != nil {
		return err
	}

	switch c.Session.Backend {
	case SessionMemory:
	case SessionRedis:
		if c.Session.RedisAddr == "" {
			return missing("REDIS_ADDR")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND: unknown backend %q", c.Session.Backend)
	}

	switch c.Locale {
	case "en", "ru":
	default:
		return fmt.Errorf("EDUBOT_LOCALE: unsupported locale %q", c.Locale)
	}

	if c.Workers < 1 {
		return fmt.Errorf("EDUBOT_WORKERS must be positive, got %d", c.Workers)
	}
	return nil
}

func missing(key string) error {
	return fmt.Errorf("%s is required", key)
}

// env accumulates the first parse error.
type env struct {
	get func(string) string
	err error
}

func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(e.get(key)); v != "" {
		return v
	}
	return def
}

func (e *env) int(key string, def int) int {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return n
}

func (e *env) float(key string, def float64) float64 {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return f
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return d
}

func (e *env) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("%s: %w", key, err)
	}
}
