// Package app assembles edubot's components from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/agent"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/assessment"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/config"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/dialogue"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/docindex"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/embedding"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/llm"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/locale"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/progress"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/rag"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/session"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/store"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/tutor"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/video"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/websearch"
)

// GraphFontSize is the label size when a TrueType font is configured.
const GraphFontSize = 14

// App owns every long-lived resource. Close releases them in reverse
// order of acquisition.
type App struct {
	Config       config.Config
	Log          *logger.Logger
	Store        *store.Store
	Provider     llm.Provider
	Orchestrator *dialogue.Orchestrator

	closers []func() error
}

// OpenStore opens the catalog store alone, for commands that need no
// model.
func OpenStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// Build wires the full dialogue stack.
func Build(ctx context.Context, cfg config.Config, log *logger.Logger) (a *App, err error) {
	a = &App{Config: cfg, Log: log}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = st
	a.closers = append(a.closers, st.Close)

	provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log.With("component", "llm"))
	if err != nil {
		return nil, err
	}
	a.Provider = provider
	gateway := llm.NewGateway(provider, cfg.LLM)

	emb, err := NewEmbedder(cfg, st.EventRepo(), log)
	if err != nil {
		return nil, err
	}
	vectors, closeVectors, err := OpenVectorStore(ctx, cfg, emb.Dimensions(), log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeVectors)
	index := docindex.New(vectors, emb, log.With("component", "docindex"))

	videos, err := newVideoFinder(cfg, provider, log)
	if err != nil {
		return nil, err
	}

	backend, closeBackend, err := OpenSessionBackend(ctx, cfg.Session)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeBackend)

	catalog := st.CatalogRepo()
	testLog := log.With("component", "assessment")
	a.Orchestrator = dialogue.New(dialogue.Deps{
		Catalog:  catalog,
		Sessions: session.NewManager(backend, log.With("component", "session")),
		Tutor:    tutor.NewService(gateway),
		Videos:   videos,
		QA:       rag.NewAnswerer(index, gateway, log.With("component", "rag")),
		Tests: assessment.NewEngine(
			assessment.NewSynthesizer(gateway, assessment.DefaultConfig(), testLog),
			catalog, testLog),
		Graphs:   NewGraphRenderer(cfg),
		Messages: locale.Lookup(cfg.Locale),
		Log:      log.With("component", "dialogue"),
	})

	log.Info("edubot assembled",
		"provider", cfg.LLM.Provider,
		"model", provider.ModelID(),
		"store", cfg.Store.Driver,
		"vectors", cfg.Vector.Backend,
		"sessions", cfg.Session.Backend,
		"locale", cfg.Locale)
	return a, nil
}

// Close releases resources and joins their errors.
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

// NewEmbedder uses OpenAI embeddings, or a local hashing embedder when the
// mock provider is selected.
func NewEmbedder(cfg config.Config, events store.EventRepo, log *logger.Logger) (embedding.Embedder, error) {
	if cfg.LLM.Provider == "mock" {
		return embedding.NewHashEmbedder(embedding.DefaultDimensions), nil
	}
	ecfg := embedding.DefaultConfig()
	ecfg.OpenAI = cfg.LLM.OpenAI
	ecfg.Retry = cfg.LLM.Retry
	return embedding.NewOpenAIEmbedder(ecfg, events, log.With("component", "embedding"))
}

// OpenVectorStore opens the configured document index backend.
func OpenVectorStore(ctx context.Context, cfg config.Config, dims int, log *logger.Logger) (docindex.VectorStore, func() error, error) {
	vlog := log.With("component", "vectors")
	switch cfg.Vector.Backend {
	case config.VectorPinecone:
		p, err := docindex.OpenPinecone(ctx, docindex.PineconeConfig{
			APIKey:    cfg.Vector.PineconeAPIKey,
			Index:     cfg.Vector.PineconeIndex,
			Namespace: cfg.Vector.PineconeNamespace,
		}, vlog)
		if err != nil {
			return nil, nil, err
		}
		return p, func() error { return nil }, nil
	default:
		l, err := docindex.OpenLocal(ctx, cfg.Vector.LocalPath, dims, vlog)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Close, nil
	}
}

// OpenSessionBackend selects in-process or Redis session storage.
func OpenSessionBackend(ctx context.Context, cfg config.SessionConfig) (session.Backend, func() error, error) {
	if cfg.Backend != config.SessionRedis {
		return session.NewMemoryBackend(), func() error { return nil }, nil
	}
	b, err := session.NewRedisBackend(ctx, session.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.TTL,
	})
	if err != nil {
		return nil, nil, err
	}
	return b, b.Close, nil
}

// NewGraphRenderer draws with the configured font, or the built-in face.
func NewGraphRenderer(cfg config.Config) progress.PNGRenderer {
	r := progress.PNGRenderer{FontPath: cfg.GraphFont}
	if r.FontPath != "" {
		r.FontSize = GraphFontSize
	}
	return r
}

func newVideoFinder(cfg config.Config, p llm.Provider, log *logger.Logger) (*video.Finder, error) {
	search, err := websearch.New(cfg.TavilyAPIKey)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	runner, err := agent.NewRunner(p, agent.Options{
		MaxToolCalls: agent.DefaultMaxToolCalls,
		MaxTokens:    cfg.LLM.MaxTokens,
		Temperature:  cfg.LLM.Temperature,
		Log:          log.With("component", "agent"),
	}, agent.NewSearchTool(search))
	if err != nil {
		return nil, err
	}
	return video.NewFinder(runner, log.With("component", "video")), nil
}
