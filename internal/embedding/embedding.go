// Package embedding turns text into fixed-dimension vectors for retrieval.
package embedding

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/llm"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/store"
)

const (
	// DefaultModel is the embedding model used for indexing and queries.
	DefaultModel = string(openai.LargeEmbedding3)

	// DefaultDimensions is D, the vector size of every stored chunk.
	DefaultDimensions = 1536

	// maxBatch is the most inputs sent in one embeddings request.
	maxBatch = 96
)

// Embedder produces vectors of a fixed dimension.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// Config configures the OpenAI embedder.
type Config struct {
	OpenAI     llm.OpenAIConfig
	Model      string
	Dimensions int
	Retry      llm.RetryConfig
}

// DefaultConfig returns text-embedding-3-large at 1536 dimensions with the
// same retry policy as chat completions.
func DefaultConfig() Config {
	return Config{
		Model:      DefaultModel,
		Dimensions: DefaultDimensions,
		Retry:      llm.DefaultRetryConfig(),
	}
}

// OpenAIEmbedder calls the OpenAI embeddings endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dims   int
	retry  llm.RetryConfig
	events store.EventRepo
	log    *logger.Logger
}

// NewOpenAIEmbedder builds an embedder. events may be nil.
func NewOpenAIEmbedder(cfg Config, events store.EventRepo, log *logger.Logger) (*OpenAIEmbedder, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required for embeddings")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if log == nil {
		log = logger.Nop()
	}
	return &OpenAIEmbedder{
		client: llm.NewOpenAIClient(cfg.OpenAI),
		model:  cfg.Model,
		dims:   cfg.Dimensions,
		retry:  cfg.Retry,
		events: events,
		log:    log,
	}, nil
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.dims
}

// Embed returns the vector for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in order, splitting large inputs into several
// requests.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))
		vecs, err := e.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *OpenAIEmbedder) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	var resp openai.EmbeddingResponse

	err := llm.Retry(ctx, e.retry, func(ctx context.Context) error {
		var err error
		resp, err = e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input:      texts,
			Model:      openai.EmbeddingModel(e.model),
			Dimensions: e.dims,
		})
		if err != nil {
			return llm.MapOpenAIError(err)
		}
		return nil
	})
	e.record(ctx, len(texts), resp.Usage.PromptTokens, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}

	if len(resp.Data) != len(texts) {
		return nil, &llm.ErrInvalidResponse{
			Err: fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)),
		}
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, &llm.ErrInvalidResponse{Err: fmt.Errorf("embedding index %d out of range", d.Index)}
		}
		if len(d.Embedding) != e.dims {
			return nil, &llm.ErrInvalidResponse{
				Err: fmt.Errorf("embedding has %d dimensions, want %d", len(d.Embedding), e.dims),
			}
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (e *OpenAIEmbedder) record(ctx context.Context, n, tokens int, latency time.Duration, err error) {
	data := store.LLMRequestEventData{
		Provider:    "openai",
		Model:       e.model,
		Purpose:     "embedding",
		UserID:      llm.UserFrom(ctx),
		InputTokens: tokens,
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: fmt.Sprintf("[embed] %d inputs", n),
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		e.log.Warn("embedding request failed", "inputs", n, "error", err)
	} else {
		e.log.Debug("embedding request", "inputs", n, "tokens", tokens, "latency_ms", data.LatencyMs)
	}
	if e.events == nil {
		return
	}
	if logErr := e.events.AppendLLMRequest(ctx, data); logErr != nil {
		e.log.Warn("failed to record embedding event", "error", logErr)
	}
}
