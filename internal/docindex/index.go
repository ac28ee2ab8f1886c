// Package docindex holds the embedded document corpus used for
// retrieval-augmented answers.
package docindex

import (
	"context"
	"fmt"
	"strings"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/embedding"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
)

// TableName is the collection every backend reads and writes.
const TableName = "pdf_docs"

// DefaultK is the number of chunks returned when the caller passes k <= 0.
const DefaultK = 3

// Chunk is one embedded fragment of a source document.
type Chunk struct {
	ID     string
	Source string
	Text   string
	Vector []float32
}

// Hit is a search result. Higher Score means more similar.
type Hit struct {
	ID     string
	Source string
	Text   string
	Score  float64
}

// VectorStore is a nearest-neighbour backend over stored chunks.
type VectorStore interface {
	Query(ctx context.Context, vector []float32, k int) ([]Hit, error)
	Upsert(ctx context.Context, chunks []Chunk) error
}

// Searcher finds the chunks most similar to a text query.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]Hit, error)
}

// Index embeds queries and searches a VectorStore. The handle is safe for
// concurrent use and is shared by all users.
type Index struct {
	store    VectorStore
	embedder embedding.Embedder
	log      *logger.Logger
}

func New(store VectorStore, embedder embedding.Embedder, log *logger.Logger) *Index {
	if log == nil {
		log = logger.Nop()
	}
	return &Index{store: store, embedder: embedder, log: log}
}

// Search returns up to k hits ordered by descending similarity. No hits is
// an empty slice, not an error.
func (i *Index) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	if k <= 0 {
		k = DefaultK
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	vec, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := i.store.Query(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", TableName, err)
	}
	i.log.Debug("document search", "hits", len(hits), "k", k)
	return hits, nil
}
