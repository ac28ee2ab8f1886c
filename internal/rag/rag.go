// Package rag answers questions from the indexed document corpus.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/docindex"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/llm"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
)

// TopK is the number of chunks used as context.
const TopK = 3

// ErrNoContext means retrieval found nothing; no completion was requested.
var ErrNoContext = errors.New("rag: no matching documents")

var answerTemplate = llm.NewTemplate("rag-answer",
	`Answer the user's question based on the provided context. If the context does not contain the answer, say so. Reply in the language of the question.`,
	"Context:\n{{.context}}\n\nQuestion: {{.query}}",
	"context", "query")

// Answerer composes grounded replies.
type Answerer struct {
	index docindex.Searcher
	llm   llm.Completer
	log   *logger.Logger
}

func NewAnswerer(index docindex.Searcher, c llm.Completer, log *logger.Logger) *Answerer {
	if log == nil {
		log = logger.Nop()
	}
	return &Answerer{index: index, llm: c, log: log}
}

// Answer retrieves the top chunks for question and asks the model to answer
// from them. It returns ErrNoContext when retrieval is empty.
func (a *Answerer) Answer(ctx context.Context, question string) (string, error) {
	hits, err := a.index.Search(ctx, question, TopK)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}

	texts := make([]string, 0, len(hits))
	for _, h := range hits {
		if strings.TrimSpace(h.Text) != "" {
			texts = append(texts, h.Text)
		}
	}
	if len(texts) == 0 {
		a.log.Info("no documents matched question")
		return "", ErrNoContext
	}
	a.log.Debug("retrieved context", "chunks", len(texts), "top_score", hits[0].Score)

	out, err := a.llm.Complete(ctx, answerTemplate, map[string]any{
		"context": strings.Join(texts, "\n\n"),
		"query":   question,
	})
	if err != nil {
		return "", fmt.Errorf("answer from context: %w", err)
	}
	return out, nil
}
