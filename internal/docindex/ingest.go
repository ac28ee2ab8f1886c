package docindex

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
	"golang.org/x/sync/errgroup"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/embedding"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
)

// IngestOptions tunes chunking and embedding.
type IngestOptions struct {
	ChunkSize    int
	ChunkOverlap int

	// BatchSize is the number of chunks per embeddings request.
	BatchSize int

	// Workers bounds concurrent embeddings requests.
	Workers int

	Log *logger.Logger
}

// DefaultIngestOptions splits into 1000-character chunks with 100 overlap.
func DefaultIngestOptions() IngestOptions {
	return IngestOptions{
		ChunkSize:    1000,
		ChunkOverlap: 100,
		BatchSize:    32,
		Workers:      4,
	}
}

// IngestStats summarises one Ingest run.
type IngestStats struct {
	Files  int
	Chunks int
}

// Ingest loads every supported file under paths (.pdf, .txt, .md),
// splits, embeds and upserts the chunks. Chunk IDs derive from the source
// path and position, so re-ingesting a file replaces its chunks.
func Ingest(ctx context.Context, w VectorStore, emb embedding.Embedder, paths []string, opts IngestOptions) (IngestStats, error) {
	def := DefaultIngestOptions()
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = min(def.ChunkOverlap, opts.ChunkSize/2)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	files, err := collectFiles(paths)
	if err != nil {
		return IngestStats{}, err
	}

	var stats IngestStats
	for _, path := range files {
		chunks, err := loadChunks(ctx, path, opts)
		if err != nil {
			return stats, fmt.Errorf("load %s: %w", path, err)
		}
		if len(chunks) == 0 {
			log.Warn("no text extracted", "file", path)
			continue
		}

		if err := embedChunks(ctx, emb, chunks, opts); err != nil {
			return stats, fmt.Errorf("embed %s: %w", path, err)
		}
		if err := w.Upsert(ctx, chunks); err != nil {
			return stats, fmt.Errorf("store %s: %w", path, err)
		}

		stats.Files++
		stats.Chunks += len(chunks)
		log.Info("indexed file", "file", path, "chunks", len(chunks))
	}
	return stats, nil
}

func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !supported(p) {
				return nil, fmt.Errorf("%s: unsupported file type", p)
			}
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && supported(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

func loadChunks(ctx context.Context, path string, opts IngestOptions) ([]Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	splitOpts := []textsplitter.Option{
		textsplitter.WithChunkSize(opts.ChunkSize),
		textsplitter.WithChunkOverlap(opts.ChunkOverlap),
	}

	var docs []schema.Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		docs, err = documentloaders.NewPDF(f, info.Size()).
			LoadAndSplit(ctx, textsplitter.NewRecursiveCharacter(splitOpts...))
		if err != nil {
			return nil, err
		}
	case ".md":
		docs, err = documentloaders.NewText(f).
			LoadAndSplit(ctx, textsplitter.NewMarkdownTextSplitter(splitOpts...))
	default:
		docs, err = documentloaders.NewText(f).
			LoadAndSplit(ctx, textsplitter.NewRecursiveCharacter(splitOpts...))
	}
	if err != nil {
		return nil, err
	}

	source := filepath.Base(path)
	chunks := make([]Chunk, 0, len(docs))
	for _, d := range docs {
		text := strings.TrimSpace(d.PageContent)
		if text == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			ID:     chunkID(path, len(chunks)),
			Source: source,
			Text:   text,
		})
	}
	return chunks, nil
}

func chunkID(path string, i int) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("file://%s#%d", abs, i))).String()
}

// embedChunks fills Vector on every chunk, running batches concurrently.
func embedChunks(ctx context.Context, emb embedding.Embedder, chunks []Chunk, opts IngestOptions) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for start := 0; start < len(chunks); start += opts.BatchSize {
		batch := chunks[start:min(start+opts.BatchSize, len(chunks))]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Text
			}
			vecs, err := emb.EmbedBatch(ctx, texts)
			if err != nil {
				return err
			}
			for i := range batch {
				batch[i].Vector = vecs[i]
			}
			return nil
		})
	}
	return g.Wait()
}
