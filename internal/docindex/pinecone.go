package docindex

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
)

const pineconeBatchSize = 100

// pineconeConn is the slice of *pinecone.IndexConnection we use.
type pineconeConn interface {
	QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error)
	UpsertVectors(ctx context.Context, in []*pinecone.Vector) (uint32, error)
}

// PineconeConfig locates the remote index.
type PineconeConfig struct {
	APIKey    string
	Index     string
	Namespace string
}

// PineconeIndex stores chunks in a Pinecone namespace. Chunk text and
// source travel as metadata.
type PineconeIndex struct {
	conn pineconeConn
	log  *logger.Logger
}

// OpenPinecone resolves the index host and opens a namespace connection.
func OpenPinecone(ctx context.Context, cfg PineconeConfig, log *logger.Logger) (*PineconeIndex, error) {
	if log == nil {
		log = logger.Nop()
	}
	pc, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create pinecone client: %w", err)
	}

	desc, err := pc.DescribeIndex(ctx, cfg.Index)
	if err != nil {
		return nil, fmt.Errorf("describe index %s: %w", cfg.Index, err)
	}

	conn, err := pc.Index(pinecone.NewIndexConnParams{
		Host:      desc.Host,
		Namespace: cfg.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to index %s: %w", cfg.Index, err)
	}

	log.Info("pinecone index connected", "index", cfg.Index, "namespace", cfg.Namespace)
	return &PineconeIndex{conn: conn, log: log}, nil
}

func (p *PineconeIndex) Query(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	res, err := p.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(k),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone query: %w", err)
	}

	hits := make([]Hit, 0, len(res.Matches))
	for _, m := range res.Matches {
		if m == nil || m.Vector == nil || m.Vector.Metadata == nil {
			continue
		}
		meta := m.Vector.Metadata.AsMap()
		text, _ := meta["text"].(string)
		if text == "" {
			continue
		}
		source, _ := meta["source"].(string)
		hits = append(hits, Hit{
			ID:     m.Vector.Id,
			Source: source,
			Text:   text,
			Score:  float64(m.Score),
		})
	}
	return hits, nil
}

func (p *PineconeIndex) Upsert(ctx context.Context, chunks []Chunk) error {
	vectors := make([]*pinecone.Vector, 0, len(chunks))
	for _, c := range chunks {
		meta, err := structpb.NewStruct(map[string]any{
			"text":   c.Text,
			"source": c.Source,
		})
		if err != nil {
			return fmt.Errorf("metadata for chunk %s: %w", c.ID, err)
		}
		values := c.Vector
		vectors = append(vectors, &pinecone.Vector{
			Id:       c.ID,
			Values:   &values,
			Metadata: meta,
		})
	}

	for i := 0; i < len(vectors); i += pineconeBatchSize {
		end := min(i+pineconeBatchSize, len(vectors))
		n, err := p.conn.UpsertVectors(ctx, vectors[i:end])
		if err != nil {
			return fmt.Errorf("pinecone upsert batch %d: %w", i/pineconeBatchSize+1, err)
		}
		p.log.Debug("pinecone upsert", "batch", i/pineconeBatchSize+1, "count", n)
	}
	return nil
}
