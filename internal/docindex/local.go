package docindex

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// LocalIndex keeps pdf_docs in a SQLite file and scores every row with
// exact cosine similarity.
type LocalIndex struct {
	db   *sqlx.DB
	dims int
	log  *logger.Logger
}

type chunkRow struct {
	ID     string `db:"id"`
	Source string `db:"source"`
	Text   string `db:"text"`
	Vector []byte `db:"vector"`
}

// OpenLocal opens (or creates) the vector database at path. dims is the
// expected vector dimension; rows of another size are ignored.
func OpenLocal(ctx context.Context, path string, dims int, log *logger.Logger) (*LocalIndex, error) {
	if log == nil {
		log = logger.Nop()
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		`CREATE TABLE IF NOT EXISTS ` + TableName + ` (
			id     TEXT PRIMARY KEY,
			source TEXT NOT NULL DEFAULT '',
			text   TEXT NOT NULL,
			vector BLOB NOT NULL
		)`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init vector db: %w", err)
		}
	}
	return &LocalIndex{db: db, dims: dims, log: log}, nil
}

func (l *LocalIndex) Close() error {
	return l.db.Close()
}

// Count returns the number of stored chunks.
func (l *LocalIndex) Count(ctx context.Context) (int, error) {
	var n int
	err := l.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+TableName)
	return n, err
}

func (l *LocalIndex) Upsert(ctx context.Context, chunks []Chunk) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range chunks {
		if len(c.Vector) != l.dims {
			return fmt.Errorf("chunk %s: vector has %d dimensions, want %d", c.ID, len(c.Vector), l.dims)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+TableName+` (id, source, text, vector) VALUES (?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET source = excluded.source, text = excluded.text, vector = excluded.vector`,
			c.ID, c.Source, c.Text, encodeVector(c.Vector))
		if err != nil {
			return fmt.Errorf("upsert chunk %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

func (l *LocalIndex) Query(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	var rows []chunkRow
	if err := l.db.SelectContext(ctx, &rows, `SELECT id, source, text, vector FROM `+TableName); err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		v := decodeVector(r.Vector)
		if len(v) != len(vector) {
			skipped++
			continue
		}
		hits = append(hits, Hit{ID: r.ID, Source: r.Source, Text: r.Text, Score: cosine(vector, v)})
	}
	if skipped > 0 {
		l.log.Warn("skipped chunks with wrong dimension", "skipped", skipped, "want", len(vector))
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}

// cosine returns 0 when either vector is all zeros.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
