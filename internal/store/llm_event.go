package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// LLMEventRepo persists and queries LLM request events.
type LLMEventRepo struct {
	db *sqlx.DB
}

type llmEventRow struct {
	ID           int64  `db:"id"`
	CreatedAtMs  int64  `db:"created_at_ms"`
	Provider     string `db:"provider"`
	Model        string `db:"model"`
	Purpose      string `db:"purpose"`
	UserID       int64  `db:"user_id"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
	LatencyMs    int64  `db:"latency_ms"`
	Success      int    `db:"success"`
	ErrorMessage string `db:"error_message"`
	RequestBody  string `db:"request_body"`
	ResponseBody string `db:"response_body"`
}

func (r llmEventRow) record() LLMEventRecord {
	return LLMEventRecord{
		ID:        r.ID,
		Timestamp: time.UnixMilli(r.CreatedAtMs),
		LLMRequestEventData: LLMRequestEventData{
			Provider:     r.Provider,
			Model:        r.Model,
			Purpose:      r.Purpose,
			UserID:       r.UserID,
			InputTokens:  r.InputTokens,
			OutputTokens: r.OutputTokens,
			LatencyMs:    r.LatencyMs,
			Success:      r.Success != 0,
			ErrorMessage: r.ErrorMessage,
			RequestBody:  r.RequestBody,
			ResponseBody: r.ResponseBody,
		},
	}
}

func (r *LLMEventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	success := 0
	if data.Success {
		success = 1
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO llm_request_events (
			created_at_ms, provider, model, purpose, user_id, input_tokens, output_tokens,
			latency_ms, success, error_message, request_body, response_body
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		time.Now().UnixMilli(), data.Provider, data.Model, data.Purpose, data.UserID,
		data.InputTokens, data.OutputTokens, data.LatencyMs, success,
		data.ErrorMessage, data.RequestBody, data.ResponseBody,
	)
	if err != nil {
		return classify(fmt.Errorf("save LLM request event: %w", err))
	}
	return nil
}

// QueryLLMEvents returns events newest first.
func (r *LLMEventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error) {
	var (
		where []string
		args  []any
	)
	if opts.After > 0 {
		where = append(where, "id > ?")
		args = append(args, opts.After)
	}
	if opts.Before > 0 {
		where = append(where, "id < ?")
		args = append(args, opts.Before)
	}
	if !opts.From.IsZero() {
		where = append(where, "created_at_ms >= ?")
		args = append(args, opts.From.UnixMilli())
	}
	if !opts.To.IsZero() {
		where = append(where, "created_at_ms <= ?")
		args = append(args, opts.To.UnixMilli())
	}
	if opts.Purpose != "" {
		where = append(where, "purpose = ?")
		args = append(args, opts.Purpose)
	}
	if opts.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, opts.UserID)
	}
	if opts.FailedOnly {
		where = append(where, "success = 0")
	}

	q := `SELECT * FROM llm_request_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id DESC"
	if opts.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	var rows []llmEventRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, classify(fmt.Errorf("query LLM events: %w", err))
	}

	out := make([]LLMEventRecord, len(rows))
	for i, row := range rows {
		out[i] = row.record()
	}
	return out, nil
}

// GetLLMEvent returns one event, or nil if id is unknown.
func (r *LLMEventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMEventRecord, error) {
	var row llmEventRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT * FROM llm_request_events WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("get LLM event %d: %w", id, err))
	}
	rec := row.record()
	return &rec, nil
}

// LLMUsageByPurpose aggregates calls and tokens per purpose.
func (r *LLMEventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	var out []PurposeUsage
	err := r.db.SelectContext(ctx, &out,
		`SELECT purpose,
			COUNT(*) AS calls,
			COALESCE(SUM(input_tokens), 0) AS input_tokens,
			COALESCE(SUM(output_tokens), 0) AS output_tokens,
			CAST(COALESCE(AVG(latency_ms), 0) AS BIGINT) AS avg_latency_ms
		 FROM llm_request_events
		 GROUP BY purpose
		 ORDER BY calls DESC, purpose`)
	if err != nil {
		return nil, classify(fmt.Errorf("usage by purpose: %w", err))
	}
	return out, nil
}

// LLMUsageByModel aggregates calls and tokens per model.
func (r *LLMEventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	var out []ModelUsage
	err := r.db.SelectContext(ctx, &out,
		`SELECT model,
			COUNT(*) AS calls,
			COALESCE(SUM(input_tokens), 0) AS input_tokens,
			COALESCE(SUM(output_tokens), 0) AS output_tokens
		 FROM llm_request_events
		 GROUP BY model
		 ORDER BY calls DESC, model`)
	if err != nil {
		return nil, classify(fmt.Errorf("usage by model: %w", err))
	}
	return out, nil
}
