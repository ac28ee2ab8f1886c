package store

import (
	"context"
	"fmt"
	"strings"
)

// dialect holds the few DDL fragments that differ between backends.
type dialect struct {
	name   string
	autoID string
	bigint string
}

var (
	sqliteDialect   = dialect{name: DriverSQLite, autoID: "INTEGER PRIMARY KEY AUTOINCREMENT", bigint: "INTEGER"}
	postgresDialect = dialect{name: DriverPostgres, autoID: "BIGSERIAL PRIMARY KEY", bigint: "BIGINT"}
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS "user" (
		user_id   {{bigint}} PRIMARY KEY,
		username  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS course (
		course_id   {{autoid}},
		course_name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS topic (
		topic_id   {{autoid}},
		course_id  {{bigint}} NOT NULL REFERENCES course(course_id),
		topic_name TEXT NOT NULL,
		position   INTEGER NOT NULL,
		text       TEXT NOT NULL DEFAULT '',
		UNIQUE (course_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS topic_name_idx ON topic (topic_name)`,
	`CREATE TABLE IF NOT EXISTS user_has_topic (
		user_id  {{bigint}} NOT NULL REFERENCES "user"(user_id),
		topic_id {{bigint}} NOT NULL REFERENCES topic(topic_id),
		mark     INTEGER CHECK (mark IS NULL OR (mark >= 0 AND mark <= 100)),
		PRIMARY KEY (user_id, topic_id)
	)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id            {{autoid}},
		created_at_ms {{bigint}} NOT NULL,
		provider      TEXT NOT NULL DEFAULT '',
		model         TEXT NOT NULL DEFAULT '',
		purpose       TEXT NOT NULL DEFAULT '',
		user_id       {{bigint}} NOT NULL DEFAULT 0,
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    {{bigint}} NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS llm_request_events_purpose_idx ON llm_request_events (purpose)`,
}

func (s *Store) migrate(ctx context.Context) error {
	r := strings.NewReplacer("{{autoid}}", s.dialect.autoID, "{{bigint}}", s.dialect.bigint)
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, r.Replace(stmt)); err != nil {
			return classify(fmt.Errorf("migration %d: %w", i, err))
		}
	}
	return nil
}
