package store

import (
	"context"
	"time"
)

// Course is a read-only catalog entry.
type Course struct {
	ID   int64  `db:"course_id"`
	Name string `db:"course_name"`
}

// Topic is a unit of course content. Position orders topics in a course.
type Topic struct {
	ID       int64  `db:"topic_id"`
	CourseID int64  `db:"course_id"`
	Name     string `db:"topic_name"`
	Position int    `db:"position"`
	Text     string `db:"text"`
}

// TopicProgress pairs a topic with the user's mark; Mark is nil when the
// user has never finished a test on it.
type TopicProgress struct {
	Topic
	Mark *int
}

// CatalogRepo is the sole authority for courses, topics, users and marks.
// Lookups that find nothing return (nil, nil).
type CatalogRepo interface {
	// EnsureUser inserts the user if absent.
	EnsureUser(ctx context.Context, userID int64, username string) error

	ListCourses(ctx context.Context) ([]Course, error)
	CourseByID(ctx context.Context, courseID int64) (*Course, error)

	// ListTopics returns the course's topics ordered by position.
	ListTopics(ctx context.Context, courseID int64) ([]Topic, error)

	// Progress returns every topic of the course with the user's mark,
	// ordered by position.
	Progress(ctx context.Context, userID, courseID int64) ([]TopicProgress, error)

	// UpsertMark atomically inserts or replaces the mark for (user, topic).
	UpsertMark(ctx context.Context, userID, topicID int64, score int) error

	TopicByName(ctx context.Context, name string) (*Topic, error)
	TopicInCourse(ctx context.Context, courseID int64, name string) (*Topic, error)

	// SeedCourse creates the course (or reuses one with the same name) and
	// upserts its topics by position.
	SeedCourse(ctx context.Context, name string, topics []Topic) (*Course, error)
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // id > After
	Before  int64     // id < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string

	// UserID keeps events made on behalf of one chat user.
	UserID int64

	FailedOnly bool
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	UserID       int64
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage per call purpose.
type PurposeUsage struct {
	Purpose      string `db:"purpose"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
	AvgLatencyMs int64  `db:"avg_latency_ms"`
}

// ModelUsage aggregates token usage per model.
type ModelUsage struct {
	Model        string `db:"model"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
}

// EventRepo provides append access to LLM request events.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}
