package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type catalogRepo struct {
	db *sqlx.DB
}

func (r *catalogRepo) EnsureUser(ctx context.Context, userID int64, username string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO "user" (user_id, username) VALUES (?, ?) ON CONFLICT (user_id) DO NOTHING`),
		userID, username)
	if err != nil {
		return classify(fmt.Errorf("ensure user %d: %w", userID, err))
	}
	return nil
}

func (r *catalogRepo) ListCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	err := r.db.SelectContext(ctx, &courses,
		`SELECT course_id, course_name FROM course ORDER BY course_id`)
	if err != nil {
		return nil, classify(fmt.Errorf("list courses: %w", err))
	}
	return courses, nil
}

func (r *catalogRepo) CourseByID(ctx context.Context, courseID int64) (*Course, error) {
	var c Course
	err := r.db.GetContext(ctx, &c, r.db.Rebind(
		`SELECT course_id, course_name FROM course WHERE course_id = ?`), courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("course %d: %w", courseID, err))
	}
	return &c, nil
}

func (r *catalogRepo) ListTopics(ctx context.Context, courseID int64) ([]Topic, error) {
	var topics []Topic
	err := r.db.SelectContext(ctx, &topics, r.db.Rebind(
		`SELECT topic_id, course_id, topic_name, position, text
		 FROM topic WHERE course_id = ? ORDER BY position`), courseID)
	if err != nil {
		return nil, classify(fmt.Errorf("list topics of course %d: %w", courseID, err))
	}
	return topics, nil
}

func (r *catalogRepo) Progress(ctx context.Context, userID, courseID int64) ([]TopicProgress, error) {
	var rows []struct {
		Topic
		Mark sql.NullInt64 `db:"mark"`
	}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(
		`SELECT t.topic_id, t.course_id, t.topic_name, t.position, t.text, uht.mark
		 FROM topic t
		 LEFT JOIN user_has_topic uht ON uht.topic_id = t.topic_id AND uht.user_id = ?
		 WHERE t.course_id = ?
		 ORDER BY t.position`), userID, courseID)
	if err != nil {
		return nil, classify(fmt.Errorf("progress of user %d in course %d: %w", userID, courseID, err))
	}

	out := make([]TopicProgress, len(rows))
	for i, row := range rows {
		out[i] = TopicProgress{Topic: row.Topic}
		if row.Mark.Valid {
			m := int(row.Mark.Int64)
			out[i].Mark = &m
		}
	}
	return out, nil
}

func (r *catalogRepo) UpsertMark(ctx context.Context, userID, topicID int64, score int) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("%w: mark %d outside [0, 100]", ErrDataError, score)
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO user_has_topic (user_id, topic_id, mark) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, topic_id) DO UPDATE SET mark = excluded.mark`),
		userID, topicID, score)
	if err != nil {
		return classify(fmt.Errorf("upsert mark (%d, %d): %w", userID, topicID, err))
	}
	return nil
}

func (r *catalogRepo) TopicByName(ctx context.Context, name string) (*Topic, error) {
	return r.topicWhere(ctx, `topic_name = ?`, name)
}

func (r *catalogRepo) TopicInCourse(ctx context.Context, courseID int64, name string) (*Topic, error) {
	return r.topicWhere(ctx, `course_id = ? AND topic_name = ?`, courseID, name)
}

func (r *catalogRepo) topicWhere(ctx context.Context, cond string, args ...any) (*Topic, error) {
	var t Topic
	err := r.db.GetContext(ctx, &t, r.db.Rebind(
		`SELECT topic_id, course_id, topic_name, position, text FROM topic
		 WHERE `+cond+` ORDER BY course_id, position LIMIT 1`), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("topic lookup: %w", err))
	}
	return &t, nil
}

func (r *catalogRepo) SeedCourse(ctx context.Context, name string, topics []Topic) (*Course, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, classify(fmt.Errorf("begin seed: %w", err))
	}
	defer tx.Rollback()

	var course Course
	err = tx.GetContext(ctx, &course, tx.Rebind(
		`SELECT course_id, course_name FROM course WHERE course_name = ? ORDER BY course_id LIMIT 1`), name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = tx.GetContext(ctx, &course, tx.Rebind(
			`INSERT INTO course (course_name) VALUES (?) RETURNING course_id, course_name`), name)
		if err != nil {
			return nil, classify(fmt.Errorf("insert course %q: %w", name, err))
		}
	case err != nil:
		return nil, classify(fmt.Errorf("find course %q: %w", name, err))
	}

	for i, t := range topics {
		pos := t.Position
		if pos == 0 {
			pos = i + 1
		}
		_, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO topic (course_id, topic_name, position, text) VALUES (?, ?, ?, ?)
			 ON CONFLICT (course_id, position) DO UPDATE SET topic_name = excluded.topic_name, text = excluded.text`),
			course.ID, t.Name, pos, t.Text)
		if err != nil {
			return nil, classify(fmt.Errorf("insert topic %q: %w", t.Name, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, classify(fmt.Errorf("commit seed: %w", err))
	}
	return &course, nil
}
