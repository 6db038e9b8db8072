package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Sajal133/truerate-api/internal/domain/model"
	"github.com/Sajal133/truerate-api/pkg/metrics"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS weight_adjustments (
	feature_key   TEXT PRIMARY KEY,
	adjustment    REAL NOT NULL,
	sample_count  INTEGER NOT NULL DEFAULT 1,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS feedback (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	feedback_id     TEXT,
	text_hash       TEXT NOT NULL,
	review_text     TEXT NOT NULL,
	stars           INTEGER NOT NULL,
	predicted_class TEXT NOT NULL,
	predicted_score REAL,
	user_vote       INTEGER NOT NULL,
	user_agent      TEXT,
	created_at      TEXT NOT NULL,
	UNIQUE (text_hash, user_vote)
);
`

// SQLiteStore keeps weights and the feedback log in one SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path and runs migrations.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	o := defaultStoreOptions()
	for _, opt := range opts {
		opt(&o)
	}
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", path, o.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %v", ErrOpenStore, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", ErrOpenStore, err)
	}
	return &SQLiteStore{db: db, now: o.now}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (v float64, ok bool, err error) {
	defer observe(BackendSQLite, "get", time.Now(), &err)
	err = s.db.QueryRowContext(ctx,
		`SELECT adjustment FROM weight_adjustments WHERE feature_key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get weight %q: %w", key, err)
	}
	return v, true, nil
}

// Put overwrites the weight and bumps its sample count.
func (s *SQLiteStore) Put(ctx context.Context, key string, value float64) (err error) {
	defer observe(BackendSQLite, "put", time.Now(), &err)
	if key == "" {
		return ErrEmptyKey
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO weight_adjustments (feature_key, adjustment, sample_count, updated_at)
		 VALUES (?, ?, 1, ?)
		 ON CONFLICT(feature_key) DO UPDATE SET
		   adjustment = excluded.adjustment,
		   sample_count = weight_adjustments.sample_count + 1,
		   updated_at = excluded.updated_at`,
		key, value, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put weight %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) GetAll(ctx context.Context) (out map[string]float64, err error) {
	defer observe(BackendSQLite, "get_all", time.Now(), &err)
	rows, err := s.db.QueryContext(ctx, `SELECT feature_key, adjustment FROM weight_adjustments`)
	if err != nil {
		return nil, fmt.Errorf("list weights: %w", err)
	}
	defer rows.Close()

	out = make(map[string]float64)
	for rows.Next() {
		var k string
		var v float64
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan weight: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// SampleCount returns how many times key has been written.
func (s *SQLiteStore) SampleCount(ctx context.Context, key string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT sample_count FROM weight_adjustments WHERE feature_key = ?`, key).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}

// Record upserts a feedback vote on (text_hash, user_vote).
func (s *SQLiteStore) Record(ctx context.Context, rec model.FeedbackRecord) (err error) {
	defer observe(BackendSQLite, "record_feedback", time.Now(), &err)
	if rec.TextHash == "" {
		rec.TextHash = model.HashText(rec.Text)
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	var score any
	if rec.PredictedScore != nil {
		score = *rec.PredictedScore
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO feedback (feedback_id, text_hash, review_text, stars, predicted_class,
		                       predicted_score, user_vote, user_agent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(text_hash, user_vote) DO UPDATE SET
		   feedback_id = excluded.feedback_id,
		   review_text = excluded.review_text,
		   stars = excluded.stars,
		   predicted_class = excluded.predicted_class,
		   predicted_score = excluded.predicted_score,
		   user_agent = excluded.user_agent,
		   created_at = excluded.created_at`,
		rec.FeedbackID, rec.TextHash, rec.Text, rec.Stars, rec.PredictedClass,
		score, rec.UserVote, rec.UserAgent, created.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}
	return nil
}

// Stats summarises the feedback table.
func (s *SQLiteStore) Stats(ctx context.Context) (st model.FeedbackStats, err error) {
	defer observe(BackendSQLite, "feedback_stats", time.Now(), &err)
	rows, err := s.db.QueryContext(ctx,
		`SELECT predicted_class, user_vote, COUNT(*) FROM feedback GROUP BY predicted_class, user_vote`)
	if err != nil {
		return model.FeedbackStats{}, fmt.Errorf("feedback stats: %w", err)
	}
	defer rows.Close()

	t := newTally(BackendSQLite)
	for rows.Next() {
		var class string
		var vote, n int
		if err := rows.Scan(&class, &vote, &n); err != nil {
			return model.FeedbackStats{}, fmt.Errorf("scan feedback stats: %w", err)
		}
		for range n {
			t.add(class, vote)
		}
	}
	if err := rows.Err(); err != nil {
		return model.FeedbackStats{}, err
	}
	return t.stats(), nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// observe records store latency and failures. err points at the caller's
// named return so deferred calls see the final error.
func observe(backend, op string, start time.Time, err *error) {
	metrics.RecordStoreOperation(backend, op, float64(time.Since(start).Microseconds())/1000, *err)
}
