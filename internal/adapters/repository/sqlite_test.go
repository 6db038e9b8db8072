package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sajal133/truerate-api/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "truerate.db"),
		WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreWeights(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	_, ok, err := s.Get(ctx, "human:long")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "human:long", -0.05))
	require.NoError(t, s.Put(ctx, "human:long", -0.1))
	require.NoError(t, s.Put(ctx, "bot:stars_5", 0.05))

	v, ok, err := s.Get(ctx, "human:long")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, -0.1, v, 1e-9)

	n, err := s.SampleCount(ctx, "human:long")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.InDelta(t, 0.05, all["bot:stars_5"], 1e-9)

	assert.ErrorIs(t, s.Put(ctx, "", 0), ErrEmptyKey)
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "truerate.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "low_effort:short", 0.15))
	require.NoError(t, s.Close())

	s2, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()
	v, ok, err := s2.Get(ctx, "low_effort:short")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 0.15, v, 1e-9)
}

func TestSQLiteFeedbackLog(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	score := 0.2

	recs := []model.FeedbackRecord{
		{FeedbackID: "f1", Text: "Great product!", Stars: 5, PredictedClass: "bot", PredictedScore: &score, UserVote: 1},
		{FeedbackID: "f2", Text: "Great product!", Stars: 5, PredictedClass: "bot", UserVote: 1},
		{FeedbackID: "f3", Text: "Great product!", Stars: 5, PredictedClass: "bot", UserVote: -1},
		{FeedbackID: "f4", Text: "battery died", Stars: 2, PredictedClass: "human", UserVote: 1},
	}
	for _, r := range recs {
		require.NoError(t, s.Record(ctx, r))
	}

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.Agreements)
	assert.Equal(t, 1, st.Disagreements)
	assert.InDelta(t, 66.7, st.AccuracyRate, 1e-9)
	assert.Equal(t, model.VoteCount{Agree: 1, Disagree: 1}, st.ByClass["bot"])
	assert.Equal(t, BackendSQLite, st.Storage)
}
