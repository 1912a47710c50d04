package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, defaultHistoryLimit},
		{-5, defaultHistoryLimit},
		{1, 1},
		{50, 50},
		{500, maxHistoryLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampLimit(tt.in), "clampLimit(%d)", tt.in)
	}
}

func testDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := New(ctx, url)
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCheckRepository_SaveAndQuery(t *testing.T) {
	db := testDB(t)
	repo := NewCheckRepository(db)
	ctx := context.Background()

	videoID := "t" + uuid.NewString()[:10]
	t.Cleanup(func() {
		db.ExecContext(context.Background(), "DELETE FROM content_checks WHERE video_id = $1", videoID)
	})

	first := &CheckRecord{VideoID: videoID, IsSafe: true, Title: "Educational Content", Source: "mock"}
	require.NoError(t, repo.SaveCheck(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)

	second := &CheckRecord{
		VideoID: videoID,
		IsSafe:  false,
		Flags:   []string{"explicitLanguage", "drugReferences"},
		Source:  "remote",
	}
	second.CheckedAt = first.CheckedAt.Add(time.Second)
	require.NoError(t, repo.SaveCheck(ctx, second))

	records, err := repo.RecentChecks(ctx, 10, videoID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, []string{"explicitLanguage", "drugReferences"}, records[0].Flags)
	assert.Empty(t, records[1].Flags)

	latest, err := repo.LatestCheck(ctx, videoID)
	require.NoError(t, err)
	assert.False(t, latest.IsSafe)

	_, err = repo.LatestCheck(ctx, "missing"+videoID)
	assert.ErrorIs(t, err, ErrCheckNotFound)
}
