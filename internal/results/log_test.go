package results

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lichsuviet/minigames/internal/cache"
	"github.com/lichsuviet/minigames/internal/database"
	"github.com/lichsuviet/minigames/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(gt models.GameType, roomID string) models.GameResult {
	return models.GameResult{
		RoomID:   roomID,
		GameType: gt,
		Players: []models.PlayerResult{
			{PlayerID: "p1", Name: "An", FinalScore: 300, Rank: 1},
			{PlayerID: "p2", Name: "Binh", FinalScore: 100, Rank: 2},
		},
		FinishedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

// exerciseLog checks append order, per-type separation and copy-on-read.
func exerciseLog(t *testing.T, l Log, gt models.GameType) {
	ctx := context.Background()
	before, err := l.List(ctx, gt)
	require.NoError(t, err)

	first := sampleResult(gt, uuid.NewString())
	second := sampleResult(gt, uuid.NewString())
	require.NoError(t, l.Append(ctx, first))
	require.NoError(t, l.Append(ctx, second))

	got, err := l.List(ctx, gt)
	require.NoError(t, err)
	require.Len(t, got, len(before)+2)
	assert.Equal(t, first.RoomID, got[len(got)-2].RoomID)
	assert.Equal(t, second.RoomID, got[len(got)-1].RoomID)
	assert.Equal(t, first.Players, got[len(got)-2].Players)
}

func TestMemoryLog(t *testing.T) {
	l := NewMemoryLog()
	exerciseLog(t, l, models.GameTrivia)

	other, err := l.List(context.Background(), models.GameTimeline)
	require.NoError(t, err)
	assert.Empty(t, other)

	got, _ := l.List(context.Background(), models.GameTrivia)
	got[0].Players[0].FinalScore = -1
	again, _ := l.List(context.Background(), models.GameTrivia)
	assert.Equal(t, 300, again[0].Players[0].FinalScore, "List must hand out copies")
}

func TestMemoryLogConcurrentAppend(t *testing.T) {
	l := NewMemoryLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Append(context.Background(), sampleResult(models.GameMatching, uuid.NewString()))
		}()
	}
	wg.Wait()
	got, err := l.List(context.Background(), models.GameMatching)
	require.NoError(t, err)
	assert.Len(t, got, 50)
}

// Needs a reachable Redis; skipped otherwise.
func TestRedisLog(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb, err := cache.ConnectRedis(context.Background(), addr, 0)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer rdb.Close()

	prefix := "minigames-test:" + uuid.NewString()
	l := NewRedisLog(rdb, prefix)
	defer rdb.Del(context.Background(), l.key(models.GameCharacter))

	exerciseLog(t, l, models.GameCharacter)
}

// Needs TEST_DATABASE_URL pointing at a scratch database.
func TestPostgresLog(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := database.Connect(ctx, url)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, database.Migrate(ctx, pool))

	exerciseLog(t, NewPostgresLog(pool), models.GameTimeline)
}
