// Package results is the append-only log of finished games.
package results

import (
	"context"
	"sync"

	"github.com/lichsuviet/minigames/internal/models"
)

// Log stores finished game results. Entries are never modified once appended.
type Log interface {
	Append(ctx context.Context, res models.GameResult) error
	List(ctx context.Context, gameType models.GameType) ([]models.GameResult, error)
}

// MemoryLog keeps results for the lifetime of the process.
type MemoryLog struct {
	mu      sync.RWMutex
	results map[models.GameType][]models.GameResult
}

// NewMemoryLog returns an empty in-process result log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		results: make(map[models.GameType][]models.GameResult),
	}
}

func (l *MemoryLog) Append(_ context.Context, res models.GameResult) error {
	res.Players = append([]models.PlayerResult(nil), res.Players...)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.results[res.GameType] = append(l.results[res.GameType], res)
	return nil
}

// List returns a copy of the results for gameType in append order.
func (l *MemoryLog) List(_ context.Context, gameType models.GameType) ([]models.GameResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	src := l.results[gameType]
	out := make([]models.GameResult, len(src))
	for i, r := range src {
		r.Players = append([]models.PlayerResult(nil), r.Players...)
		out[i] = r
	}
	return out, nil
}
