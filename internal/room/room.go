// internal/room/room.go
package room

import (
	"sync"
	"time"

	"github.com/lichsuviet/minigames/internal/models"
)

// Room is the live, mutable state of one game room.
// id, code, gameType, passcodeHash and createdAt never change after creation;
// everything else is guarded by mu.
type Room struct {
	id           string
	code         string
	gameType     models.GameType
	passcodeHash string
	createdAt    time.Time

	mu       sync.Mutex
	deleted  bool
	hostID   string
	status   models.Status
	settings models.Settings
	players  []models.Player

	// active round state
	round    *models.RoundData
	answered map[string]bool
	// highest round number started; 0 until the first round
	lastRound int
	// question/character ids already shown in this room
	used []string
}

func (r *Room) ID() string   { return r.id }
func (r *Room) Code() string { return r.code }

// View returns a snapshot of the room. Acquires the lock.
func (r *Room) View() models.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewUnsafe()
}

// viewUnsafe builds the snapshot. Assumes lock is held.
func (r *Room) viewUnsafe() models.Room {
	v := models.Room{
		ID:          r.id,
		Code:        r.code,
		GameType:    r.gameType,
		HostID:      r.hostID,
		Status:      r.status,
		Settings:    r.settings,
		Players:     append([]models.Player(nil), r.players...),
		HasPasscode: r.passcodeHash != "",
		AllReady:    r.allReadyUnsafe(),
		CreatedAt:   r.createdAt,
	}
	if v.Players == nil {
		v.Players = []models.Player{}
	}
	if r.round != nil {
		rd := *r.round
		v.GameData = &rd
	}
	return v
}

// allReadyUnsafe reports whether every player has flagged ready. Assumes lock is held.
func (r *Room) allReadyUnsafe() bool {
	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.IsReady {
			return false
		}
	}
	return true
}

// indexOfUnsafe returns the position of playerID in the roster or -1. Assumes lock is held.
func (r *Room) indexOfUnsafe(playerID string) int {
	for i, p := range r.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (r *Room) hasNameUnsafe(name string) bool {
	for _, p := range r.players {
		if p.Name == name {
			return true
		}
	}
	return false
}

// promoteHostUnsafe hands the host seat to the earliest joiner; ties go to roster order.
// Assumes lock is held and the roster is non-empty.
func (r *Room) promoteHostUnsafe() string {
	next := 0
	for i, p := range r.players {
		if p.JoinedAt.Before(r.players[next].JoinedAt) {
			next = i
		}
	}
	for i := range r.players {
		r.players[i].IsHost = i == next
	}
	r.hostID = r.players[next].ID
	return r.hostID
}
