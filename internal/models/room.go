// internal/models/room.go
package models

import "time"

const (
	DefaultMaxPlayers = 8
	MinMaxPlayers     = 2
	MaxMaxPlayers     = 16
	DefaultRounds     = 5
	MaxRounds         = 20
)

// Settings holds the host-chosen configuration of a room.
type Settings struct {
	MaxPlayers int        `json:"maxPlayers"`
	TimeLimit  int        `json:"timeLimit"` // seconds per round; 0 => game type default
	Difficulty Difficulty `json:"difficulty"`
	Rounds     int        `json:"rounds"`
}

// Normalize fills defaults and clamps values into their allowed ranges.
func (s Settings) Normalize(g GameType) Settings {
	if s.MaxPlayers == 0 {
		s.MaxPlayers = DefaultMaxPlayers
	}
	if s.MaxPlayers < MinMaxPlayers {
		s.MaxPlayers = MinMaxPlayers
	}
	if s.MaxPlayers > MaxMaxPlayers {
		s.MaxPlayers = MaxMaxPlayers
	}
	if s.TimeLimit <= 0 {
		s.TimeLimit = g.DefaultTimeLimit()
	}
	s.Difficulty = ParseDifficulty(string(s.Difficulty))
	if s.Rounds <= 0 {
		s.Rounds = DefaultRounds
	}
	if s.Rounds > MaxRounds {
		s.Rounds = MaxRounds
	}
	return s
}

// Player is a participant of a single room.
type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	IsReady  bool      `json:"isReady"`
	IsHost   bool      `json:"isHost"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Room is a point-in-time copy of a room's state, safe to hand to callers.
type Room struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	GameType    GameType   `json:"gameType"`
	HostID      string     `json:"hostId"`
	Status      Status     `json:"status"`
	Settings    Settings   `json:"settings"`
	Players     []Player   `json:"players"`
	GameData    *RoundData `json:"gameData,omitempty"`
	HasPasscode bool       `json:"hasPasscode"`
	AllReady    bool       `json:"allReady"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Player returns the player with the given id, if present.
func (r Room) Player(id string) (Player, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}
