// internal/models/result.go
package models

import "time"

// PlayerResult is one line of a finished game.
type PlayerResult struct {
	PlayerID   string `json:"playerId"`
	Name       string `json:"name"`
	FinalScore int    `json:"finalScore"`
	Rank       int    `json:"rank"`
}

// GameResult is the immutable outcome of a finished room.
type GameResult struct {
	RoomID     string         `json:"roomId"`
	GameType   GameType       `json:"gameType"`
	Players    []PlayerResult `json:"players"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// LeaderboardEntry is derived from the result log on demand.
type LeaderboardEntry struct {
	PlayerID    string  `json:"playerId"`
	Name        string  `json:"name"`
	TotalScore  int     `json:"totalScore"`
	GamesPlayed int     `json:"gamesPlayed"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"winRate"`
	Rating      int     `json:"rating"`
	Rank        int     `json:"rank"`
}
