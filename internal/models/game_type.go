// internal/models/game_type.go
package models

import "strings"

// GameType identifies one of the mini-games a room can host.
type GameType string

const (
	GameTimeline  GameType = "timeline"  // order historical events chronologically
	GameMatching  GameType = "matching"  // match characters to the events they took part in
	GameTrivia    GameType = "trivia"    // multiple-choice question
	GameCharacter GameType = "character" // identify a character from a description
)

// GameTypes lists every supported game type in a stable order.
var GameTypes = []GameType{GameTimeline, GameMatching, GameTrivia, GameCharacter}

// Valid reports whether g is one of the known game types.
func (g GameType) Valid() bool {
	switch g {
	case GameTimeline, GameMatching, GameTrivia, GameCharacter:
		return true
	}
	return false
}

// ParseGameType accepts the canonical names plus the long aliases used by older clients.
func ParseGameType(s string) (GameType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "timeline", "ordering", "ordering-puzzle", "timeline-puzzle":
		return GameTimeline, true
	case "matching", "matching-puzzle":
		return GameMatching, true
	case "trivia", "quiz":
		return GameTrivia, true
	case "character", "character-match", "guess-character":
		return GameCharacter, true
	}
	return "", false
}

// DefaultTimeLimit is the per-round limit in seconds used when the room does not set one.
func (g GameType) DefaultTimeLimit() int {
	switch g {
	case GameTimeline, GameMatching:
		return 60
	default:
		return 30
	}
}

// Status is the lifecycle state of a room. Transitions only move forward.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

func (s Status) order() int {
	switch s {
	case StatusWaiting:
		return 0
	case StatusPlaying:
		return 1
	case StatusFinished:
		return 2
	}
	return -1
}

// CanTransition reports whether moving from s to next keeps the lifecycle monotonic.
// Staying in the same state is allowed.
func (s Status) CanTransition(next Status) bool {
	from, to := s.order(), next.order()
	if from < 0 || to < 0 {
		return false
	}
	return to >= from
}

// Difficulty selects content and base points.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty returns the difficulty for s, defaulting to medium.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}
