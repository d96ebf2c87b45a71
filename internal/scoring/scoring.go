// Package scoring grades round submissions. Every function here is pure and
// returns a non-negative integer score.
package scoring

import (
	"math"
	"time"

	"github.com/lichsuviet/minigames/internal/models"
)

const (
	TimelineBasePoints = 1000
	MatchingBasePoints = 500
	WrongMatchPenalty  = 50
	PuzzleTimeBonus    = 200
	TriviaBonusFactor  = 0.5
)

// Result is a score plus the breakdown shown to the player.
type Result struct {
	Score   int     `json:"score"`
	Correct bool    `json:"correct"`
	Details Details `json:"details"`
}

// Details explains how a score was reached. Fields not used by a game type stay zero.
type Details struct {
	Accuracy       float64 `json:"accuracy"`
	Completeness   float64 `json:"completeness,omitempty"`
	CorrectCount   int     `json:"correctCount"`
	WrongCount     int     `json:"wrongCount"`
	TotalItems     int     `json:"totalItems"`
	BaseScore      float64 `json:"baseScore"`
	Penalty        float64 `json:"penalty,omitempty"`
	TimeBonus      float64 `json:"timeBonus"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
	TimeLimit      int     `json:"timeLimit"`
}

// roundHalfUp rounds to the nearest integer with halves going up.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// timeFactor is max(0, (limit-elapsed)/limit). A non-positive limit earns no bonus.
func timeFactor(timeLimit int, elapsed float64) float64 {
	if timeLimit <= 0 {
		return 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	f := (float64(timeLimit) - elapsed) / float64(timeLimit)
	if f < 0 {
		return 0
	}
	return f
}

// Elapsed returns the seconds between start and submitted, never negative.
func Elapsed(start, submitted time.Time) float64 {
	if start.IsZero() || submitted.Before(start) {
		return 0
	}
	return submitted.Sub(start).Seconds()
}

// Timeline scores an ordering puzzle by positional accuracy plus a time bonus.
func Timeline(submitted, correct []string, timeLimit int, elapsed float64) Result {
	d := Details{TotalItems: len(correct), TimeLimit: timeLimit, ElapsedSeconds: elapsed}
	if len(correct) == 0 {
		return Result{Details: d}
	}
	for i, id := range correct {
		if i < len(submitted) && submitted[i] == id {
			d.CorrectCount++
		}
	}
	d.WrongCount = len(correct) - d.CorrectCount
	d.Accuracy = float64(d.CorrectCount) / float64(len(correct))
	d.BaseScore = d.Accuracy * TimelineBasePoints
	d.TimeBonus = timeFactor(timeLimit, elapsed) * PuzzleTimeBonus

	return Result{
		Score:   clamp(roundHalfUp(d.BaseScore + d.TimeBonus)),
		Correct: d.CorrectCount == len(correct),
		Details: d,
	}
}

// Matching scores a character-to-event matching puzzle. Identical submitted
// pairs count once. Wrong pairs cost WrongMatchPenalty each; the total never drops below zero.
func Matching(submitted, correct []models.Match, timeLimit int, elapsed float64) Result {
	d := Details{TotalItems: len(correct), TimeLimit: timeLimit, ElapsedSeconds: elapsed}

	key := make(map[models.Match]struct{}, len(correct))
	for _, m := range correct {
		key[m] = struct{}{}
	}
	seen := make(map[models.Match]struct{}, len(submitted))
	for _, m := range submitted {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		if _, ok := key[m]; ok {
			d.CorrectCount++
		} else {
			d.WrongCount++
		}
	}

	d.Accuracy = float64(d.CorrectCount) / float64(max(1, len(seen)))
	if len(key) > 0 {
		d.Completeness = float64(d.CorrectCount) / float64(len(key))
	}
	d.BaseScore = (d.Accuracy + d.Completeness) / 2 * MatchingBasePoints
	d.Penalty = float64(d.WrongCount * WrongMatchPenalty)
	d.TimeBonus = timeFactor(timeLimit, elapsed) * PuzzleTimeBonus

	return Result{
		Score:   clamp(roundHalfUp(d.BaseScore - d.Penalty + d.TimeBonus)),
		Correct: len(key) > 0 && d.CorrectCount == len(key) && d.WrongCount == 0,
		Details: d,
	}
}

// BasePoints is the reward for a correct answer at the given difficulty.
func BasePoints(d models.Difficulty) int {
	switch d {
	case models.DifficultyEasy:
		return 100
	case models.DifficultyHard:
		return 300
	default:
		return 200
	}
}

// Trivia is all-or-nothing: a wrong option scores exactly 0 regardless of speed.
func Trivia(selected, correct int, difficulty models.Difficulty, timeLimit int, elapsed float64) Result {
	d := Details{TotalItems: 1, TimeLimit: timeLimit, ElapsedSeconds: elapsed}
	if selected != correct {
		d.WrongCount = 1
		return Result{Details: d}
	}
	base := float64(BasePoints(difficulty))
	d.CorrectCount = 1
	d.Accuracy = 1
	d.BaseScore = base
	d.TimeBonus = timeFactor(timeLimit, elapsed) * base * TriviaBonusFactor

	return Result{
		Score:   clamp(roundHalfUp(d.BaseScore + d.TimeBonus)),
		Correct: true,
		Details: d,
	}
}

// Character grades a character-identification round with the trivia rules.
func Character(selected, correct int, difficulty models.Difficulty, timeLimit int, elapsed float64) Result {
	return Trivia(selected, correct, difficulty, timeLimit, elapsed)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	return score
}
