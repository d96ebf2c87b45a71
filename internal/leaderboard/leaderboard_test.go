package leaderboard

import (
	"testing"

	"github.com/lichsuviet/minigames/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(gt models.GameType, lines ...models.PlayerResult) models.GameResult {
	return models.GameResult{RoomID: "r", GameType: gt, Players: lines}
}

func line(id string, score, rank int) models.PlayerResult {
	return models.PlayerResult{PlayerID: id, Name: id, FinalScore: score, Rank: rank}
}

func TestAggregateScenario(t *testing.T) {
	log := []models.GameResult{
		result(models.GameTrivia, line("p1", 300, 1), line("p2", 200, 2)),
		result(models.GameTrivia, line("p2", 400, 2), line("p1", 0, 3)),
		result(models.GameTrivia, line("p1", 500, 1)),
		result(models.GameTimeline, line("p2", 9000, 1)),
	}

	board := Aggregate(log, models.GameTrivia, 10)
	require.Len(t, board, 2)

	p1 := board[0]
	assert.Equal(t, "p1", p1.PlayerID)
	assert.Equal(t, 800, p1.TotalScore)
	assert.Equal(t, 3, p1.GamesPlayed)
	assert.Equal(t, 2, p1.Wins)
	assert.InDelta(t, 0.667, p1.WinRate, 0.001)
	assert.Equal(t, 1, p1.Rank)

	p2 := board[1]
	assert.Equal(t, "p2", p2.PlayerID)
	assert.Equal(t, 600, p2.TotalScore)
	assert.Equal(t, 2, p2.GamesPlayed)
	assert.Equal(t, 0, p2.Wins)
	assert.Equal(t, 0.0, p2.WinRate)
	assert.Equal(t, 2, p2.Rank)
}

func TestAggregateTieBreak(t *testing.T) {
	log := []models.GameResult{
		result(models.GameMatching, line("a", 300, 1), line("b", 200, 2)),
		result(models.GameMatching, line("b", 100, 1), line("c", 300, 1)),
		result(models.GameMatching, line("d", 300, 1)),
	}

	board := Aggregate(log, models.GameMatching, 10)
	require.Len(t, board, 4)
	// all on 300: a (1 game, seen first), c (1 game), d (1 game), b (2 games)
	assert.Equal(t, []string{"a", "c", "d", "b"}, ids(board))
	assert.Equal(t, []int{1, 2, 3, 4}, ranks(board))
}

func TestAggregateLimitAndEmpty(t *testing.T) {
	var log []models.GameResult
	for i := 0; i < 20; i++ {
		log = append(log, result(models.GameTrivia, line(string(rune('a'+i)), i*10, 1)))
	}
	board := Aggregate(log, models.GameTrivia, 5)
	require.Len(t, board, 5)
	assert.Equal(t, "t", board[0].PlayerID)
	assert.Equal(t, 5, board[4].Rank)

	assert.Len(t, Aggregate(log, models.GameTrivia, 0), DefaultLimit)
	assert.Empty(t, Aggregate(log, models.GameCharacter, 10))
	assert.NotNil(t, Aggregate(nil, models.GameCharacter, 10))
}

func TestRankPlayers(t *testing.T) {
	lines := RankPlayers([]models.Player{
		{ID: "a", Score: 100},
		{ID: "b", Score: 300},
		{ID: "c", Score: 100},
		{ID: "d", Score: 50},
	})
	assert.Equal(t, []string{"b", "a", "c", "d"}, []string{lines[0].PlayerID, lines[1].PlayerID, lines[2].PlayerID, lines[3].PlayerID})
	assert.Equal(t, []int{1, 2, 2, 4}, []int{lines[0].Rank, lines[1].Rank, lines[2].Rank, lines[3].Rank})
}

func ids(es []models.LeaderboardEntry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.PlayerID
	}
	return out
}

func ranks(es []models.LeaderboardEntry) []int {
	out := make([]int, len(es))
	for i, e := range es {
		out[i] = e.Rank
	}
	return out
}

func TestAggregateRating(t *testing.T) {
	log := []models.GameResult{
		result(models.GameCharacter, line("a", 900, 1), line("b", 300, 2)),
		result(models.GameCharacter, line("a", 800, 1), line("b", 100, 2)),
		result(models.GameCharacter, line("c", 50, 1)),
	}

	board := Aggregate(log, models.GameCharacter, 10)
	require.Len(t, board, 3)
	byID := map[string]models.LeaderboardEntry{}
	for _, e := range board {
		byID[e.PlayerID] = e
	}
	assert.Greater(t, byID["a"].Rating, 1500)
	assert.Less(t, byID["b"].Rating, 1500)
	// solo games carry no rating information
	assert.Equal(t, 1500, byID["c"].Rating)
}
