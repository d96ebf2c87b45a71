// Package leaderboard folds the game result log into ranked per-player totals.
package leaderboard

import (
	"math"
	"sort"

	"github.com/lichsuviet/minigames/internal/models"
	"github.com/lichsuviet/minigames/internal/rating"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// NormalizeLimit maps a requested limit into (0, MaxLimit].
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Aggregate builds the leaderboard for gameType from the full result history.
//
// Entries are ordered by total score, highest first. Equal totals rank the
// player with fewer games played higher (same total in fewer games); if that
// also ties, the player first seen in the log comes first. Ranks are the
// 1-based positions after sorting. Each entry also carries a Glicko2 skill
// rating replayed over the games in log order; it is informational and does
// not affect the ordering.
func Aggregate(results []models.GameResult, gameType models.GameType, limit int) []models.LeaderboardEntry {
	limit = NormalizeLimit(limit)

	index := make(map[string]int)
	var entries []models.LeaderboardEntry
	skill := rating.Table{}
	for _, res := range results {
		if res.GameType != gameType {
			continue
		}
		ids := make([]string, len(res.Players))
		ranks := make([]int, len(res.Players))
		for k, pr := range res.Players {
			ids[k], ranks[k] = pr.PlayerID, pr.Rank
			i, ok := index[pr.PlayerID]
			if !ok {
				i = len(entries)
				index[pr.PlayerID] = i
				entries = append(entries, models.LeaderboardEntry{PlayerID: pr.PlayerID})
			}
			e := &entries[i]
			// latest name wins so renamed players show their current name
			if pr.Name != "" {
				e.Name = pr.Name
			}
			e.TotalScore += pr.FinalScore
			e.GamesPlayed++
			if pr.Rank == 1 {
				e.Wins++
			}
		}
		skill.Apply(ids, ranks)
	}

	for i := range entries {
		entries[i].Rating = int(math.Round(skill.Get(entries[i].PlayerID).Elo()))
		if entries[i].GamesPlayed > 0 {
			entries[i].WinRate = float64(entries[i].Wins) / float64(entries[i].GamesPlayed)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].GamesPlayed < entries[j].GamesPlayed
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return entries
}

// RankPlayers turns final room scores into result lines using competition
// ranking: equal scores share a rank and the next rank skips (1, 1, 3).
// Players with equal scores keep their room order.
func RankPlayers(players []models.Player) []models.PlayerResult {
	out := make([]models.PlayerResult, len(players))
	for i, p := range players {
		out[i] = models.PlayerResult{PlayerID: p.ID, Name: p.Name, FinalScore: p.Score}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalScore > out[j].FinalScore
	})
	for i := range out {
		if i > 0 && out[i].FinalScore == out[i-1].FinalScore {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
	}
	return out
}
