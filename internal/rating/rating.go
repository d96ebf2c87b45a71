// Package rating keeps a Glicko2 skill estimate per player, replayed from
// finished games.
package rating

import (
	"sort"
)

// RankScores turns final ranks (1 = best) into outcomes in [0..1]: the best
// place scores 1, the last 0, and tied players share the mean of the places
// they occupy. Fewer than two players yield nil.
func RankScores(ranks []int) []float64 {
	n := len(ranks)
	if n < 2 {
		return nil
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return ranks[order[i]] < ranks[order[j]]
	})

	scores := make([]float64, n)
	for i := 0; i < n; {
		j := i + 1
		for j < n && ranks[order[j]] == ranks[order[i]] {
			j++
		}
		// places i..j-1 are tied
		avg := float64(i+j-1) / 2
		fr := 1.0 - avg/float64(n-1)
		for k := i; k < j; k++ {
			scores[order[k]] = fr
		}
		i = j
	}
	return scores
}

// UpdateGame applies one multi-player game. Each player is rated against a
// virtual opponent carrying the mean rating of everyone else at the table.
// ratings and scores are parallel; a mismatch or a single player leaves the
// ratings unchanged.
func UpdateGame(ratings []Rating, scores []float64) []Rating {
	out := make([]Rating, len(ratings))
	copy(out, ratings)
	n := len(ratings)
	if n < 2 || len(scores) != n {
		return out
	}

	var totalMu, totalPhi float64
	for _, r := range ratings {
		totalMu += r.Mu
		totalPhi += r.Phi
	}
	for i, r := range ratings {
		opp := Rating{
			Mu:    (totalMu - r.Mu) / float64(n-1),
			Phi:   (totalPhi - r.Phi) / float64(n-1),
			Sigma: DefaultSigma,
		}
		out[i] = update(r, opp, scores[i])
	}
	return out
}

// Table tracks ratings by player id.
type Table map[string]Rating

// Get returns the player's rating, or Default for unseen players.
func (t Table) Get(playerID string) Rating {
	if r, ok := t[playerID]; ok {
		return r
	}
	return Default()
}

// Apply updates every listed player from one game's ranks.
func (t Table) Apply(playerIDs []string, ranks []int) {
	scores := RankScores(ranks)
	if scores == nil || len(playerIDs) != len(ranks) {
		return
	}
	current := make([]Rating, len(playerIDs))
	for i, id := range playerIDs {
		current[i] = t.Get(id)
	}
	for i, r := range UpdateGame(current, scores) {
		t[playerIDs[i]] = r
	}
}
