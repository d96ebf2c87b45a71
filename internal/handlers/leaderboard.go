// internal/handlers/leaderboard.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/lichsuviet/minigames/internal/apperr"
	"github.com/lichsuviet/minigames/internal/leaderboard"
	"github.com/lichsuviet/minigames/internal/models"
)

type leaderboardResponse struct {
	GameType models.GameType           `json:"gameType"`
	Entries  []models.LeaderboardEntry `json:"entries"`
}

// LeaderboardHandler aggregates the result log for one game type.
func LeaderboardHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameType, ok := models.ParseGameType(r.PathValue("gameType"))
		if !ok {
			writeError(w, apperr.Invalid("unknown game type %q", r.PathValue("gameType")))
			return
		}
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, apperr.Invalid("limit must be an integer"))
				return
			}
			limit = n
		}

		res, err := s.Results.List(r.Context(), gameType)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, leaderboardResponse{
			GameType: gameType,
			Entries:  leaderboard.Aggregate(res, gameType, limit),
		})
	}
}
