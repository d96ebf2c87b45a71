// internal/handlers/rounds.go
package handlers

import (
	"net/http"
	"time"

	"github.com/lichsuviet/minigames/internal/apperr"
	"github.com/lichsuviet/minigames/internal/models"
)

type startRoundRequest struct {
	GameType   string `json:"gameType"`
	Difficulty string `json:"difficulty"`
	Round      int    `json:"round"`
}

type submitAnswerRequest struct {
	GameType string        `json:"gameType"`
	Answer   models.Answer `json:"answer"`
	// StartTime is when the client showed the round; omitted means the server's round start.
	StartTime time.Time `json:"startTime"`
}

// parseOptionalGameType accepts an empty string as "the room's game type".
func parseOptionalGameType(s string) (models.GameType, error) {
	if s == "" {
		return "", nil
	}
	gt, ok := models.ParseGameType(s)
	if !ok {
		return "", apperr.Invalid("unknown game type %q", s)
	}
	return gt, nil
}

// StartRoundHandler lets the host start the next round.
func StartRoundHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.PathValue("id")
		claims, ok := authorize(w, r, s.Sessions, roomID)
		if !ok {
			return
		}
		var req startRoundRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		gameType, err := parseOptionalGameType(req.GameType)
		if err != nil {
			writeError(w, err)
			return
		}
		var difficulty models.Difficulty
		if req.Difficulty != "" {
			difficulty = models.ParseDifficulty(req.Difficulty)
		}

		rd, err := s.Rooms.StartRound(roomID, claims.PlayerID(), gameType, difficulty, req.Round)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"round": rd})
	}
}

// SubmitAnswerHandler grades the caller's answer to the active round.
func SubmitAnswerHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.PathValue("id")
		claims, ok := authorize(w, r, s.Sessions, roomID)
		if !ok {
			return
		}
		var req submitAnswerRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		gameType, err := parseOptionalGameType(req.GameType)
		if err != nil {
			writeError(w, err)
			return
		}

		res, err := s.Rooms.SubmitAnswer(roomID, claims.PlayerID(), gameType, req.Answer, req.StartTime)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// FinishGameHandler lets the host end the game and record the result.
func FinishGameHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.PathValue("id")
		claims, ok := authorize(w, r, s.Sessions, roomID)
		if !ok {
			return
		}
		res, err := s.Rooms.FinishGame(r.Context(), roomID, claims.PlayerID())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"result": res})
	}
}
