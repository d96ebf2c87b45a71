// internal/handlers/server.go
package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/lichsuviet/minigames/internal/auth"
	"github.com/lichsuviet/minigames/internal/hub"
	"github.com/lichsuviet/minigames/internal/middleware"
	"github.com/lichsuviet/minigames/internal/results"
	"github.com/lichsuviet/minigames/internal/room"
)

// RoomServer holds the collaborators every handler needs.
type RoomServer struct {
	Rooms    *room.Service
	Hub      *hub.Hub
	Sessions *auth.Issuer
	Results  results.Log
	Logger   *logrus.Logger

	// OriginPatterns is passed to websocket.Accept.
	OriginPatterns []string
}

// NewRoomServer wires a server. A nil logger falls back to the logrus standard logger.
func NewRoomServer(rooms *room.Service, h *hub.Hub, sessions *auth.Issuer, logger *logrus.Logger) *RoomServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RoomServer{
		Rooms:          rooms,
		Hub:            h,
		Sessions:       sessions,
		Results:        rooms.Results(),
		Logger:         logger,
		OriginPatterns: []string{"*"},
	}
}

// Routes returns the HTTP API with request logging applied.
func (s *RoomServer) Routes() http.Handler {
	mux := http.NewServeMux()

	// rooms
	mux.HandleFunc("POST /rooms", CreateRoomHandler(s))
	mux.HandleFunc("GET /rooms", ListRoomsHandler(s))
	mux.HandleFunc("GET /rooms/{ref}", GetRoomHandler(s))
	mux.HandleFunc("POST /rooms/{ref}/join", JoinRoomHandler(s))
	mux.HandleFunc("POST /rooms/{id}/leave", LeaveRoomHandler(s))
	mux.HandleFunc("POST /rooms/{id}/ready", ReadyHandler(s))
	mux.HandleFunc("POST /rooms/{id}/status", StatusHandler(s))

	// rounds
	mux.HandleFunc("POST /rooms/{id}/rounds", StartRoundHandler(s))
	mux.HandleFunc("POST /rooms/{id}/answers", SubmitAnswerHandler(s))
	mux.HandleFunc("POST /rooms/{id}/finish", FinishGameHandler(s))

	// room event stream
	mux.HandleFunc("GET /rooms/{id}/ws", RoomWSHandler(s))

	mux.HandleFunc("GET /leaderboard/{gameType}", LeaderboardHandler(s))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return middleware.LogMiddleware(s.Logger)(mux)
}
