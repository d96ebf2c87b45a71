// internal/handlers/rooms.go
package handlers

import (
	"net/http"

	"github.com/lichsuviet/minigames/internal/apperr"
	"github.com/lichsuviet/minigames/internal/models"
	"github.com/lichsuviet/minigames/internal/room"
)

type createRoomRequest struct {
	GameType string          `json:"gameType"`
	HostName string          `json:"hostName"`
	Settings models.Settings `json:"settings"`
	Passcode string          `json:"passcode"`
	PlayerID string          `json:"playerId"`
}

type joinRoomRequest struct {
	PlayerName string `json:"playerName"`
	Passcode   string `json:"passcode"`
	PlayerID   string `json:"playerId"`
}

// seatResponse is returned whenever a caller takes a seat in a room.
type seatResponse struct {
	Room     models.Room `json:"room"`
	PlayerID string      `json:"playerId"`
	Token    string      `json:"token"`
}

type roomResponse struct {
	Room *models.Room `json:"room"`
}

// issueSeat signs a session for the new seat and writes the seat response.
func issueSeat(s *RoomServer, w http.ResponseWriter, status int, v models.Room, playerID string) {
	token, err := s.Sessions.Issue(playerID, v.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	setSessionCookie(w, token)
	writeJSON(w, status, seatResponse{Room: v, PlayerID: playerID, Token: token})
}

// CreateRoomHandler creates a waiting room and seats the caller as host.
func CreateRoomHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		gameType, ok := models.ParseGameType(req.GameType)
		if !ok {
			writeError(w, apperr.Invalid("unknown game type %q", req.GameType))
			return
		}

		v, hostID, err := s.Rooms.CreateRoom(gameType, req.HostName, req.Settings, room.CreateOptions{
			Passcode: req.Passcode,
			PlayerID: req.PlayerID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		issueSeat(s, w, http.StatusCreated, v, hostID)
	}
}

// ListRoomsHandler lists rooms, waiting ones unless ?status= says otherwise.
// ?status=all returns every live room.
func ListRoomsHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := models.Status(r.URL.Query().Get("status"))
		switch status {
		case "":
			status = models.StatusWaiting
		case "all":
			status = ""
		case models.StatusWaiting, models.StatusPlaying, models.StatusFinished:
		default:
			writeError(w, apperr.Invalid("unknown status %q", status))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rooms": s.Rooms.List(status)})
	}
}

// GetRoomHandler looks a room up by id or join code.
func GetRoomHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := s.Rooms.Get(r.PathValue("ref"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, roomResponse{Room: &v})
	}
}

// JoinRoomHandler seats a new player in the room named by id or join code.
func JoinRoomHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinRoomRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		v, playerID, err := s.Rooms.Join(r.PathValue("ref"), req.PlayerName, room.JoinOptions{
			Passcode: req.Passcode,
			PlayerID: req.PlayerID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		issueSeat(s, w, http.StatusOK, v, playerID)
	}
}

// LeaveRoomHandler removes the caller. {"room": null} means the room was deleted.
func LeaveRoomHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.PathValue("id")
		claims, ok := authorize(w, r, s.Sessions, roomID)
		if !ok {
			return
		}
		v, err := s.Rooms.Leave(roomID, claims.PlayerID())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, roomResponse{Room: v})
	}
}

type readyRequest struct {
	IsReady *bool `json:"isReady"`
}

// ReadyHandler sets the caller's ready flag.
func ReadyHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.PathValue("id")
		claims, ok := authorize(w, r, s.Sessions, roomID)
		if !ok {
			return
		}
		var req readyRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.IsReady == nil {
			writeError(w, apperr.Invalid("isReady is required"))
			return
		}
		v, err := s.Rooms.SetReady(roomID, claims.PlayerID(), *req.IsReady)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, roomResponse{Room: &v})
	}
}

type statusRequest struct {
	Status models.Status `json:"status"`
}

// StatusHandler lets the host move the room forward through its lifecycle.
func StatusHandler(s *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.PathValue("id")
		claims, ok := authorize(w, r, s.Sessions, roomID)
		if !ok {
			return
		}
		var req statusRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		v, err := s.Rooms.UpdateStatus(roomID, claims.PlayerID(), req.Status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, roomResponse{Room: &v})
	}
}
