package handlers

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lichsuviet/minigames/internal/auth"
	"github.com/lichsuviet/minigames/internal/content"
	"github.com/lichsuviet/minigames/internal/hub"
	"github.com/lichsuviet/minigames/internal/models"
	"github.com/lichsuviet/minigames/internal/room"
)

func newTestServer(t *testing.T) *RoomServer {
	t.Helper()
	bank, err := content.LoadBank()
	require.NoError(t, err)
	sessions, err := auth.NewIssuer(time.Hour)
	require.NoError(t, err)
	h := hub.New(0)
	rooms := room.NewService(room.Options{
		Generator: content.NewGenerator(bank, rand.New(rand.NewSource(1858))),
		Events:    h,
	})
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewRoomServer(rooms, h, sessions, logger)
}

func do(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	body := decode[errorBody](t, w)
	assert.Equal(t, code, body.Error)
	assert.NotEmpty(t, body.Message)
}

func createRoom(t *testing.T, h http.Handler, gameType, host string, extra map[string]any) seatResponse {
	t.Helper()
	body := map[string]any{"gameType": gameType, "hostName": host}
	for k, v := range extra {
		body[k] = v
	}
	w := do(t, h, http.MethodPost, "/rooms", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[seatResponse](t, w)
}

func joinRoom(t *testing.T, h http.Handler, ref, name string) seatResponse {
	t.Helper()
	w := do(t, h, http.MethodPost, "/rooms/"+ref+"/join", map[string]any{"playerName": name}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[seatResponse](t, w)
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t).Routes()
	w := do(t, h, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreateRoomHandler(t *testing.T) {
	h := newTestServer(t).Routes()

	w := do(t, h, http.MethodPost, "/rooms", map[string]any{
		"gameType": "timeline-puzzle",
		"hostName": "Lan",
		"settings": map[string]any{"maxPlayers": 4, "difficulty": "hard"},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	seat := decode[seatResponse](t, w)
	assert.Equal(t, models.GameTimeline, seat.Room.GameType)
	assert.Equal(t, 4, seat.Room.Settings.MaxPlayers)
	assert.Equal(t, models.DifficultyHard, seat.Room.Settings.Difficulty)
	assert.Equal(t, seat.PlayerID, seat.Room.HostID)
	assert.NotEmpty(t, seat.Token)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.Equal(t, seat.Token, cookies[0].Value)

	w = do(t, h, http.MethodPost, "/rooms", map[string]any{"gameType": "chess", "hostName": "Lan"}, "")
	assertError(t, w, http.StatusBadRequest, "invalid_input")

	w = do(t, h, http.MethodPost, "/rooms", map[string]any{"gameType": "trivia", "hostName": " "}, "")
	assertError(t, w, http.StatusBadRequest, "invalid_input")

	req := httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assertError(t, rec, http.StatusBadRequest, "invalid_input")
}

func TestGetAndListRooms(t *testing.T) {
	h := newTestServer(t).Routes()
	seat := createRoom(t, h, "trivia", "Lan", nil)

	for _, ref := range []string{seat.Room.ID, seat.Room.Code, strings.ToLower(seat.Room.Code)} {
		w := do(t, h, http.MethodGet, "/rooms/"+ref, nil, "")
		require.Equal(t, http.StatusOK, w.Code, ref)
		got := decode[struct{ Room models.Room }](t, w)
		assert.Equal(t, seat.Room.ID, got.Room.ID)
	}

	w := do(t, h, http.MethodGet, "/rooms/NOPE42", nil, "")
	assertError(t, w, http.StatusNotFound, "room_not_found")

	w = do(t, h, http.MethodGet, "/rooms", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct{ Rooms []models.Room }](t, w)
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, seat.Room.ID, list.Rooms[0].ID)

	w = do(t, h, http.MethodGet, "/rooms?status=playing", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[struct{ Rooms []models.Room }](t, w).Rooms)

	w = do(t, h, http.MethodGet, "/rooms?status=bogus", nil, "")
	assertError(t, w, http.StatusBadRequest, "invalid_input")
}

func TestJoinRoomHandler(t *testing.T) {
	h := newTestServer(t).Routes()
	seat := createRoom(t, h, "trivia", "An", map[string]any{"settings": map[string]any{"maxPlayers": 3}})

	joined := joinRoom(t, h, seat.Room.Code, "an")
	assert.Len(t, joined.Room.Players, 2)
	assert.NotEqual(t, seat.PlayerID, joined.PlayerID)
	assert.NotEmpty(t, joined.Token)

	w := do(t, h, http.MethodPost, "/rooms/"+seat.Room.ID+"/join", map[string]any{"playerName": "An"}, "")
	assertError(t, w, http.StatusConflict, "duplicate_name")

	joinRoom(t, h, seat.Room.ID, "Minh")
	w = do(t, h, http.MethodPost, "/rooms/"+seat.Room.ID+"/join", map[string]any{"playerName": "Hoa"}, "")
	assertError(t, w, http.StatusConflict, "room_full")

	w = do(t, h, http.MethodPost, "/rooms/NOPE42/join", map[string]any{"playerName": "Hoa"}, "")
	assertError(t, w, http.StatusNotFound, "room_not_found")
}

func TestJoinRoomPasscode(t *testing.T) {
	h := newTestServer(t).Routes()
	seat := createRoom(t, h, "character", "Lan", map[string]any{"passcode": "1930"})
	assert.True(t, seat.Room.HasPasscode)

	w := do(t, h, http.MethodPost, "/rooms/"+seat.Room.Code+"/join", map[string]any{"playerName": "Minh", "passcode": "1929"}, "")
	assertError(t, w, http.StatusForbidden, "wrong_passcode")

	w = do(t, h, http.MethodPost, "/rooms/"+seat.Room.Code+"/join", map[string]any{"playerName": "Minh", "passcode": "1930"}, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestSessionChecks(t *testing.T) {
	h := newTestServer(t).Routes()
	a := createRoom(t, h, "trivia", "Lan", nil)
	b := createRoom(t, h, "trivia", "Minh", nil)

	w := do(t, h, http.MethodPost, "/rooms/"+a.Room.ID+"/ready", map[string]any{"isReady": true}, "")
	assertError(t, w, http.StatusUnauthorized, "unauthorized")

	w = do(t, h, http.MethodPost, "/rooms/"+a.Room.ID+"/ready", map[string]any{"isReady": true}, "garbage")
	assertError(t, w, http.StatusUnauthorized, "unauthorized")

	w = do(t, h, http.MethodPost, "/rooms/"+a.Room.ID+"/ready", map[string]any{"isReady": true}, b.Token)
	assertError(t, w, http.StatusForbidden, "wrong_room")

	// the auth_token cookie works as well as the bearer header
	req := httptest.NewRequest(http.MethodPost, "/rooms/"+a.Room.ID+"/ready", strings.NewReader(`{"isReady":true}`))
	req.Header.Set("Cookie", "theme=dark; auth_token="+a.Token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestReadyAndLeaveHandlers(t *testing.T) {
	h := newTestServer(t).Routes()
	host := createRoom(t, h, "matching", "Lan", nil)
	guest := joinRoom(t, h, host.Room.Code, "Minh")

	w := do(t, h, http.MethodPost, "/rooms/"+host.Room.ID+"/ready", map[string]any{}, guest.Token)
	assertError(t, w, http.StatusBadRequest, "invalid_input")

	w = do(t, h, http.MethodPost, "/rooms/"+host.Room.ID+"/ready", map[string]any{"isReady": true}, guest.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	v := decode[struct{ Room models.Room }](t, w).Room
	p, _ := v.Player(guest.PlayerID)
	assert.True(t, p.IsReady)
	assert.False(t, v.AllReady)
	assert.Equal(t, models.StatusWaiting, v.Status)

	w = do(t, h, http.MethodPost, "/rooms/"+host.Room.ID+"/leave", nil, host.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	v = decode[struct{ Room models.Room }](t, w).Room
	assert.Equal(t, guest.PlayerID, v.HostID)

	w = do(t, h, http.MethodPost, "/rooms/"+host.Room.ID+"/leave", nil, guest.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"room":null}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/rooms/"+host.Room.Code, nil, "")
	assertError(t, w, http.StatusNotFound, "room_not_found")
}

func TestRoundFlowAndLeaderboard(t *testing.T) {
	s := newTestServer(t)
	h := s.Routes()
	host := createRoom(t, h, "trivia", "Lan", map[string]any{"settings": map[string]any{"rounds": 1, "timeLimit": 30}})
	guest := joinRoom(t, h, host.Room.Code, "Minh")
	roomPath := "/rooms/" + host.Room.ID

	w := do(t, h, http.MethodPost, roomPath+"/answers", map[string]any{"answer": map[string]any{"selected": 0}}, guest.Token)
	assertError(t, w, http.StatusConflict, "no_active_round")

	w = do(t, h, http.MethodPost, roomPath+"/rounds", map[string]any{}, guest.Token)
	assertError(t, w, http.StatusForbidden, "not_host")

	w = do(t, h, http.MethodPost, roomPath+"/rounds", map[string]any{"gameType": "timeline"}, host.Token)
	assertError(t, w, http.StatusBadRequest, "game_type_mismatch")

	w = do(t, h, http.MethodPost, roomPath+"/rounds", map[string]any{"round": 1}, host.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), `"correct"`, "answer key must not leak")
	started := decode[struct{ Round models.RoundData }](t, w).Round
	require.NotNil(t, started.Trivia)
	assert.Len(t, started.Trivia.Options, 4)

	v, err := s.Rooms.Get(host.Room.ID)
	require.NoError(t, err)
	correct := v.GameData.Trivia.Correct
	wrong := (correct + 1) % len(v.GameData.Trivia.Options)

	w = do(t, h, http.MethodPost, roomPath+"/answers", map[string]any{"gameType": "trivia", "answer": map[string]any{"selected": correct}}, host.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[room.SubmitResult](t, w)
	assert.True(t, res.Correct)
	assert.Greater(t, res.Score, 0)
	assert.Equal(t, res.Score, res.TotalScore)

	w = do(t, h, http.MethodPost, roomPath+"/answers", map[string]any{"answer": map[string]any{"selected": correct}}, host.Token)
	assertError(t, w, http.StatusConflict, "already_answered")

	w = do(t, h, http.MethodPost, roomPath+"/answers", map[string]any{"answer": map[string]any{"selected": wrong}}, guest.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0, decode[room.SubmitResult](t, w).Score)

	w = do(t, h, http.MethodPost, roomPath+"/finish", nil, guest.Token)
	assertError(t, w, http.StatusForbidden, "not_host")

	w = do(t, h, http.MethodPost, roomPath+"/finish", nil, host.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[struct{ Result models.GameResult }](t, w).Result
	require.Len(t, result.Players, 2)
	assert.Equal(t, host.PlayerID, result.Players[0].PlayerID)
	assert.Equal(t, 1, result.Players[0].Rank)

	w = do(t, h, http.MethodPost, roomPath+"/status", map[string]any{"status": "waiting"}, host.Token)
	assertError(t, w, http.StatusConflict, "invalid_transition")

	w = do(t, h, http.MethodGet, "/leaderboard/trivia?limit=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	board := decode[leaderboardResponse](t, w)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, host.PlayerID, board.Entries[0].PlayerID)
	assert.Equal(t, 1, board.Entries[0].Wins)
	assert.Equal(t, 1.0, board.Entries[0].WinRate)
	assert.Equal(t, 2, board.Entries[1].Rank)
}

func TestLeaderboardHandlerValidation(t *testing.T) {
	h := newTestServer(t).Routes()

	w := do(t, h, http.MethodGet, "/leaderboard/matching", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"gameType":"matching","entries":[]}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/leaderboard/chess", nil, "")
	assertError(t, w, http.StatusBadRequest, "invalid_input")

	w = do(t, h, http.MethodGet, "/leaderboard/trivia?limit=ten", nil, "")
	assertError(t, w, http.StatusBadRequest, "invalid_input")
}

func TestStatusHandler(t *testing.T) {
	h := newTestServer(t).Routes()
	host := createRoom(t, h, "timeline", "Lan", nil)

	w := do(t, h, http.MethodPost, "/rooms/"+host.Room.ID+"/status", map[string]any{"status": "playing"}, host.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusPlaying, decode[struct{ Room models.Room }](t, w).Room.Status)

	w = do(t, h, http.MethodPost, "/rooms/"+host.Room.ID+"/status", map[string]any{"status": "paused"}, host.Token)
	assertError(t, w, http.StatusBadRequest, "invalid_input")
	w = do(t, h, http.MethodPost, "/rooms/"+host.Room.ID+"/status", map[string]any{"status": "finished"}, host.Token)
	assertError(t, w, http.StatusConflict, "invalid_transition")

	w = do(t, h, http.MethodPost, "/rooms/"+host.Room.ID+"/finish", nil, host.Token)
	assertError(t, w, http.StatusConflict, "invalid_transition")

	w = do(t, h, http.MethodGet, "/leaderboard/timeline", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[leaderboardResponse](t, w).Entries)
}
