package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/lichsuviet/minigames/internal/apperr"
	"github.com/lichsuviet/minigames/internal/auth"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// writeError renders err. Typed errors keep their code; anything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	e, ok := apperr.As(err)
	if !ok {
		log.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error", Message: "internal server error"})
		return
	}
	writeJSON(w, statusFor(e.Kind), errorBody{Error: e.Code, Message: err.Error()})
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Message: msg})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Invalid("malformed JSON body: %v", err)
	}
	return nil
}

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// sessionToken finds the caller's token: Authorization bearer first, then the
// auth_token cookie, then the token query parameter (browsers cannot set
// headers on websocket upgrades).
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if token := extractCookieToken(r.Header.Get("Cookie"), "auth_token"); token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}

// authorize checks the caller holds a session for roomID. It writes the
// error response itself and returns ok=false on failure.
func authorize(w http.ResponseWriter, r *http.Request, sessions *auth.Issuer, roomID string) (*auth.Claims, bool) {
	token := sessionToken(r)
	if token == "" {
		writeUnauthorized(w, "missing session token")
		return nil, false
	}
	claims, err := sessions.Verify(token)
	if err != nil {
		writeUnauthorized(w, "invalid session token")
		return nil, false
	}
	if claims.RoomID != roomID {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "wrong_room", Message: "session token belongs to another room"})
		return nil, false
	}
	return claims, true
}

// setSessionCookie mirrors the token into the auth_token cookie.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}
