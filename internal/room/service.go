// internal/room/service.go
package room

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/lichsuviet/minigames/internal/apperr"
	"github.com/lichsuviet/minigames/internal/auth"
	"github.com/lichsuviet/minigames/internal/content"
	"github.com/lichsuviet/minigames/internal/hub"
	"github.com/lichsuviet/minigames/internal/models"
	"github.com/lichsuviet/minigames/internal/results"
)

// MaxNameLength caps player display names, counted in runes.
const MaxNameLength = 32

// RoundGenerator builds round payloads. *content.Generator satisfies it.
type RoundGenerator interface {
	Generate(req content.Request) (*models.RoundData, error)
}

// Publisher fans out room events. *hub.Hub satisfies it.
type Publisher interface {
	Publish(roomID, eventType string, payload any)
	CloseRoom(roomID string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, string, any) {}
func (nopPublisher) CloseRoom(string)            {}

// Options wires a Service. Zero fields get in-memory defaults.
type Options struct {
	Store     Store
	Generator RoundGenerator
	Results   results.Log
	Events    Publisher
	Clock     func() time.Time
	// NewCode overrides join-code generation.
	NewCode func() (string, error)
	// DefaultMaxPlayers applies when a room is created without a capacity.
	DefaultMaxPlayers int
}

// Service implements the room roster and round lifecycle on top of a Store.
type Service struct {
	store      Store
	gen        RoundGenerator
	results    results.Log
	events     Publisher
	now        func() time.Time
	newCode    func() (string, error)
	maxPlayers int
}

func NewService(opts Options) *Service {
	s := &Service{
		store:      opts.Store,
		gen:        opts.Generator,
		results:    opts.Results,
		events:     opts.Events,
		now:        opts.Clock,
		newCode:    opts.NewCode,
		maxPlayers: opts.DefaultMaxPlayers,
	}
	if s.store == nil {
		s.store = NewMemoryStore()
	}
	if s.results == nil {
		s.results = results.NewMemoryLog()
	}
	if s.events == nil {
		s.events = nopPublisher{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newCode == nil {
		s.newCode = GenerateCode
	}
	if s.maxPlayers <= 0 {
		s.maxPlayers = models.DefaultMaxPlayers
	}
	return s
}

// Results exposes the result log the service appends to.
func (s *Service) Results() results.Log {
	return s.results
}

// CreateOptions are the optional parts of CreateRoom.
type CreateOptions struct {
	// Passcode, if set, must be presented by every joiner.
	Passcode string
	// PlayerID lets a returning client keep its leaderboard identity.
	PlayerID string
}

// JoinOptions are the optional parts of Join.
type JoinOptions struct {
	Passcode string
	PlayerID string
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Invalid("player name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", apperr.Invalid("player name is longer than %d characters", MaxNameLength)
	}
	return name, nil
}

func playerID(supplied string) (string, error) {
	if supplied == "" {
		return uuid.NewString(), nil
	}
	id, err := uuid.Parse(supplied)
	if err != nil {
		return "", apperr.Invalid("player id must be a UUID")
	}
	return id.String(), nil
}

// CreateRoom makes a new waiting room with the caller seated as host.
func (s *Service) CreateRoom(gameType models.GameType, hostName string, settings models.Settings, opts CreateOptions) (models.Room, string, error) {
	if !gameType.Valid() {
		return models.Room{}, "", apperr.Invalid("unknown game type %q", gameType)
	}
	name, err := validateName(hostName)
	if err != nil {
		return models.Room{}, "", err
	}
	hostID, err := playerID(opts.PlayerID)
	if err != nil {
		return models.Room{}, "", err
	}
	if settings.MaxPlayers == 0 {
		settings.MaxPlayers = s.maxPlayers
	}

	var hash string
	if opts.Passcode != "" {
		hash, err = auth.HashPasscode(opts.Passcode, auth.PasscodeParams)
		if err != nil {
			return models.Room{}, "", fmt.Errorf("failed to hash passcode: %w", err)
		}
	}

	now := s.now()
	r := &Room{
		id:           uuid.NewString(),
		gameType:     gameType,
		passcodeHash: hash,
		createdAt:    now,
		hostID:       hostID,
		status:       models.StatusWaiting,
		settings:     settings.Normalize(gameType),
		players: []models.Player{{
			ID:       hostID,
			Name:     name,
			IsHost:   true,
			JoinedAt: now,
		}},
		answered: make(map[string]bool),
	}

	for attempt := 1; ; attempt++ {
		r.code, err = s.newCode()
		if err != nil {
			return models.Room{}, "", err
		}
		err = s.store.Create(r)
		if err == nil {
			break
		}
		if !errors.Is(err, apperr.ErrCodeCollision) || attempt >= maxCodeAttempts {
			return models.Room{}, "", err
		}
		log.WithFields(log.Fields{"code": r.code, "attempt": attempt}).Warn("room code collision, retrying")
	}

	log.WithFields(log.Fields{
		"room":     r.id,
		"code":     r.code,
		"gameType": gameType,
		"host":     hostID,
	}).Info("room created")
	return r.View(), hostID, nil
}

// lookup resolves a room id or join code.
func (s *Service) lookup(ref string) (*Room, error) {
	if r, ok := s.store.ByID(ref); ok {
		return r, nil
	}
	if r, ok := s.store.ByCode(ref); ok {
		return r, nil
	}
	return nil, apperr.ErrRoomNotFound
}

// Get returns a snapshot of the room with the given id or code.
func (s *Service) Get(ref string) (models.Room, error) {
	r, err := s.lookup(ref)
	if err != nil {
		return models.Room{}, err
	}
	v := r.View()
	if len(v.Players) == 0 {
		return models.Room{}, apperr.ErrRoomNotFound
	}
	return v, nil
}

// List returns snapshots of live rooms, optionally filtered by status, oldest first.
func (s *Service) List(status models.Status) []models.Room {
	rooms := s.store.List()
	out := make([]models.Room, 0, len(rooms))
	for _, r := range rooms {
		v := r.View()
		if len(v.Players) == 0 {
			continue
		}
		if status != "" && v.Status != status {
			continue
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Join seats a new player in the room named by id or code.
func (s *Service) Join(ref, playerName string, opts JoinOptions) (models.Room, string, error) {
	name, err := validateName(playerName)
	if err != nil {
		return models.Room{}, "", err
	}
	pid, err := playerID(opts.PlayerID)
	if err != nil {
		return models.Room{}, "", err
	}

	r, err := s.lookup(ref)
	if err != nil {
		return models.Room{}, "", err
	}
	if r.passcodeHash != "" {
		ok, err := auth.ComparePasscode(opts.Passcode, r.passcodeHash)
		if err != nil {
			return models.Room{}, "", fmt.Errorf("failed to check passcode: %w", err)
		}
		if !ok {
			return models.Room{}, "", apperr.ErrWrongPasscode
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleted {
		return models.Room{}, "", apperr.ErrRoomNotFound
	}
	if r.status != models.StatusWaiting {
		return models.Room{}, "", apperr.ErrRoomNotJoinable
	}
	if len(r.players) >= r.settings.MaxPlayers {
		return models.Room{}, "", apperr.ErrRoomFull
	}
	if r.hasNameUnsafe(name) {
		return models.Room{}, "", apperr.ErrDuplicateName
	}
	if r.indexOfUnsafe(pid) >= 0 {
		return models.Room{}, "", apperr.ErrDuplicatePlayer
	}

	p := models.Player{ID: pid, Name: name, JoinedAt: s.now()}
	r.players = append(r.players, p)

	log.WithFields(log.Fields{"room": r.id, "player": pid, "name": name}).Info("player joined")
	s.events.Publish(r.id, hub.EventPlayerJoined, map[string]any{"player": p})
	return r.viewUnsafe(), pid, nil
}

// Leave removes a player. When the last player leaves the room is deleted
// and a nil room is returned.
func (s *Service) Leave(roomID, playerID string) (*models.Room, error) {
	r, ok := s.store.ByID(roomID)
	if !ok {
		return nil, apperr.ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleted {
		return nil, apperr.ErrRoomNotFound
	}
	idx := r.indexOfUnsafe(playerID)
	if idx < 0 {
		return nil, apperr.ErrPlayerNotFound
	}
	wasHost := r.players[idx].IsHost
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	delete(r.answered, playerID)

	fields := log.Fields{"room": r.id, "player": playerID}
	if len(r.players) == 0 {
		r.deleted = true
		s.store.Delete(r.id)
		log.WithFields(fields).Info("last player left, room deleted")
		s.events.Publish(r.id, hub.EventPlayerLeft, map[string]any{"playerId": playerID})
		s.events.CloseRoom(r.id)
		return nil, nil
	}

	s.events.Publish(r.id, hub.EventPlayerLeft, map[string]any{"playerId": playerID})
	if wasHost {
		newHost := r.promoteHostUnsafe()
		fields["newHost"] = newHost
		s.events.Publish(r.id, hub.EventHostChanged, map[string]any{"hostId": newHost})
	}
	log.WithFields(fields).Info("player left")

	v := r.viewUnsafe()
	return &v, nil
}

// SetReady sets a player's ready flag. It never changes the room status.
func (s *Service) SetReady(roomID, playerID string, ready bool) (models.Room, error) {
	r, ok := s.store.ByID(roomID)
	if !ok {
		return models.Room{}, apperr.ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleted {
		return models.Room{}, apperr.ErrRoomNotFound
	}
	idx := r.indexOfUnsafe(playerID)
	if idx < 0 {
		return models.Room{}, apperr.ErrPlayerNotFound
	}
	r.players[idx].IsReady = ready

	allReady := r.allReadyUnsafe()
	s.events.Publish(r.id, hub.EventReadyUpdate, map[string]any{
		"playerId": playerID,
		"isReady":  ready,
		"allReady": allReady,
	})
	return r.viewUnsafe(), nil
}
