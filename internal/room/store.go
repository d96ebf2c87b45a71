// internal/room/store.go
package room

import (
	"strings"
	"sync"

	"github.com/lichsuviet/minigames/internal/apperr"
	log "github.com/sirupsen/logrus"
)

// Store holds the live rooms, addressable by id and by join code.
type Store interface {
	// Create adds r. It fails with apperr.ErrCodeCollision if r's code is live.
	Create(r *Room) error
	ByID(id string) (*Room, bool)
	// ByCode is case-insensitive.
	ByCode(code string) (*Room, bool)
	// Delete removes the room and its code together. It reports whether the room existed.
	Delete(id string) bool
	List() []*Room
}

// MemoryStore manages active rooms in memory.
// The id table and the code index share one mutex so they never disagree.
type MemoryStore struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	byCode map[string]string
}

// NewMemoryStore initializes and returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:  make(map[string]*Room),
		byCode: make(map[string]string),
	}
}

func (s *MemoryStore) Create(r *Room) error {
	code := normalizeCode(r.code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byCode[code]; exists {
		return apperr.ErrCodeCollision
	}
	if _, exists := s.rooms[r.id]; exists {
		log.WithField("room", r.id).Warn("attempted to add a room that already exists")
		return apperr.ErrCodeCollision
	}
	s.rooms[r.id] = r
	s.byCode[code] = r.id
	return nil
}

func (s *MemoryStore) ByID(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

func (s *MemoryStore) ByCode(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byCode[normalizeCode(code)]
	if !ok {
		return nil, false
	}
	r, ok := s.rooms[id]
	return r, ok
}

func (s *MemoryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return false
	}
	delete(s.rooms, id)
	code := normalizeCode(r.code)
	if s.byCode[code] == id {
		delete(s.byCode, code)
	}
	return true
}

// List returns the live rooms in no particular order.
func (s *MemoryStore) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
