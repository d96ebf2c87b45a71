// internal/content/bank.go
package content

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/lichsuviet/minigames/internal/models"
)

//go:embed data/*.json
var dataFS embed.FS

// Event is a dated historical event. Date is YYYY-MM-DD so it sorts lexically.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Character is a historical figure tied to the event they are best known for.
type Character struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	EventID     string   `json:"eventId"`
	Description string   `json:"description"`
	Hints       []string `json:"hints"`
}

type Question struct {
	ID         string            `json:"id"`
	Difficulty models.Difficulty `json:"difficulty"`
	Question   string            `json:"question"`
	Options    []string          `json:"options"`
	Correct    int               `json:"correct"`
}

// Bank is the full content set rounds are drawn from.
type Bank struct {
	Events     []Event
	Characters []Character
	Questions  []Question

	eventByID map[string]Event
}

// LoadBank parses the embedded content files and checks their cross references.
func LoadBank() (*Bank, error) {
	b := &Bank{}
	if err := readJSON("data/events.json", &b.Events); err != nil {
		return nil, err
	}
	if err := readJSON("data/characters.json", &b.Characters); err != nil {
		return nil, err
	}
	if err := readJSON("data/questions.json", &b.Questions); err != nil {
		return nil, err
	}
	if err := b.index(); err != nil {
		return nil, err
	}
	return b, nil
}

// NewBank builds a bank from in-memory content, mainly for tests.
func NewBank(events []Event, characters []Character, questions []Question) (*Bank, error) {
	b := &Bank{Events: events, Characters: characters, Questions: questions}
	if err := b.index(); err != nil {
		return nil, err
	}
	return b, nil
}

func readJSON(name string, v any) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (b *Bank) index() error {
	b.eventByID = make(map[string]Event, len(b.Events))
	for _, e := range b.Events {
		if _, dup := b.eventByID[e.ID]; dup {
			return fmt.Errorf("duplicate event id %q", e.ID)
		}
		b.eventByID[e.ID] = e
	}
	for _, c := range b.Characters {
		if _, ok := b.eventByID[c.EventID]; !ok {
			return fmt.Errorf("character %q references unknown event %q", c.ID, c.EventID)
		}
	}
	for _, q := range b.Questions {
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return fmt.Errorf("question %q has correct index %d out of range", q.ID, q.Correct)
		}
	}
	return nil
}

// Event looks up an event by id.
func (b *Bank) Event(id string) (Event, bool) {
	e, ok := b.eventByID[id]
	return e, ok
}
