// internal/content/generator.go
package content

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/lichsuviet/minigames/internal/models"
)

// CharacterOptions is the number of names offered in a character round.
const CharacterOptions = 4

// Request describes the round to build. Exclude lists question or character ids
// already used in the room so consecutive rounds do not repeat.
type Request struct {
	GameType   models.GameType
	Difficulty models.Difficulty
	Round      int
	TimeLimit  int
	Exclude    []string
}

// Generator draws rounds from a Bank. It is safe for concurrent use.
type Generator struct {
	bank *Bank

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator over bank. A nil rng is replaced by a time-seeded one.
func NewGenerator(bank *Bank, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{bank: bank, rng: rng}
}

// TimelineSize is how many events a timeline round shows at difficulty d.
func TimelineSize(d models.Difficulty) int {
	switch d {
	case models.DifficultyEasy:
		return 4
	case models.DifficultyHard:
		return 6
	default:
		return 5
	}
}

// MatchingSize is how many character/event pairs a matching round shows at difficulty d.
func MatchingSize(d models.Difficulty) int {
	switch d {
	case models.DifficultyEasy:
		return 3
	case models.DifficultyHard:
		return 5
	default:
		return 4
	}
}

// Generate builds the round payload, answer key included. StartedAt is left for the caller.
func (g *Generator) Generate(req Request) (*models.RoundData, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rd := &models.RoundData{
		GameType:   req.GameType,
		Round:      req.Round,
		Difficulty: models.ParseDifficulty(string(req.Difficulty)),
		TimeLimit:  req.TimeLimit,
	}
	exclude := make(map[string]bool, len(req.Exclude))
	for _, id := range req.Exclude {
		exclude[id] = true
	}

	var err error
	switch req.GameType {
	case models.GameTimeline:
		rd.Timeline, err = g.timeline(rd.Difficulty)
	case models.GameMatching:
		rd.Matching, err = g.matching(rd.Difficulty)
	case models.GameTrivia:
		rd.Trivia, err = g.trivia(rd.Difficulty, exclude)
	case models.GameCharacter:
		rd.Character, err = g.character(exclude)
	default:
		err = fmt.Errorf("unknown game type %q", req.GameType)
	}
	if err != nil {
		return nil, err
	}
	return rd, nil
}

// ContentID returns the id of the question or character a round was built from,
// or "" for game types that draw a fresh mix every round.
func ContentID(rd *models.RoundData) string {
	switch {
	case rd == nil:
		return ""
	case rd.Trivia != nil:
		return rd.Trivia.QuestionID
	case rd.Character != nil:
		return rd.Character.CharacterID
	}
	return ""
}

func (g *Generator) timeline(d models.Difficulty) (*models.TimelineRound, error) {
	n := TimelineSize(d)
	if len(g.bank.Events) < n {
		return nil, fmt.Errorf("content bank has %d events, need %d", len(g.bank.Events), n)
	}
	picked := make([]Event, 0, n)
	for _, i := range g.rng.Perm(len(g.bank.Events))[:n] {
		picked = append(picked, g.bank.Events[i])
	}

	items := make([]models.TimelineItem, len(picked))
	for i, e := range picked {
		items[i] = models.TimelineItem{ID: e.ID, Title: e.Title, Description: e.Description}
	}

	sort.SliceStable(picked, func(i, j int) bool {
		if picked[i].Date != picked[j].Date {
			return picked[i].Date < picked[j].Date
		}
		return picked[i].ID < picked[j].ID
	})
	order := make([]string, len(picked))
	for i, e := range picked {
		order[i] = e.ID
	}
	return &models.TimelineRound{Items: items, Order: order}, nil
}

func (g *Generator) matching(d models.Difficulty) (*models.MatchingRound, error) {
	n := MatchingSize(d)
	seenEvent := make(map[string]bool)
	var picked []Character
	for _, i := range g.rng.Perm(len(g.bank.Characters)) {
		c := g.bank.Characters[i]
		if seenEvent[c.EventID] {
			continue
		}
		seenEvent[c.EventID] = true
		picked = append(picked, c)
		if len(picked) == n {
			break
		}
	}
	if len(picked) < n {
		return nil, fmt.Errorf("content bank has %d matchable characters, need %d", len(picked), n)
	}

	round := &models.MatchingRound{
		Characters: make([]models.MatchCharacter, 0, n),
		Events:     make([]models.MatchEvent, 0, n),
		Pairs:      make([]models.Match, 0, n),
	}
	for _, c := range picked {
		e, _ := g.bank.Event(c.EventID)
		round.Characters = append(round.Characters, models.MatchCharacter{ID: c.ID, Name: c.Name})
		round.Events = append(round.Events, models.MatchEvent{ID: e.ID, Title: e.Title})
		round.Pairs = append(round.Pairs, models.Match{CharacterID: c.ID, EventID: e.ID})
	}
	// Characters come out of Perm already shuffled; events need their own order.
	g.rng.Shuffle(len(round.Events), func(i, j int) {
		round.Events[i], round.Events[j] = round.Events[j], round.Events[i]
	})
	return round, nil
}

func (g *Generator) trivia(d models.Difficulty, exclude map[string]bool) (*models.TriviaRound, error) {
	var pool, fallback []Question
	for _, q := range g.bank.Questions {
		if exclude[q.ID] {
			continue
		}
		fallback = append(fallback, q)
		if q.Difficulty == d {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		pool = fallback
	}
	if len(pool) == 0 {
		// Every question was used; start over rather than fail the round.
		pool = g.bank.Questions
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("content bank has no trivia questions")
	}
	q := pool[g.rng.Intn(len(pool))]
	return &models.TriviaRound{
		QuestionID: q.ID,
		Question:   q.Question,
		Options:    append([]string(nil), q.Options...),
		Correct:    q.Correct,
	}, nil
}

func (g *Generator) character(exclude map[string]bool) (*models.CharacterRound, error) {
	if len(g.bank.Characters) < 2 {
		return nil, fmt.Errorf("content bank has %d characters, need at least 2", len(g.bank.Characters))
	}
	var pool []Character
	for _, c := range g.bank.Characters {
		if !exclude[c.ID] {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = g.bank.Characters
	}
	answer := pool[g.rng.Intn(len(pool))]

	options := []string{answer.Name}
	for _, i := range g.rng.Perm(len(g.bank.Characters)) {
		if len(options) == CharacterOptions {
			break
		}
		if c := g.bank.Characters[i]; c.ID != answer.ID {
			options = append(options, c.Name)
		}
	}
	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	correct := 0
	for i, name := range options {
		if name == answer.Name {
			correct = i
			break
		}
	}
	return &models.CharacterRound{
		CharacterID: answer.ID,
		Description: answer.Description,
		Hints:       append([]string(nil), answer.Hints...),
		Options:     options,
		Correct:     correct,
	}, nil
}
