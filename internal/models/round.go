// internal/models/round.go
package models

import "time"

// RoundData is the payload of the active round. Exactly one of the variant
// pointers is set, and it must be the one named by GameType.
// Answer keys are tagged json:"-" so they never reach clients.
type RoundData struct {
	GameType   GameType   `json:"gameType"`
	Round      int        `json:"round"`
	Difficulty Difficulty `json:"difficulty"`
	TimeLimit  int        `json:"timeLimit"`
	StartedAt  time.Time  `json:"startedAt"`

	Timeline  *TimelineRound  `json:"timeline,omitempty"`
	Matching  *MatchingRound  `json:"matching,omitempty"`
	Trivia    *TriviaRound    `json:"trivia,omitempty"`
	Character *CharacterRound `json:"character,omitempty"`
}

// Valid reports whether the variant set matches GameType.
func (rd *RoundData) Valid() bool {
	if rd == nil {
		return false
	}
	set := 0
	for _, ok := range []bool{rd.Timeline != nil, rd.Matching != nil, rd.Trivia != nil, rd.Character != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return false
	}
	switch rd.GameType {
	case GameTimeline:
		return rd.Timeline != nil
	case GameMatching:
		return rd.Matching != nil
	case GameTrivia:
		return rd.Trivia != nil
	case GameCharacter:
		return rd.Character != nil
	}
	return false
}

// TimelineItem is one event to place on the timeline. The year is withheld.
type TimelineItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// TimelineRound presents shuffled events; Order is the chronological answer key.
type TimelineRound struct {
	Items []TimelineItem `json:"items"`
	Order []string       `json:"-"`
}

type MatchCharacter struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MatchEvent struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// MatchingRound presents shuffled characters and events; Pairs is the answer key.
type MatchingRound struct {
	Characters []MatchCharacter `json:"characters"`
	Events     []MatchEvent     `json:"events"`
	Pairs      []Match          `json:"-"`
}

// TriviaRound is a single multiple-choice question.
type TriviaRound struct {
	QuestionID string   `json:"questionId"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Correct    int      `json:"-"`
}

// CharacterRound asks players to name the character described.
type CharacterRound struct {
	CharacterID string   `json:"-"`
	Description string   `json:"description"`
	Hints       []string `json:"hints,omitempty"`
	Options     []string `json:"options"`
	Correct     int      `json:"-"`
}

// Match pairs a character with an event.
type Match struct {
	CharacterID string `json:"characterId"`
	EventID     string `json:"eventId"`
}

// Answer is a player's submission. Which field is read depends on the game type:
// Order for timeline, Matches for matching, Selected for trivia and character.
type Answer struct {
	Order    []string `json:"order,omitempty"`
	Matches  []Match  `json:"matches,omitempty"`
	Selected *int     `json:"selected,omitempty"`
}
