package scoring

import (
	"github.com/lichsuviet/minigames/internal/apperr"
	"github.com/lichsuviet/minigames/internal/models"
)

// Grade routes an answer to the scoring function for the round's game type.
// A payload of the wrong shape is rejected before any scoring happens.
func Grade(rd *models.RoundData, a models.Answer, elapsed float64) (Result, error) {
	if !rd.Valid() {
		return Result{}, apperr.ErrNoActiveRound
	}
	switch rd.GameType {
	case models.GameTimeline:
		if len(a.Order) == 0 {
			return Result{}, apperr.Invalid("order is required for %s", rd.GameType)
		}
		return Timeline(a.Order, rd.Timeline.Order, rd.TimeLimit, elapsed), nil

	case models.GameMatching:
		if len(a.Matches) == 0 {
			return Result{}, apperr.Invalid("matches are required for %s", rd.GameType)
		}
		return Matching(a.Matches, rd.Matching.Pairs, rd.TimeLimit, elapsed), nil

	case models.GameTrivia:
		sel, err := selection(a, len(rd.Trivia.Options))
		if err != nil {
			return Result{}, err
		}
		return Trivia(sel, rd.Trivia.Correct, rd.Difficulty, rd.TimeLimit, elapsed), nil

	case models.GameCharacter:
		sel, err := selection(a, len(rd.Character.Options))
		if err != nil {
			return Result{}, err
		}
		return Character(sel, rd.Character.Correct, rd.Difficulty, rd.TimeLimit, elapsed), nil
	}
	return Result{}, apperr.Invalid("unsupported game type %q", rd.GameType)
}

func selection(a models.Answer, options int) (int, error) {
	if a.Selected == nil {
		return 0, apperr.Invalid("selected option is required")
	}
	if *a.Selected < 0 || *a.Selected >= options {
		return 0, apperr.Invalid("selected option %d out of range", *a.Selected)
	}
	return *a.Selected, nil
}
