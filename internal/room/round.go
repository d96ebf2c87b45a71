// internal/room/round.go
package room

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lichsuviet/minigames/internal/apperr"
	"github.com/lichsuviet/minigames/internal/content"
	"github.com/lichsuviet/minigames/internal/hub"
	"github.com/lichsuviet/minigames/internal/leaderboard"
	"github.com/lichsuviet/minigames/internal/models"
	"github.com/lichsuviet/minigames/internal/scoring"
)

// SubmitResult is what a player gets back for one answer.
type SubmitResult struct {
	scoring.Result
	Round      int `json:"round"`
	TotalScore int `json:"totalScore"`
}

// hostCheckUnsafe checks that callerID is seated and holds the host seat. Assumes lock is held.
func (r *Room) hostCheckUnsafe(callerID string) error {
	if r.deleted {
		return apperr.ErrRoomNotFound
	}
	if r.indexOfUnsafe(callerID) < 0 {
		return apperr.ErrPlayerNotFound
	}
	if callerID != r.hostID {
		return apperr.ErrNotHost
	}
	return nil
}

// StartRound generates the next round and moves the room to playing.
// round <= 0 means "the one after the current round". An empty gameType or
// difficulty falls back to the room's own.
func (s *Service) StartRound(roomID, callerID string, gameType models.GameType, difficulty models.Difficulty, round int) (models.RoundData, error) {
	r, ok := s.store.ByID(roomID)
	if !ok {
		return models.RoundData{}, apperr.ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.hostCheckUnsafe(callerID); err != nil {
		return models.RoundData{}, err
	}
	if gameType == "" {
		gameType = r.gameType
	}
	if gameType != r.gameType {
		return models.RoundData{}, apperr.ErrGameTypeMismatch
	}
	if !r.status.CanTransition(models.StatusPlaying) {
		return models.RoundData{}, apperr.ErrInvalidTransition
	}
	if round <= 0 {
		round = r.lastRound + 1
	}
	if round <= r.lastRound {
		return models.RoundData{}, apperr.Invalid("round %d was already played; next is %d", round, r.lastRound+1)
	}
	if round > r.settings.Rounds {
		return models.RoundData{}, apperr.Invalid("round %d is outside 1..%d", round, r.settings.Rounds)
	}
	if difficulty == "" {
		difficulty = r.settings.Difficulty
	}
	if s.gen == nil {
		return models.RoundData{}, fmt.Errorf("no round generator configured")
	}

	rd, err := s.gen.Generate(content.Request{
		GameType:   gameType,
		Difficulty: difficulty,
		Round:      round,
		TimeLimit:  r.settings.TimeLimit,
		Exclude:    r.used,
	})
	if err != nil {
		return models.RoundData{}, fmt.Errorf("failed to generate %s round: %w", gameType, err)
	}
	rd.StartedAt = s.now()

	r.round = rd
	r.lastRound = round
	r.answered = make(map[string]bool)
	r.status = models.StatusPlaying
	if id := content.ContentID(rd); id != "" {
		r.used = append(r.used, id)
	}

	log.WithFields(log.Fields{"room": r.id, "round": round, "gameType": gameType}).Info("round started")
	s.events.Publish(r.id, hub.EventRoundStarted, *rd)
	return *rd, nil
}

// SubmitAnswer grades a player's answer to the active round and adds the score
// to their total. Elapsed time runs from startTime when it is set, otherwise
// from the recorded round start.
func (s *Service) SubmitAnswer(roomID, playerID string, gameType models.GameType, answer models.Answer, startTime time.Time) (SubmitResult, error) {
	r, ok := s.store.ByID(roomID)
	if !ok {
		return SubmitResult{}, apperr.ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleted {
		return SubmitResult{}, apperr.ErrRoomNotFound
	}
	if r.round == nil || r.status != models.StatusPlaying {
		return SubmitResult{}, apperr.ErrNoActiveRound
	}
	if gameType != "" && gameType != r.round.GameType {
		return SubmitResult{}, apperr.ErrGameTypeMismatch
	}
	idx := r.indexOfUnsafe(playerID)
	if idx < 0 {
		return SubmitResult{}, apperr.ErrPlayerNotFound
	}
	if r.answered[playerID] {
		return SubmitResult{}, apperr.ErrAlreadyAnswered
	}

	start := r.round.StartedAt
	if !startTime.IsZero() {
		start = startTime
	}
	res, err := scoring.Grade(r.round, answer, scoring.Elapsed(start, s.now()))
	if err != nil {
		return SubmitResult{}, err
	}

	r.answered[playerID] = true
	r.players[idx].Score += res.Score
	total := r.players[idx].Score

	log.WithFields(log.Fields{
		"room":   r.id,
		"player": playerID,
		"round":  r.round.Round,
		"score":  res.Score,
	}).Debug("answer scored")
	s.events.Publish(r.id, hub.EventAnswerScored, map[string]any{
		"playerId":   playerID,
		"round":      r.round.Round,
		"score":      res.Score,
		"totalScore": total,
		"answered":   len(r.answered),
	})
	return SubmitResult{Result: res, Round: r.round.Round, TotalScore: total}, nil
}

// FinishGame ranks the players, records the result and closes the game.
// Nothing changes if the result cannot be recorded.
func (s *Service) FinishGame(ctx context.Context, roomID, callerID string) (models.GameResult, error) {
	r, ok := s.store.ByID(roomID)
	if !ok {
		return models.GameResult{}, apperr.ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.hostCheckUnsafe(callerID); err != nil {
		return models.GameResult{}, err
	}
	if r.status == models.StatusFinished {
		return models.GameResult{}, apperr.ErrInvalidTransition
	}
	if r.lastRound == 0 {
		return models.GameResult{}, fmt.Errorf("%w: no round has been played", apperr.ErrInvalidTransition)
	}

	res := models.GameResult{
		RoomID:     r.id,
		GameType:   r.gameType,
		Players:    leaderboard.RankPlayers(r.players),
		FinishedAt: s.now(),
	}
	if err := s.results.Append(ctx, res); err != nil {
		return models.GameResult{}, fmt.Errorf("failed to record game result: %w", err)
	}

	r.status = models.StatusFinished
	r.round = nil
	r.answered = make(map[string]bool)

	log.WithFields(log.Fields{"room": r.id, "players": len(res.Players)}).Info("game finished")
	s.events.Publish(r.id, hub.EventGameFinished, res)
	return res, nil
}

// UpdateStatus moves the room to next if that keeps the lifecycle monotonic.
// Only the host may change status. Finishing goes through FinishGame so the
// result is always recorded.
func (s *Service) UpdateStatus(roomID, callerID string, next models.Status) (models.Room, error) {
	switch next {
	case models.StatusWaiting, models.StatusPlaying, models.StatusFinished:
	default:
		return models.Room{}, apperr.Invalid("unknown status %q", next)
	}
	r, ok := s.store.ByID(roomID)
	if !ok {
		return models.Room{}, apperr.ErrRoomNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.hostCheckUnsafe(callerID); err != nil {
		return models.Room{}, err
	}
	if next == models.StatusFinished {
		return models.Room{}, fmt.Errorf("%w: use finish to end the game", apperr.ErrInvalidTransition)
	}
	if !r.status.CanTransition(next) {
		return models.Room{}, apperr.ErrInvalidTransition
	}
	if next != r.status {
		r.status = next
		log.WithFields(log.Fields{"room": r.id, "status": next}).Info("room status changed")
		s.events.Publish(r.id, hub.EventStatusChanged, map[string]any{"status": next})
	}
	return r.viewUnsafe(), nil
}
