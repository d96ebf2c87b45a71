package results

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lichsuviet/minigames/internal/models"
)

// PostgresLog stores results in game_results / game_result_players
// (see database.Migrate for the schema).
type PostgresLog struct {
	db *pgxpool.Pool
}

func NewPostgresLog(db *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{db: db}
}

// Append writes the result header and every player line in one transaction.
func (l *PostgresLog) Append(ctx context.Context, res models.GameResult) error {
	finished := res.FinishedAt
	if finished.IsZero() {
		finished = time.Now().UTC()
	}
	err := pgx.BeginTxFunc(ctx, l.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var resultID int64
		q := `
			INSERT INTO game_results (room_id, game_type, finished_at)
			VALUES ($1, $2, $3)
			RETURNING id
		`
		if err := tx.QueryRow(ctx, q, res.RoomID, string(res.GameType), finished).Scan(&resultID); err != nil {
			return err
		}
		for i, p := range res.Players {
			q := `
				INSERT INTO game_result_players (result_id, position, player_id, name, final_score, rank)
				VALUES ($1, $2, $3, $4, $5, $6)
			`
			if _, err := tx.Exec(ctx, q, resultID, i, p.PlayerID, p.Name, p.FinalScore, p.Rank); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx insert game result: %w", err)
	}
	return nil
}

// List returns all results for gameType ordered by finish time.
func (l *PostgresLog) List(ctx context.Context, gameType models.GameType) ([]models.GameResult, error) {
	q := `
		SELECT r.id, r.room_id, r.finished_at, p.player_id, p.name, p.final_score, p.rank
		FROM game_results r
		JOIN game_result_players p ON p.result_id = r.id
		WHERE r.game_type = $1
		ORDER BY r.finished_at, r.id, p.position
	`
	rows, err := l.db.Query(ctx, q, string(gameType))
	if err != nil {
		return nil, fmt.Errorf("query game results: %w", err)
	}
	defer rows.Close()

	var (
		out    []models.GameResult
		lastID int64 = -1
	)
	for rows.Next() {
		var (
			id       int64
			roomID   string
			finished time.Time
			pr       models.PlayerResult
		)
		if err := rows.Scan(&id, &roomID, &finished, &pr.PlayerID, &pr.Name, &pr.FinalScore, &pr.Rank); err != nil {
			return nil, err
		}
		if id != lastID {
			out = append(out, models.GameResult{RoomID: roomID, GameType: gameType, FinishedAt: finished})
			lastID = id
		}
		cur := &out[len(out)-1]
		cur.Players = append(cur.Players, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
