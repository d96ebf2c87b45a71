package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS game_results (
		id          BIGSERIAL PRIMARY KEY,
		room_id     TEXT NOT NULL,
		game_type   TEXT NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS game_results_type_finished_idx
		ON game_results (game_type, finished_at)`,
	`CREATE TABLE IF NOT EXISTS game_result_players (
		result_id   BIGINT NOT NULL REFERENCES game_results (id) ON DELETE CASCADE,
		position    INT NOT NULL,
		player_id   TEXT NOT NULL,
		name        TEXT NOT NULL,
		final_score INT NOT NULL,
		rank        INT NOT NULL,
		PRIMARY KEY (result_id, position)
	)`,
}

// Migrate creates the result log tables if they do not exist yet.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	err := pgx.BeginTxFunc(ctx, db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("migrate result tables: %w", err)
	}
	return nil
}
