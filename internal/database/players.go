package database

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Shimizu-Technology/playertrack-api/internal/models"
)

// errEmptyName rejects players without a name (NOT NULL + non-empty).
var errEmptyName = errors.New("player name must not be empty")

// EnsurePlayer returns the id of the player with this exact name, creating
// the player if needed. Concurrent callers with the same name get the same id.
func (db *DB) EnsurePlayer(ctx context.Context, name string) (int64, error) {
	return ensurePlayer(ctx, db.DB, name)
}

// ensurePlayer works on either the pool or an open transaction.
// The insert is a no-op when the name exists, so the select always finds
// exactly one row.
func ensurePlayer(ctx context.Context, q sqlx.ExtContext, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, storeErr("ensure player", errEmptyName)
	}

	if _, err := q.ExecContext(ctx,
		q.Rebind(`INSERT INTO player (name) VALUES (?) ON CONFLICT (name) DO NOTHING`), name); err != nil {
		return 0, storeErr("insert player", err)
	}

	var id int64
	if err := sqlx.GetContext(ctx, q, &id, q.Rebind(`SELECT id FROM player WHERE name = ?`), name); err != nil {
		return 0, storeErr("lookup player", err)
	}
	return id, nil
}

// ListPlayers returns the player registry ordered by id.
func (db *DB) ListPlayers(ctx context.Context) ([]models.Player, error) {
	var players []models.Player
	if err := db.SelectContext(ctx, &players, `SELECT id, name FROM player ORDER BY id`); err != nil {
		return nil, storeErr("list players", err)
	}
	return players, nil
}
