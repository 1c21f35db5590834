package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Shimizu-Technology/playertrack-api/internal/models"
)

// IngestOutcome is what IngestReport did with one report.
type IngestOutcome struct {
	PlayerID int64
	RecordID int64 // 0 when the report was a duplicate
	Inserted bool
}

const insertPerformanceSQL = `
	INSERT INTO performance (
		player_id, date, session_type, session_detail,
		duration, total_touches, left_leg, right_leg,
		distance, sprint_distance, work_rate, accl_decl
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (player_id, date, session_type) DO NOTHING
	RETURNING id`

// InsertIfAbsent stores p unless a record with the same
// (player_id, date, session_type) exists. Existing records are never
// overwritten. On insert, p.ID is set.
func (db *DB) InsertIfAbsent(ctx context.Context, p *models.Performance) (bool, error) {
	return insertIfAbsent(ctx, db.DB, p)
}

func insertIfAbsent(ctx context.Context, q sqlx.ExtContext, p *models.Performance) (bool, error) {
	var id int64
	err := sqlx.GetContext(ctx, q, &id, q.Rebind(insertPerformanceSQL),
		p.PlayerID, p.Date, p.SessionType, p.SessionDetail,
		p.Duration, p.TotalTouches, p.LeftLeg, p.RightLeg,
		p.Distance, p.SprintDistance, p.WorkRate, p.AcclDecl,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// DO NOTHING fired: the key already exists
		return false, nil
	}
	if err != nil {
		return false, storeErr("insert performance", err)
	}
	p.ID = id
	return true, nil
}

// IngestReport registers the report's player and stores the record in one
// transaction. Calls are serialized so two ingestions of the same report
// can never both insert.
func (db *DB) IngestReport(ctx context.Context, r models.Report) (IngestOutcome, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return IngestOutcome{}, storeErr("begin", err)
	}
	defer tx.Rollback() // no-op after commit

	playerID, err := ensurePlayer(ctx, tx, r.PlayerName)
	if err != nil {
		return IngestOutcome{}, err
	}

	p := models.Performance{
		PlayerID:      playerID,
		Date:          r.Date,
		SessionType:   r.SessionType,
		SessionDetail: r.SessionDetail,
		Metrics:       r.Metrics,
	}
	inserted, err := insertIfAbsent(ctx, tx, &p)
	if err != nil {
		return IngestOutcome{}, err
	}

	if err := tx.Commit(); err != nil {
		return IngestOutcome{}, storeErr("commit", err)
	}
	return IngestOutcome{PlayerID: playerID, RecordID: p.ID, Inserted: inserted}, nil
}

// QueryAll returns every record joined with its player's name, in
// insertion order.
func (db *DB) QueryAll(ctx context.Context) ([]models.PerformanceRow, error) {
	var rows []models.PerformanceRow
	err := db.SelectContext(ctx, &rows, `
		SELECT perf.id, perf.player_id, perf.date, perf.session_type, perf.session_detail,
		       perf.duration, perf.total_touches, perf.left_leg, perf.right_leg,
		       perf.distance, perf.sprint_distance, perf.work_rate, perf.accl_decl,
		       pl.name AS player_name
		FROM performance perf
		JOIN player pl ON pl.id = perf.player_id
		ORDER BY perf.id`)
	if err != nil {
		return nil, storeErr("query performances", err)
	}
	return rows, nil
}

// CountPerformances returns the number of stored records.
func (db *DB) CountPerformances(ctx context.Context) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM performance`); err != nil {
		return 0, storeErr("count performances", err)
	}
	return n, nil
}

// ResetAll deletes every record and player and restarts id assignment at 1.
func (db *DB) ResetAll(ctx context.Context) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	if !db.isSQLite() {
		if _, err := db.ExecContext(ctx, `TRUNCATE TABLE performance, player RESTART IDENTITY`); err != nil {
			return storeErr("reset", err)
		}
		return nil
	}

	// SQLite: the tables use INTEGER PRIMARY KEY without AUTOINCREMENT, so
	// rowids restart from 1 once the tables are empty.
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return storeErr("begin", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM performance`, `DELETE FROM player`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return storeErr("reset", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit", err)
	}
	return nil
}
