// jobs.go handles the ingestion job log.
//
// Each upload batch or watched-directory sweep becomes one ingest_job row.
// The row is created when the job is queued and its counters are filled in
// once the worker has processed every file.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Shimizu-Technology/playertrack-api/internal/models"
)

// ErrJobNotFound is returned by GetJob for an unknown id.
var ErrJobNotFound = errors.New("ingest job not found")

// timestampLayout is understood by both PostgreSQL and modernc.org/sqlite.
const timestampLayout = "2006-01-02 15:04:05.999999999-07:00"

func dbTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// CreateJob inserts a new job in "pending" status.
func (db *DB) CreateJob(ctx context.Context, j *models.IngestJob) error {
	if j.Status == "" {
		j.Status = models.JobPending
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, db.Rebind(`
		INSERT INTO ingest_job (id, source, status, total_count, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		j.ID, j.Source, j.Status, j.TotalCount, dbTime(j.CreatedAt))
	if err != nil {
		return storeErr("create job", err)
	}
	return nil
}

// MarkJobProcessing flags a job as picked up by the worker.
func (db *DB) MarkJobProcessing(ctx context.Context, id string) error {
	_, err := db.ExecContext(ctx, db.Rebind(`UPDATE ingest_job SET status = ? WHERE id = ?`),
		models.JobProcessing, id)
	if err != nil {
		return storeErr("mark job processing", err)
	}
	return nil
}

// FinishJob records the per-file outcomes of a job. The job is "failed" only
// when every file failed.
func (db *DB) FinishJob(ctx context.Context, id string, results []models.IngestResult) error {
	var inserted, duplicate, failed int
	for _, r := range results {
		switch r.Status {
		case models.IngestInserted:
			inserted++
		case models.IngestDuplicate:
			duplicate++
		default:
			failed++
		}
	}

	status := models.FinishedStatus(results)

	_, err := db.ExecContext(ctx, db.Rebind(`
		UPDATE ingest_job SET
			status = ?, inserted_count = ?, duplicate_count = ?, failed_count = ?, finished_at = ?
		WHERE id = ?`),
		status, inserted, duplicate, failed, dbTime(time.Now()), id)
	if err != nil {
		return storeErr("finish job", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (db *DB) GetJob(ctx context.Context, id string) (*models.IngestJob, error) {
	var j models.IngestJob
	err := db.GetContext(ctx, &j, db.Rebind(`SELECT * FROM ingest_job WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err != nil {
		return nil, storeErr("get job", err)
	}
	return &j, nil
}

// ListJobs returns the most recent jobs first. limit defaults to 20 and is
// capped at 100.
func (db *DB) ListJobs(ctx context.Context, limit int) ([]models.IngestJob, error) {
	switch {
	case limit <= 0:
		limit = 20
	case limit > 100:
		limit = 100
	}
	var jobs []models.IngestJob
	err := db.SelectContext(ctx, &jobs,
		db.Rebind(`SELECT * FROM ingest_job ORDER BY created_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, storeErr("list jobs", err)
	}
	return jobs, nil
}
