// Package models defines the data structures used throughout the application.
//
// Models are plain structs with JSON tags for serialization and `db` tags for
// sqlx column mapping. The database package handles persistence; the services
// packages only ever pass these values around.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SessionType is the coarse category of a report.
type SessionType string

const (
	SessionTraining SessionType = "Training"
	SessionMatch    SessionType = "Match"
)

// SessionDetail is the finer training focus detected in the report text.
type SessionDetail string

const (
	DetailTechnical    SessionDetail = "Technical"
	DetailPhysical     SessionDetail = "Physical"
	DetailConditioning SessionDetail = "Conditioning"
	DetailStrength     SessionDetail = "Strength"
	DetailGeneral      SessionDetail = "General"
)

// UnknownPlayer is the player name used when a report's filename cannot be parsed.
const UnknownPlayer = "Unknown"

// DisplayDateLayout is how report dates appear in filenames and in logs.
const DisplayDateLayout = "January 2 2006"

// isoDateLayout is how report dates are stored.
const isoDateLayout = "2006-01-02"

// ReportDate is a calendar date with no time component.
// It is stored as an ISO string (YYYY-MM-DD) so the dedup key compares exactly
// across both SQL dialects.
type ReportDate struct {
	time.Time
}

// NewReportDate truncates t to its calendar date.
func NewReportDate(t time.Time) ReportDate {
	y, m, d := t.Date()
	return ReportDate{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseReportDate parses an ISO date (YYYY-MM-DD).
func ParseReportDate(s string) (ReportDate, error) {
	t, err := time.Parse(isoDateLayout, strings.TrimSpace(s))
	if err != nil {
		return ReportDate{}, err
	}
	return ReportDate{t}, nil
}

// ISO returns the storage form, e.g. "2024-03-04".
func (d ReportDate) ISO() string { return d.Format(isoDateLayout) }

// Display returns the report form, e.g. "March 4 2024".
func (d ReportDate) Display() string { return d.Format(DisplayDateLayout) }

// Value implements driver.Valuer.
func (d ReportDate) Value() (driver.Value, error) {
	return d.ISO(), nil
}

// Scan implements sql.Scanner. Postgres DATE columns come back as time.Time,
// SQLite TEXT columns as string or []byte.
func (d *ReportDate) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewReportDate(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case nil:
		*d = ReportDate{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ReportDate", src)
	}
}

func (d *ReportDate) scanString(s string) error {
	// Some drivers hand back a full timestamp for DATE columns.
	if len(s) > len(isoDateLayout) {
		s = s[:len(isoDateLayout)]
	}
	parsed, err := ParseReportDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d ReportDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ISO())
}

// UnmarshalJSON decodes "YYYY-MM-DD".
func (d *ReportDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseReportDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Player is a row of the player registry.
type Player struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Metrics holds every numeric field recovered from a report's OCR text.
type Metrics struct {
	Duration       int     `json:"duration" db:"duration"` // Minutes
	TotalTouches   int     `json:"total_touches" db:"total_touches"`
	LeftLeg        int     `json:"left_leg" db:"left_leg"`   // Percent
	RightLeg       int     `json:"right_leg" db:"right_leg"` // Percent
	Distance       float64 `json:"distance" db:"distance"`   // Kilometers
	SprintDistance float64 `json:"sprint_distance" db:"sprint_distance"` // Meters
	WorkRate       float64 `json:"work_rate" db:"work_rate"`
	AcclDecl       int     `json:"accl_decl" db:"accl_decl"`
}

// ReportIdentity is everything we learn from a report's filename.
type ReportIdentity struct {
	PlayerName  string
	SessionType SessionType
	Date        ReportDate
	Matched     bool // false when fallback values were used
}

// Report is one fully extracted report, ready to be stored.
type Report struct {
	ReportIdentity
	SessionDetail SessionDetail
	Metrics
}

// Performance is a stored performance record.
type Performance struct {
	ID            int64         `json:"id" db:"id"`
	PlayerID      int64         `json:"player_id" db:"player_id"`
	Date          ReportDate    `json:"date" db:"date"`
	SessionType   SessionType   `json:"session_type" db:"session_type"`
	SessionDetail SessionDetail `json:"session_detail" db:"session_detail"`
	Metrics
}

// PerformanceRow is a performance record joined with its player's name.
// This is what the dashboard consumes.
type PerformanceRow struct {
	Performance
	PlayerName string `json:"player_name" db:"player_name"`
}

// IngestStatus is the per-file outcome of an ingestion.
type IngestStatus string

const (
	IngestInserted  IngestStatus = "ingested"
	IngestDuplicate IngestStatus = "duplicate"
	IngestFailed    IngestStatus = "failed"
)

// IngestResult reports what happened to one uploaded file.
type IngestResult struct {
	JobID         string        `json:"job_id,omitempty"`
	Filename      string        `json:"filename"`
	Status        IngestStatus  `json:"status"`
	Error         string        `json:"error,omitempty"`
	PlayerID      int64         `json:"player_id,omitempty"`
	RecordID      int64         `json:"record_id,omitempty"`
	PlayerName    string        `json:"player_name,omitempty"`
	Date          string        `json:"date,omitempty"` // Display form
	SessionType   SessionType   `json:"session_type,omitempty"`
	SessionDetail SessionDetail `json:"session_detail,omitempty"`
	PageCount     int           `json:"page_count,omitempty"`
}

// JobStatus is the lifecycle state of an ingestion job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed" // every file in the job failed
)

// FinishedStatus is the final status of a job with these per-file results:
// failed only when every file failed.
func FinishedStatus(results []IngestResult) JobStatus {
	if len(results) == 0 {
		return JobCompleted
	}
	for _, r := range results {
		if r.Status == IngestInserted || r.Status == IngestDuplicate {
			return JobCompleted
		}
	}
	return JobFailed
}

// IngestJob is one batch of uploaded files processed by the worker.
// Counters are filled in when the job finishes.
type IngestJob struct {
	ID             string     `json:"id" db:"id"`
	Source         string     `json:"source" db:"source"` // "upload", "watch" or "cli"
	Status         JobStatus  `json:"status" db:"status"`
	TotalCount     int        `json:"total_count" db:"total_count"`
	InsertedCount  int        `json:"inserted_count" db:"inserted_count"`
	DuplicateCount int        `json:"duplicate_count" db:"duplicate_count"`
	FailedCount    int        `json:"failed_count" db:"failed_count"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}

// WebhookPayload is the body POSTed to notification endpoints.
type WebhookPayload struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// --- Request/Response DTOs ---

// ErrorResponse is a standard error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Database     string `json:"database"`
	QueueSize    int    `json:"queue_size"`
	Performances int    `json:"performances"`
}

// UploadResponse is returned by POST /api/v1/reports.
// Results is empty when the upload was queued asynchronously.
type UploadResponse struct {
	JobID   string         `json:"job_id"`
	Status  JobStatus      `json:"status"`
	Results []IngestResult `json:"results,omitempty"`
}

// ResetResponse is returned after a full store reset.
type ResetResponse struct {
	Status string `json:"status"`
}
