// Package ingest runs one report file through the whole pipeline:
// filename parsing, rasterization, page normalization, OCR, field
// extraction, session classification and the deduplicating store.
//
// A failure in any stage fails only the current file; IngestBatch always
// moves on to the next one.
package ingest

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Shimizu-Technology/playertrack-api/internal/database"
	"github.com/Shimizu-Technology/playertrack-api/internal/metrics"
	"github.com/Shimizu-Technology/playertrack-api/internal/models"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/extract"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/ocr"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/pdf"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/report"
)

// DefaultPageTimeout bounds recognition of a single page.
const DefaultPageTimeout = 2 * time.Minute

// File is one uploaded report: its display name and raw PDF bytes.
type File struct {
	Name string
	Data []byte
}

// PageSource renders PDF bytes into page images in page order.
type PageSource interface {
	Rasterize(ctx context.Context, data []byte) ([]image.Image, error)
}

// Store persists a report, skipping duplicates.
type Store interface {
	IngestReport(ctx context.Context, r models.Report) (database.IngestOutcome, error)
}

// Pipeline wires the stages together.
type Pipeline struct {
	pages       PageSource
	recognizer  ocr.Recognizer
	store       Store
	pageTimeout time.Duration
	metrics     *metrics.Manager
}

// New creates a pipeline. pageTimeout <= 0 means DefaultPageTimeout;
// m may be nil.
func New(pages PageSource, rec ocr.Recognizer, store Store, pageTimeout time.Duration, m *metrics.Manager) *Pipeline {
	if pageTimeout <= 0 {
		pageTimeout = DefaultPageTimeout
	}
	return &Pipeline{
		pages:       pages,
		recognizer:  rec,
		store:       store,
		pageTimeout: pageTimeout,
		metrics:     m,
	}
}

// Extract turns a file into a report without storing it.
// It returns the number of pages that were recognized.
func (p *Pipeline) Extract(ctx context.Context, f File) (models.Report, int, error) {
	identity := report.ParseFilename(filepath.Base(f.Name))
	if !identity.Matched {
		log.Printf("⚠️  Unrecognized report name %q: using player=%s type=%s date=%s",
			f.Name, identity.PlayerName, identity.SessionType, identity.Date.Display())
	}

	pages, err := p.pages.Rasterize(ctx, f.Data)
	if err != nil {
		return models.Report{}, 0, err
	}

	texts := make([]string, 0, len(pages))
	for i, img := range pages {
		text, err := p.recognizePage(ctx, img)
		if err != nil {
			return models.Report{}, i, fmt.Errorf("page %d: %w", i+1, err)
		}
		texts = append(texts, text)
	}
	text := strings.Join(texts, "\n")

	return models.Report{
		ReportIdentity: identity,
		SessionDetail:  extract.ClassifySession(text),
		Metrics:        extract.ExtractFields(text),
	}, len(pages), nil
}

func (p *Pipeline) recognizePage(ctx context.Context, img image.Image) (string, error) {
	start := time.Now()
	pageCtx, cancel := context.WithTimeout(ctx, p.pageTimeout)
	defer cancel()

	text, err := p.recognizer.Recognize(pageCtx, pdf.Binarize(img))
	p.metrics.RecordPage(time.Since(start))
	return text, err
}

// IngestReport processes and stores one file. It never returns an error:
// failures are reported in the result with status "failed".
func (p *Pipeline) IngestReport(ctx context.Context, f File) models.IngestResult {
	start := time.Now()
	result := models.IngestResult{Filename: f.Name}

	rep, pageCount, err := p.Extract(ctx, f)
	result.PageCount = pageCount
	if err == nil {
		result.PlayerName = rep.PlayerName
		result.Date = rep.Date.Display()
		result.SessionType = rep.SessionType
		result.SessionDetail = rep.SessionDetail

		var out database.IngestOutcome
		out, err = p.store.IngestReport(ctx, rep)
		if err == nil {
			result.PlayerID = out.PlayerID
			result.RecordID = out.RecordID
			result.Status = models.IngestDuplicate
			if out.Inserted {
				result.Status = models.IngestInserted
			}
		}
	}

	if err != nil {
		result.Status = models.IngestFailed
		result.Error = err.Error()
		log.Printf("❌ Failed to ingest %s: %v", f.Name, err)
	} else if result.Status == models.IngestDuplicate {
		log.Printf("↩️  Skipped duplicate %s: %s %s %s", f.Name, rep.PlayerName, rep.SessionType, result.Date)
	} else {
		log.Printf("✅ Ingested %s: player=%s type=%s detail=%s date=%s",
			f.Name, rep.PlayerName, rep.SessionType, rep.SessionDetail, result.Date)
	}

	p.metrics.RecordFile(string(result.Status), time.Since(start))
	return result
}

// IngestBatch processes files one at a time in the given order.
func (p *Pipeline) IngestBatch(ctx context.Context, jobID string, files []File) []models.IngestResult {
	results := make([]models.IngestResult, 0, len(files))
	for _, f := range files {
		r := p.IngestReport(ctx, f)
		r.JobID = jobID
		results = append(results, r)
	}
	return results
}

// ReadFile loads a report from disk, keeping its base name for parsing.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return File{Name: filepath.Base(path), Data: data}, nil
}

// ReadFiles loads every readable path, logging and skipping the rest.
func ReadFiles(paths []string) []File {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		f, err := ReadFile(p)
		if err != nil {
			log.Printf("⚠️  %v", err)
			continue
		}
		files = append(files, f)
	}
	return files
}
