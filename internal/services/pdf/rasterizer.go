// Package pdf turns uploaded report PDFs into page images ready for OCR.
//
// Validation and page counting use the ledongthuc/pdf library (pure Go).
// Rendering shells out to poppler's pdftoppm, which handles the scanned
// image-only PDFs the tracking vendor produces far better than any pure Go
// renderer.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Shimizu-Technology/playertrack-api/internal/services/runner"
)

// DPI is the fixed rasterization resolution.
const DPI = 300

// ErrInvalidDocument matches every DocumentError via errors.Is.
var ErrInvalidDocument = errors.New("invalid document")

// DocumentError means the uploaded bytes can't be turned into pages.
// The file is skipped; the rest of the batch carries on.
type DocumentError struct {
	Reason string
	Err    error
}

func (e *DocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrInvalidDocument, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidDocument, e.Reason)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// Is reports whether target is ErrInvalidDocument.
func (e *DocumentError) Is(target error) bool { return target == ErrInvalidDocument }

// Config controls rendering.
type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	MaxPages int    // 0 = no limit
	TempDir  string // parent for per-document scratch dirs; "" = os.TempDir()
}

// Rasterizer renders PDF bytes to ordered page images.
type Rasterizer struct {
	cfg        Config
	runner     runner.Runner
	countPages func(data []byte) (int, error)
}

// NewRasterizer creates a rasterizer backed by pdftoppm.
func NewRasterizer(cfg Config, r runner.Runner) *Rasterizer {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if r == nil {
		r = runner.Exec{}
	}
	return &Rasterizer{cfg: cfg, runner: r, countPages: PageCount}
}

// Rasterize renders every page of data at DPI, in page order.
func (r *Rasterizer) Rasterize(ctx context.Context, data []byte) ([]image.Image, error) {
	if !ValidatePDF(data) {
		return nil, &DocumentError{Reason: "missing %PDF- header"}
	}

	pages, err := r.countPages(data)
	if err != nil {
		return nil, &DocumentError{Reason: "unreadable PDF", Err: err}
	}
	if pages == 0 {
		return nil, &DocumentError{Reason: "PDF has no pages"}
	}

	tmpDir, err := os.MkdirTemp(r.cfg.TempDir, "playertrack-pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	in := filepath.Join(tmpDir, "report.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write scratch PDF: %w", err)
	}

	// pdftoppm -r 300 -png [-l N] <in.pdf> <tmp/page>
	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", strconv.Itoa(DPI), "-png"}
	if r.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(r.cfg.MaxPages))
	}
	args = append(args, in, prefix)

	if _, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, args...); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("rasterization interrupted: %w", ctx.Err())
		}
		if launchFailed(err) {
			return nil, fmt.Errorf("failed to run %s: %w", r.cfg.Pdftoppm, err)
		}
		return nil, &DocumentError{
			Reason: "pdftoppm failed: " + runner.Truncate(strings.TrimSpace(string(errb)), 512),
			Err:    err,
		}
	}

	files, err := renderedPages(prefix)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &DocumentError{Reason: "pdftoppm produced no images"}
	}

	images := make([]image.Image, 0, len(files))
	for _, f := range files {
		img, err := decodePNG(f)
		if err != nil {
			return nil, &DocumentError{Reason: "unreadable page image " + filepath.Base(f), Err: err}
		}
		images = append(images, img)
	}
	return images, nil
}

// launchFailed reports whether the renderer never started (missing or
// non-executable binary), as opposed to rejecting the document.
func launchFailed(err error) bool {
	return errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission)
}

// renderedPages lists prefix-N.png files sorted by page number.
func renderedPages(prefix string) ([]string, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	num := func(path string) int {
		s := strings.TrimSuffix(strings.TrimPrefix(path, prefix+"-"), ".png")
		n, _ := strconv.Atoi(s)
		return n
	}
	sort.Slice(matches, func(i, j int) bool { return num(matches[i]) < num(matches[j]) })
	return matches, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

// PageCount opens the PDF with ledongthuc/pdf and returns its page count.
// The library panics on some malformed cross-reference tables, so panics are
// turned into errors.
func PageCount(data []byte) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf reader panic: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	return reader.NumPage(), nil
}

// ValidatePDF checks if the data looks like a valid PDF by checking the magic bytes.
func ValidatePDF(data []byte) bool {
	// PDF files start with "%PDF-"
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}
