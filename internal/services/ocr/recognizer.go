// Package ocr turns normalized page images into raw text.
//
// Recognition is a black box: whatever tesseract returns, however noisy, is
// handed to the field extractor as-is.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/Shimizu-Technology/playertrack-api/internal/services/runner"
)

// ErrRecognition wraps every failure of the OCR engine.
var ErrRecognition = errors.New("text recognition failed")

// Recognizer produces raw text from one page image.
type Recognizer interface {
	Recognize(ctx context.Context, img *image.Gray) (string, error)
}

// Config controls the tesseract command line.
type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "eng"
	TessdataDir string
	PSM         int // page segmentation mode; 0 = tesseract default
	TempDir     string
}

// Tesseract runs the tesseract CLI once per page.
type Tesseract struct {
	cfg    Config
	runner runner.Runner
}

// NewTesseract creates a CLI-backed recognizer.
func NewTesseract(cfg Config, r runner.Runner) *Tesseract {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if r == nil {
		r = runner.Exec{}
	}
	return &Tesseract{cfg: cfg, runner: r}
}

// Recognize writes img to a scratch PNG and runs
// `tesseract <png> stdout -l <lang>` on it.
func (t *Tesseract) Recognize(ctx context.Context, img *image.Gray) (string, error) {
	tmpDir, err := os.MkdirTemp(t.cfg.TempDir, "playertrack-ocr-*")
	if err != nil {
		return "", fmt.Errorf("%w: scratch dir: %v", ErrRecognition, err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "page.png")
	if err := writePNG(path, img); err != nil {
		return "", fmt.Errorf("%w: encode page: %v", ErrRecognition, err)
	}

	args := []string{path, "stdout", "-l", t.cfg.Lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}

	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: %v", ErrRecognition, ctxErr)
		}
		return "", fmt.Errorf("%w: tesseract: %v: %s", ErrRecognition, err,
			runner.Truncate(strings.TrimSpace(string(errb)), 512))
	}
	return string(out), nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
