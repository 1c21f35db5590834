//go:build gosseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Gosseract recognizes pages through libtesseract (cgo) instead of the CLI.
// Build with -tags gosseract on hosts that have the tesseract headers.
type Gosseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewGosseract creates a recognizer with a single long-lived client.
func NewGosseract(lang string) (*Gosseract, error) {
	client := gosseract.NewClient()
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: set language: %v", ErrRecognition, err)
	}
	return &Gosseract{client: client}, nil
}

// Recognize implements Recognizer. The client isn't safe for concurrent use.
func (g *Gosseract) Recognize(ctx context.Context, img *image.Gray) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecognition, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("%w: encode page: %v", ErrRecognition, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecognition, err)
	}
	text, err := g.client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecognition, err)
	}
	return text, nil
}

// Close releases the underlying tesseract handle.
func (g *Gosseract) Close() error {
	return g.client.Close()
}
