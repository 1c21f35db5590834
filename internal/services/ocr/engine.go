package ocr

import (
	"fmt"
	"strings"
)

// Supported OCR engines.
const (
	EngineCLI       = "tesseract"
	EngineGosseract = "gosseract"
)

// New builds the recognizer selected by engine.
func New(engine string, cfg Config) (Recognizer, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineCLI:
		return NewTesseract(cfg, nil), nil
	case EngineGosseract:
		return newLibRecognizer(cfg)
	default:
		return nil, fmt.Errorf("unknown OCR engine %q (want %q or %q)", engine, EngineCLI, EngineGosseract)
	}
}
