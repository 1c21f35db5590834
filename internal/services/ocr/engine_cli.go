//go:build !gosseract

package ocr

import "fmt"

func newLibRecognizer(Config) (Recognizer, error) {
	return nil, fmt.Errorf("OCR engine %q requires a build with -tags gosseract", EngineGosseract)
}
