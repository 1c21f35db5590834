//go:build gosseract

package ocr

func newLibRecognizer(cfg Config) (Recognizer, error) {
	return NewGosseract(cfg.Lang)
}
