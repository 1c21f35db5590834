package ocr

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"testing"
)

// stubRunner records the call and checks that the scratch PNG is readable.
type stubRunner struct {
	out    string
	err    error
	name   string
	args   []string
	pngOK  bool
	onCall func(ctx context.Context)
}

func (s *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.name, s.args = name, args
	if s.onCall != nil {
		s.onCall(ctx)
	}
	if f, err := os.Open(args[0]); err == nil {
		_, decErr := png.Decode(f)
		s.pngOK = decErr == nil
		f.Close()
	}
	if s.err != nil {
		return nil, []byte("Error opening data file"), s.err
	}
	return []byte(s.out), nil, nil
}

func page() *image.Gray { return image.NewGray(image.Rect(0, 0, 4, 4)) }

func TestTesseract_Recognize(t *testing.T) {
	run := &stubRunner{out: "90 Min.\n"}
	rec := NewTesseract(Config{Lang: "eng+tur", PSM: 6, TessdataDir: "/opt/tessdata"}, run)

	got, err := rec.Recognize(context.Background(), page())
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if got != "90 Min.\n" {
		t.Errorf("Recognize() = %q, want raw tesseract output", got)
	}
	if run.name != "tesseract" {
		t.Errorf("command = %q, want tesseract", run.name)
	}
	if !run.pngOK {
		t.Error("tesseract was not given a decodable PNG")
	}

	want := []string{"stdout", "-l", "eng+tur", "--psm", "6", "--tessdata-dir", "/opt/tessdata"}
	if len(run.args) != len(want)+1 {
		t.Fatalf("args = %v, want image path + %v", run.args, want)
	}
	for i, a := range want {
		if run.args[i+1] != a {
			t.Errorf("arg %d = %q, want %q", i+1, run.args[i+1], a)
		}
	}
}

func TestTesseract_Failure(t *testing.T) {
	run := &stubRunner{err: errors.New("exit status 1")}
	rec := NewTesseract(Config{}, run)

	_, err := rec.Recognize(context.Background(), page())
	if !errors.Is(err, ErrRecognition) {
		t.Errorf("error = %v, want ErrRecognition", err)
	}
}

func TestTesseract_Timeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	run := &stubRunner{
		err:    errors.New("signal: killed"),
		onCall: func(context.Context) { cancel() },
	}
	rec := NewTesseract(Config{}, run)

	_, err := rec.Recognize(ctx, page())
	if !errors.Is(err, ErrRecognition) {
		t.Errorf("error = %v, want ErrRecognition", err)
	}
}

func TestNew(t *testing.T) {
	if r, err := New("", Config{}); err != nil || r == nil {
		t.Errorf("New(\"\") = %v, %v; want the CLI recognizer", r, err)
	}
	if _, err := New("abbyy", Config{}); err == nil {
		t.Error("New(\"abbyy\") expected an error")
	}
}
