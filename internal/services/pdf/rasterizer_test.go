package pdf

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"testing"
)

// fakePdftoppm writes one PNG per page, each filled with a distinct gray
// level so tests can check page order.
type fakePdftoppm struct {
	pages   int
	failErr error
	args    []string
}

func (f *fakePdftoppm) Run(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
	f.args = args
	if f.failErr != nil {
		return nil, []byte("Syntax Error: Couldn't read xref table"), f.failErr
	}
	prefix := args[len(args)-1]
	for i := 1; i <= f.pages; i++ {
		img := image.NewGray(image.Rect(0, 0, 2, 2))
		for j := range img.Pix {
			img.Pix[j] = uint8(i * 10)
		}
		// pdftoppm zero-pads page numbers to the width of the last one.
		name := prefix + "-" + padded(i, f.pages) + ".png"
		out, err := os.Create(name)
		if err != nil {
			return nil, nil, err
		}
		if err := png.Encode(out, img); err != nil {
			return nil, nil, err
		}
		out.Close()
	}
	return nil, nil, nil
}

func padded(i, total int) string {
	return fmt.Sprintf("%0*d", len(strconv.Itoa(total)), i)
}

func newTestRasterizer(run *fakePdftoppm, pages int, countErr error) *Rasterizer {
	r := NewRasterizer(Config{TempDir: os.TempDir()}, run)
	r.countPages = func([]byte) (int, error) { return pages, countErr }
	return r
}

var minimalHeader = []byte("%PDF-1.4\n%fake body\n")

func TestRasterize_PageOrder(t *testing.T) {
	run := &fakePdftoppm{pages: 12}
	r := newTestRasterizer(run, 12, nil)

	images, err := r.Rasterize(context.Background(), minimalHeader)
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if len(images) != 12 {
		t.Fatalf("got %d pages, want 12", len(images))
	}
	for i, img := range images {
		got := color.GrayModel.Convert(img.At(0, 0)).(color.Gray).Y
		if want := uint8((i + 1) * 10); got != want {
			t.Errorf("page %d gray = %d, want %d", i+1, got, want)
		}
	}

	wantArgs := []string{"-r", "300", "-png"}
	for i, a := range wantArgs {
		if run.args[i] != a {
			t.Errorf("pdftoppm arg %d = %q, want %q", i, run.args[i], a)
		}
	}
}

func TestRasterize_MaxPages(t *testing.T) {
	run := &fakePdftoppm{pages: 2}
	r := newTestRasterizer(run, 5, nil)
	r.cfg.MaxPages = 2

	if _, err := r.Rasterize(context.Background(), minimalHeader); err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if run.args[3] != "-l" || run.args[4] != "2" {
		t.Errorf("expected -l 2 in args, got %v", run.args)
	}
}

func TestRasterize_DocumentErrors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		pages    int
		countErr error
		runErr   error
		rendered int
	}{
		{name: "not a pdf", data: []byte("hello world"), pages: 1, rendered: 1},
		{name: "empty upload", data: nil, pages: 1, rendered: 1},
		{name: "unreadable structure", data: minimalHeader, countErr: errors.New("malformed xref")},
		{name: "zero pages", data: minimalHeader, pages: 0},
		{name: "renderer fails", data: minimalHeader, pages: 1, runErr: errors.New("exit status 1")},
		{name: "nothing rendered", data: minimalHeader, pages: 1, rendered: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &fakePdftoppm{pages: tt.rendered, failErr: tt.runErr}
			r := newTestRasterizer(run, tt.pages, tt.countErr)

			_, err := r.Rasterize(context.Background(), tt.data)
			if err == nil {
				t.Fatal("expected an error")
			}
			var docErr *DocumentError
			if !errors.As(err, &docErr) {
				t.Errorf("error %v is not a *DocumentError", err)
			}
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("error %v does not match ErrInvalidDocument", err)
			}
		})
	}
}

func TestRasterize_RendererUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not on PATH", &exec.Error{Name: "pdftoppm", Err: exec.ErrNotFound}},
		{"missing absolute path", &fs.PathError{Op: "fork/exec", Path: "/opt/poppler/pdftoppm", Err: fs.ErrNotExist}},
		{"not executable", &fs.PathError{Op: "fork/exec", Path: "/opt/poppler/pdftoppm", Err: fs.ErrPermission}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRasterizer(&fakePdftoppm{failErr: tt.err}, 1, nil)

			_, err := r.Rasterize(context.Background(), minimalHeader)
			if err == nil {
				t.Fatal("expected an error")
			}
			if errors.Is(err, ErrInvalidDocument) {
				t.Errorf("error %v blames the document for a missing renderer", err)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("error %v does not wrap %v", err, tt.err)
			}
		})
	}
}

// TestPageCount_Garbage runs the real PDF reader over bytes that only look
// like a PDF.
func TestPageCount_Garbage(t *testing.T) {
	if _, err := PageCount([]byte("%PDF-1.7\nthis is not really a pdf")); err == nil {
		t.Error("PageCount() expected an error for garbage input")
	}
}

func TestValidatePDF(t *testing.T) {
	tests := []struct {
		data []byte
		want bool
	}{
		{[]byte("%PDF-1.4"), true},
		{[]byte("%PDF"), false},
		{[]byte("PK\x03\x04"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := ValidatePDF(tt.data); got != tt.want {
			t.Errorf("ValidatePDF(%q) = %v, want %v", tt.data, got, tt.want)
		}
	}
}
