package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIsPDF(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"Ada Yilmaz - Training March 4 2024.pdf", true},
		{"REPORT.PDF", true},
		{"/inbox/notes.txt", false},
		{"pdf", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsPDF(tt.path); got != tt.want {
				t.Errorf("IsPDF(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "readme.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	want := []string{filepath.Join(dir, "a.PDF"), filepath.Join(dir, "b.pdf")}
	if len(got) != len(want) {
		t.Fatalf("Scan() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Scan()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRun_DebouncesNewFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "old.pdf"), []byte("%PDF-"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{Dir: dir, Debounce: 300 * time.Millisecond, InitialScan: true},
			func(paths []string) { batches <- paths })
	}()

	initial := receive(t, batches)
	if len(initial) != 1 || filepath.Base(initial[0]) != "old.pdf" {
		t.Fatalf("initial batch = %v, want [old.pdf]", initial)
	}

	for _, name := range []string{"x.pdf", "ignored.txt", "y.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	batch := receive(t, batches)
	if len(batch) != 2 || filepath.Base(batch[0]) != "x.pdf" || filepath.Base(batch[1]) != "y.pdf" {
		t.Errorf("batch = %v, want [x.pdf y.pdf]", batch)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestRun_MissingDir(t *testing.T) {
	err := Run(context.Background(), Config{Dir: filepath.Join(t.TempDir(), "nope")}, func([]string) {})
	if err == nil {
		t.Error("Run() on a missing dir expected an error")
	}
}

func receive(t *testing.T, ch <-chan []string) []string {
	t.Helper()
	select {
	case b := <-ch:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("no batch emitted")
		return nil
	}
}
