// Package watch turns PDFs dropped into a directory into ingestion batches.
//
// Scanners write files in bursts (create, then several writes), so events
// are debounced: a batch is emitted once the directory has been quiet for
// the configured interval.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is zero.
const DefaultDebounce = 2 * time.Second

// Config controls the watcher.
type Config struct {
	Dir         string
	Debounce    time.Duration
	InitialScan bool // emit the PDFs already in Dir before watching
}

// IsPDF reports whether path has a .pdf extension (any case).
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Scan lists the PDFs directly inside dir, sorted by name.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsPDF(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Run watches cfg.Dir until ctx ends, calling onBatch with each debounced,
// sorted set of PDF paths. onBatch runs on the watcher goroutine.
func Run(ctx context.Context, cfg Config, onBatch func(paths []string)) error {
	if cfg.Dir == "" {
		return errors.New("no directory to watch")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(cfg.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.Dir, err)
	}
	log.Printf("👀 Watching %s for new reports", cfg.Dir)

	if cfg.InitialScan {
		existing, err := Scan(cfg.Dir)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			onBatch(existing)
		}
	}

	pending := map[string]struct{}{}
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !IsPDF(e.Name) || !e.Op.Has(fsnotify.Create) && !e.Op.Has(fsnotify.Write) {
				continue
			}
			pending[e.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(cfg.Debounce)
			} else {
				timer.Reset(cfg.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			batch := make([]string, 0, len(pending))
			for p := range pending {
				// Files removed again before settling are dropped.
				if _, err := os.Stat(p); err == nil {
					batch = append(batch, p)
				}
				delete(pending, p)
			}
			if len(batch) > 0 {
				sort.Strings(batch)
				onBatch(batch)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("⚠️  Watcher error: %v", err)
		}
	}
}
