// Command ingest loads report PDFs into the record store without the HTTP
// server.
//
//	ingest -dir ./reports            # every PDF in the directory, by name
//	ingest a.pdf b.pdf               # the given files, in order
//	ingest -dir ./inbox -watch       # then keep ingesting new drops
//
// Configuration is read exactly like the server's (PLAYERTRACK_* env,
// optional YAML file, .env).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/Shimizu-Technology/playertrack-api/internal/config"
	"github.com/Shimizu-Technology/playertrack-api/internal/database"
	"github.com/Shimizu-Technology/playertrack-api/internal/metrics"
	"github.com/Shimizu-Technology/playertrack-api/internal/models"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/ingest"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/ocr"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/pdf"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/watch"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/worker"
)

func main() {
	dir := flag.String("dir", "", "directory of report PDFs")
	keepWatching := flag.Bool("watch", false, "keep watching -dir for new PDFs")
	flag.Parse()

	if *dir == "" && flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: ingest [-dir DIR [-watch]] [file.pdf ...]")
		os.Exit(2)
	}
	if *keepWatching && *dir == "" {
		log.Fatal("❌ -watch needs -dir")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.New(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	recognizer, err := ocr.New(cfg.OCREngine, ocr.Config{
		Tesseract:   cfg.TesseractPath,
		Lang:        cfg.OCRLang,
		TessdataDir: cfg.TessdataDir,
		PSM:         cfg.OCRPSM,
		TempDir:     cfg.TempDir,
	})
	if err != nil {
		log.Fatalf("❌ Failed to set up OCR: %v", err)
	}
	if c, ok := recognizer.(io.Closer); ok {
		defer c.Close()
	}

	rasterizer := pdf.NewRasterizer(pdf.Config{
		Pdftoppm: cfg.PdftoppmPath,
		MaxPages: cfg.MaxPages,
		TempDir:  cfg.TempDir,
	}, nil)
	pipeline := ingest.New(rasterizer, recognizer, db, cfg.PageTimeout, metrics.New())

	wp := worker.NewPool(1, cfg.JobQueueSize, pipeline, db, nil, nil)
	wp.Start()
	defer wp.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var paths []string
	if *dir != "" && !*keepWatching {
		if paths, err = watch.Scan(*dir); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}
	paths = append(paths, flag.Args()...)

	if len(paths) > 0 {
		if err := runBatch(ctx, wp, paths); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}

	if *keepWatching {
		// The initial scan covers what is already in the directory.
		err := watch.Run(ctx, watch.Config{Dir: *dir, Debounce: cfg.WatchDebounce, InitialScan: true},
			func(batch []string) {
				if err := runBatch(ctx, wp, batch); err != nil {
					log.Printf("❌ %v", err)
				}
			})
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
	}
}

// runBatch submits paths as one job and prints its results.
func runBatch(ctx context.Context, wp *worker.Pool, paths []string) error {
	files := ingest.ReadFiles(paths)
	if len(files) == 0 {
		return nil
	}
	job, err := wp.Submit(ctx, "cli", files)
	if err != nil {
		return fmt.Errorf("failed to queue %d file(s): %w", len(files), err)
	}
	results, err := job.Wait(ctx)
	if err != nil {
		return err
	}
	printResults(os.Stdout, results)
	return nil
}

func printResults(w io.Writer, results []models.IngestResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSTATUS\tPLAYER\tDATE\tTYPE\tDETAIL\tERROR")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Filename, r.Status, r.PlayerName, r.Date, r.SessionType, r.SessionDetail, r.Error)
	}
	tw.Flush()
}
