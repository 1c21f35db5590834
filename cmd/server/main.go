// Package main is the entry point for the PlayerTrack API server.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shimizu-Technology/playertrack-api/internal/config"
	"github.com/Shimizu-Technology/playertrack-api/internal/database"
	"github.com/Shimizu-Technology/playertrack-api/internal/metrics"
	"github.com/Shimizu-Technology/playertrack-api/internal/router"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/ingest"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/ocr"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/pdf"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/watch"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/webhook"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/worker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("🚀 PlayerTrack API %s starting...", Version)

	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Printf("📋 Config loaded: port=%s, db=%s, ocr=%s/%s, gin_mode=%s",
		cfg.Port, cfg.DBDriver, cfg.OCREngine, cfg.OCRLang, cfg.GinMode)
	log.Printf("🔧 pdftoppm path: %s, tesseract path: %s", cfg.PdftoppmPath, cfg.TesseractPath)

	os.Setenv("GIN_MODE", cfg.GinMode)

	// Step 2: Connect to Database
	db, err := database.New(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("✅ Database connected")

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	// Step 3: Create Services
	m := metrics.New()

	rasterizer := pdf.NewRasterizer(pdf.Config{
		Pdftoppm: cfg.PdftoppmPath,
		MaxPages: cfg.MaxPages,
		TempDir:  cfg.TempDir,
	}, nil)

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

	pipeline := ingest.New(rasterizer, recognizer, db, cfg.PageTimeout, m)

	webhookService := webhook.New(cfg.WebhookURLs, cfg.WebhookSecret)
	if len(cfg.WebhookURLs) > 0 {
		log.Printf("✅ Webhook notifications enabled (%d endpoint(s))", len(cfg.WebhookURLs))
	}

	// Step 4: Create and Start the Worker. One worker keeps ingestion FIFO.
	wp := worker.NewPool(1, cfg.JobQueueSize, pipeline, db, webhookService, m)
	wp.Start()

	// Optional drop-folder ingestion
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if cfg.WatchDir != "" {
		go watchDir(watchCtx, cfg, wp)
	}

	if cfg.AdminKeyHash == "" {
		log.Println("⚠️  No admin key hash set (reset only reachable with an admin JWT)")
	}

	// Step 5: Setup HTTP Router
	r := router.Setup(db, wp, m, cfg)

	// Step 6: Start the HTTP Server
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 60 * time.Second,
		// Synchronous uploads wait for OCR of every file.
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Printf("📖 Health check: http://localhost:%s/api/v1/health", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	// Step 7: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("🛑 Received signal %v, shutting down gracefully...", sig)

	stopWatch()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	// Drain queued jobs before the store closes
	wp.Stop()

	// Signal webhook service to stop pending deliveries
	webhookService.Shutdown()
	log.Println("⏳ Webhook deliveries signaled to stop")

	log.Println("👋 Server stopped. Goodbye!")
}

// watchDir feeds PDFs dropped into cfg.WatchDir to the worker.
func watchDir(ctx context.Context, cfg *config.Config, wp *worker.Pool) {
	err := watch.Run(ctx, watch.Config{
		Dir:         cfg.WatchDir,
		Debounce:    cfg.WatchDebounce,
		InitialScan: true,
	}, func(paths []string) {
		files := ingest.ReadFiles(paths)
		if len(files) == 0 {
			return
		}
		if _, err := wp.Submit(ctx, "watch", files); err != nil {
			log.Printf("❌ Failed to queue %d watched file(s): %v", len(files), err)
		}
	})
	if err != nil && ctx.Err() == nil {
		log.Printf("❌ Watcher stopped: %v", err)
	}
}
