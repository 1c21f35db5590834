// Package worker runs ingestion jobs in the background.
//
// HTTP uploads and the directory watcher both submit batches here. The pool
// normally runs a single worker, so batches are processed one at a time in
// submission order (FIFO) and files within a batch in upload order.
//
// Go Pattern: a buffered channel is the job queue, worker goroutines range
// over it, and a WaitGroup lets Stop wait for in-flight work.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shimizu-Technology/playertrack-api/internal/metrics"
	"github.com/Shimizu-Technology/playertrack-api/internal/models"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/ingest"
)

// EventJobCompleted is sent to the notifier when a job finishes.
const EventJobCompleted = "ingest.job.completed"

// Errors returned by Submit.
var (
	ErrQueueFull = errors.New("job queue is full; try again later")
	ErrStopped   = errors.New("worker pool is stopped")
)

// Ingester processes a batch of files.
type Ingester interface {
	IngestBatch(ctx context.Context, jobID string, files []ingest.File) []models.IngestResult
}

// JobLog records job lifecycle. Optional.
type JobLog interface {
	CreateJob(ctx context.Context, j *models.IngestJob) error
	MarkJobProcessing(ctx context.Context, id string) error
	FinishJob(ctx context.Context, id string, results []models.IngestResult) error
}

// Notifier is told about finished jobs. Optional.
type Notifier interface {
	NotifyEvent(ctx context.Context, event string, data interface{})
}

// Job is one batch of files.
type Job struct {
	ID        string
	Source    string
	Files     []ingest.File
	CreatedAt time.Time

	done chan []models.IngestResult
}

// Done is closed after the job's results have been sent on it.
func (j *Job) Done() <-chan []models.IngestResult {
	return j.done
}

// Wait blocks until the job finishes or ctx ends. The job keeps running in
// the background if ctx ends first.
func (j *Job) Wait(ctx context.Context) ([]models.IngestResult, error) {
	select {
	case results := <-j.done:
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// JobSummary is the notification payload for EventJobCompleted.
type JobSummary struct {
	JobID   string                `json:"job_id"`
	Source  string                `json:"source"`
	Results []models.IngestResult `json:"results"`
}

// Pool manages the worker goroutines.
type Pool struct {
	jobs     chan *Job
	workers  int
	ingester Ingester
	jobLog   JobLog
	notifier Notifier
	metrics  *metrics.Manager

	mu      sync.RWMutex // guards stopped against Submit racing Stop
	stopped bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPool creates a pool. jobLog, notifier and m may be nil.
func NewPool(workers, queueSize int, ing Ingester, jobLog JobLog, notifier Notifier, m *metrics.Manager) *Pool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		jobs:     make(chan *Job, queueSize),
		workers:  workers,
		ingester: ing,
		jobLog:   jobLog,
		notifier: notifier,
		metrics:  m,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	log.Printf("🚀 Starting %d ingestion worker(s)", p.workers)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop stops accepting jobs, lets the workers drain the queue and waits
// for them. Jobs already queued are still processed.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	log.Println("⏹️  Stopping workers...")
	p.wg.Wait()
	p.cancel()
	log.Println("✅ All workers stopped")
}

// Submit queues a batch of files without blocking.
func (p *Pool) Submit(ctx context.Context, source string, files []ingest.File) (*Job, error) {
	job := &Job{
		ID:        uuid.New().String(),
		Source:    source,
		Files:     files,
		CreatedAt: time.Now().UTC(),
		done:      make(chan []models.IngestResult, 1),
	}

	if p.jobLog != nil {
		rec := &models.IngestJob{ID: job.ID, Source: source, TotalCount: len(files), CreatedAt: job.CreatedAt}
		if err := p.jobLog.CreateJob(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to record job: %w", err)
		}
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.abandon(ctx, job, ErrStopped)
		return nil, ErrStopped
	}

	// Go Pattern: `select` with `default` makes the send non-blocking, so a
	// full queue is reported to the caller instead of hanging the request.
	select {
	case p.jobs <- job:
		log.Printf("📥 Job queued: %s (%s, %d file(s))", job.ID, source, len(files))
		p.metrics.SetQueueSize(len(p.jobs))
		return job, nil
	default:
		p.abandon(ctx, job, ErrQueueFull)
		return nil, ErrQueueFull
	}
}

// abandon marks a job that never reached the queue as failed.
func (p *Pool) abandon(ctx context.Context, job *Job, reason error) {
	if p.jobLog == nil {
		return
	}
	results := make([]models.IngestResult, len(job.Files))
	for i, f := range job.Files {
		results[i] = models.IngestResult{JobID: job.ID, Filename: f.Name, Status: models.IngestFailed, Error: reason.Error()}
	}
	if err := p.jobLog.FinishJob(ctx, job.ID, results); err != nil {
		log.Printf("⚠️  Failed to record abandoned job %s: %v", job.ID, err)
	}
}

// QueueSize returns the current number of jobs in the queue.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}

// WorkerCount returns the number of workers.
func (p *Pool) WorkerCount() int {
	return p.workers
}

// worker is the main loop for each worker goroutine.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	log.Printf("👷 Worker %d started", id)

	// Go Pattern: `range` over a channel reads values until it is closed.
	for job := range p.jobs {
		p.metrics.SetQueueSize(len(p.jobs))
		log.Printf("👷 Worker %d processing job: %s (%d file(s))", id, job.ID, len(job.Files))
		p.process(job)
	}

	log.Printf("👷 Worker %d stopped", id)
}

func (p *Pool) process(job *Job) {
	ctx := p.ctx

	if p.jobLog != nil {
		if err := p.jobLog.MarkJobProcessing(ctx, job.ID); err != nil {
			log.Printf("⚠️  Failed to mark job %s processing: %v", job.ID, err)
		}
	}

	results := p.ingester.IngestBatch(ctx, job.ID, job.Files)

	if p.jobLog != nil {
		if err := p.jobLog.FinishJob(ctx, job.ID, results); err != nil {
			log.Printf("⚠️  Failed to record results of job %s: %v", job.ID, err)
		}
	}
	if p.notifier != nil {
		p.notifier.NotifyEvent(ctx, EventJobCompleted, JobSummary{JobID: job.ID, Source: job.Source, Results: results})
	}
	p.metrics.RecordJob()

	job.done <- results
	close(job.done)
	log.Printf("✅ Job %s completed", job.ID)
}
