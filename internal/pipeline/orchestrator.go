package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/pdfoutline/internal/config"
	"github.com/dgallion1/pdfoutline/internal/heading"
	"github.com/dgallion1/pdfoutline/internal/outline"
	"github.com/dgallion1/pdfoutline/internal/parser"
)

// ErrQueueFull is returned by Submit when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full")

// ErrStopped is returned once the orchestrator has been stopped.
var ErrStopped = errors.New("pipeline stopped")

// Orchestrator runs outline jobs on a fixed worker pool.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	log   *slog.Logger
	cfg   config.Config
	opts  parser.Options
	stats *LatencyStats

	counts *Counters

	mu       sync.RWMutex
	stopped  bool
	quit     chan struct{}
	stopOnce sync.Once
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// ParserOptions builds the parser configuration shared by every worker.
func ParserOptions(cfg config.Config, log *slog.Logger) parser.Options {
	policy, err := heading.ParseLevelPolicy(cfg.LevelPolicy)
	if err != nil {
		log.Warn("invalid level policy, using permit", "error", err)
		policy = heading.LevelPermit
	}
	engine := outline.New(outline.Config{
		MaxPages:    cfg.MaxPages,
		MaxHeadings: cfg.MaxHeadings,
		LevelPolicy: policy,
		Logger:      log,
	})
	return parser.Options{Engine: engine, MaxPages: cfg.MaxPages, Logger: log}
}

// NewOrchestrator creates the pipeline. Call Start before submitting.
func NewOrchestrator(cfg config.Config, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:   NewJobStore(cfg.JobTTL),
		queue:  make(chan *Job, cfg.MaxQueueSize),
		quit:   make(chan struct{}),
		log:    log,
		cfg:    cfg,
		opts:   ParserOptions(cfg, log),
		stats:  NewLatencyStats(cfg.JobTTL),
		counts: &Counters{},
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.opts, o.log, o.stats, o.counts, o.cfg.ValidateOutput)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline. Queued jobs that never ran are
// marked failed.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		close(o.quit)
		o.mu.Lock()
		o.stopped = true
		o.mu.Unlock()

		if o.cancel != nil {
			o.cancel()
		}
		close(o.queue)
		o.wg.Wait()
		for job := range o.queue {
			o.fail(job, "pipeline stopped")
		}
	})
}

// fail ends a job that never reached a worker, counting it like a worker
// failure.
func (o *Orchestrator) fail(job *Job, reason string) {
	job.AddError(reason)
	o.counts.observe(StatusFailed)
	job.SetStatus(StatusFailed, "queued")
}

// Submit queues a new job without blocking.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return ErrStopped
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		o.fail(job, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// Enqueue queues a job, waiting for a free slot or ctx.
func (o *Orchestrator) Enqueue(ctx context.Context, job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return ErrStopped
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	case <-o.quit:
		o.fail(job, "pipeline stopped")
		return ErrStopped
	case <-ctx.Done():
		o.fail(job, ctx.Err().Error())
		return ctx.Err()
	}
}

// SubmitWait enqueues a job and waits for it to finish.
func (o *Orchestrator) SubmitWait(ctx context.Context, job *Job) (JobSnapshot, error) {
	if err := o.Enqueue(ctx, job); err != nil {
		return job.Snapshot(), err
	}
	select {
	case <-job.Done():
		return job.Snapshot(), nil
	case <-ctx.Done():
		return job.Snapshot(), ctx.Err()
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats is the pipeline's counters and latency window.
type Stats struct {
	Workers    int             `json:"workers"`
	QueueDepth int             `json:"queue_depth"`
	QueueSize  int             `json:"queue_size"`
	Tracked    int             `json:"tracked_jobs"`
	Completed  int64           `json:"completed"`
	Failed     int64           `json:"failed"`
	Rejected   int64           `json:"rejected"`
	Latency    LatencySnapshot `json:"latency"`
}

// Stats returns a point-in-time view of the pipeline.
func (o *Orchestrator) Stats() Stats {
	return Stats{
		Workers:    o.cfg.WorkerCount,
		QueueDepth: len(o.queue),
		QueueSize:  cap(o.queue),
		Tracked:    o.jobs.Len(),
		Completed:  o.counts.completed.Load(),
		Failed:     o.counts.failed.Load(),
		Rejected:   o.counts.rejected.Load(),
		Latency:    o.stats.Snapshot(),
	}
}
