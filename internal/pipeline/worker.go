package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/pdfoutline/internal/outline"
	"github.com/dgallion1/pdfoutline/internal/parser"
	"github.com/dgallion1/pdfoutline/internal/render"
)

// Worker processes a single document job.
type Worker struct {
	opts     parser.Options
	log      *slog.Logger
	stats    *LatencyStats
	counts   *Counters
	validate bool
}

func NewWorker(opts parser.Options, log *slog.Logger, stats *LatencyStats, counts *Counters, validate bool) *Worker {
	return &Worker{
		opts:     opts,
		log:      log,
		stats:    stats,
		counts:   counts,
		validate: validate,
	}
}

// finish counts the outcome before releasing waiters on the job.
func (w *Worker) finish(job *Job, status JobStatus, phase string) {
	w.counts.observe(status)
	job.SetStatus(status, phase)
}

// Process parses, renders, and optionally writes one document. Failures are
// recorded on the job; nothing propagates to the caller.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	job.SetStatus(StatusProcessing, "parsing")
	p, err := parser.ForFile(job.Filename, w.opts)
	if err != nil {
		log.Warn("unsupported format", "error", err)
		job.AddError(err.Error())
		w.finish(job, StatusRejected, "parsing")
		return
	}

	out, err := p.Parse(ctx, bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		status := StatusFailed
		if rejected(err) {
			status = StatusRejected
		}
		log.Error("parse failed", "error", err, "status", status)
		job.AddError(fmt.Sprintf("parse: %s", err))
		w.finish(job, status, "parsing")
		return
	}

	job.SetStatus(StatusProcessing, "rendering")
	format := job.Format
	if format == "" {
		format = render.FormatJSON
	}
	data, err := render.Render(out, format)
	if err == nil && w.validate && format == render.FormatJSON {
		err = render.Validate(data)
	}
	if err != nil {
		log.Error("render failed", "error", err)
		job.AddError(fmt.Sprintf("render: %s", err))
		w.finish(job, StatusFailed, "rendering")
		return
	}

	var path string
	if job.OutputDir != "" {
		job.SetStatus(StatusProcessing, "writing")
		path, err = WriteOutput(job.OutputDir, job.Filename, format, data)
		if err != nil {
			log.Error("write failed", "error", err)
			job.AddError(fmt.Sprintf("write: %s", err))
			w.finish(job, StatusFailed, "writing")
			return
		}
	}

	elapsed := time.Since(start)
	w.stats.Record(elapsed)
	job.SetResult(out, data, path, elapsed)
	w.finish(job, StatusCompleted, "done")
	log.Info("outline complete",
		"title", out.Title,
		"headings", len(out.Headings),
		"output", path,
		"duration_ms", elapsed.Milliseconds(),
	)
}

// rejected reports errors that refuse the document rather than fail on it.
func rejected(err error) bool {
	return errors.Is(err, outline.ErrTooManyPages) || errors.Is(err, outline.ErrEmptyInput)
}

// OutputName is <stem><ext> for the input filename and format.
func OutputName(filename string, format render.Format) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base)) + format.Ext()
}

// WriteOutput writes data to dir/OutputName atomically and returns the path.
func WriteOutput(dir, filename string, format render.Format, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, OutputName(filename, format))

	tmp, err := os.CreateTemp(dir, ".pdfoutline-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename output: %w", err)
	}
	return path, nil
}
