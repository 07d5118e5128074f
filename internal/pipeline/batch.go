package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/pdfoutline/internal/render"
)

// FileResult is the outcome of one document in a batch run.
type FileResult struct {
	Input  string    `json:"input"`
	Output string    `json:"output,omitempty"`
	Status JobStatus `json:"status"`
	Error  string    `json:"error,omitempty"`
}

// Summary reports a batch run.
type Summary struct {
	InputDir  string        `json:"input_dir"`
	OutputDir string        `json:"output_dir"`
	Completed int           `json:"completed"`
	Failed    int           `json:"failed"`
	Rejected  int           `json:"rejected"`
	Files     []FileResult  `json:"files"`
	Elapsed   time.Duration `json:"elapsed"`
}

// ListPDFs returns the .pdf files directly inside dir, sorted by name.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// RunBatch writes <stem><ext> into outputDir for every PDF in inputDir. A
// document that fails is logged and skipped; the run continues. A missing
// input directory is created and yields an empty summary.
func (o *Orchestrator) RunBatch(ctx context.Context, inputDir, outputDir string, format render.Format) (*Summary, error) {
	start := time.Now()
	sum := &Summary{InputDir: inputDir, OutputDir: outputDir, Files: []FileResult{}}

	if _, err := os.Stat(inputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(inputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create input dir: %w", err)
		}
		o.log.Info("input directory created, place PDF files in it and re-run", "input_dir", inputDir)
		return sum, nil
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths, err := ListPDFs(inputDir)
	if err != nil {
		return nil, fmt.Errorf("list input dir: %w", err)
	}
	if len(paths) == 0 {
		o.log.Info("no PDF files found", "input_dir", inputDir)
	}

	jobs := make([]*Job, 0, len(paths))
	for _, path := range paths {
		job, err := o.submitFile(ctx, path, outputDir, format)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.log.Error("skipping document", "path", path, "error", err)
		}
		jobs = append(jobs, job)
	}

	for i, job := range jobs {
		select {
		case <-job.Done():
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		snap := job.Snapshot()
		res := FileResult{Input: paths[i], Output: snap.OutputPath, Status: snap.Status}
		if len(snap.Errors) > 0 {
			res.Error = strings.Join(snap.Errors, "; ")
		}
		switch snap.Status {
		case StatusCompleted:
			sum.Completed++
		case StatusRejected:
			sum.Rejected++
		default:
			sum.Failed++
		}
		sum.Files = append(sum.Files, res)
	}

	sum.Elapsed = time.Since(start)
	o.log.Info("batch complete",
		"input_dir", inputDir,
		"completed", sum.Completed,
		"failed", sum.Failed,
		"rejected", sum.Rejected,
		"elapsed", sum.Elapsed.Round(time.Millisecond).String(),
	)
	return sum, nil
}

// submitFile reads path and enqueues it. The returned job is always non-nil
// and reaches a terminal status even when reading or queuing fails.
func (o *Orchestrator) submitFile(ctx context.Context, path, outputDir string, format render.Format) (*Job, error) {
	data, err := os.ReadFile(path)
	job := NewJob(filepath.Base(path), data, format)
	job.OutputDir = outputDir
	if err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "reading")
		return job, err
	}
	if err := o.Enqueue(ctx, job); err != nil {
		return job, err
	}
	return job, nil
}
