package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/pdfoutline/internal/render"
	"github.com/fsnotify/fsnotify"
)

// Watch processes PDFs as they appear in inputDir until ctx is done. Each
// path is submitted once its events have been quiet for debounce, so a file
// still being copied is not read half-written. onJob, if non-nil, is called
// with every submitted job.
func (o *Orchestrator) Watch(ctx context.Context, inputDir, outputDir string, format render.Format, debounce time.Duration, onJob func(*Job)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(inputDir); err != nil {
		return fmt.Errorf("watch %s: %w", inputDir, err)
	}
	o.log.Info("watching for PDFs", "input_dir", inputDir, "output_dir", outputDir)

	d := newDebouncer(debounce, func(path string) {
		if ctx.Err() != nil {
			return
		}
		job, err := o.submitFile(ctx, path, outputDir, format)
		if err != nil {
			o.log.Error("skipping document", "path", path, "error", err)
		}
		if onJob != nil {
			onJob(job)
		}
	})
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			o.log.Warn("watch error", "error", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".pdf") {
				continue
			}
			d.touch(ev.Name)
		}
	}
}

// debouncer calls fn for a path once its events have been quiet for delay.
type debouncer struct {
	delay time.Duration
	fn    func(path string)

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

func newDebouncer(delay time.Duration, fn func(path string)) *debouncer {
	return &debouncer{delay: delay, fn: fn, timers: map[string]*time.Timer{}}
}

func (d *debouncer) touch(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touchLocked(path)
}

func (d *debouncer) touchLocked(path string) {
	if t, ok := d.timers[path]; ok && t.Stop() {
		t.Reset(d.delay)
		return
	}
	// A timer that already fired may have read the file before this event,
	// so it gets a fresh one.
	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() { d.fire(path, &t) })
	d.timers[path] = t
}

func (d *debouncer) fire(path string, self **time.Timer) {
	defer d.wg.Done()
	d.mu.Lock()
	if d.timers[path] == *self {
		delete(d.timers, path)
	}
	d.mu.Unlock()
	d.fn(path)
}

// stop cancels pending timers and waits for callbacks already running.
func (d *debouncer) stop() {
	d.mu.Lock()
	for _, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}
