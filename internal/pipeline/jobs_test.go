package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/pdfoutline/internal/model"
	"github.com/dgallion1/pdfoutline/internal/render"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewJob(t *testing.T) {
	a := NewJob("a.pdf", []byte("x"), render.FormatJSON)
	b := NewJob("b.pdf", []byte("x"), render.FormatJSON)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
	if a.Status != StatusQueued || a.ContentHash != ContentHashHex([]byte("x")) {
		t.Errorf("unexpected new job: %+v", a.Snapshot())
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("doc.pdf", nil, render.FormatJSON)

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusProcessing, "parsing"},
		{StatusProcessing, "rendering"},
		{StatusProcessing, "writing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}

	select {
	case <-job.Done():
	default:
		t.Fatal("expected Done to be closed after completion")
	}
}

func TestJob_TerminalIsFinal(t *testing.T) {
	job := NewJob("doc.pdf", []byte("data"), render.FormatJSON)
	job.SetStatus(StatusRejected, "parsing")
	job.SetStatus(StatusCompleted, "done")
	if job.Status != StatusRejected {
		t.Errorf("expected status to stay %q, got %q", StatusRejected, job.Status)
	}
	if job.FileData() != nil {
		t.Error("expected file data released after terminal status")
	}
}

func TestJob_DoneOnZeroValue(t *testing.T) {
	job := &Job{ID: "zero", Status: StatusFailed}
	select {
	case <-job.Done():
	default:
		t.Error("expected Done closed for a job already failed")
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("page 3 unreadable")
	job.AddError("write failed")

	snap := job.Snapshot()
	if len(snap.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Errors))
	}
	if snap.Errors[0] != "page 3 unreadable" {
		t.Errorf("expected first error %q, got %q", "page 3 unreadable", snap.Errors[0])
	}
}

func TestJob_SetResult(t *testing.T) {
	job := NewJob("doc.pdf", nil, render.FormatJSON)
	o := &model.Outline{Title: "Guide", Headings: []model.HeadingCandidate{{Text: "Intro", Level: model.H1, Page: 1}}}
	job.SetResult(o, []byte("{}"), "/out/doc.json", 1500*time.Millisecond)

	snap := job.Snapshot()
	if snap.Title != "Guide" || snap.Headings != 1 || snap.OutputPath != "/out/doc.json" || snap.DurationMs != 1500 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	if string(job.Output()) != "{}" {
		t.Errorf("unexpected output %q", job.Output())
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 tracked job, got %d", store.Len())
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", Status: StatusCompleted, UpdatedAt: time.Now()}
	running := &Job{ID: "running", Status: StatusProcessing, UpdatedAt: time.Now()}
	store.Put(expired)
	store.Put(running)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", Status: StatusCompleted, UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Get("running") == nil {
		t.Error("expected in-flight job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
