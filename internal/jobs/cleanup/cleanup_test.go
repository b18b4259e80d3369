package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeArchiver struct {
	cutoff   time.Time
	archived int64
	err      error
}

func (f *fakeArchiver) ArchiveEndedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.archived, f.err
}

type fakeTrimmer struct {
	cutoff  time.Time
	trimmed int64
	called  bool
}

func (f *fakeTrimmer) DeleteForArchivedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.called = true
	f.cutoff = cutoff
	return f.trimmed, nil
}

func TestRunArchivesAndTrimsWithRetentionCutoff(t *testing.T) {
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	archiver := &fakeArchiver{archived: 3}
	trimmer := &fakeTrimmer{trimmed: 7}

	job := New(archiver, trimmer, 90*24*time.Hour, nil)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}

	wantCutoff := now.Add(-90 * 24 * time.Hour)
	if !archiver.cutoff.Equal(wantCutoff) {
		t.Fatalf("unexpected archive cutoff: %v", archiver.cutoff)
	}
	if !trimmer.called || !trimmer.cutoff.Equal(wantCutoff) {
		t.Fatalf("vote trim not invoked with cutoff: %+v", trimmer)
	}
}

func TestRunStopsWhenArchivingFails(t *testing.T) {
	archiver := &fakeArchiver{err: errors.New("connection refused")}
	trimmer := &fakeTrimmer{}

	job := New(archiver, trimmer, time.Hour, nil)

	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected error from archive failure")
	}
	if trimmer.called {
		t.Fatalf("votes must not be trimmed after a failed archive pass")
	}
}

func TestRunWithoutStoresIsNoop(t *testing.T) {
	job := New(nil, nil, time.Hour, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("noop run: %v", err)
	}
}
