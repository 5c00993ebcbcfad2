package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// setupTestLedger creates an in-memory ledger for testing
func setupTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to create test ledger: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	l := setupTestLedger(t)

	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	first, err := l.StartRun(ctx, "python")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	articles := []Article{
		{Topic: "Variables", Path: "articles/python/01_Variables.md", Source: "placeholder"},
		{Topic: "Loops", Path: "articles/python/02_Loops.md", Source: "ai"},
	}
	for _, a := range articles {
		if err := l.RecordArticle(ctx, first, a); err != nil {
			t.Fatalf("RecordArticle: %v", err)
		}
	}
	if err := l.FinishRun(ctx, first, StatusCompleted, 3); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	l.now = func() time.Time { return base.Add(time.Hour) }
	second, err := l.StartRun(ctx, "python")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if _, err := l.StartRun(ctx, "go"); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	runs, err := l.Runs(ctx, "python", 10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != second || runs[0].Status != StatusRunning || !runs[0].FinishedAt.IsZero() {
		t.Errorf("newest run = %+v, want unfinished run %d", runs[0], second)
	}
	if runs[1].ID != first || runs[1].Status != StatusCompleted || runs[1].Archived != 3 {
		t.Errorf("oldest run = %+v, want completed run %d with 3 archived", runs[1], first)
	}
	if !runs[1].StartedAt.Equal(base) {
		t.Errorf("StartedAt = %v, want %v", runs[1].StartedAt, base)
	}

	got, err := l.Articles(ctx, first)
	if err != nil {
		t.Fatalf("Articles: %v", err)
	}
	if len(got) != len(articles) {
		t.Fatalf("got %d articles, want %d", len(got), len(articles))
	}
	for i := range articles {
		if got[i] != articles[i] {
			t.Errorf("article %d = %+v, want %+v", i, got[i], articles[i])
		}
	}
}

func TestLockExcludesSecondLedger(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()
	b, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer b.Close()

	lock, err := a.AcquireLock(ctx, "python", time.Hour)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}

	if _, err := b.AcquireLock(ctx, "python", time.Hour); !errors.Is(err, ErrLocked) {
		t.Fatalf("second AcquireLock error = %v, want ErrLocked", err)
	}
	if _, err := b.AcquireLock(ctx, "go", time.Hour); err != nil {
		t.Fatalf("other language should not be locked: %v", err)
	}

	if err := a.ReleaseLock(ctx, lock); err != nil {
		t.Fatalf("ReleaseLock: %v", err)
	}
	if _, err := b.AcquireLock(ctx, "python", time.Hour); err != nil {
		t.Fatalf("AcquireLock after release: %v", err)
	}
}

func TestStaleLockIsTakenOver(t *testing.T) {
	ctx := context.Background()
	l := setupTestLedger(t)

	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }
	stale, err := l.AcquireLock(ctx, "python", 30*time.Minute)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}

	l.now = func() time.Time { return base.Add(10 * time.Minute) }
	if _, err := l.AcquireLock(ctx, "python", 30*time.Minute); !errors.Is(err, ErrLocked) {
		t.Fatalf("fresh lock error = %v, want ErrLocked", err)
	}

	l.now = func() time.Time { return base.Add(31 * time.Minute) }
	fresh, err := l.AcquireLock(ctx, "python", 30*time.Minute)
	if err != nil {
		t.Fatalf("stale lock was not taken over: %v", err)
	}

	// Releasing with the old owner must not drop the new holder's lock.
	if err := l.ReleaseLock(ctx, stale); err != nil {
		t.Fatalf("ReleaseLock: %v", err)
	}
	if _, err := l.AcquireLock(ctx, "python", 30*time.Minute); !errors.Is(err, ErrLocked) {
		t.Fatalf("lock held by %s was released by a stale owner", fresh.Owner)
	}
}
