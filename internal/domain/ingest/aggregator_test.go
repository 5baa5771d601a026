package ingest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"channelbot/internal/domain/content"
)

type recordedCommit struct {
	mu    sync.Mutex
	calls [][]content.FileSpec
}

func (r *recordedCommit) fn(ctx context.Context, sessionID string, files []content.FileSpec) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, files)
	return fmt.Sprintf("item-%d", len(r.calls)), nil
}

func (r *recordedCommit) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recordedCommit) call(i int) []content.FileSpec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[i]
}

func file(ref string) content.FileSpec {
	return content.FileSpec{FileRef: ref, MediaKind: content.MediaPhoto}
}

func setupAggregator(t *testing.T) (*Aggregator, *FakeClock, *recordedCommit) {
	t.Helper()
	clock := NewFakeClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	rec := &recordedCommit{}
	return NewAggregator(500*time.Millisecond, clock, rec.fn, nil), clock, rec
}

func TestGroupCollectsFilesWithinWindow(t *testing.T) {
	agg, clock, rec := setupAggregator(t)
	ctx := context.Background()

	res, err := agg.Submit(ctx, "sess", file("a"), "batch-1")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if !res.Pending || res.Files != 1 {
		t.Fatalf("expected pending group of 1, got %+v", res)
	}

	clock.Advance(200 * time.Millisecond)
	res, err = agg.Submit(ctx, "sess", file("b"), "batch-1")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if !res.Pending || res.Files != 2 {
		t.Fatalf("expected pending group of 2, got %+v", res)
	}
	if rec.count() != 0 {
		t.Fatal("group committed before the window closed")
	}

	clock.Advance(300 * time.Millisecond)
	if rec.count() != 1 {
		t.Fatalf("expected one commit, got %d", rec.count())
	}
	files := rec.call(0)
	if len(files) != 2 || files[0].FileRef != "a" || files[1].FileRef != "b" {
		t.Fatalf("expected files in arrival order, got %+v", files)
	}
	if _, ok := agg.PendingCount("sess", "batch-1"); ok {
		t.Fatal("group should be gone after commit")
	}
}

func TestDeadlineNotExtendedByLaterFiles(t *testing.T) {
	agg, clock, rec := setupAggregator(t)
	ctx := context.Background()

	first, err := agg.Submit(ctx, "sess", file("a"), "batch-1")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	// a file near the end of the window must not push the deadline out
	clock.Advance(400 * time.Millisecond)
	later, err := agg.Submit(ctx, "sess", file("b"), "batch-1")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if !later.Deadline.Equal(first.Deadline) {
		t.Fatalf("deadline moved from %v to %v", first.Deadline, later.Deadline)
	}

	clock.Advance(100 * time.Millisecond)
	if rec.count() != 1 {
		t.Fatalf("expected commit at the original deadline, got %d commits", rec.count())
	}
	if len(rec.call(0)) != 2 {
		t.Fatalf("expected both files in the commit, got %d", len(rec.call(0)))
	}
}

func TestReusedKeyAfterCommitStartsNewGroup(t *testing.T) {
	agg, clock, rec := setupAggregator(t)
	ctx := context.Background()

	if _, err := agg.Submit(ctx, "sess", file("a"), "batch-1"); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	clock.Advance(500 * time.Millisecond)
	if rec.count() != 1 {
		t.Fatalf("expected first commit, got %d", rec.count())
	}

	res, err := agg.Submit(ctx, "sess", file("b"), "batch-1")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if !res.Pending || res.Files != 1 {
		t.Fatalf("expected a fresh group, got %+v", res)
	}
	clock.Advance(500 * time.Millisecond)
	if rec.count() != 2 {
		t.Fatalf("expected second commit, got %d", rec.count())
	}
	if rec.call(1)[0].FileRef != "b" {
		t.Fatalf("second commit carries the wrong file: %+v", rec.call(1))
	}
}

func TestEmptyGroupKeyCommitsImmediately(t *testing.T) {
	agg, _, rec := setupAggregator(t)

	res, err := agg.Submit(context.Background(), "sess", file("a"), "")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if res.Pending {
		t.Fatal("one-shot submit should not be pending")
	}
	if res.ItemID == "" {
		t.Fatal("one-shot submit should return the committed item id")
	}
	if rec.count() != 1 || len(rec.call(0)) != 1 {
		t.Fatalf("expected one immediate single-file commit, got %d", rec.count())
	}
}

func TestSessionsDoNotShareGroups(t *testing.T) {
	agg, clock, rec := setupAggregator(t)
	ctx := context.Background()

	if _, err := agg.Submit(ctx, "sess-a", file("a"), "batch"); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if _, err := agg.Submit(ctx, "sess-b", file("b"), "batch"); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	clock.Advance(500 * time.Millisecond)
	if rec.count() != 2 {
		t.Fatalf("expected one commit per session, got %d", rec.count())
	}
	for i := 0; i < 2; i++ {
		if len(rec.call(i)) != 1 {
			t.Fatalf("commit %d mixed files across sessions: %+v", i, rec.call(i))
		}
	}
}

func TestCancelDropsPendingGroup(t *testing.T) {
	agg, clock, rec := setupAggregator(t)
	ctx := context.Background()

	if _, err := agg.Submit(ctx, "sess", file("a"), "batch-1"); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if !agg.Cancel("sess", "batch-1") {
		t.Fatal("expected cancel to find the group")
	}
	if agg.Cancel("sess", "batch-1") {
		t.Fatal("second cancel should report nothing to drop")
	}

	clock.Advance(time.Second)
	if rec.count() != 0 {
		t.Fatal("cancelled group still committed")
	}
}

func TestConcurrentSubmitsLandInOneGroup(t *testing.T) {
	agg, clock, rec := setupAggregator(t)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := agg.Submit(ctx, "sess", file(fmt.Sprintf("f-%d", i)), "batch-1"); err != nil {
				t.Errorf("Submit returned error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if count, ok := agg.PendingCount("sess", "batch-1"); !ok || count != n {
		t.Fatalf("expected %d files pending, got %d (ok=%v)", n, count, ok)
	}

	clock.Advance(500 * time.Millisecond)
	if rec.count() != 1 {
		t.Fatalf("expected a single commit, got %d", rec.count())
	}
	if len(rec.call(0)) != n {
		t.Fatalf("commit dropped files: got %d of %d", len(rec.call(0)), n)
	}
}
