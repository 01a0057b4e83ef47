package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LJTian/NewsVoice/internal/collector"
)

type stubFetcher struct {
	snap *collector.Snapshot
	bn   *collector.BreakingNews
	err  error
}

func (s *stubFetcher) FetchByCategories(ctx context.Context) (*collector.Snapshot, error) {
	return s.snap, s.err
}

func (s *stubFetcher) FetchLatest(ctx context.Context) (*collector.BreakingNews, error) {
	return s.bn, s.err
}

type memStore struct {
	mu       sync.Mutex
	breaking []collector.BreakingNews
	archived []string
	ts       string
	cutoff   time.Time
}

func (m *memStore) SaveBreaking(ctx context.Context, bn collector.BreakingNews) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breaking = append(m.breaking, bn)
	return nil
}

func (m *memStore) ArchiveSnapshot(snap collector.Snapshot, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archived = append(m.archived, snap.LastUpdated)
	return true, nil
}

func (m *memStore) SaveTimestamp(ctx context.Context, ts string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ts = ts
	return nil
}

func (m *memStore) PruneSnapshots(cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutoff = cutoff
	return 2, nil
}

func TestRunOnceRunsAllJobs(t *testing.T) {
	f := &stubFetcher{
		snap: &collector.Snapshot{LastUpdated: "2025-01-01T10:00:00", Categories: map[string][]collector.DayEntry{}},
		bn:   &collector.BreakingNews{Title: "Tin nóng"},
	}
	store := &memStore{}
	now := time.Date(2025, 1, 8, 3, 0, 0, 0, time.UTC)

	s, err := New(
		BreakingNewsJob(DefaultBreakingSpec, f, store),
		SnapshotArchiveJob("", f, store),
		CleanupJob(DefaultCleanupSpec, store, 0, func() time.Time { return now }),
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce error: %v", err)
	}

	if len(store.breaking) != 1 || store.breaking[0].Title != "Tin nóng" {
		t.Fatalf("breaking not saved: %+v", store.breaking)
	}
	if len(store.archived) != 1 || store.ts != "2025-01-01T10:00:00" {
		t.Fatalf("snapshot not archived: %+v ts=%q", store.archived, store.ts)
	}
	if want := now.Add(-DefaultRetention); !store.cutoff.Equal(want) {
		t.Fatalf("cutoff = %v, want %v", store.cutoff, want)
	}
	if len(s.Cron().Entries()) != 2 {
		t.Fatalf("jobs without spec should not be scheduled, entries=%d", len(s.Cron().Entries()))
	}
}

func TestRunOnceReportsFailure(t *testing.T) {
	store := &memStore{}
	var ran bool
	s, err := New(
		BreakingNewsJob("", &stubFetcher{err: errors.New("backend down")}, store),
		Job{Name: "ok", Run: func(context.Context) error { ran = true; return nil }},
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	err = s.RunOnce(context.Background())
	if err == nil {
		t.Fatalf("expected error from failing job")
	}
	if !ran {
		t.Fatalf("other jobs should still run")
	}
}

func TestNewRejectsBadSpec(t *testing.T) {
	if _, err := New(Job{Name: "bad", Spec: "not a cron", Run: func(context.Context) error { return nil }}); err == nil {
		t.Fatalf("expected error for invalid cron spec")
	}
}
