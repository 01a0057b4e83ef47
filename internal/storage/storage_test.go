package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/LJTian/NewsVoice/internal/collector"
)

func TestTruncateRunesDB(t *testing.T) {
	if got := truncateRunesDB("  Tin thời sự  ", 3); got != "Tin" {
		t.Fatalf("truncateRunesDB = %q", got)
	}
	if got := truncateRunesDB("ngắn", 10); got != "ngắn" {
		t.Fatalf("short string changed: %q", got)
	}
	if got := truncateRunesDB("x", 0); got != "" {
		t.Fatalf("zero limit should return empty, got %q", got)
	}
}

func TestToValidUTF8(t *testing.T) {
	if got := toValidUTF8("a\xffb"); got != "a�b" {
		t.Fatalf("toValidUTF8 = %q", got)
	}
}

func TestSnapshotRecordRoundTrip(t *testing.T) {
	snap := collector.Snapshot{
		LastUpdated: "2025-01-01T10:00:00",
		Categories: map[string][]collector.DayEntry{
			"World News": {{Date: "2025-01-01", Title: "A", Content: "x", ArticleCount: 3}},
			"Sport News": {{Date: "2025-01-01", Title: "B", Content: "y", ArticleCount: 2}},
		},
	}
	at := time.Date(2025, 1, 1, 10, 5, 0, 0, time.UTC)

	rec, err := newSnapshotRecord(snap, at)
	if err != nil {
		t.Fatalf("newSnapshotRecord error: %v", err)
	}
	if rec.ArticleCount != 5 || rec.Fingerprint == "" || !rec.AdoptedAt.Equal(at) {
		t.Fatalf("unexpected record: %+v", rec)
	}

	back, err := rec.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if back.LastUpdated != snap.LastUpdated || len(back.Categories) != 2 || back.Categories["World News"][0].Title != "A" {
		t.Fatalf("unexpected snapshot: %+v", back)
	}
}

func TestSnapshotRecordEmpty(t *testing.T) {
	rec := &SnapshotRecord{LastUpdated: "ts"}
	snap, err := rec.Snapshot()
	if err != nil || !snap.Empty() {
		t.Fatalf("empty record = %+v, %v", snap, err)
	}

	bad := &SnapshotRecord{LastUpdated: "ts", Categories: []byte("{")}
	if _, err := bad.Snapshot(); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestArchiveRequiresTimestamp(t *testing.T) {
	s := &Store{}
	if _, err := s.ArchiveSnapshot(collector.Snapshot{}, time.Now()); !errors.Is(err, collector.ErrMissingTimestamp) {
		t.Fatalf("expected ErrMissingTimestamp, got %v", err)
	}
}

func TestCacheWithoutRedis(t *testing.T) {
	s := &Store{}
	ctx := context.Background()
	if err := s.SaveTimestamp(ctx, "ts"); err != nil {
		t.Fatalf("SaveTimestamp without redis: %v", err)
	}
	if _, ok := s.LastTimestamp(ctx); ok {
		t.Fatalf("LastTimestamp should miss without redis")
	}
	if err := s.SaveBreaking(ctx, collector.BreakingNews{Title: "t"}); err != nil {
		t.Fatalf("SaveBreaking without backends: %v", err)
	}
	if _, ok := s.Breaking(ctx); ok {
		t.Fatalf("Breaking should miss without redis")
	}
	if _, err := s.LatestSnapshot(); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("LatestSnapshot without db = %v", err)
	}
}
