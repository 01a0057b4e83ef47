package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/LJTian/NewsVoice/internal/collector"
)

const (
	DefaultBreakingSpec = "*/30 * * * *"
	DefaultCleanupSpec  = "0 3 * * *"
	DefaultRetention    = 7 * 24 * time.Hour
)

type BreakingStore interface {
	SaveBreaking(ctx context.Context, bn collector.BreakingNews) error
}

type SnapshotArchive interface {
	ArchiveSnapshot(snap collector.Snapshot, adoptedAt time.Time) (bool, error)
	SaveTimestamp(ctx context.Context, ts string) error
}

type Pruner interface {
	PruneSnapshots(cutoff time.Time) (int64, error)
}

// BreakingNewsJob 拉取今日要闻写入缓存
func BreakingNewsJob(spec string, f collector.Fetcher, store BreakingStore) Job {
	return Job{
		Name: "breaking-news",
		Spec: spec,
		Run: func(ctx context.Context) error {
			bn, err := f.FetchLatest(ctx)
			if err != nil {
				return err
			}
			return store.SaveBreaking(ctx, *bn)
		},
	}
}

// SnapshotArchiveJob 拉取分组新闻并归档；同一 last_updated 只入库一次
func SnapshotArchiveJob(spec string, f collector.Fetcher, archive SnapshotArchive) Job {
	return Job{
		Name: "snapshot-archive",
		Spec: spec,
		Run: func(ctx context.Context) error {
			snap, err := f.FetchByCategories(ctx)
			if err != nil {
				return err
			}
			created, err := archive.ArchiveSnapshot(*snap, time.Now())
			if err != nil {
				return err
			}
			if err := archive.SaveTimestamp(ctx, snap.LastUpdated); err != nil {
				log.Printf("snapshot-archive: save timestamp: %v", err)
			}
			log.Printf("snapshot-archive: last_updated=%s categories=%d new=%v", snap.LastUpdated, len(snap.Categories), created)
			return nil
		},
	}
}

// CleanupJob 删除超过保留期的归档
func CleanupJob(spec string, p Pruner, retention time.Duration, now func() time.Time) Job {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if now == nil {
		now = time.Now
	}
	return Job{
		Name: "archive-cleanup",
		Spec: spec,
		Run: func(ctx context.Context) error {
			n, err := p.PruneSnapshots(now().Add(-retention))
			if err != nil {
				return err
			}
			log.Printf("archive-cleanup: removed %d snapshots", n)
			return nil
		},
	}
}
