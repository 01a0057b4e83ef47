package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/LJTian/NewsVoice/internal/collector"
	"github.com/LJTian/NewsVoice/internal/processor"
)

const (
	keyLastUpdated = "news:last_updated"
	keyBreaking    = "news:breaking"

	breakingTTL = 30 * time.Minute
	historyTTL  = 5 * time.Minute
)

// SnapshotRecord 每个被采用的快照一行，以 last_updated 作为幂等键
type SnapshotRecord struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	LastUpdated  string         `gorm:"size:64;uniqueIndex" json:"lastUpdated"`
	Categories   datatypes.JSON `gorm:"type:jsonb" json:"categories,omitempty"`
	Fingerprint  string         `gorm:"size:40;index" json:"fingerprint"`
	ArticleCount int            `json:"articleCount"`
	AdoptedAt    time.Time      `gorm:"index" json:"adoptedAt"`

	CreatedAt time.Time `json:"createdAt"`
}

// BreakingNewsRecord 今日要闻，同一天同一标题只保留一条
type BreakingNewsRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      string    `gorm:"size:10;uniqueIndex:idx_breaking_date_title" json:"date"`
	Title     string    `gorm:"size:512;uniqueIndex:idx_breaking_date_title" json:"title"`
	Category  string    `gorm:"size:64" json:"category"`
	Content   string    `gorm:"type:text" json:"content"`
	FetchedAt time.Time `gorm:"index" json:"fetchedAt"`
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&SnapshotRecord{}, &BreakingNewsRecord{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}

	return &Store{DB: db, Redis: rdb}, nil
}

// toValidUTF8 规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunesDB 按 rune 截断，防止超过 varchar 长度
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

func newSnapshotRecord(snap collector.Snapshot, adoptedAt time.Time) (*SnapshotRecord, error) {
	cats := snap.Categories
	if cats == nil {
		cats = map[string][]collector.DayEntry{}
	}
	bs, err := json.Marshal(cats)
	if err != nil {
		return nil, err
	}
	count := 0
	for _, entries := range cats {
		for _, e := range entries {
			count += e.ArticleCount
		}
	}
	return &SnapshotRecord{
		LastUpdated:  snap.LastUpdated,
		Categories:   datatypes.JSON([]byte(toValidUTF8(string(bs)))),
		Fingerprint:  processor.Fingerprint(snap),
		ArticleCount: count,
		AdoptedAt:    adoptedAt,
	}, nil
}

// Snapshot 还原为快照
func (r *SnapshotRecord) Snapshot() (*collector.Snapshot, error) {
	snap := &collector.Snapshot{LastUpdated: r.LastUpdated, Categories: map[string][]collector.DayEntry{}}
	if len(r.Categories) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(r.Categories, &snap.Categories); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", r.LastUpdated, err)
	}
	return snap, nil
}

// ArchiveSnapshot 归档快照，相同 last_updated 已存在时忽略。created 表示是否新插入。
func (s *Store) ArchiveSnapshot(snap collector.Snapshot, adoptedAt time.Time) (created bool, err error) {
	if snap.LastUpdated == "" {
		return false, collector.ErrMissingTimestamp
	}
	rec, err := newSnapshotRecord(snap, adoptedAt)
	if err != nil {
		return false, err
	}
	res := s.DB.Where("last_updated = ?", rec.LastUpdated).FirstOrCreate(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListSnapshots 最近归档的快照（不含分类内容），Redis 缓存 5 分钟
func (s *Store) ListSnapshots(limit int) ([]SnapshotRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	ctx := context.Background()
	cacheKey := fmt.Sprintf("news:history:%d", limit)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []SnapshotRecord
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var list []SnapshotRecord
	err := s.DB.Model(&SnapshotRecord{}).
		Select("id", "last_updated", "fingerprint", "article_count", "adopted_at", "created_at").
		Order("adopted_at DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}

	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, historyTTL).Err()
		}
	}
	return list, nil
}

// LatestSnapshot 最近一次归档的完整快照；没有记录时返回 gorm.ErrRecordNotFound
func (s *Store) LatestSnapshot() (*collector.Snapshot, error) {
	if s.DB == nil {
		return nil, gorm.ErrRecordNotFound
	}
	var rec SnapshotRecord
	if err := s.DB.Order("adopted_at DESC").First(&rec).Error; err != nil {
		return nil, err
	}
	return rec.Snapshot()
}

// PruneSnapshots 删除早于 cutoff 的快照与要闻，返回删除的快照数
func (s *Store) PruneSnapshots(cutoff time.Time) (int64, error) {
	res := s.DB.Where("adopted_at < ?", cutoff).Delete(&SnapshotRecord{})
	if res.Error != nil {
		return 0, res.Error
	}
	if err := s.DB.Where("fetched_at < ?", cutoff).Delete(&BreakingNewsRecord{}).Error; err != nil {
		return res.RowsAffected, err
	}
	return res.RowsAffected, nil
}

// SaveBreaking 写入 Redis（30 分钟）并归档到数据库
func (s *Store) SaveBreaking(ctx context.Context, bn collector.BreakingNews) error {
	if s.Redis != nil {
		if bs, err := json.Marshal(bn); err == nil {
			if err := s.Redis.Set(ctx, keyBreaking, bs, breakingTTL).Err(); err != nil {
				log.Printf("storage: cache breaking news: %v", err)
			}
		}
	}
	if s.DB == nil {
		return nil
	}

	rec := &BreakingNewsRecord{
		Date:      bn.Date,
		Title:     truncateRunesDB(toValidUTF8(bn.Title), 512),
		Category:  truncateRunesDB(bn.Category, 64),
		Content:   toValidUTF8(bn.Content),
		FetchedAt: time.Now(),
	}
	if err := s.DB.Where("date = ? AND title = ?", rec.Date, rec.Title).FirstOrCreate(rec).Error; err != nil {
		return err
	}
	return s.DB.Model(rec).Updates(map[string]any{
		"content":    rec.Content,
		"category":   rec.Category,
		"fetched_at": time.Now(),
	}).Error
}

// Breaking 读取缓存的今日要闻；未命中返回 false
func (s *Store) Breaking(ctx context.Context) (*collector.BreakingNews, bool) {
	if s.Redis == nil {
		return nil, false
	}
	bs, err := s.Redis.Get(ctx, keyBreaking).Bytes()
	if err != nil {
		return nil, false
	}
	var bn collector.BreakingNews
	if err := json.Unmarshal(bs, &bn); err != nil {
		return nil, false
	}
	return &bn, true
}

// SaveTimestamp 记录最近一次采用的 last_updated，供多个网关实例共享
func (s *Store) SaveTimestamp(ctx context.Context, ts string) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Set(ctx, keyLastUpdated, ts, 0).Err()
}

func (s *Store) LastTimestamp(ctx context.Context) (string, bool) {
	if s.Redis == nil {
		return "", false
	}
	ts, err := s.Redis.Get(ctx, keyLastUpdated).Result()
	if err != nil {
		return "", false
	}
	return ts, true
}
