package main

import (
	"context"
	"log"
	"time"

	"github.com/LJTian/NewsVoice/internal/collector"
	"github.com/LJTian/NewsVoice/internal/config"
	"github.com/LJTian/NewsVoice/internal/scheduler"
	"github.com/LJTian/NewsVoice/internal/storage"
)

// 一个仅执行一次采集任务的命令行入口：适合手动触发归档和清理
func main() {
	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	news := collector.NewNewsClient(cfg.BackendURL)

	// Spec 留空：只跑一轮，不注册定时
	s, err := scheduler.New(
		scheduler.BreakingNewsJob("", news, store),
		scheduler.SnapshotArchiveJob("", news, store),
		scheduler.CleanupJob("", store, cfg.ArchiveRetention, nil),
	)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := s.RunOnce(ctx); err != nil {
		log.Fatalf("collect failed: %v", err)
	}
}
