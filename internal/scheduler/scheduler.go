package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// Job 一个定时任务；Spec 为空时只能通过 RunOnce 执行
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	cron *cron.Cron
	jobs []Job

	// 首轮执行延迟，避免与网关启动时轮询器的首次拉取争抢后端
	StartupDelay time.Duration
}

func New(jobs ...Job) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:         c,
		jobs:         jobs,
		StartupDelay: 15 * time.Second,
	}

	for _, j := range jobs {
		if j.Spec == "" {
			continue
		}
		job := j
		if _, err := c.AddFunc(job.Spec, func() { _ = runJob(context.Background(), job) }); err != nil {
			return nil, fmt.Errorf("scheduler: job %s: %w", job.Name, err)
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	if s.StartupDelay > 0 {
		time.AfterFunc(s.StartupDelay, func() {
			go func() { _ = s.RunOnce(context.Background()) }()
		})
	}
}

// Stop 停止调度，返回的 context 在运行中的任务结束后完成
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Cron 暴露底层 cron，方便 main 追加非采集类任务
func (s *Scheduler) Cron() *cron.Cron {
	return s.cron
}

// RunOnce 并发执行全部任务一次，返回第一个错误；单个任务失败不影响其它任务
func (s *Scheduler) RunOnce(ctx context.Context) error {
	log.Println("start scheduled jobs...")

	var g errgroup.Group
	for _, j := range s.jobs {
		job := j
		g.Go(func() error {
			return runJob(ctx, job)
		})
	}

	err := g.Wait()
	log.Println("scheduled jobs done")
	return err
}

func runJob(ctx context.Context, j Job) error {
	start := time.Now()
	if err := j.Run(ctx); err != nil {
		log.Printf("job %s error: %v", j.Name, err)
		return fmt.Errorf("%s: %w", j.Name, err)
	}
	log.Printf("job %s done in %s", j.Name, time.Since(start).Round(time.Millisecond))
	return nil
}
