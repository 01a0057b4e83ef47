// Package poller 维护一份本地新闻快照：按时段调整轮询频率，
// 发现服务端 last_updated 前进时只打“有新内容”标记，等调用方确认后才替换展示数据。
package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/LJTian/NewsVoice/internal/collector"
)

const (
	crawlWindowInterval = 5 * time.Minute
	normalInterval      = 30 * time.Minute
	intervalCheckEvery  = time.Hour
	staleAfter          = 30 * time.Minute
)

// IntervalFor 23 点与 0 点是后端抓取窗口，5 分钟一次；其余时段 30 分钟一次
func IntervalFor(t time.Time) time.Duration {
	switch t.Hour() {
	case 23, 0:
		return crawlWindowInterval
	default:
		return normalInterval
	}
}

// Source 轮询器只需要分类接口
type Source interface {
	FetchByCategories(ctx context.Context) (*collector.Snapshot, error)
}

// Options 均可为空
type Options struct {
	Clock Clock
	// OnAdopt 在快照被采用（首次、手动刷新）后调用，不持锁
	OnAdopt func(collector.Snapshot)
	// OnNewContent 在 pending 从 false 变为 true 时调用一次，不持锁
	OnNewContent func(lastUpdated string)
}

// Status 某一时刻的只读视图。Snapshot 与轮询器共享底层 map，调用方不得修改。
type Status struct {
	Snapshot      collector.Snapshot
	LastUpdated   string
	RecordedAt    time.Time
	HasNewContent bool
	InFlight      bool
	Interval      time.Duration
	Running       bool
}

// Poller 生命周期跟随宿主视图：挂载时 Start，卸载时 Stop
type Poller struct {
	source       Source
	clock        Clock
	onAdopt      func(collector.Snapshot)
	onNewContent func(string)

	mu           sync.Mutex
	current      collector.Snapshot
	lastUpdated  string
	hasTimestamp bool
	recordedAt   time.Time
	pending      bool
	inFlight     int

	running    bool
	run        int // 每次 Start 加一，旧一轮的回调和请求结果据此丢弃
	schedGen   int // 每次重排轮询定时器加一
	ctx        context.Context
	cancel     context.CancelFunc
	interval   time.Duration
	fetchTimer Timer
	checkTimer Timer
	visible    bool
}

func New(source Source, opts Options) *Poller {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock(nil)
	}
	return &Poller{
		source:       source,
		clock:        clock,
		onAdopt:      opts.OnAdopt,
		onNewContent: opts.OnNewContent,
		visible:      true,
	}
}

// Start 立即拉取一次，然后按时段间隔定时拉取，同时每小时重新评估间隔。
// 重复调用不会产生重复的定时器。ctx 结束等同于 Stop。
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.run++
	run := p.run
	p.ctx, p.cancel = context.WithCancel(ctx)
	runCtx := p.ctx
	p.visible = true
	p.interval = IntervalFor(p.clock.Now())
	p.scheduleFetchLocked()
	p.scheduleCheckLocked()
	interval := p.interval
	p.mu.Unlock()

	context.AfterFunc(runCtx, func() { p.stopRun(run) })

	log.Printf("poller: started, interval=%s", interval)
	p.fetch(runCtx, run, false)
}

// Stop 取消两个定时器与可见性处理，并中止进行中的请求；之后不会再改动状态
func (p *Poller) Stop() {
	p.mu.Lock()
	run := p.run
	p.mu.Unlock()
	p.stopRun(run)
}

func (p *Poller) stopRun(run int) {
	p.mu.Lock()
	if !p.running || p.run != run {
		p.mu.Unlock()
		return
	}
	p.running = false
	if p.fetchTimer != nil {
		p.fetchTimer.Stop()
		p.fetchTimer = nil
	}
	if p.checkTimer != nil {
		p.checkTimer.Stop()
		p.checkTimer = nil
	}
	cancel := p.cancel
	p.mu.Unlock()

	cancel()
	log.Println("poller: stopped")
}

// Fetch 发起一次请求。manual=true 时无论 pending 与否都直接采用新快照。
// 未启动或已停止时不做任何事。错误只记录日志，不向上返回。
func (p *Poller) Fetch(ctx context.Context, manual bool) {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		log.Println("poller: fetch ignored, not running")
		return
	}
	run, runCtx := p.run, p.ctx
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(runCtx, cancel)
	defer stop()

	p.fetch(ctx, run, manual)
}

// RefreshNow 用户确认“拉取最新”，等同于 Fetch(ctx, true)
func (p *Poller) RefreshNow(ctx context.Context) {
	p.Fetch(ctx, true)
}

// SetVisible 宿主视图的可见性变化。从隐藏切回可见时，若记录时间戳已超过 30 分钟，
// 视为定时器可能没跑（休眠、后台标签页），立即手动拉取一次。
func (p *Poller) SetVisible(visible bool) {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	wasHidden := !p.visible
	p.visible = visible
	stale := visible && wasHidden && p.hasTimestamp &&
		p.clock.Now().Sub(p.recordedAt) > staleAfter
	run, runCtx := p.run, p.ctx
	p.mu.Unlock()

	if stale {
		log.Println("poller: visible again and data is stale, refreshing")
		p.fetch(runCtx, run, true)
	}
}

// Status 返回当前状态的拷贝
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		Snapshot:      p.current,
		LastUpdated:   p.lastUpdated,
		RecordedAt:    p.recordedAt,
		HasNewContent: p.pending,
		InFlight:      p.inFlight > 0,
		Interval:      p.interval,
		Running:       p.running,
	}
}

func (p *Poller) fetch(ctx context.Context, run int, manual bool) {
	p.mu.Lock()
	if !p.running || p.run != run {
		p.mu.Unlock()
		return
	}
	p.inFlight++
	p.mu.Unlock()

	snap, err := p.source.FetchByCategories(ctx)

	p.mu.Lock()
	p.inFlight--
	if err != nil {
		p.mu.Unlock()
		log.Printf("poller: fetch news failed: %v", err)
		return
	}
	if !p.running || p.run != run {
		p.mu.Unlock()
		return
	}

	var adopted, notify bool
	switch {
	case !p.hasTimestamp || manual:
		p.current = *snap
		p.lastUpdated = snap.LastUpdated
		p.hasTimestamp = true
		p.recordedAt = p.clock.Now()
		p.pending = false
		adopted = true
	case snap.LastUpdated != p.lastUpdated && !p.pending:
		// 展示中的数据保持不变，等用户确认
		p.pending = true
		notify = true
	}
	onAdopt, onNewContent := p.onAdopt, p.onNewContent
	p.mu.Unlock()

	switch {
	case adopted:
		if onAdopt != nil {
			onAdopt(*snap)
		}
	case notify:
		log.Printf("poller: new content detected, last_updated=%s", snap.LastUpdated)
		if onNewContent != nil {
			onNewContent(snap.LastUpdated)
		}
	}
}

func (p *Poller) scheduleFetchLocked() {
	if p.fetchTimer != nil {
		p.fetchTimer.Stop()
	}
	p.schedGen++
	run, gen := p.run, p.schedGen
	p.fetchTimer = p.clock.AfterFunc(p.interval, func() { p.onTick(run, gen) })
}

func (p *Poller) onTick(run, gen int) {
	p.mu.Lock()
	if !p.running || p.run != run || p.schedGen != gen {
		p.mu.Unlock()
		return
	}
	// 先排下一次，节奏不受请求耗时影响
	p.scheduleFetchLocked()
	runCtx := p.ctx
	p.mu.Unlock()

	p.fetch(runCtx, run, false)
}

func (p *Poller) scheduleCheckLocked() {
	run := p.run
	p.checkTimer = p.clock.AfterFunc(intervalCheckEvery, func() { p.onIntervalCheck(run) })
}

// 整点附近最多滞后一小时才切换，可以接受
func (p *Poller) onIntervalCheck(run int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running || p.run != run {
		return
	}
	p.scheduleCheckLocked()

	next := IntervalFor(p.clock.Now())
	if next == p.interval {
		return
	}
	log.Printf("poller: adjusting interval %s -> %s", p.interval, next)
	p.interval = next
	p.scheduleFetchLocked()
}
