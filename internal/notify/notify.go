// Package notify 提供进程内的提示消息中心。
// Center 由 main 创建后显式传给需要的组件，不使用全局单例。
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	Info    Kind = "info"
	Success Kind = "success"
	Warning Kind = "warning"
	Error   Kind = "error"
)

const (
	DefaultDuration = 4 * time.Second
	subscriberBuf   = 16
)

type Toast struct {
	ID        string        `json:"id"`
	Message   string        `json:"message"`
	Kind      Kind          `json:"type"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Center 保存当前可见的提示，并按各自时长自动移除
type Center struct {
	mu     sync.Mutex
	toasts []Toast
	subs   map[chan Toast]struct{}

	now      func() time.Time
	schedule func(d time.Duration, f func())
}

func NewCenter() *Center {
	return &Center{
		subs: make(map[chan Toast]struct{}),
		now:  time.Now,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Show 添加一条提示并返回其 ID；duration<=0 使用默认 4 秒
func (c *Center) Show(message string, kind Kind, duration time.Duration) string {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if kind == "" {
		kind = Info
	}
	t := Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		Duration:  duration,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	c.toasts = append(c.toasts, t)
	for ch := range c.subs {
		// 订阅方跟不上时直接丢弃，提示本来就是尽力而为
		select {
		case ch <- t:
		default:
		}
	}
	c.mu.Unlock()

	id := t.ID
	c.schedule(duration, func() { c.Remove(id) })
	return id
}

// Remove 手动关闭或到期移除；ID 不存在时忽略
func (c *Center) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.toasts {
		if t.ID == id {
			c.toasts = append(c.toasts[:i], c.toasts[i+1:]...)
			return
		}
	}
}

// Active 当前仍在显示的提示，按添加顺序
func (c *Center) Active() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Toast, len(c.toasts))
	copy(out, c.toasts)
	return out
}

// Subscribe 返回新提示的通知通道；调用 cancel 退订并关闭通道
func (c *Center) Subscribe() (<-chan Toast, func()) {
	ch := make(chan Toast, subscriberBuf)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, ch)
			c.mu.Unlock()
			close(ch)
		})
	}
}
