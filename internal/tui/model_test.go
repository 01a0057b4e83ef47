package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LJTian/NewsVoice/internal/collector"
	"github.com/LJTian/NewsVoice/internal/notify"
	"github.com/LJTian/NewsVoice/internal/poller"
)

type stubPoller struct {
	status    poller.Status
	started   int
	stopped   int
	refreshes int
	visible   []bool
}

func (s *stubPoller) Start(ctx context.Context) {
	s.started++
}

func (s *stubPoller) Stop() {
	s.stopped++
}

func (s *stubPoller) RefreshNow(ctx context.Context) {
	s.refreshes++
	s.status.HasNewContent = false
}

func (s *stubPoller) SetVisible(v bool) {
	s.visible = append(s.visible, v)
}

func (s *stubPoller) Status() poller.Status {
	return s.status
}

func sampleStatus() poller.Status {
	return poller.Status{
		Snapshot: collector.Snapshot{
			LastUpdated: "2025-01-01T10:00:00",
			Categories: map[string][]collector.DayEntry{
				"World News": {{Date: "2025-01-01", Title: "Thế giới", Content: "\tNội dung thế giới", ArticleCount: 3}},
				"Sport News": {{Date: "2025-01-01", Title: "Thể thao", Content: "Bóng đá"}},
			},
		},
		LastUpdated: "2025-01-01T10:00:00",
		RecordedAt:  time.Date(2025, 1, 1, 10, 1, 0, 0, time.UTC),
		Interval:    30 * time.Minute,
		Running:     true,
	}
}

func ready(t *testing.T, p *stubPoller) Model {
	t.Helper()
	m := New(Options{Poller: p})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	next, _ = next.Update(statusMsg(p.Status()))
	return next.(Model)
}

// run 执行命令并把结果消息送回模型
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	next, _ := m.Update(cmd())
	return next.(Model)
}

func TestInitStartsPoller(t *testing.T) {
	p := &stubPoller{status: sampleStatus()}
	m := New(Options{Poller: p})
	msg := startCmd(m.ctx, p)()
	if p.started != 1 {
		t.Fatalf("poller started %d times", p.started)
	}
	if _, ok := msg.(statusMsg); !ok {
		t.Fatalf("start command returned %T", msg)
	}
}

func TestBannerAndRefresh(t *testing.T) {
	p := &stubPoller{status: sampleStatus()}
	p.status.HasNewContent = true
	m := ready(t, p)

	if !strings.Contains(m.View(), bannerText) {
		t.Fatalf("banner should be shown while new content is pending")
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = run(t, next.(Model), cmd)
	if p.refreshes != 1 {
		t.Fatalf("refreshes = %d", p.refreshes)
	}
	if strings.Contains(m.View(), bannerText) {
		t.Fatalf("banner should disappear after refresh")
	}
}

func TestFocusDrivesVisibility(t *testing.T) {
	p := &stubPoller{status: sampleStatus()}
	m := ready(t, p)

	next, cmd := m.Update(tea.BlurMsg{})
	m = run(t, next.(Model), cmd)
	next, cmd = m.Update(tea.FocusMsg{})
	run(t, next.(Model), cmd)

	if len(p.visible) != 2 || p.visible[0] || !p.visible[1] {
		t.Fatalf("SetVisible calls = %v", p.visible)
	}
}

func TestTabsFollowCategoryOrder(t *testing.T) {
	p := &stubPoller{status: sampleStatus()}
	m := ready(t, p)

	if m.currentCategory() != "World News" {
		t.Fatalf("first tab = %q", m.currentCategory())
	}
	if !strings.Contains(m.renderCategory(), "Nội dung thế giới") {
		t.Fatalf("category content not rendered")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.currentCategory() != "Sport News" {
		t.Fatalf("second tab = %q", m.currentCategory())
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if next.(Model).currentCategory() != "World News" {
		t.Fatalf("tabs should wrap around")
	}
}

func TestQuitStopsPoller(t *testing.T) {
	p := &stubPoller{status: sampleStatus()}
	m := ready(t, p)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if p.stopped != 1 {
		t.Fatalf("poller stopped %d times", p.stopped)
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q should quit")
	}
}

func TestToastShownWhenIdle(t *testing.T) {
	center := notify.NewCenter()
	p := &stubPoller{status: sampleStatus()}
	m := New(Options{Poller: p, Toasts: center})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = next.(Model)

	center.Show("Đã cập nhật tin tức", notify.Success, time.Minute)
	m = run(t, m, waitToastCmd(m.toasts))
	if !strings.Contains(m.View(), "Đã cập nhật tin tức") {
		t.Fatalf("toast not rendered")
	}
	m.unsub()
}
