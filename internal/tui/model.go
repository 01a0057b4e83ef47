// Package tui 终端新闻视图：挂载一个轮询器，窗口焦点即可见性
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LJTian/NewsVoice/internal/notify"
	"github.com/LJTian/NewsVoice/internal/poller"
	"github.com/LJTian/NewsVoice/internal/processor"
)

// NewsPoller 由 *poller.Poller 实现
type NewsPoller interface {
	Start(ctx context.Context)
	Stop()
	RefreshNow(ctx context.Context)
	SetVisible(visible bool)
	Status() poller.Status
}

type Options struct {
	Context context.Context
	Poller  NewsPoller
	// Toasts 可为空
	Toasts *notify.Center
	// 状态刷新间隔，默认 1 秒
	PollTick time.Duration
}

type Model struct {
	ctx      context.Context
	poller   NewsPoller
	toasts   <-chan notify.Toast
	unsub    func()
	proc     *processor.SimpleProcessor
	pollTick time.Duration

	status   poller.Status
	tab      int
	toast    string
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
	ready    bool
}

func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}

	m := Model{
		ctx:      ctx,
		poller:   opts.Poller,
		proc:     processor.NewSimpleProcessor(),
		pollTick: pollTick,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		unsub:    func() {},
	}
	if opts.Toasts != nil {
		m.toasts, m.unsub = opts.Toasts.Subscribe()
	}
	return m
}

// Messages

type tickMsg time.Time

type statusMsg poller.Status

type toastMsg notify.Toast

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// startCmd 首次拉取是同步的，放在命令里执行不阻塞界面
func startCmd(ctx context.Context, p NewsPoller) tea.Cmd {
	return func() tea.Msg {
		p.Start(ctx)
		return statusMsg(p.Status())
	}
}

func refreshCmd(ctx context.Context, p NewsPoller) tea.Cmd {
	return func() tea.Msg {
		p.RefreshNow(ctx)
		return statusMsg(p.Status())
	}
}

func visibilityCmd(p NewsPoller, visible bool) tea.Cmd {
	return func() tea.Msg {
		p.SetVisible(visible)
		return statusMsg(p.Status())
	}
}

func waitToastCmd(ch <-chan notify.Toast) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return toastMsg(t)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		startCmd(m.ctx, m.poller),
		tickCmd(m.pollTick),
		m.spinner.Tick,
		waitToastCmd(m.toasts),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := m.height - chromeHeight
		if h < 1 {
			h = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, h)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = h
		}
		m.updateContent()
		return m, nil

	case tea.FocusMsg:
		return m, visibilityCmd(m.poller, true)

	case tea.BlurMsg:
		return m, visibilityCmd(m.poller, false)

	case tickMsg:
		m.setStatus(m.poller.Status())
		return m, tickCmd(m.pollTick)

	case statusMsg:
		m.setStatus(poller.Status(msg))
		return m, nil

	case toastMsg:
		m.toast = msg.Message
		return m, waitToastCmd(m.toasts)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.poller.Stop()
		m.unsub()
		return m, tea.Quit
	case "r":
		m.toast = ""
		return m, refreshCmd(m.ctx, m.poller)
	case "tab", "right", "l":
		m.moveTab(1)
		return m, nil
	case "shift+tab", "left", "h":
		m.moveTab(-1)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) moveTab(delta int) {
	n := len(m.status.Snapshot.CategoryNames())
	if n == 0 {
		return
	}
	m.tab = (m.tab + delta + n) % n
	m.updateContent()
	m.viewport.GotoTop()
}

// setStatus 只有快照换了才重排正文，避免滚动位置被重置
func (m *Model) setStatus(st poller.Status) {
	changed := st.LastUpdated != m.status.LastUpdated || st.RecordedAt != m.status.RecordedAt
	m.status = st
	if n := len(st.Snapshot.CategoryNames()); m.tab >= n {
		m.tab = 0
	}
	if changed {
		m.updateContent()
	}
}

func (m *Model) updateContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderCategory())
}

func (m Model) currentCategory() string {
	names := m.status.Snapshot.CategoryNames()
	if len(names) == 0 {
		return ""
	}
	return names[m.tab]
}

// Run 启动终端界面，退出时停止轮询器
func Run(opts Options) error {
	m := New(opts)
	defer m.unsub()
	defer opts.Poller.Stop()

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(m.ctx),
	)
	_, err := p.Run()
	return err
}
