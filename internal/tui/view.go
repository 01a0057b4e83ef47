package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// 标题、横幅、分类栏、底栏占用的行数
const chromeHeight = 5

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#BD93F9"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
	bannerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#282A36")).Background(lipgloss.Color("#F1FA8C"))
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#F8F8F2"))
	activeTabStyle = tabStyle.Bold(true).Foreground(lipgloss.Color("#282A36")).Background(lipgloss.Color("#50FA7B"))
	dateStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BE9FD"))
)

const bannerText = "New news available. Press r to refresh."

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderBanner())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	updated := m.status.LastUpdated
	if updated == "" {
		updated = "never"
	}
	return titleStyle.Render("NewsVoice") + mutedStyle.Render(fmt.Sprintf("  last updated %s", updated))
}

func (m Model) renderBanner() string {
	switch {
	case m.status.HasNewContent:
		return bannerStyle.Render(bannerText)
	case m.toast != "":
		return mutedStyle.Render(m.toast)
	default:
		return ""
	}
}

func (m Model) renderTabs() string {
	names := m.status.Snapshot.CategoryNames()
	if len(names) == 0 {
		return mutedStyle.Render("no categories")
	}
	tabs := make([]string, len(names))
	for i, name := range names {
		if i == m.tab {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = tabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderCategory() string {
	category := m.currentCategory()
	if category == "" {
		if m.status.InFlight {
			return "Fetching news..."
		}
		return "No news yet."
	}

	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	body := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for _, e := range m.proc.Dedupe(m.status.Snapshot.Categories[category]) {
		b.WriteString(dateStyle.Render(e.Date))
		if e.ArticleCount > 0 {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d articles", e.ArticleCount)))
		}
		b.WriteString("\n")
		if e.Title != "" {
			b.WriteString(body.Render(e.Title))
			b.WriteString("\n")
		}
		b.WriteString(body.Render(strings.ReplaceAll(strings.TrimSpace(e.Content), "\t", "")))
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m Model) renderFooter() string {
	parts := []string{"r refresh", "tab/←→ category", "↑↓ scroll", "q quit"}
	footer := mutedStyle.Render(strings.Join(parts, " · "))
	if m.status.InFlight {
		footer = m.spinner.View() + " " + footer
	}
	if m.status.Interval > 0 {
		footer += mutedStyle.Render(fmt.Sprintf("  every %s", m.status.Interval))
	}
	return footer
}
