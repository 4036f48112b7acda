package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stackaudit/pkg/deps"
	"github.com/matzehuels/stackaudit/pkg/report"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ReportModel - Interactive report browser
// =============================================================================

// ReportModel is the bubbletea model for browsing the unique dependencies
// of a scan. Enter toggles a detail pane; u shows only failed lookups.
type ReportModel struct {
	All         []deps.Dependency
	Rows        []deps.Dependency // All, or the unknown subset
	Manifests   map[deps.Key][]string
	Cursor      int
	Offset      int
	Height      int
	UnknownOnly bool
	Detail      bool
}

// NewReportModel creates a browser over the unique dependencies of s.
func NewReportModel(s *report.Set) ReportModel {
	manifests := make(map[deps.Key][]string)
	for _, d := range s.All() {
		manifests[d.Key()] = append(manifests[d.Key()], d.Manifest)
	}
	unique := s.Unique()
	return ReportModel{
		All:       unique,
		Rows:      unique,
		Manifests: manifests,
		Height:    15,
	}
}

func (m ReportModel) Init() tea.Cmd {
	return nil
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Detail = !m.Detail
		case "u":
			m.UnknownOnly = !m.UnknownOnly
			m.Rows = m.filter()
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ReportModel) filter() []deps.Dependency {
	if !m.UnknownOnly {
		return m.All
	}
	var out []deps.Dependency
	for _, d := range m.All {
		if d.Unknown() {
			out = append(out, d)
		}
	}
	return out
}

func (m ReportModel) View() string {
	var b strings.Builder

	title := "Dependencies"
	if m.UnknownOnly {
		title = "Dependencies without license"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  u unknown only  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  nothing to show"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		d := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, d.Name, d.Version, truncate(d.License, 48), fmt.Sprint(len(m.Manifests[d.Key()]))})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("", "Package", "Version", "License", "Manifests").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if m.Rows[idx].Unknown() {
				base = base.Foreground(colorRed)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	b.WriteString("\n")

	if m.Detail {
		b.WriteString("\n")
		b.WriteString(m.detailView(m.Rows[m.Cursor]))
	}
	return b.String()
}

func (m ReportModel) detailView(d deps.Dependency) string {
	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(d.Key().String()))
	b.WriteString("\n")
	if d.Description != "" {
		b.WriteString("  " + d.Description + "\n")
	}
	if d.ProjectURL != "" {
		b.WriteString("  " + StyleLink.Render(d.ProjectURL) + "\n")
	}
	b.WriteString("  license: " + d.License + "\n")
	for _, path := range m.Manifests[d.Key()] {
		b.WriteString("  " + listDimStyle.Render(iconArrow+" "+path) + "\n")
	}
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
