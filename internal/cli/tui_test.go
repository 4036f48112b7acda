package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/stackaudit/pkg/deps"
	"github.com/matzehuels/stackaudit/pkg/report"
)

func testSet() *report.Set {
	s := report.NewSet()
	s.Add([]deps.Dependency{
		{Declaration: deps.Declaration{Name: "Dapper", Version: "2.1.24", Manifest: "/a/packages.config"},
			Enrichment: deps.Enrichment{License: "Apache-2.0", ProjectURL: "https://www.nuget.org/packages/Dapper/2.1.24"}},
		{Declaration: deps.Declaration{Name: "Internal", Version: "1.0.0", Manifest: "/a/packages.config"},
			Enrichment: deps.DefaultEnrichment()},
	})
	s.Add([]deps.Dependency{
		{Declaration: deps.Declaration{Name: "Dapper", Version: "2.1.24", Manifest: "/b/packages.config"},
			Enrichment: deps.Enrichment{License: "Apache-2.0"}},
	})
	return s
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestReportModelNavigation(t *testing.T) {
	m := NewReportModel(testSet())
	if len(m.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(m.Rows))
	}
	if got := len(m.Manifests[deps.Key{Name: "Dapper", Version: "2.1.24"}]); got != 2 {
		t.Errorf("Dapper manifests = %d, want 2", got)
	}

	next, _ := m.Update(key("j"))
	m = next.(ReportModel)
	if m.Cursor != 1 {
		t.Errorf("cursor = %d after down", m.Cursor)
	}
	next, _ = m.Update(key("j"))
	m = next.(ReportModel)
	if m.Cursor != 1 {
		t.Error("cursor should stop at the last row")
	}
	next, _ = m.Update(key("k"))
	m = next.(ReportModel)
	if m.Cursor != 0 {
		t.Errorf("cursor = %d after up", m.Cursor)
	}
}

func TestReportModelUnknownFilter(t *testing.T) {
	m := NewReportModel(testSet())

	next, _ := m.Update(key("u"))
	m = next.(ReportModel)
	if len(m.Rows) != 1 || m.Rows[0].Name != "Internal" {
		t.Errorf("filtered rows = %+v", m.Rows)
	}
	if !strings.Contains(m.View(), "without license") {
		t.Error("view should show the filter title")
	}

	next, _ = m.Update(key("u"))
	m = next.(ReportModel)
	if len(m.Rows) != 2 {
		t.Error("second toggle should show all rows")
	}
}

func TestReportModelDetail(t *testing.T) {
	m := NewReportModel(testSet())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(ReportModel)

	view := m.View()
	for _, want := range []string{"Dapper 2.1.24", "/a/packages.config", "/b/packages.config", "Apache-2.0"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q", want)
		}
	}
}

func TestReportModelQuit(t *testing.T) {
	m := NewReportModel(testSet())
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should return a quit command")
	}
}

func TestReportModelEmpty(t *testing.T) {
	m := NewReportModel(report.NewSet())
	if !strings.Contains(m.View(), "nothing to show") {
		t.Error("empty set should render a placeholder")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate() = %q", got)
	}
}
