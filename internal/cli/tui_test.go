package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/semgrep-deps-export/pkg/integrations/semgrep"
)

func sampleRepos() []semgrep.Repository {
	return []semgrep.Repository{
		{ID: "1", Name: "acme/api", Branch: "main"},
		{ID: "2", Name: "acme/web", URL: "https://github.com/acme/web"},
		{ID: "3", Name: "acme/cli"},
	}
}

func press(m RepoListModel, keys ...tea.KeyMsg) (RepoListModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(RepoListModel)
	}
	return m, cmd
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyQuit  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
)

func TestRepoListSelect(t *testing.T) {
	m, cmd := press(NewRepoListModel(sampleRepos()), keyDown, keyDown, keyUp, keyEnter)
	if cmd == nil {
		t.Fatal("enter did not quit the picker")
	}
	if m.Selected == nil || m.Selected.ID != "2" {
		t.Errorf("Selected = %+v, want repository 2", m.Selected)
	}
}

func TestRepoListCursorBounds(t *testing.T) {
	m, _ := press(NewRepoListModel(sampleRepos()), keyUp)
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d after up at top, want 0", m.Cursor)
	}
	m, _ = press(m, keyDown, keyDown, keyDown, keyDown)
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d after moving past the end, want 2", m.Cursor)
	}
}

func TestRepoListQuit(t *testing.T) {
	m, cmd := press(NewRepoListModel(sampleRepos()), keyQuit)
	if cmd == nil {
		t.Fatal("q did not quit the picker")
	}
	if m.Selected != nil {
		t.Errorf("Selected = %+v after quit, want nil", m.Selected)
	}
}

func TestRepoListEmptyEnter(t *testing.T) {
	m, cmd := press(NewRepoListModel(nil), keyEnter)
	if cmd != nil || m.Selected != nil {
		t.Errorf("enter on an empty list = (%v, %+v), want no-op", cmd, m.Selected)
	}
}

func TestRepoListScrolls(t *testing.T) {
	m := NewRepoListModel(sampleRepos())
	m.Height = 2
	m, _ = press(m, keyDown, keyDown)
	if m.Offset != 1 {
		t.Errorf("Offset = %d, want 1", m.Offset)
	}
}

func TestRepoListView(t *testing.T) {
	view := NewRepoListModel(sampleRepos()).View()
	for _, want := range []string{"Select Repository", "acme/api", "acme/web", "main", "[1/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestOrDash(t *testing.T) {
	if got := orDash(""); got != "—" {
		t.Errorf("orDash(\"\") = %q", got)
	}
	if got := orDash("main"); got != "main" {
		t.Errorf("orDash(main) = %q", got)
	}
}
