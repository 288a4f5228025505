package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/semgrep-deps-export/pkg/integrations/semgrep"
)

// List styles
var (
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RepoListModel - Interactive repository selection
// =============================================================================

// RepoListModel is the bubbletea model for interactive repository selection.
type RepoListModel struct {
	Repos    []semgrep.Repository
	Cursor   int
	Selected *semgrep.Repository
	Height   int
	Offset   int
}

// NewRepoListModel creates a new repository list model.
func NewRepoListModel(repos []semgrep.Repository) RepoListModel {
	return RepoListModel{
		Repos:  repos,
		Height: 15,
	}
}

func (m RepoListModel) Init() tea.Cmd {
	return nil
}

func (m RepoListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Repos)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Repos) == 0 {
				return m, nil
			}
			repo := m.Repos[m.Cursor]
			m.Selected = &repo
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m RepoListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Repository"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ export  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Repos))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, repositoryColumns(m.Repos[i])...))
	}

	t := repositoryTable(rows, true).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return listHeaderStyle
			case m.Offset+row == m.Cursor:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case col == 4:
				return listDimStyle
			default:
				return lipgloss.NewStyle()
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Repos))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// repositoryColumns returns the ID, Name, Branch and URL cells of a repository.
func repositoryColumns(r semgrep.Repository) []string {
	return []string{r.ID, r.Name, orDash(r.Branch), orDash(r.URL)}
}

// repositoryTable builds the shared repository table. withCursor adds a
// leading unlabeled column for the selection marker.
func repositoryTable(rows [][]string, withCursor bool) *table.Table {
	headers := []string{"ID", "Repository", "Branch", "URL"}
	if withCursor {
		headers = append([]string{""}, headers...)
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
