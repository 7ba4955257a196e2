// internal/tui/app.go
//
// This is the archive browser for pmfx. It uses bubbletea, which follows The
// Elm Architecture:
//
// 1. Model: the resolved archive and the selected root
// 2. Update: keyboard and window messages move the selection
// 3. View: the root list on the left, the selected root's tree on the right
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/pmfarchive/internal/logbook"
	"github.com/kingrea/pmfarchive/internal/pmf"
)

const historyLines = 6

var (
	borderColor  = lipgloss.Color("#444444")
	accentStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50")).MarginBottom(1)
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	treeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
)

// rootItem implements list.Item for one root aggregate.
type rootItem struct {
	agg pmf.Aggregate
}

func (i rootItem) Title() string { return i.agg.EntryName() }

func (i rootItem) Description() string {
	tree := buildTree(i.agg)
	return fmt.Sprintf("%s · %d references", i.agg.Type(), countRefs(tree))
}

func (i rootItem) FilterValue() string { return i.agg.EntryName() }

func countRefs(n treeNode) int {
	total := len(n.children)
	for _, child := range n.children {
		total += countRefs(child)
	}
	return total
}

// App is the browser model.
type App struct {
	path    string
	result  *pmf.Result
	history *logbook.Logbook
	roots   list.Model

	width  int
	height int
}

// NewApp creates a browser over an already resolved archive. history may be
// nil.
func NewApp(path string, result *pmf.Result, history *logbook.Logbook) *App {
	items := make([]list.Item, 0, len(result.Aggregates))
	for _, agg := range result.Aggregates {
		items = append(items, rootItem{agg: agg})
	}
	roots := list.New(items, list.NewDefaultDelegate(), 0, 0)
	roots.Title = fmt.Sprintf("%s · %s", filepath.Base(path), result.Type)
	roots.SetShowStatusBar(false)

	return &App{path: path, result: result, history: history, roots: roots}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.roots.SetSize(max(20, a.leftWidth()-4), max(5, msg.Height-historyLines-8))
		return a, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q", "esc":
			if a.roots.FilterState() != list.Filtering {
				return a, tea.Quit
			}
		}
	}
	var cmd tea.Cmd
	a.roots, cmd = a.roots.Update(msg)
	return a, cmd
}

// Selected returns the highlighted root, or nil for an empty archive.
func (a *App) Selected() pmf.Aggregate {
	item, ok := a.roots.SelectedItem().(rootItem)
	if !ok {
		return nil
	}
	return item.agg
}

func (a *App) leftWidth() int {
	width := a.width
	if width <= 0 {
		width = 100
	}
	return max(30, width/2)
}

// View implements tea.Model.
func (a *App) View() string {
	leftWidth := a.leftWidth()
	rightWidth := max(30, a.width-leftWidth-4)

	header := headerStyle.Render("⬡ PMFX · " + a.path)
	left := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(leftWidth).
		Render(a.renderRoots())
	right := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(rightWidth).
		Render(a.renderSelected())

	sections := []string{header, lipgloss.JoinHorizontal(lipgloss.Top, left, right)}
	if panel := a.renderHistoryPanel(); panel != "" {
		sections = append(sections, panel)
	}
	sections = append(sections, mutedStyle.Render("↑/↓ select · / filter · q quit"))
	return strings.Join(sections, "\n")
}

func (a *App) renderRoots() string {
	if len(a.result.Aggregates) == 0 {
		return mutedStyle.Render("No roots resolved. Check the log for skipped entries.")
	}
	return a.roots.View()
}

func (a *App) renderSelected() string {
	agg := a.Selected()
	if agg == nil {
		return mutedStyle.Render("Nothing selected")
	}
	lines := renderTree(buildTree(agg))
	for i, line := range lines {
		if strings.HasSuffix(line, "(missing)") {
			lines[i] = missingStyle.Render(line)
		} else {
			lines[i] = treeStyle.Render(line)
		}
	}
	title := accentStyle.Render(agg.EntryName())
	if a.result.Descriptor != nil && a.result.Descriptor.Has(agg.EntryName()) {
		title += mutedStyle.Render("  master")
	}
	return title + "\n\n" + strings.Join(lines, "\n")
}

func (a *App) renderHistoryPanel() string {
	if a.history == nil {
		return ""
	}
	lines, total := a.history.Tail(historyLines)
	if len(lines) == 0 {
		return ""
	}
	head := accentStyle.Render(fmt.Sprintf("HISTORY · %d of %d", len(lines), total))
	body := mutedStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Render(head + "\n" + body)
}

// Run starts the browser on the terminal.
func Run(path string, result *pmf.Result, history *logbook.Logbook) error {
	_, err := tea.NewProgram(NewApp(path, result, history), tea.WithAltScreen()).Run()
	return err
}
