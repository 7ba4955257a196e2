package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/pmfarchive/internal/logbook"
	"github.com/kingrea/pmfarchive/internal/numl"
	"github.com/kingrea/pmfarchive/internal/pmf"
	"github.com/kingrea/pmfarchive/internal/sbml"
)

func testData(rows int) *numl.Document {
	doc := numl.NewDocument()
	rc := numl.ResultComponent{ID: "growth"}
	for i := 0; i < rows; i++ {
		rc.Tuples = append(rc.Tuples, numl.Tuple{float64(i), 1})
	}
	doc.ResultComponents = []numl.ResultComponent{rc}
	return doc
}

func tertiary() *pmf.TwoStepTertiaryModel {
	primary := pmf.PrimaryModel{Name: "p1.sbml", Doc: sbml.NewDocument("p1"), DataName: "d1.numl", Data: testData(3)}
	return &pmf.TwoStepTertiaryModel{
		Name:           "t1.sbml",
		Doc:            sbml.NewDocument("t1"),
		SecondaryNames: []string{"s1.sbml", "s2.sbml"},
		Secondaries: []*pmf.TwoStepSecondaryModel{
			{Name: "s1.sbml", Doc: sbml.NewDocument("s1"), PrimaryModels: []pmf.PrimaryModel{primary}},
			nil,
		},
	}
}

func TestRenderTreeDrawsGuidesAndMissingReferences(t *testing.T) {
	got := renderTree(buildTree(tertiary()))
	want := []string{
		"t1.sbml  tertiary  (t1)",
		"├─ s1.sbml  secondary  (s1)",
		"│  └─ p1.sbml  primary  (p1)",
		"│     └─ d1.numl  data  (3 rows)",
		"└─ s2.sbml  secondary  (missing)",
	}
	if len(got) != len(want) {
		t.Fatalf("tree has %d lines, want %d:\n%s", len(got), len(want), strings.Join(got, "\n"))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRenderTreeOneStepTertiaryListsSecondariesThenData(t *testing.T) {
	agg := &pmf.OneStepTertiaryModel{
		Name:           "t.sbml",
		Doc:            sbml.NewDocument("t"),
		SecondaryNames: []string{"s.sbml"},
		Secondaries:    []*sbml.Document{sbml.NewDocument("s")},
		DataNames:      []string{"d.numl"},
		Data:           []*numl.Document{nil},
	}
	got := renderTree(buildTree(agg))
	if len(got) != 3 {
		t.Fatalf("expected 3 lines, got %q", got)
	}
	if !strings.HasPrefix(got[1], "├─ s.sbml") {
		t.Fatalf("secondary should come first, got %q", got[1])
	}
	if got[2] != "└─ d.numl  data  (missing)" {
		t.Fatalf("data line = %q", got[2])
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	result := &pmf.Result{
		Type: pmf.TypeTwoStepTertiaryModel,
		Aggregates: []pmf.Aggregate{
			tertiary(),
			&pmf.TwoStepTertiaryModel{Name: "t2.sbml", Doc: sbml.NewDocument("t2")},
		},
		Descriptor: pmf.NewRootDescriptor(pmf.TypeTwoStepTertiaryModel),
	}
	result.Descriptor.Add("t1.sbml")
	book, err := logbook.New(filepath.Join(t.TempDir(), "history.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	if err := book.Info("read model.pmfx aggregates=2"); err != nil {
		t.Fatalf("info: %v", err)
	}
	app := NewApp("model.pmfx", result, book)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return model.(*App)
}

func TestSelectionFollowsCursor(t *testing.T) {
	app := newTestApp(t)
	if got := app.Selected().EntryName(); got != "t1.sbml" {
		t.Fatalf("initial selection = %s", got)
	}
	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyDown})
	app = model.(*App)
	if got := app.Selected().EntryName(); got != "t2.sbml" {
		t.Fatalf("selection after down = %s", got)
	}
}

func TestViewShowsTreeAndHistory(t *testing.T) {
	view := newTestApp(t).View()
	for _, want := range []string{"s2.sbml", "(missing)", "master", "HISTORY", "aggregates=2"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		app := newTestApp(t)
		_, cmd := app.Update(key)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: expected tea.QuitMsg", key)
		}
	}
}

func TestEmptyResultRendersHint(t *testing.T) {
	app := NewApp("empty.pmfx", &pmf.Result{Type: pmf.TypeExperimentalData}, nil)
	if app.Selected() != nil {
		t.Fatalf("empty archive should have no selection")
	}
	if view := app.View(); !strings.Contains(view, "No roots resolved") {
		t.Fatalf("view = %s", view)
	}
}
