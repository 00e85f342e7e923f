package export

import (
	"strings"
	"testing"

	"github.com/matzehuels/orbit/pkg/hierarchy"
)

func sampleTree(t *testing.T) *hierarchy.Tree {
	t.Helper()
	tree := hierarchy.New()
	for _, n := range []struct{ id, parent string }{
		{"R", ""}, {"A", "R"}, {"B", "R"}, {"C", "A"}, {"D", "A"},
	} {
		if err := tree.AddNode(hierarchy.Node{ID: n.id, Name: n.id}, n.parent); err != nil {
			t.Fatal(err)
		}
	}
	return tree
}

func TestToDOTStructure(t *testing.T) {
	dot := ToDOT(sampleTree(t), Options{Title: "demo"})

	checks := []string{
		"layout=twopi",
		`root="R"`,
		`label="demo"`,
		`"R" -- "A";`,
		`"A" -- "C";`,
		`"A" -- "D";`,
		`"R" -- "B";`,
	}
	for _, want := range checks {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Undirected radial graph, not a digraph.
	if strings.Contains(dot, "digraph") {
		t.Error("radial export should emit an undirected graph")
	}
}

func TestToDOTSelectionEmphasis(t *testing.T) {
	dot := ToDOT(sampleTree(t), Options{SelectedID: "D"})

	// Active path edges highlighted.
	for _, want := range []string{
		`"R" -- "A" [penwidth=2.5, color="#e53e3e"];`,
		`"A" -- "D" [penwidth=2.5, color="#e53e3e"];`,
		`"A" -- "C" [style=dashed];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Unrelated subtree dims.
	if !strings.Contains(dot, `"R" -- "B" [color="#e2e8f0"];`) {
		t.Errorf("unrelated edge should dim:\n%s", dot)
	}
}

func TestToDOTWithoutSelectionHasNoEmphasis(t *testing.T) {
	dot := ToDOT(sampleTree(t), Options{})
	if strings.Contains(dot, "penwidth=2.5") || strings.Contains(dot, "style=dashed") {
		t.Errorf("no selection should mean no emphasis attrs:\n%s", dot)
	}
}
