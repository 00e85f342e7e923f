// Package export renders tree snapshots to static artifacts (DOT, SVG,
// PNG) using Graphviz's radial twopi layout, so a diagram can be shared
// outside the interactive views.
package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	orberrors "github.com/matzehuels/orbit/pkg/errors"
	"github.com/matzehuels/orbit/pkg/hierarchy"
)

// Options configures DOT generation.
type Options struct {
	// SelectedID emphasises the active path and dims unrelated subtrees,
	// mirroring the interactive selection styling.
	SelectedID string

	// Title is drawn as the graph label when set.
	Title string
}

// ToDOT converts a tree to Graphviz DOT in a radial (twopi) layout with the
// root pinned at the centre. The resulting string renders with [RenderSVG]
// or [RenderPNG].
func ToDOT(t *hierarchy.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph orbit {\n")
	buf.WriteString("  layout=twopi;\n")
	buf.WriteString("  ranksep=2;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fontname=\"Helvetica\"];\n")
	if root := t.Root(); root != nil {
		fmt.Fprintf(&buf, "  root=%q;\n", root.ID)
	}
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n", opts.Title)
	}
	buf.WriteString("\n")

	var onPath map[string]bool
	if opts.SelectedID != "" {
		onPath = make(map[string]bool)
		for _, l := range t.ActivePath(opts.SelectedID) {
			onPath[l.Key()] = true
		}
	}

	for _, n := range t.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(t, n, opts.SelectedID), ", "))
	}

	buf.WriteString("\n")
	for _, l := range t.Links() {
		fmt.Fprintf(&buf, "  %q -- %q%s;\n", l.SourceID, l.TargetID, edgeAttrs(t, l, opts.SelectedID, onPath))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(t *hierarchy.Tree, n *hierarchy.Node, selected string) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.DisplayName())}

	switch n.Depth {
	case 0:
		attrs = append(attrs, "fontsize=20", "width=1.2", "fillcolor=\"#2d3748\"", "fontcolor=white")
	case 1:
		attrs = append(attrs, "fontsize=14", "width=0.8", "fillcolor=\"#4a5568\"", "fontcolor=white")
	default:
		attrs = append(attrs, "fontsize=10", "width=0.5", "fillcolor=\"#cbd5e0\"")
	}

	if selected == "" {
		return attrs
	}
	switch {
	case n.ID == selected:
		attrs = append(attrs, "penwidth=3", "color=\"#e53e3e\"")
	case t.IsAncestor(n.ID, selected) || t.IsAncestor(selected, n.ID):
		attrs = append(attrs, "penwidth=2", "color=\"#e53e3e\"")
	default:
		attrs = append(attrs, "style=\"filled\"", "fillcolor=\"#edf2f7\"", "fontcolor=\"#a0aec0\"")
	}
	return attrs
}

func edgeAttrs(t *hierarchy.Tree, l hierarchy.Link, selected string, onPath map[string]bool) string {
	if selected == "" {
		return ""
	}
	if onPath[l.Key()] {
		return " [penwidth=2.5, color=\"#e53e3e\"]"
	}
	// Links from the selection's parent to its siblings render dashed.
	if pid := t.ParentID(selected); pid != "" && l.SourceID == pid {
		return " [style=dashed]"
	}
	return " [color=\"#e2e8f0\"]"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, orberrors.Wrap(orberrors.ErrCodeRenderFrame, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, orberrors.Wrap(orberrors.ErrCodeRenderFrame, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, orberrors.Wrap(orberrors.ErrCodeRenderFrame, err, "render %s", format)
	}
	return buf.Bytes(), nil
}
