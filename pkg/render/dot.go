package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/inkpath/inkpath/pkg/scene"
)

// Scene-tree structure rendering: the document's group hierarchy as a
// Graphviz diagram, for inspecting how a file is organized without drawing
// its ink.

// ToDOT converts the document's scene tree to Graphviz DOT. Groups are boxes
// labelled with their id and layer name; drawables are leaf ellipses with
// their point or character counts.
func ToDOT(doc *scene.Document) string {
	var buf bytes.Buffer
	buf.WriteString("digraph scene {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n\n")

	writeGroup(&buf, doc.Root, "root")
	if doc.Orphans != nil {
		writeGroup(&buf, doc.Orphans, "orphans")
	}
	if doc.RootText != nil {
		chars := len(doc.RootText.String())
		fmt.Fprintf(&buf, "  %q [label=\"text\\n%d chars\", shape=ellipse, fillcolor=lightyellow];\n",
			"text-"+doc.RootText.BlockID.String(), chars)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeGroup(buf *bytes.Buffer, g *scene.Group, role string) {
	if g == nil {
		return
	}
	label := role + "\\n" + g.NodeID.String()
	if g.Label.Value != "" {
		label += "\\n" + g.Label.Value
	}
	fill := "white"
	if role == "orphans" {
		fill = "lightgrey"
	}
	fmt.Fprintf(buf, "  %q [label=%q, fillcolor=%s];\n", g.NodeID.String(), label, fill)

	for _, item := range g.Children {
		switch it := item.(type) {
		case *scene.Group:
			writeGroup(buf, it, "group")
			fmt.Fprintf(buf, "  %q -> %q;\n", g.NodeID.String(), it.NodeID.String())
		case *scene.Stroke:
			id := "stroke-" + it.ItemID.String()
			fmt.Fprintf(buf, "  %q [label=\"%s\\n%d pts\", shape=ellipse, fillcolor=lightblue];\n",
				id, it.Tool, len(it.Points))
			fmt.Fprintf(buf, "  %q -> %q;\n", g.NodeID.String(), id)
		case *scene.GlyphRange:
			id := "glyph-" + it.ItemID.String()
			fmt.Fprintf(buf, "  %q [label=\"highlight\\n%d rects\", shape=ellipse, fillcolor=khaki];\n",
				id, len(it.Rects))
			fmt.Fprintf(buf, "  %q -> %q;\n", g.NodeID.String(), id)
		}
	}
}

// RenderGraph renders a DOT string through Graphviz to the given format.
func RenderGraph(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderGraphSVG renders the scene tree diagram as SVG.
func RenderGraphSVG(ctx context.Context, doc *scene.Document) ([]byte, error) {
	return RenderGraph(ctx, ToDOT(doc), graphviz.SVG)
}

// RenderGraphPNG renders the scene tree diagram as PNG.
func RenderGraphPNG(ctx context.Context, doc *scene.Document) ([]byte, error) {
	return RenderGraph(ctx, ToDOT(doc), graphviz.PNG)
}
