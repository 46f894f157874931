package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/inkpath/inkpath/pkg/rm"
	"github.com/inkpath/inkpath/pkg/scene"
)

func textDoc(t *testing.T, raw string) *scene.Document {
	t.Helper()
	doc, err := scene.Build(scene.SimpleTextDocument(raw), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return doc
}

func TestRenderText(t *testing.T) {
	doc := textDoc(t, "first\nsecond")
	if got := string(RenderText(doc)); got != "first\nsecond\n" {
		t.Fatalf("text = %q", got)
	}
	if out := RenderText(&scene.Document{}); out != nil {
		t.Fatalf("no-text document rendered %q", out)
	}
}

func TestRenderMarkdown(t *testing.T) {
	text := &scene.Text{
		Items: []scene.TextItem{{ItemID: rm.CrdtID{Part1: 1, Part2: 16}, Text: "Title\nitem\ntask"}},
		Styles: map[rm.CrdtID]rm.LWW[rm.ParagraphStyle]{
			{}:                          {Value: rm.StyleHeading},
			{Part1: 1, Part2: 16 + 5}:  {Value: rm.StyleBullet},
			{Part1: 1, Part2: 16 + 10}: {Value: rm.StyleCheckbox},
		},
	}
	doc := &scene.Document{Root: &scene.Group{}, RootText: text}
	got := string(RenderMarkdown(doc))
	want := "# Title\n- item\n- [ ] task\n"
	if got != want {
		t.Fatalf("markdown = %q, want %q", got, want)
	}
}

func TestRenderJSON(t *testing.T) {
	root := &scene.Group{NodeID: rm.CrdtID{Part1: 0, Part2: 1}}
	root.Children = append(root.Children, highlighterStroke())
	doc := &scene.Document{Root: root, RootText: &scene.Text{
		Items: []scene.TextItem{{ItemID: rm.CrdtID{Part1: 1, Part2: 16}, Text: "note"}},
	}}

	out, err := RenderJSON(doc)
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	var parsed jsonScene
	if err := json.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(parsed.Strokes) != 1 || len(parsed.Strokes[0].Points) != 3 {
		t.Fatalf("strokes = %+v", parsed.Strokes)
	}
	if parsed.Strokes[0].Tool != "highlighter" {
		t.Errorf("tool = %q", parsed.Strokes[0].Tool)
	}
	if len(parsed.Text) != 1 || parsed.Text[0].Text != "note" {
		t.Errorf("text = %+v", parsed.Text)
	}
	if parsed.Page.Width <= 0 || parsed.Page.Height <= 0 {
		t.Errorf("page = %+v", parsed.Page)
	}

	again, err := RenderJSON(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, again) {
		t.Fatal("same document rendered differently")
	}
}

func TestRenderBlocks(t *testing.T) {
	blocks := []rm.Block{
		{Type: rm.BlockSceneTree, MinVersion: 1, CurrentVersion: 1, Payload: []byte{0xDE, 0xAD}, Offset: 43},
		{Type: rm.BlockType(0x42), Payload: nil, Offset: 53},
	}
	out, err := RenderBlocks(blocks)
	if err != nil {
		t.Fatalf("RenderBlocks: %v", err)
	}
	var parsed []jsonBlock
	if err := json.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("got %d records", len(parsed))
	}
	if parsed[0].Payload != "dead" {
		t.Errorf("payload hex = %q", parsed[0].Payload)
	}
	if parsed[1].Type != "Unknown(0x42)" {
		t.Errorf("type = %q", parsed[1].Type)
	}
}

func TestToDOT(t *testing.T) {
	layer := &scene.Group{
		NodeID: rm.CrdtID{Part1: 0, Part2: 11},
		Label:  rm.LWW[string]{Value: "Layer 1"},
	}
	layer.Children = append(layer.Children, highlighterStroke())
	root := &scene.Group{NodeID: rm.CrdtID{Part1: 0, Part2: 1}}
	root.Children = append(root.Children, layer)
	doc := &scene.Document{Root: root}

	dot := ToDOT(doc)
	for _, want := range []string{"digraph scene", "Layer 1", `"0:1" -> "0:11"`, "3 pts"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if ToDOT(doc) != dot {
		t.Error("same document rendered differently")
	}
}
