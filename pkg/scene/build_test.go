package scene

import (
	"testing"

	"github.com/inkpath/inkpath/pkg/errors"
	"github.com/inkpath/inkpath/pkg/rm"
)

func id(p1 uint8, p2 uint64) rm.CrdtID {
	return rm.CrdtID{Part1: p1, Part2: p2}
}

// layerBlocks declares one layer group attached under the root.
func layerBlocks(layerID, itemID rm.CrdtID) []rm.Block {
	return []rm.Block{
		sceneTreeBlock(treeDecl{TreeID: layerID, IsUpdate: true, ParentID: rootNodeID}),
		treeNodeBlock(&Group{
			NodeID:  layerID,
			Label:   rm.LWW[string]{Value: "Layer 1"},
			Visible: rm.LWW[bool]{Value: true},
		}),
		groupItemBlock(itemHeader{ParentID: rootNodeID, ItemID: itemID}, layerID),
	}
}

func testStroke(itemID rm.CrdtID) *Stroke {
	return &Stroke{
		ItemID:         itemID,
		Tool:           rm.PenBallpoint2,
		Color:          rm.ColorBlack,
		ThicknessScale: 1,
		Points: []Point{
			{X: 10, Y: 20, Speed: 1, Width: 2, Pressure: 0.5},
			{X: 11, Y: 21, Speed: 1, Width: 2, Pressure: 0.6},
		},
	}
}

func strokesOf(doc *Document) []*Stroke {
	var out []*Stroke
	doc.Walk(func(_ *Group, item Item) {
		if s, ok := item.(*Stroke); ok {
			out = append(out, s)
		}
	})
	return out
}

func TestBuildEmpty(t *testing.T) {
	doc, err := Build(nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.Root == nil || doc.Root.NodeID != rootNodeID {
		t.Fatalf("root = %+v", doc.Root)
	}
	if doc.Orphans != nil {
		t.Fatal("empty document has an orphans group")
	}
}

func TestBuildLayerWithStroke(t *testing.T) {
	layerID, itemID := id(0, 11), id(0, 12)
	blocks := append(layerBlocks(layerID, itemID),
		lineItemBlock(itemHeader{ParentID: layerID, ItemID: id(1, 20)}, testStroke(id(1, 20)), 2))

	doc, err := Build(blocks, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(doc.Root.Children) != 1 {
		t.Fatalf("root has %d children, want 1", len(doc.Root.Children))
	}
	layer, ok := doc.Root.Children[0].(*Group)
	if !ok || layer.NodeID != layerID {
		t.Fatalf("root child = %#v", doc.Root.Children[0])
	}
	if layer.Label.Value != "Layer 1" || !layer.Visible.Value {
		t.Errorf("layer attributes = %q visible=%v", layer.Label.Value, layer.Visible.Value)
	}
	strokes := strokesOf(doc)
	if len(strokes) != 1 || len(strokes[0].Points) != 2 {
		t.Fatalf("strokes = %+v", strokes)
	}
	if strokes[0].Tool != rm.PenBallpoint2 {
		t.Errorf("tool = %v", strokes[0].Tool)
	}
}

func TestBuildUnsupportedBlockVersion(t *testing.T) {
	blk := lineItemBlock(itemHeader{ParentID: rootNodeID, ItemID: id(1, 20)}, testStroke(id(1, 20)), 2)
	blk.MinVersion = 3
	blk.CurrentVersion = 3

	_, err := Build([]rm.Block{blk}, nil)
	if code := errors.GetCode(err); code != errors.ErrCodeUnsupportedVersion {
		t.Fatalf("code = %s (err %v), want %s", code, err, errors.ErrCodeUnsupportedVersion)
	}
}

// A stroke payload with trailing garbage keeps its complete points and does
// not fail the document.
func TestBuildCorruptStrokeDegrades(t *testing.T) {
	layerID := id(0, 11)
	s := testStroke(id(1, 20))
	s.Points = append(s.Points, Point{X: 12, Y: 22})

	w := rm.NewTaggedWriter()
	writeItemHeader(w, itemHeader{ParentID: layerID, ItemID: s.ItemID})
	w.SubBlock(6, func(sub *rm.TaggedWriter) {
		sub.WriteVaruint(uint64(rm.ItemTypeLine))
		sub.WriteUint32(1, uint32(s.Tool))
		sub.WriteUint32(2, uint32(s.Color))
		sub.WriteFloat64(3, s.ThicknessScale)
		sub.WriteFloat32(4, s.StartingLength)
		sub.WriteRaw(5, append(encodePoints(s.Points, 2), 0xAB, 0xCD))
	})
	blk := rm.Block{Type: rm.BlockSceneLineItem, MinVersion: 1, CurrentVersion: 2, Payload: w.Bytes()}

	blocks := append(layerBlocks(layerID, id(0, 12)), blk)
	doc, err := Build(blocks, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	strokes := strokesOf(doc)
	if len(strokes) != 1 {
		t.Fatalf("got %d strokes, want 1", len(strokes))
	}
	if len(strokes[0].Points) != 3 {
		t.Fatalf("got %d points, want 3", len(strokes[0].Points))
	}
}

// When two blocks claim the same child, the later stream position wins.
func TestBuildDuplicateClaimLaterWins(t *testing.T) {
	layerA, layerB := id(0, 11), id(0, 21)
	strokeID := id(1, 30)

	blocks := append(layerBlocks(layerA, id(0, 12)), layerBlocks(layerB, id(0, 22))...)
	blocks = append(blocks,
		lineItemBlock(itemHeader{ParentID: layerA, ItemID: strokeID}, testStroke(strokeID), 2),
		lineItemBlock(itemHeader{ParentID: layerB, ItemID: strokeID}, testStroke(strokeID), 2),
	)

	doc, err := Build(blocks, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n := len(strokesOf(doc)); n != 1 {
		t.Fatalf("stroke attached %d times, want 1", n)
	}
	var holder *Group
	doc.Walk(func(g *Group, item Item) {
		if item.ID() == strokeID {
			holder = g
		}
	})
	if holder == nil || holder.NodeID != layerB {
		t.Fatalf("stroke held by %+v, want later claim %s", holder, layerB)
	}
}

func TestBuildOrphanedStroke(t *testing.T) {
	strokeID := id(1, 40)
	blocks := []rm.Block{
		lineItemBlock(itemHeader{ParentID: id(0, 99), ItemID: strokeID}, testStroke(strokeID), 2),
	}
	doc, err := Build(blocks, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.Orphans == nil {
		t.Fatal("no orphans group")
	}
	if len(doc.Orphans.Children) != 1 || doc.Orphans.Children[0].ID() != strokeID {
		t.Fatalf("orphans = %+v", doc.Orphans.Children)
	}
}

// Every drawable must stay reachable from the root or the orphans group.
func TestBuildTreeCompleteness(t *testing.T) {
	layerID := id(0, 11)
	attached, orphaned := id(1, 50), id(1, 51)
	blocks := append(layerBlocks(layerID, id(0, 12)),
		lineItemBlock(itemHeader{ParentID: layerID, ItemID: attached}, testStroke(attached), 2),
		lineItemBlock(itemHeader{ParentID: id(0, 77), ItemID: orphaned}, testStroke(orphaned), 2),
	)

	doc, err := Build(blocks, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	seen := map[rm.CrdtID]bool{}
	doc.Walk(func(_ *Group, item Item) {
		if _, ok := item.(*Stroke); ok {
			seen[item.ID()] = true
		}
	})
	for _, want := range []rm.CrdtID{attached, orphaned} {
		if !seen[want] {
			t.Errorf("stroke %s not reachable", want)
		}
	}
}

// A glyph item declaring more rects than its payload could hold is skipped as
// corrupt instead of sized to the declared count.
func TestBuildGlyphRectCountBeyondPayload(t *testing.T) {
	layerID := id(0, 11)
	w := rm.NewTaggedWriter()
	writeItemHeader(w, itemHeader{ParentID: layerID, ItemID: id(1, 80)})
	w.SubBlock(6, func(sub *rm.TaggedWriter) {
		sub.WriteVaruint(uint64(rm.ItemTypeGlyphRange))
		sub.WriteUint32(3, 5)
		sub.WriteUint32(4, uint32(rm.ColorYellow))
		sub.WriteString(5, "hello")
		sub.WriteVaruint(1 << 62) // no rect data follows
	})
	blk := rm.Block{Type: rm.BlockSceneGlyphItem, MinVersion: 1, CurrentVersion: 1, Payload: w.Bytes()}

	blocks := append(layerBlocks(layerID, id(0, 12)), blk)
	doc, err := Build(blocks, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	doc.Walk(func(_ *Group, item Item) {
		if _, ok := item.(*GlyphRange); ok {
			t.Error("corrupt glyph item attached")
		}
	})
}

// Two groups claiming each other through group items form a cycle no walk
// from the root can reach. Their contents must surface under orphans rather
// than vanish.
func TestBuildDetachedGroupCycleRescued(t *testing.T) {
	a, b := id(0, 11), id(0, 21)
	strokeID := id(1, 70)
	blocks := []rm.Block{
		treeNodeBlock(&Group{NodeID: a}),
		treeNodeBlock(&Group{NodeID: b}),
		groupItemBlock(itemHeader{ParentID: a, ItemID: id(0, 12)}, b),
		groupItemBlock(itemHeader{ParentID: b, ItemID: id(0, 22)}, a),
		lineItemBlock(itemHeader{ParentID: a, ItemID: strokeID}, testStroke(strokeID), 2),
	}

	doc, err := Build(blocks, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.Orphans == nil {
		t.Fatal("no orphans group")
	}
	strokes := strokesOf(doc)
	if len(strokes) != 1 || strokes[0].ItemID != strokeID {
		t.Fatalf("strokes = %+v, want the stroke inside the cycle", strokes)
	}
}

func TestBuildCyclicTree(t *testing.T) {
	a, b := id(0, 11), id(0, 21)
	blocks := []rm.Block{
		sceneTreeBlock(treeDecl{TreeID: a, ParentID: b}),
		sceneTreeBlock(treeDecl{TreeID: b, ParentID: a}),
	}
	_, err := Build(blocks, nil)
	if code := errors.GetCode(err); code != errors.ErrCodeInvalidTree {
		t.Fatalf("code = %s (err %v), want %s", code, err, errors.ErrCodeInvalidTree)
	}

	self := []rm.Block{sceneTreeBlock(treeDecl{TreeID: a, ParentID: a})}
	_, err = Build(self, nil)
	if code := errors.GetCode(err); code != errors.ErrCodeInvalidTree {
		t.Fatalf("self-link code = %s, want %s", code, errors.ErrCodeInvalidTree)
	}
}

func TestBuildTombstonedItemSkipped(t *testing.T) {
	layerID := id(0, 11)
	strokeID := id(1, 60)

	tomb := rm.NewTaggedWriter()
	tomb.WriteID(1, strokeID)

	blocks := append(layerBlocks(layerID, id(0, 12)),
		lineItemBlock(itemHeader{ParentID: layerID, ItemID: strokeID}, testStroke(strokeID), 2),
		rm.Block{Type: rm.BlockSceneTombstone, MinVersion: 1, CurrentVersion: 1, Payload: tomb.Bytes()},
	)
	doc, err := Build(blocks, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n := len(strokesOf(doc)); n != 0 {
		t.Fatalf("tombstoned stroke still attached %d times", n)
	}
}

func TestBuildBookkeepingBlocks(t *testing.T) {
	doc, err := Build(SimpleTextDocument("hello\nworld"), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.Migration == nil || !doc.Migration.IsDevice {
		t.Errorf("migration = %+v", doc.Migration)
	}
	if doc.Page == nil || doc.Page.TextLines != 2 {
		t.Errorf("page = %+v", doc.Page)
	}
	if len(doc.Authors) != 1 {
		t.Errorf("authors = %+v", doc.Authors)
	}
	if doc.RootText == nil {
		t.Fatal("no root text")
	}
	if got := doc.RootText.String(); got != "hello\nworld" {
		t.Errorf("text = %q", got)
	}
	if doc.RootText.PosX != textPosX || doc.RootText.Width != textWidth {
		t.Errorf("text box = (%v, %v)", doc.RootText.PosX, doc.RootText.Width)
	}
}

// Unknown block types must survive the build untouched.
func TestBuildKeepsUnknownBlocks(t *testing.T) {
	blk := rm.Block{Type: rm.BlockType(0x42), MinVersion: 9, CurrentVersion: 9, Payload: []byte{1, 2, 3}}
	doc, err := Build([]rm.Block{blk}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(doc.Blocks) != 1 || doc.Blocks[0].Type != blk.Type {
		t.Fatalf("blocks = %+v", doc.Blocks)
	}
}
