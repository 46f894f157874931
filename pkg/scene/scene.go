// Package scene rebuilds the typed document model from a flat block stream.
//
// A v6 file is an append-log: tree-definition blocks declare groups and their
// parent links, item blocks attach drawables (strokes, glyph ranges, text)
// under those groups, and later blocks override earlier ones. The builder in
// this package replays that log into a [Document] whose scene tree can be
// walked by the renderers.
package scene

import (
	"github.com/google/uuid"

	"github.com/inkpath/inkpath/pkg/rm"
)

// Document is the fully resolved content of one page file.
type Document struct {
	// Migration, Page and Info mirror the file's bookkeeping blocks; any of
	// them may be nil when the source file omits the block.
	Migration *MigrationInfo
	Page      *PageInfo
	Info      *SceneInfo

	// Authors maps the per-file author slots to device identities.
	Authors map[uint16]uuid.UUID

	// Root is the top of the scene tree. Always non-nil after a successful
	// build, even for an empty file.
	Root *Group

	// Orphans collects drawables whose parent group never resolved. Nil when
	// every item found its parent.
	Orphans *Group

	// RootText is the page's typed text, nil when the page has none.
	RootText *Text

	// Blocks is the source block list the document was built from, kept for
	// byte-exact re-serialization and raw inspection.
	Blocks []rm.Block
}

// Walk visits every drawable item reachable from the root and the orphans
// group in z-order. The group argument is the item's resolved parent.
func (d *Document) Walk(visit func(g *Group, item Item)) {
	if d.Root != nil {
		d.Root.walk(visit)
	}
	if d.Orphans != nil {
		d.Orphans.walk(visit)
	}
}

// MigrationInfo records the schema migration marker block.
type MigrationInfo struct {
	MigrationID rm.CrdtID
	IsDevice    bool
}

// PageInfo records the page statistics block.
type PageInfo struct {
	LoadsCount  uint32
	MergesCount uint32
	TextChars   uint32
	TextLines   uint32
}

// SceneInfo records page-level display state.
type SceneInfo struct {
	CurrentLayer      rm.LWW[rm.CrdtID]
	BackgroundVisible *rm.LWW[bool]
	RootDocumentShown *rm.LWW[bool]
}

// Item is one entry in a group's child list.
type Item interface {
	// ID returns the item's log identity.
	ID() rm.CrdtID
}

// Group is an interior node of the scene tree: a layer or an anchored
// sub-group. Children are kept in z-order, background first.
type Group struct {
	NodeID  rm.CrdtID
	Label   rm.LWW[string]
	Visible rm.LWW[bool]

	// AnchorID and AnchorOriginX tie the group's vertical position to a
	// character of the root text, so handwriting anchored to typed text
	// reflows with it. Nil for unanchored groups.
	AnchorID      *rm.LWW[rm.CrdtID]
	AnchorType    *rm.LWW[uint8]
	AnchorOriginX *rm.LWW[float32]

	Children []Item
}

// ID returns the group's log identity.
func (g *Group) ID() rm.CrdtID { return g.NodeID }

func (g *Group) walk(visit func(*Group, Item)) {
	for _, child := range g.Children {
		visit(g, child)
		if sub, ok := child.(*Group); ok {
			sub.walk(visit)
		}
	}
}

// Point is one sample of a stroke. Fields are in the v1 layout's units: x/y
// in screen units with the origin at the top center of the page, direction in
// radians, pressure in [0,1].
type Point struct {
	X, Y      float32
	Speed     float32
	Direction float32
	Width     float32
	Pressure  float32
}

// Stroke is one pen line: a tool, a color, and the recorded point samples.
type Stroke struct {
	ItemID         rm.CrdtID
	Tool           rm.Pen
	Color          rm.Color
	ThicknessScale float64
	StartingLength float32
	Points         []Point

	// Timestamp is the edit stamp of the stroke, zero when the block
	// predates per-stroke stamps.
	Timestamp rm.CrdtID
}

// ID returns the stroke's log identity.
func (s *Stroke) ID() rm.CrdtID { return s.ItemID }

// BoundingBox returns the stroke's extent in screen units. ok is false for a
// stroke with no points.
func (s *Stroke) BoundingBox() (xMin, xMax, yMin, yMax float64, ok bool) {
	if len(s.Points) == 0 {
		return 0, 0, 0, 0, false
	}
	p0 := s.Points[0]
	xMin, xMax = float64(p0.X), float64(p0.X)
	yMin, yMax = float64(p0.Y), float64(p0.Y)
	for _, p := range s.Points[1:] {
		xMin = min(xMin, float64(p.X))
		xMax = max(xMax, float64(p.X))
		yMin = min(yMin, float64(p.Y))
		yMax = max(yMax, float64(p.Y))
	}
	return xMin, xMax, yMin, yMax, true
}

// Rect is an axis-aligned box in screen units.
type Rect struct {
	X, Y, W, H float64
}

// GlyphRange is a highlighter annotation over typed or template text: the
// highlighted text itself plus the screen rectangles it covers.
type GlyphRange struct {
	ItemID rm.CrdtID
	Start  uint32
	Length uint32
	Color  rm.Color
	Text   string
	Rects  []Rect
}

// ID returns the glyph range's log identity.
func (g *GlyphRange) ID() rm.CrdtID { return g.ItemID }

// TextItem is one entry of the text edit log: a string inserted at a position
// in the CRDT sequence, or a deletion marker when DeletedLength is set.
type TextItem struct {
	ItemID        rm.CrdtID
	LeftID        rm.CrdtID
	RightID       rm.CrdtID
	DeletedLength uint32
	Text          string

	// Format carries an inline style escape for items that change formatting
	// mid-paragraph; zero when absent.
	Format uint32
}

// Text is the page's typed text: the raw edit log plus per-paragraph styles.
// Use [Text.Paragraphs] for the materialized form.
type Text struct {
	BlockID rm.CrdtID
	Items   []TextItem

	// Styles maps the ID of a paragraph's leading character to its style.
	Styles map[rm.CrdtID]rm.LWW[rm.ParagraphStyle]

	// PosX, PosY and Width place the text box on the page in screen units.
	PosX, PosY float64
	Width      float32
}

// ID returns the text block's log identity.
func (t *Text) ID() rm.CrdtID { return t.BlockID }
