package render

import (
	"github.com/inkpath/inkpath/pkg/rm"
	"github.com/inkpath/inkpath/pkg/scene"
)

// Device screen geometry. Stroke coordinates use screen units with the
// origin at the top center of the page; exports scale them to points.
const (
	ScreenWidth  = 1404
	ScreenHeight = 1872
	ScreenDPI    = 226

	// Scale converts screen units to typographic points.
	Scale = 72.0 / ScreenDPI

	// textTopY offsets the first text baseline above the text box origin.
	textTopY = -88
)

// Pts converts a screen-unit length to points.
func Pts(screenUnits float64) float64 { return screenUnits * Scale }

// anchorPos maps character IDs of the root text to their vertical position,
// so groups anchored to typed text land next to the line they annotate.
// Two fixed IDs are anchors the device plants at the page margins.
func anchorPos(text *scene.Text) map[rm.CrdtID]float64 {
	pos := map[rm.CrdtID]float64{
		{Part1: 0, Part2: 281474976710654}: 100,
		{Part1: 0, Part2: 281474976710655}: 100,
	}
	if text == nil {
		return pos
	}
	y := text.PosY + textTopY
	for _, p := range text.Paragraphs() {
		pos[p.StartID] = y
		y += p.Style.LineHeight()
	}
	return pos
}

// groupAnchor resolves a group's offset from its anchor declaration. An
// unanchored group, or one whose anchor character no longer exists, sits at
// the origin.
func groupAnchor(g *scene.Group, pos map[rm.CrdtID]float64) (x, y float64) {
	if g.AnchorID == nil {
		return 0, 0
	}
	if g.AnchorOriginX != nil {
		x = float64(g.AnchorOriginX.Value)
	}
	if ay, ok := pos[g.AnchorID.Value]; ok {
		y = ay
	}
	return x, y
}

// boundingBox returns the content extent in screen units, never smaller than
// the screen itself so sparse pages still export at page size.
func boundingBox(doc *scene.Document) (xMin, xMax, yMin, yMax float64) {
	xMin, xMax = -float64(ScreenWidth)/2, float64(ScreenWidth)/2
	yMin, yMax = 0, float64(ScreenHeight)

	pos := anchorPos(doc.RootText)
	var walk func(g *scene.Group, offX, offY float64)
	walk = func(g *scene.Group, offX, offY float64) {
		for _, item := range g.Children {
			switch it := item.(type) {
			case *scene.Group:
				ax, ay := groupAnchor(it, pos)
				walk(it, offX+ax, offY+ay)
			case *scene.Stroke:
				if bx0, bx1, by0, by1, ok := it.BoundingBox(); ok {
					xMin = min(xMin, bx0+offX)
					xMax = max(xMax, bx1+offX)
					yMin = min(yMin, by0+offY)
					yMax = max(yMax, by1+offY)
				}
			}
		}
	}
	if doc.Root != nil {
		walk(doc.Root, 0, 0)
	}
	if doc.Orphans != nil {
		walk(doc.Orphans, 0, 0)
	}
	return xMin, xMax, yMin, yMax
}
