package scene

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/inkpath/inkpath/pkg/rm"
)

// treeDecl is a parsed SceneTree block: it declares that a node exists and
// names its parent. is_update distinguishes a move from the initial claim.
type treeDecl struct {
	TreeID   rm.CrdtID
	NodeID   rm.CrdtID
	IsUpdate bool
	ParentID rm.CrdtID
}

func parseSceneTree(b rm.Block) (treeDecl, error) {
	r := rm.NewTaggedReader(b.Payload)
	var d treeDecl
	var err error
	if d.TreeID, err = r.ReadID(1); err != nil {
		return d, err
	}
	if d.NodeID, err = r.ReadID(2); err != nil {
		return d, err
	}
	if d.IsUpdate, err = r.ReadBool(3); err != nil {
		return d, err
	}
	sub, err := r.SubBlock(4)
	if err != nil {
		return d, err
	}
	if d.ParentID, err = sub.ReadID(1); err != nil {
		return d, err
	}
	return d, nil
}

// parseTreeNode decodes a TreeNode block into a group shell; children are
// attached later from item blocks.
func parseTreeNode(b rm.Block) (*Group, error) {
	r := rm.NewTaggedReader(b.Payload)
	g := &Group{}
	var err error
	if g.NodeID, err = r.ReadID(1); err != nil {
		return nil, err
	}
	if g.Label, err = r.ReadLWWString(2); err != nil {
		return nil, err
	}
	if g.Visible, err = r.ReadLWWBool(3); err != nil {
		return nil, err
	}
	if r.HasTag(7, rm.TagLength4) {
		v, err := r.ReadLWWID(7)
		if err != nil {
			return nil, err
		}
		g.AnchorID = &v
	}
	if r.HasTag(8, rm.TagLength4) {
		v, err := r.ReadLWWUint8(8)
		if err != nil {
			return nil, err
		}
		g.AnchorType = &v
	}
	if r.HasTag(9, rm.TagLength4) {
		// anchor threshold, unused by export
		if _, err := r.ReadLWWFloat32(9); err != nil {
			return nil, err
		}
	}
	if r.HasTag(10, rm.TagLength4) {
		v, err := r.ReadLWWFloat32(10)
		if err != nil {
			return nil, err
		}
		g.AnchorOriginX = &v
	}
	return g, nil
}

// itemHeader is the CRDT sequence envelope shared by all scene item blocks:
// the parent claim plus the ordering anchors within the parent's child list.
type itemHeader struct {
	ParentID      rm.CrdtID
	ItemID        rm.CrdtID
	LeftID        rm.CrdtID
	RightID       rm.CrdtID
	DeletedLength uint32
}

func parseItemHeader(r *rm.TaggedReader) (itemHeader, error) {
	var h itemHeader
	var err error
	if h.ParentID, err = r.ReadID(1); err != nil {
		return h, err
	}
	if h.ItemID, err = r.ReadID(2); err != nil {
		return h, err
	}
	if h.LeftID, err = r.ReadID(3); err != nil {
		return h, err
	}
	if h.RightID, err = r.ReadID(4); err != nil {
		return h, err
	}
	if h.DeletedLength, err = r.ReadUint32(5); err != nil {
		return h, err
	}
	return h, nil
}

// itemValue opens the optional value region of a scene item block. A deleted
// item has no value; has is false then.
func itemValue(r *rm.TaggedReader, want rm.ItemType) (*rm.TaggedReader, bool, error) {
	if !r.HasTag(6, rm.TagLength4) {
		return nil, false, nil
	}
	sub, err := r.SubBlock(6)
	if err != nil {
		return nil, false, err
	}
	typ, err := sub.ReadVaruint()
	if err != nil {
		return nil, false, err
	}
	if rm.ItemType(typ) != want {
		return nil, false, fmt.Errorf("item value has type %s, want %s", rm.ItemType(typ), want)
	}
	return sub, true, nil
}

// parseGroupItem decodes a SceneGroupItem block: a parent's claim on a child
// group. childID is zero for a deleted item.
func parseGroupItem(b rm.Block) (h itemHeader, childID rm.CrdtID, err error) {
	r := rm.NewTaggedReader(b.Payload)
	if h, err = parseItemHeader(r); err != nil {
		return h, childID, err
	}
	sub, has, err := itemValue(r, rm.ItemTypeGroup)
	if err != nil || !has {
		return h, childID, err
	}
	childID, err = sub.ReadID(2)
	return h, childID, err
}

// parseLineItem decodes a SceneLineItem block into a stroke. trailing is the
// count of leftover bytes in the point region, reported so the builder can
// log stroke corruption without dropping the decoded points. A deleted item
// yields a nil stroke.
func parseLineItem(b rm.Block) (h itemHeader, s *Stroke, trailing int, err error) {
	r := rm.NewTaggedReader(b.Payload)
	if h, err = parseItemHeader(r); err != nil {
		return h, nil, 0, err
	}
	sub, has, err := itemValue(r, rm.ItemTypeLine)
	if err != nil || !has {
		return h, nil, 0, err
	}

	s = &Stroke{ItemID: h.ItemID}
	tool, err := sub.ReadUint32(1)
	if err != nil {
		return h, nil, 0, err
	}
	s.Tool = rm.Pen(tool)
	color, err := sub.ReadUint32(2)
	if err != nil {
		return h, nil, 0, err
	}
	s.Color = rm.Color(color)
	if s.ThicknessScale, err = sub.ReadFloat64(3); err != nil {
		return h, nil, 0, err
	}
	if s.StartingLength, err = sub.ReadFloat32(4); err != nil {
		return h, nil, 0, err
	}
	raw, err := sub.ReadRaw(5)
	if err != nil {
		return h, nil, 0, err
	}
	s.Points, trailing = decodePoints(raw, b.CurrentVersion)
	if sub.HasTag(6, rm.TagID) {
		if s.Timestamp, err = sub.ReadID(6); err != nil {
			return h, nil, 0, err
		}
	}
	return h, s, trailing, nil
}

// parseGlyphItem decodes a SceneGlyphItem block: a highlight over typed or
// template text. A deleted item yields a nil range.
func parseGlyphItem(b rm.Block) (h itemHeader, g *GlyphRange, err error) {
	r := rm.NewTaggedReader(b.Payload)
	if h, err = parseItemHeader(r); err != nil {
		return h, nil, err
	}
	sub, has, err := itemValue(r, rm.ItemTypeGlyphRange)
	if err != nil || !has {
		return h, nil, err
	}

	g = &GlyphRange{ItemID: h.ItemID}
	if sub.HasTag(2, rm.TagByte4) {
		if g.Start, err = sub.ReadUint32(2); err != nil {
			return h, nil, err
		}
	}
	if g.Length, err = sub.ReadUint32(3); err != nil {
		return h, nil, err
	}
	color, err := sub.ReadUint32(4)
	if err != nil {
		return h, nil, err
	}
	g.Color = rm.Color(color)
	if g.Text, err = sub.ReadString(5); err != nil {
		return h, nil, err
	}
	n, err := sub.ReadVaruint()
	if err != nil {
		return h, nil, err
	}
	// Each rect is 32 raw bytes; a count beyond the payload is corrupt.
	if n > uint64(sub.Remaining())/32 {
		return h, nil, fmt.Errorf("glyph rect count %d exceeds %d remaining bytes", n, sub.Remaining())
	}
	g.Rects = make([]Rect, 0, n)
	for i := uint64(0); i < n; i++ {
		raw, err := sub.ReadBytes(32)
		if err != nil {
			return h, nil, err
		}
		g.Rects = append(g.Rects, Rect{
			X: f64(raw[0:]),
			Y: f64(raw[8:]),
			W: f64(raw[16:]),
			H: f64(raw[24:]),
		})
	}
	return h, g, nil
}

// parseTextItem decodes a SceneTextItem block. The text content itself lives
// in the RootText block; the item block only claims tree membership.
func parseTextItem(b rm.Block) (itemHeader, error) {
	r := rm.NewTaggedReader(b.Payload)
	return parseItemHeader(r)
}

// parseRootText decodes the RootText block: the text edit log, the paragraph
// style map, and the text box placement.
func parseRootText(b rm.Block) (*Text, error) {
	r := rm.NewTaggedReader(b.Payload)
	t := &Text{Styles: map[rm.CrdtID]rm.LWW[rm.ParagraphStyle]{}}
	var err error
	if t.BlockID, err = r.ReadID(1); err != nil {
		return nil, err
	}

	body, err := r.SubBlock(2)
	if err != nil {
		return nil, err
	}

	// edit log
	itemsOuter, err := body.SubBlock(1)
	if err != nil {
		return nil, err
	}
	items, err := itemsOuter.SubBlock(1)
	if err != nil {
		return nil, err
	}
	n, err := items.ReadVaruint()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < n; i++ {
		item, err := parseTextEntry(items)
		if err != nil {
			return nil, fmt.Errorf("text item %d: %w", i, err)
		}
		t.Items = append(t.Items, item)
	}

	// style map
	stylesOuter, err := body.SubBlock(2)
	if err != nil {
		return nil, err
	}
	styles, err := stylesOuter.SubBlock(1)
	if err != nil {
		return nil, err
	}
	n, err = styles.ReadVaruint()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < n; i++ {
		charID, err := styles.ReadID(1)
		if err != nil {
			return nil, fmt.Errorf("style entry %d: %w", i, err)
		}
		v, err := styles.ReadLWWUint8(2)
		if err != nil {
			return nil, fmt.Errorf("style entry %d: %w", i, err)
		}
		t.Styles[charID] = rm.LWW[rm.ParagraphStyle]{
			Timestamp: v.Timestamp,
			Value:     rm.ParagraphStyle(v.Value),
		}
	}

	pos, err := r.SubBlock(3)
	if err != nil {
		return nil, err
	}
	raw, err := pos.ReadBytes(16)
	if err != nil {
		return nil, err
	}
	t.PosX = f64(raw[0:])
	t.PosY = f64(raw[8:])

	if t.Width, err = r.ReadFloat32(4); err != nil {
		return nil, err
	}
	return t, nil
}

func parseTextEntry(r *rm.TaggedReader) (TextItem, error) {
	var item TextItem
	sub, err := r.SubBlock(0)
	if err != nil {
		return item, err
	}
	if item.ItemID, err = sub.ReadID(2); err != nil {
		return item, err
	}
	if item.LeftID, err = sub.ReadID(3); err != nil {
		return item, err
	}
	if item.RightID, err = sub.ReadID(4); err != nil {
		return item, err
	}
	if item.DeletedLength, err = sub.ReadUint32(5); err != nil {
		return item, err
	}
	if !sub.HasTag(6, rm.TagLength4) {
		return item, nil
	}
	val, err := sub.SubBlock(6)
	if err != nil {
		return item, err
	}
	n, err := val.ReadVaruint()
	if err != nil {
		return item, err
	}
	if _, err := val.ReadBytes(1); err != nil { // ASCII hint
		return item, err
	}
	raw, err := val.ReadBytes(int(n))
	if err != nil {
		return item, err
	}
	item.Text = string(raw)
	if val.HasTag(2, rm.TagByte4) {
		if item.Format, err = val.ReadUint32(2); err != nil {
			return item, err
		}
	}
	return item, nil
}

func parseMigrationInfo(b rm.Block) (*MigrationInfo, error) {
	r := rm.NewTaggedReader(b.Payload)
	m := &MigrationInfo{}
	var err error
	if m.MigrationID, err = r.ReadID(1); err != nil {
		return nil, err
	}
	if m.IsDevice, err = r.ReadBool(2); err != nil {
		return nil, err
	}
	return m, nil
}

func parsePageInfo(b rm.Block) (*PageInfo, error) {
	r := rm.NewTaggedReader(b.Payload)
	p := &PageInfo{}
	var err error
	if p.LoadsCount, err = r.ReadUint32(1); err != nil {
		return nil, err
	}
	if p.MergesCount, err = r.ReadUint32(2); err != nil {
		return nil, err
	}
	if p.TextChars, err = r.ReadUint32(3); err != nil {
		return nil, err
	}
	if p.TextLines, err = r.ReadUint32(4); err != nil {
		return nil, err
	}
	return p, nil
}

func parseSceneInfo(b rm.Block) (*SceneInfo, error) {
	r := rm.NewTaggedReader(b.Payload)
	s := &SceneInfo{}
	var err error
	if s.CurrentLayer, err = r.ReadLWWID(1); err != nil {
		return nil, err
	}
	if r.HasTag(2, rm.TagLength4) {
		v, err := r.ReadLWWBool(2)
		if err != nil {
			return nil, err
		}
		s.BackgroundVisible = &v
	}
	if r.HasTag(3, rm.TagLength4) {
		v, err := r.ReadLWWBool(3)
		if err != nil {
			return nil, err
		}
		s.RootDocumentShown = &v
	}
	return s, nil
}

// parseAuthorIDs decodes the author table: per-file small integer slots
// mapped to device UUIDs.
func parseAuthorIDs(b rm.Block) (map[uint16]uuid.UUID, error) {
	r := rm.NewTaggedReader(b.Payload)
	n, err := r.ReadVaruint()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Remaining()) {
		return nil, fmt.Errorf("author count %d exceeds %d remaining bytes", n, r.Remaining())
	}
	authors := make(map[uint16]uuid.UUID, n)
	for i := uint64(0); i < n; i++ {
		sub, err := r.SubBlock(0)
		if err != nil {
			return nil, fmt.Errorf("author %d: %w", i, err)
		}
		ulen, err := sub.ReadVaruint()
		if err != nil {
			return nil, fmt.Errorf("author %d: %w", i, err)
		}
		raw, err := sub.ReadBytes(int(ulen))
		if err != nil {
			return nil, fmt.Errorf("author %d: %w", i, err)
		}
		id, err := uuid.FromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("author %d: %w", i, err)
		}
		slotRaw, err := sub.ReadBytes(2)
		if err != nil {
			return nil, fmt.Errorf("author %d: %w", i, err)
		}
		authors[binary.LittleEndian.Uint16(slotRaw)] = id
	}
	return authors, nil
}

func f64(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}
