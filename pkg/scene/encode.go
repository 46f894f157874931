package scene

import (
	"encoding/binary"
	"math"

	"github.com/google/uuid"

	"github.com/inkpath/inkpath/pkg/rm"
)

// Block builders, the encode counterparts of the parsers in blocks.go.
// They emit the same grammar the parsers accept, which is what the import
// path and the synthetic documents in tests are built from.

func sceneTreeBlock(d treeDecl) rm.Block {
	w := rm.NewTaggedWriter()
	w.WriteID(1, d.TreeID)
	w.WriteID(2, d.NodeID)
	w.WriteBool(3, d.IsUpdate)
	w.SubBlock(4, func(sub *rm.TaggedWriter) {
		sub.WriteID(1, d.ParentID)
	})
	return rm.Block{Type: rm.BlockSceneTree, MinVersion: 1, CurrentVersion: 1, Payload: w.Bytes()}
}

func treeNodeBlock(g *Group) rm.Block {
	w := rm.NewTaggedWriter()
	w.WriteID(1, g.NodeID)
	w.WriteLWWString(2, g.Label)
	w.WriteLWWBool(3, g.Visible)
	if g.AnchorID != nil {
		w.WriteLWWID(7, *g.AnchorID)
	}
	if g.AnchorType != nil {
		w.WriteLWWUint8(8, *g.AnchorType)
	}
	if g.AnchorOriginX != nil {
		w.WriteLWWFloat32(10, *g.AnchorOriginX)
	}
	return rm.Block{Type: rm.BlockTreeNode, MinVersion: 1, CurrentVersion: 1, Payload: w.Bytes()}
}

func writeItemHeader(w *rm.TaggedWriter, h itemHeader) {
	w.WriteID(1, h.ParentID)
	w.WriteID(2, h.ItemID)
	w.WriteID(3, h.LeftID)
	w.WriteID(4, h.RightID)
	w.WriteUint32(5, h.DeletedLength)
}

func groupItemBlock(h itemHeader, childID rm.CrdtID) rm.Block {
	w := rm.NewTaggedWriter()
	writeItemHeader(w, h)
	if !childID.Zero() {
		w.SubBlock(6, func(sub *rm.TaggedWriter) {
			sub.WriteVaruint(uint64(rm.ItemTypeGroup))
			sub.WriteID(2, childID)
		})
	}
	return rm.Block{Type: rm.BlockSceneGroupItem, MinVersion: 1, CurrentVersion: 1, Payload: w.Bytes()}
}

func lineItemBlock(h itemHeader, s *Stroke, version uint8) rm.Block {
	w := rm.NewTaggedWriter()
	writeItemHeader(w, h)
	if s != nil {
		w.SubBlock(6, func(sub *rm.TaggedWriter) {
			sub.WriteVaruint(uint64(rm.ItemTypeLine))
			sub.WriteUint32(1, uint32(s.Tool))
			sub.WriteUint32(2, uint32(s.Color))
			sub.WriteFloat64(3, s.ThicknessScale)
			sub.WriteFloat32(4, s.StartingLength)
			sub.WriteRaw(5, encodePoints(s.Points, version))
			if !s.Timestamp.Zero() {
				sub.WriteID(6, s.Timestamp)
			}
		})
	}
	return rm.Block{Type: rm.BlockSceneLineItem, MinVersion: 1, CurrentVersion: version, Payload: w.Bytes()}
}

func glyphItemBlock(h itemHeader, g *GlyphRange) rm.Block {
	w := rm.NewTaggedWriter()
	writeItemHeader(w, h)
	if g != nil {
		w.SubBlock(6, func(sub *rm.TaggedWriter) {
			sub.WriteVaruint(uint64(rm.ItemTypeGlyphRange))
			sub.WriteUint32(2, g.Start)
			sub.WriteUint32(3, g.Length)
			sub.WriteUint32(4, uint32(g.Color))
			sub.WriteString(5, g.Text)
			sub.WriteVaruint(uint64(len(g.Rects)))
			for _, rect := range g.Rects {
				var raw [32]byte
				binary.LittleEndian.PutUint64(raw[0:], math.Float64bits(rect.X))
				binary.LittleEndian.PutUint64(raw[8:], math.Float64bits(rect.Y))
				binary.LittleEndian.PutUint64(raw[16:], math.Float64bits(rect.W))
				binary.LittleEndian.PutUint64(raw[24:], math.Float64bits(rect.H))
				sub.WriteBytes(raw[:])
			}
		})
	}
	return rm.Block{Type: rm.BlockSceneGlyphItem, MinVersion: 1, CurrentVersion: 1, Payload: w.Bytes()}
}

func rootTextBlock(t *Text) rm.Block {
	w := rm.NewTaggedWriter()
	w.WriteID(1, t.BlockID)
	w.SubBlock(2, func(body *rm.TaggedWriter) {
		body.SubBlock(1, func(outer *rm.TaggedWriter) {
			outer.SubBlock(1, func(items *rm.TaggedWriter) {
				items.WriteVaruint(uint64(len(t.Items)))
				for _, item := range t.Items {
					writeTextEntry(items, item)
				}
			})
		})
		body.SubBlock(2, func(outer *rm.TaggedWriter) {
			outer.SubBlock(1, func(styles *rm.TaggedWriter) {
				styles.WriteVaruint(uint64(len(t.Styles)))
				for _, charID := range sortedStyleKeys(t.Styles) {
					v := t.Styles[charID]
					styles.WriteID(1, charID)
					styles.WriteLWWUint8(2, rm.LWW[uint8]{
						Timestamp: v.Timestamp,
						Value:     uint8(v.Value),
					})
				}
			})
		})
	})
	w.SubBlock(3, func(pos *rm.TaggedWriter) {
		var raw [16]byte
		binary.LittleEndian.PutUint64(raw[0:], math.Float64bits(t.PosX))
		binary.LittleEndian.PutUint64(raw[8:], math.Float64bits(t.PosY))
		pos.WriteBytes(raw[:])
	})
	w.WriteFloat32(4, t.Width)
	return rm.Block{Type: rm.BlockRootText, MinVersion: 1, CurrentVersion: 1, Payload: w.Bytes()}
}

func writeTextEntry(w *rm.TaggedWriter, item TextItem) {
	w.SubBlock(0, func(sub *rm.TaggedWriter) {
		sub.WriteID(2, item.ItemID)
		sub.WriteID(3, item.LeftID)
		sub.WriteID(4, item.RightID)
		sub.WriteUint32(5, item.DeletedLength)
		if item.Text == "" && item.Format == 0 {
			return
		}
		sub.SubBlock(6, func(val *rm.TaggedWriter) {
			val.WriteVaruint(uint64(len(item.Text)))
			ascii := byte(1)
			for i := 0; i < len(item.Text); i++ {
				if item.Text[i] >= 0x80 {
					ascii = 0
					break
				}
			}
			val.WriteBytes([]byte{ascii})
			val.WriteBytes([]byte(item.Text))
			if item.Format != 0 {
				val.WriteUint32(2, item.Format)
			}
		})
	})
}

// sortedStyleKeys gives the style map a stable encode order.
func sortedStyleKeys(styles map[rm.CrdtID]rm.LWW[rm.ParagraphStyle]) []rm.CrdtID {
	keys := make([]rm.CrdtID, 0, len(styles))
	for k := range styles {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j].Compare(keys[j-1]) < 0; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

func migrationInfoBlock(m *MigrationInfo) rm.Block {
	w := rm.NewTaggedWriter()
	w.WriteID(1, m.MigrationID)
	w.WriteBool(2, m.IsDevice)
	return rm.Block{Type: rm.BlockMigrationInfo, MinVersion: 1, CurrentVersion: 1, Payload: w.Bytes()}
}

func pageInfoBlock(p *PageInfo) rm.Block {
	w := rm.NewTaggedWriter()
	w.WriteUint32(1, p.LoadsCount)
	w.WriteUint32(2, p.MergesCount)
	w.WriteUint32(3, p.TextChars)
	w.WriteUint32(4, p.TextLines)
	return rm.Block{Type: rm.BlockPageInfo, MinVersion: 1, CurrentVersion: 1, Payload: w.Bytes()}
}

func authorIDsBlock(authors map[uint16]uuid.UUID) rm.Block {
	w := rm.NewTaggedWriter()
	w.WriteVaruint(uint64(len(authors)))
	slots := make([]uint16, 0, len(authors))
	for slot := range authors {
		slots = append(slots, slot)
	}
	for i := 1; i < len(slots); i++ {
		for j := i; j > 0 && slots[j] < slots[j-1]; j-- {
			slots[j], slots[j-1] = slots[j-1], slots[j]
		}
	}
	for _, slot := range slots {
		id := authors[slot]
		w.SubBlock(0, func(sub *rm.TaggedWriter) {
			sub.WriteVaruint(uint64(len(id)))
			sub.WriteBytes(id[:])
			var raw [2]byte
			binary.LittleEndian.PutUint16(raw[:], slot)
			sub.WriteBytes(raw[:])
		})
	}
	return rm.Block{Type: rm.BlockAuthorIDs, MinVersion: 1, CurrentVersion: 1, Payload: w.Bytes()}
}
