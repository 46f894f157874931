package scene

import (
	"io"

	"github.com/google/uuid"

	"github.com/inkpath/inkpath/pkg/rm"
)

// Text box placement used for generated pages, matching the device's
// defaults for a full-width text page.
const (
	textPosX  = -468.0
	textPosY  = 234.0
	textWidth = 936.0
)

// SimpleTextDocument builds the minimal block sequence for a page holding
// only typed text: author table, migration and page bookkeeping, one layer,
// and the root text carrying the whole text as a single insertion. The
// output is deterministic for a given input.
func SimpleTextDocument(text string) []rm.Block {
	rootID := rootNodeID
	layerID := rm.CrdtID{Part1: 0, Part2: 11}
	layerItemID := rm.CrdtID{Part1: 0, Part2: 12}
	textItemID := rm.CrdtID{Part1: 1, Part2: 16}

	rootText := &Text{
		Items: []TextItem{{ItemID: textItemID, Text: text}},
		Styles: map[rm.CrdtID]rm.LWW[rm.ParagraphStyle]{
			{}: {Timestamp: rm.CrdtID{Part1: 1, Part2: 15}, Value: rm.StylePlain},
		},
		PosX:  textPosX,
		PosY:  textPosY,
		Width: textWidth,
	}

	layer := &Group{
		NodeID:  layerID,
		Label:   rm.LWW[string]{Timestamp: rm.CrdtID{Part1: 0, Part2: 13}, Value: "Layer 1"},
		Visible: rm.LWW[bool]{Value: true},
	}

	return []rm.Block{
		// generated files carry no device identity
		authorIDsBlock(map[uint16]uuid.UUID{1: uuid.Nil}),
		migrationInfoBlock(&MigrationInfo{MigrationID: rm.CrdtID{Part1: 1, Part2: 1}, IsDevice: true}),
		pageInfoBlock(&PageInfo{LoadsCount: 1, TextChars: uint32(len(text)), TextLines: countLines(text)}),
		sceneTreeBlock(treeDecl{
			TreeID:   layerID,
			NodeID:   rm.CrdtID{},
			IsUpdate: true,
			ParentID: rootID,
		}),
		rootTextBlock(rootText),
		treeNodeBlock(&Group{NodeID: rootID}),
		treeNodeBlock(layer),
		groupItemBlock(itemHeader{ParentID: rootID, ItemID: layerItemID}, layerID),
	}
}

// WriteSimpleText serializes a text-only page through the block writer.
func WriteSimpleText(w io.Writer, text string) error {
	return rm.WriteBlocks(w, SimpleTextDocument(text))
}

func countLines(text string) uint32 {
	if text == "" {
		return 0
	}
	n := uint32(1)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			n++
		}
	}
	return n
}
