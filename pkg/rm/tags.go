package rm

import "fmt"

// BlockType identifies the interpretation of a block's payload.
// Values mirror the device's v6 grammar. Types not listed here are carried
// through reads and writes as opaque payloads.
type BlockType uint8

// Known block type tags.
const (
	BlockMigrationInfo     BlockType = 0x00
	BlockSceneTree         BlockType = 0x01
	BlockTreeNode          BlockType = 0x02
	BlockSceneGlyphItem    BlockType = 0x03
	BlockSceneGroupItem    BlockType = 0x04
	BlockSceneLineItem     BlockType = 0x05
	BlockSceneTextItem     BlockType = 0x06
	BlockRootText          BlockType = 0x07
	BlockSceneTombstone    BlockType = 0x08
	BlockAuthorIDs         BlockType = 0x09
	BlockPageInfo          BlockType = 0x0A
	BlockSceneInfo         BlockType = 0x0D
)

// String returns the block type name, or a hex literal for unknown tags.
func (t BlockType) String() string {
	switch t {
	case BlockMigrationInfo:
		return "MigrationInfo"
	case BlockSceneTree:
		return "SceneTree"
	case BlockTreeNode:
		return "TreeNode"
	case BlockSceneGlyphItem:
		return "SceneGlyphItem"
	case BlockSceneGroupItem:
		return "SceneGroupItem"
	case BlockSceneLineItem:
		return "SceneLineItem"
	case BlockSceneTextItem:
		return "SceneTextItem"
	case BlockRootText:
		return "RootText"
	case BlockSceneTombstone:
		return "SceneTombstone"
	case BlockAuthorIDs:
		return "AuthorIds"
	case BlockPageInfo:
		return "PageInfo"
	case BlockSceneInfo:
		return "SceneInfo"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", uint8(t))
	}
}

// Known reports whether the block type has a typed payload interpretation.
func (t BlockType) Known() bool {
	switch t {
	case BlockMigrationInfo, BlockSceneTree, BlockTreeNode, BlockSceneGlyphItem,
		BlockSceneGroupItem, BlockSceneLineItem, BlockSceneTextItem,
		BlockRootText, BlockSceneTombstone, BlockAuthorIDs, BlockPageInfo,
		BlockSceneInfo:
		return true
	}
	return false
}

// ItemType identifies the value kind carried by a scene item block.
type ItemType uint8

// Scene item value types.
const (
	ItemTypeGlyphRange ItemType = 0x01
	ItemTypeGroup      ItemType = 0x02
	ItemTypeLine       ItemType = 0x03
	ItemTypeText       ItemType = 0x05
)

// String returns the item type name.
func (t ItemType) String() string {
	switch t {
	case ItemTypeGlyphRange:
		return "glyph-range"
	case ItemTypeGroup:
		return "group"
	case ItemTypeLine:
		return "line"
	case ItemTypeText:
		return "text"
	default:
		return fmt.Sprintf("item(0x%02X)", uint8(t))
	}
}

// Pen identifies the drawing tool recorded for a stroke. Each tool appears
// twice in the grammar: the original device generation and the v2 renderer
// generation share behavior but use distinct tags.
type Pen uint32

// Pen tool tags.
const (
	PenPaintbrush1       Pen = 0
	PenPencil1           Pen = 1
	PenBallpoint1        Pen = 2
	PenMarker1           Pen = 3
	PenFineliner1        Pen = 4
	PenHighlighter1      Pen = 5
	PenEraser            Pen = 6
	PenMechanicalPencil1 Pen = 7
	PenEraserArea        Pen = 8
	PenPaintbrush2       Pen = 12
	PenMechanicalPencil2 Pen = 13
	PenPencil2           Pen = 14
	PenBallpoint2        Pen = 15
	PenMarker2           Pen = 16
	PenFineliner2        Pen = 17
	PenHighlighter2      Pen = 18
	PenCalligraphy       Pen = 21
	PenShader            Pen = 23
)

// String returns the pen tool name.
func (p Pen) String() string {
	switch p {
	case PenPaintbrush1, PenPaintbrush2:
		return "paintbrush"
	case PenPencil1, PenPencil2:
		return "pencil"
	case PenBallpoint1, PenBallpoint2:
		return "ballpoint"
	case PenMarker1, PenMarker2:
		return "marker"
	case PenFineliner1, PenFineliner2:
		return "fineliner"
	case PenHighlighter1, PenHighlighter2:
		return "highlighter"
	case PenEraser:
		return "eraser"
	case PenEraserArea:
		return "erase-area"
	case PenMechanicalPencil1, PenMechanicalPencil2:
		return "mechanical-pencil"
	case PenCalligraphy:
		return "calligraphy"
	case PenShader:
		return "shader"
	default:
		return fmt.Sprintf("pen(%d)", uint32(p))
	}
}

// IsHighlighter reports whether the tool renders as a translucent band.
func (p Pen) IsHighlighter() bool {
	return p == PenHighlighter1 || p == PenHighlighter2
}

// IsEraser reports whether the tool removes ink rather than adding it.
func (p Pen) IsEraser() bool {
	return p == PenEraser || p == PenEraserArea
}

// Color identifies a stroke color from the device palette.
type Color uint32

// Stroke color tags.
const (
	ColorBlack       Color = 0
	ColorGray        Color = 1
	ColorWhite       Color = 2
	ColorYellow      Color = 3
	ColorGreen       Color = 4
	ColorPink        Color = 5
	ColorBlue        Color = 6
	ColorRed         Color = 7
	ColorGrayOverlap Color = 8
	ColorHighlight   Color = 9
	ColorGreen2      Color = 10
	ColorCyan        Color = 11
	ColorMagenta     Color = 12
	ColorYellow2     Color = 13
)

// rgbByColor maps palette tags to CSS color strings for vector export.
// Unknown tags fall back to black; export never fails on a new palette entry.
var rgbByColor = map[Color]string{
	ColorBlack:       "rgb(0,0,0)",
	ColorGray:        "rgb(125,125,125)",
	ColorWhite:       "rgb(255,255,255)",
	ColorYellow:      "rgb(255,255,99)",
	ColorGreen:       "rgb(0,125,0)",
	ColorPink:        "rgb(255,20,147)",
	ColorBlue:        "rgb(0,98,204)",
	ColorRed:         "rgb(217,7,7)",
	ColorGrayOverlap: "rgb(125,125,125)",
	ColorHighlight:   "rgb(255,255,99)",
	ColorGreen2:      "rgb(145,218,113)",
	ColorCyan:        "rgb(116,210,232)",
	ColorMagenta:     "rgb(192,127,210)",
	ColorYellow2:     "rgb(250,231,25)",
}

// RGB returns the CSS color for the palette tag, defaulting to black for
// tags the palette does not define.
func (c Color) RGB() string {
	if s, ok := rgbByColor[c]; ok {
		return s
	}
	return "rgb(0,0,0)"
}

// ParagraphStyle identifies the formatting applied to a text paragraph.
type ParagraphStyle uint8

// Paragraph style tags.
const (
	StyleBasic           ParagraphStyle = 0
	StylePlain           ParagraphStyle = 1
	StyleHeading         ParagraphStyle = 2
	StyleBold            ParagraphStyle = 3
	StyleBullet          ParagraphStyle = 4
	StyleBullet2         ParagraphStyle = 5
	StyleCheckbox        ParagraphStyle = 6
	StyleCheckboxChecked ParagraphStyle = 7
)

// String returns the paragraph style name.
func (s ParagraphStyle) String() string {
	switch s {
	case StyleBasic:
		return "basic"
	case StylePlain:
		return "plain"
	case StyleHeading:
		return "heading"
	case StyleBold:
		return "bold"
	case StyleBullet:
		return "bullet"
	case StyleBullet2:
		return "bullet2"
	case StyleCheckbox:
		return "checkbox"
	case StyleCheckboxChecked:
		return "checkbox-checked"
	default:
		return fmt.Sprintf("style(%d)", uint8(s))
	}
}

// LineHeight returns the vertical advance in screen units for a paragraph of
// this style. Values match the device's text layout.
func (s ParagraphStyle) LineHeight() float64 {
	switch s {
	case StyleHeading:
		return 150
	case StyleBullet, StyleBullet2, StyleCheckbox, StyleCheckboxChecked:
		return 35
	default:
		return 70
	}
}
