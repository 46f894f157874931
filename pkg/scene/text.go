package scene

import (
	"strings"
	"unicode/utf8"

	"github.com/inkpath/inkpath/pkg/rm"
)

// Paragraph is one materialized line of the page text.
type Paragraph struct {
	// StartID identifies the newline character that opens the paragraph,
	// zero for the first paragraph. Anchored groups reference these IDs.
	StartID rm.CrdtID
	Style   rm.ParagraphStyle
	Text    string
}

// textChar is one character of the replayed sequence with its log identity.
// IDs count characters, not bytes: an item inserting n characters owns IDs
// itemID..itemID+n-1 however wide their UTF-8 encodings are.
type textChar struct {
	id rm.CrdtID
	c  rune
}

// Paragraphs replays the edit log into the visible text, split at newlines
// with each paragraph's resolved style. An empty or fully deleted log yields
// a single empty plain paragraph.
//
// Replay follows the sequence CRDT's merge rule: each item is spliced in
// after its left anchor (or at the front when the anchor is zero), and items
// later in the stream override earlier placements. Deletion markers occupy
// their position but contribute no characters.
func (t *Text) Paragraphs() []Paragraph {
	var chars []textChar
	for _, item := range t.Items {
		chars = splice(chars, item)
	}

	paras := []Paragraph{{Style: t.styleFor(rm.CrdtID{})}}
	var buf []byte
	flush := func() {
		paras[len(paras)-1].Text = strings.TrimRight(string(buf), "\r")
		buf = buf[:0]
	}
	for _, ch := range chars {
		if ch.c == '\n' {
			flush()
			paras = append(paras, Paragraph{StartID: ch.id, Style: t.styleFor(ch.id)})
			continue
		}
		buf = utf8.AppendRune(buf, ch.c)
	}
	flush()
	return paras
}

// String returns the visible text with paragraphs joined by newlines and
// styling discarded.
func (t *Text) String() string {
	paras := t.Paragraphs()
	lines := make([]string, len(paras))
	for i, p := range paras {
		lines[i] = p.Text
	}
	return strings.Join(lines, "\n")
}

func (t *Text) styleFor(charID rm.CrdtID) rm.ParagraphStyle {
	if v, ok := t.Styles[charID]; ok {
		return v.Value
	}
	return rm.StylePlain
}

// splice inserts one edit-log item into the character sequence.
func splice(chars []textChar, item TextItem) []textChar {
	at := 0
	if !item.LeftID.Zero() {
		for i, ch := range chars {
			if ch.id == item.LeftID {
				at = i + 1
				break
			}
		}
	}

	if item.DeletedLength > 0 {
		// deletion marker: remove up to DeletedLength chars at the anchor
		end := at + int(item.DeletedLength)
		if end > len(chars) {
			end = len(chars)
		}
		return append(chars[:at], chars[end:]...)
	}

	inserted := make([]textChar, 0, utf8.RuneCountInString(item.Text))
	offset := uint64(0)
	for _, r := range item.Text {
		inserted = append(inserted, textChar{
			id: rm.CrdtID{Part1: item.ItemID.Part1, Part2: item.ItemID.Part2 + offset},
			c:  r,
		})
		offset++
	}
	out := make([]textChar, 0, len(chars)+len(inserted))
	out = append(out, chars[:at]...)
	out = append(out, inserted...)
	out = append(out, chars[at:]...)
	return out
}
