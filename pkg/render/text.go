package render

import (
	"bytes"

	"github.com/inkpath/inkpath/pkg/rm"
	"github.com/inkpath/inkpath/pkg/scene"
)

// RenderText extracts the typed text, one line per paragraph, styling
// discarded. A page without text renders as empty output.
func RenderText(doc *scene.Document) []byte {
	if doc.RootText == nil {
		return nil
	}
	text := doc.RootText.String()
	if text == "" {
		return nil
	}
	return []byte(text + "\n")
}

// RenderMarkdown extracts the typed text with paragraph styles mapped to
// markdown syntax.
func RenderMarkdown(doc *scene.Document) []byte {
	if doc.RootText == nil {
		return nil
	}
	var buf bytes.Buffer
	for _, p := range doc.RootText.Paragraphs() {
		switch p.Style {
		case rm.StyleHeading:
			buf.WriteString("# ")
		case rm.StyleBold:
			buf.WriteString("## ")
		case rm.StyleBullet:
			buf.WriteString("- ")
		case rm.StyleBullet2:
			buf.WriteString("    - ")
		case rm.StyleCheckbox:
			buf.WriteString("- [ ] ")
		case rm.StyleCheckboxChecked:
			buf.WriteString("- [x] ")
		}
		buf.WriteString(p.Text)
		buf.WriteByte('\n')
	}
	if buf.Len() == 1 { // single empty paragraph
		return nil
	}
	return buf.Bytes()
}
