package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/inkpath/inkpath/pkg/scene"
)

// SVGOption configures the SVG renderer.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	includeText bool
	fixedPage   bool
}

// WithoutText drops typed text from the output, leaving only ink.
func WithoutText() SVGOption { return func(r *svgRenderer) { r.includeText = false } }

// WithFixedPage sizes the output to the device screen instead of the content
// bounding box.
func WithFixedPage() SVGOption { return func(r *svgRenderer) { r.fixedPage = true } }

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// RenderSVG renders the document as an SVG page. Strokes become polylines
// split into constant-width runs, so pens with dynamic width render as a few
// segments while fixed-width pens stay a single element. Output is
// deterministic for a given document.
func RenderSVG(doc *scene.Document, opts ...SVGOption) []byte {
	r := svgRenderer{includeText: true}
	for _, opt := range opts {
		opt(&r)
	}

	xMin, xMax, yMin, yMax := boundingBox(doc)
	if r.fixedPage {
		xMin, xMax = -float64(ScreenWidth)/2, float64(ScreenWidth)/2
		yMin, yMax = 0, float64(ScreenHeight)
	}
	width := Pts(xMax - xMin + 1)
	height := Pts(yMax - yMin + 1)

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&buf,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%.2f" height="%.2f" viewBox="%.2f %.2f %.2f %.2f">`+"\n",
		width, height, Pts(xMin), Pts(yMin), width, height)

	if r.includeText && doc.RootText != nil {
		renderSVGText(&buf, doc.RootText)
	}

	pos := anchorPos(doc.RootText)
	var walk func(g *scene.Group, offX, offY float64)
	walk = func(g *scene.Group, offX, offY float64) {
		for _, item := range g.Children {
			switch it := item.(type) {
			case *scene.Group:
				ax, ay := groupAnchor(it, pos)
				walk(it, offX+ax, offY+ay)
			case *scene.Stroke:
				renderSVGStroke(&buf, it, offX, offY)
			case *scene.GlyphRange:
				renderSVGGlyph(&buf, it)
			}
		}
	}
	if doc.Root != nil {
		walk(doc.Root, 0, 0)
	}
	if doc.Orphans != nil {
		walk(doc.Orphans, 0, 0)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// renderSVGStroke emits one polyline per constant-width run of the stroke.
// Adjacent runs share their boundary point so the line stays connected.
func renderSVGStroke(buf *bytes.Buffer, s *scene.Stroke, offX, offY float64) {
	style := s.Tool.Style()
	if style.Erases || len(s.Points) == 0 {
		return
	}

	widths := make([]float64, len(s.Points))
	for i, p := range s.Points {
		base := s.ThicknessScale * float64(p.Width)
		w := style.Width(base, float64(p.Pressure), float64(p.Speed))
		// quantize so pressure jitter does not explode the element count
		widths[i] = math.Round(Pts(w)*10) / 10
	}

	color := s.Color.RGB()
	start := 0
	for start < len(s.Points) {
		end := start + 1
		for end < len(s.Points) && widths[end] == widths[start] {
			end++
		}
		fmt.Fprintf(buf, `<polyline fill="none" stroke="%s" stroke-width="%.1f" stroke-linecap="round" stroke-linejoin="round"`,
			color, widths[start])
		if style.Opacity < 1 {
			fmt.Fprintf(buf, ` stroke-opacity="%.2f"`, style.Opacity)
		}
		buf.WriteString(` points="`)
		from := start
		if from > 0 {
			from-- // continue from the previous run's last point
		}
		for i := from; i < end; i++ {
			if i > from {
				buf.WriteByte(' ')
			}
			p := s.Points[i]
			fmt.Fprintf(buf, "%.2f,%.2f", Pts(float64(p.X)+offX), Pts(float64(p.Y)+offY))
		}
		buf.WriteString("\"/>\n")
		start = end
	}
}

func renderSVGGlyph(buf *bytes.Buffer, g *scene.GlyphRange) {
	style := rmHighlightOpacity
	for _, rect := range g.Rects {
		fmt.Fprintf(buf, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" fill-opacity="%.2f"/>`+"\n",
			Pts(rect.X), Pts(rect.Y), Pts(rect.W), Pts(rect.H), g.Color.RGB(), style)
	}
}

// rmHighlightOpacity matches the device's rendering of text highlights.
const rmHighlightOpacity = 0.25

func renderSVGText(buf *bytes.Buffer, text *scene.Text) {
	y := text.PosY + textTopY
	for _, p := range text.Paragraphs() {
		y += p.Style.LineHeight()
		line := strings.TrimSpace(p.Text)
		if line == "" {
			continue
		}
		fmt.Fprintf(buf, `<text x="%.2f" y="%.2f" class="%s">%s</text>`+"\n",
			Pts(text.PosX), Pts(y), p.Style, xmlEscaper.Replace(line))
	}
}
