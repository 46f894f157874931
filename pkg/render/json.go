package render

import (
	"encoding/json"
	"math"

	"github.com/inkpath/inkpath/pkg/scene"
)

// JSON scene dump, a flattened view of the page for downstream tooling:
// page box in points, the typed text lines, and every stroke's points with
// their resolved render width, color and opacity.

type jsonScene struct {
	Page    jsonBox      `json:"page"`
	PageOrg jsonBox      `json:"pageOrg"`
	Text    []jsonLine   `json:"text"`
	Strokes []jsonStroke `json:"strokes"`
}

type jsonBox struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type jsonLine struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Class string  `json:"class"`
}

type jsonStroke struct {
	ID       string      `json:"id"`
	Tool     string      `json:"tool"`
	Color    string      `json:"color"`
	Opacity  float64     `json:"opacity"`
	Points   []jsonPoint `json:"points"`
	Orphaned bool        `json:"orphaned,omitempty"`
}

type jsonPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
}

// RenderJSON renders the scene dump. Output is deterministic: items appear
// in z-order and numbers are rounded to fixed precision.
func RenderJSON(doc *scene.Document) ([]byte, error) {
	xMin, xMax, yMin, yMax := boundingBox(doc)
	out := jsonScene{
		Page: jsonBox{
			Width:  round2(Pts(xMax - xMin + 1)),
			Height: round2(Pts(yMax - yMin + 1)),
			X:      round2(Pts(xMin)),
			Y:      round2(Pts(yMin)),
		},
		PageOrg: jsonBox{Width: xMax, Height: yMax, X: xMin, Y: yMin},
		Text:    []jsonLine{},
		Strokes: []jsonStroke{},
	}

	if doc.RootText != nil {
		y := doc.RootText.PosY + textTopY
		for _, p := range doc.RootText.Paragraphs() {
			y += p.Style.LineHeight()
			if p.Text == "" {
				continue
			}
			out.Text = append(out.Text, jsonLine{
				X:     round2(Pts(doc.RootText.PosX)),
				Y:     round2(Pts(y)),
				Text:  p.Text,
				Class: p.Style.String(),
			})
		}
	}

	pos := anchorPos(doc.RootText)
	appendStrokes := func(root *scene.Group, orphaned bool) {
		if root == nil {
			return
		}
		var walk func(g *scene.Group, offX, offY float64)
		walk = func(g *scene.Group, offX, offY float64) {
			for _, item := range g.Children {
				switch it := item.(type) {
				case *scene.Group:
					ax, ay := groupAnchor(it, pos)
					walk(it, offX+ax, offY+ay)
				case *scene.Stroke:
					out.Strokes = append(out.Strokes, jsonStrokeOf(it, offX, offY, orphaned))
				}
			}
		}
		walk(root, 0, 0)
	}
	appendStrokes(doc.Root, false)
	appendStrokes(doc.Orphans, true)

	return json.MarshalIndent(out, "", "  ")
}

func jsonStrokeOf(s *scene.Stroke, offX, offY float64, orphaned bool) jsonStroke {
	style := s.Tool.Style()
	js := jsonStroke{
		ID:       s.ItemID.String(),
		Tool:     s.Tool.String(),
		Color:    s.Color.RGB(),
		Opacity:  style.Opacity,
		Points:   make([]jsonPoint, 0, len(s.Points)),
		Orphaned: orphaned,
	}
	for _, p := range s.Points {
		base := s.ThicknessScale * float64(p.Width)
		js.Points = append(js.Points, jsonPoint{
			X:     round2(Pts(float64(p.X) + offX)),
			Y:     round2(Pts(float64(p.Y) + offY)),
			Width: round2(Pts(style.Width(base, float64(p.Pressure), float64(p.Speed)))),
		})
	}
	return js
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
