package rm

// PenStyle describes how a tool turns recorded point dynamics into rendered
// ink. The curves are a fixed table mirrored from the device renderer; they
// are a modeling choice, not physics, and must stay stable for visual
// fidelity with the tablet's own output.
type PenStyle struct {
	Name string

	// Opacity of the rendered stroke, 1.0 for solid inks.
	Opacity float64

	// PressureGain scales how strongly pen pressure widens the stroke.
	// Zero for fixed-width nibs (fineliner, highlighter).
	PressureGain float64

	// SpeedDrag scales how strongly pen speed narrows the stroke,
	// approximating ink starvation on fast gestures.
	SpeedDrag float64

	// Erases marks tools that remove ink rather than draw it.
	Erases bool
}

// speedUnit normalizes the recorded speed field; the device clusters most
// gesture speeds below this value.
const speedUnit = 50.0

// Width returns the rendered width for one point given the stroke's base
// width and the point's dynamics. Pressure is in [0,1]; speed is in raw
// recorded units. The result is clamped so a single extreme sample cannot
// collapse or explode a stroke.
func (s PenStyle) Width(base, pressure, speed float64) float64 {
	w := base * (1 + s.PressureGain*(pressure-0.5))
	w -= s.SpeedDrag * base * (speed / speedUnit)
	const minScale, maxScale = 0.3, 3.0
	if w < base*minScale {
		return base * minScale
	}
	if w > base*maxScale {
		return base * maxScale
	}
	return w
}

// penStyles is the response curve table, keyed by canonical tool name so
// both device generations of a tool share one entry.
var penStyles = map[string]PenStyle{
	"ballpoint":         {Name: "ballpoint", Opacity: 1, PressureGain: 0.8, SpeedDrag: 0.1},
	"fineliner":         {Name: "fineliner", Opacity: 1},
	"marker":            {Name: "marker", Opacity: 1, PressureGain: 0.3},
	"pencil":            {Name: "pencil", Opacity: 0.7, PressureGain: 1.0, SpeedDrag: 0.3},
	"mechanical-pencil": {Name: "mechanical-pencil", Opacity: 0.8, PressureGain: 0.4},
	"paintbrush":        {Name: "paintbrush", Opacity: 1, PressureGain: 1.6, SpeedDrag: 0.2},
	"highlighter":       {Name: "highlighter", Opacity: 0.2},
	"calligraphy":       {Name: "calligraphy", Opacity: 1, PressureGain: 1.2},
	"shader":            {Name: "shader", Opacity: 0.3, PressureGain: 0.5},
	"eraser":            {Name: "eraser", Opacity: 1, Erases: true},
	"erase-area":        {Name: "erase-area", Opacity: 1, Erases: true},
}

// fallbackStyle renders tools added after this table was written: solid,
// fixed-width, so newer-device files still export without failing.
var fallbackStyle = PenStyle{Name: "unknown", Opacity: 1}

// Style returns the rendering style for a pen tool. Unrecognized tools get
// a declared fallback style rather than an error.
func (p Pen) Style() PenStyle {
	if s, ok := penStyles[p.String()]; ok {
		return s
	}
	return fallbackStyle
}
