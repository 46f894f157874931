package rm

import "testing"

func TestPenStyleLookup(t *testing.T) {
	// both device generations of a tool must share the same curve
	if PenBallpoint1.Style() != PenBallpoint2.Style() {
		t.Error("ballpoint generations diverge")
	}
	if s := PenHighlighter1.Style(); s.Opacity >= 1 {
		t.Errorf("highlighter opacity = %v, want translucent", s.Opacity)
	}
	if s := PenEraser.Style(); !s.Erases {
		t.Error("eraser style does not erase")
	}
	if s := Pen(99).Style(); s != fallbackStyle {
		t.Errorf("unknown pen style = %+v, want fallback", s)
	}
}

func TestPenStyleWidth(t *testing.T) {
	const base = 4.0

	fixed := PenFineliner1.Style()
	if w := fixed.Width(base, 0.1, 40); w != base {
		t.Errorf("fineliner width = %v, want %v", w, base)
	}

	bp := PenBallpoint1.Style()
	light := bp.Width(base, 0.1, 0)
	heavy := bp.Width(base, 0.9, 0)
	if light >= heavy {
		t.Errorf("pressure has no effect: light=%v heavy=%v", light, heavy)
	}

	pencil := PenPencil1.Style()
	slow := pencil.Width(base, 0.5, 0)
	fast := pencil.Width(base, 0.5, 100)
	if fast >= slow {
		t.Errorf("speed has no effect: slow=%v fast=%v", slow, fast)
	}

	// extreme samples must stay within the clamp envelope
	if w := bp.Width(base, 1000, 0); w > base*3 {
		t.Errorf("width %v exceeds clamp", w)
	}
	if w := pencil.Width(base, 0, 1e6); w < base*0.3 {
		t.Errorf("width %v below clamp", w)
	}
}

func TestColorRGB(t *testing.T) {
	if got := ColorBlack.RGB(); got != "rgb(0,0,0)" {
		t.Errorf("black = %q", got)
	}
	if got := ColorWhite.RGB(); got != "rgb(255,255,255)" {
		t.Errorf("white = %q", got)
	}
	// unknown palette entries fall back to black rather than failing
	if got := Color(200).RGB(); got != "rgb(0,0,0)" {
		t.Errorf("unknown color = %q", got)
	}
}

func TestParagraphStyleLineHeight(t *testing.T) {
	if h := StyleHeading.LineHeight(); h <= StylePlain.LineHeight() {
		t.Errorf("heading height %v not larger than plain %v", h, StylePlain.LineHeight())
	}
	if StyleBullet.LineHeight() != StyleCheckbox.LineHeight() {
		t.Error("bullet and checkbox heights diverge")
	}
	if ParagraphStyle(99).LineHeight() != StylePlain.LineHeight() {
		t.Error("unknown style does not use the default height")
	}
}
