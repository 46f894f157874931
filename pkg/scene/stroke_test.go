package scene

import (
	"bytes"
	"math"
	"testing"
)

func TestDecodePointsV1RoundTrip(t *testing.T) {
	in := []Point{
		{X: 1.5, Y: -2.5, Speed: 3, Direction: 0.5, Width: 2.25, Pressure: 0.75},
		{X: 0, Y: 0, Speed: 0, Direction: 0, Width: 0, Pressure: 0},
		{X: -700, Y: 1871, Speed: 12.5, Direction: 6.25, Width: 10, Pressure: 1},
	}
	raw := encodePoints(in, 1)
	if len(raw) != len(in)*pointSizeV1 {
		t.Fatalf("encoded %d bytes, want %d", len(raw), len(in)*pointSizeV1)
	}
	out, trailing := decodePoints(raw, 1)
	if trailing != 0 {
		t.Fatalf("trailing = %d", trailing)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d points, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("point %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestDecodePointsV2(t *testing.T) {
	in := []Point{
		{X: 100, Y: 200, Speed: 10, Width: 4.25, Direction: 1.0, Pressure: 0.5},
	}
	raw := encodePoints(in, 2)
	if len(raw) != pointSizeV2 {
		t.Fatalf("encoded %d bytes, want %d", len(raw), pointSizeV2)
	}
	out, trailing := decodePoints(raw, 2)
	if trailing != 0 || len(out) != 1 {
		t.Fatalf("decode = %d points, %d trailing", len(out), trailing)
	}
	p := out[0]
	if p.X != 100 || p.Y != 200 {
		t.Errorf("position = (%v, %v)", p.X, p.Y)
	}
	if p.Speed != 10 || p.Width != 4.25 {
		t.Errorf("speed/width = %v/%v", p.Speed, p.Width)
	}
	// direction and pressure are quantized to a byte
	if math.Abs(float64(p.Direction-1.0)) > 0.02 {
		t.Errorf("direction = %v", p.Direction)
	}
	if math.Abs(float64(p.Pressure-0.5)) > 0.005 {
		t.Errorf("pressure = %v", p.Pressure)
	}
}

// A truncated payload must decode its complete records exactly as the full
// payload would.
func TestDecodePointsTruncationMonotonic(t *testing.T) {
	var in []Point
	for i := 0; i < 8; i++ {
		in = append(in, Point{X: float32(i), Y: float32(i * 2), Speed: float32(i) / 2, Pressure: 0.5})
	}
	for _, version := range []uint8{1, 2} {
		raw := encodePoints(in, version)
		full, _ := decodePoints(raw, version)

		size := pointSize(version)
		for cut := 0; cut <= len(raw); cut++ {
			got, trailing := decodePoints(raw[:cut], version)
			k := cut / size
			if len(got) != k {
				t.Fatalf("v%d cut %d: %d points, want %d", version, cut, len(got), k)
			}
			if trailing != cut-k*size {
				t.Fatalf("v%d cut %d: trailing = %d", version, cut, trailing)
			}
			for i := 0; i < k; i++ {
				if got[i] != full[i] {
					t.Fatalf("v%d cut %d: point %d = %+v, want %+v", version, cut, i, got[i], full[i])
				}
			}
		}
	}
}

// The garbage-tail case: three complete records plus two stray bytes decode
// to exactly three points.
func TestDecodePointsGarbageTail(t *testing.T) {
	in := []Point{{X: 1}, {X: 2}, {X: 3}}
	for _, version := range []uint8{1, 2} {
		raw := append(encodePoints(in, version), 0xDE, 0xAD)
		got, trailing := decodePoints(raw, version)
		if len(got) != 3 {
			t.Errorf("v%d: %d points, want 3", version, len(got))
		}
		if trailing != 2 {
			t.Errorf("v%d: trailing = %d, want 2", version, trailing)
		}
	}
}

func TestDecodePointsUnknownVersion(t *testing.T) {
	raw := bytes.Repeat([]byte{0}, 48)
	got, trailing := decodePoints(raw, 3)
	if len(got) != 0 || trailing != len(raw) {
		t.Fatalf("decode = %d points, %d trailing; want 0, %d", len(got), trailing, len(raw))
	}
}

func TestStrokeBoundingBox(t *testing.T) {
	s := &Stroke{Points: []Point{{X: -5, Y: 10}, {X: 3, Y: -2}, {X: 0, Y: 7}}}
	xMin, xMax, yMin, yMax, ok := s.BoundingBox()
	if !ok {
		t.Fatal("no bounding box")
	}
	if xMin != -5 || xMax != 3 || yMin != -2 || yMax != 10 {
		t.Fatalf("box = %v %v %v %v", xMin, xMax, yMin, yMax)
	}
	if _, _, _, _, ok := (&Stroke{}).BoundingBox(); ok {
		t.Fatal("empty stroke has a bounding box")
	}
}
