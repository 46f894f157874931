package scene

import (
	"encoding/binary"
	"math"
)

// Point record sizes per block schema version. Version 1 stores six float32
// fields; version 2 packs speed, width, direction and pressure into scaled
// integers.
const (
	pointSizeV1 = 24
	pointSizeV2 = 14
)

// pointSize returns the record size for a declared block version, or 0 for a
// version this package cannot decode. The declared version is authoritative;
// payload size is only used afterwards as a corruption check.
func pointSize(version uint8) int {
	switch version {
	case 1:
		return pointSizeV1
	case 2:
		return pointSizeV2
	default:
		return 0
	}
}

// decodePoints decodes raw point data in the layout the block version
// declares. It decodes every complete record; trailing reports how many bytes
// were left over, which the caller logs as stroke corruption without failing
// the document. The first k records of a truncated payload decode exactly as
// they would from the full payload.
func decodePoints(raw []byte, version uint8) (points []Point, trailing int) {
	size := pointSize(version)
	if size == 0 {
		return nil, len(raw)
	}
	n := len(raw) / size
	points = make([]Point, 0, n)
	for i := 0; i < n; i++ {
		rec := raw[i*size : (i+1)*size]
		if version == 1 {
			points = append(points, Point{
				X:         f32(rec[0:]),
				Y:         f32(rec[4:]),
				Speed:     f32(rec[8:]),
				Direction: f32(rec[12:]),
				Width:     f32(rec[16:]),
				Pressure:  f32(rec[20:]),
			})
			continue
		}
		points = append(points, Point{
			X:         f32(rec[0:]),
			Y:         f32(rec[4:]),
			Speed:     float32(binary.LittleEndian.Uint16(rec[8:])) / 4,
			Width:     float32(binary.LittleEndian.Uint16(rec[10:])) / 4,
			Direction: float32(rec[12]) * (2 * math.Pi / 255),
			Pressure:  float32(rec[13]) / 255,
		})
	}
	return points, len(raw) - n*size
}

// encodePoints is the inverse of decodePoints for the given version. Version
// 2 quantizes the packed fields, so decode(encode(p)) is lossy there; version
// 1 round-trips exactly.
func encodePoints(points []Point, version uint8) []byte {
	size := pointSize(version)
	if size == 0 {
		return nil
	}
	out := make([]byte, 0, len(points)*size)
	for _, p := range points {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(p.X))
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(p.Y))
		if version == 1 {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(p.Speed))
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(p.Direction))
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(p.Width))
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(p.Pressure))
			continue
		}
		out = binary.LittleEndian.AppendUint16(out, uint16(p.Speed*4))
		out = binary.LittleEndian.AppendUint16(out, uint16(p.Width*4))
		out = append(out,
			byte(p.Direction*(255/(2*math.Pi))),
			byte(p.Pressure*255))
	}
	return out
}

func f32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
