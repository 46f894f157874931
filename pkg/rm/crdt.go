package rm

import (
	"fmt"
	"strconv"
	"strings"
)

// CrdtID identifies an object in the document's append-log. IDs are assigned
// at creation time and remain stable across edits, so later blocks can
// reference earlier objects. Part1 is the author slot, Part2 a per-author
// counter.
type CrdtID struct {
	Part1 uint8
	Part2 uint64
}

// Zero reports whether the ID is the zero value, used by the grammar to mean
// "no reference" (for example a missing left/right anchor).
func (id CrdtID) Zero() bool {
	return id.Part1 == 0 && id.Part2 == 0
}

// String renders the ID in the conventional part1:part2 form.
func (id CrdtID) String() string {
	return fmt.Sprintf("%d:%d", id.Part1, id.Part2)
}

// ParseCrdtID parses the part1:part2 form produced by [CrdtID.String].
func ParseCrdtID(s string) (CrdtID, error) {
	p1, p2, ok := strings.Cut(s, ":")
	if !ok {
		return CrdtID{}, fmt.Errorf("malformed id %q", s)
	}
	part1, err := strconv.ParseUint(p1, 10, 8)
	if err != nil {
		return CrdtID{}, fmt.Errorf("malformed id %q: %v", s, err)
	}
	part2, err := strconv.ParseUint(p2, 10, 64)
	if err != nil {
		return CrdtID{}, fmt.Errorf("malformed id %q: %v", s, err)
	}
	return CrdtID{Part1: uint8(part1), Part2: part2}, nil
}

// Compare orders IDs by author slot, then counter. The ordering matches the
// device's tie-break for concurrent edits.
func (id CrdtID) Compare(other CrdtID) int {
	if id.Part1 != other.Part1 {
		if id.Part1 < other.Part1 {
			return -1
		}
		return 1
	}
	switch {
	case id.Part2 < other.Part2:
		return -1
	case id.Part2 > other.Part2:
		return 1
	}
	return 0
}

// appendVaruint encodes v as a little-endian base-128 varint.
func appendVaruint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// readVaruint decodes a varint from b starting at pos, returning the value
// and the new position. ok is false if b ends mid-varint.
func readVaruint(b []byte, pos int) (v uint64, next int, ok bool) {
	var shift uint
	for pos < len(b) {
		c := b[pos]
		pos++
		v |= uint64(c&0x7F) << shift
		if c < 0x80 {
			return v, pos, true
		}
		shift += 7
		if shift > 63 {
			return 0, pos, false
		}
	}
	return 0, pos, false
}
