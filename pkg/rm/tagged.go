package rm

import (
	"encoding/binary"
	"fmt"
	"math"
)

// TagType encodes the wire size of a tagged value. The low nibble of a tag
// byte selects the type; the remaining bits are the field index.
type TagType uint8

// Tag value types.
const (
	TagByte1   TagType = 0x1
	TagByte2   TagType = 0x2
	TagByte4   TagType = 0x4
	TagByte8   TagType = 0x8
	TagLength4 TagType = 0xC
	TagID      TagType = 0xF
)

// String returns the tag type name.
func (t TagType) String() string {
	switch t {
	case TagByte1:
		return "byte1"
	case TagByte2:
		return "byte2"
	case TagByte4:
		return "byte4"
	case TagByte8:
		return "byte8"
	case TagLength4:
		return "length4"
	case TagID:
		return "id"
	default:
		return fmt.Sprintf("tag(0x%X)", uint8(t))
	}
}

// TaggedReader decodes the tagged sub-field grammar used inside block
// payloads: each field is a varint tag of (index<<4)|type followed by a value
// whose size the type determines. Fields are index-ordered; optional fields
// are detected by tag lookahead.
//
// The reader is forward-only over an in-memory payload. All errors include
// the payload-relative position for diagnostics.
type TaggedReader struct {
	buf []byte
	pos int
}

// NewTaggedReader creates a reader over a block payload.
func NewTaggedReader(payload []byte) *TaggedReader {
	return &TaggedReader{buf: payload}
}

// Pos returns the current payload-relative position.
func (r *TaggedReader) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *TaggedReader) Remaining() int { return len(r.buf) - r.pos }

// peekTag decodes the tag at the current position without consuming it.
func (r *TaggedReader) peekTag() (index uint64, typ TagType, size int, ok bool) {
	v, next, ok := readVaruint(r.buf, r.pos)
	if !ok {
		return 0, 0, 0, false
	}
	return v >> 4, TagType(v & 0xF), next - r.pos, true
}

// HasTag reports whether the next field has the given index and type.
// It does not consume input, so callers can branch on optional fields.
func (r *TaggedReader) HasTag(index uint64, typ TagType) bool {
	i, t, _, ok := r.peekTag()
	return ok && i == index && t == typ
}

// expectTag consumes the next tag and verifies index and type.
func (r *TaggedReader) expectTag(index uint64, typ TagType) error {
	i, t, size, ok := r.peekTag()
	if !ok {
		return fmt.Errorf("tag at %d: unexpected end of payload", r.pos)
	}
	if i != index || t != typ {
		return fmt.Errorf("tag at %d: have index=%d type=%s, want index=%d type=%s",
			r.pos, i, t, index, typ)
	}
	r.pos += size
	return nil
}

func (r *TaggedReader) bytes(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("value at %d: need %d bytes, have %d", r.pos, n, r.Remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadID reads a CRDT ID field: tag, author byte, varint counter.
func (r *TaggedReader) ReadID(index uint64) (CrdtID, error) {
	if err := r.expectTag(index, TagID); err != nil {
		return CrdtID{}, err
	}
	b, err := r.bytes(1)
	if err != nil {
		return CrdtID{}, err
	}
	part2, next, ok := readVaruint(r.buf, r.pos)
	if !ok {
		return CrdtID{}, fmt.Errorf("id at %d: unexpected end of payload", r.pos)
	}
	r.pos = next
	return CrdtID{Part1: b[0], Part2: part2}, nil
}

// ReadBool reads a single-byte boolean field.
func (r *TaggedReader) ReadBool(index uint64) (bool, error) {
	v, err := r.ReadUint8(index)
	return v != 0, err
}

// ReadUint8 reads a single-byte field.
func (r *TaggedReader) ReadUint8(index uint64) (uint8, error) {
	if err := r.expectTag(index, TagByte1); err != nil {
		return 0, err
	}
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a two-byte little-endian field.
func (r *TaggedReader) ReadUint16(index uint64) (uint16, error) {
	if err := r.expectTag(index, TagByte2); err != nil {
		return 0, err
	}
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUint32 reads a four-byte little-endian field.
func (r *TaggedReader) ReadUint32(index uint64) (uint32, error) {
	if err := r.expectTag(index, TagByte4); err != nil {
		return 0, err
	}
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadFloat32 reads a four-byte IEEE 754 field.
func (r *TaggedReader) ReadFloat32(index uint64) (float32, error) {
	v, err := r.ReadUint32(index)
	return math.Float32frombits(v), err
}

// ReadFloat64 reads an eight-byte IEEE 754 field.
func (r *TaggedReader) ReadFloat64(index uint64) (float64, error) {
	if err := r.expectTag(index, TagByte8); err != nil {
		return 0, err
	}
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// SubBlock reads a length-prefixed nested region and returns a reader
// limited to it. The parent reader advances past the whole region.
func (r *TaggedReader) SubBlock(index uint64) (*TaggedReader, error) {
	if err := r.expectTag(index, TagLength4); err != nil {
		return nil, err
	}
	b, err := r.bytes(4)
	if err != nil {
		return nil, err
	}
	n := int(binary.LittleEndian.Uint32(b))
	body, err := r.bytes(n)
	if err != nil {
		return nil, err
	}
	return &TaggedReader{buf: body}, nil
}

// ReadString reads a string field: a sub-block holding a varint byte length,
// an ASCII hint byte, and UTF-8 bytes.
func (r *TaggedReader) ReadString(index uint64) (string, error) {
	sub, err := r.SubBlock(index)
	if err != nil {
		return "", err
	}
	n, next, ok := readVaruint(sub.buf, sub.pos)
	if !ok {
		return "", fmt.Errorf("string at %d: unexpected end of payload", r.pos)
	}
	sub.pos = next
	if _, err := sub.bytes(1); err != nil { // ASCII hint, ignored on read
		return "", err
	}
	// Bounds-check as uint64; int(n) can wrap negative.
	if n > uint64(sub.Remaining()) {
		return "", fmt.Errorf("string at %d: declared length %d exceeds %d remaining bytes",
			r.pos, n, sub.Remaining())
	}
	raw, err := sub.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ReadRaw reads a length-prefixed region as raw bytes, used for point data
// whose record layout is version-dependent.
func (r *TaggedReader) ReadRaw(index uint64) ([]byte, error) {
	sub, err := r.SubBlock(index)
	if err != nil {
		return nil, err
	}
	return sub.buf, nil
}

// ReadBytes reads n raw bytes with no tag, used for fixed-layout regions
// embedded in the tagged grammar.
func (r *TaggedReader) ReadBytes(n int) ([]byte, error) {
	return r.bytes(n)
}

// ReadVaruint reads a bare varint with no tag, used for counts.
func (r *TaggedReader) ReadVaruint() (uint64, error) {
	v, next, ok := readVaruint(r.buf, r.pos)
	if !ok {
		return 0, fmt.Errorf("varint at %d: unexpected end of payload", r.pos)
	}
	r.pos = next
	return v, nil
}

// LWW is a last-write-wins register: a value stamped with the ID of the edit
// that set it. Later stamps override earlier ones during log replay.
type LWW[T any] struct {
	Timestamp CrdtID
	Value     T
}

// readLWW decodes the common envelope of an LWW field: a sub-block holding
// the timestamp at index 1 and the value at index 2.
func readLWW[T any](r *TaggedReader, index uint64, read func(*TaggedReader) (T, error)) (LWW[T], error) {
	var out LWW[T]
	sub, err := r.SubBlock(index)
	if err != nil {
		return out, err
	}
	if out.Timestamp, err = sub.ReadID(1); err != nil {
		return out, err
	}
	if out.Value, err = read(sub); err != nil {
		return out, err
	}
	return out, nil
}

// ReadLWWBool reads a last-write-wins boolean field.
func (r *TaggedReader) ReadLWWBool(index uint64) (LWW[bool], error) {
	return readLWW(r, index, func(s *TaggedReader) (bool, error) { return s.ReadBool(2) })
}

// ReadLWWUint8 reads a last-write-wins byte field.
func (r *TaggedReader) ReadLWWUint8(index uint64) (LWW[uint8], error) {
	return readLWW(r, index, func(s *TaggedReader) (uint8, error) { return s.ReadUint8(2) })
}

// ReadLWWFloat32 reads a last-write-wins float field.
func (r *TaggedReader) ReadLWWFloat32(index uint64) (LWW[float32], error) {
	return readLWW(r, index, func(s *TaggedReader) (float32, error) { return s.ReadFloat32(2) })
}

// ReadLWWID reads a last-write-wins CRDT ID field.
func (r *TaggedReader) ReadLWWID(index uint64) (LWW[CrdtID], error) {
	return readLWW(r, index, func(s *TaggedReader) (CrdtID, error) { return s.ReadID(2) })
}

// ReadLWWString reads a last-write-wins string field.
func (r *TaggedReader) ReadLWWString(index uint64) (LWW[string], error) {
	return readLWW(r, index, func(s *TaggedReader) (string, error) { return s.ReadString(2) })
}

// TaggedWriter is the encoding counterpart of [TaggedReader]. It builds a
// block payload field by field; nested sub-blocks are buffered so their
// four-byte length prefix can be fixed up on close.
type TaggedWriter struct {
	buf []byte
}

// NewTaggedWriter creates an empty payload writer.
func NewTaggedWriter() *TaggedWriter {
	return &TaggedWriter{}
}

// Bytes returns the encoded payload.
func (w *TaggedWriter) Bytes() []byte { return w.buf }

func (w *TaggedWriter) tag(index uint64, typ TagType) {
	w.buf = appendVaruint(w.buf, index<<4|uint64(typ))
}

// WriteID writes a CRDT ID field.
func (w *TaggedWriter) WriteID(index uint64, id CrdtID) {
	w.tag(index, TagID)
	w.buf = append(w.buf, id.Part1)
	w.buf = appendVaruint(w.buf, id.Part2)
}

// WriteBool writes a single-byte boolean field.
func (w *TaggedWriter) WriteBool(index uint64, v bool) {
	var b uint8
	if v {
		b = 1
	}
	w.WriteUint8(index, b)
}

// WriteUint8 writes a single-byte field.
func (w *TaggedWriter) WriteUint8(index uint64, v uint8) {
	w.tag(index, TagByte1)
	w.buf = append(w.buf, v)
}

// WriteUint16 writes a two-byte little-endian field.
func (w *TaggedWriter) WriteUint16(index uint64, v uint16) {
	w.tag(index, TagByte2)
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteUint32 writes a four-byte little-endian field.
func (w *TaggedWriter) WriteUint32(index uint64, v uint32) {
	w.tag(index, TagByte4)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteFloat32 writes a four-byte IEEE 754 field.
func (w *TaggedWriter) WriteFloat32(index uint64, v float32) {
	w.WriteUint32(index, math.Float32bits(v))
}

// WriteFloat64 writes an eight-byte IEEE 754 field.
func (w *TaggedWriter) WriteFloat64(index uint64, v float64) {
	w.tag(index, TagByte8)
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// SubBlock writes a length-prefixed nested region populated by fill.
func (w *TaggedWriter) SubBlock(index uint64, fill func(*TaggedWriter)) {
	w.tag(index, TagLength4)
	lenAt := len(w.buf)
	w.buf = append(w.buf, 0, 0, 0, 0)
	fill(w)
	binary.LittleEndian.PutUint32(w.buf[lenAt:], uint32(len(w.buf)-lenAt-4))
}

// WriteString writes a string field in the sub-block string encoding.
func (w *TaggedWriter) WriteString(index uint64, s string) {
	w.SubBlock(index, func(sub *TaggedWriter) {
		sub.buf = appendVaruint(sub.buf, uint64(len(s)))
		ascii := byte(1)
		for i := 0; i < len(s); i++ {
			if s[i] >= 0x80 {
				ascii = 0
				break
			}
		}
		sub.buf = append(sub.buf, ascii)
		sub.buf = append(sub.buf, s...)
	})
}

// WriteRaw writes a length-prefixed region of raw bytes.
func (w *TaggedWriter) WriteRaw(index uint64, raw []byte) {
	w.SubBlock(index, func(sub *TaggedWriter) {
		sub.buf = append(sub.buf, raw...)
	})
}

// WriteBytes writes raw bytes with no tag.
func (w *TaggedWriter) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteVaruint writes a bare varint with no tag.
func (w *TaggedWriter) WriteVaruint(v uint64) {
	w.buf = appendVaruint(w.buf, v)
}

// WriteLWWBool writes a last-write-wins boolean field.
func (w *TaggedWriter) WriteLWWBool(index uint64, v LWW[bool]) {
	w.SubBlock(index, func(sub *TaggedWriter) {
		sub.WriteID(1, v.Timestamp)
		sub.WriteBool(2, v.Value)
	})
}

// WriteLWWUint8 writes a last-write-wins byte field.
func (w *TaggedWriter) WriteLWWUint8(index uint64, v LWW[uint8]) {
	w.SubBlock(index, func(sub *TaggedWriter) {
		sub.WriteID(1, v.Timestamp)
		sub.WriteUint8(2, v.Value)
	})
}

// WriteLWWFloat32 writes a last-write-wins float field.
func (w *TaggedWriter) WriteLWWFloat32(index uint64, v LWW[float32]) {
	w.SubBlock(index, func(sub *TaggedWriter) {
		sub.WriteID(1, v.Timestamp)
		sub.WriteFloat32(2, v.Value)
	})
}

// WriteLWWID writes a last-write-wins CRDT ID field.
func (w *TaggedWriter) WriteLWWID(index uint64, v LWW[CrdtID]) {
	w.SubBlock(index, func(sub *TaggedWriter) {
		sub.WriteID(1, v.Timestamp)
		sub.WriteID(2, v.Value)
	})
}

// WriteLWWString writes a last-write-wins string field.
func (w *TaggedWriter) WriteLWWString(index uint64, v LWW[string]) {
	w.SubBlock(index, func(sub *TaggedWriter) {
		sub.WriteID(1, v.Timestamp)
		sub.WriteString(2, v.Value)
	})
}
