package rm

import (
	"bytes"
	"testing"
)

func TestVaruint(t *testing.T) {
	tests := []struct {
		v    uint64
		wire []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{0x7F, []byte{0x7F}},
		{0x80, []byte{0x80, 0x01}},
		{0x1234, []byte{0xB4, 0x24}},
		{1<<64 - 1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}},
	}
	for _, tt := range tests {
		got := appendVaruint(nil, tt.v)
		if !bytes.Equal(got, tt.wire) {
			t.Errorf("appendVaruint(%d) = %x, want %x", tt.v, got, tt.wire)
		}
		v, next, ok := readVaruint(tt.wire, 0)
		if !ok || v != tt.v || next != len(tt.wire) {
			t.Errorf("readVaruint(%x) = %d, %d, %v; want %d, %d, true",
				tt.wire, v, next, ok, tt.v, len(tt.wire))
		}
	}

	if _, _, ok := readVaruint([]byte{0x80, 0x80}, 0); ok {
		t.Error("readVaruint accepted a varint with no terminator")
	}
}

func TestTaggedFields(t *testing.T) {
	w := NewTaggedWriter()
	w.WriteID(1, CrdtID{Part1: 0, Part2: 42})
	w.WriteBool(2, true)
	w.WriteUint8(3, 0xAB)
	w.WriteUint16(4, 0x1234)
	w.WriteUint32(5, 0xDEADBEEF)
	w.WriteFloat32(6, 1.5)
	w.WriteFloat64(7, -2.25)
	w.WriteString(8, "hello")

	r := NewTaggedReader(w.Bytes())
	if id, err := r.ReadID(1); err != nil || id != (CrdtID{Part2: 42}) {
		t.Fatalf("ReadID = %v, %v", id, err)
	}
	if v, err := r.ReadBool(2); err != nil || !v {
		t.Fatalf("ReadBool = %v, %v", v, err)
	}
	if v, err := r.ReadUint8(3); err != nil || v != 0xAB {
		t.Fatalf("ReadUint8 = %#x, %v", v, err)
	}
	if v, err := r.ReadUint16(4); err != nil || v != 0x1234 {
		t.Fatalf("ReadUint16 = %#x, %v", v, err)
	}
	if v, err := r.ReadUint32(5); err != nil || v != 0xDEADBEEF {
		t.Fatalf("ReadUint32 = %#x, %v", v, err)
	}
	if v, err := r.ReadFloat32(6); err != nil || v != 1.5 {
		t.Fatalf("ReadFloat32 = %v, %v", v, err)
	}
	if v, err := r.ReadFloat64(7); err != nil || v != -2.25 {
		t.Fatalf("ReadFloat64 = %v, %v", v, err)
	}
	if v, err := r.ReadString(8); err != nil || v != "hello" {
		t.Fatalf("ReadString = %q, %v", v, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("%d bytes left over", r.Remaining())
	}
}

func TestTaggedStringNonASCII(t *testing.T) {
	w := NewTaggedWriter()
	w.WriteString(2, "héllo")
	r := NewTaggedReader(w.Bytes())
	v, err := r.ReadString(2)
	if err != nil || v != "héllo" {
		t.Fatalf("ReadString = %q, %v", v, err)
	}
}

// A string whose declared byte length runs past the payload must error, not
// panic, including lengths big enough to wrap the int conversion.
func TestTaggedStringOversizedLength(t *testing.T) {
	for _, declared := range []uint64{6, 1 << 32, 1 << 63, 1<<64 - 1} {
		w := NewTaggedWriter()
		w.SubBlock(8, func(sub *TaggedWriter) {
			sub.WriteVaruint(declared)
			sub.WriteBytes([]byte{1, 'h', 'i'})
		})
		if v, err := NewTaggedReader(w.Bytes()).ReadString(8); err == nil {
			t.Errorf("declared length %d read %q without error", declared, v)
		}
	}
}

func TestTaggedSubBlock(t *testing.T) {
	w := NewTaggedWriter()
	w.SubBlock(3, func(sub *TaggedWriter) {
		sub.WriteUint8(1, 7)
		sub.WriteUint32(2, 100)
	})
	w.WriteUint8(4, 9) // field after the sub-block

	r := NewTaggedReader(w.Bytes())
	sub, err := r.SubBlock(3)
	if err != nil {
		t.Fatalf("SubBlock: %v", err)
	}
	if v, err := sub.ReadUint8(1); err != nil || v != 7 {
		t.Fatalf("inner ReadUint8 = %d, %v", v, err)
	}
	if v, err := sub.ReadUint32(2); err != nil || v != 100 {
		t.Fatalf("inner ReadUint32 = %d, %v", v, err)
	}
	// parent must have skipped the whole region
	if v, err := r.ReadUint8(4); err != nil || v != 9 {
		t.Fatalf("outer ReadUint8 = %d, %v", v, err)
	}
}

func TestTaggedOptionalFields(t *testing.T) {
	w := NewTaggedWriter()
	w.WriteUint8(1, 5)
	w.WriteUint32(3, 10) // index 2 absent

	r := NewTaggedReader(w.Bytes())
	if !r.HasTag(1, TagByte1) {
		t.Fatal("HasTag(1) = false")
	}
	if _, err := r.ReadUint8(1); err != nil {
		t.Fatal(err)
	}
	if r.HasTag(2, TagByte4) {
		t.Fatal("HasTag(2) = true for an absent field")
	}
	if !r.HasTag(3, TagByte4) {
		t.Fatal("HasTag(3) = false")
	}
}

func TestTaggedWrongTag(t *testing.T) {
	w := NewTaggedWriter()
	w.WriteUint8(1, 5)

	r := NewTaggedReader(w.Bytes())
	if _, err := r.ReadUint32(1); err == nil {
		t.Fatal("expected type mismatch error")
	}
	if _, err := NewTaggedReader(w.Bytes()).ReadUint8(2); err == nil {
		t.Fatal("expected index mismatch error")
	}
	if pos := r.Pos(); pos != 0 {
		t.Fatalf("failed read advanced position to %d", pos)
	}
}

func TestTaggedTruncatedValue(t *testing.T) {
	w := NewTaggedWriter()
	w.WriteUint32(1, 0xCAFE)
	wire := w.Bytes()

	if _, err := NewTaggedReader(wire[:len(wire)-2]).ReadUint32(1); err == nil {
		t.Fatal("expected error for truncated value")
	}
	if _, err := NewTaggedReader(wire[:0]).ReadUint32(1); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestLWWRoundTrip(t *testing.T) {
	ts := CrdtID{Part1: 1, Part2: 99}

	w := NewTaggedWriter()
	w.WriteLWWBool(1, LWW[bool]{Timestamp: ts, Value: true})
	w.WriteLWWUint8(2, LWW[uint8]{Timestamp: ts, Value: 3})
	w.WriteLWWFloat32(3, LWW[float32]{Timestamp: ts, Value: 0.25})
	w.WriteLWWID(4, LWW[CrdtID]{Timestamp: ts, Value: CrdtID{Part2: 7}})
	w.WriteLWWString(5, LWW[string]{Timestamp: ts, Value: "pen"})

	r := NewTaggedReader(w.Bytes())
	if v, err := r.ReadLWWBool(1); err != nil || v.Timestamp != ts || !v.Value {
		t.Fatalf("ReadLWWBool = %+v, %v", v, err)
	}
	if v, err := r.ReadLWWUint8(2); err != nil || v.Value != 3 {
		t.Fatalf("ReadLWWUint8 = %+v, %v", v, err)
	}
	if v, err := r.ReadLWWFloat32(3); err != nil || v.Value != 0.25 {
		t.Fatalf("ReadLWWFloat32 = %+v, %v", v, err)
	}
	if v, err := r.ReadLWWID(4); err != nil || v.Value != (CrdtID{Part2: 7}) {
		t.Fatalf("ReadLWWID = %+v, %v", v, err)
	}
	if v, err := r.ReadLWWString(5); err != nil || v.Value != "pen" || v.Timestamp != ts {
		t.Fatalf("ReadLWWString = %+v, %v", v, err)
	}
}

func TestCrdtIDParse(t *testing.T) {
	id := CrdtID{Part1: 1, Part2: 283}
	parsed, err := ParseCrdtID(id.String())
	if err != nil || parsed != id {
		t.Fatalf("ParseCrdtID(%q) = %v, %v", id.String(), parsed, err)
	}
	for _, bad := range []string{"", "1", "1:", "x:2", "1:y", "300:1"} {
		if _, err := ParseCrdtID(bad); err == nil {
			t.Errorf("ParseCrdtID(%q) accepted malformed input", bad)
		}
	}
}

func TestCrdtIDCompare(t *testing.T) {
	a := CrdtID{Part1: 0, Part2: 5}
	b := CrdtID{Part1: 0, Part2: 9}
	c := CrdtID{Part1: 1, Part2: 1}
	if a.Compare(b) >= 0 || b.Compare(a) <= 0 {
		t.Error("counter ordering broken")
	}
	if b.Compare(c) >= 0 {
		t.Error("author slot must order before counter")
	}
	if c.Compare(c) != 0 {
		t.Error("self-compare not zero")
	}
}
