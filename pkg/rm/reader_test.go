package rm

import (
	"bytes"
	"testing"

	"github.com/inkpath/inkpath/pkg/errors"
)

func buildFile(t *testing.T, blocks []Block) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteBlocks(&buf, blocks); err != nil {
		t.Fatalf("WriteBlocks: %v", err)
	}
	return buf.Bytes()
}

func TestHeader(t *testing.T) {
	h := Header()
	if len(h) != HeaderLen {
		t.Fatalf("header length = %d, want %d", len(h), HeaderLen)
	}
	if want := "reMarkable .lines file, version=6"; string(h[:len(want)]) != want {
		t.Fatalf("header prefix = %q", h[:len(want)])
	}
	for _, c := range h[len("reMarkable .lines file, version=6"):] {
		if c != ' ' {
			t.Fatalf("header padding contains %q", c)
		}
	}
}

func TestReadBlocks(t *testing.T) {
	in := []Block{
		{Type: BlockMigrationInfo, MinVersion: 1, CurrentVersion: 1, Payload: []byte{0x1F, 0x01, 0x01}},
		{Type: BlockSceneLineItem, MinVersion: 1, CurrentVersion: 2, Payload: []byte{0xAA, 0xBB}},
		{Type: BlockType(0x42), CurrentVersion: 9, Unknown: 7, Payload: []byte("future")},
		{Type: BlockSceneTombstone}, // empty payload
	}
	data := buildFile(t, in)

	out, err := ReadBlocks(data)
	if err != nil {
		t.Fatalf("ReadBlocks: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d blocks, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i].Type != in[i].Type {
			t.Errorf("block %d type = %v, want %v", i, out[i].Type, in[i].Type)
		}
		if out[i].MinVersion != in[i].MinVersion || out[i].CurrentVersion != in[i].CurrentVersion {
			t.Errorf("block %d versions = %d/%d, want %d/%d", i,
				out[i].MinVersion, out[i].CurrentVersion, in[i].MinVersion, in[i].CurrentVersion)
		}
		if out[i].Unknown != in[i].Unknown {
			t.Errorf("block %d unknown byte = %d, want %d", i, out[i].Unknown, in[i].Unknown)
		}
		if !bytes.Equal(out[i].Payload, in[i].Payload) {
			t.Errorf("block %d payload = %x, want %x", i, out[i].Payload, in[i].Payload)
		}
	}
	if out[0].Offset != HeaderLen {
		t.Errorf("first block offset = %d, want %d", out[0].Offset, HeaderLen)
	}
}

// Re-encoding a parsed file must reproduce it byte for byte, including
// blocks of types this package has never heard of.
func TestRoundTrip(t *testing.T) {
	data := buildFile(t, []Block{
		{Type: BlockSceneTree, MinVersion: 1, CurrentVersion: 1, Payload: []byte{1, 2, 3, 4}},
		{Type: BlockType(0xEE), MinVersion: 3, CurrentVersion: 5, Unknown: 1, Payload: []byte{0xDE, 0xAD}},
		{Type: BlockPageInfo, Payload: nil},
	})

	blocks, err := ReadBlocks(data)
	if err != nil {
		t.Fatalf("ReadBlocks: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteBlocks(&buf, blocks); err != nil {
		t.Fatalf("WriteBlocks: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Fatalf("round trip changed bytes:\n got %x\nwant %x", buf.Bytes(), data)
	}
}

func TestReadBlocksHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		code errors.Code
	}{
		{"empty", nil, errors.ErrCodeTruncated},
		{"partial magic", []byte("reMarkable .lin"), errors.ErrCodeTruncated},
		{"wrong magic", []byte("PNG\r\n not a lines file at all, padding."), errors.ErrCodeBadMagic},
		{"version 5", []byte("reMarkable .lines file, version=5          "), errors.ErrCodeUnsupportedVersion},
		{"version 7", []byte("reMarkable .lines file, version=7          "), errors.ErrCodeUnsupportedVersion},
		{"garbage version", []byte("reMarkable .lines file, version=x          "), errors.ErrCodeBadMagic},
		{"magic only", Header()[:HeaderLen-4], errors.ErrCodeTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBlocks(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Fatalf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestReadBlocksEmptyOffsetZero(t *testing.T) {
	_, err := ReadBlocks(nil)
	off, ok := errors.IsTruncated(err)
	if !ok {
		t.Fatalf("expected truncation, got %v", err)
	}
	if off != 0 {
		t.Fatalf("offset = %d, want 0", off)
	}
}

func TestReadBlocksTruncatedBlock(t *testing.T) {
	full := buildFile(t, []Block{
		{Type: BlockSceneTree, Payload: []byte{1, 2, 3, 4}},
		{Type: BlockTreeNode, Payload: []byte{5, 6, 7, 8}},
	})
	secondBlockAt := int64(HeaderLen + blockHeaderLen + 4)

	tests := []struct {
		name string
		cut  int
		off  int64
	}{
		{"mid second header", len(full) - 4 - 5, secondBlockAt},
		{"mid second payload", len(full) - 2, secondBlockAt},
		{"header only", HeaderLen, -1}, // no blocks at all is fine
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := ReadBlocks(full[:tt.cut])
			if tt.off < 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(blocks) != 0 {
					t.Fatalf("got %d blocks, want 0", len(blocks))
				}
				return
			}
			off, ok := errors.IsTruncated(err)
			if !ok {
				t.Fatalf("expected truncation, got %v", err)
			}
			if off != tt.off {
				t.Fatalf("offset = %d, want %d", off, tt.off)
			}
		})
	}
}

// Payloads are copied out of the input, so mutating the source buffer after
// parsing must not corrupt parsed blocks.
func TestReadBlocksCopiesPayloads(t *testing.T) {
	data := buildFile(t, []Block{{Type: BlockSceneTree, Payload: []byte{1, 2, 3}}})
	blocks, err := ReadBlocks(data)
	if err != nil {
		t.Fatalf("ReadBlocks: %v", err)
	}
	for i := range data {
		data[i] = 0xFF
	}
	if !bytes.Equal(blocks[0].Payload, []byte{1, 2, 3}) {
		t.Fatalf("payload aliases input buffer: %x", blocks[0].Payload)
	}
}
