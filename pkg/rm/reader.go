package rm

import (
	"encoding/binary"
	"strings"

	"github.com/inkpath/inkpath/pkg/errors"
)

// Header layout: a fixed-width ASCII banner naming the format family and
// schema version, padded with spaces to HeaderLen bytes.
const (
	headerPrefix = "reMarkable .lines file, version="
	// HeaderLen is the total byte length of the magic header.
	HeaderLen = 43
	// FormatVersion is the only schema version this package reads and writes.
	FormatVersion = 6

	blockHeaderLen = 8 // length u32, unknown u8, minVersion u8, currentVersion u8, type u8
)

// Header returns the magic header bytes for the supported format version.
func Header() []byte {
	h := headerPrefix + "6"
	return []byte(h + strings.Repeat(" ", HeaderLen-len(h)))
}

// Block is one tagged, length-prefixed unit of a v6 file. The payload is
// carried uninterpreted so that blocks of unrecognized type round-trip
// byte-exact; semantic decoding happens in the scene package.
type Block struct {
	Type BlockType

	// MinVersion and CurrentVersion bracket the payload schema: a reader
	// must understand at least MinVersion to interpret the payload, and
	// CurrentVersion selects versioned record layouts (point encodings).
	MinVersion     uint8
	CurrentVersion uint8

	// Unknown is the undocumented header byte, preserved for round-trips.
	Unknown uint8

	// Payload is the raw block body, Length() bytes.
	Payload []byte

	// Offset is the byte offset of the block header in the source stream,
	// kept for diagnostics. It is not written back.
	Offset int64
}

// Length returns the payload size in bytes.
func (b Block) Length() int { return len(b.Payload) }

// ReadBlocks decodes a whole v6 byte stream into its flat block list.
//
// The decode is pure and forward-only: payloads are sliced out but never
// interpreted, cross-block references are not validated, and blocks with
// unrecognized type tags are returned as opaque [Block] values.
//
// Errors:
//   - BAD_MAGIC if the magic header does not match the format family
//   - UNSUPPORTED_VERSION if the header names a schema version other than 6
//   - TRUNCATED (with byte offset) if the input ends mid-header or mid-block
func ReadBlocks(data []byte) ([]Block, error) {
	if err := checkHeader(data); err != nil {
		return nil, err
	}

	var blocks []Block
	off := int64(HeaderLen)
	for off < int64(len(data)) {
		if int64(len(data))-off < blockHeaderLen {
			return nil, errors.Truncated(off)
		}
		h := data[off : off+blockHeaderLen]
		length := int64(binary.LittleEndian.Uint32(h[0:4]))
		body := off + blockHeaderLen
		if body+length > int64(len(data)) {
			return nil, errors.Truncated(off)
		}

		payload := make([]byte, length)
		copy(payload, data[body:body+length])
		blocks = append(blocks, Block{
			Type:           BlockType(h[7]),
			MinVersion:     h[5],
			CurrentVersion: h[6],
			Unknown:        h[4],
			Payload:        payload,
			Offset:         off,
		})
		off = body + length
	}
	return blocks, nil
}

// checkHeader validates the magic banner. Empty input is a truncation at
// offset 0 rather than a magic mismatch: there is nothing to mismatch yet.
func checkHeader(data []byte) error {
	if len(data) == 0 {
		return errors.Truncated(0)
	}
	prefix := []byte(headerPrefix)
	if len(data) < len(prefix) {
		if string(data) == string(prefix[:len(data)]) {
			return errors.Truncated(int64(len(data)))
		}
		return errors.New(errors.ErrCodeBadMagic, "not a reMarkable .lines file")
	}
	if string(data[:len(prefix)]) != headerPrefix {
		return errors.New(errors.ErrCodeBadMagic, "not a reMarkable .lines file")
	}
	if len(data) < HeaderLen {
		return errors.Truncated(int64(len(data)))
	}
	version := data[len(prefix)]
	if version < '0' || version > '9' {
		return errors.New(errors.ErrCodeBadMagic, "malformed version in file header")
	}
	if version != '0'+FormatVersion {
		return errors.New(errors.ErrCodeUnsupportedVersion,
			"file version %c not supported (only version %d)", version, FormatVersion)
	}
	return nil
}
