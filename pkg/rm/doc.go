// Package rm implements the low-level reMarkable v6 .lines binary grammar.
//
// A v6 file is an append-log of tagged, length-prefixed blocks following a
// fixed ASCII magic header. This package handles the framing (block stream
// reader and writer) and the tagged sub-field codec used inside block
// payloads, plus the fixed grammar tables: block type tags, scene item types,
// pen tools, colors, paragraph styles, and the per-pen width response curves
// mirrored from the device renderer.
//
// # Architecture
//
// The reader is a pure decode: it splits bytes into [Block] values without
// interpreting payloads, so blocks with unrecognized type tags survive a
// read/write round-trip byte-exact. Semantic interpretation of payloads
// happens one layer up, in the scene package, through [TaggedReader].
//
// The framing guarantee is:
//
//	WriteBlocks(ReadBlocks(data)) == data
//
// for every well-formed input, including inputs containing block types this
// package has never seen.
//
// # Usage
//
//	blocks, err := rm.ReadBlocks(data)
//	if err != nil {
//	    // BAD_MAGIC, TRUNCATED, or UNSUPPORTED_VERSION
//	}
//	var buf bytes.Buffer
//	if err := rm.WriteBlocks(&buf, blocks); err != nil {
//	    // PAYLOAD_TOO_LARGE
//	}
package rm
