package rm

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/inkpath/inkpath/pkg/errors"
)

// WriteBlocks encodes a block list back into the v6 framing: the magic
// header followed by each block's header and payload.
//
// Blocks are written one at a time, so a PAYLOAD_TOO_LARGE failure on a late
// block leaves every prior block fully written and valid. Opaque blocks
// carried through from [ReadBlocks] are re-emitted unchanged, which gives the
// byte-exact round-trip guarantee:
//
//	WriteBlocks(w, ReadBlocks(data)) reproduces data
func WriteBlocks(w io.Writer, blocks []Block) error {
	if _, err := w.Write(Header()); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write header")
	}
	for i, b := range blocks {
		if err := writeBlock(w, b); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "block %d (%s)", i, b.Type)
		}
	}
	return nil
}

func writeBlock(w io.Writer, b Block) error {
	if uint64(len(b.Payload)) > math.MaxUint32 {
		return errors.New(errors.ErrCodePayloadTooLarge,
			"payload of %d bytes exceeds the 32-bit length field", len(b.Payload))
	}

	var h [blockHeaderLen]byte
	binary.LittleEndian.PutUint32(h[0:4], uint32(len(b.Payload)))
	h[4] = b.Unknown
	h[5] = b.MinVersion
	h[6] = b.CurrentVersion
	h[7] = uint8(b.Type)

	if _, err := w.Write(h[:]); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write block header")
	}
	if _, err := w.Write(b.Payload); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write block payload")
	}
	return nil
}
