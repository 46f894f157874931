package render

import (
	"encoding/hex"
	"encoding/json"

	"github.com/inkpath/inkpath/pkg/rm"
)

// Raw block dump: the framing layer's view of the file, one record per
// block, payloads hex-encoded. Useful for diffing two files or debugging a
// decode without any scene interpretation in the way.

type jsonBlock struct {
	Index          int    `json:"index"`
	Offset         int64  `json:"offset"`
	Type           string `json:"type"`
	TypeTag        uint8  `json:"typeTag"`
	MinVersion     uint8  `json:"minVersion"`
	CurrentVersion uint8  `json:"currentVersion"`
	Length         int    `json:"length"`
	Payload        string `json:"payload"`
}

// RenderBlocks renders the raw block dump as JSON.
func RenderBlocks(blocks []rm.Block) ([]byte, error) {
	out := make([]jsonBlock, len(blocks))
	for i, b := range blocks {
		out[i] = jsonBlock{
			Index:          i,
			Offset:         b.Offset,
			Type:           b.Type.String(),
			TypeTag:        uint8(b.Type),
			MinVersion:     b.MinVersion,
			CurrentVersion: b.CurrentVersion,
			Length:         b.Length(),
			Payload:        hex.EncodeToString(b.Payload),
		}
	}
	return json.MarshalIndent(out, "", "  ")
}
