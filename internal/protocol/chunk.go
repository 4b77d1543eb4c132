package protocol

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// EncodingZstdB64 is the only CHUNK payload encoding: little-endian uint16
// blocks, zstd compressed, then standard base64.
const EncodingZstdB64 = "zstd+b64"

var (
	chunkEnc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	chunkDec, _ = zstd.NewReader(nil)
)

func EncodeBlocks(blocks []uint16) string {
	raw := make([]byte, 2*len(blocks))
	for i, b := range blocks {
		binary.LittleEndian.PutUint16(raw[2*i:], b)
	}
	return base64.StdEncoding.EncodeToString(chunkEnc.EncodeAll(raw, nil))
}

// DecodeBlocks reverses EncodeBlocks. want is the expected block count.
func DecodeBlocks(data string, want int) ([]uint16, error) {
	comp, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}
	raw, err := chunkDec.DecodeAll(comp, make([]byte, 0, 2*want))
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	if len(raw) != 2*want {
		return nil, fmt.Errorf("payload has %d bytes, want %d", len(raw), 2*want)
	}
	out := make([]uint16, want)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}
	return out, nil
}
