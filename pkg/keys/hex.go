package keys

import (
	"encoding/hex"
)

func HexEncode(bytes []byte) string {
	return hex.EncodeToString(bytes)
}

func HexDecode(str string) ([]byte, error) {
	return hex.DecodeString(str)
}

// HexDecode32 decodes exactly 32 bytes of hex (a hash).
func HexDecode32(str string) (out [32]byte, ok bool) {
	b, err := hex.DecodeString(str)
	if err != nil || len(b) != 32 {
		return out, false
	}
	copy(out[:], b)
	return out, true
}
