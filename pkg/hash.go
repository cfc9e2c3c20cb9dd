package chain

import (
	"fmt"

	"github.com/dogecoinfoundation/forkchain/pkg/keys"
)

// Hash identifies a transaction or a block (sha256d of its content).
type Hash [32]byte

var ZeroHash Hash

func (h Hash) String() string {
	return keys.HexEncode(h[:])
}

func (h Hash) IsZero() bool {
	return h == ZeroHash
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func ParseHash(str string) (Hash, error) {
	b, ok := keys.HexDecode32(str)
	if !ok {
		return ZeroHash, NewErr(BadRequest, "invalid hash: %q", str)
	}
	return Hash(b), nil
}

// Less orders hashes bytewise; used wherever a deterministic order is needed.
func (h Hash) Less(o Hash) bool {
	for i := range h {
		if h[i] != o[i] {
			return h[i] < o[i]
		}
	}
	return false
}

func (h Hash) Short() string {
	return fmt.Sprintf("%x", h[:6])
}
