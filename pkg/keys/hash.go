package keys

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

func Sha256(bytes []byte) []byte {
	result := sha256.Sum256(bytes)
	return result[:]
}

// DoubleSha256 is the identifier hash for transactions and blocks.
func DoubleSha256(bytes []byte) [32]byte {
	hash := sha256.Sum256(bytes)
	return sha256.Sum256(hash[:])
}

func RIPEMD160(bytes []byte) []byte {
	hash := ripemd160.New()
	n, err := hash.Write(bytes)
	if err != nil || n != len(bytes) {
		panic("RIPEMD160: cannot write bytes")
	}
	return hash.Sum(nil)
}

func Hash160(bytes []byte) []byte {
	return RIPEMD160(Sha256(bytes))
}
