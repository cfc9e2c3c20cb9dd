package keys

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const (
	PrivKeyLen       = 32 // bytes.
	CompactSigLen    = 65 // bytes: [recovery-code][32-R][32-S]
	wifCompressedTag = 0x01
)

// PrivateKey is a secp256k1 signing key bound to the chain whose
// address prefix it produces.
type PrivateKey struct {
	key   *secp256k1.PrivateKey
	chain *ChainParams
}

func GenerateKey(chain *ChainParams) (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key, chain: chain}, nil
}

// KeyFromSeed derives a deterministic key, for tests and simulations.
func KeyFromSeed(seed []byte, chain *ChainParams) *PrivateKey {
	return &PrivateKey{key: secp256k1.PrivKeyFromBytes(Sha256(seed)), chain: chain}
}

func (k *PrivateKey) PubKey() []byte {
	return k.key.PubKey().SerializeCompressed()
}

func (k *PrivateKey) Address() Address {
	return Hash160toAddress(Hash160(k.PubKey()), k.chain)
}

// Sign produces a compact (public-key recoverable) signature over sha256(message).
func (k *PrivateKey) Sign(message []byte) []byte {
	return ecdsa.SignCompact(k.key, Sha256(message), true)
}

// https://en.bitcoin.it/wiki/Wallet_import_format
func (k *PrivateKey) WIF() string {
	data := make([]byte, 0, 1+PrivKeyLen+1)
	data = append(data, k.chain.pkey_prefix)
	data = append(data, k.key.Serialize()...)
	data = append(data, wifCompressedTag) // pubkey will be compressed.
	return Base58EncodeCheck(data)
}

func DecodeWIF(str string) (*PrivateKey, error) {
	data, err := Base58DecodeCheck(str)
	if err != nil {
		return nil, err
	}
	if len(data) != 1+PrivKeyLen && len(data) != 1+PrivKeyLen+1 {
		return nil, fmt.Errorf("DecodeWIF: wrong key length")
	}
	chain, ok := ChainFromWIFPrefix(data[0])
	if !ok {
		return nil, fmt.Errorf("DecodeWIF: wrong key prefix")
	}
	return &PrivateKey{key: secp256k1.PrivKeyFromBytes(data[1 : 1+PrivKeyLen]), chain: chain}, nil
}
