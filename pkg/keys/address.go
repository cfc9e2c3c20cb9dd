package keys

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Address is a base58check-encoded public key hash (P2PKH style).
// It is the owner identity of an output.
type Address string

const (
	PubKeyCompressedLen   = 33 // bytes: [2/3][32-X] 2=even 3=odd
	PubKeyUncompressedLen = 65 // bytes: [4][32-X][32-Y]
)

func Hash160toAddress(hash []byte, chain *ChainParams) Address {
	if len(hash) != 20 {
		panic("Hash160toAddress: wrong RIPEMD-160 length")
	}
	ver_hash := make([]byte, 0, 21)
	ver_hash = append(ver_hash, chain.p2pkh_address_prefix)
	ver_hash = append(ver_hash, hash...)
	return Address(Base58EncodeCheck(ver_hash))
}

// PubKeyToAddress accepts a compressed or uncompressed secp256k1 public key.
// Uncompressed keys are compressed first, so both encodings map to one Address.
func PubKeyToAddress(key []byte, chain *ChainParams) (Address, error) {
	if len(key) == PubKeyUncompressedLen && key[0] == 0x04 {
		pubkey, err := secp256k1.ParsePubKey(key)
		if err != nil {
			return "", err
		}
		key = pubkey.SerializeCompressed()
	}
	if len(key) != PubKeyCompressedLen || (key[0] != 0x02 && key[0] != 0x03) {
		return "", errors.New("PubKeyToAddress: invalid pubkey")
	}
	return Hash160toAddress(Hash160(key), chain), nil
}

// ValidateAddress reports whether address decodes with a valid checksum
// and carries the P2PKH prefix of chain.
func ValidateAddress(address Address, chain *ChainParams) bool {
	data, err := Base58DecodeCheck(string(address))
	if err != nil || len(data) != 21 {
		return false
	}
	return data[0] == chain.p2pkh_address_prefix
}
