package keys

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Verifier checks compact signatures against P2PKH addresses: the public key
// is recovered from the signature and must hash to the address.
// It has no state and is safe for concurrent use.
type Verifier struct{}

func (Verifier) Verify(address Address, message []byte, signature []byte) bool {
	if len(signature) != CompactSigLen {
		return false
	}
	data, err := Base58DecodeCheck(string(address))
	if err != nil || len(data) != 21 {
		return false
	}
	chain, ok := ChainFromAddressPrefix(data[0])
	if !ok {
		return false
	}
	pub, _, err := ecdsa.RecoverCompact(signature, Sha256(message))
	if err != nil {
		return false
	}
	signer, err := PubKeyToAddress(pub.SerializeCompressed(), chain)
	if err != nil {
		return false
	}
	return signer == address
}
