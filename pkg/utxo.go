package chain

import (
	"fmt"

	"github.com/dogecoinfoundation/forkchain/pkg/keys"
	"github.com/shopspring/decimal"
)

type Address = keys.Address

// Amount is a fixed-point coin value.
type Amount = decimal.Decimal

var ZeroCoins = decimal.NewFromInt(0)

// UTXO is an Unspent Transaction Output reference: the transaction that
// created the output and the output's index within it. Comparable, so it is
// used directly as a map key.
type UTXO struct {
	TxHash Hash   `json:"tx"`   // part of unique key
	Index  uint32 `json:"vout"` // part of unique key
}

func NewUTXO(txHash Hash, index uint32) UTXO {
	return UTXO{TxHash: txHash, Index: index}
}

func (u UTXO) String() string {
	return fmt.Sprintf("%s:%d", u.TxHash, u.Index)
}

// Output is a value paid to an owner address.
type Output struct {
	Address Address `json:"address"`
	Value   Amount  `json:"value"`
}

// ParseAmount reads a non-negative decimal coin value.
func ParseAmount(s string) (Amount, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroCoins, NewErr(BadRequest, "invalid amount %q: %v", s, err)
	}
	if v.IsNegative() {
		return ZeroCoins, NewErr(BadRequest, "negative amount %q", s)
	}
	return v, nil
}

