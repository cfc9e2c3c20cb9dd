package chain

import (
	"sort"

	"github.com/dolthub/swiss"
)

const utxoSetMinSize = 64

// UTXOSet maps each unspent output reference to its Output.
// Every instance is independently owned: Clone copies all entries, and
// mutating one set never affects another. Not safe for concurrent use.
type UTXOSet struct {
	m *swiss.Map[UTXO, Output]
}

func NewUTXOSet() *UTXOSet {
	return &UTXOSet{m: swiss.NewMap[UTXO, Output](utxoSetMinSize)}
}

// Clone returns a deep, independent copy. Output values are immutable
// (decimal arithmetic returns new values) so copying entries is enough.
func (u *UTXOSet) Clone() *UTXOSet {
	size := uint32(u.m.Count())
	if size < utxoSetMinSize {
		size = utxoSetMinSize
	}
	c := swiss.NewMap[UTXO, Output](size)
	u.m.Iter(func(k UTXO, v Output) (stop bool) {
		c.Put(k, v)
		return false
	})
	return &UTXOSet{m: c}
}

func (u *UTXOSet) Add(utxo UTXO, out Output) {
	u.m.Put(utxo, out)
}

func (u *UTXOSet) Remove(utxo UTXO) {
	u.m.Delete(utxo)
}

func (u *UTXOSet) Get(utxo UTXO) (Output, bool) {
	return u.m.Get(utxo)
}

func (u *UTXOSet) Contains(utxo UTXO) bool {
	return u.m.Has(utxo)
}

func (u *UTXOSet) Len() int {
	return u.m.Count()
}

// All lists every UTXO, ordered by (transaction hash, index).
func (u *UTXOSet) All() []UTXO {
	all := make([]UTXO, 0, u.m.Count())
	u.m.Iter(func(k UTXO, _ Output) (stop bool) {
		all = append(all, k)
		return false
	})
	sort.Slice(all, func(i, j int) bool {
		if all[i].TxHash != all[j].TxHash {
			return all[i].TxHash.Less(all[j].TxHash)
		}
		return all[i].Index < all[j].Index
	})
	return all
}

// AddCoinbase credits every output of a coinbase transaction.
func (u *UTXOSet) AddCoinbase(coinbase *Transaction) {
	for i, out := range coinbase.Outputs {
		u.Add(coinbase.OutputUTXO(i), out)
	}
}

// Balance sums the value of every UTXO owned by address.
func (u *UTXOSet) Balance(address Address) Amount {
	total := ZeroCoins
	u.m.Iter(func(_ UTXO, v Output) (stop bool) {
		if v.Address == address {
			total = total.Add(v.Value)
		}
		return false
	})
	return total
}
