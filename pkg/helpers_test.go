package chain

import (
	"github.com/dogecoinfoundation/forkchain/pkg/keys"
	"github.com/shopspring/decimal"
)

var testVerifier = keys.Verifier{}

// acceptAny approves every signature; for tests where ownership is not
// under test.
var acceptAny = VerifierFunc(func(Address, []byte, []byte) bool { return true })

func testKey(name string) *keys.PrivateKey {
	return keys.KeyFromSeed([]byte(name), &keys.TestChain)
}

func coins(n int64) Amount {
	return decimal.NewFromInt(n)
}

func pay(key *keys.PrivateKey, value int64) Output {
	return Output{Address: key.Address(), Value: coins(value)}
}

// spendTx builds a finalized transaction with every input signed by key.
func spendTx(key *keys.PrivateKey, ins []UTXO, outs ...Output) *Transaction {
	tx := NewTransaction()
	for _, u := range ins {
		tx.AddInput(u.TxHash, u.Index)
	}
	for _, o := range outs {
		tx.AddOutput(o.Address, o.Value)
	}
	for i := range tx.Inputs {
		tx.SignInput(i, key)
	}
	tx.Finalize()
	return tx
}

func fakeHash(b byte) Hash {
	var h Hash
	h[0] = b
	h[31] = b
	return h
}
