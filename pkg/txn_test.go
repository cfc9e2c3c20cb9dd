package chain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigningMessage(t *testing.T) {
	alice := testKey("alice")
	tx := NewTransaction()
	tx.AddInput(fakeHash(1), 0)
	tx.AddInput(fakeHash(2), 3)
	tx.AddOutput(alice.Address(), coins(5))

	m0, m1 := tx.RawDataToSign(0), tx.RawDataToSign(1)
	assert.NotEqual(t, m0, m1)
	assert.Nil(t, tx.RawDataToSign(2))
	assert.Nil(t, tx.RawDataToSign(-1))

	// signatures are not part of any message
	tx.SignInput(0, alice)
	assert.Equal(t, m0, tx.RawDataToSign(0))
	assert.Equal(t, m1, tx.RawDataToSign(1))

	// but they are part of the identifier
	tx.Finalize()
	first := tx.Hash
	tx.SignInput(1, alice)
	tx.Finalize()
	assert.NotEqual(t, first, tx.Hash)
}

func TestCoinbaseIdentifiers(t *testing.T) {
	miner := testKey("miner")
	a := NewBlock(&Hash{1}, miner.Address(), coins(25))
	b := NewBlock(&Hash{2}, miner.Address(), coins(25))
	g := NewBlock(nil, miner.Address(), coins(25))

	assert.True(t, a.Coinbase.IsCoinbase())
	assert.True(t, g.IsGenesis())
	assert.False(t, a.IsGenesis())
	assert.NotEqual(t, a.Coinbase.Hash, b.Coinbase.Hash)
	assert.NotEqual(t, a.Coinbase.Hash, g.Coinbase.Hash)

	// NewBlock keeps its own copy of the parent hash
	parent := Hash{3}
	c := NewBlock(&parent, miner.Address(), coins(25))
	parent[0] = 4
	assert.Equal(t, Hash{3}, *c.PrevBlockHash)
}

func TestBlockHashCoversTransactions(t *testing.T) {
	miner := testKey("miner")
	b := NewBlock(&Hash{1}, miner.Address(), coins(25))
	b.Finalize()
	empty := b.Hash

	b.AddTransaction(spendTx(miner, []UTXO{NewUTXO(fakeHash(1), 0)}, pay(miner, 1)))
	b.Finalize()
	assert.NotEqual(t, empty, b.Hash)
}

func TestTransactionJSON(t *testing.T) {
	alice, bob := testKey("alice"), testKey("bob")
	tx := spendTx(alice, []UTXO{NewUTXO(fakeHash(1), 2)}, pay(bob, 60), Output{alice.Address(), coins(40)})

	data, err := json.Marshal(tx)
	require.NoError(t, err)
	var back Transaction
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, tx.Hash, back.Hash)
	back.Finalize()
	assert.Equal(t, tx.Hash, back.Hash)
}

func TestParseHash(t *testing.T) {
	h := fakeHash(0xab)
	parsed, err := ParseHash(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	_, err = ParseHash("xyz")
	assert.True(t, IsError(err, BadRequest))
	assert.True(t, ZeroHash.IsZero())
	assert.True(t, fakeHash(1).Less(fakeHash(2)))
}
