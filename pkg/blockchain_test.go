package chain

import (
	"encoding/json"
	"testing"

	"github.com/dogecoinfoundation/forkchain/pkg/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChain(t *testing.T, opts ...Option) (*BlockChain, *Block) {
	t.Helper()
	genesis := NewGenesis(testKey("alice").Address(), coins(100))
	bc, err := NewBlockChain(genesis, testVerifier, opts...)
	require.NoError(t, err)
	return bc, genesis
}

// blockOn builds a finalized block on parent paying the coinbase to miner.
func blockOn(parent Hash, miner *keys.PrivateKey, txs ...*Transaction) *Block {
	b := NewBlock(&parent, miner.Address(), coins(25))
	for _, tx := range txs {
		b.AddTransaction(tx)
	}
	b.Finalize()
	return b
}

// extend adds n empty blocks on top of parent and returns them.
func extend(t *testing.T, bc *BlockChain, parent Hash, n int, miner *keys.PrivateKey) []*Block {
	t.Helper()
	blocks := []*Block{}
	for i := 0; i < n; i++ {
		b := blockOn(parent, miner)
		require.NoError(t, bc.Submit(b))
		blocks = append(blocks, b)
		parent = b.Hash
	}
	return blocks
}

func TestGenesis(t *testing.T) {
	bc, genesis := newTestChain(t)
	alice := testKey("alice")

	assert.Same(t, genesis, bc.GetMaxHeightBlock())
	assert.Equal(t, 0, bc.Height())
	assert.Equal(t, 1, bc.NodeCount())
	assert.Equal(t, DefaultCutOffAge, bc.CutOffAge())

	utxos := bc.GetMaxHeightUTXOPool()
	assert.True(t, utxos.Contains(genesis.Coinbase.OutputUTXO(0)))
	assert.True(t, utxos.Balance(alice.Address()).Equal(coins(100)))

	// a second genesis is rejected
	other := NewGenesis(testKey("bob").Address(), coins(100))
	err := bc.Submit(other)
	assert.True(t, IsError(err, NoParent), "%v", err)
	assert.False(t, bc.AddBlock(other))
	assert.Same(t, genesis, bc.GetMaxHeightBlock())
}

func TestGenesisTransactions(t *testing.T) {
	alice, bob := testKey("alice"), testKey("bob")
	genesis := NewBlock(nil, alice.Address(), coins(100))
	spend := spendTx(alice, []UTXO{genesis.Coinbase.OutputUTXO(0)}, pay(bob, 100))
	forged := spendTx(bob, []UTXO{NewUTXO(fakeHash(3), 0)}, pay(bob, 5))
	genesis.AddTransaction(spend)
	genesis.AddTransaction(forged)
	genesis.Finalize()

	bc, err := NewBlockChain(genesis, testVerifier)
	require.NoError(t, err)
	utxos := bc.GetMaxHeightUTXOPool()
	assert.True(t, utxos.Balance(bob.Address()).Equal(coins(100)))
	assert.True(t, utxos.Balance(alice.Address()).IsZero())
	assert.Equal(t, 1, utxos.Len())
}

func TestNewBlockChainRejectsBadInput(t *testing.T) {
	_, err := NewBlockChain(nil, testVerifier)
	assert.True(t, IsError(err, BadRequest))

	genesis := NewGenesis(testKey("alice").Address(), coins(100))
	_, err = NewBlockChain(genesis, testVerifier, WithCutOffAge(0))
	assert.True(t, IsError(err, BadRequest))
	_, err = NewBlockChain(genesis, nil)
	assert.True(t, IsError(err, BadRequest))
}

func TestEndToEnd(t *testing.T) {
	bc, genesis := newTestChain(t)
	alice, bob, carol, miner := testKey("alice"), testKey("bob"), testKey("carol"), testKey("miner")
	g0 := genesis.Coinbase.OutputUTXO(0)

	t1 := spendTx(alice, []UTXO{g0}, pay(bob, 60), pay(alice, 40))
	t2 := spendTx(alice, []UTXO{g0}, pay(carol, 100))
	v := NewTxValidator(testVerifier)
	utxos := bc.GetMaxHeightUTXOPool()
	require.True(t, v.IsValid(utxos, t1))
	require.True(t, v.Fee(utxos, t1).IsZero())

	// one accept call never takes both
	for _, policy := range []Policy{FirstValid, MaxFee} {
		accepted := NewTxHandler(testVerifier, policy).HandleTxs(bc.GetMaxHeightUTXOPool(), []*Transaction{t1, t2})
		assert.Len(t, accepted, 1, policy.String())
	}

	// a block holding both is rejected outright
	assert.True(t, IsError(bc.Submit(blockOn(genesis.Hash, miner, t1, t2)), InvalidTxn))

	// with a fee on t2 the greedy policy picks it
	t2 = spendTx(alice, []UTXO{g0}, pay(carol, 95))
	bc.AddTransaction(t1)
	bc.AddTransaction(t2)
	block := bc.AssembleBlock(miner.Address(), coins(25), MaxFee)
	require.Len(t, block.Txs, 1)
	assert.Equal(t, t2.Hash, block.Txs[0].Hash)
	require.NoError(t, bc.Submit(block))

	assert.Equal(t, 1, bc.Height())
	assert.Same(t, block, bc.GetMaxHeightBlock())
	utxos = bc.GetMaxHeightUTXOPool()
	assert.True(t, utxos.Balance(carol.Address()).Equal(coins(95)))
	assert.True(t, utxos.Balance(miner.Address()).Equal(coins(25)))
	assert.False(t, utxos.Contains(g0))

	// t2 is confirmed, t1 stays pending (and is now invalid)
	_, pending := bc.GetTransactionPool().Get(t1.Hash)
	assert.True(t, pending)
	_, pending = bc.GetTransactionPool().Get(t2.Hash)
	assert.False(t, pending)
	assert.False(t, v.IsValid(utxos, t1))
}

func TestCutOffBoundary(t *testing.T) {
	for _, prune := range []bool{true, false} {
		bc, genesis := newTestChain(t, WithCutOffAge(10), WithPruning(prune))
		miner, other := testKey("miner"), testKey("other")
		chain := extend(t, bc, genesis.Hash, 12, miner)
		require.Equal(t, 12, bc.Height())

		// chain[i] is at height i+1; H - C = 2
		err := bc.Submit(blockOn(chain[1].Hash, other))
		assert.True(t, IsError(err, ParentTooOld), "prune=%v: %v", prune, err)

		err = bc.Submit(blockOn(chain[2].Hash, other))
		assert.NoError(t, err, "prune=%v", prune)

		// still the tip: the fork is far shorter
		assert.Same(t, chain[11], bc.GetMaxHeightBlock())
	}
}

func TestBlockAtomicity(t *testing.T) {
	bc, genesis := newTestChain(t)
	alice, bob, mallory, miner := testKey("alice"), testKey("bob"), testKey("mallory"), testKey("miner")
	g0 := genesis.Coinbase.OutputUTXO(0)

	good := spendTx(alice, []UTXO{g0}, pay(bob, 100))
	bad := spendTx(mallory, []UTXO{NewUTXO(fakeHash(5), 0)}, pay(mallory, 1))
	bc.AddTransaction(good)

	err := bc.Submit(blockOn(genesis.Hash, miner, good, bad))
	assert.True(t, IsError(err, InvalidTxn), "%v", err)
	assert.Equal(t, 1, bc.NodeCount())
	assert.Same(t, genesis, bc.GetMaxHeightBlock())
	_, pending := bc.GetTransactionPool().Get(good.Hash)
	assert.True(t, pending)
	assert.True(t, bc.GetMaxHeightUTXOPool().Contains(g0))

	// a nil transaction counts as rejected
	assert.False(t, bc.AddBlock(blockOn(genesis.Hash, miner, good, nil)))
	assert.Equal(t, 1, bc.NodeCount())
}

func TestFirstSeenWins(t *testing.T) {
	bc, genesis := newTestChain(t)
	first := blockOn(genesis.Hash, testKey("miner-1"))
	second := blockOn(genesis.Hash, testKey("miner-2"))
	require.NotEqual(t, first.Hash, second.Hash)

	require.True(t, bc.AddBlock(first))
	require.True(t, bc.AddBlock(second))
	assert.Same(t, first, bc.GetMaxHeightBlock())

	// the other branch takes over once it is strictly higher
	third := blockOn(second.Hash, testKey("miner-2"))
	require.True(t, bc.AddBlock(third))
	assert.Same(t, third, bc.GetMaxHeightBlock())
	assert.Equal(t, 2, bc.Height())
}

func TestRejectedBlocks(t *testing.T) {
	bc, genesis := newTestChain(t)
	miner := testKey("miner")

	b := blockOn(genesis.Hash, miner)
	require.NoError(t, bc.Submit(b))
	assert.True(t, IsError(bc.Submit(b), DuplicateBlock))

	assert.True(t, IsError(bc.Submit(blockOn(fakeHash(8), miner)), UnknownParent))
	assert.True(t, IsError(bc.Submit(nil), BadRequest))
	assert.True(t, IsError(bc.Submit(&Block{PrevBlockHash: &genesis.Hash}), BadRequest))

	// a coinbase may not spend inputs
	minted := blockOn(genesis.Hash, miner)
	minted.Coinbase.AddInput(genesis.Coinbase.Hash, 0)
	minted.Finalize()
	assert.True(t, IsError(bc.Submit(minted), BadRequest))

	assert.Equal(t, 2, bc.NodeCount())
}

func TestBranchIsolation(t *testing.T) {
	bc, genesis := newTestChain(t)
	alice, bob, carol := testKey("alice"), testKey("bob"), testKey("carol")
	g0 := genesis.Coinbase.OutputUTXO(0)

	toBob := spendTx(alice, []UTXO{g0}, pay(bob, 100))
	toCarol := spendTx(alice, []UTXO{g0}, pay(carol, 100))

	x := blockOn(genesis.Hash, testKey("miner-x"), toBob)
	y := blockOn(genesis.Hash, testKey("miner-y"), toCarol)
	require.NoError(t, bc.Submit(x))
	// the same output spent again on a sibling branch
	require.NoError(t, bc.Submit(y))

	// but not twice on one branch
	again := spendTx(alice, []UTXO{g0}, pay(alice, 100))
	assert.True(t, IsError(bc.Submit(blockOn(x.Hash, testKey("miner-x"), again)), InvalidTxn))

	// spending the branch's own output works
	onward := spendTx(carol, []UTXO{toCarol.OutputUTXO(0)}, pay(alice, 100))
	require.NoError(t, bc.Submit(blockOn(y.Hash, testKey("miner-y"), onward)))
	assert.True(t, bc.GetMaxHeightUTXOPool().Balance(alice.Address()).Equal(coins(100)))
}

func TestPruning(t *testing.T) {
	bc, genesis := newTestChain(t, WithCutOffAge(2))
	miner, side := testKey("miner"), testKey("side")

	a := extend(t, bc, genesis.Hash, 1, miner)
	s1 := blockOn(genesis.Hash, side)
	require.NoError(t, bc.Submit(s1))
	a = append(a, extend(t, bc, a[0].Hash, 2, miner)...)
	require.Equal(t, 3, bc.Height())

	// cut-off line is 1: s1 is gone, a[0] is kept but frozen
	assert.Equal(t, 4, bc.NodeCount())
	_, _, err := bc.GetBlock(s1.Hash)
	assert.True(t, IsNotFoundError(err))
	_, height, err := bc.GetBlock(a[0].Hash)
	require.NoError(t, err)
	assert.Equal(t, 1, height)

	assert.True(t, IsError(bc.Submit(blockOn(s1.Hash, side)), UnknownParent))
	assert.True(t, IsError(bc.Submit(blockOn(a[0].Hash, side)), ParentTooOld))
	assert.True(t, IsError(bc.Submit(blockOn(genesis.Hash, side)), ParentTooOld))
	assert.NoError(t, bc.Submit(blockOn(a[1].Hash, side)))
}

func TestNoPruning(t *testing.T) {
	bc, genesis := newTestChain(t, WithCutOffAge(2), WithPruning(false))
	miner, side := testKey("miner"), testKey("side")

	a := extend(t, bc, genesis.Hash, 1, miner)
	s1 := blockOn(genesis.Hash, side)
	require.NoError(t, bc.Submit(s1))
	extend(t, bc, a[0].Hash, 2, miner)

	assert.Equal(t, 5, bc.NodeCount())
	assert.True(t, IsError(bc.Submit(blockOn(s1.Hash, side)), ParentTooOld))
}

func TestPruningLongRun(t *testing.T) {
	bc, genesis := newTestChain(t, WithCutOffAge(3))
	miner := testKey("miner")
	parent := genesis.Hash
	for i := 0; i < 20; i++ {
		main := blockOn(parent, miner)
		fork := blockOn(parent, testKey("fork"))
		require.NoError(t, bc.Submit(main))
		require.NoError(t, bc.Submit(fork))
		parent = main.Hash
	}
	require.Equal(t, 20, bc.Height())
	// main chain (21 incl. genesis) plus forks above the line 17
	assert.Equal(t, 21+3, bc.NodeCount())
}

// walkToGenesis follows parent links from the tip and returns the heights
// seen, failing if any ancestor is missing.
func walkToGenesis(t *testing.T, bc *BlockChain) []int {
	t.Helper()
	heights := []int{}
	hash := bc.GetMaxHeightBlock().Hash
	for {
		b, height, err := bc.GetBlock(hash)
		require.NoError(t, err, "ancestor of %s missing", hash.Short())
		heights = append(heights, height)
		if b.PrevBlockHash == nil {
			return heights
		}
		hash = *b.PrevBlockHash
	}
}

func TestPruningAcrossReorg(t *testing.T) {
	bc, genesis := newTestChain(t, WithCutOffAge(2))
	miner, side := testKey("miner"), testKey("side")

	m1 := blockOn(genesis.Hash, miner)
	s1 := blockOn(genesis.Hash, side)
	require.NoError(t, bc.Submit(m1))
	require.NoError(t, bc.Submit(s1))
	m2 := blockOn(m1.Hash, miner)
	s2 := blockOn(s1.Hash, side)
	require.NoError(t, bc.Submit(m2))
	require.NoError(t, bc.Submit(s2))
	m3 := blockOn(m2.Hash, miner)
	require.NoError(t, bc.Submit(m3))
	require.Equal(t, m3.Hash, bc.GetMaxHeightBlock().Hash)

	// s1 sits on the line but s2 is above it, so the side branch survives
	_, _, err := bc.GetBlock(s1.Hash)
	require.NoError(t, err)

	s3 := blockOn(s2.Hash, side)
	require.NoError(t, bc.Submit(s3))
	s4 := blockOn(s3.Hash, side)
	require.NoError(t, bc.Submit(s4))
	require.Equal(t, s4.Hash, bc.GetMaxHeightBlock().Hash)
	assert.Equal(t, []int{4, 3, 2, 1, 0}, walkToGenesis(t, bc))

	// m3 is still above the line, so the old branch can be extended
	_, _, err = bc.GetBlock(m1.Hash)
	assert.NoError(t, err)
	assert.Equal(t, 8, bc.NodeCount())

	extend(t, bc, s4.Hash, 3, side)
	require.Equal(t, 7, bc.Height())
	assert.Equal(t, []int{7, 6, 5, 4, 3, 2, 1, 0}, walkToGenesis(t, bc))

	// the abandoned branch sank below the line and went as a whole
	for _, b := range []*Block{m1, m2, m3} {
		_, _, err := bc.GetBlock(b.Hash)
		assert.True(t, IsNotFoundError(err))
	}
	assert.Equal(t, 8, bc.NodeCount())
	assert.True(t, IsError(bc.Submit(blockOn(m3.Hash, miner)), UnknownParent))
}

func TestUTXOPoolIsACopy(t *testing.T) {
	bc, genesis := newTestChain(t)
	g0 := genesis.Coinbase.OutputUTXO(0)

	pool := bc.GetMaxHeightUTXOPool()
	pool.Remove(g0)
	pool.Add(NewUTXO(fakeHash(1), 0), pay(testKey("mallory"), 1000))

	fresh := bc.GetMaxHeightUTXOPool()
	assert.True(t, fresh.Contains(g0))
	assert.Equal(t, 1, fresh.Len())
}

func TestAddTransactionDoesNotValidate(t *testing.T) {
	bc, _ := newTestChain(t)
	mallory := testKey("mallory")
	junk := spendTx(mallory, []UTXO{NewUTXO(fakeHash(4), 4)}, pay(mallory, 1000))
	bc.AddTransaction(junk)
	bc.AddTransaction(nil)
	assert.Equal(t, 1, bc.GetTransactionPool().Len())

	block := bc.AssembleBlock(mallory.Address(), coins(25), FirstValid)
	assert.Empty(t, block.Txs)
	require.NoError(t, bc.Submit(block))
	assert.Equal(t, 1, bc.GetTransactionPool().Len())
}

func TestChainEvents(t *testing.T) {
	bus := NewMessageBus()
	bc, genesis := newTestChain(t, WithMessageBus(bus))
	miner := testKey("miner")

	b := blockOn(genesis.Hash, miner)
	require.NoError(t, bc.Submit(b))
	require.Error(t, bc.Submit(b))

	next := func() Message {
		select {
		case m := <-bus.inbound:
			return m
		default:
			t.Fatal("expected a message on the bus")
		}
		return Message{}
	}

	m := next()
	assert.Equal(t, CHAIN_BLOCK_ACCEPTED, m.EventType)
	var accepted BlockEvent
	require.NoError(t, json.Unmarshal(m.Message, &accepted))
	assert.Equal(t, b.Hash, accepted.Hash)
	assert.Equal(t, 1, accepted.Height)

	m = next()
	assert.Equal(t, CHAIN_TIP_CHANGED, m.EventType)

	m = next()
	assert.Equal(t, CHAIN_BLOCK_REJECTED, m.EventType)
	var rejected RejectEvent
	require.NoError(t, json.Unmarshal(m.Message, &rejected))
	assert.Equal(t, DuplicateBlock, rejected.Code)
}
