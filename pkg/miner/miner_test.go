package miner

import (
	"context"
	"testing"
	"time"

	chain "github.com/dogecoinfoundation/forkchain/pkg"
	"github.com/dogecoinfoundation/forkchain/pkg/keys"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChain(t *testing.T, bus chain.MessageBus) (*chain.BlockChain, *keys.PrivateKey) {
	t.Helper()
	alice := keys.KeyFromSeed([]byte("alice"), &keys.TestChain)
	genesis := chain.NewGenesis(alice.Address(), decimal.NewFromInt(100))
	bc, err := chain.NewBlockChain(genesis, keys.Verifier{}, chain.WithMessageBus(bus))
	require.NoError(t, err)
	return bc, alice
}

func TestMineOnce(t *testing.T) {
	bc, alice := newChain(t, chain.NewMessageBus())
	minerKey := keys.KeyFromSeed([]byte("miner"), &keys.TestChain)
	bob := keys.KeyFromSeed([]byte("bob"), &keys.TestChain)

	tx := chain.NewTransaction()
	g0 := bc.GetMaxHeightBlock().Coinbase.OutputUTXO(0)
	tx.AddInput(g0.TxHash, g0.Index)
	tx.AddOutput(bob.Address(), decimal.NewFromInt(90))
	tx.SignInput(0, alice)
	tx.Finalize()
	bc.AddTransaction(tx)

	m, err := NewMiner(bc, minerKey.Address(), decimal.NewFromInt(25), chain.MaxFee, time.Hour, zerolog.Nop())
	require.NoError(t, err)

	block, err := m.MineOnce()
	require.NoError(t, err)
	assert.Len(t, block.Txs, 1)
	assert.Equal(t, 1, bc.Height())
	assert.Equal(t, 0, bc.GetTransactionPool().Len())

	block, err = m.MineOnce()
	require.NoError(t, err)
	assert.Empty(t, block.Txs)
	assert.Equal(t, 2, bc.Height())
	// two coinbases; the fee is not paid to anyone
	assert.True(t, bc.GetMaxHeightUTXOPool().Balance(minerKey.Address()).Equal(decimal.NewFromInt(50)))
}

func TestNewMinerValidates(t *testing.T) {
	bc, _ := newChain(t, chain.NewMessageBus())
	_, err := NewMiner(bc, "", decimal.NewFromInt(25), chain.MaxFee, time.Second, zerolog.Nop())
	assert.True(t, chain.IsError(err, chain.BadRequest))
	_, err = NewMiner(bc, "addr", decimal.NewFromInt(25), chain.MaxFee, 0, zerolog.Nop())
	assert.True(t, chain.IsError(err, chain.BadRequest))
}

func TestTipChaserFansOut(t *testing.T) {
	bus := chain.NewMessageBus()
	bc, _ := newChain(t, bus)
	tc := NewTipChaser(bc, zerolog.Nop())
	bus.Register(tc, chain.EVENT_CHAIN("CHAIN"))
	tips := make(chan chain.TipEvent, 10)
	tc.Subscribe(tips, true)

	run := func(s interface {
		Run(chan bool, chan bool, chan context.Context) error
	}) (chan context.Context, chan bool) {
		started, stopped, stop := make(chan bool, 1), make(chan bool, 1), make(chan context.Context, 1)
		require.NoError(t, s.Run(started, stopped, stop))
		<-started
		return stop, stopped
	}
	busStop, busStopped := run(bus)
	tcStop, tcStopped := run(tc)

	minerKey := keys.KeyFromSeed([]byte("miner"), &keys.TestChain)
	m, err := NewMiner(bc, minerKey.Address(), decimal.NewFromInt(25), chain.FirstValid, time.Hour, zerolog.Nop())
	require.NoError(t, err)
	block, err := m.MineOnce()
	require.NoError(t, err)

	select {
	case tip := <-tips:
		assert.Equal(t, block.Hash, tip.Hash)
		assert.Equal(t, 1, tip.Height)
	case <-time.After(2 * time.Second):
		t.Fatal("no tip event")
	}

	tcStop <- context.Background()
	<-tcStopped
	busStop <- context.Background()
	<-busStopped
}
