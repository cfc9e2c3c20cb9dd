package miner

import (
	"context"
	"time"

	chain "github.com/dogecoinfoundation/forkchain/pkg"
	"github.com/rs/zerolog"
)

type Chain interface {
	AssembleBlock(address chain.Address, reward chain.Amount, policy chain.Policy) *chain.Block
	Submit(block *chain.Block) error
	Tip() chain.TipInfo
	GetTransactionPool() *chain.TransactionPool
}

/*
 * Miner extends the canonical tip at a fixed interval.
 *
 * Each round assembles a block from the mempool on top of the current tip
 * using the configured selection policy and submits it. A round with an
 * empty mempool still produces a block (coinbase only) so the chain keeps
 * moving.
 *
 * ReceiveBestBlock has capacity 1 because we only need to know that the
 * tip has changed since the last round (i.e. dirty flag).
 */
type Miner struct {
	chain            Chain
	address          chain.Address
	reward           chain.Amount
	policy           chain.Policy
	interval         time.Duration
	ReceiveBestBlock chan chain.TipEvent
	log              zerolog.Logger
}

func NewMiner(c Chain, address chain.Address, reward chain.Amount, policy chain.Policy, interval time.Duration, log zerolog.Logger) (*Miner, error) {
	if address == "" {
		return nil, chain.NewErr(chain.BadRequest, "miner needs a coinbase address")
	}
	if interval <= 0 {
		return nil, chain.NewErr(chain.BadRequest, "miner interval must be positive")
	}
	return &Miner{
		chain:            c,
		address:          address,
		reward:           reward,
		policy:           policy,
		interval:         interval,
		ReceiveBestBlock: make(chan chain.TipEvent, 1), // signal that tip has changed.
		log:              log.With().Str("component", "Miner").Logger(),
	}, nil
}

// Implements conductor.Service
func (m *Miner) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		started <- true
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				stopped <- true
				return
			case tip := <-m.ReceiveBestBlock:
				m.log.Debug().Str("tip", tip.Hash.Short()).Int("height", tip.Height).Msg("tip moved")
			case <-ticker.C:
				if _, err := m.MineOnce(); err != nil {
					m.log.Warn().Err(err).Msg("mined block rejected")
				}
			}
		}
	}()
	return nil
}

// MineOnce assembles one block on the current tip and submits it.
func (m *Miner) MineOnce() (*chain.Block, error) {
	block := m.chain.AssembleBlock(m.address, m.reward, m.policy)
	if err := m.chain.Submit(block); err != nil {
		return nil, err
	}
	m.log.Info().Str("block", block.Hash.Short()).Int("txs", len(block.Txs)).
		Int("pending", m.chain.GetTransactionPool().Len()).Msg("mined block")
	return block, nil
}
