package miner

import (
	chain "github.com/dogecoinfoundation/forkchain/pkg"
	"github.com/dogecoinfoundation/forkchain/pkg/conductor"
	"github.com/rs/zerolog"
)

// StartMiner registers the TipChaser, and the Miner when enabled in conf.
func StartMiner(c *conductor.Conductor, bus chain.MessageBus, conf chain.Config, bc Chain, log zerolog.Logger) (*TipChaser, *Miner, error) {
	// Start the TipChaser service
	tc := NewTipChaser(bc, log)
	bus.Register(tc, chain.EVENT_CHAIN("CHAIN"))
	c.Service("TipChaser", tc)

	if !conf.Miner.Enabled {
		return tc, nil, nil
	}

	policy, err := conf.SelectionPolicy()
	if err != nil {
		return nil, nil, err
	}
	reward, err := conf.Reward()
	if err != nil {
		return nil, nil, err
	}
	interval, err := conf.MinerInterval()
	if err != nil {
		return nil, nil, err
	}

	// Start the Miner service
	m, err := NewMiner(bc, chain.Address(conf.Miner.Address), reward, policy, interval, log)
	if err != nil {
		return nil, nil, err
	}
	tc.Subscribe(m.ReceiveBestBlock, false) // non-blocking.
	c.Service("Miner", m)

	return tc, m, nil
}
