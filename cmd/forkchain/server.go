package main

import (
	chain "github.com/dogecoinfoundation/forkchain/pkg"
	"github.com/dogecoinfoundation/forkchain/pkg/conductor"
	"github.com/dogecoinfoundation/forkchain/pkg/keys"
	"github.com/dogecoinfoundation/forkchain/pkg/miner"
	"github.com/dogecoinfoundation/forkchain/pkg/receivers"
	"github.com/dogecoinfoundation/forkchain/pkg/webapi"
)

func Server(conf chain.Config) error {
	log := chain.NewLogger(conf.Log)

	c := conductor.NewConductor(
		conductor.Logger(log),
		conductor.HookSignals(),
		conductor.Noisy(),
	)

	// Start the MessageBus Service
	bus := chain.NewMessageBus()
	c.Service("MessageBus", bus)

	// Set up all configured receivers
	receivers.SetUpReceivers(c, bus, conf, log)

	// Build the genesis block
	genesisAddress := chain.Address(conf.Chain.GenesisAddress)
	if genesisAddress == "" {
		key, err := keys.GenerateKey(&keys.TestChain)
		if err != nil {
			return err
		}
		genesisAddress = key.Address()
		log.Warn().Str("address", string(genesisAddress)).Str("wif", key.WIF()).
			Msg("no genesis address configured, paying genesis to a fresh key")
	}
	genesisValue, err := conf.GenesisValue()
	if err != nil {
		return err
	}
	genesis := chain.NewGenesis(genesisAddress, genesisValue)

	// Set up the block tree
	opts := append(conf.ChainOptions(), chain.WithLogger(log), chain.WithMessageBus(bus))
	bc, err := chain.NewBlockChain(genesis, keys.Verifier{}, opts...)
	if err != nil {
		return err
	}

	// Start the TipChaser and the Miner
	if _, _, err := miner.StartMiner(c, bus, conf, bc, log); err != nil {
		return err
	}

	api := chain.NewAPI(bc, bus, conf)

	// Start the Web API
	w, err := webapi.NewWebAPI(conf, api, log)
	if err != nil {
		return err
	}
	c.Service("Web API", w)

	<-c.Start()
	return nil
}
