package main

import (
	"fmt"

	"github.com/dogecoinfoundation/forkchain/pkg/gossip"
	"github.com/spf13/cobra"
)

func simulateCommand() *cobra.Command {
	params := gossip.DefaultSimParams()
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the gossip consensus simulation and report agreement",
		Run: func(cmd *cobra.Command, args []string) {
			result := gossip.NewSimulation(params, nil).Run()
			compliant := result.Compliant()
			sizes := map[int]int{}
			for _, set := range compliant {
				sizes[len(set)]++
			}
			fmt.Printf("nodes: %d, compliant: %d, rounds: %d\n", params.Nodes, len(compliant), params.Rounds)
			fmt.Printf("agreement: %.1f%%\n", result.Agreement()*100)
			for size, count := range sizes {
				fmt.Printf("  %d nodes answered with %d transactions\n", count, size)
			}
		},
	}
	f := cmd.Flags()
	f.IntVar(&params.Nodes, "nodes", params.Nodes, "number of nodes")
	f.Float64Var(&params.PGraph, "p-graph", params.PGraph, "probability of a follow edge")
	f.Float64Var(&params.PMalicious, "p-malicious", params.PMalicious, "probability a node is malicious")
	f.Float64Var(&params.PTxDistribution, "p-tx", params.PTxDistribution, "probability a node starts with a transaction")
	f.IntVar(&params.Rounds, "rounds", params.Rounds, "number of rounds")
	f.IntVar(&params.Transactions, "txs", params.Transactions, "number of transactions")
	f.Int64Var(&params.Seed, "seed", params.Seed, "random seed")
	return cmd
}
