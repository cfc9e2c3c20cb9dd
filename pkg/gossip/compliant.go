package gossip

import (
	chain "github.com/dogecoinfoundation/forkchain/pkg"
)

// CompliantNode forwards every transaction it has seen in enough rounds.
// The bar starts at one sighting and, once a third of the rounds have
// passed, rises to 30% of the rounds played so far, so transactions only a
// few nodes vouch for drop out of the consensus set.
type CompliantNode struct {
	numRounds int
	round     int
	followees map[int]bool
	pending   TxSet
	seen      map[chain.Hash]int
}

func NewCompliantNode(numRounds int) *CompliantNode {
	return &CompliantNode{
		numRounds: numRounds,
		followees: make(map[int]bool),
		pending:   NewTxSet(),
		seen:      make(map[chain.Hash]int),
	}
}

func (n *CompliantNode) SetFollowees(followees []bool) {
	n.followees = make(map[int]bool)
	for i, f := range followees {
		if f {
			n.followees[i] = true
		}
	}
}

func (n *CompliantNode) SetPendingTransactions(pending TxSet) {
	n.pending = pending.Clone()
	for tx := range pending {
		n.seen[tx] = 1
	}
}

// threshold is the number of sightings needed to forward in round.
func (n *CompliantNode) threshold(round int) int {
	if round > n.numRounds/3 {
		return int(float64(round) * 0.3)
	}
	return 1
}

func (n *CompliantNode) SendToFollowers() TxSet {
	n.round++
	threshold := n.threshold(n.round)
	forward := NewTxSet()
	for tx, count := range n.seen {
		if count >= threshold {
			forward.Add(tx)
		}
	}
	return forward
}

// ReceiveFromFollowees counts each transaction once per round, however
// many followees proposed it.
func (n *CompliantNode) ReceiveFromFollowees(candidates []Candidate) {
	round := NewTxSet()
	for _, c := range candidates {
		round.Add(c.Tx)
	}
	for tx := range round {
		n.pending.Add(tx)
		n.seen[tx]++
	}
}
