/*
Package gossip is the broadcast/threshold-forwarding exercise that sits
beside the ledger: nodes in a random follow graph exchange transaction
identifiers for a number of rounds and should end up agreeing on a set,
despite some nodes misbehaving.
*/
package gossip

import (
	"sort"

	chain "github.com/dogecoinfoundation/forkchain/pkg"
)

// TxSet is a set of transaction identifiers.
type TxSet map[chain.Hash]struct{}

func NewTxSet(txs ...chain.Hash) TxSet {
	s := make(TxSet, len(txs))
	for _, tx := range txs {
		s[tx] = struct{}{}
	}
	return s
}

func (s TxSet) Add(tx chain.Hash) {
	s[tx] = struct{}{}
}

func (s TxSet) Has(tx chain.Hash) bool {
	_, ok := s[tx]
	return ok
}

func (s TxSet) Clone() TxSet {
	c := make(TxSet, len(s))
	for tx := range s {
		c[tx] = struct{}{}
	}
	return c
}

// Sorted lists the set in hash order.
func (s TxSet) Sorted() []chain.Hash {
	all := make([]chain.Hash, 0, len(s))
	for tx := range s {
		all = append(all, tx)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Less(all[j]) })
	return all
}

// Candidate is a transaction proposed by the followee Sender.
type Candidate struct {
	Tx     chain.Hash
	Sender int
}

// Node is one participant. Each round the simulation collects
// SendToFollowers from every node, then hands every node the proposals of
// the nodes it follows. After the last round SendToFollowers is the node's
// answer.
type Node interface {
	SetFollowees(followees []bool)
	SetPendingTransactions(pending TxSet)
	SendToFollowers() TxSet
	ReceiveFromFollowees(candidates []Candidate)
}
