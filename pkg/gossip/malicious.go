package gossip

// MaliciousNode stays silent and ignores everyone, then dumps its initial
// transactions in the second to last round, too late for them to build
// enough sightings.
type MaliciousNode struct {
	numRounds int
	round     int
	pending   TxSet
}

func NewMaliciousNode(numRounds int) *MaliciousNode {
	return &MaliciousNode{numRounds: numRounds, pending: NewTxSet()}
}

func (n *MaliciousNode) SetFollowees(followees []bool) {}

func (n *MaliciousNode) SetPendingTransactions(pending TxSet) {
	n.pending = pending.Clone()
}

func (n *MaliciousNode) SendToFollowers() TxSet {
	n.round++
	if n.round == n.numRounds-1 {
		return n.pending.Clone()
	}
	return NewTxSet()
}

func (n *MaliciousNode) ReceiveFromFollowees(candidates []Candidate) {}
