package gossip

import (
	"math/rand"

	chain "github.com/dogecoinfoundation/forkchain/pkg"
)

type SimParams struct {
	Nodes           int     // number of participants
	PGraph          float64 // probability that a node follows another
	PMalicious      float64 // probability that a node is malicious
	PTxDistribution float64 // probability that a node starts with a given transaction
	Rounds          int
	Transactions    int   // size of the initial transaction universe
	Seed            int64 // same seed, same run
}

func DefaultSimParams() SimParams {
	return SimParams{
		Nodes:           100,
		PGraph:          0.1,
		PMalicious:      0.15,
		PTxDistribution: 0.01,
		Rounds:          10,
		Transactions:    500,
		Seed:            1,
	}
}

type SimResult struct {
	Malicious []bool  // which nodes were malicious
	Final     []TxSet // each node's answer after the last round
}

// Compliant returns the answers of the compliant nodes only.
func (r SimResult) Compliant() []TxSet {
	out := []TxSet{}
	for i, set := range r.Final {
		if !r.Malicious[i] {
			out = append(out, set)
		}
	}
	return out
}

// Agreement is the share of compliant nodes whose answer equals the most
// common compliant answer.
func (r SimResult) Agreement() float64 {
	sets := r.Compliant()
	if len(sets) == 0 {
		return 0
	}
	best := 0
	for i := range sets {
		same := 0
		for j := range sets {
			if equalSets(sets[i], sets[j]) {
				same++
			}
		}
		if same > best {
			best = same
		}
	}
	return float64(best) / float64(len(sets))
}

func equalSets(a, b TxSet) bool {
	if len(a) != len(b) {
		return false
	}
	for tx := range a {
		if !b.Has(tx) {
			return false
		}
	}
	return true
}

// Simulation drives a gossip run over a seeded random follow graph.
type Simulation struct {
	params    SimParams
	rng       *rand.Rand
	nodes     []Node
	malicious []bool
	followees [][]bool // followees[i][j]: node i follows node j
}

// NewSimulation builds the nodes, the follow graph and the initial
// transaction distribution. newNode, when non-nil, replaces the default
// CompliantNode for honest participants.
func NewSimulation(params SimParams, newNode func(numRounds int) Node) *Simulation {
	if newNode == nil {
		newNode = func(numRounds int) Node { return NewCompliantNode(numRounds) }
	}
	s := &Simulation{
		params:    params,
		rng:       rand.New(rand.NewSource(params.Seed)),
		nodes:     make([]Node, params.Nodes),
		malicious: make([]bool, params.Nodes),
		followees: make([][]bool, params.Nodes),
	}

	for i := range s.nodes {
		if s.rng.Float64() < params.PMalicious {
			s.malicious[i] = true
			s.nodes[i] = NewMaliciousNode(params.Rounds)
		} else {
			s.nodes[i] = newNode(params.Rounds)
		}
	}

	for i := range s.followees {
		s.followees[i] = make([]bool, params.Nodes)
		for j := range s.followees[i] {
			if i != j && s.rng.Float64() < params.PGraph {
				s.followees[i][j] = true
			}
		}
		s.nodes[i].SetFollowees(s.followees[i])
	}

	universe := make([]chain.Hash, params.Transactions)
	for i := range universe {
		s.rng.Read(universe[i][:])
	}
	for i := range s.nodes {
		pending := NewTxSet()
		for _, tx := range universe {
			if s.rng.Float64() < params.PTxDistribution {
				pending.Add(tx)
			}
		}
		s.nodes[i].SetPendingTransactions(pending)
	}
	return s
}

// Run plays every round and collects the final answers.
func (s *Simulation) Run() SimResult {
	for round := 0; round < s.params.Rounds; round++ {
		s.step()
	}
	final := make([]TxSet, len(s.nodes))
	for i, n := range s.nodes {
		final[i] = n.SendToFollowers()
	}
	return SimResult{Malicious: s.malicious, Final: final}
}

func (s *Simulation) step() {
	candidates := make([][]Candidate, len(s.nodes))
	for sender, n := range s.nodes {
		for _, tx := range n.SendToFollowers().Sorted() {
			for follower := range s.nodes {
				if s.followees[follower][sender] {
					candidates[follower] = append(candidates[follower], Candidate{Tx: tx, Sender: sender})
				}
			}
		}
	}
	for i, n := range s.nodes {
		n.ReceiveFromFollowees(candidates[i])
	}
}
