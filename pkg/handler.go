package chain

// Policy selects how TxHandler picks transactions from a batch.
type Policy int

const (
	// FirstValid makes one left-to-right pass, accepting each candidate
	// valid against the set as mutated by earlier acceptances.
	FirstValid Policy = iota
	// MaxFee repeatedly accepts the valid candidate with the highest fee
	// (first encountered wins ties) until none is valid.
	MaxFee
)

func (p Policy) String() string {
	switch p {
	case FirstValid:
		return "first-valid"
	case MaxFee:
		return "max-fee"
	}
	return "unknown"
}

func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "first-valid":
		return FirstValid, nil
	case "max-fee":
		return MaxFee, nil
	}
	return FirstValid, NewErr(BadRequest, "unknown selection policy: %q", name)
}

// TxHandler turns a batch of candidate transactions into a mutually valid
// accepted list, mutating the UTXOSet it is given.
type TxHandler struct {
	validator TxValidator
	policy    Policy
}

func NewTxHandler(verifier Verifier, policy Policy) TxHandler {
	return TxHandler{validator: NewTxValidator(verifier), policy: policy}
}

func (h TxHandler) Validator() TxValidator {
	return h.validator
}

func (h TxHandler) Policy() Policy {
	return h.policy
}

// HandleTxs returns the accepted transactions in acceptance order. pool is
// updated for every accepted transaction; rejected ones leave no trace.
// Nil candidates are never accepted.
func (h TxHandler) HandleTxs(pool *UTXOSet, candidates []*Transaction) []*Transaction {
	switch h.policy {
	case MaxFee:
		return h.selectMaxFee(pool, candidates)
	default:
		return h.selectFirstValid(pool, candidates)
	}
}

func (h TxHandler) selectFirstValid(pool *UTXOSet, candidates []*Transaction) []*Transaction {
	accepted := []*Transaction{}
	for _, tx := range candidates {
		if tx != nil && h.validator.IsValid(pool, tx) {
			applyTx(pool, tx)
			accepted = append(accepted, tx)
		}
	}
	return accepted
}

// selectMaxFee re-checks every remaining candidate on every round, so it is
// O(n²) validity checks for n candidates.
// TODO: index candidates by the UTXOs they claim so a round only re-checks
// transactions touched by the previous acceptance (must keep the
// first-encountered tie-break).
func (h TxHandler) selectMaxFee(pool *UTXOSet, candidates []*Transaction) []*Transaction {
	remaining := make([]*Transaction, 0, len(candidates))
	for _, tx := range candidates {
		if tx != nil {
			remaining = append(remaining, tx)
		}
	}
	accepted := []*Transaction{}
	for {
		best := -1
		bestFee := ZeroCoins
		for i, tx := range remaining {
			if !h.validator.IsValid(pool, tx) {
				continue
			}
			fee := h.validator.Fee(pool, tx)
			if best < 0 || fee.GreaterThan(bestFee) {
				best, bestFee = i, fee
			}
		}
		if best < 0 {
			return accepted
		}
		tx := remaining[best]
		remaining = append(remaining[:best], remaining[best+1:]...)
		applyTx(pool, tx)
		accepted = append(accepted, tx)
	}
}

// applyTx spends the claimed UTXOs and credits the outputs.
func applyTx(pool *UTXOSet, tx *Transaction) {
	for _, in := range tx.Inputs {
		pool.Remove(in.UTXO())
	}
	for i, out := range tx.Outputs {
		pool.Add(tx.OutputUTXO(i), out)
	}
}
