package chain

// Verifier is the signature capability: does signature authorise message
// on behalf of address? keys.Verifier is the production implementation.
type Verifier interface {
	Verify(address Address, message []byte, signature []byte) bool
}

// VerifierFunc adapts a plain function to Verifier.
type VerifierFunc func(address Address, message []byte, signature []byte) bool

func (f VerifierFunc) Verify(address Address, message []byte, signature []byte) bool {
	return f(address, message, signature)
}

// RejectReason says which validity rule a transaction broke.
type RejectReason int

const (
	Valid          RejectReason = iota
	UnknownUTXO                 // claimed output missing from the set (unknown or already spent)
	BadSignature                // signature does not authorise the spend
	DoubleSpend                 // same UTXO claimed twice by one transaction
	NegativeOutput              // an output value below zero
	ValueImbalance              // outputs worth more than inputs
)

func (r RejectReason) String() string {
	switch r {
	case Valid:
		return "valid"
	case UnknownUTXO:
		return "unknown-utxo"
	case BadSignature:
		return "bad-signature"
	case DoubleSpend:
		return "double-spend"
	case NegativeOutput:
		return "negative-output"
	case ValueImbalance:
		return "value-imbalance"
	}
	return "unknown"
}

// TxValidator checks transactions against a UTXOSet. It never mutates the set.
type TxValidator struct {
	verifier Verifier
}

func NewTxValidator(verifier Verifier) TxValidator {
	return TxValidator{verifier: verifier}
}

// Check applies the validity rules and returns the first one broken:
// inputs are scanned in order for (1) presence in pool, (2) signature,
// (3) repeated claims; then outputs for (4) negative values; finally
// (5) the input sum must cover the output sum.
func (v TxValidator) Check(pool *UTXOSet, tx *Transaction) RejectReason {
	inputSum := ZeroCoins
	outputSum := ZeroCoins
	seen := make(map[UTXO]struct{}, len(tx.Inputs))

	for i, in := range tx.Inputs {
		utxo := in.UTXO()
		out, found := pool.Get(utxo)
		if !found {
			return UnknownUTXO
		}
		if !v.verifier.Verify(out.Address, tx.RawDataToSign(i), in.Signature) {
			return BadSignature
		}
		if _, dup := seen[utxo]; dup {
			return DoubleSpend
		}
		seen[utxo] = struct{}{}
		inputSum = inputSum.Add(out.Value)
	}

	for _, out := range tx.Outputs {
		if out.Value.IsNegative() {
			return NegativeOutput
		}
		outputSum = outputSum.Add(out.Value)
	}

	if inputSum.LessThan(outputSum) {
		return ValueImbalance
	}
	return Valid
}

func (v TxValidator) IsValid(pool *UTXOSet, tx *Transaction) bool {
	return v.Check(pool, tx) == Valid
}

// Fee is the surplus of claimed input value over output value, never below
// zero. It is advisory and never fails: a missing input or any other fault
// yields zero.
func (v TxValidator) Fee(pool *UTXOSet, tx *Transaction) (fee Amount) {
	defer func() {
		if r := recover(); r != nil {
			fee = ZeroCoins
		}
	}()
	inputSum := ZeroCoins
	for _, in := range tx.Inputs {
		out, found := pool.Get(in.UTXO())
		if !found {
			return ZeroCoins
		}
		inputSum = inputSum.Add(out.Value)
	}
	outputSum := ZeroCoins
	for _, out := range tx.Outputs {
		outputSum = outputSum.Add(out.Value)
	}
	diff := inputSum.Sub(outputSum)
	if diff.IsNegative() {
		return ZeroCoins
	}
	return diff
}
