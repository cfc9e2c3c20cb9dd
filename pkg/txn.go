package chain

import (
	"github.com/dogecoinfoundation/forkchain/pkg/keys"
)

// Input claims one UTXO; Signature authorises the spend.
type Input struct {
	PrevTxHash  Hash   `json:"prev_tx"`
	OutputIndex uint32 `json:"vout"`
	Signature   []byte `json:"sig,omitempty"`
}

func (in Input) UTXO() UTXO {
	return UTXO{TxHash: in.PrevTxHash, Index: in.OutputIndex}
}

// Transaction moves value from claimed UTXOs to new outputs.
// A coinbase transaction has no inputs and carries a Coinbase tag instead.
// Hash is only meaningful after Finalize, which must be called once all
// signatures are affixed.
type Transaction struct {
	Inputs   []Input  `json:"inputs"`
	Outputs  []Output `json:"outputs"`
	Coinbase []byte   `json:"coinbase,omitempty"`
	Hash     Hash     `json:"hash"`
}

func NewTransaction() *Transaction {
	return &Transaction{Inputs: []Input{}, Outputs: []Output{}}
}

// NewCoinbase creates a finalized coinbase paying value to address.
// The tag keeps coinbases on different parents from sharing an identifier.
func NewCoinbase(tag []byte, address Address, value Amount) *Transaction {
	tx := &Transaction{
		Inputs:   []Input{},
		Outputs:  []Output{{Address: address, Value: value}},
		Coinbase: append([]byte{}, tag...),
	}
	tx.Finalize()
	return tx
}

func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 0 && len(tx.Coinbase) > 0
}

func (tx *Transaction) AddInput(prevTxHash Hash, outputIndex uint32) {
	tx.Inputs = append(tx.Inputs, Input{PrevTxHash: prevTxHash, OutputIndex: outputIndex})
}

func (tx *Transaction) AddOutput(address Address, value Amount) {
	tx.Outputs = append(tx.Outputs, Output{Address: address, Value: value})
}

func (tx *Transaction) AddSignature(index int, signature []byte) {
	tx.Inputs[index].Signature = signature
}

// SignInput signs input index with key (the owner of the claimed output).
func (tx *Transaction) SignInput(index int, key *keys.PrivateKey) {
	tx.AddSignature(index, key.Sign(tx.RawDataToSign(index)))
}

// RawDataToSign is the message the owner of input index signs: the input
// index, every claimed outpoint, every output and the coinbase tag.
// Signatures are excluded, so signing one input never changes another
// input's message. Returns nil for an index out of range.
func (tx *Transaction) RawDataToSign(index int) []byte {
	if index < 0 || index >= len(tx.Inputs) {
		return nil
	}
	w := rawWriter{}
	w.uvarint(uint64(index))
	w.uvarint(uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		w.outpoint(in)
	}
	w.outputs(tx.Outputs)
	w.bytes(tx.Coinbase)
	return w.b
}

// RawTx is the full canonical encoding, signatures included.
func (tx *Transaction) RawTx() []byte {
	w := rawWriter{}
	w.uvarint(uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		w.outpoint(in)
		w.bytes(in.Signature)
	}
	w.outputs(tx.Outputs)
	w.bytes(tx.Coinbase)
	return w.b
}

func (tx *Transaction) Finalize() {
	tx.Hash = Hash(keys.DoubleSha256(tx.RawTx()))
}

// OutputUTXO is the UTXO that output index of tx becomes once accepted.
func (tx *Transaction) OutputUTXO(index int) UTXO {
	return UTXO{TxHash: tx.Hash, Index: uint32(index)}
}
