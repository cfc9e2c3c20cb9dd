package chain

import (
	"github.com/dogecoinfoundation/forkchain/pkg/keys"
)

var genesisTag = []byte("genesis")

// Block is a coinbase plus an ordered list of regular transactions on top
// of PrevBlockHash (nil for the genesis block).
type Block struct {
	PrevBlockHash *Hash          `json:"prev,omitempty"`
	Coinbase      *Transaction   `json:"coinbase"`
	Txs           []*Transaction `json:"txs"`
	Hash          Hash           `json:"hash"`
}

// NewBlock creates an unfinalized block on prev whose coinbase pays reward
// to address. Pass prev == nil for a genesis block.
func NewBlock(prev *Hash, address Address, reward Amount) *Block {
	tag := genesisTag
	if prev != nil {
		p := *prev
		prev = &p
		tag = p[:]
	}
	return &Block{
		PrevBlockHash: prev,
		Coinbase:      NewCoinbase(tag, address, reward),
		Txs:           []*Transaction{},
	}
}

func (b *Block) IsGenesis() bool {
	return b.PrevBlockHash == nil
}

func (b *Block) AddTransaction(tx *Transaction) {
	b.Txs = append(b.Txs, tx)
}

func (b *Block) RawBlock() []byte {
	w := rawWriter{}
	if b.PrevBlockHash != nil {
		w.uvarint(1)
		w.hash(*b.PrevBlockHash)
	} else {
		w.uvarint(0)
	}
	if b.Coinbase != nil {
		w.hash(b.Coinbase.Hash)
	} else {
		w.hash(ZeroHash)
	}
	w.uvarint(uint64(len(b.Txs)))
	for _, tx := range b.Txs {
		if tx != nil {
			w.hash(tx.Hash)
		} else {
			w.hash(ZeroHash)
		}
	}
	return w.b
}

func (b *Block) Finalize() {
	b.Hash = Hash(keys.DoubleSha256(b.RawBlock()))
}

// NewGenesis returns a finalized genesis block paying value to address.
func NewGenesis(address Address, value Amount) *Block {
	b := NewBlock(nil, address, value)
	b.Finalize()
	return b
}
