package chain

import (
	"sort"
	"sync"
)

// TransactionPool holds pending transactions keyed by hash. Adding a hash
// already present replaces the stored transaction.
type TransactionPool struct {
	mu  sync.RWMutex
	txs map[Hash]*Transaction
}

func NewTransactionPool() *TransactionPool {
	return &TransactionPool{txs: make(map[Hash]*Transaction)}
}

func (p *TransactionPool) Add(tx *Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.txs[tx.Hash] = tx
}

// Remove is a no-op when hash is absent.
func (p *TransactionPool) Remove(hash Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.txs, hash)
}

func (p *TransactionPool) Get(hash Hash) (*Transaction, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tx, ok := p.txs[hash]
	return tx, ok
}

// All returns a snapshot of the pool, ordered by hash.
func (p *TransactionPool) All() []*Transaction {
	p.mu.RLock()
	all := make([]*Transaction, 0, len(p.txs))
	for _, tx := range p.txs {
		all = append(all, tx)
	}
	p.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool {
		return all[i].Hash.Less(all[j].Hash)
	})
	return all
}

func (p *TransactionPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.txs)
}
