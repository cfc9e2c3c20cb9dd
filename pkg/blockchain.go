package chain

import (
	"sync"

	"github.com/rs/zerolog"
)

// DefaultCutOffAge is how many heights behind the tip a new block may
// still attach.
const DefaultCutOffAge = 10

// blockNode is one retained block together with the UTXO set as it stands
// after the block. utxos is owned by the node and never handed out; it is
// nil once the node has fallen below the cut-off line and can no longer be
// extended.
type blockNode struct {
	block  *Block
	height int
	utxos  *UTXOSet
}

// BlockChain is a tree of competing forks rooted at a single genesis
// block. Every retained block carries its own UTXO state, so a spend on one
// branch is invisible to the others. The canonical tip is the highest
// retained block; on equal height the first one seen stays.
//
// Every public method is a single critical section.
type BlockChain struct {
	lock      sync.RWMutex
	nodes     map[Hash]*blockNode
	byHeight  map[int][]Hash
	settled   int // heights <= settled hold one block each and are never swept again
	tip       *blockNode
	cutOffAge int
	prune     bool
	verifier  Verifier
	accept    TxHandler // block acceptance is always first-valid
	txPool    *TransactionPool
	bus       *MessageBus
	log       zerolog.Logger
}

type Option func(*BlockChain)

func WithCutOffAge(age int) Option {
	return func(bc *BlockChain) {
		bc.cutOffAge = age
	}
}

// WithPruning turns eviction of side branches below the cut-off line on or
// off. With pruning off every block ever accepted stays in memory.
func WithPruning(enabled bool) Option {
	return func(bc *BlockChain) {
		bc.prune = enabled
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(bc *BlockChain) {
		bc.log = log
	}
}

func WithMessageBus(bus MessageBus) Option {
	return func(bc *BlockChain) {
		bc.bus = &bus
	}
}

// NewBlockChain starts a tree at genesis. The genesis coinbase is credited,
// then its regular transactions are applied first-valid; genesis itself is
// trusted, so rejected transactions are simply left out of its state.
func NewBlockChain(genesis *Block, verifier Verifier, opts ...Option) (*BlockChain, error) {
	initPrometheusMetrics()
	bc := &BlockChain{
		nodes:     make(map[Hash]*blockNode),
		byHeight:  make(map[int][]Hash),
		settled:   -1,
		cutOffAge: DefaultCutOffAge,
		prune:     true,
		verifier:  verifier,
		accept:    NewTxHandler(verifier, FirstValid),
		txPool:    NewTransactionPool(),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(bc)
	}
	if bc.cutOffAge < 1 {
		return nil, NewErr(BadRequest, "cut-off age must be at least 1, got %d", bc.cutOffAge)
	}
	if verifier == nil {
		return nil, NewErr(BadRequest, "no signature verifier")
	}
	if genesis == nil || genesis.Coinbase == nil {
		return nil, NewErr(BadRequest, "genesis block has no coinbase")
	}

	utxos := NewUTXOSet()
	utxos.AddCoinbase(genesis.Coinbase)
	accepted := bc.accept.HandleTxs(utxos, genesis.Txs)
	if len(accepted) < len(genesis.Txs) {
		bc.log.Warn().Int("accepted", len(accepted)).Int("submitted", len(genesis.Txs)).
			Msg("ForkTree: genesis transactions skipped")
	}

	node := &blockNode{block: genesis, height: 0, utxos: utxos}
	bc.insert(node)
	bc.tip = node
	prometheusTipHeight.Set(0)
	bc.log.Info().Str("genesis", genesis.Hash.Short()).Int("cutOffAge", bc.cutOffAge).
		Bool("prune", bc.prune).Msg("ForkTree: started")
	return bc, nil
}

// AddBlock reports whether block was added to the tree.
func (bc *BlockChain) AddBlock(block *Block) bool {
	return bc.Submit(block) == nil
}

// Submit adds block to the tree or explains why not. A rejected block
// leaves the tree, the tip and the transaction pool untouched.
//
// Rejections: a second genesis (no-parent), a parent that was never seen
// or has been pruned (unknown-parent), a parent at or below tip height
// minus the cut-off age (parent-too-old), any transaction that does not
// apply in order on the parent's state (invalid-txn), a block already in
// the tree (duplicate-block).
func (bc *BlockChain) Submit(block *Block) error {
	bc.lock.Lock()
	defer bc.lock.Unlock()

	node, err := bc.connect(block)
	if err != nil {
		code := ErrorCodeOf(err)
		prometheusBlocksRejected.WithLabelValues(string(code)).Inc()
		if block != nil {
			bc.log.Debug().Str("block", block.Hash.Short()).Str("code", string(code)).Err(err).
				Msg("ForkTree: block rejected")
			bc.publish(CHAIN_BLOCK_REJECTED, RejectEvent{Hash: block.Hash, Code: code, Reason: err.Error()})
		}
		return err
	}

	for _, tx := range block.Txs {
		bc.txPool.Remove(tx.Hash)
	}
	prometheusPoolSize.Set(float64(bc.txPool.Len()))

	bc.insert(node)
	prometheusBlocksAccepted.Inc()
	bc.log.Info().Str("block", block.Hash.Short()).Int("height", node.height).Int("txs", len(block.Txs)).
		Msg("ForkTree: block accepted")
	bc.publish(CHAIN_BLOCK_ACCEPTED, BlockEvent{Hash: block.Hash, Prev: block.PrevBlockHash, Height: node.height, Txs: len(block.Txs)})

	if node.height > bc.tip.height {
		bc.tip = node
		prometheusTipHeight.Set(float64(node.height))
		bc.publish(CHAIN_TIP_CHANGED, TipEvent{Hash: block.Hash, Height: node.height})
		if bc.prune {
			bc.pruneBelowCutOff()
		}
	}
	return nil
}

// connect builds the node for block without touching the tree.
func (bc *BlockChain) connect(block *Block) (*blockNode, error) {
	if block == nil || block.Coinbase == nil {
		return nil, NewErr(BadRequest, "block has no coinbase")
	}
	if !block.Coinbase.IsCoinbase() {
		return nil, NewErr(BadRequest, "block %s coinbase spends inputs", block.Hash.Short())
	}
	if block.PrevBlockHash == nil {
		return nil, NewErr(NoParent, "block %s has no parent, genesis is already set", block.Hash.Short())
	}
	if _, found := bc.nodes[block.Hash]; found {
		return nil, NewErr(DuplicateBlock, "block %s already in the tree", block.Hash.Short())
	}
	parent, found := bc.nodes[*block.PrevBlockHash]
	if !found {
		return nil, NewErr(UnknownParent, "parent %s not found", block.PrevBlockHash.Short())
	}
	if parent.height <= bc.tip.height-bc.cutOffAge || parent.utxos == nil {
		return nil, NewErr(ParentTooOld, "parent height %d is at or below cut-off line %d",
			parent.height, bc.tip.height-bc.cutOffAge)
	}

	utxos := parent.utxos.Clone()
	utxos.AddCoinbase(block.Coinbase)
	accepted := bc.accept.HandleTxs(utxos, block.Txs)
	if len(accepted) < len(block.Txs) {
		return nil, NewErr(InvalidTxn, "only %d of %d transactions apply", len(accepted), len(block.Txs))
	}
	return &blockNode{block: block, height: parent.height + 1, utxos: utxos}, nil
}

func (bc *BlockChain) insert(node *blockNode) {
	hash := node.block.Hash
	bc.nodes[hash] = node
	bc.byHeight[node.height] = append(bc.byHeight[node.height], hash)
	prometheusRetainedBlocks.Set(float64(len(bc.nodes)))
}

// pruneBelowCutOff discards every block at or below the cut-off line that
// has no retained descendant above it, so dead side branches go as whole
// subtrees. Blocks that stay below the line drop their UTXO snapshot: they
// can never be extended again.
//
// Heights up to settled hold a single chain and are not revisited. Every
// other height at or below the line is swept again on each pass, so a
// branch abandoned by a reorg is collected once it sinks below the line.
func (bc *BlockChain) pruneBelowCutOff() {
	line := bc.tip.height - bc.cutOffAge
	if line <= bc.settled {
		return
	}

	// every block above the line descends from one at line+1
	live := make(map[Hash]bool)
	for _, hash := range bc.byHeight[line+1] {
		for n := bc.nodes[hash]; n.block.PrevBlockHash != nil; {
			parent := bc.nodes[*n.block.PrevBlockHash]
			if parent.height <= bc.settled || live[parent.block.Hash] {
				break
			}
			live[parent.block.Hash] = true
			n = parent
		}
	}

	removed := 0
	for h := bc.settled + 1; h <= line; h++ {
		kept := []Hash{}
		for _, hash := range bc.byHeight[h] {
			if live[hash] {
				bc.nodes[hash].utxos = nil
				kept = append(kept, hash)
				continue
			}
			delete(bc.nodes, hash)
			removed++
		}
		bc.byHeight[h] = kept
	}
	for bc.settled < line && len(bc.byHeight[bc.settled+1]) == 1 {
		bc.settled++
	}

	prometheusPrunedBlocks.Add(float64(removed))
	prometheusRetainedBlocks.Set(float64(len(bc.nodes)))
	bc.log.Debug().Int("line", line).Int("removed", removed).Int("settled", bc.settled).
		Msg("ForkTree: pruned")
	bc.publish(CHAIN_PRUNED, PruneEvent{Height: line, Removed: removed})
}

func (bc *BlockChain) publish(t EventType, msg interface{}) {
	if bc.bus == nil {
		return
	}
	if err := bc.bus.Send(t, msg); err != nil {
		bc.log.Warn().Err(err).Msg("ForkTree: event dropped")
	}
}

func (bc *BlockChain) GetMaxHeightBlock() *Block {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	return bc.tip.block
}

// GetMaxHeightUTXOPool returns a copy of the UTXO set after the tip block.
func (bc *BlockChain) GetMaxHeightUTXOPool() *UTXOSet {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	return bc.tip.utxos.Clone()
}

func (bc *BlockChain) GetTransactionPool() *TransactionPool {
	return bc.txPool
}

// AddTransaction stages tx in the mempool. Nothing is validated here; a
// transaction is only checked when a block is assembled or accepted.
func (bc *BlockChain) AddTransaction(tx *Transaction) {
	if tx == nil {
		return
	}
	bc.lock.Lock()
	defer bc.lock.Unlock()
	bc.txPool.Add(tx)
	prometheusPoolSize.Set(float64(bc.txPool.Len()))
	bc.publish(POOL_TX_ADDED, TxEvent{Hash: tx.Hash, Inputs: len(tx.Inputs), Outputs: len(tx.Outputs)})
}

func (bc *BlockChain) GetBlock(hash Hash) (*Block, int, error) {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	node, found := bc.nodes[hash]
	if !found {
		return nil, 0, NewErr(NotFound, "block not found: %s", hash)
	}
	return node.block, node.height, nil
}

// Height is the height of the tip; genesis is height 0.
func (bc *BlockChain) Height() int {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	return bc.tip.height
}

// NodeCount is the number of retained blocks.
func (bc *BlockChain) NodeCount() int {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	return len(bc.nodes)
}

func (bc *BlockChain) CutOffAge() int {
	return bc.cutOffAge
}

// Tip summarises the canonical tip.
func (bc *BlockChain) Tip() TipInfo {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	return TipInfo{
		Hash:      bc.tip.block.Hash,
		Height:    bc.tip.height,
		Txs:       len(bc.tip.block.Txs),
		UTXOs:     bc.tip.utxos.Len(),
		Retained:  len(bc.nodes),
		CutOffAge: bc.cutOffAge,
	}
}
