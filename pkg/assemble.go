package chain

// AssembleBlock builds a finalized block on the current tip paying reward
// to address. Pending transactions are offered to a handler running policy
// against a copy of the tip state that already holds the new coinbase, in
// hash order; the accepted ones go into the block in acceptance order.
//
// The block is not submitted. If the tip moves before it is, Submit
// re-checks everything against the block's parent.
func (bc *BlockChain) AssembleBlock(address Address, reward Amount, policy Policy) *Block {
	bc.lock.RLock()
	tip := bc.tip.block.Hash
	utxos := bc.tip.utxos.Clone()
	bc.lock.RUnlock()

	block := NewBlock(&tip, address, reward)
	utxos.AddCoinbase(block.Coinbase)

	handler := NewTxHandler(bc.verifier, policy)
	accepted := handler.HandleTxs(utxos, bc.txPool.All())
	prometheusTxsSelected.WithLabelValues(policy.String()).Add(float64(len(accepted)))
	for _, tx := range accepted {
		block.AddTransaction(tx)
	}
	block.Finalize()

	bc.log.Debug().Str("parent", tip.Short()).Str("policy", policy.String()).
		Int("pending", bc.txPool.Len()).Int("selected", len(accepted)).Msg("ForkTree: block assembled")
	return block
}
