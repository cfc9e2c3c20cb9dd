package chain

type API struct {
	Chain  *BlockChain
	Bus    MessageBus
	Config Config
}

func NewAPI(bc *BlockChain, bus MessageBus, config Config) API {
	return API{Chain: bc, Bus: bus, Config: config}
}

type TipInfo struct {
	Hash      Hash `json:"hash"`
	Height    int  `json:"height"`
	Txs       int  `json:"txs"`
	UTXOs     int  `json:"utxos"`
	Retained  int  `json:"retained"`
	CutOffAge int  `json:"cut_off_age"`
}

type BlockResponse struct {
	Height int    `json:"height"`
	Block  *Block `json:"block"`
}

type UTXOEntry struct {
	UTXO
	Output
}

type UTXOListResponse struct {
	Items   []UTXOEntry `json:"items"`
	Balance Amount      `json:"balance"`
}

type MempoolResponse struct {
	Items []*Transaction `json:"items"`
}

type SubmitResponse struct {
	Hash Hash `json:"hash"`
}

type MineResponse struct {
	Hash   Hash `json:"hash"`
	Height int  `json:"height"`
	Txs    int  `json:"txs"`
}

func (a API) GetTip() TipInfo {
	return a.Chain.Tip()
}

func (a API) GetBlock(hash Hash) (BlockResponse, error) {
	block, height, err := a.Chain.GetBlock(hash)
	if err != nil {
		return BlockResponse{}, err
	}
	return BlockResponse{Height: height, Block: block}, nil
}

// ListUTXOs lists the tip's unspent outputs, optionally only those owned
// by address.
func (a API) ListUTXOs(address Address) UTXOListResponse {
	utxos := a.Chain.GetMaxHeightUTXOPool()
	items := []UTXOEntry{} // encoded as '[]' in JSON
	balance := ZeroCoins
	for _, u := range utxos.All() {
		out, _ := utxos.Get(u)
		if address != "" && out.Address != address {
			continue
		}
		items = append(items, UTXOEntry{u, out})
		balance = balance.Add(out.Value)
	}
	return UTXOListResponse{Items: items, Balance: balance}
}

func (a API) ListMempool() MempoolResponse {
	return MempoolResponse{Items: a.Chain.GetTransactionPool().All()}
}

// SubmitTransaction stages tx in the mempool under its recomputed hash.
func (a API) SubmitTransaction(tx *Transaction) (SubmitResponse, error) {
	if tx == nil || len(tx.Inputs) == 0 || len(tx.Outputs) == 0 {
		return SubmitResponse{}, NewErr(BadRequest, "transaction needs inputs and outputs")
	}
	tx.Finalize()
	a.Chain.AddTransaction(tx)
	return SubmitResponse{Hash: tx.Hash}, nil
}

// SubmitBlock recomputes every identifier in block before handing it to
// the tree, so a client cannot claim a hash the content does not have.
func (a API) SubmitBlock(block *Block) (BlockResponse, error) {
	if block == nil || block.Coinbase == nil {
		return BlockResponse{}, NewErr(BadRequest, "block has no coinbase")
	}
	block.Coinbase.Finalize()
	for _, tx := range block.Txs {
		if tx == nil {
			return BlockResponse{}, NewErr(BadRequest, "block contains an empty transaction")
		}
		tx.Finalize()
	}
	block.Finalize()
	if err := a.Chain.Submit(block); err != nil {
		return BlockResponse{}, err
	}
	return a.GetBlock(block.Hash)
}

// Mine assembles a block on the tip from the mempool and submits it.
func (a API) Mine(address Address) (MineResponse, error) {
	if address == "" {
		address = Address(a.Config.Miner.Address)
	}
	if address == "" {
		return MineResponse{}, NewErr(BadRequest, "no miner address")
	}
	policy, err := a.Config.SelectionPolicy()
	if err != nil {
		return MineResponse{}, err
	}
	reward, err := a.Config.Reward()
	if err != nil {
		return MineResponse{}, err
	}
	block := a.Chain.AssembleBlock(address, reward, policy)
	if err := a.Chain.Submit(block); err != nil {
		return MineResponse{}, err
	}
	_, height, err := a.Chain.GetBlock(block.Hash)
	if err != nil {
		return MineResponse{}, err
	}
	return MineResponse{Hash: block.Hash, Height: height, Txs: len(block.Txs)}, nil
}
