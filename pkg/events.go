package chain

// Chain event types

// bus.Send(CHAIN_BLOCK_ACCEPTED, BlockEvent{...})
// bus.Send(POOL_TX_ADDED, TxEvent{...})

// Interface for any event
type EventType interface {
	Type() string
}

// slice of all msg types for config funcs lookup
var EVENT_TYPES []EventType = []EventType{EVENT_ALL("ALL"),
	EVENT_SYS("SYS"),
	EVENT_CHAIN("CHAIN"),
	EVENT_POOL("POOL")}

// Special category, do not use directly, represents *
type EVENT_ALL string

func (e EVENT_ALL) Type() string {
	return "ALL"
}

// System Events
type EVENT_SYS string

func (e EVENT_SYS) Type() string {
	return "SYS"
}

const (
	SYS_STARTUP EVENT_SYS = "STARTUP"
	SYS_ERR     EVENT_SYS = "ERR"
	SYS_MSG     EVENT_SYS = "MSG"
)

// Block tree events
type EVENT_CHAIN string

func (e EVENT_CHAIN) Type() string {
	return "CHAIN"
}

const (
	CHAIN_BLOCK_ACCEPTED EVENT_CHAIN = "BLOCK_ACCEPTED"
	CHAIN_BLOCK_REJECTED EVENT_CHAIN = "BLOCK_REJECTED"
	CHAIN_TIP_CHANGED    EVENT_CHAIN = "TIP_CHANGED"
	CHAIN_PRUNED         EVENT_CHAIN = "PRUNED"
)

// Transaction pool events
type EVENT_POOL string

func (e EVENT_POOL) Type() string {
	return "POOL"
}

const (
	POOL_TX_ADDED EVENT_POOL = "TX_ADDED"
)

// Event payloads

type BlockEvent struct {
	Hash   Hash  `json:"hash"`
	Prev   *Hash `json:"prev,omitempty"`
	Height int   `json:"height"`
	Txs    int   `json:"txs"`
}

type RejectEvent struct {
	Hash   Hash      `json:"hash"`
	Code   ErrorCode `json:"code"`
	Reason string    `json:"reason"`
}

type TipEvent struct {
	Hash   Hash `json:"hash"`
	Height int  `json:"height"`
}

type PruneEvent struct {
	Height  int `json:"height"`  // heights up to and including this are pruned
	Removed int `json:"removed"` // side-branch blocks discarded
}

type TxEvent struct {
	Hash    Hash `json:"hash"`
	Inputs  int  `json:"inputs"`
	Outputs int  `json:"outputs"`
}
