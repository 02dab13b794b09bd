package public

import (
	"github.com/openledger/blockchain/foundation/blockchain/block"
	"github.com/openledger/blockchain/foundation/blockchain/peer"
)

// newTx is what clients submit to add a transaction to the pending pool.
type newTx struct {
	Sender    string            `json:"sender" validate:"required"`
	Recipient string            `json:"recipient" validate:"required"`
	Amount    uint64            `json:"amount"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// chain is the wire form of the inter-node chain exchange. The block and
// transaction encodings inside it are frozen; see the block package.
type chain struct {
	Chain  []block.Block `json:"chain"`
	Length int           `json:"length"`
}

// txAck reports where a submitted transaction is expected to land.
type txAck struct {
	Status string `json:"status"`
	Index  uint64 `json:"index"`
}

// registerAck reports the peer membership after a registration call.
type registerAck struct {
	Status     string      `json:"status"`
	TotalNodes []peer.Peer `json:"total_nodes"`
}

// resolveAck reports the outcome of a consensus resolution.
type resolveAck struct {
	Replaced bool          `json:"replaced"`
	Chain    []block.Block `json:"chain"`
	Length   int           `json:"length"`
}

// statusInfo reports a summary of the node's current state.
type statusInfo struct {
	LatestBlockHash  string      `json:"latest_block_hash"`
	LatestBlockIndex uint64      `json:"latest_block_index"`
	ChainLength      int         `json:"chain_length"`
	PendingTxs       int         `json:"pending_txs"`
	KnownPeers       []peer.Peer `json:"known_peers"`
}
