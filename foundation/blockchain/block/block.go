// Package block defines the block and transaction types for the ledger and
// the canonical encoding used to hash them.
//
// The canonical encoding is part of the wire protocol. Struct fields are
// declared in lexicographic json-key order since encoding/json writes struct
// fields in declaration order and sorts map keys. Timestamps are integer Unix
// seconds in UTC, amounts are unsigned decimal integers, and digests are
// sha256 rendered as bare lowercase hex. Two nodes that disagree on any of
// this compute different hashes for the same logical block and consensus
// between them breaks.
package block

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// GenesisPrevHash is the previous hash sentinel carried by the genesis block.
const GenesisPrevHash = "0"

// GenesisProof is the fixed proof value carried by the genesis block.
const GenesisProof = 1

// =============================================================================

// Tx represents a transfer between two parties. Extra carries optional open
// ended scalar fields submitted with the transaction; it is a map of strings
// so the canonical encoding stays well defined.
type Tx struct {
	Amount    uint64            `json:"amount"`
	Extra     map[string]string `json:"extra,omitempty"`
	Recipient string            `json:"recipient"`
	Sender    string            `json:"sender"`
	TimeStamp uint64            `json:"timestamp"`
}

// NewTx constructs a transaction stamped with the current UTC time.
func NewTx(sender string, recipient string, amount uint64, extra map[string]string) Tx {
	return Tx{
		Amount:    amount,
		Extra:     extra,
		Recipient: recipient,
		Sender:    sender,
		TimeStamp: uint64(time.Now().UTC().Unix()),
	}
}

// =============================================================================

// Block represents a group of transactions sealed together. A block never
// stores its own hash; it is always recomputed from the fields below.
type Block struct {
	Index     uint64 `json:"index"`
	PrevHash  string `json:"previous_hash"`
	Proof     uint64 `json:"proof"`
	TimeStamp uint64 `json:"timestamp"`
	Trans     []Tx   `json:"transactions"`
}

// Hash returns the unique hash for the block from its canonical encoding.
func Hash(b Block) string {
	data, err := json.Marshal(b)
	if err != nil {

		// The block types only carry strings, integers and maps of strings.
		// A marshal failure means a broken invariant, not a recoverable error.
		panic(err)
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
