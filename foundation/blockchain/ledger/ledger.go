// Package ledger owns the chain of sealed blocks and the pool of pending
// transactions, and is the only place either is mutated.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openledger/blockchain/foundation/blockchain/block"
	"github.com/openledger/blockchain/foundation/blockchain/pow"
)

// ErrInvalidInput is returned when a submitted transaction carries malformed
// fields. The transaction never enters the pool.
var ErrInvalidInput = errors.New("invalid transaction input")

// ErrChainMoved is returned by Mine when the chain tail changed while the
// proof search was running, which happens when a consensus resolution
// replaces the chain mid-search. The found proof no longer extends the
// current tail and is discarded.
var ErrChainMoved = errors.New("chain changed during mining")

// EventHandler defines a function that is called when events occur in the
// processing of the ledger.
type EventHandler func(v string, args ...any)

// =============================================================================

// Ledger manages the chain and the pending pool. One mutex serializes every
// mutation point (AddTransaction, SealBlock, the sealing step of Mine, and
// ReplaceIfLonger). The proof search inside Mine runs without the lock and
// the tail is re-verified before sealing, so readers stay responsive during
// a search and a chain replacement mid-search can never produce an
// inconsistent block.
type Ledger struct {
	mu         sync.Mutex
	chain      []block.Block
	pending    []block.Tx
	difficulty int
	evHandler  EventHandler
}

// New constructs a ledger and seals the genesis block. The difficulty is
// fixed for the life of the ledger.
func New(difficulty int, evHandler EventHandler) *Ledger {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	l := Ledger{
		difficulty: difficulty,
		evHandler:  ev,
	}

	ev("ledger: new: sealing genesis block")
	l.sealBlock(block.GenesisProof, block.GenesisPrevHash)

	return &l
}

// Difficulty returns the number of leading zero hex characters required by
// the proof of work.
func (l *Ledger) Difficulty() int {
	return l.difficulty
}

// =============================================================================

// AddTransaction validates the transaction fields and appends the transaction
// to the pending pool. It returns the index of the block that will contain
// the transaction once mined. That index is advisory only; pool growth or a
// chain replacement before the next mine can change which block actually
// carries it.
func (l *Ledger) AddTransaction(sender string, recipient string, amount uint64, extra map[string]string) (uint64, error) {
	if sender == "" {
		return 0, fmt.Errorf("sender is required: %w", ErrInvalidInput)
	}
	if recipient == "" {
		return 0, fmt.Errorf("recipient is required: %w", ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx := block.NewTx(sender, recipient, amount, extra)
	l.pending = append(l.pending, tx)

	next := l.chain[len(l.chain)-1].Index + 1
	l.evHandler("ledger: AddTransaction: %s -> %s: %d: pool[%d]", sender, recipient, amount, len(l.pending))

	return next, nil
}

// LastBlock returns the block at the tail of the chain.
func (l *Ledger) LastBlock() block.Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.lastBlock()
}

// Chain returns a copy of the current chain.
func (l *Ledger) Chain() []block.Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	chain := make([]block.Block, len(l.chain))
	copy(chain, l.chain)

	return chain
}

// Pending returns a copy of the pending transaction pool in insertion order.
func (l *Ledger) Pending() []block.Tx {
	l.mu.Lock()
	defer l.mu.Unlock()

	pending := make([]block.Tx, len(l.pending))
	copy(pending, l.pending)

	return pending
}

// PendingCount returns the number of transactions waiting to be mined.
func (l *Ledger) PendingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.pending)
}

// =============================================================================

// SealBlock builds a new block from the current pool contents and the given
// proof, appends it to the chain, and clears the pool. When prevHash is empty
// it is computed from the last block. This is the single mutation point for
// the chain's length.
func (l *Ledger) SealBlock(proof uint64, prevHash string) block.Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.sealBlock(proof, prevHash)
}

// Mine performs the local work that admits a new block: it searches for a
// proof over the last block's proof, links the new block to the hash of the
// last block, and seals the pool into it. The search runs without the lock
// so readers stay responsive; before sealing, the tail is re-verified under
// the lock and ErrChainMoved is returned if a replacement shifted it while
// the search ran. The search can be cancelled through ctx.
func (l *Ledger) Mine(ctx context.Context) (block.Block, error) {
	last := l.LastBlock()
	prevHash := block.Hash(last)

	proof, err := pow.Search(ctx, last.Proof, l.difficulty, l.evHandler)
	if err != nil {
		return block.Block{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if block.Hash(l.lastBlock()) != prevHash {
		l.evHandler("ledger: Mine: tail moved during search: discarding proof[%d]", proof)
		return block.Block{}, ErrChainMoved
	}

	return l.sealBlock(proof, prevHash), nil
}

// ReplaceIfLonger swaps the local chain for the specified one, but only while
// the candidate is still strictly longer than the local chain. The length
// re-check runs under the lock so a block mined while candidates were being
// fetched can never be overwritten by a chain that is no longer ahead. The
// pending pool is left untouched. It reports whether the replacement
// happened.
func (l *Ledger) ReplaceIfLonger(chain []block.Block) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(chain) <= len(l.chain) {
		l.evHandler("ledger: ReplaceIfLonger: candidate length[%d] not longer than local[%d]", len(chain), len(l.chain))
		return false
	}

	l.chain = make([]block.Block, len(chain))
	copy(l.chain, chain)

	l.evHandler("ledger: ReplaceIfLonger: chain replaced: length[%d]", len(l.chain))

	return true
}

// =============================================================================

// lastBlock returns the chain tail. The caller must hold the mutex. An empty
// chain after construction is a broken invariant the node cannot recover from.
func (l *Ledger) lastBlock() block.Block {
	if len(l.chain) == 0 {
		panic("ledger: chain is empty after construction")
	}

	return l.chain[len(l.chain)-1]
}

// sealBlock appends a new block built from the current pool and clears the
// pool. The caller must hold the mutex; the genesis seal during construction
// is the one exception, before the ledger is shared.
func (l *Ledger) sealBlock(proof uint64, prevHash string) block.Block {
	if prevHash == "" {
		prevHash = block.Hash(l.lastBlock())
	}

	trans := l.pending
	if trans == nil {
		trans = []block.Tx{}
	}

	b := block.Block{
		Index:     uint64(len(l.chain)) + 1,
		PrevHash:  prevHash,
		Proof:     proof,
		TimeStamp: uint64(time.Now().UTC().Unix()),
		Trans:     trans,
	}

	l.pending = nil
	l.chain = append(l.chain, b)

	l.evHandler("ledger: sealBlock: sealed block[%d] txs[%d]", b.Index, len(b.Trans))

	return b
}
