// Package state is the core API for the node and ties the ledger, the peer
// set, and the consensus transport together for the application layers.
package state

import (
	"errors"
	"fmt"

	"github.com/openledger/blockchain/foundation/blockchain/block"
	"github.com/openledger/blockchain/foundation/blockchain/consensus"
	"github.com/openledger/blockchain/foundation/blockchain/ledger"
	"github.com/openledger/blockchain/foundation/blockchain/peer"
	"github.com/openledger/blockchain/foundation/blockchain/validate"
)

// EventHandler defines a function that is called when events occur in the
// processing of the node.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for background mining and chain resolution.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
	SignalResolve()
}

// =============================================================================

// Config represents the configuration required to start the node state.
type Config struct {
	Host       string
	Difficulty int
	KnownPeers *peer.Set
	Transport  consensus.Transport
	EvHandler  EventHandler
}

// State manages the blockchain node.
type State struct {
	host       string
	evHandler  EventHandler
	ledger     *ledger.Ledger
	knownPeers *peer.Set
	transport  consensus.Transport

	Worker Worker
}

// New constructs the state for node management. The ledger seals its genesis
// block here, so a constructed state always carries a chain of length one.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Difficulty < 1 {
		return nil, fmt.Errorf("difficulty must be at least 1, got %d", cfg.Difficulty)
	}
	if cfg.Transport == nil {
		return nil, errors.New("a transport is required")
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewSet()
	}

	state := State{
		host:       cfg.Host,
		evHandler:  ev,
		ledger:     ledger.New(cfg.Difficulty, ledger.EventHandler(ev)),
		knownPeers: knownPeers,
		transport:  cfg.Transport,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start the background operations.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// Host returns this node's own network address.
func (s *State) Host() string {
	return s.host
}

// Difficulty returns the proof of work difficulty the node runs at.
func (s *State) Difficulty() int {
	return s.ledger.Difficulty()
}

// SubmitTransaction validates the transaction and adds it to the pending
// pool, returning the advisory index of the block that will carry it.
func (s *State) SubmitTransaction(sender string, recipient string, amount uint64, extra map[string]string) (uint64, error) {
	index, err := s.ledger.AddTransaction(sender, recipient, amount, extra)
	if err != nil {
		return 0, err
	}

	s.evHandler("state: SubmitTransaction: accepted: %s -> %s: %d", sender, recipient, amount)

	return index, nil
}

// RetrieveChain returns a copy of the current chain.
func (s *State) RetrieveChain() []block.Block {
	return s.ledger.Chain()
}

// RetrieveLatestBlock returns the block at the tail of the chain.
func (s *State) RetrieveLatestBlock() block.Block {
	return s.ledger.LastBlock()
}

// RetrievePending returns a copy of the pending transaction pool.
func (s *State) RetrievePending() []block.Tx {
	return s.ledger.Pending()
}

// PendingCount returns the number of transactions waiting to be mined.
func (s *State) PendingCount() int {
	return s.ledger.PendingCount()
}

// Validate runs the chain validity walk over the local chain.
func (s *State) Validate() bool {
	return validate.Chain(s.ledger.Chain(), s.ledger.Difficulty())
}
