package state

import (
	"context"

	"github.com/openledger/blockchain/foundation/blockchain/consensus"
	"github.com/openledger/blockchain/foundation/blockchain/peer"
)

// RegisterPeer normalizes the specified address and adds it to the known
// peer set. Registration is idempotent.
func (s *State) RegisterPeer(address string) (peer.Peer, error) {
	pr, err := peer.Parse(address)
	if err != nil {
		return peer.Peer{}, err
	}

	if s.knownPeers.Add(pr) {
		s.evHandler("state: RegisterPeer: added peer[%s]", pr.Host)
	}

	return pr, nil
}

// KnownPeers returns the current set of known peers, excluding this node.
func (s *State) KnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// Resolve runs the longest-valid-chain consensus over the known peers and
// reports whether the local chain was replaced.
func (s *State) Resolve(ctx context.Context) bool {
	s.evHandler("state: Resolve: started")
	defer s.evHandler("state: Resolve: completed")

	return consensus.Resolve(ctx, s.ledger, s.KnownPeers(), s.transport, s.evHandler)
}
