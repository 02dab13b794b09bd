// Package peer maintains the set of known peers and the normalization rules
// for peer addresses.
package peer

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
)

// ErrInvalidAddress is returned when an address carries neither a parseable
// network location nor a host:port shaped token.
var ErrInvalidAddress = errors.New("invalid peer address")

// =============================================================================

// Peer represents information about a node in the network. Host is always in
// the normalized host:port form produced by Parse.
type Peer struct {
	Host string `json:"host"`
}

// New constructs a peer from an already normalized host.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// Parse normalizes an address into a peer. Schemed URLs contribute their
// network location; scheme-less inputs like "10.0.0.6:5000" fall back to
// being read as a network location directly.
func Parse(address string) (Peer, error) {
	if u, err := url.Parse(address); err == nil && u.Host != "" {
		return Peer{Host: u.Host}, nil
	}

	u, err := url.Parse("//" + address)
	if err != nil || u.Host == "" || u.Path != "" || u.RawQuery != "" {
		return Peer{}, fmt.Errorf("address %q: %w", address, ErrInvalidAddress)
	}

	return Peer{Host: u.Host}, nil
}

// Match validates if the specified host matches this peer.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// =============================================================================

// Set represents the data representation to maintain a set of known peers.
type Set struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewSet constructs a new set to manage node peer information.
func NewSet() *Set {
	return &Set{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new peer to the set. Re-adding a known peer is a no-op. It
// reports whether the peer was new.
func (s *Set) Add(peer Peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.set[peer]; !exists {
		s.set[peer] = struct{}{}
		return true
	}

	return false
}

// Remove removes a peer from the set.
func (s *Set) Remove(peer Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.set, peer)
}

// Copy returns a list of the known peers, excluding the specified host so a
// node never talks to itself.
func (s *Set) Copy(host string) []Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var peers []Peer
	for peer := range s.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	return peers
}

// Count returns the number of known peers.
func (s *Set) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.set)
}
