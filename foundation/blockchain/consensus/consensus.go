// Package consensus implements the longest-valid-chain rule that lets
// independent nodes converge on one authoritative chain.
package consensus

import (
	"context"
	"sync"

	"github.com/openledger/blockchain/foundation/blockchain/block"
	"github.com/openledger/blockchain/foundation/blockchain/ledger"
	"github.com/openledger/blockchain/foundation/blockchain/peer"
	"github.com/openledger/blockchain/foundation/blockchain/validate"
)

// Transport fetches a peer's chain along with its advertised length.
// Implementations own the per-request timeout; Resolve relies on it so a hung
// peer cannot stall resolution for the others.
type Transport interface {
	FetchChain(ctx context.Context, pr peer.Peer) ([]block.Block, int, error)
}

// maxConcurrentFetches bounds the number of in-flight peer requests so a
// large peer set cannot exhaust sockets.
const maxConcurrentFetches = 8

// Resolve queries every peer for its chain and replaces the local chain with
// the longest valid one found, reporting whether a replacement happened.
//
// Per-peer failures are skipped and never abort the resolution. A candidate
// wins only with a strictly greater length than the best seen so far and a
// passing validity walk, so equal-length chains never displace the local one
// and the first chain observed at the current maximum length stays. The
// final replacement is a compare-and-swap in the ledger, so the winning
// candidate must still be longer than the local chain at the moment of the
// swap.
func Resolve(ctx context.Context, lgr *ledger.Ledger, peers []peer.Peer, t Transport, ev func(v string, args ...any)) bool {
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	type result struct {
		pr     peer.Peer
		chain  []block.Block
		length int
		err    error
	}

	// Fetches run concurrently under a semaphore. Results funnel into one
	// channel so the aggregation below stays serialized.
	results := make(chan result, len(peers))
	sem := make(chan struct{}, maxConcurrentFetches)

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for _, pr := range peers {
		go func(pr peer.Peer) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			chain, length, err := t.FetchChain(ctx, pr)
			results <- result{pr: pr, chain: chain, length: length, err: err}
		}(pr)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	bestLength := len(lgr.Chain())
	var bestChain []block.Block

	for res := range results {
		if res.err != nil {
			ev("consensus: resolve: peer[%s]: skipped: %s", res.pr.Host, res.err)
			continue
		}

		if res.length != len(res.chain) {
			ev("consensus: resolve: peer[%s]: skipped: advertised length[%d] does not match chain[%d]", res.pr.Host, res.length, len(res.chain))
			continue
		}

		if res.length <= bestLength {
			ev("consensus: resolve: peer[%s]: length[%d] not longer than best[%d]", res.pr.Host, res.length, bestLength)
			continue
		}

		if !validate.Chain(res.chain, lgr.Difficulty()) {
			ev("consensus: resolve: peer[%s]: discarded invalid chain of length[%d]", res.pr.Host, res.length)
			continue
		}

		bestLength = res.length
		bestChain = res.chain
		ev("consensus: resolve: peer[%s]: new best chain: length[%d]", res.pr.Host, res.length)
	}

	if bestChain == nil {
		ev("consensus: resolve: local chain is authoritative")
		return false
	}

	// The local chain may have grown while the fetches were in flight. The
	// ledger re-checks the lengths under its lock, so a freshly mined block
	// is never overwritten by a candidate that is no longer ahead.
	if !lgr.ReplaceIfLonger(bestChain) {
		ev("consensus: resolve: local chain grew past the candidate: length[%d]", bestLength)
		return false
	}

	ev("consensus: resolve: chain replaced: length[%d]", bestLength)

	return true
}
