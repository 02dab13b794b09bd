// Package validate implements the chain validity walk. It is applied with
// identical semantics to the local chain and to any chain received from a
// peer, making it the trust boundary for accepting foreign data.
package validate

import (
	"github.com/openledger/blockchain/foundation/blockchain/block"
	"github.com/openledger/blockchain/foundation/blockchain/pow"
)

// Chain reports whether blocks form a valid chain at the given difficulty.
// The checks run in order and short circuit on the first failure: a non-empty
// chain, a well formed genesis block, then hash linkage and proof of work at
// every subsequent block.
func Chain(blocks []block.Block, difficulty int) bool {
	if len(blocks) == 0 {
		return false
	}

	genesis := blocks[0]
	if genesis.PrevHash != block.GenesisPrevHash || genesis.Proof != block.GenesisProof {
		return false
	}

	for i := 1; i < len(blocks); i++ {
		if blocks[i].PrevHash != block.Hash(blocks[i-1]) {
			return false
		}

		if !pow.Valid(blocks[i-1].Proof, blocks[i].Proof, difficulty) {
			return false
		}
	}

	return true
}
