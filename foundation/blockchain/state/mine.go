package state

import (
	"context"
	"errors"

	"github.com/openledger/blockchain/foundation/blockchain/block"
)

// ErrNoTransactions is returned when a block is requested to be mined and
// the pending pool is empty.
var ErrNoTransactions = errors.New("no transactions in the pending pool")

// MineNewBlock attempts to seal the pending pool into the next block by
// performing the proof of work search. The search can be cancelled through
// ctx. This is the only path by which a block other than genesis enters the
// chain through local work.
func (s *State) MineNewBlock(ctx context.Context) (block.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: check pool count")

	// Are there transactions in the pool to seal.
	if s.ledger.PendingCount() == 0 {
		return block.Block{}, ErrNoTransactions
	}

	s.evHandler("state: MineNewBlock: MINING: perform POW")

	b, err := s.ledger.Mine(ctx)
	if err != nil {
		return block.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return block.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: sealed block[%d] txs[%d]", b.Index, len(b.Trans))

	return b, nil
}
