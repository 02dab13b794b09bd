package ledger_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/openledger/blockchain/foundation/blockchain/block"
	"github.com/openledger/blockchain/foundation/blockchain/ledger"
	"github.com/openledger/blockchain/foundation/blockchain/validate"
)

// Tests run at difficulty 1 so proof searches finish in microseconds.
const testDifficulty = 1

func Test_Genesis(t *testing.T) {
	lgr := ledger.New(testDifficulty, nil)

	chain := lgr.Chain()
	if len(chain) != 1 {
		t.Logf("got: %d", len(chain))
		t.Logf("exp: %d", 1)
		t.Fatal("Should start with exactly the genesis block.")
	}

	genesis := chain[0]
	if genesis.Index != 1 {
		t.Fatalf("Should give the genesis block index 1, got %d.", genesis.Index)
	}
	if genesis.PrevHash != block.GenesisPrevHash {
		t.Fatalf("Should give the genesis block previous hash %q, got %q.", block.GenesisPrevHash, genesis.PrevHash)
	}
	if genesis.Proof != block.GenesisProof {
		t.Fatalf("Should give the genesis block proof %d, got %d.", block.GenesisProof, genesis.Proof)
	}
	if len(genesis.Trans) != 0 {
		t.Fatal("Should seal the genesis block with no transactions.")
	}

	if !validate.Chain(chain, testDifficulty) {
		t.Fatal("Should produce a chain that validates.")
	}
}

func Test_AddTransaction(t *testing.T) {
	lgr := ledger.New(testDifficulty, nil)

	index, err := lgr.AddTransaction("A", "B", 10, nil)
	if err != nil {
		t.Fatalf("Should accept the transaction: %s", err)
	}

	if index != 2 {
		t.Logf("got: %d", index)
		t.Logf("exp: %d", 2)
		t.Fatal("Should report the next block index.")
	}

	if lgr.PendingCount() != 1 {
		t.Fatalf("Should hold one pending transaction, got %d.", lgr.PendingCount())
	}

	if _, err := lgr.AddTransaction("", "B", 10, nil); !errors.Is(err, ledger.ErrInvalidInput) {
		t.Fatalf("Should reject an empty sender with ErrInvalidInput, got %v.", err)
	}

	if _, err := lgr.AddTransaction("A", "", 10, nil); !errors.Is(err, ledger.ErrInvalidInput) {
		t.Fatalf("Should reject an empty recipient with ErrInvalidInput, got %v.", err)
	}

	if lgr.PendingCount() != 1 {
		t.Fatal("Should leave the pool untouched after a rejected transaction.")
	}
}

func Test_Mine(t *testing.T) {
	lgr := ledger.New(testDifficulty, nil)

	if _, err := lgr.AddTransaction("A", "B", 10, nil); err != nil {
		t.Fatalf("Should accept the first transaction: %s", err)
	}
	if _, err := lgr.AddTransaction("C", "D", 5, nil); err != nil {
		t.Fatalf("Should accept the second transaction: %s", err)
	}

	mined, err := lgr.Mine(context.Background())
	if err != nil {
		t.Fatalf("Should mine a new block: %s", err)
	}

	if mined.Index != 2 {
		t.Fatalf("Should mine block index 2, got %d.", mined.Index)
	}

	genesis := lgr.Chain()[0]
	if mined.PrevHash != block.Hash(genesis) {
		t.Logf("got: %s", mined.PrevHash)
		t.Logf("exp: %s", block.Hash(genesis))
		t.Fatal("Should link the mined block to the genesis digest.")
	}

	if len(mined.Trans) != 2 {
		t.Fatalf("Should seal both pending transactions, got %d.", len(mined.Trans))
	}
	if mined.Trans[0].Sender != "A" || mined.Trans[1].Sender != "C" {
		t.Fatal("Should preserve transaction submission order.")
	}

	if lgr.PendingCount() != 0 {
		t.Fatal("Should drain the pending pool after sealing.")
	}

	if !validate.Chain(lgr.Chain(), testDifficulty) {
		t.Fatal("Should leave the chain in a valid state.")
	}
}

func Test_MineCancel(t *testing.T) {
	lgr := ledger.New(6, nil)

	if _, err := lgr.AddTransaction("A", "B", 10, nil); err != nil {
		t.Fatalf("Should accept the transaction: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := lgr.Mine(ctx); err == nil {
		t.Fatal("Should return the context error when mining is cancelled.")
	}

	if len(lgr.Chain()) != 1 {
		t.Fatal("Should leave the chain untouched after a cancelled mine.")
	}
	if lgr.PendingCount() != 1 {
		t.Fatal("Should keep the pending pool intact after a cancelled mine.")
	}
}

func Test_ReplaceIfLonger(t *testing.T) {
	lgr := ledger.New(testDifficulty, nil)

	other := ledger.New(testDifficulty, nil)
	for i := 0; i < 2; i++ {
		if _, err := other.Mine(context.Background()); err != nil {
			t.Fatalf("Should mine on the donor ledger: %s", err)
		}
	}

	if !lgr.ReplaceIfLonger(other.Chain()) {
		t.Fatal("Should adopt a strictly longer chain.")
	}
	if len(lgr.Chain()) != 3 {
		t.Fatalf("Should adopt the replacement chain, got length %d.", len(lgr.Chain()))
	}

	if lgr.ReplaceIfLonger(other.Chain()) {
		t.Fatal("Should refuse a candidate of equal length.")
	}

	shorter := ledger.New(testDifficulty, nil)
	if _, err := shorter.Mine(context.Background()); err != nil {
		t.Fatalf("Should mine on the shorter ledger: %s", err)
	}
	if lgr.ReplaceIfLonger(shorter.Chain()) {
		t.Fatal("Should refuse a shorter candidate.")
	}
	if len(lgr.Chain()) != 3 {
		t.Fatal("Should leave the longer local chain in place.")
	}
}

func Test_MineChainMoved(t *testing.T) {
	donor := ledger.New(testDifficulty, nil)
	for i := 0; i < 3; i++ {
		if _, err := donor.Mine(context.Background()); err != nil {
			t.Fatalf("Should mine on the donor ledger: %s", err)
		}
	}

	// Replace the chain the moment the proof search completes, before the
	// ledger re-locks to seal. The solved event fires outside the lock so the
	// replacement can slip in at exactly that point.
	var lgr *ledger.Ledger
	var once sync.Once
	ev := func(v string, args ...any) {
		if strings.HasPrefix(v, "pow: search: SOLVED") {
			once.Do(func() {
				if !lgr.ReplaceIfLonger(donor.Chain()) {
					t.Error("Should adopt the longer chain during the search.")
				}
			})
		}
	}
	lgr = ledger.New(testDifficulty, ev)

	if _, err := lgr.AddTransaction("A", "B", 10, nil); err != nil {
		t.Fatalf("Should accept the transaction: %s", err)
	}

	if _, err := lgr.Mine(context.Background()); !errors.Is(err, ledger.ErrChainMoved) {
		t.Fatalf("Should discard the proof when the tail moves mid-search, got %v.", err)
	}

	if len(lgr.Chain()) != 4 {
		t.Fatalf("Should keep the adopted chain, got length %d.", len(lgr.Chain()))
	}
	if lgr.PendingCount() != 1 {
		t.Fatal("Should keep the pending pool intact after a discarded proof.")
	}
}

func Test_MineReadersNotBlocked(t *testing.T) {
	lgr := ledger.New(7, nil)

	if _, err := lgr.AddTransaction("A", "B", 10, nil); err != nil {
		t.Fatalf("Should accept the transaction: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go lgr.Mine(ctx)

	// Give the search time to start before reading.
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		lgr.Chain()
		lgr.Pending()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Should serve reads while a proof search is running.")
	}
}
