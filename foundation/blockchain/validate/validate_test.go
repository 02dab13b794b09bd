package validate_test

import (
	"context"
	"testing"

	"github.com/openledger/blockchain/foundation/blockchain/block"
	"github.com/openledger/blockchain/foundation/blockchain/ledger"
	"github.com/openledger/blockchain/foundation/blockchain/validate"
)

const testDifficulty = 1

// buildChain mines blocks onto a fresh ledger and returns the chain.
func buildChain(t *testing.T, length int) []block.Block {
	t.Helper()

	lgr := ledger.New(testDifficulty, nil)
	for i := 1; i < length; i++ {
		if _, err := lgr.AddTransaction("A", "B", uint64(i), nil); err != nil {
			t.Fatalf("Should accept the transaction: %s", err)
		}
		if _, err := lgr.Mine(context.Background()); err != nil {
			t.Fatalf("Should mine block %d: %s", i+1, err)
		}
	}

	return lgr.Chain()
}

func Test_Chain(t *testing.T) {
	tests := []struct {
		name   string
		chain  func(t *testing.T) []block.Block
		result bool
	}{
		{
			name: "valid",
			chain: func(t *testing.T) []block.Block {
				return buildChain(t, 3)
			},
			result: true,
		},
		{
			name: "empty",
			chain: func(t *testing.T) []block.Block {
				return nil
			},
			result: false,
		},
		{
			name: "genesisonly",
			chain: func(t *testing.T) []block.Block {
				return buildChain(t, 1)
			},
			result: true,
		},
		{
			name: "badgenesisprevhash",
			chain: func(t *testing.T) []block.Block {
				chain := buildChain(t, 3)
				chain[0].PrevHash = "1"
				return chain
			},
			result: false,
		},
		{
			name: "badgenesisproof",
			chain: func(t *testing.T) []block.Block {
				chain := buildChain(t, 3)
				chain[0].Proof = 2
				return chain
			},
			result: false,
		},
		{
			name: "tamperedamount",
			chain: func(t *testing.T) []block.Block {
				chain := buildChain(t, 3)
				chain[1].Trans[0].Amount++
				return chain
			},
			result: false,
		},
		{
			name: "tamperedproof",
			chain: func(t *testing.T) []block.Block {
				chain := buildChain(t, 3)
				chain[1].Proof++
				return chain
			},
			result: false,
		},
		{
			name: "tamperedprevhash",
			chain: func(t *testing.T) []block.Block {
				chain := buildChain(t, 3)
				chain[2].PrevHash = "deadbeef"
				return chain
			},
			result: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validate.Chain(tt.chain(t), testDifficulty)
			if got != tt.result {
				t.Logf("got: %v", got)
				t.Logf("exp: %v", tt.result)
				t.Fatal("Should get the expected validation result.")
			}
		})
	}
}
