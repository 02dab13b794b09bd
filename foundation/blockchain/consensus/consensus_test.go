package consensus_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openledger/blockchain/foundation/blockchain/block"
	"github.com/openledger/blockchain/foundation/blockchain/consensus"
	"github.com/openledger/blockchain/foundation/blockchain/ledger"
	"github.com/openledger/blockchain/foundation/blockchain/peer"
)

const testDifficulty = 1

// fakeTransport serves canned per-peer responses to Resolve.
type fakeTransport struct {
	chains  map[string][]block.Block
	lengths map[string]int
	errs    map[string]error
}

func (t *fakeTransport) FetchChain(ctx context.Context, pr peer.Peer) ([]block.Block, int, error) {
	if err, exists := t.errs[pr.Host]; exists {
		return nil, 0, err
	}

	chain := t.chains[pr.Host]

	length, exists := t.lengths[pr.Host]
	if !exists {
		length = len(chain)
	}

	return chain, length, nil
}

// gatedTransport holds every fetch open until release is closed.
type gatedTransport struct {
	release chan struct{}
	chain   []block.Block
}

func (t *gatedTransport) FetchChain(ctx context.Context, pr peer.Peer) ([]block.Block, int, error) {
	select {
	case <-t.release:
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}

	return t.chain, len(t.chain), nil
}

// buildLedger mines the requested number of blocks past genesis.
func buildLedger(t *testing.T, minedBlocks int) *ledger.Ledger {
	t.Helper()

	lgr := ledger.New(testDifficulty, nil)
	for i := 0; i < minedBlocks; i++ {
		if _, err := lgr.AddTransaction("A", "B", uint64(i+1), nil); err != nil {
			t.Fatalf("Should accept the transaction: %s", err)
		}
		if _, err := lgr.Mine(context.Background()); err != nil {
			t.Fatalf("Should mine block %d: %s", i+2, err)
		}
	}

	return lgr
}

func Test_Resolve(t *testing.T) {
	peers := []peer.Peer{peer.New("10.0.0.5:5000"), peer.New("10.0.0.6:5000")}

	t.Run("longerwins", func(t *testing.T) {
		lgr := buildLedger(t, 2)
		longer := buildLedger(t, 4).Chain()

		trans := fakeTransport{
			chains: map[string][]block.Block{
				"10.0.0.5:5000": buildLedger(t, 2).Chain(),
				"10.0.0.6:5000": longer,
			},
		}

		if !consensus.Resolve(context.Background(), lgr, peers, &trans, nil) {
			t.Fatal("Should replace the chain when a longer valid chain exists.")
		}

		chain := lgr.Chain()
		if len(chain) != 5 {
			t.Logf("got: %d", len(chain))
			t.Logf("exp: %d", 5)
			t.Fatal("Should adopt the longest chain.")
		}
		if block.Hash(chain[4]) != block.Hash(longer[4]) {
			t.Fatal("Should adopt the winning peer's blocks.")
		}
	})

	t.Run("equallengthstays", func(t *testing.T) {
		lgr := buildLedger(t, 2)
		local := lgr.Chain()

		trans := fakeTransport{
			chains: map[string][]block.Block{
				"10.0.0.5:5000": buildLedger(t, 2).Chain(),
				"10.0.0.6:5000": buildLedger(t, 2).Chain(),
			},
		}

		if consensus.Resolve(context.Background(), lgr, peers, &trans, nil) {
			t.Fatal("Should keep the local chain when no peer is strictly longer.")
		}
		if block.Hash(lgr.Chain()[2]) != block.Hash(local[2]) {
			t.Fatal("Should leave the local chain untouched.")
		}
	})

	t.Run("invalidlongerignored", func(t *testing.T) {
		lgr := buildLedger(t, 2)

		tampered := buildLedger(t, 4).Chain()
		tampered[2].Trans[0].Amount++

		trans := fakeTransport{
			chains: map[string][]block.Block{
				"10.0.0.5:5000": tampered,
			},
			errs: map[string]error{
				"10.0.0.6:5000": errors.New("connection refused"),
			},
		}

		if consensus.Resolve(context.Background(), lgr, peers, &trans, nil) {
			t.Fatal("Should discard a longer chain that fails validation.")
		}
		if len(lgr.Chain()) != 3 {
			t.Fatal("Should leave the local chain untouched.")
		}
	})

	t.Run("failingpeerskipped", func(t *testing.T) {
		lgr := buildLedger(t, 2)
		longer := buildLedger(t, 4).Chain()

		trans := fakeTransport{
			chains: map[string][]block.Block{
				"10.0.0.6:5000": longer,
			},
			errs: map[string]error{
				"10.0.0.5:5000": errors.New("connection refused"),
			},
		}

		if !consensus.Resolve(context.Background(), lgr, peers, &trans, nil) {
			t.Fatal("Should still resolve against the reachable peers.")
		}
		if len(lgr.Chain()) != 5 {
			t.Fatal("Should adopt the reachable peer's longer chain.")
		}
	})

	t.Run("lengthmismatchskipped", func(t *testing.T) {
		lgr := buildLedger(t, 2)

		trans := fakeTransport{
			chains: map[string][]block.Block{
				"10.0.0.5:5000": buildLedger(t, 4).Chain(),
			},
			lengths: map[string]int{
				"10.0.0.5:5000": 9,
			},
			errs: map[string]error{
				"10.0.0.6:5000": errors.New("connection refused"),
			},
		}

		if consensus.Resolve(context.Background(), lgr, []peer.Peer{peers[0], peers[1]}, &trans, nil) {
			t.Fatal("Should discard a response whose advertised length disagrees with its chain.")
		}
	})

	t.Run("localminedduringfetch", func(t *testing.T) {
		lgr := buildLedger(t, 2)
		foreign := buildLedger(t, 4).Chain()

		trans := gatedTransport{release: make(chan struct{}), chain: foreign}

		resolved := make(chan bool, 1)
		go func() {
			resolved <- consensus.Resolve(context.Background(), lgr, []peer.Peer{peers[0]}, &trans, nil)
		}()

		// Grow the local chain past the candidate while the fetch is held
		// open.
		for i := 0; i < 3; i++ {
			if _, err := lgr.AddTransaction("A", "B", uint64(i+1), nil); err != nil {
				t.Fatalf("Should accept the transaction: %s", err)
			}
			if _, err := lgr.Mine(context.Background()); err != nil {
				t.Fatalf("Should mine past the candidate: %s", err)
			}
		}

		close(trans.release)

		if <-resolved {
			t.Fatal("Should keep a local chain that grew past the candidate during the fetch.")
		}

		chain := lgr.Chain()
		if len(chain) != 6 {
			t.Logf("got: %d", len(chain))
			t.Logf("exp: %d", 6)
			t.Fatal("Should leave the longer local chain in place.")
		}
	})

	t.Run("nopeers", func(t *testing.T) {
		lgr := buildLedger(t, 2)

		if consensus.Resolve(context.Background(), lgr, nil, &fakeTransport{}, nil) {
			t.Fatal("Should report no replacement when there are no peers.")
		}
	})
}

func Test_HTTPTransport(t *testing.T) {
	chain := buildLedger(t, 1).Chain()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chain" {
			http.NotFound(w, r)
			return
		}

		resp := struct {
			Chain  []block.Block `json:"chain"`
			Length int           `json:"length"`
		}{
			Chain:  chain,
			Length: len(chain),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	trans := consensus.NewHTTPTransport(0)
	pr := peer.New(strings.TrimPrefix(srv.URL, "http://"))

	got, length, err := trans.FetchChain(context.Background(), pr)
	if err != nil {
		t.Fatalf("Should fetch the chain: %s", err)
	}

	if length != len(chain) {
		t.Logf("got: %d", length)
		t.Logf("exp: %d", len(chain))
		t.Fatal("Should report the advertised length.")
	}

	for i := range chain {
		if block.Hash(got[i]) != block.Hash(chain[i]) {
			t.Fatalf("Should round-trip block %d through the wire encoding.", i)
		}
	}
}

func Test_HTTPTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "node unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	trans := consensus.NewHTTPTransport(0)
	pr := peer.New(strings.TrimPrefix(srv.URL, "http://"))

	if _, _, err := trans.FetchChain(context.Background(), pr); err == nil {
		t.Fatal("Should return an error for a non-200 response.")
	}
}
