package block_test

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/openledger/blockchain/foundation/blockchain/block"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func Test_HashDeterminism(t *testing.T) {

	// Build the extra maps with different insertion orders so map ordering
	// cannot leak into the digest.
	extraA := map[string]string{}
	extraA["memo"] = "coffee"
	extraA["channel"] = "web"

	extraB := map[string]string{}
	extraB["channel"] = "web"
	extraB["memo"] = "coffee"

	b1 := block.Block{
		Index:     2,
		PrevHash:  "0",
		Proof:     35293,
		TimeStamp: 1641016800,
		Trans: []block.Tx{
			{Amount: 10, Extra: extraA, Recipient: "B", Sender: "A", TimeStamp: 1641016700},
		},
	}

	b2 := block.Block{
		Index:     2,
		PrevHash:  "0",
		Proof:     35293,
		TimeStamp: 1641016800,
		Trans: []block.Tx{
			{Amount: 10, Extra: extraB, Recipient: "B", Sender: "A", TimeStamp: 1641016700},
		},
	}

	h1 := block.Hash(b1)
	h2 := block.Hash(b1)
	if h1 != h2 {
		t.Logf("got: %s", h2)
		t.Logf("exp: %s", h1)
		t.Fatal("Should get the same digest for the same block twice.")
	}

	h3 := block.Hash(b2)
	if h1 != h3 {
		t.Logf("got: %s", h3)
		t.Logf("exp: %s", h1)
		t.Fatal("Should get the same digest for semantically equal blocks.")
	}

	if !hexDigest.MatchString(h1) {
		t.Logf("got: %s", h1)
		t.Fatal("Should render the digest as 64 lowercase hex characters.")
	}
}

func Test_HashChangesWithContent(t *testing.T) {
	b := block.Block{
		Index:     2,
		PrevHash:  "0",
		Proof:     35293,
		TimeStamp: 1641016800,
		Trans: []block.Tx{
			{Amount: 10, Recipient: "B", Sender: "A", TimeStamp: 1641016700},
		},
	}

	base := block.Hash(b)

	tampered := b
	tampered.Trans = []block.Tx{
		{Amount: 11, Recipient: "B", Sender: "A", TimeStamp: 1641016700},
	}

	if block.Hash(tampered) == base {
		t.Fatal("Should get a different digest when a transaction amount changes.")
	}
}

func Test_CanonicalEncoding(t *testing.T) {

	// The canonical encoding is a frozen wire contract. Any change to this
	// expected document is a breaking protocol change.
	b := block.Block{
		Index:     2,
		PrevHash:  "abc123",
		Proof:     35293,
		TimeStamp: 1641016800,
		Trans: []block.Tx{
			{
				Amount:    10,
				Extra:     map[string]string{"b": "2", "a": "1"},
				Recipient: "B",
				Sender:    "A",
				TimeStamp: 1641016700,
			},
		},
	}

	exp := `{"index":2,"previous_hash":"abc123","proof":35293,"timestamp":1641016800,"transactions":[{"amount":10,"extra":{"a":"1","b":"2"},"recipient":"B","sender":"A","timestamp":1641016700}]}`

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Should marshal the block: %s", err)
	}

	if string(data) != exp {
		t.Logf("got: %s", string(data))
		t.Logf("exp: %s", exp)
		t.Fatal("Should produce the frozen canonical encoding.")
	}
}
