package consensus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openledger/blockchain/foundation/blockchain/block"
	"github.com/openledger/blockchain/foundation/blockchain/peer"
)

// chainURL is the wire contract endpoint every conformant node serves.
const chainURL = "http://%s/v1/chain"

// HTTPTransport fetches peer chains over the public node API.
type HTTPTransport struct {
	client http.Client
}

// NewHTTPTransport constructs a transport that applies the specified timeout
// to every request.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		client: http.Client{
			Timeout: timeout,
		},
	}
}

// FetchChain retrieves the specified peer's chain and advertised length.
func (t *HTTPTransport) FetchChain(ctx context.Context, pr peer.Peer) ([]block.Block, int, error) {
	url := fmt.Sprintf(chainURL, pr.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, 0, err
		}
		return nil, 0, errors.New(string(msg))
	}

	var payload struct {
		Chain  []block.Block `json:"chain"`
		Length int           `json:"length"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, 0, err
	}

	return payload.Chain, payload.Length, nil
}
