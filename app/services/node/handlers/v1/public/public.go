// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/openledger/blockchain/business/sys/validate"
	"github.com/openledger/blockchain/business/web/errs"
	"github.com/openledger/blockchain/foundation/blockchain/block"
	"github.com/openledger/blockchain/foundation/blockchain/state"
	"github.com/openledger/blockchain/foundation/events"
	"github.com/openledger/blockchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of public node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Chain returns the full chain with its length. This is the wire contract
// the consensus transport of every conformant node consumes.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.RetrieveChain()

	resp := chain{
		Chain:  blocks,
		Length: len(blocks),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Validate runs the chain validity walk over the local chain.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Valid  bool `json:"valid"`
		Length int  `json:"length"`
	}{
		Valid:  h.State.Validate(),
		Length: len(h.State.RetrieveChain()),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitTransaction adds a new transaction to the pending pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx newTx
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(tx); err != nil {
		return err
	}

	h.Log.Infow("add tran", "traceid", v.TraceID, "sender", tx.Sender, "recipient", tx.Recipient, "amount", tx.Amount)

	index, err := h.State.SubmitTransaction(tx.Sender, tx.Recipient, tx.Amount, tx.Extra)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := txAck{
		Status: "transaction added to the pending pool",
		Index:  index,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txs := h.State.RetrievePending()
	if txs == nil {
		txs = []block.Tx{}
	}

	return web.Respond(ctx, w, txs, http.StatusOK)
}

// SignalMining signals the background worker to mine the pending pool into
// a new block. The call never blocks on the proof of work search; the mined
// block shows up on the chain and the events feed.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.State.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signaled",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// Status returns a summary of the node's current state.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.State.RetrieveLatestBlock()

	resp := statusInfo{
		LatestBlockHash:  block.Hash(latest),
		LatestBlockIndex: latest.Index,
		ChainLength:      len(h.State.RetrieveChain()),
		PendingTxs:       h.State.PendingCount(),
		KnownPeers:       h.State.KnownPeers(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RegisterPeers adds the submitted addresses to the known peer set.
func (h Handlers) RegisterPeers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nodes struct {
		Nodes []string `json:"nodes" validate:"required,min=1"`
	}
	if err := web.Decode(r, &nodes); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(nodes); err != nil {
		return err
	}

	for _, address := range nodes.Nodes {
		if _, err := h.State.RegisterPeer(address); err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
	}

	resp := registerAck{
		Status:     "new nodes have been added",
		TotalNodes: h.State.KnownPeers(),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Resolve runs the longest-valid-chain consensus against the known peers
// and reports whether the local chain was replaced.
func (h Handlers) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	replaced := h.State.Resolve(ctx)

	blocks := h.State.RetrieveChain()
	resp := resolveAck{
		Replaced: replaced,
		Chain:    blocks,
		Length:   len(blocks),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// This handler is called by web clients so the origin check is off.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	h.Log.Infow("events", "traceid", v.TraceID, "status", "websocket open", "path", r.URL.Path, "remoteaddr", r.RemoteAddr)

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
