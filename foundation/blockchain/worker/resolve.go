package worker

import (
	"context"
	"time"
)

// resolveTimeout caps a whole resolution pass. The transport already applies
// a per-peer timeout below this.
const resolveTimeout = time.Minute

// resolveOperations runs the consensus resolution on the configured interval
// and whenever one is signaled.
func (w *Worker) resolveOperations() {
	w.evHandler("worker: resolveOperations: G started")
	defer w.evHandler("worker: resolveOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runResolveOperation()
			}
		case <-w.resolve:
			if !w.isShutdown() {
				w.runResolveOperation()
			}
		case <-w.shut:
			w.evHandler("worker: resolveOperations: received shut signal")
			return
		}
	}
}

// runResolveOperation queries the known peers for their chains and adopts
// the longest valid one found.
func (w *Worker) runResolveOperation() {
	w.evHandler("worker: runResolveOperation: RESOLVE: started")
	defer w.evHandler("worker: runResolveOperation: RESOLVE: completed")

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	if w.state.Resolve(ctx) {
		w.evHandler("worker: runResolveOperation: RESOLVE: chain replaced")
	}
}
