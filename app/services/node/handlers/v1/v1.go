// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/openledger/blockchain/app/services/node/handlers/v1/public"
	"github.com/openledger/blockchain/foundation/blockchain/state"
	"github.com/openledger/blockchain/foundation/events"
	"github.com/openledger/blockchain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/chain", pbl.Chain)
	app.Handle(http.MethodGet, version, "/validate", pbl.Validate)
	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/mining/signal", pbl.SignalMining)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", pbl.Mempool)
	app.Handle(http.MethodPost, version, "/tx/add", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/node/status", pbl.Status)
	app.Handle(http.MethodPost, version, "/node/register", pbl.RegisterPeers)
	app.Handle(http.MethodPost, version, "/node/resolve", pbl.Resolve)
}
