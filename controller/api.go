package controller

import (
	"github.com/scriptgen-ra/scriptgen/common/config"
	"github.com/scriptgen-ra/scriptgen/generator"
	"github.com/scriptgen-ra/scriptgen/relay"
	"github.com/scriptgen-ra/scriptgen/storage"
)

// API bundles the handlers that need the pipeline collaborators. The config
// is injected once at startup; handlers never read the environment.
type API struct {
	Cfg          *config.Config
	Store        *storage.Store
	Orchestrator *generator.Orchestrator
	Invoker      *relay.Invoker
}

func NewAPI(cfg *config.Config, store *storage.Store) *API {
	invoker := relay.NewInvoker(cfg)
	return &API{
		Cfg:          cfg,
		Store:        store,
		Orchestrator: generator.New(cfg, store, invoker),
		Invoker:      invoker,
	}
}
