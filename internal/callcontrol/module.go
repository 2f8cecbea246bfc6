// Package callcontrol integrates the external call-control provider:
// an outbound client for placing calls and an inbound webhook that feeds
// lifecycle updates back into the engine.
package callcontrol

import (
	"dialer_backend/internal/callcontrol/client"
	"dialer_backend/internal/callcontrol/handler"
	"dialer_backend/internal/dialer/engine"
	apphttp "dialer_backend/internal/http"
	"dialer_backend/platform/config"
	"dialer_backend/platform/logger"
	"dialer_backend/platform/validator"
)

// NewController returns the call controller for the engine: the HTTP
// client when a provider is configured, the in-process simulator
// otherwise.
func NewController(cfg config.CallControlConfig, log *logger.Logger) engine.CallController {
	if !cfg.IsCallControlEnabled() {
		log.Warn("call control not configured, using in-process simulator")
		return client.NewSimulator(log)
	}
	return client.New(cfg.GetCallControlBaseURL(), cfg.GetCallControlAPIKey(), log)
}

// Module is the call-control webhook module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the webhook module that drives the engine from
// provider lifecycle events.
func NewModule(cfg config.CallControlConfig, eng *engine.Engine, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{
		handler: handler.New(eng, val, cfg.GetCallControlWebhookSecret(), log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "callcontrol"
}

// RegisterRoutes mounts the webhook routes. Webhooks authenticate with
// the shared secret, not the command rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/webhooks")
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
