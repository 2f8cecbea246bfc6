// Package dialer provides the auto-dialer orchestration bounded context.
// This file defines the module that encapsulates engine setup and route
// registration.
package dialer

import (
	"dialer_backend/internal/dialer/compliance"
	"dialer_backend/internal/dialer/engine"
	"dialer_backend/internal/dialer/handler"
	"dialer_backend/internal/dialer/queue"
	"dialer_backend/internal/events"
	apphttp "dialer_backend/internal/http"
	"dialer_backend/platform/config"
	"dialer_backend/platform/logger"
	"dialer_backend/platform/validator"
)

// Module is the dialer bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	engine  *engine.Engine
	gate    *compliance.Gate
}

// NewModule creates and initializes the dialer module with all its
// dependencies. The call controller, DNC registry, and outcome recorder
// are external collaborators supplied by the composition root.
func NewModule(cfg config.DialerConfig, calls engine.CallController, registry compliance.RegistryChecker, recorder engine.OutcomeRecorder, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	queues := queue.NewManager()
	gate := compliance.NewGate(cfg.GetCallWindowStartHour(), cfg.GetCallWindowEndHour(), registry, bus, log)
	eng := engine.New(cfg, queues, gate, calls, recorder, bus, log)

	return &Module{
		handler: handler.New(eng, val),
		engine:  eng,
		gate:    gate,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "dialer"
}

// Engine returns the orchestration engine for external collaborators
// (seeding, webhook-driven commands).
func (m *Module) Engine() *engine.Engine {
	return m.engine
}

// Gate returns the compliance gate so the composition root can start
// its time-window watcher.
func (m *Module) Gate() *compliance.Gate {
	return m.gate
}

// RegisterRoutes mounts dialer routes on the provided router context.
// State-mutating commands sit behind the shared command rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/dialer")
	if ctx.CommandRateLimiter != nil {
		group.Use(ctx.CommandRateLimiter.RateLimit())
	}
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
