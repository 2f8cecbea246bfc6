// Package leads provides the lead store bounded context: the persisted
// prospect directory the dial queues are seeded from.
package leads

import (
	apphttp "dialer_backend/internal/http"
	"dialer_backend/internal/leads/handler"
	"dialer_backend/internal/leads/repository"
	"dialer_backend/internal/leads/service"
	"dialer_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module.
func NewModule(pool *pgxpool.Pool, phoneRegion string, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, phoneRegion, log)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service exposes the lead service for the composition root (queue
// seeding, outcome persistence in the worker).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead directory routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/leads")
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
