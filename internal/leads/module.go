// Package leads provides the lead management bounded context module.
// It owns the lead record store, qualification scoring, and the
// interaction log other modules build on.
package leads

import (
	"vendexa_backend/internal/events"
	apphttp "vendexa_backend/internal/http"
	"vendexa_backend/internal/leads/handler"
	"vendexa_backend/internal/leads/repository"
	"vendexa_backend/internal/leads/service"
	"vendexa_backend/platform/logger"
	"vendexa_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the record store for modules that compose on it.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/leads")
	group.POST("", m.handler.Create)
	group.GET("/hot", m.handler.Hot)
	group.POST("/seed", m.handler.Seed)
	group.GET("/:id", m.handler.GetByID)
	group.GET("/:id/interactions", m.handler.ListInteractions)
	group.POST("/:id/score", m.handler.RecomputeScore)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
