// Package closing provides the deal closing bounded context module.
package closing

import (
	"time"

	"vendexa_backend/internal/closing/handler"
	"vendexa_backend/internal/closing/service"
	"vendexa_backend/internal/events"
	apphttp "vendexa_backend/internal/http"
	"vendexa_backend/platform/config"
	"vendexa_backend/platform/logger"
	"vendexa_backend/platform/validator"
)

// Module is the closing bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the closing module. The simulated close
// batch is only wired when enabled in configuration; the webhook-driven
// MarkWon path is always available.
func NewModule(repo service.LeadStore, bus events.Bus, cfg config.ClosingConfig, val *validator.Validator, log *logger.Logger) *Module {
	var decider service.Decider
	if cfg.IsClosingSimulationEnabled() {
		decider = service.NewSimulatedDecider(time.Now().UnixNano())
	}

	svc := service.New(repo, bus, log, cfg.GetClosingMinScore(), decider)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "closing"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts closing routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/closing")
	group.GET("/ready", m.handler.Ready)
	group.GET("/metrics", m.handler.Metrics)
	group.POST("/batch", m.handler.CloseBatch)
	group.POST("/:id/won", m.handler.MarkWon)
	group.POST("/:id/lost", m.handler.MarkLost)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
