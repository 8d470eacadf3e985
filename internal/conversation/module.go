// Package conversation provides the AI conversation bounded context module.
// It orchestrates sales dialogues between leads and the Gemini engine.
package conversation

import (
	"vendexa_backend/internal/ai"
	"vendexa_backend/internal/conversation/handler"
	"vendexa_backend/internal/conversation/service"
	"vendexa_backend/internal/conversation/session"
	"vendexa_backend/internal/events"
	apphttp "vendexa_backend/internal/http"
	"vendexa_backend/platform/logger"
	"vendexa_backend/platform/validator"
)

// Module is the conversation bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the conversation module. The lead store,
// AI engine, and session store are composed by main so deployments can swap
// session backends without touching this module.
func NewModule(repo service.LeadStore, engine ai.Engine, sessions session.Store, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repo, engine, sessions, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "conversation"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts conversation routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/conversations")
	group.GET("/stats", m.handler.Stats)
	group.GET("/:id/stats", m.handler.LeadStats)
	group.POST("/:id/start", m.handler.Start)
	group.POST("/:id/messages", m.handler.Send)
	group.POST("/:id/proposal", m.handler.GenerateProposal)
	group.POST("/:id/end", m.handler.End)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
