// Package handler exposes lead management over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vendexa_backend/internal/leads/service"
	"vendexa_backend/internal/leads/transport"
	"vendexa_backend/platform/httpkit"
	"vendexa_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid lead ID"

	defaultHotMinScore = 60
)

// Handler handles HTTP requests for leads.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create registers a new lead, or returns the existing one for a known email.
// POST /api/v1/leads
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateLead(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	if result.Created {
		httpkit.Created(c, result)
		return
	}
	httpkit.OK(c, result)
}

// GetByID retrieves a lead by ID.
// GET /api/v1/leads/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.GetLead(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListInteractions retrieves a lead's interaction history, newest first.
// GET /api/v1/leads/:id/interactions
func (h *Handler) ListInteractions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.ListInteractions(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RecomputeScore recalculates and persists a lead's qualification score.
// POST /api/v1/leads/:id/score
func (h *Handler) RecomputeScore(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	score, err := h.svc.RecomputeScore(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ScoreResponse{LeadID: id, Score: score})
}

// Hot lists open leads at or above the hot-lead score threshold.
// GET /api/v1/leads/hot
func (h *Handler) Hot(c *gin.Context) {
	result, err := h.svc.HotLeads(c.Request.Context(), defaultHotMinScore)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Seed creates the fixed demo lead set, standing in for real prospecting.
// POST /api/v1/leads/seed
func (h *Handler) Seed(c *gin.Context) {
	result, err := h.svc.SeedSampleLeads(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}
