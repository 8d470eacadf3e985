// Package handler exposes the closing workflow over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vendexa_backend/internal/closing/service"
	"vendexa_backend/internal/closing/transport"
	"vendexa_backend/platform/httpkit"
	"vendexa_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid lead ID"
)

// Handler handles HTTP requests for deal closing.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new closing handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Ready lists leads eligible for closing, best first.
// GET /api/v1/closing/ready
func (h *Handler) Ready(c *gin.Context) {
	result, err := h.svc.IdentifyReady(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// MarkWon finalizes a won deal with its value.
// POST /api/v1/closing/:id/won
func (h *Handler) MarkWon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.MarkWonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.MarkWon(c.Request.Context(), id, req.ValueCents)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// MarkLost finalizes a lost deal with its reason.
// POST /api/v1/closing/:id/lost
func (h *Handler) MarkLost(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.MarkLostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.MarkLost(c.Request.Context(), id, req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CloseBatch runs the simulated closing pass over all ready leads.
// POST /api/v1/closing/batch
func (h *Handler) CloseBatch(c *gin.Context) {
	result, err := h.svc.CloseBatch(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Metrics reports pipeline counts and conversion rate.
// GET /api/v1/closing/metrics
func (h *Handler) Metrics(c *gin.Context) {
	result, err := h.svc.Metrics(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
