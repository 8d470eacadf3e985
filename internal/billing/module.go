package billing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	closingservice "vendexa_backend/internal/closing/service"
	closingtransport "vendexa_backend/internal/closing/transport"
	apphttp "vendexa_backend/internal/http"
	"vendexa_backend/internal/leads/repository"
	"vendexa_backend/platform/apperr"
	"vendexa_backend/platform/config"
	"vendexa_backend/platform/httpkit"
	"vendexa_backend/platform/logger"
	"vendexa_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DealCloser finalizes a deal once payment is confirmed.
type DealCloser interface {
	MarkWonByEmail(ctx context.Context, email string, valueCents int64) (closingtransport.DealSummary, error)
}

// CheckoutRequest opens a provider checkout for a lead and plan. The price
// is resolved from the plan catalog, never taken from the caller.
type CheckoutRequest struct {
	LeadID uuid.UUID `json:"leadId" validate:"required"`
	Plan   string    `json:"plan" validate:"required,min=1,max=64"`
}

// webhookEvent is the provider's completion notification payload.
type webhookEvent struct {
	Event      string `json:"event"`
	Email      string `json:"email"`
	AmountCent int64  `json:"amountCents"`
	Reference  string `json:"reference"`
}

const eventCheckoutCompleted = "checkout.completed"

// Module is the billing bounded context module implementing http.Module.
type Module struct {
	client *Client
	closer DealCloser
	leads  repository.LeadReader
	cfg    config.BillingConfig
	val    *validator.Validator
	log    *logger.Logger
}

// NewModule creates and initializes the billing module.
func NewModule(closer DealCloser, leads repository.LeadReader, cfg config.BillingConfig, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{
		client: NewClient(cfg),
		closer: closer,
		leads:  leads,
		cfg:    cfg,
		val:    val,
		log:    log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "billing"
}

// RegisterRoutes mounts billing routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/billing")
	group.POST("/checkout", m.CreateCheckout)
	group.POST("/webhook", m.Webhook)
}

// CreateCheckout opens a provider checkout session for a lead.
// POST /api/v1/billing/checkout
func (m *Module) CreateCheckout(c *gin.Context) {
	if !m.cfg.IsBillingEnabled() {
		httpkit.HandleError(c, apperr.Unavailable("billing is not configured"))
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := m.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	plan, ok := closingservice.FindPlan(req.Plan)
	if !ok {
		httpkit.HandleError(c, apperr.BadRequest("unknown plan"))
		return
	}

	lead, err := m.leads.GetByID(c.Request.Context(), req.LeadID)
	if errors.Is(err, repository.ErrNotFound) {
		httpkit.HandleError(c, apperr.NotFound("lead not found"))
		return
	}
	if httpkit.HandleError(c, err) {
		return
	}

	session, err := m.client.CreateCheckout(c.Request.Context(), CheckoutParams{
		Email:      lead.Email,
		Name:       lead.Name,
		Plan:       plan.Name,
		PriceCents: plan.PriceCents,
	})
	if err != nil {
		m.log.Error("checkout creation failed", "error", err, "lead_id", lead.ID.String())
		httpkit.HandleError(c, apperr.Unavailable("payment provider unavailable"))
		return
	}

	httpkit.Created(c, session)
}

// Webhook receives payment confirmations and wins the matching deal. The
// provider retries on non-2xx, so business-level rejections (unknown lead,
// already closed) are acknowledged as ignored rather than errored.
// POST /api/v1/billing/webhook
func (m *Module) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}

	if !VerifySignature(body, c.GetHeader("X-Billing-Signature"), m.cfg.GetBillingWebhookSecret()) {
		httpkit.Error(c, http.StatusUnauthorized, "invalid signature", nil)
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}

	if event.Event != eventCheckoutCompleted {
		httpkit.OK(c, gin.H{"status": "ignored"})
		return
	}

	summary, err := m.closer.MarkWonByEmail(c.Request.Context(), event.Email, event.AmountCent)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) || apperr.Is(err, apperr.KindConflict) {
			m.log.Warn("webhook could not win deal", "error", err, "reference", event.Reference)
			httpkit.OK(c, gin.H{"status": "ignored"})
			return
		}
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"status": "processed", "deal": summary})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
