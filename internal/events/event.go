// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"vendexa_backend/platform/events"
	"vendexa_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created. It is not published
// for duplicate-email creations that resolved to an existing lead.
type LeadCreated struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Source string    `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published on every applied status transition.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status.changed" }

// =============================================================================
// Conversation Domain Events
// =============================================================================

// ProposalSent is published when a commercial proposal is generated for a lead.
type ProposalSent struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	ProposalText string    `json:"proposalText"`
}

func (e ProposalSent) EventName() string { return "conversation.proposal.sent" }

// =============================================================================
// Closing Domain Events
// =============================================================================

// DealWon is published when a lead converts to a closed deal.
type DealWon struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	ValueCents int64     `json:"valueCents"`
	Score      int       `json:"score"`
}

func (e DealWon) EventName() string { return "closing.deal.won" }

// DealLost is published when a lead is marked lost.
type DealLost struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Reason string    `json:"reason"`
}

func (e DealLost) EventName() string { return "closing.deal.lost" }
