// Package notification provides event handlers for sending notifications
// in response to domain events. This module subscribes to events and inverts
// the dependency: domain modules never touch email providers or templates.
package notification

import (
	"context"

	"vendexa_backend/internal/email"
	"vendexa_backend/internal/events"
	"vendexa_backend/platform/logger"
)

// Module wires domain events to outbound notifications. Delivery is
// fire-and-forget: failures are logged, never propagated to publishers.
type Module struct {
	sender email.Sender
	log    *logger.Logger
}

// New creates the notification module.
func New(sender email.Sender, log *logger.Logger) *Module {
	return &Module{sender: sender, log: log}
}

// RegisterHandlers subscribes to the domain events this module reacts to.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.ProposalSent{}.EventName(), m)
	bus.Subscribe(events.DealWon{}.EventName(), m)
}

// Handle routes events to the appropriate notification.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		return m.onLeadCreated(ctx, e)
	case events.ProposalSent:
		return m.onProposalSent(ctx, e)
	case events.DealWon:
		return m.onDealWon(ctx, e)
	default:
		return nil
	}
}

func (m *Module) onLeadCreated(ctx context.Context, e events.LeadCreated) error {
	if err := m.sender.SendWelcomeEmail(ctx, e.Email, e.Name); err != nil {
		m.log.Error("welcome email failed", "error", err, "lead_id", e.LeadID.String())
	}
	return nil
}

func (m *Module) onProposalSent(ctx context.Context, e events.ProposalSent) error {
	if err := m.sender.SendProposalEmail(ctx, e.Email, e.Name, e.ProposalText); err != nil {
		m.log.Error("proposal email failed", "error", err, "lead_id", e.LeadID.String())
	}
	return nil
}

func (m *Module) onDealWon(ctx context.Context, e events.DealWon) error {
	if err := m.sender.SendDealWonEmail(ctx, e.Email, e.Name, e.ValueCents); err != nil {
		m.log.Error("deal won email failed", "error", err, "lead_id", e.LeadID.String())
	}
	return nil
}

var _ events.Handler = (*Module)(nil)
