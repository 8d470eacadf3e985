// Package service implements the closing workflow: selecting ready leads,
// finalizing won and lost deals, and reporting pipeline metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vendexa_backend/internal/closing/transport"
	"vendexa_backend/internal/events"
	"vendexa_backend/internal/leads/domain"
	"vendexa_backend/internal/leads/repository"
	"vendexa_backend/internal/leads/scoring"
	"vendexa_backend/platform/apperr"
	"vendexa_backend/platform/logger"

	"github.com/google/uuid"
)

const msgLeadNotFound = "lead not found"

// LeadStore is the slice of the record store the closing workflow needs.
type LeadStore interface {
	repository.LeadReader
	repository.LeadWriter
	repository.InteractionStore
	repository.MetricsReader
}

// Service finalizes deals and reports conversion metrics.
type Service struct {
	repo     LeadStore
	bus      events.Bus
	log      *logger.Logger
	minScore int
	decider  Decider
}

// New creates a closing service. decider may be nil, which disables the
// simulated close batch while leaving the webhook-driven path intact.
func New(repo LeadStore, bus events.Bus, log *logger.Logger, minScore int, decider Decider) *Service {
	return &Service{repo: repo, bus: bus, log: log, minScore: minScore, decider: decider}
}

// IdentifyReady returns leads at or above the closing score threshold in a
// closeable status, best first.
func (s *Service) IdentifyReady(ctx context.Context) (transport.ReadyLeadsResponse, error) {
	leads, err := s.repo.ListByScore(ctx, s.minScore)
	if err != nil {
		return transport.ReadyLeadsResponse{}, err
	}

	items := make([]transport.ReadyLead, 0, len(leads))
	for _, lead := range leads {
		if !closeable(lead.Status) {
			continue
		}
		items = append(items, transport.ReadyLead{
			LeadID: lead.ID,
			Name:   lead.Name,
			Email:  lead.Email,
			Status: string(lead.Status),
			Score:  lead.Score,
		})
	}
	return transport.ReadyLeadsResponse{Items: items, Total: len(items)}, nil
}

// MarkWon finalizes a deal: transitions the lead to closed, logs a sale
// interaction with the deal value, and publishes DealWon.
func (s *Service) MarkWon(ctx context.Context, leadID uuid.UUID, valueCents int64) (transport.DealSummary, error) {
	lead, err := s.finalize(ctx, leadID, domain.StatusClosed, "sale",
		fmt.Sprintf("Venda fechada: R$ %.2f/mes", float64(valueCents)/100))
	if err != nil {
		return transport.DealSummary{}, err
	}

	count, err := s.repo.CountInteractions(ctx, lead.ID)
	if err != nil {
		return transport.DealSummary{}, err
	}

	s.bus.Publish(ctx, events.DealWon{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     lead.ID,
		Name:       lead.Name,
		Email:      lead.Email,
		ValueCents: valueCents,
		Score:      lead.Score,
	})
	s.log.DealOutcome("won", lead.ID.String(), valueCents)

	return transport.DealSummary{
		LeadID:            lead.ID,
		Name:              lead.Name,
		Email:             lead.Email,
		Status:            string(lead.Status),
		ValueCents:        valueCents,
		Score:             lead.Score,
		TotalInteractions: count,
		ClosedAt:          time.Now().Format(time.RFC3339),
	}, nil
}

// MarkLost finalizes a lost deal with its reason and publishes DealLost.
func (s *Service) MarkLost(ctx context.Context, leadID uuid.UUID, reason string) (transport.DealSummary, error) {
	lead, err := s.finalize(ctx, leadID, domain.StatusLost, "loss", "Lead perdido: "+reason)
	if err != nil {
		return transport.DealSummary{}, err
	}

	count, err := s.repo.CountInteractions(ctx, lead.ID)
	if err != nil {
		return transport.DealSummary{}, err
	}

	s.bus.Publish(ctx, events.DealLost{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Name:      lead.Name,
		Email:     lead.Email,
		Reason:    reason,
	})
	s.log.DealOutcome("lost", lead.ID.String(), 0)

	return transport.DealSummary{
		LeadID:            lead.ID,
		Name:              lead.Name,
		Email:             lead.Email,
		Status:            string(lead.Status),
		Reason:            reason,
		Score:             lead.Score,
		TotalInteractions: count,
		ClosedAt:          time.Now().Format(time.RFC3339),
	}, nil
}

// MarkWonByEmail resolves a lead by its email and finalizes the deal. Used
// by the billing webhook, which only knows the customer's email.
func (s *Service) MarkWonByEmail(ctx context.Context, email string, valueCents int64) (transport.DealSummary, error) {
	lead, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.DealSummary{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return transport.DealSummary{}, err
	}
	return s.MarkWon(ctx, lead.ID, valueCents)
}

// CloseBatch runs the demo decider over every ready lead. Leads the decider
// declines are left untouched for a later run. A failed close is logged and
// counted as skipped so the response reflects the writes that happened.
func (s *Service) CloseBatch(ctx context.Context) (transport.CloseBatchResponse, error) {
	if s.decider == nil {
		return transport.CloseBatchResponse{}, apperr.Unavailable("closing simulation is disabled")
	}

	ready, err := s.IdentifyReady(ctx)
	if err != nil {
		return transport.CloseBatchResponse{}, err
	}

	resp := transport.CloseBatchResponse{Attempted: ready.Total}
	for _, candidate := range ready.Items {
		won, plan := s.decider.Decide()
		if !won {
			resp.Skipped++
			continue
		}
		summary, err := s.MarkWon(ctx, candidate.LeadID, plan.PriceCents)
		if err != nil {
			s.log.Error("batch close failed", "error", err, "lead_id", candidate.LeadID.String())
			resp.Skipped++
			continue
		}
		resp.Won = append(resp.Won, summary)
	}
	return resp, nil
}

// Metrics reports per-status counts and conversion rate (closed / total).
func (s *Service) Metrics(ctx context.Context) (transport.MetricsResponse, error) {
	counts, err := s.repo.StatusCounts(ctx)
	if err != nil {
		return transport.MetricsResponse{}, err
	}

	total := 0
	statusCounts := make(map[string]int, len(counts))
	for status, count := range counts {
		statusCounts[string(status)] = count
		total += count
	}

	rate := 0.0
	if total > 0 {
		rate = float64(counts[domain.StatusClosed]) / float64(total)
	}

	return transport.MetricsResponse{
		StatusCounts:   statusCounts,
		TotalLeads:     total,
		ConversionRate: rate,
	}, nil
}

// finalize applies a terminal transition with the interaction logged first so
// the recorded score reflects the full history.
func (s *Service) finalize(ctx context.Context, leadID uuid.UUID, target domain.Status, kind, note string) (repository.Lead, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return repository.Lead{}, err
	}

	if err := domain.Transition(lead.Status, target); err != nil {
		if errors.Is(err, domain.ErrLeadTerminal) {
			return repository.Lead{}, apperr.Conflict("lead is already closed")
		}
		return repository.Lead{}, apperr.Conflict(fmt.Sprintf("cannot move lead from %s to %s", lead.Status, target))
	}

	if _, err := s.repo.AppendInteraction(ctx, repository.AppendInteractionParams{
		LeadID:   lead.ID,
		Kind:     kind,
		Outbound: note,
	}); err != nil {
		return repository.Lead{}, err
	}

	count, err := s.repo.CountInteractions(ctx, lead.ID)
	if err != nil {
		return repository.Lead{}, err
	}
	score := scoring.Score(scoring.Attributes{
		Company:  lead.Company,
		Title:    lead.Title,
		Phone:    lead.Phone,
		Budget:   lead.Budget,
		Interest: lead.Interest,
	}, count)

	oldStatus := lead.Status
	updated, err := s.repo.UpdateStatusAndScore(ctx, lead.ID, target, score)
	if err != nil {
		return repository.Lead{}, err
	}

	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    updated.ID,
		OldStatus: string(oldStatus),
		NewStatus: string(target),
	})
	return updated, nil
}

func closeable(status domain.Status) bool {
	return status == domain.StatusQualified || status == domain.StatusProposal
}
