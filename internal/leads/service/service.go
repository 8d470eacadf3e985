// Package service provides business logic for lead intake and qualification.
package service

import (
	"context"
	"errors"
	"time"

	"vendexa_backend/internal/events"
	"vendexa_backend/internal/leads/repository"
	"vendexa_backend/internal/leads/scoring"
	"vendexa_backend/internal/leads/transport"
	"vendexa_backend/platform/apperr"
	"vendexa_backend/platform/logger"
	"vendexa_backend/platform/phone"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const msgLeadNotFound = "lead not found"

// Service provides lead intake, lookup, and score recomputation.
type Service struct {
	repo repository.LeadsRepository
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new leads service.
func New(repo repository.LeadsRepository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// CreateLead registers a lead. Creation is idempotent by email: posting a
// known email returns the existing lead and does not publish LeadCreated.
func (s *Service) CreateLead(ctx context.Context, req transport.CreateLeadRequest) (transport.CreateLeadResponse, error) {
	params := repository.CreateLeadParams{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    phone.NormalizeE164(req.Phone),
		Company:  req.Company,
		Title:    req.Title,
		Interest: req.Interest,
		Budget:   req.Budget,
		Source:   req.Source,
	}
	if params.Source == "" {
		params.Source = "manual"
	}

	lead, created, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.CreateLeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create lead", err)
	}

	if created {
		s.bus.Publish(ctx, events.LeadCreated{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			Name:      lead.Name,
			Email:     lead.Email,
			Source:    lead.Source,
		})
	}

	return transport.CreateLeadResponse{Lead: toResponse(lead), Created: created}, nil
}

// GetLead fetches a lead by id.
func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toResponse(lead), nil
}

// ListInteractions returns a lead's interaction history, newest first.
func (s *Service) ListInteractions(ctx context.Context, id uuid.UUID) (transport.InteractionListResponse, error) {
	if _, err := s.GetLead(ctx, id); err != nil {
		return transport.InteractionListResponse{}, err
	}

	interactions, err := s.repo.ListInteractions(ctx, id)
	if err != nil {
		return transport.InteractionListResponse{}, err
	}

	items := make([]transport.InteractionResponse, 0, len(interactions))
	for _, it := range interactions {
		items = append(items, toInteractionResponse(it))
	}
	return transport.InteractionListResponse{Items: items, Total: len(items)}, nil
}

// RecomputeScore recalculates the qualification score from the lead's current
// attributes and interaction count, persists it, and returns the new value.
func (s *Service) RecomputeScore(ctx context.Context, id uuid.UUID) (int, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return 0, err
	}

	count, err := s.repo.CountInteractions(ctx, id)
	if err != nil {
		return 0, err
	}

	score := scoring.Score(scoringAttributes(lead), count)
	if err := s.repo.UpdateScore(ctx, id, score); err != nil {
		return 0, err
	}
	return score, nil
}

// HotLeads returns open leads at or above minScore, best first.
func (s *Service) HotLeads(ctx context.Context, minScore int) (transport.LeadListResponse, error) {
	leads, err := s.repo.ListByScore(ctx, minScore)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, toResponse(lead))
	}
	return transport.LeadListResponse{Items: items, Total: len(items)}, nil
}

// SeedSampleLeads fabricates a fixed set of demo leads. Prospecting is
// simulated; this stands in for a real lead source.
func (s *Service) SeedSampleLeads(ctx context.Context) (transport.LeadListResponse, error) {
	samples := []transport.CreateLeadRequest{
		{
			Name: "Carlos Silva", Email: "carlos.silva@techcorp.com.br", Phone: "+5511988887777",
			Company: "TechCorp", Title: "Diretor Comercial", Interest: "automacao de vendas",
			Budget: "R$ 500-1000/mes", Source: "demo",
		},
		{
			Name: "Ana Santos", Email: "ana.santos@inovare.com.br", Phone: "+5521977776666",
			Company: "Inovare Digital", Title: "CEO", Interest: "aumentar conversoes",
			Budget: "R$ 1000+/mes", Source: "demo",
		},
		{
			Name: "Pedro Costa", Email: "pedro@startupxyz.com.br",
			Company: "Startup XYZ", Interest: "reduzir custo de vendas", Source: "demo",
		},
		{
			Name: "Juliana Lima", Email: "juliana.lima@gmail.com", Source: "demo",
		},
	}

	items := make([]transport.LeadResponse, len(samples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, sample := range samples {
		g.Go(func() error {
			result, err := s.CreateLead(gctx, sample)
			if err != nil {
				return err
			}
			items[i] = result.Lead
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return transport.LeadListResponse{}, err
	}
	return transport.LeadListResponse{Items: items, Total: len(items)}, nil
}

func scoringAttributes(lead repository.Lead) scoring.Attributes {
	return scoring.Attributes{
		Company:  lead.Company,
		Title:    lead.Title,
		Phone:    lead.Phone,
		Budget:   lead.Budget,
		Interest: lead.Interest,
	}
}

func toResponse(lead repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:        lead.ID,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Company:   lead.Company,
		Title:     lead.Title,
		Interest:  lead.Interest,
		Budget:    lead.Budget,
		Source:    lead.Source,
		Status:    string(lead.Status),
		Score:     lead.Score,
		CreatedAt: lead.CreatedAt.Format(time.RFC3339),
	}
	if lead.LastInteractionAt != nil {
		formatted := lead.LastInteractionAt.Format(time.RFC3339)
		resp.LastInteractionAt = &formatted
	}
	return resp
}

func toInteractionResponse(it repository.Interaction) transport.InteractionResponse {
	return transport.InteractionResponse{
		ID:        it.ID,
		LeadID:    it.LeadID,
		Kind:      it.Kind,
		Outbound:  it.Outbound,
		Inbound:   it.Inbound,
		CreatedAt: it.CreatedAt.Format(time.RFC3339),
	}
}
