// Package service orchestrates AI-driven sales conversations: session
// lifecycle, intent-driven status transitions, and proposal generation.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vendexa_backend/internal/ai"
	"vendexa_backend/internal/conversation/session"
	"vendexa_backend/internal/conversation/transport"
	"vendexa_backend/internal/events"
	"vendexa_backend/internal/leads/domain"
	"vendexa_backend/internal/leads/repository"
	"vendexa_backend/internal/leads/scoring"
	"vendexa_backend/platform/apperr"
	"vendexa_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	msgLeadNotFound    = "lead not found"
	msgLeadClosed      = "lead is already closed"
	msgNoSession       = "no active conversation session"
	collaboratorGemini = "gemini"

	intentReadyToBuy = "ready_to_buy"

	fallbackReply = "Desculpe, estou com uma instabilidade tecnica no momento. Pode repetir em instantes?"
)

// LeadStore is the slice of the record store the orchestrator needs.
type LeadStore interface {
	repository.LeadReader
	repository.LeadWriter
	repository.InteractionStore
}

// Service coordinates conversations between leads and the AI engine.
type Service struct {
	repo     LeadStore
	engine   ai.Engine
	sessions session.Store
	bus      events.Bus
	log      *logger.Logger
}

// New creates a new conversation service.
func New(repo LeadStore, engine ai.Engine, sessions session.Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, engine: engine, sessions: sessions, bus: bus, log: log}
}

// Start opens a conversation session for a lead, greets it, logs the
// greeting, and moves a fresh lead to contacted. Restarting a conversation
// for an already-contacted lead reopens the session without a transition.
func (s *Service) Start(ctx context.Context, leadID uuid.UUID) (transport.StartConversationResponse, error) {
	lead, err := s.getOpenLead(ctx, leadID)
	if err != nil {
		return transport.StartConversationResponse{}, err
	}

	greeting := ai.Greeting(lead.Name)
	now := time.Now()
	sess := session.Session{
		LeadID:       lead.ID,
		History:      []ai.Turn{{Role: "model", Text: greeting}},
		StartedAt:    now,
		LastActiveAt: now,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return transport.StartConversationResponse{}, err
	}

	if _, err := s.appendInteraction(ctx, lead.ID, "chat", greeting, ""); err != nil {
		return transport.StartConversationResponse{}, err
	}

	lead, err = s.advance(ctx, lead, domain.StatusContacted)
	if err != nil {
		return transport.StartConversationResponse{}, err
	}

	s.log.ConversationEvent("started", lead.ID.String())
	return transport.StartConversationResponse{
		LeadID:   lead.ID,
		Greeting: greeting,
		Status:   string(lead.Status),
		Score:    lead.Score,
	}, nil
}

// Send processes one inbound message: classifies intent, produces a reply,
// logs the exchange, recomputes the score, and qualifies the lead when the
// customer signals readiness to buy. Collaborator failures degrade to
// deterministic fallbacks and never abort the workflow.
func (s *Service) Send(ctx context.Context, leadID uuid.UUID, req transport.SendMessageRequest) (transport.SendMessageResponse, error) {
	lead, err := s.getOpenLead(ctx, leadID)
	if err != nil {
		return transport.SendMessageResponse{}, err
	}

	sess, err := s.sessions.Get(ctx, leadID)
	if errors.Is(err, session.ErrNotFound) {
		return transport.SendMessageResponse{}, apperr.NotFound(msgNoSession)
	}
	if err != nil {
		return transport.SendMessageResponse{}, err
	}

	analysis, err := s.engine.ClassifyIntent(ctx, req.Message)
	if err != nil {
		s.log.CollaboratorFallback(collaboratorGemini, "classify_intent", err)
		analysis = ai.FallbackIntent()
	}

	reply, err := s.engine.Reply(ctx, leadProfile(lead), sess.History, req.Message)
	if err != nil {
		s.log.CollaboratorFallback(collaboratorGemini, "reply", err)
		reply = fallbackReply
	}

	if _, err := s.appendInteraction(ctx, lead.ID, "chat", reply, req.Message); err != nil {
		return transport.SendMessageResponse{}, err
	}

	sess.History = append(sess.History,
		ai.Turn{Role: "user", Text: req.Message},
		ai.Turn{Role: "model", Text: reply},
	)
	sess.MessageCount++
	sess.LastActiveAt = time.Now()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return transport.SendMessageResponse{}, err
	}

	ready := analysis.Intent == intentReadyToBuy
	if ready {
		lead, err = s.advance(ctx, lead, domain.StatusQualified)
	} else {
		lead, err = s.recomputeScore(ctx, lead)
	}
	if err != nil {
		return transport.SendMessageResponse{}, err
	}

	return transport.SendMessageResponse{
		LeadID:              lead.ID,
		Reply:               reply,
		Intent:              analysis,
		Status:              string(lead.Status),
		Score:               lead.Score,
		ProposalRecommended: ready,
	}, nil
}

// GenerateProposal renders a personalized proposal, logs it, and moves the
// lead to proposal. Only qualified (or re-proposed) leads are eligible.
func (s *Service) GenerateProposal(ctx context.Context, leadID uuid.UUID, req transport.GenerateProposalRequest) (transport.GenerateProposalResponse, error) {
	lead, err := s.getLead(ctx, leadID)
	if err != nil {
		return transport.GenerateProposalResponse{}, err
	}

	if err := domain.Transition(lead.Status, domain.StatusProposal); err != nil {
		if errors.Is(err, domain.ErrLeadTerminal) {
			return transport.GenerateProposalResponse{}, apperr.Conflict(msgLeadClosed)
		}
		return transport.GenerateProposalResponse{}, apperr.Conflict("lead is not qualified for a proposal")
	}

	proposal, err := s.engine.GenerateProposal(ctx, leadProfile(lead), req.Requirements)
	if err != nil {
		s.log.CollaboratorFallback(collaboratorGemini, "generate_proposal", err)
		proposal = ai.FallbackProposal(leadProfile(lead))
	}

	if _, err := s.appendInteraction(ctx, lead.ID, "proposal", proposal, ""); err != nil {
		return transport.GenerateProposalResponse{}, err
	}

	lead, err = s.advance(ctx, lead, domain.StatusProposal)
	if err != nil {
		return transport.GenerateProposalResponse{}, err
	}

	s.bus.Publish(ctx, events.ProposalSent{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       lead.ID,
		Email:        lead.Email,
		Name:         lead.Name,
		ProposalText: proposal,
	})
	s.log.ConversationEvent("proposal_generated", lead.ID.String())

	return transport.GenerateProposalResponse{
		LeadID:   lead.ID,
		Proposal: proposal,
		Status:   string(lead.Status),
		Score:    lead.Score,
	}, nil
}

// End closes the conversation session and logs its duration. Ending a lead
// with no open session is a no-op.
func (s *Service) End(ctx context.Context, leadID uuid.UUID, req transport.EndConversationRequest) (transport.EndConversationResponse, error) {
	lead, err := s.getLead(ctx, leadID)
	if err != nil {
		return transport.EndConversationResponse{}, err
	}

	sess, err := s.sessions.Get(ctx, leadID)
	if errors.Is(err, session.ErrNotFound) {
		return transport.EndConversationResponse{LeadID: lead.ID, Ended: false}, nil
	}
	if err != nil {
		return transport.EndConversationResponse{}, err
	}

	duration := time.Since(sess.StartedAt).Round(time.Second)
	note := fmt.Sprintf("Conversa encerrada apos %s (%d mensagens)", duration, sess.MessageCount)
	if req.Reason != "" {
		note += ". Motivo: " + req.Reason
	}
	if _, err := s.appendInteraction(ctx, lead.ID, "chat", note, ""); err != nil {
		return transport.EndConversationResponse{}, err
	}

	if err := s.sessions.Delete(ctx, leadID); err != nil {
		return transport.EndConversationResponse{}, err
	}

	s.log.ConversationEvent("ended", lead.ID.String())
	return transport.EndConversationResponse{
		LeadID:          lead.ID,
		Ended:           true,
		DurationSeconds: int64(duration.Seconds()),
	}, nil
}

// Stats reports live conversation load.
func (s *Service) Stats(ctx context.Context) (transport.StatsResponse, error) {
	count, err := s.sessions.Count(ctx)
	if err != nil {
		return transport.StatsResponse{}, err
	}
	return transport.StatsResponse{ActiveSessions: count}, nil
}

// LeadStats summarizes one lead's conversation history. Session fields are
// only populated while a session is open.
func (s *Service) LeadStats(ctx context.Context, leadID uuid.UUID) (transport.LeadStatsResponse, error) {
	lead, err := s.getLead(ctx, leadID)
	if err != nil {
		return transport.LeadStatsResponse{}, err
	}

	count, err := s.repo.CountInteractions(ctx, lead.ID)
	if err != nil {
		return transport.LeadStatsResponse{}, err
	}

	resp := transport.LeadStatsResponse{
		LeadID:            lead.ID,
		Status:            string(lead.Status),
		Score:             lead.Score,
		TotalInteractions: count,
	}

	sess, err := s.sessions.Get(ctx, leadID)
	if errors.Is(err, session.ErrNotFound) {
		return resp, nil
	}
	if err != nil {
		return transport.LeadStatsResponse{}, err
	}

	resp.ActiveSession = true
	resp.SessionMessages = sess.MessageCount
	resp.SessionStartedAt = sess.StartedAt.Format(time.RFC3339)
	return resp, nil
}

func (s *Service) getLead(ctx context.Context, leadID uuid.UUID) (repository.Lead, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound(msgLeadNotFound)
	}
	return lead, err
}

func (s *Service) getOpenLead(ctx context.Context, leadID uuid.UUID) (repository.Lead, error) {
	lead, err := s.getLead(ctx, leadID)
	if err != nil {
		return repository.Lead{}, err
	}
	if lead.Status.IsTerminal() {
		return repository.Lead{}, apperr.Conflict(msgLeadClosed)
	}
	return lead, nil
}

func (s *Service) appendInteraction(ctx context.Context, leadID uuid.UUID, kind, outbound, inbound string) (repository.Interaction, error) {
	it, err := s.repo.AppendInteraction(ctx, repository.AppendInteractionParams{
		LeadID:   leadID,
		Kind:     kind,
		Outbound: outbound,
		Inbound:  inbound,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Interaction{}, apperr.NotFound(msgLeadNotFound)
	}
	return it, err
}

// advance recomputes the score and applies the target transition in one
// atomic write. A transition that is not defined from the current status
// (e.g. restarting a contacted lead) falls back to a score-only update.
func (s *Service) advance(ctx context.Context, lead repository.Lead, target domain.Status) (repository.Lead, error) {
	if err := domain.Transition(lead.Status, target); err != nil {
		if errors.Is(err, domain.ErrLeadTerminal) {
			return repository.Lead{}, apperr.Conflict(msgLeadClosed)
		}
		return s.recomputeScore(ctx, lead)
	}

	count, err := s.repo.CountInteractions(ctx, lead.ID)
	if err != nil {
		return repository.Lead{}, err
	}
	score := scoring.Score(scoringAttributes(lead), count)

	oldStatus := lead.Status
	updated, err := s.repo.UpdateStatusAndScore(ctx, lead.ID, target, score)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return repository.Lead{}, err
	}

	if oldStatus != target {
		s.bus.Publish(ctx, events.LeadStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    updated.ID,
			OldStatus: string(oldStatus),
			NewStatus: string(target),
		})
	}
	return updated, nil
}

func (s *Service) recomputeScore(ctx context.Context, lead repository.Lead) (repository.Lead, error) {
	count, err := s.repo.CountInteractions(ctx, lead.ID)
	if err != nil {
		return repository.Lead{}, err
	}
	score := scoring.Score(scoringAttributes(lead), count)
	if err := s.repo.UpdateScore(ctx, lead.ID, score); err != nil {
		return repository.Lead{}, err
	}
	lead.Score = score
	return lead, nil
}

func leadProfile(lead repository.Lead) ai.LeadProfile {
	return ai.LeadProfile{
		Name:     lead.Name,
		Company:  lead.Company,
		Interest: lead.Interest,
		Budget:   lead.Budget,
	}
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
