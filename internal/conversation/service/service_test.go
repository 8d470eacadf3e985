package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"vendexa_backend/internal/ai"
	"vendexa_backend/internal/conversation/session"
	"vendexa_backend/internal/conversation/transport"
	"vendexa_backend/internal/events"
	"vendexa_backend/internal/leads/domain"
	"vendexa_backend/internal/leads/repository"
	"vendexa_backend/platform/apperr"
	"vendexa_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	leads        map[uuid.UUID]repository.Lead
	interactions map[uuid.UUID][]repository.Interaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:        make(map[uuid.UUID]repository.Lead),
		interactions: make(map[uuid.UUID][]repository.Interaction),
	}
}

func (f *fakeStore) addLead(lead repository.Lead) repository.Lead {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	if lead.Status == "" {
		lead.Status = domain.StatusNew
	}
	lead.CreatedAt = time.Now()
	f.leads[lead.ID] = lead
	return lead
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, bool, error) {
	return f.addLead(repository.Lead{Name: params.Name, Email: params.Email}), true, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (repository.Lead, error) {
	for _, lead := range f.leads {
		if lead.Email == email {
			return lead, nil
		}
	}
	return repository.Lead{}, repository.ErrNotFound
}

func (f *fakeStore) ListByScore(_ context.Context, minScore int) ([]repository.Lead, error) {
	var out []repository.Lead
	for _, lead := range f.leads {
		if lead.Score >= minScore && !lead.Status.IsTerminal() {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.Status) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	lead.Status = status
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) UpdateScore(_ context.Context, id uuid.UUID, score int) error {
	lead, ok := f.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	lead.Score = score
	f.leads[id] = lead
	return nil
}

func (f *fakeStore) UpdateStatusAndScore(_ context.Context, id uuid.UUID, status domain.Status, score int) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	lead.Status = status
	lead.Score = score
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) AppendInteraction(_ context.Context, params repository.AppendInteractionParams) (repository.Interaction, error) {
	if _, ok := f.leads[params.LeadID]; !ok {
		return repository.Interaction{}, repository.ErrNotFound
	}
	it := repository.Interaction{
		ID:        uuid.New(),
		LeadID:    params.LeadID,
		Kind:      params.Kind,
		Outbound:  params.Outbound,
		Inbound:   params.Inbound,
		CreatedAt: time.Now(),
	}
	f.interactions[params.LeadID] = append(f.interactions[params.LeadID], it)
	return it, nil
}

func (f *fakeStore) ListInteractions(_ context.Context, leadID uuid.UUID) ([]repository.Interaction, error) {
	return f.interactions[leadID], nil
}

func (f *fakeStore) CountInteractions(_ context.Context, leadID uuid.UUID) (int, error) {
	return len(f.interactions[leadID]), nil
}

var _ LeadStore = (*fakeStore)(nil)

type stubEngine struct {
	intent      ai.IntentAnalysis
	intentErr   error
	reply       string
	replyErr    error
	proposal    string
	proposalErr error
}

func (e *stubEngine) Reply(context.Context, ai.LeadProfile, []ai.Turn, string) (string, error) {
	return e.reply, e.replyErr
}

func (e *stubEngine) ClassifyIntent(context.Context, string) (ai.IntentAnalysis, error) {
	return e.intent, e.intentErr
}

func (e *stubEngine) GenerateProposal(context.Context, ai.LeadProfile, string) (string, error) {
	return e.proposal, e.proposalErr
}

func newTestService(engine ai.Engine) (*Service, *fakeStore, session.Store) {
	store := newFakeStore()
	sessions := session.NewMemoryStore(time.Hour)
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	return New(store, engine, sessions, bus, log), store, sessions
}

func TestStart_TransitionsNewToContactedAndLogsOneInteraction(t *testing.T) {
	svc, store, sessions := newTestService(&stubEngine{})
	ctx := context.Background()
	lead := store.addLead(repository.Lead{Name: "Carlos", Email: "carlos@example.com"})

	resp, err := svc.Start(ctx, lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "contacted" {
		t.Fatalf("expected contacted, got %s", resp.Status)
	}
	if !strings.Contains(resp.Greeting, "Carlos") {
		t.Fatalf("expected personalized greeting, got %q", resp.Greeting)
	}
	if n := len(store.interactions[lead.ID]); n != 1 {
		t.Fatalf("expected exactly 1 interaction, got %d", n)
	}
	if _, err := sessions.Get(ctx, lead.ID); err != nil {
		t.Fatalf("expected open session: %v", err)
	}
}

func TestStart_UnknownLeadIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(&stubEngine{})

	_, err := svc.Start(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStart_TerminalLeadIsConflict(t *testing.T) {
	svc, store, _ := newTestService(&stubEngine{})
	lead := store.addLead(repository.Lead{Name: "Fechado", Status: domain.StatusClosed})

	_, err := svc.Start(context.Background(), lead.ID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSend_WithoutSessionIsNotFound(t *testing.T) {
	svc, store, _ := newTestService(&stubEngine{reply: "oi"})
	lead := store.addLead(repository.Lead{Name: "Ana", Status: domain.StatusContacted})

	_, err := svc.Send(context.Background(), lead.ID, transport.SendMessageRequest{Message: "ola"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSend_ReadyToBuyQualifiesLead(t *testing.T) {
	engine := &stubEngine{
		intent: ai.IntentAnalysis{Intent: "ready_to_buy", InterestLevel: "high", Sentiment: "positive"},
		reply:  "Otimo! Vamos fechar.",
	}
	svc, store, _ := newTestService(engine)
	ctx := context.Background()
	lead := store.addLead(repository.Lead{Name: "Pedro", Company: "Startup XYZ"})

	if _, err := svc.Start(ctx, lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := svc.Send(ctx, lead.ID, transport.SendMessageRequest{Message: "quero contratar o professional"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "qualified" {
		t.Fatalf("expected qualified, got %s", resp.Status)
	}
	if !resp.ProposalRecommended {
		t.Fatal("expected proposal to be recommended")
	}
	if resp.Reply != "Otimo! Vamos fechar." {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}
}

func TestSend_OtherIntentLeavesStatusUnchanged(t *testing.T) {
	engine := &stubEngine{
		intent: ai.IntentAnalysis{Intent: "question", InterestLevel: "medium", Sentiment: "neutral"},
		reply:  "Claro, posso explicar.",
	}
	svc, store, _ := newTestService(engine)
	ctx := context.Background()
	lead := store.addLead(repository.Lead{Name: "Juliana"})

	if _, err := svc.Start(ctx, lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := svc.Send(ctx, lead.ID, transport.SendMessageRequest{Message: "como funciona?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "contacted" {
		t.Fatalf("expected contacted, got %s", resp.Status)
	}
	if resp.ProposalRecommended {
		t.Fatal("did not expect proposal recommendation")
	}
}

func TestSend_ClassifierFailureFallsBackToNeutral(t *testing.T) {
	engine := &stubEngine{
		intentErr: errors.New("api quota exceeded"),
		reply:     "Entendi!",
	}
	svc, store, _ := newTestService(engine)
	ctx := context.Background()
	lead := store.addLead(repository.Lead{Name: "Ana"})

	if _, err := svc.Start(ctx, lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := svc.Send(ctx, lead.ID, transport.SendMessageRequest{Message: "hmm"})
	if err != nil {
		t.Fatalf("classification failure must not propagate: %v", err)
	}
	if resp.Intent.Intent != "unknown" || resp.Intent.InterestLevel != "medium" || resp.Intent.Sentiment != "neutral" {
		t.Fatalf("expected neutral fallback, got %+v", resp.Intent)
	}
	if resp.Status != "contacted" {
		t.Fatalf("fallback intent must not change status, got %s", resp.Status)
	}
}

func TestSend_ReplyFailureFallsBackToFixedText(t *testing.T) {
	engine := &stubEngine{
		intent:   ai.IntentAnalysis{Intent: "interest", InterestLevel: "high", Sentiment: "positive"},
		replyErr: errors.New("timeout"),
	}
	svc, store, _ := newTestService(engine)
	ctx := context.Background()
	lead := store.addLead(repository.Lead{Name: "Carlos"})

	if _, err := svc.Start(ctx, lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := svc.Send(ctx, lead.ID, transport.SendMessageRequest{Message: "me conta mais"})
	if err != nil {
		t.Fatalf("reply failure must not propagate: %v", err)
	}
	if resp.Reply != fallbackReply {
		t.Fatalf("expected fallback reply, got %q", resp.Reply)
	}
}

func TestGenerateProposal_QualifiedLeadMovesToProposal(t *testing.T) {
	engine := &stubEngine{proposal: "Proposta: Plano Professional por R$ 697/mes"}
	svc, store, _ := newTestService(engine)
	ctx := context.Background()
	lead := store.addLead(repository.Lead{Name: "Ana", Email: "ana@example.com", Status: domain.StatusQualified})

	resp, err := svc.GenerateProposal(ctx, lead.ID, transport.GenerateProposalRequest{Requirements: "500 leads/mes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "proposal" {
		t.Fatalf("expected proposal, got %s", resp.Status)
	}
	if resp.Proposal != engine.proposal {
		t.Fatalf("unexpected proposal %q", resp.Proposal)
	}

	interactions := store.interactions[lead.ID]
	if len(interactions) != 1 || interactions[0].Kind != "proposal" {
		t.Fatalf("expected one proposal interaction, got %+v", interactions)
	}
}

func TestGenerateProposal_NewLeadIsConflict(t *testing.T) {
	svc, store, _ := newTestService(&stubEngine{proposal: "x"})
	lead := store.addLead(repository.Lead{Name: "Pedro"})

	_, err := svc.GenerateProposal(context.Background(), lead.ID, transport.GenerateProposalRequest{})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGenerateProposal_EngineFailureUsesFallbackText(t *testing.T) {
	engine := &stubEngine{proposalErr: errors.New("unavailable")}
	svc, store, _ := newTestService(engine)
	lead := store.addLead(repository.Lead{Name: "Ana", Company: "Inovare", Status: domain.StatusQualified})

	resp, err := svc.GenerateProposal(context.Background(), lead.ID, transport.GenerateProposalRequest{})
	if err != nil {
		t.Fatalf("proposal failure must not propagate: %v", err)
	}
	if !strings.Contains(resp.Proposal, "VENDEXA") || !strings.Contains(resp.Proposal, "Ana") {
		t.Fatalf("expected fallback proposal, got %q", resp.Proposal)
	}
}

func TestEnd_ClosesSessionAndIsIdempotent(t *testing.T) {
	svc, store, sessions := newTestService(&stubEngine{})
	ctx := context.Background()
	lead := store.addLead(repository.Lead{Name: "Carlos"})

	if _, err := svc.Start(ctx, lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := svc.End(ctx, lead.ID, transport.EndConversationRequest{Reason: "cliente satisfeito"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Ended {
		t.Fatal("expected session to end")
	}
	if _, err := sessions.Get(ctx, lead.ID); err != session.ErrNotFound {
		t.Fatalf("expected session gone, got %v", err)
	}

	again, err := svc.End(ctx, lead.ID, transport.EndConversationRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Ended {
		t.Fatal("second end must be a no-op")
	}
}

func TestStats_CountsActiveSessions(t *testing.T) {
	svc, store, _ := newTestService(&stubEngine{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		lead := store.addLead(repository.Lead{Name: "Lead"})
		if _, err := svc.Start(ctx, lead.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ActiveSessions != 2 {
		t.Fatalf("expected 2 active sessions, got %d", stats.ActiveSessions)
	}
}

func TestLeadStats_ReflectsSessionState(t *testing.T) {
	svc, store, _ := newTestService(&stubEngine{})
	ctx := context.Background()
	lead := store.addLead(repository.Lead{Name: "Carlos"})

	stats, err := svc.LeadStats(ctx, lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ActiveSession {
		t.Fatal("expected no active session before start")
	}
	if stats.TotalInteractions != 0 {
		t.Fatalf("expected no interactions, got %d", stats.TotalInteractions)
	}

	if _, err := svc.Start(ctx, lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err = svc.LeadStats(ctx, lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stats.ActiveSession {
		t.Fatal("expected active session after start")
	}
	if stats.TotalInteractions != 1 {
		t.Fatalf("expected greeting interaction counted, got %d", stats.TotalInteractions)
	}
	if stats.Status != string(domain.StatusContacted) {
		t.Fatalf("expected contacted status, got %s", stats.Status)
	}
	if stats.SessionStartedAt == "" {
		t.Fatal("expected session start timestamp")
	}
}

func TestLeadStats_UnknownLeadIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(&stubEngine{})

	_, err := svc.LeadStats(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
