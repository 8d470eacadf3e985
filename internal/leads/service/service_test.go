package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"vendexa_backend/internal/events"
	"vendexa_backend/internal/leads/domain"
	"vendexa_backend/internal/leads/repository"
	"vendexa_backend/internal/leads/transport"
	"vendexa_backend/platform/apperr"
	"vendexa_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeRepo is an in-memory LeadsRepository mirroring the store's contract.
type fakeRepo struct {
	mu           sync.Mutex
	leads        map[uuid.UUID]repository.Lead
	byEmail      map[string]uuid.UUID
	interactions map[uuid.UUID][]repository.Interaction
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		leads:        make(map[uuid.UUID]repository.Lead),
		byEmail:      make(map[string]uuid.UUID),
		interactions: make(map[uuid.UUID][]repository.Interaction),
	}
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.byEmail[params.Email]; ok {
		return f.leads[id], false, nil
	}
	lead := repository.Lead{
		ID:        uuid.New(),
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Company:   params.Company,
		Title:     params.Title,
		Interest:  params.Interest,
		Budget:    params.Budget,
		Source:    params.Source,
		Status:    domain.StatusNew,
		CreatedAt: time.Now(),
	}
	f.leads[lead.ID] = lead
	f.byEmail[lead.Email] = lead.ID
	return lead, true, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byEmail[email]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return f.leads[id], nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.Status) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	now := time.Now()
	lead.Status = status
	lead.LastInteractionAt = &now
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeRepo) UpdateScore(_ context.Context, id uuid.UUID, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	lead.Score = score
	f.leads[id] = lead
	return nil
}

func (f *fakeRepo) UpdateStatusAndScore(ctx context.Context, id uuid.UUID, status domain.Status, score int) (repository.Lead, error) {
	if err := f.UpdateScore(ctx, id, score); err != nil {
		return repository.Lead{}, err
	}
	return f.UpdateStatus(ctx, id, status)
}

func (f *fakeRepo) AppendInteraction(_ context.Context, params repository.AppendInteractionParams) (repository.Interaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[params.LeadID]
	if !ok {
		return repository.Interaction{}, repository.ErrNotFound
	}
	now := time.Now()
	lead.LastInteractionAt = &now
	f.leads[params.LeadID] = lead
	it := repository.Interaction{
		ID:        uuid.New(),
		LeadID:    params.LeadID,
		Kind:      params.Kind,
		Outbound:  params.Outbound,
		Inbound:   params.Inbound,
		CreatedAt: now,
	}
	f.interactions[params.LeadID] = append([]repository.Interaction{it}, f.interactions[params.LeadID]...)
	return it, nil
}

func (f *fakeRepo) ListInteractions(_ context.Context, leadID uuid.UUID) ([]repository.Interaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]repository.Interaction(nil), f.interactions[leadID]...), nil
}

func (f *fakeRepo) CountInteractions(_ context.Context, leadID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.interactions[leadID]), nil
}

func (f *fakeRepo) ListByScore(_ context.Context, minScore int) ([]repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Lead
	for _, lead := range f.leads {
		if lead.Score >= minScore && !lead.Status.IsTerminal() {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (f *fakeRepo) StatusCounts(_ context.Context) (map[domain.Status]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[domain.Status]int)
	for _, lead := range f.leads {
		counts[lead.Status]++
	}
	return counts, nil
}

var _ repository.LeadsRepository = (*fakeRepo)(nil)

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	return New(repo, bus, log), repo
}

func TestCreateLead_FreshLeadStartsNewWithZeroScore(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.CreateLead(context.Background(), transport.CreateLeadRequest{
		Name:  "Juliana Lima",
		Email: "juliana@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Created {
		t.Fatal("expected lead to be created")
	}
	if result.Lead.Status != "new" {
		t.Fatalf("expected status new, got %s", result.Lead.Status)
	}
	if result.Lead.Score != 0 {
		t.Fatalf("expected score 0, got %d", result.Lead.Score)
	}
}

func TestCreateLead_DuplicateEmailReturnsExistingID(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateLead(ctx, transport.CreateLeadRequest{Name: "Carlos", Email: "carlos@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.CreateLead(ctx, transport.CreateLeadRequest{Name: "Someone Else", Email: "carlos@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Created {
		t.Fatal("expected duplicate creation to be resolved, not created")
	}
	if second.Lead.ID != first.Lead.ID {
		t.Fatalf("expected same lead id, got %s and %s", first.Lead.ID, second.Lead.ID)
	}
}

func TestGetLead_UnknownIDIsNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetLead(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecomputeScore_UsesAttributesAndInteractionCount(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	result, err := svc.CreateLead(ctx, transport.CreateLeadRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Company:  "Inovare",
		Title:    "CEO",
		Phone:    "+5521977776666",
		Budget:   "R$ 1000",
		Interest: "automacao",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	leadID := result.Lead.ID

	score, err := svc.RecomputeScore(ctx, leadID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 90 {
		t.Fatalf("expected 90 for full attributes and no interactions, got %d", score)
	}

	for i := 0; i < 5; i++ {
		if _, err := repo.AppendInteraction(ctx, repository.AppendInteractionParams{
			LeadID: leadID, Kind: "chat", Outbound: "oi",
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	score, err = svc.RecomputeScore(ctx, leadID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 100 {
		t.Fatalf("expected 100 after 5 interactions, got %d", score)
	}

	stored, err := repo.GetByID(ctx, leadID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Score != 100 {
		t.Fatalf("expected persisted score 100, got %d", stored.Score)
	}
}

func TestHotLeads_ExcludesLowScores(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	hot, err := svc.CreateLead(ctx, transport.CreateLeadRequest{
		Name: "Hot", Email: "hot@example.com", Company: "X", Title: "Y", Budget: "Z", Interest: "W",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.RecomputeScore(ctx, hot.Lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CreateLead(ctx, transport.CreateLeadRequest{Name: "Cold", Email: "cold@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.HotLeads(ctx, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected 1 hot lead, got %d", result.Total)
	}
	if result.Items[0].Email != "hot@example.com" {
		t.Fatalf("unexpected hot lead %s", result.Items[0].Email)
	}

	// Terminal leads never show up as hot, regardless of score.
	if _, err := repo.UpdateStatus(ctx, hot.Lead.ID, domain.StatusLost); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err = svc.HotLeads(ctx, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 0 {
		t.Fatalf("expected no hot leads after loss, got %d", result.Total)
	}
}

func TestSeedSampleLeads_Idempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.SeedSampleLeads(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.SeedSampleLeads(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Total != second.Total {
		t.Fatalf("expected same sample set, got %d then %d", first.Total, second.Total)
	}
	for i := range first.Items {
		if first.Items[i].ID != second.Items[i].ID {
			t.Fatalf("expected stable ids for seeded leads")
		}
	}
}
