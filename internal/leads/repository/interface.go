package repository

import (
	"context"

	"vendexa_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	GetByEmail(ctx context.Context, email string) (Lead, error)
	ListByScore(ctx context.Context, minScore int) ([]Lead, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (Lead, error)
	UpdateScore(ctx context.Context, id uuid.UUID, score int) error
	UpdateStatusAndScore(ctx context.Context, id uuid.UUID, status domain.Status, score int) (Lead, error)
}

// InteractionStore records and reads the append-only interaction log.
type InteractionStore interface {
	AppendInteraction(ctx context.Context, params AppendInteractionParams) (Interaction, error)
	ListInteractions(ctx context.Context, leadID uuid.UUID) ([]Interaction, error)
	CountInteractions(ctx context.Context, leadID uuid.UUID) (int, error)
}

// MetricsReader provides aggregate pipeline counts.
type MetricsReader interface {
	StatusCounts(ctx context.Context) (map[domain.Status]int, error)
}

// LeadsRepository is the full record-store contract.
type LeadsRepository interface {
	LeadReader
	LeadWriter
	InteractionStore
	MetricsReader
}
