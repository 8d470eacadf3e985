// Package repository implements the lead record store on Postgres.
package repository

import (
	"context"
	"errors"
	"time"

	"vendexa_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a referenced lead does not exist.
var ErrNotFound = errors.New("not found")

// Lead is the persisted lead record.
type Lead struct {
	ID                uuid.UUID
	Name              string
	Email             string
	Phone             string
	Company           string
	Title             string
	Interest          string
	Budget            string
	Source            string
	Status            domain.Status
	Score             int
	CreatedAt         time.Time
	LastInteractionAt *time.Time
}

// Interaction is one logged exchange with a lead. Append-only.
type Interaction struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Kind      string
	Outbound  string
	Inbound   string
	CreatedAt time.Time
}

// CreateLeadParams holds the attributes for a new lead.
type CreateLeadParams struct {
	Name     string
	Email    string
	Phone    string
	Company  string
	Title    string
	Interest string
	Budget   string
	Source   string
}

// AppendInteractionParams holds one exchange to log against a lead.
type AppendInteractionParams struct {
	LeadID   uuid.UUID
	Kind     string
	Outbound string
	Inbound  string
}

const leadColumns = `id, name, email, phone, company, title, interest, budget, source, status, score, created_at, last_interaction_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	var status string
	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Company,
		&lead.Title,
		&lead.Interest,
		&lead.Budget,
		&lead.Source,
		&status,
		&lead.Score,
		&lead.CreatedAt,
		&lead.LastInteractionAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	lead.Status, err = domain.Parse(status)
	return lead, err
}

// Create inserts a lead with status new and score 0. Creation is idempotent
// by email: when the email already exists, the existing row is returned and
// the bool result is false.
func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, bool, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, email, phone, company, title, interest, budget, source, status, score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0)
		ON CONFLICT (email) DO NOTHING
		RETURNING `+leadColumns,
		params.Name, params.Email, params.Phone, params.Company, params.Title,
		params.Interest, params.Budget, params.Source, string(domain.StatusNew),
	)

	lead, err := scanLead(row)
	if err == nil {
		return lead, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Lead{}, false, err
	}

	// Conflict path: return the lead that owns this email.
	existing, err := r.GetByEmail(ctx, params.Email)
	return existing, false, err
}

// GetByID fetches a lead by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

// GetByEmail fetches a lead by its unique email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE email = $1`, email)
	return scanLead(row)
}

// UpdateStatus writes a new status and refreshes last_interaction_at under
// the per-lead advisory lock.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (Lead, error) {
	return r.updateLocked(ctx, id, `
		UPDATE leads
		SET status = $2, last_interaction_at = now()
		WHERE id = $1
		RETURNING `+leadColumns, string(status))
}

// UpdateScore persists a recomputed score.
func (r *Repository) UpdateScore(ctx context.Context, id uuid.UUID, score int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE leads SET score = $2 WHERE id = $1`, id, score)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatusAndScore applies a status transition and a score write in one
// transaction so concurrent writers cannot leave the pair inconsistent.
func (r *Repository) UpdateStatusAndScore(ctx context.Context, id uuid.UUID, status domain.Status, score int) (Lead, error) {
	return r.updateLocked(ctx, id, `
		UPDATE leads
		SET status = $2, score = $3, last_interaction_at = now()
		WHERE id = $1
		RETURNING `+leadColumns, string(status), score)
}

// updateLocked runs the given single-lead UPDATE inside a transaction holding
// pg_advisory_xact_lock for the lead id.
func (r *Repository) updateLocked(ctx context.Context, id uuid.UUID, query string, args ...any) (Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, id); err != nil {
		return Lead{}, err
	}

	allArgs := append([]any{id}, args...)
	lead, err := scanLead(tx.QueryRow(ctx, query, allArgs...))
	if err != nil {
		return Lead{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, err
	}
	return lead, nil
}

// AppendInteraction logs one exchange and bumps the lead's
// last_interaction_at in the same transaction. Returns ErrNotFound when the
// lead does not exist.
func (r *Repository) AppendInteraction(ctx context.Context, params AppendInteractionParams) (Interaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Interaction{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `UPDATE leads SET last_interaction_at = now() WHERE id = $1`, params.LeadID)
	if err != nil {
		return Interaction{}, err
	}
	if tag.RowsAffected() == 0 {
		return Interaction{}, ErrNotFound
	}

	var interaction Interaction
	err = tx.QueryRow(ctx, `
		INSERT INTO interactions (lead_id, kind, outbound, inbound)
		VALUES ($1, $2, $3, $4)
		RETURNING id, lead_id, kind, outbound, inbound, created_at
	`, params.LeadID, params.Kind, params.Outbound, params.Inbound).Scan(
		&interaction.ID,
		&interaction.LeadID,
		&interaction.Kind,
		&interaction.Outbound,
		&interaction.Inbound,
		&interaction.CreatedAt,
	)
	if err != nil {
		return Interaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Interaction{}, err
	}
	return interaction, nil
}

// ListInteractions returns a lead's interactions, newest first.
func (r *Repository) ListInteractions(ctx context.Context, leadID uuid.UUID) ([]Interaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, kind, outbound, inbound, created_at
		FROM interactions
		WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interactions []Interaction
	for rows.Next() {
		var it Interaction
		if err := rows.Scan(&it.ID, &it.LeadID, &it.Kind, &it.Outbound, &it.Inbound, &it.CreatedAt); err != nil {
			return nil, err
		}
		interactions = append(interactions, it)
	}
	return interactions, rows.Err()
}

// CountInteractions returns the number of logged interactions for a lead.
func (r *Repository) CountInteractions(ctx context.Context, leadID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM interactions WHERE lead_id = $1`, leadID).Scan(&count)
	return count, err
}

// ListByScore returns open leads with score >= minScore, excluding terminal
// statuses, ordered by score desc then recency desc.
func (r *Repository) ListByScore(ctx context.Context, minScore int) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE score >= $1 AND status NOT IN ($2, $3)
		ORDER BY score DESC, created_at DESC
	`, minScore, string(domain.StatusClosed), string(domain.StatusLost))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// StatusCounts returns the number of leads per status.
func (r *Repository) StatusCounts(ctx context.Context) (map[domain.Status]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var raw string
		var count int
		if err := rows.Scan(&raw, &count); err != nil {
			return nil, err
		}
		status, err := domain.Parse(raw)
		if err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

var _ LeadsRepository = (*Repository)(nil)
