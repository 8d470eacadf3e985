package transport

import "github.com/google/uuid"

// CreateLeadRequest contains data for creating a new lead.
// Email is the natural key: re-posting an existing email returns the
// existing lead instead of erroring.
type CreateLeadRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Company  string `json:"company,omitempty" validate:"omitempty,max=200"`
	Title    string `json:"title,omitempty" validate:"omitempty,max=120"`
	Interest string `json:"interest,omitempty" validate:"omitempty,max=500"`
	Budget   string `json:"budget,omitempty" validate:"omitempty,max=120"`
	Source   string `json:"source,omitempty" validate:"omitempty,max=64"`
}

// LeadResponse represents a lead in API responses.
type LeadResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone,omitempty"`
	Company           string    `json:"company,omitempty"`
	Title             string    `json:"title,omitempty"`
	Interest          string    `json:"interest,omitempty"`
	Budget            string    `json:"budget,omitempty"`
	Source            string    `json:"source,omitempty"`
	Status            string    `json:"status"`
	Score             int       `json:"score"`
	CreatedAt         string    `json:"createdAt"`
	LastInteractionAt *string   `json:"lastInteractionAt,omitempty"`
}

// CreateLeadResponse wraps creation results with an existing-lead marker.
type CreateLeadResponse struct {
	Lead    LeadResponse `json:"lead"`
	Created bool         `json:"created"`
}

// InteractionResponse represents one logged exchange.
type InteractionResponse struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"leadId"`
	Kind      string    `json:"kind"`
	Outbound  string    `json:"outbound"`
	Inbound   string    `json:"inbound,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

// LeadListResponse wraps a list of leads.
type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

// InteractionListResponse wraps a lead's interaction history, newest first.
type InteractionListResponse struct {
	Items []InteractionResponse `json:"items"`
	Total int                   `json:"total"`
}

// ScoreResponse is returned after an on-demand score recompute.
type ScoreResponse struct {
	LeadID uuid.UUID `json:"leadId"`
	Score  int       `json:"score"`
}
