package transport

import "github.com/google/uuid"

// MarkWonRequest records a closed deal and its value.
type MarkWonRequest struct {
	ValueCents int64 `json:"valueCents" validate:"required,gt=0"`
}

// MarkLostRequest records a lost deal and why.
type MarkLostRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

// DealSummary is returned after a deal is finalized either way.
type DealSummary struct {
	LeadID            uuid.UUID `json:"leadId"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Status            string    `json:"status"`
	ValueCents        int64     `json:"valueCents,omitempty"`
	Reason            string    `json:"reason,omitempty"`
	Score             int       `json:"score"`
	TotalInteractions int       `json:"totalInteractions"`
	ClosedAt          string    `json:"closedAt"`
}

// ReadyLead is one lead eligible for closing.
type ReadyLead struct {
	LeadID uuid.UUID `json:"leadId"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Status string    `json:"status"`
	Score  int       `json:"score"`
}

// ReadyLeadsResponse wraps the closing queue, best leads first.
type ReadyLeadsResponse struct {
	Items []ReadyLead `json:"items"`
	Total int         `json:"total"`
}

// CloseBatchResponse summarizes one simulated closing run.
type CloseBatchResponse struct {
	Attempted int           `json:"attempted"`
	Won       []DealSummary `json:"won"`
	Skipped   int           `json:"skipped"`
}

// MetricsResponse reports pipeline counts and the overall conversion rate.
type MetricsResponse struct {
	StatusCounts   map[string]int `json:"statusCounts"`
	TotalLeads     int            `json:"totalLeads"`
	ConversionRate float64        `json:"conversionRate"`
}
