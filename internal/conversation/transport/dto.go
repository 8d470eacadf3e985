package transport

import (
	"vendexa_backend/internal/ai"

	"github.com/google/uuid"
)

// StartConversationResponse is returned when a conversation is opened.
type StartConversationResponse struct {
	LeadID   uuid.UUID `json:"leadId"`
	Greeting string    `json:"greeting"`
	Status   string    `json:"status"`
	Score    int       `json:"score"`
}

// SendMessageRequest carries one inbound customer message.
type SendMessageRequest struct {
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// SendMessageResponse carries the assistant reply plus the intent analysis
// that drove any status change.
type SendMessageResponse struct {
	LeadID              uuid.UUID         `json:"leadId"`
	Reply               string            `json:"reply"`
	Intent              ai.IntentAnalysis `json:"intent"`
	Status              string            `json:"status"`
	Score               int               `json:"score"`
	ProposalRecommended bool              `json:"proposalRecommended"`
}

// GenerateProposalRequest carries the requirements gathered so far.
type GenerateProposalRequest struct {
	Requirements string `json:"requirements,omitempty" validate:"omitempty,max=4000"`
}

// GenerateProposalResponse carries the rendered proposal.
type GenerateProposalResponse struct {
	LeadID   uuid.UUID `json:"leadId"`
	Proposal string    `json:"proposal"`
	Status   string    `json:"status"`
	Score    int       `json:"score"`
}

// EndConversationRequest carries an optional reason for ending.
type EndConversationRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// EndConversationResponse reports whether a session was actually closed.
type EndConversationResponse struct {
	LeadID          uuid.UUID `json:"leadId"`
	Ended           bool      `json:"ended"`
	DurationSeconds int64     `json:"durationSeconds,omitempty"`
}

// StatsResponse reports live conversation load.
type StatsResponse struct {
	ActiveSessions int `json:"activeSessions"`
}

// LeadStatsResponse summarizes one lead's conversation history and, when a
// session is open, its live state.
type LeadStatsResponse struct {
	LeadID            uuid.UUID `json:"leadId"`
	Status            string    `json:"status"`
	Score             int       `json:"score"`
	TotalInteractions int       `json:"totalInteractions"`
	ActiveSession     bool      `json:"activeSession"`
	SessionMessages   int       `json:"sessionMessages,omitempty"`
	SessionStartedAt  string    `json:"sessionStartedAt,omitempty"`
}
