// Package domain holds the lead lifecycle state machine.
// Status values are only ever written through Transition, so the database
// never sees a status string outside this set.
package domain

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of a lead.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusProposal  Status = "proposal"
	StatusClosed    Status = "closed"
	StatusLost      Status = "lost"
)

// ErrLeadTerminal is returned for transitions out of closed or lost.
// Callers in the conversation and closing workflows treat it as a no-op:
// terminal leads are never reopened.
var ErrLeadTerminal = errors.New("lead is in a terminal status")

// ErrInvalidTransition is returned for transitions the table does not define.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions maps a current status to the set of statuses reachable from it.
// Lost is reachable from every non-terminal status: a loss reason can be
// given at any point in the pipeline.
var transitions = map[Status]map[Status]bool{
	StatusNew: {
		StatusContacted: true,
		StatusLost:      true,
	},
	StatusContacted: {
		StatusQualified: true,
		StatusLost:      true,
	},
	StatusQualified: {
		StatusQualified: true,
		StatusProposal:  true,
		StatusClosed:    true,
		StatusLost:      true,
	},
	StatusProposal: {
		StatusProposal: true,
		StatusClosed:   true,
		StatusLost:     true,
	},
}

// Parse validates a raw status string.
func Parse(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusNew, StatusContacted, StatusQualified, StatusProposal, StatusClosed, StatusLost:
		return s, nil
	default:
		return "", fmt.Errorf("unknown lead status %q", raw)
	}
}

// IsTerminal reports whether no further transitions are defined out of s.
func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusLost
}

// Statuses lists all valid statuses in pipeline order.
func Statuses() []Status {
	return []Status{StatusNew, StatusContacted, StatusQualified, StatusProposal, StatusClosed, StatusLost}
}

// Transition validates moving a lead from current to target.
// It returns ErrLeadTerminal when current is closed or lost, and
// ErrInvalidTransition for any edge the table does not define.
func Transition(current, target Status) error {
	if current.IsTerminal() {
		return ErrLeadTerminal
	}
	if transitions[current][target] {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
}
