package scheduler

import (
	"context"
	"testing"
	"time"

	"vendexa_backend/internal/events"
	"vendexa_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeFollowUpScheduler struct {
	leadIDs []uuid.UUID
	times   []time.Time
	err     error
}

func (f *fakeFollowUpScheduler) ScheduleLeadFollowUps(_ context.Context, leadID uuid.UUID, createdAt time.Time) error {
	f.leadIDs = append(f.leadIDs, leadID)
	f.times = append(f.times, createdAt)
	return f.err
}

func TestLeadCreatedHandler_SchedulesFollowUps(t *testing.T) {
	fake := &fakeFollowUpScheduler{}
	handler := NewLeadCreatedHandler(fake, logger.New("development"))

	leadID := uuid.New()
	event := events.LeadCreated{BaseEvent: events.NewBaseEvent(), LeadID: leadID, Name: "Carlos", Email: "carlos@example.com"}

	if err := handler.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.leadIDs) != 1 || fake.leadIDs[0] != leadID {
		t.Fatalf("expected one scheduled lead, got %v", fake.leadIDs)
	}
	if !fake.times[0].Equal(event.OccurredAt()) {
		t.Fatal("expected sequence anchored to event time")
	}
}

func TestLeadCreatedHandler_IgnoresOtherEvents(t *testing.T) {
	fake := &fakeFollowUpScheduler{}
	handler := NewLeadCreatedHandler(fake, logger.New("development"))

	err := handler.Handle(context.Background(), events.DealWon{
		BaseEvent: events.NewBaseEvent(), LeadID: uuid.New(), ValueCents: 69700,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.leadIDs) != 0 {
		t.Fatal("unrelated event must not schedule follow-ups")
	}
}

func TestLeadFollowUpPayload_RoundTrip(t *testing.T) {
	leadID := uuid.New()
	task, err := NewLeadFollowUpTask(LeadFollowUpPayload{LeadID: leadID.String(), Stage: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type() != TaskLeadFollowUp {
		t.Fatalf("unexpected task type: %s", task.Type())
	}

	payload, err := ParseLeadFollowUpPayload(task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.LeadID != leadID.String() || payload.Stage != 2 {
		t.Fatalf("payload mismatch: %+v", payload)
	}
}

func TestFollowUpMessages_CoverAllStages(t *testing.T) {
	for stage := 1; stage <= len(followUpOffsets); stage++ {
		if _, ok := followUpMessages[stage]; !ok {
			t.Fatalf("missing follow-up message for stage %d", stage)
		}
	}
}
