package scheduler

import (
	"context"

	"vendexa_backend/internal/events"
	"vendexa_backend/platform/logger"
)

// LeadCreatedHandler enqueues the follow-up sequence when a lead is created.
// Scheduling failures are logged and swallowed: losing a follow-up must not
// fail lead creation.
type LeadCreatedHandler struct {
	scheduler FollowUpScheduler
	log       *logger.Logger
}

func NewLeadCreatedHandler(scheduler FollowUpScheduler, log *logger.Logger) *LeadCreatedHandler {
	return &LeadCreatedHandler{scheduler: scheduler, log: log}
}

// RegisterHandlers subscribes the handler to lead creation events.
func (h *LeadCreatedHandler) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), h)
}

func (h *LeadCreatedHandler) Handle(ctx context.Context, event events.Event) error {
	created, ok := event.(events.LeadCreated)
	if !ok {
		return nil
	}

	if err := h.scheduler.ScheduleLeadFollowUps(ctx, created.LeadID, created.OccurredAt()); err != nil {
		h.log.Error("follow-up scheduling failed",
			"lead_id", created.LeadID.String(),
			"error", err,
		)
	}
	return nil
}

var _ events.Handler = (*LeadCreatedHandler)(nil)
