package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskLeadFollowUp sends one step of the lead follow-up email sequence.
const TaskLeadFollowUp = "leads.followup"

// TaskCloseBatch runs an automated closing pass over ready leads.
const TaskCloseBatch = "closing.batch"

type LeadFollowUpPayload struct {
	LeadID string `json:"leadId"`
	Stage  int    `json:"stage"`
}

func NewLeadFollowUpTask(payload LeadFollowUpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadFollowUp, data), nil
}

func ParseLeadFollowUpPayload(task *asynq.Task) (LeadFollowUpPayload, error) {
	var payload LeadFollowUpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadFollowUpPayload{}, err
	}
	return payload, nil
}

func NewCloseBatchTask() *asynq.Task {
	return asynq.NewTask(TaskCloseBatch, nil)
}
