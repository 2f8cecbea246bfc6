package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskRecordCallOutcome = "dialer.outcome.record"

const TaskDNCReverify = "dialer.dnc.reverify"

type RecordCallOutcomePayload struct {
	LeadID          string    `json:"leadId"`
	Outcome         string    `json:"outcome"`
	DurationSeconds int       `json:"durationSeconds"`
	Notes           string    `json:"notes,omitempty"`
	EndedAt         time.Time `json:"endedAt"`
}

type DNCReverifyPayload struct {
	LeadID string `json:"leadId"`
	Phone  string `json:"phone"`
}

func NewRecordCallOutcomeTask(payload RecordCallOutcomePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecordCallOutcome, data), nil
}

func ParseRecordCallOutcomePayload(task *asynq.Task) (RecordCallOutcomePayload, error) {
	var payload RecordCallOutcomePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RecordCallOutcomePayload{}, err
	}
	return payload, nil
}

func NewDNCReverifyTask(payload DNCReverifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDNCReverify, data), nil
}

func ParseDNCReverifyPayload(task *asynq.Task) (DNCReverifyPayload, error) {
	var payload DNCReverifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DNCReverifyPayload{}, err
	}
	return payload, nil
}
