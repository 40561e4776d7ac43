package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskNotificationOutboxDue = "notification.outbox.due"

const TaskCampaignSend = "campaigns.send"

type NotificationOutboxDuePayload struct {
	OutboxID string `json:"outboxId"`
}

type CampaignSendPayload struct {
	CampaignID string `json:"campaignId"`
}

func NewNotificationOutboxDueTask(payload NotificationOutboxDuePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationOutboxDue, data), nil
}

func ParseNotificationOutboxDuePayload(task *asynq.Task) (NotificationOutboxDuePayload, error) {
	var payload NotificationOutboxDuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return NotificationOutboxDuePayload{}, err
	}
	return payload, nil
}

func NewCampaignSendTask(payload CampaignSendPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCampaignSend, data), nil
}

func ParseCampaignSendPayload(task *asynq.Task) (CampaignSendPayload, error) {
	var payload CampaignSendPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CampaignSendPayload{}, err
	}
	return payload, nil
}
