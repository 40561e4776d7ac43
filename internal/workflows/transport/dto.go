// Package transport defines the request and response shapes for the
// workflows module.
package transport

import (
	"resort_crm_backend/internal/workflows/engine"

	"github.com/google/uuid"
)

type CreateWorkflowRequest struct {
	Name        string             `json:"name" validate:"required,min=2,max=160"`
	TriggerType string             `json:"trigger_type" validate:"required"`
	Conditions  []engine.Condition `json:"conditions,omitempty"`
	Actions     []engine.Action    `json:"actions" validate:"required,min=1"`
}

type UpdateWorkflowRequest struct {
	Name        *string            `json:"name,omitempty" validate:"omitempty,min=2,max=160"`
	TriggerType *string            `json:"trigger_type,omitempty"`
	Conditions  []engine.Condition `json:"conditions,omitempty"`
	Actions     []engine.Action    `json:"actions,omitempty"`
	IsActive    *bool              `json:"is_active,omitempty"`
}

type WorkflowResponse struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	TriggerType    string             `json:"trigger_type"`
	Conditions     []engine.Condition `json:"conditions"`
	Actions        []engine.Action    `json:"actions"`
	IsActive       bool               `json:"is_active"`
	ExecutionCount int                `json:"execution_count"`
	LastExecutedAt *string            `json:"last_executed_at,omitempty"`
	CreatedAt      string             `json:"created_at"`
}

type TaskResponse struct {
	ID         uuid.UUID  `json:"id"`
	EntityType string     `json:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id"`
	Title      string     `json:"title"`
	AssignedTo *uuid.UUID `json:"assigned_to,omitempty"`
	DueAt      string     `json:"due_at"`
	IsDone     bool       `json:"is_done"`
	CreatedAt  string     `json:"created_at"`
}

type ExecutionResponse struct {
	ID           uuid.UUID `json:"id"`
	WorkflowID   uuid.UUID `json:"workflow_id"`
	EntityType   string    `json:"entity_type"`
	EntityID     uuid.UUID `json:"entity_id"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	StartedAt    string    `json:"started_at"`
	CompletedAt  *string   `json:"completed_at,omitempty"`
}
