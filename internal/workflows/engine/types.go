// Package engine evaluates workflow trigger conditions and defines the
// closed sets of operators and actions a workflow may use. Definitions stored
// as JSONB are parsed into these types at the repository boundary so invalid
// operators or action types never reach execution.
package engine

import (
	"encoding/json"
	"fmt"
)

// Operator is the closed set of condition operators.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpIsEmpty     Operator = "is_empty"
	OpIsNotEmpty  Operator = "is_not_empty"
)

var validOperators = map[Operator]bool{
	OpEquals: true, OpNotEquals: true, OpContains: true,
	OpGreaterThan: true, OpLessThan: true, OpIsEmpty: true, OpIsNotEmpty: true,
}

// ActionType is the closed set of workflow action types.
type ActionType string

const (
	ActionSendEmail    ActionType = "send_email"
	ActionAssignUser   ActionType = "assign_user"
	ActionUpdateStatus ActionType = "update_status"
	ActionAddNote      ActionType = "add_note"
	ActionCreateTask   ActionType = "create_task"
)

var validActions = map[ActionType]bool{
	ActionSendEmail: true, ActionAssignUser: true, ActionUpdateStatus: true,
	ActionAddNote: true, ActionCreateTask: true,
}

// TriggerType is the closed set of events a workflow can listen to.
type TriggerType string

const (
	TriggerLeadCreated          TriggerType = "lead_created"
	TriggerLeadStatusChanged    TriggerType = "lead_status_changed"
	TriggerBookingCreated       TriggerType = "booking_created"
	TriggerBookingStatusChanged TriggerType = "booking_status_changed"
)

var validTriggers = map[TriggerType]bool{
	TriggerLeadCreated: true, TriggerLeadStatusChanged: true,
	TriggerBookingCreated: true, TriggerBookingStatusChanged: true,
}

// Condition is a single predicate over the trigger data.
type Condition struct {
	Field    string      `json:"field" yaml:"field"`
	Operator Operator    `json:"operator" yaml:"operator"`
	Value    interface{} `json:"value,omitempty" yaml:"value,omitempty"`
}

// Action is a single step in a workflow's action list. Params carry the
// action-specific settings (template name, status value, note text, assignee).
type Action struct {
	Type   ActionType        `json:"type" yaml:"type"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// ValidateTrigger rejects trigger types outside the closed set.
func ValidateTrigger(trigger TriggerType) error {
	if !validTriggers[trigger] {
		return fmt.Errorf("unknown trigger type %q", trigger)
	}
	return nil
}

// ValidateConditions rejects conditions with unknown operators or empty
// field names.
func ValidateConditions(conditions []Condition) error {
	for i, c := range conditions {
		if c.Field == "" {
			return fmt.Errorf("condition %d: field is required", i)
		}
		if !validOperators[c.Operator] {
			return fmt.Errorf("condition %d: unknown operator %q", i, c.Operator)
		}
	}
	return nil
}

// ValidateActions rejects empty action lists and unknown action types.
func ValidateActions(actions []Action) error {
	if len(actions) == 0 {
		return fmt.Errorf("workflow requires at least one action")
	}
	for i, a := range actions {
		if !validActions[a.Type] {
			return fmt.Errorf("action %d: unknown action type %q", i, a.Type)
		}
	}
	return nil
}

// ParseConditions decodes and validates a stored JSONB condition list.
func ParseConditions(raw []byte) ([]Condition, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var conditions []Condition
	if err := json.Unmarshal(raw, &conditions); err != nil {
		return nil, fmt.Errorf("parse workflow conditions: %w", err)
	}
	if err := ValidateConditions(conditions); err != nil {
		return nil, err
	}
	return conditions, nil
}

// ParseActions decodes and validates a stored JSONB action list.
func ParseActions(raw []byte) ([]Action, error) {
	var actions []Action
	if err := json.Unmarshal(raw, &actions); err != nil {
		return nil, fmt.Errorf("parse workflow actions: %w", err)
	}
	if err := ValidateActions(actions); err != nil {
		return nil, err
	}
	return actions, nil
}
