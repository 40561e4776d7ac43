package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"resort_crm_backend/internal/workflows/engine"
	"resort_crm_backend/internal/workflows/repository"
	"resort_crm_backend/platform/clock"

	"github.com/google/uuid"
)

// Entity types workflows operate on.
const (
	EntityLead    = "lead"
	EntityBooking = "booking"
)

// LeadActions is the slice of the leads module the executor needs.
type LeadActions interface {
	Assign(ctx context.Context, leadID, userID uuid.UUID) error
	UpdateStatus(ctx context.Context, leadID uuid.UUID, status string) error
	AppendNote(ctx context.Context, leadID uuid.UUID, note string) error
}

// EmailEnqueuer queues a templated email for delivery by the worker.
type EmailEnqueuer interface {
	EnqueueTemplateEmail(ctx context.Context, template, entityType string, entityID uuid.UUID, data map[string]interface{}) error
}

// TaskCreator records a follow-up task for staff.
type TaskCreator interface {
	CreateTask(ctx context.Context, entityType string, entityID uuid.UUID, title string, assignee *uuid.UUID, dueHours int) error
}

// DefaultExecutor executes workflow actions against the domain modules.
type DefaultExecutor struct {
	Leads LeadActions
	Email EmailEnqueuer
	Tasks TaskCreator
}

// Execute dispatches one action. Param errors and unsupported entity types
// are returned so the run records them as failures.
func (e *DefaultExecutor) Execute(ctx context.Context, action engine.Action, entityType string, entityID uuid.UUID, data map[string]interface{}) error {
	switch action.Type {
	case engine.ActionSendEmail:
		template := action.Params["template"]
		if template == "" {
			return fmt.Errorf("send_email requires a template param")
		}
		return e.Email.EnqueueTemplateEmail(ctx, template, entityType, entityID, data)

	case engine.ActionAssignUser:
		if entityType != EntityLead {
			return fmt.Errorf("assign_user only applies to leads")
		}
		userID, err := uuid.Parse(action.Params["user_id"])
		if err != nil {
			return fmt.Errorf("assign_user requires a valid user_id param")
		}
		return e.Leads.Assign(ctx, entityID, userID)

	case engine.ActionUpdateStatus:
		if entityType != EntityLead {
			return fmt.Errorf("update_status only applies to leads")
		}
		status := action.Params["status"]
		if status == "" {
			return fmt.Errorf("update_status requires a status param")
		}
		return e.Leads.UpdateStatus(ctx, entityID, status)

	case engine.ActionAddNote:
		if entityType != EntityLead {
			return fmt.Errorf("add_note only applies to leads")
		}
		note := action.Params["note"]
		if note == "" {
			return fmt.Errorf("add_note requires a note param")
		}
		return e.Leads.AppendNote(ctx, entityID, note)

	case engine.ActionCreateTask:
		title := action.Params["title"]
		if title == "" {
			return fmt.Errorf("create_task requires a title param")
		}
		var assignee *uuid.UUID
		if raw := action.Params["assignee_id"]; raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("create_task assignee_id is not a valid UUID")
			}
			assignee = &id
		}
		dueHours := 24
		if raw := action.Params["due_hours"]; raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				return fmt.Errorf("create_task due_hours must be a positive integer")
			}
			dueHours = parsed
		}
		return e.Tasks.CreateTask(ctx, entityType, entityID, title, assignee, dueHours)

	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
}

var _ Executor = (*DefaultExecutor)(nil)

// RepoTaskCreator stores workflow tasks in the module's own repository.
type RepoTaskCreator struct {
	Repo  *repository.Repo
	Clock clock.Clock
}

func (t RepoTaskCreator) CreateTask(ctx context.Context, entityType string, entityID uuid.UUID, title string, assignee *uuid.UUID, dueHours int) error {
	_, err := t.Repo.CreateTask(ctx, repository.Task{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Title:      title,
		AssignedTo: assignee,
		DueAt:      t.Clock.Now().Add(time.Duration(dueHours) * time.Hour),
	})
	return err
}

var _ TaskCreator = RepoTaskCreator{}
