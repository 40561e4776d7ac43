// Package repository provides PostgreSQL persistence for workflow definitions
// and execution records. Conditions and actions are stored as JSONB and
// parsed into the engine's closed types on the way out, so a stored
// definition with an unknown operator or action surfaces as an error here
// rather than at execution time.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resort_crm_backend/internal/workflows/engine"
	"resort_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Execution statuses.
const (
	ExecutionRunning = "running"
	ExecutionSuccess = "success"
	ExecutionFailed  = "failed"
)

// Workflow is a stored automation definition.
type Workflow struct {
	ID             uuid.UUID
	Name           string
	TriggerType    engine.TriggerType
	Conditions     []engine.Condition
	Actions        []engine.Action
	IsActive       bool
	ExecutionCount int
	LastExecutedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Execution records one run of a workflow against an entity.
type Execution struct {
	ID           uuid.UUID
	WorkflowID   uuid.UUID
	EntityType   string
	EntityID     uuid.UUID
	Status       string
	ErrorMessage *string
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// Repo implements workflow persistence with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new workflows repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create inserts a workflow definition.
func (r *Repo) Create(ctx context.Context, wf Workflow) (Workflow, error) {
	conditions, actions, err := encodeDefinition(wf)
	if err != nil {
		return Workflow{}, err
	}
	query := `
		INSERT INTO workflows (id, name, trigger_type, trigger_conditions, actions, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, trigger_type, trigger_conditions, actions, is_active,
			execution_count, last_executed_at, created_at, updated_at`

	row := r.pool.QueryRow(ctx, query, wf.ID, wf.Name, string(wf.TriggerType), conditions, actions, wf.IsActive)
	saved, err := scanWorkflow(row)
	if err != nil {
		return Workflow{}, fmt.Errorf("create workflow: %w", err)
	}
	return saved, nil
}

// GetByID retrieves a workflow by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Workflow, error) {
	query := `
		SELECT id, name, trigger_type, trigger_conditions, actions, is_active,
			execution_count, last_executed_at, created_at, updated_at
		FROM workflows WHERE id = $1`

	wf, err := scanWorkflow(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Workflow{}, apperr.NotFound("workflow not found")
	}
	if err != nil {
		return Workflow{}, fmt.Errorf("get workflow by id: %w", err)
	}
	return wf, nil
}

// List retrieves all workflows.
func (r *Repo) List(ctx context.Context) ([]Workflow, error) {
	query := `
		SELECT id, name, trigger_type, trigger_conditions, actions, is_active,
			execution_count, last_executed_at, created_at, updated_at
		FROM workflows ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	return collectWorkflows(rows)
}

// ListActiveByTrigger retrieves active workflows for a trigger type.
func (r *Repo) ListActiveByTrigger(ctx context.Context, trigger engine.TriggerType) ([]Workflow, error) {
	query := `
		SELECT id, name, trigger_type, trigger_conditions, actions, is_active,
			execution_count, last_executed_at, created_at, updated_at
		FROM workflows WHERE is_active AND trigger_type = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, string(trigger))
	if err != nil {
		return nil, fmt.Errorf("list workflows by trigger: %w", err)
	}
	defer rows.Close()

	return collectWorkflows(rows)
}

// Update persists a workflow's mutable fields.
func (r *Repo) Update(ctx context.Context, wf Workflow) (Workflow, error) {
	conditions, actions, err := encodeDefinition(wf)
	if err != nil {
		return Workflow{}, err
	}
	query := `
		UPDATE workflows
		SET name = $2, trigger_type = $3, trigger_conditions = $4, actions = $5, is_active = $6, updated_at = now()
		WHERE id = $1
		RETURNING id, name, trigger_type, trigger_conditions, actions, is_active,
			execution_count, last_executed_at, created_at, updated_at`

	saved, err := scanWorkflow(r.pool.QueryRow(ctx, query, wf.ID, wf.Name, string(wf.TriggerType), conditions, actions, wf.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return Workflow{}, apperr.NotFound("workflow not found")
	}
	if err != nil {
		return Workflow{}, fmt.Errorf("update workflow: %w", err)
	}
	return saved, nil
}

// Delete removes a workflow and its execution history.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("workflow not found")
	}
	return nil
}

// Count returns the number of stored workflows. Used to decide whether the
// default definitions should be seeded.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM workflows`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count workflows: %w", err)
	}
	return count, nil
}

// RecordSuccess marks the execution successful and bumps the workflow's
// counters in one transaction. Counters only move on success.
func (r *Repo) RecordSuccess(ctx context.Context, executionID, workflowID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin execution tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE workflow_executions SET status = $2, completed_at = now() WHERE id = $1`,
		executionID, ExecutionSuccess,
	); err != nil {
		return fmt.Errorf("record execution success: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE workflows SET execution_count = execution_count + 1, last_executed_at = now() WHERE id = $1`,
		workflowID,
	); err != nil {
		return fmt.Errorf("bump workflow counters: %w", err)
	}
	return tx.Commit(ctx)
}

// RecordFailure marks the execution failed with the error message.
func (r *Repo) RecordFailure(ctx context.Context, executionID uuid.UUID, message string) error {
	if _, err := r.pool.Exec(ctx, `
		UPDATE workflow_executions SET status = $2, error_message = $3, completed_at = now() WHERE id = $1`,
		executionID, ExecutionFailed, message,
	); err != nil {
		return fmt.Errorf("record execution failure: %w", err)
	}
	return nil
}

// StartExecution inserts a running execution record.
func (r *Repo) StartExecution(ctx context.Context, exec Execution) (Execution, error) {
	query := `
		INSERT INTO workflow_executions (id, workflow_id, entity_type, entity_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, workflow_id, entity_type, entity_id, status, error_message, started_at, completed_at`

	var saved Execution
	err := r.pool.QueryRow(ctx, query, exec.ID, exec.WorkflowID, exec.EntityType, exec.EntityID, ExecutionRunning).Scan(
		&saved.ID, &saved.WorkflowID, &saved.EntityType, &saved.EntityID,
		&saved.Status, &saved.ErrorMessage, &saved.StartedAt, &saved.CompletedAt,
	)
	if err != nil {
		return Execution{}, fmt.Errorf("start workflow execution: %w", err)
	}
	return saved, nil
}

// ListExecutions retrieves a workflow's execution history, newest first.
func (r *Repo) ListExecutions(ctx context.Context, workflowID uuid.UUID, limit int) ([]Execution, error) {
	query := `
		SELECT id, workflow_id, entity_type, entity_id, status, error_message, started_at, completed_at
		FROM workflow_executions WHERE workflow_id = $1 ORDER BY started_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("list workflow executions: %w", err)
	}
	defer rows.Close()

	items := make([]Execution, 0)
	for rows.Next() {
		var exec Execution
		if err := rows.Scan(
			&exec.ID, &exec.WorkflowID, &exec.EntityType, &exec.EntityID,
			&exec.Status, &exec.ErrorMessage, &exec.StartedAt, &exec.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan workflow execution: %w", err)
		}
		items = append(items, exec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflow executions: %w", err)
	}
	return items, nil
}

func encodeDefinition(wf Workflow) ([]byte, []byte, error) {
	if err := engine.ValidateTrigger(wf.TriggerType); err != nil {
		return nil, nil, apperr.Validation(err.Error())
	}
	if err := engine.ValidateConditions(wf.Conditions); err != nil {
		return nil, nil, apperr.Validation(err.Error())
	}
	if err := engine.ValidateActions(wf.Actions); err != nil {
		return nil, nil, apperr.Validation(err.Error())
	}
	conditions, err := json.Marshal(wf.Conditions)
	if err != nil {
		return nil, nil, fmt.Errorf("encode workflow conditions: %w", err)
	}
	if wf.Conditions == nil {
		conditions = []byte(`[]`)
	}
	actions, err := json.Marshal(wf.Actions)
	if err != nil {
		return nil, nil, fmt.Errorf("encode workflow actions: %w", err)
	}
	return conditions, actions, nil
}

func scanWorkflow(row pgx.Row) (Workflow, error) {
	var wf Workflow
	var trigger string
	var rawConditions, rawActions []byte
	err := row.Scan(
		&wf.ID, &wf.Name, &trigger, &rawConditions, &rawActions, &wf.IsActive,
		&wf.ExecutionCount, &wf.LastExecutedAt, &wf.CreatedAt, &wf.UpdatedAt,
	)
	if err != nil {
		return Workflow{}, err
	}
	wf.TriggerType = engine.TriggerType(trigger)
	if wf.Conditions, err = engine.ParseConditions(rawConditions); err != nil {
		return Workflow{}, err
	}
	if wf.Actions, err = engine.ParseActions(rawActions); err != nil {
		return Workflow{}, err
	}
	return wf, nil
}

func collectWorkflows(rows pgx.Rows) ([]Workflow, error) {
	items := make([]Workflow, 0)
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		items = append(items, wf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflows: %w", err)
	}
	return items, nil
}
