package repository

import (
	"context"
	"fmt"
	"time"

	"resort_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// Task is a staff follow-up created by a workflow action.
type Task struct {
	ID         uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	Title      string
	AssignedTo *uuid.UUID
	DueAt      time.Time
	IsDone     bool
	CreatedAt  time.Time
}

// CreateTask inserts a follow-up task.
func (r *Repo) CreateTask(ctx context.Context, task Task) (Task, error) {
	query := `
		INSERT INTO tasks (id, entity_type, entity_id, title, assigned_to, due_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, entity_type, entity_id, title, assigned_to, due_at, is_done, created_at`

	var saved Task
	err := r.pool.QueryRow(ctx, query,
		task.ID, task.EntityType, task.EntityID, task.Title, task.AssignedTo, task.DueAt,
	).Scan(&saved.ID, &saved.EntityType, &saved.EntityID, &saved.Title, &saved.AssignedTo, &saved.DueAt, &saved.IsDone, &saved.CreatedAt)
	if err != nil {
		return Task{}, fmt.Errorf("create task: %w", err)
	}
	return saved, nil
}

// ListOpenTasks retrieves undone tasks ordered by due date.
func (r *Repo) ListOpenTasks(ctx context.Context, limit int) ([]Task, error) {
	query := `
		SELECT id, entity_type, entity_id, title, assigned_to, due_at, is_done, created_at
		FROM tasks WHERE NOT is_done ORDER BY due_at LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	defer rows.Close()

	items := make([]Task, 0)
	for rows.Next() {
		var task Task
		if err := rows.Scan(&task.ID, &task.EntityType, &task.EntityID, &task.Title, &task.AssignedTo, &task.DueAt, &task.IsDone, &task.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		items = append(items, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return items, nil
}

// CompleteTask marks a task done.
func (r *Repo) CompleteTask(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE tasks SET is_done = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("task not found")
	}
	return nil
}
