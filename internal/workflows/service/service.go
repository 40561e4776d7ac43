// Package service runs the workflow automation engine: definition management,
// trigger handling and action execution.
package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"resort_crm_backend/internal/workflows/engine"
	"resort_crm_backend/internal/workflows/repository"
	"resort_crm_backend/platform/clock"
	"resort_crm_backend/platform/logger"

	"github.com/google/uuid"
)

const lockStripes = 64

// Repository defines the persistence operations the service needs.
type Repository interface {
	Create(ctx context.Context, wf repository.Workflow) (repository.Workflow, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Workflow, error)
	List(ctx context.Context) ([]repository.Workflow, error)
	ListActiveByTrigger(ctx context.Context, trigger engine.TriggerType) ([]repository.Workflow, error)
	Update(ctx context.Context, wf repository.Workflow) (repository.Workflow, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
	StartExecution(ctx context.Context, exec repository.Execution) (repository.Execution, error)
	RecordSuccess(ctx context.Context, executionID, workflowID uuid.UUID) error
	RecordFailure(ctx context.Context, executionID uuid.UUID, message string) error
	ListExecutions(ctx context.Context, workflowID uuid.UUID, limit int) ([]repository.Execution, error)
}

// Snapshotter loads the current field snapshot of the entity a trigger fired
// for. The returned map feeds condition evaluation.
type Snapshotter interface {
	Snapshot(ctx context.Context, entityType string, entityID uuid.UUID) (map[string]interface{}, error)
}

// Executor performs a single workflow action against an entity.
type Executor interface {
	Execute(ctx context.Context, action engine.Action, entityType string, entityID uuid.UUID, data map[string]interface{}) error
}

// Service manages and runs workflows. Executions for the same entity are
// serialized through striped locks so two triggers firing together cannot
// interleave their actions.
type Service struct {
	repo      Repository
	snapshots Snapshotter
	executor  Executor
	clock     clock.Clock
	log       *logger.Logger
	locks     [lockStripes]sync.Mutex
}

// New creates a new workflows service.
func New(repo Repository, snapshots Snapshotter, executor Executor, clk clock.Clock, log *logger.Logger) *Service {
	return &Service{repo: repo, snapshots: snapshots, executor: executor, clock: clk, log: log}
}

// HandleTrigger evaluates and runs every active workflow for the trigger.
// contextData entries override the entity snapshot, so event-specific fields
// like new_status win over the stored row.
func (s *Service) HandleTrigger(ctx context.Context, trigger engine.TriggerType, entityType string, entityID uuid.UUID, contextData map[string]interface{}) error {
	workflows, err := s.repo.ListActiveByTrigger(ctx, trigger)
	if err != nil {
		return err
	}
	if len(workflows) == 0 {
		return nil
	}

	snapshot, err := s.snapshots.Snapshot(ctx, entityType, entityID)
	if err != nil {
		return err
	}
	data := make(map[string]interface{}, len(snapshot)+len(contextData))
	for k, v := range snapshot {
		data[k] = v
	}
	for k, v := range contextData {
		data[k] = v
	}

	lock := s.lockFor(entityID)
	lock.Lock()
	defer lock.Unlock()

	for _, wf := range workflows {
		if !engine.Evaluate(wf.Conditions, data) {
			continue
		}
		s.run(ctx, wf, entityType, entityID, data)
	}
	return nil
}

// run executes one workflow's actions in order, fail fast. The first action
// error stops the run, records the failure and leaves the workflow counters
// untouched.
func (s *Service) run(ctx context.Context, wf repository.Workflow, entityType string, entityID uuid.UUID, data map[string]interface{}) {
	exec, err := s.repo.StartExecution(ctx, repository.Execution{
		ID:         uuid.New(),
		WorkflowID: wf.ID,
		EntityType: entityType,
		EntityID:   entityID,
	})
	if err != nil {
		s.log.Error("start workflow execution failed", "workflow_id", wf.ID.String(), "error", err.Error())
		return
	}

	for i, action := range wf.Actions {
		if err := s.executor.Execute(ctx, action, entityType, entityID, data); err != nil {
			msg := fmt.Sprintf("action %d (%s): %s", i, action.Type, err.Error())
			s.log.WorkflowEvent("workflow_failed", wf.ID.String(), entityType, entityID.String())
			if recordErr := s.repo.RecordFailure(ctx, exec.ID, msg); recordErr != nil {
				s.log.Error("record workflow failure failed", "execution_id", exec.ID.String(), "error", recordErr.Error())
			}
			return
		}
	}

	s.log.WorkflowEvent("workflow_executed", wf.ID.String(), entityType, entityID.String())
	if err := s.repo.RecordSuccess(ctx, exec.ID, wf.ID); err != nil {
		s.log.Error("record workflow success failed", "execution_id", exec.ID.String(), "error", err.Error())
	}
}

func (s *Service) lockFor(entityID uuid.UUID) *sync.Mutex {
	h := fnv.New32a()
	h.Write(entityID[:])
	return &s.locks[h.Sum32()%lockStripes]
}

// Create stores a new workflow definition.
func (s *Service) Create(ctx context.Context, wf repository.Workflow) (repository.Workflow, error) {
	wf.ID = uuid.New()
	wf.IsActive = true
	return s.repo.Create(ctx, wf)
}

// Get retrieves a workflow by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Workflow, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves all workflows.
func (s *Service) List(ctx context.Context) ([]repository.Workflow, error) {
	return s.repo.List(ctx)
}

// Update persists changes to a workflow definition.
func (s *Service) Update(ctx context.Context, id uuid.UUID, apply func(*repository.Workflow)) (repository.Workflow, error) {
	wf, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Workflow{}, err
	}
	apply(&wf)
	return s.repo.Update(ctx, wf)
}

// Delete removes a workflow.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ListExecutions retrieves a workflow's recent execution history.
func (s *Service) ListExecutions(ctx context.Context, workflowID uuid.UUID, limit int) ([]repository.Execution, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListExecutions(ctx, workflowID, limit)
}
