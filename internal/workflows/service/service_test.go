package service

import (
	"context"
	"errors"
	"testing"

	"resort_crm_backend/internal/workflows/engine"
	"resort_crm_backend/internal/workflows/repository"
	"resort_crm_backend/platform/clock"
	"resort_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeWorkflowRepo struct {
	workflows  []repository.Workflow
	executions map[uuid.UUID]*repository.Execution
	successes  int
	failures   []string
	counters   map[uuid.UUID]int
}

func newFakeWorkflowRepo(workflows ...repository.Workflow) *fakeWorkflowRepo {
	return &fakeWorkflowRepo{
		workflows:  workflows,
		executions: make(map[uuid.UUID]*repository.Execution),
		counters:   make(map[uuid.UUID]int),
	}
}

func (f *fakeWorkflowRepo) Create(ctx context.Context, wf repository.Workflow) (repository.Workflow, error) {
	f.workflows = append(f.workflows, wf)
	return wf, nil
}

func (f *fakeWorkflowRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Workflow, error) {
	for _, wf := range f.workflows {
		if wf.ID == id {
			return wf, nil
		}
	}
	return repository.Workflow{}, errors.New("workflow not found")
}

func (f *fakeWorkflowRepo) List(ctx context.Context) ([]repository.Workflow, error) {
	return f.workflows, nil
}

func (f *fakeWorkflowRepo) ListActiveByTrigger(ctx context.Context, trigger engine.TriggerType) ([]repository.Workflow, error) {
	out := make([]repository.Workflow, 0)
	for _, wf := range f.workflows {
		if wf.IsActive && wf.TriggerType == trigger {
			out = append(out, wf)
		}
	}
	return out, nil
}

func (f *fakeWorkflowRepo) Update(ctx context.Context, wf repository.Workflow) (repository.Workflow, error) {
	return wf, nil
}

func (f *fakeWorkflowRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeWorkflowRepo) Count(ctx context.Context) (int, error) { return len(f.workflows), nil }

func (f *fakeWorkflowRepo) StartExecution(ctx context.Context, exec repository.Execution) (repository.Execution, error) {
	exec.Status = repository.ExecutionRunning
	f.executions[exec.ID] = &exec
	return exec, nil
}

func (f *fakeWorkflowRepo) RecordSuccess(ctx context.Context, executionID, workflowID uuid.UUID) error {
	f.executions[executionID].Status = repository.ExecutionSuccess
	f.successes++
	f.counters[workflowID]++
	return nil
}

func (f *fakeWorkflowRepo) RecordFailure(ctx context.Context, executionID uuid.UUID, message string) error {
	f.executions[executionID].Status = repository.ExecutionFailed
	f.executions[executionID].ErrorMessage = &message
	f.failures = append(f.failures, message)
	return nil
}

func (f *fakeWorkflowRepo) ListExecutions(ctx context.Context, workflowID uuid.UUID, limit int) ([]repository.Execution, error) {
	return nil, nil
}

type fakeSnapshotter struct{ data map[string]interface{} }

func (f fakeSnapshotter) Snapshot(ctx context.Context, entityType string, entityID uuid.UUID) (map[string]interface{}, error) {
	return f.data, nil
}

type recordedAction struct {
	actionType engine.ActionType
}

type fakeExecutor struct {
	executed []recordedAction
	failOn   engine.ActionType
}

func (f *fakeExecutor) Execute(ctx context.Context, action engine.Action, entityType string, entityID uuid.UUID, data map[string]interface{}) error {
	if action.Type == f.failOn {
		return errors.New("status transition rejected")
	}
	f.executed = append(f.executed, recordedAction{actionType: action.Type})
	return nil
}

func newWorkflowService(repo *fakeWorkflowRepo, snap fakeSnapshotter, exec *fakeExecutor) *Service {
	return New(repo, snap, exec, clock.System(), logger.New("development"))
}

func leadCreatedWorkflow(conditions []engine.Condition, actions []engine.Action) repository.Workflow {
	return repository.Workflow{
		ID:          uuid.New(),
		Name:        "test workflow",
		TriggerType: engine.TriggerLeadCreated,
		Conditions:  conditions,
		Actions:     actions,
		IsActive:    true,
	}
}

func TestHandleTriggerRunsMatchingWorkflow(t *testing.T) {
	wf := leadCreatedWorkflow(
		[]engine.Condition{{Field: "source", Operator: engine.OpEquals, Value: "website"}},
		[]engine.Action{
			{Type: engine.ActionAddNote, Params: map[string]string{"note": "hi"}},
			{Type: engine.ActionCreateTask, Params: map[string]string{"title": "call"}},
		},
	)
	repo := newFakeWorkflowRepo(wf)
	exec := &fakeExecutor{}
	svc := newWorkflowService(repo, fakeSnapshotter{data: map[string]interface{}{"source": "website"}}, exec)

	if err := svc.HandleTrigger(context.Background(), engine.TriggerLeadCreated, EntityLead, uuid.New(), nil); err != nil {
		t.Fatalf("HandleTrigger returned error: %v", err)
	}
	if len(exec.executed) != 2 {
		t.Fatalf("expected 2 actions executed, got %d", len(exec.executed))
	}
	if repo.successes != 1 {
		t.Fatalf("expected 1 successful execution, got %d", repo.successes)
	}
	if repo.counters[wf.ID] != 1 {
		t.Fatalf("expected execution count 1, got %d", repo.counters[wf.ID])
	}
}

func TestHandleTriggerSkipsNonMatching(t *testing.T) {
	wf := leadCreatedWorkflow(
		[]engine.Condition{{Field: "source", Operator: engine.OpEquals, Value: "meta_ads"}},
		[]engine.Action{{Type: engine.ActionAddNote, Params: map[string]string{"note": "hi"}}},
	)
	repo := newFakeWorkflowRepo(wf)
	exec := &fakeExecutor{}
	svc := newWorkflowService(repo, fakeSnapshotter{data: map[string]interface{}{"source": "website"}}, exec)

	if err := svc.HandleTrigger(context.Background(), engine.TriggerLeadCreated, EntityLead, uuid.New(), nil); err != nil {
		t.Fatalf("HandleTrigger returned error: %v", err)
	}
	if len(exec.executed) != 0 {
		t.Fatal("expected no actions for a non-matching workflow")
	}
	if len(repo.executions) != 0 {
		t.Fatal("expected no execution record for a non-matching workflow")
	}
}

func TestHandleTriggerFailFastStopsRemainingActions(t *testing.T) {
	wf := leadCreatedWorkflow(nil, []engine.Action{
		{Type: engine.ActionSendEmail, Params: map[string]string{"template": "welcome"}},
		{Type: engine.ActionUpdateStatus, Params: map[string]string{"status": "contacted"}},
		{Type: engine.ActionAddNote, Params: map[string]string{"note": "never runs"}},
	})
	repo := newFakeWorkflowRepo(wf)
	exec := &fakeExecutor{failOn: engine.ActionUpdateStatus}
	svc := newWorkflowService(repo, fakeSnapshotter{data: map[string]interface{}{}}, exec)

	if err := svc.HandleTrigger(context.Background(), engine.TriggerLeadCreated, EntityLead, uuid.New(), nil); err != nil {
		t.Fatalf("HandleTrigger returned error: %v", err)
	}
	// Only the first action ran before the failure.
	if len(exec.executed) != 1 || exec.executed[0].actionType != engine.ActionSendEmail {
		t.Fatalf("expected only send_email to run, got %v", exec.executed)
	}
	if repo.successes != 0 {
		t.Fatal("expected no success recorded on failure")
	}
	if repo.counters[wf.ID] != 0 {
		t.Fatal("expected execution count untouched on failure")
	}
	if len(repo.failures) != 1 {
		t.Fatalf("expected 1 failure record, got %d", len(repo.failures))
	}
}

func TestHandleTriggerContextDataOverridesSnapshot(t *testing.T) {
	wf := leadCreatedWorkflow(
		[]engine.Condition{{Field: "status", Operator: engine.OpEquals, Value: "contacted"}},
		[]engine.Action{{Type: engine.ActionAddNote, Params: map[string]string{"note": "hi"}}},
	)
	repo := newFakeWorkflowRepo(wf)
	exec := &fakeExecutor{}
	// Snapshot says new, the event context says contacted. Context wins.
	svc := newWorkflowService(repo, fakeSnapshotter{data: map[string]interface{}{"status": "new"}}, exec)

	err := svc.HandleTrigger(context.Background(), engine.TriggerLeadCreated, EntityLead, uuid.New(),
		map[string]interface{}{"status": "contacted"})
	if err != nil {
		t.Fatalf("HandleTrigger returned error: %v", err)
	}
	if len(exec.executed) != 1 {
		t.Fatal("expected context data to override the snapshot")
	}
}
