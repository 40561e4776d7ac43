// Package handler exposes the workflows module over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resort_crm_backend/internal/workflows/engine"
	"resort_crm_backend/internal/workflows/repository"
	"resort_crm_backend/internal/workflows/service"
	"resort_crm_backend/internal/workflows/transport"
	"resort_crm_backend/platform/httpkit"
	"resort_crm_backend/platform/validator"
)

const (
	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid workflow ID"
)

// Handler handles HTTP requests for workflow definitions and the tasks
// workflows create.
type Handler struct {
	svc   *service.Service
	tasks *repository.Repo
	val   *validator.Validator
}

// New creates a new workflows handler.
func New(svc *service.Service, tasks *repository.Repo, val *validator.Validator) *Handler {
	return &Handler{svc: svc, tasks: tasks, val: val}
}

// Create stores a workflow definition.
// POST /api/v1/admin/workflows
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	wf, err := h.svc.Create(c.Request.Context(), repository.Workflow{
		Name:        req.Name,
		TriggerType: engine.TriggerType(req.TriggerType),
		Conditions:  req.Conditions,
		Actions:     req.Actions,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toResponse(wf))
}

// List retrieves all workflows.
// GET /api/v1/admin/workflows
func (h *Handler) List(c *gin.Context) {
	workflows, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.WorkflowResponse, 0, len(workflows))
	for _, wf := range workflows {
		out = append(out, toResponse(wf))
	}
	httpkit.OK(c, gin.H{"workflows": out})
}

// Get retrieves a workflow by ID.
// GET /api/v1/admin/workflows/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	wf, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(wf))
}

// Update applies a partial update to a workflow.
// PATCH /api/v1/admin/workflows/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	wf, err := h.svc.Update(c.Request.Context(), id, func(wf *repository.Workflow) {
		if req.Name != nil {
			wf.Name = *req.Name
		}
		if req.TriggerType != nil {
			wf.TriggerType = engine.TriggerType(*req.TriggerType)
		}
		if req.Conditions != nil {
			wf.Conditions = req.Conditions
		}
		if req.Actions != nil {
			wf.Actions = req.Actions
		}
		if req.IsActive != nil {
			wf.IsActive = *req.IsActive
		}
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(wf))
}

// Delete removes a workflow.
// DELETE /api/v1/admin/workflows/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

// ListExecutions retrieves a workflow's execution history.
// GET /api/v1/admin/workflows/:id/executions
func (h *Handler) ListExecutions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	executions, err := h.svc.ListExecutions(c.Request.Context(), id, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.ExecutionResponse, 0, len(executions))
	for _, exec := range executions {
		out = append(out, toExecResponse(exec))
	}
	httpkit.OK(c, gin.H{"executions": out})
}

// ListTasks retrieves open follow-up tasks.
// GET /api/v1/tasks
func (h *Handler) ListTasks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	tasks, err := h.tasks.ListOpenTasks(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskResponse(task))
	}
	httpkit.OK(c, gin.H{"tasks": out})
}

// CompleteTask marks a task done.
// POST /api/v1/tasks/:id/complete
func (h *Handler) CompleteTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid task ID", nil)
		return
	}
	if httpkit.HandleError(c, h.tasks.CompleteTask(c.Request.Context(), id)) {
		return
	}
	httpkit.OK(c, gin.H{"message": "task completed"})
}

func toResponse(wf repository.Workflow) transport.WorkflowResponse {
	resp := transport.WorkflowResponse{
		ID:             wf.ID,
		Name:           wf.Name,
		TriggerType:    string(wf.TriggerType),
		Conditions:     wf.Conditions,
		Actions:        wf.Actions,
		IsActive:       wf.IsActive,
		ExecutionCount: wf.ExecutionCount,
		CreatedAt:      wf.CreatedAt.Format(time.RFC3339),
	}
	if resp.Conditions == nil {
		resp.Conditions = []engine.Condition{}
	}
	if wf.LastExecutedAt != nil {
		last := wf.LastExecutedAt.Format(time.RFC3339)
		resp.LastExecutedAt = &last
	}
	return resp
}

func toTaskResponse(task repository.Task) transport.TaskResponse {
	return transport.TaskResponse{
		ID:         task.ID,
		EntityType: task.EntityType,
		EntityID:   task.EntityID,
		Title:      task.Title,
		AssignedTo: task.AssignedTo,
		DueAt:      task.DueAt.Format(time.RFC3339),
		IsDone:     task.IsDone,
		CreatedAt:  task.CreatedAt.Format(time.RFC3339),
	}
}

func toExecResponse(exec repository.Execution) transport.ExecutionResponse {
	resp := transport.ExecutionResponse{
		ID:           exec.ID,
		WorkflowID:   exec.WorkflowID,
		EntityType:   exec.EntityType,
		EntityID:     exec.EntityID,
		Status:       exec.Status,
		ErrorMessage: exec.ErrorMessage,
		StartedAt:    exec.StartedAt.Format(time.RFC3339),
	}
	if exec.CompletedAt != nil {
		completed := exec.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &completed
	}
	return resp
}
