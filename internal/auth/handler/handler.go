// Package handler exposes the auth module over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resort_crm_backend/internal/auth/repository"
	"resort_crm_backend/internal/auth/service"
	"resort_crm_backend/internal/auth/transport"
	"resort_crm_backend/platform/httpkit"
)

// Handler handles HTTP requests for authentication.
type Handler struct {
	svc *service.Service
}

// New creates a new auth handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Login authenticates a staff member.
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// Refresh rotates a refresh token.
// POST /api/v1/auth/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req transport.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// Logout revokes the presented refresh token.
// POST /api/v1/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	var req transport.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if httpkit.HandleError(c, h.svc.Logout(c.Request.Context(), req)) {
		return
	}
	httpkit.OK(c, gin.H{"message": "logged out"})
}

// GetMe returns the authenticated user's profile.
// GET /api/v1/users/me
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := httpkit.GetUserID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	user, err := h.svc.GetUser(c.Request.Context(), userID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toUserResponse(user))
}

// UpdateMe changes the caller's display name.
// PATCH /api/v1/users/me
func (h *Handler) UpdateMe(c *gin.Context) {
	userID, ok := httpkit.GetUserID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req transport.UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if httpkit.HandleError(c, h.svc.UpdateName(c.Request.Context(), userID, req.Name)) {
		return
	}
	httpkit.OK(c, gin.H{"message": "profile updated"})
}

// ChangePassword sets a new password for the caller.
// POST /api/v1/users/me/password
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := httpkit.GetUserID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req transport.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if httpkit.HandleError(c, h.svc.ChangePassword(c.Request.Context(), userID, req)) {
		return
	}
	httpkit.OK(c, gin.H{"message": "password changed"})
}

// ListUsers lists staff accounts.
// GET /api/v1/users
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(user))
	}
	httpkit.OK(c, gin.H{"users": out})
}

// CreateUser provisions a staff account.
// POST /api/v1/admin/users
func (h *Handler) CreateUser(c *gin.Context) {
	var req transport.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	user, err := h.svc.CreateUser(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toUserResponse(user))
}

// SetRole changes a user's role.
// PUT /api/v1/admin/users/:id/role
func (h *Handler) SetRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid user ID", nil)
		return
	}
	var req transport.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if httpkit.HandleError(c, h.svc.SetRole(c.Request.Context(), id, req.Role)) {
		return
	}
	httpkit.OK(c, gin.H{"message": "role updated"})
}

// SetActive enables or disables an account.
// PUT /api/v1/admin/users/:id/active
func (h *Handler) SetActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid user ID", nil)
		return
	}
	var req transport.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if httpkit.HandleError(c, h.svc.SetActive(c.Request.Context(), id, req.IsActive)) {
		return
	}
	httpkit.OK(c, gin.H{"message": "account updated"})
}

func toUserResponse(user repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
