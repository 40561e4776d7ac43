// Package auth provides the staff authentication bounded context module.
package auth

import (
	"resort_crm_backend/internal/auth/handler"
	"resort_crm_backend/internal/auth/repository"
	"resort_crm_backend/internal/auth/service"
	apphttp "resort_crm_backend/internal/http"
	"resort_crm_backend/platform/config"
	"resort_crm_backend/platform/logger"
	"resort_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, val, log)
	return &Module{handler: handler.New(svc), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service for seeding and adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	authGroup.POST("/login", m.handler.Login)
	authGroup.POST("/refresh", m.handler.Refresh)
	authGroup.POST("/logout", m.handler.Logout)

	ctx.Protected.GET("/users/me", m.handler.GetMe)
	ctx.Protected.PATCH("/users/me", m.handler.UpdateMe)
	ctx.Protected.POST("/users/me/password", m.handler.ChangePassword)
	ctx.Protected.GET("/users", m.handler.ListUsers)

	ctx.Admin.POST("/users", m.handler.CreateUser)
	ctx.Admin.PUT("/users/:id/role", m.handler.SetRole)
	ctx.Admin.PUT("/users/:id/active", m.handler.SetActive)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
