// Package content provides the website content bounded context module:
// pages the public site renders and the media library behind them.
package content

import (
	"resort_crm_backend/internal/content/handler"
	"resort_crm_backend/internal/content/repository"
	"resort_crm_backend/internal/content/service"
	apphttp "resort_crm_backend/internal/http"
	"resort_crm_backend/platform/logger"
	"resort_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the content bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the content module. store may be nil
// when object storage is not configured.
func NewModule(pool *pgxpool.Pool, store service.ObjectStore, bucket string, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, store, bucket, val, log)
	return &Module{handler: handler.New(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "content"
}

// RegisterRoutes mounts content routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.GET("/pages", m.handler.ListPublishedPages)
	ctx.Public.GET("/pages/:slug", m.handler.GetPublishedPage)

	pages := ctx.Admin.Group("/pages")
	pages.GET("", m.handler.ListPages)
	pages.POST("", m.handler.CreatePage)
	pages.GET("/:id", m.handler.GetPage)
	pages.PATCH("/:id", m.handler.UpdatePage)
	pages.DELETE("/:id", m.handler.DeletePage)

	media := ctx.Admin.Group("/media")
	media.POST("", m.handler.UploadMedia)
	media.GET("", m.handler.ListMedia)
	media.GET("/:id/url", m.handler.GetMediaURL)
	media.DELETE("/:id", m.handler.DeleteMedia)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
