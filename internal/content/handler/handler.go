// Package handler exposes the content module over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resort_crm_backend/internal/content/repository"
	"resort_crm_backend/internal/content/service"
	"resort_crm_backend/internal/content/transport"
	"resort_crm_backend/platform/httpkit"
)

// Handler handles HTTP requests for site content.
type Handler struct {
	svc *service.Service
}

// New creates a new content handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// GetPublishedPage serves a published page to the public site.
// GET /api/v1/public/pages/:slug
func (h *Handler) GetPublishedPage(c *gin.Context) {
	page, err := h.svc.GetPublishedPage(c.Request.Context(), c.Param("slug"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toPageResponse(page))
}

// ListPublishedPages lists published pages for navigation.
// GET /api/v1/public/pages
func (h *Handler) ListPublishedPages(c *gin.Context) {
	pages, err := h.svc.ListPages(c.Request.Context(), true)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"pages": toPageResponses(pages)})
}

// ListPages lists all pages for the admin SPA.
// GET /api/v1/admin/pages
func (h *Handler) ListPages(c *gin.Context) {
	pages, err := h.svc.ListPages(c.Request.Context(), false)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"pages": toPageResponses(pages)})
}

// CreatePage stores a new page.
// POST /api/v1/admin/pages
func (h *Handler) CreatePage(c *gin.Context) {
	var req transport.CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	page, err := h.svc.CreatePage(c.Request.Context(), req, currentUser(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toPageResponse(page))
}

// GetPage retrieves one page including drafts.
// GET /api/v1/admin/pages/:id
func (h *Handler) GetPage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid page ID", nil)
		return
	}
	page, err := h.svc.GetPage(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toPageResponse(page))
}

// UpdatePage applies a partial update.
// PATCH /api/v1/admin/pages/:id
func (h *Handler) UpdatePage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid page ID", nil)
		return
	}
	var req transport.UpdatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	page, err := h.svc.UpdatePage(c.Request.Context(), id, req, currentUser(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toPageResponse(page))
}

// DeletePage removes a page.
// DELETE /api/v1/admin/pages/:id
func (h *Handler) DeletePage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid page ID", nil)
		return
	}
	if httpkit.HandleError(c, h.svc.DeletePage(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

// UploadMedia accepts a multipart file upload.
// POST /api/v1/admin/media
func (h *Handler) UploadMedia(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not read file", nil)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	media, err := h.svc.UploadMedia(c.Request.Context(), fileHeader.Filename, contentType, file, fileHeader.Size, currentUser(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toMediaResponse(media))
}

// ListMedia lists uploaded assets.
// GET /api/v1/admin/media
func (h *Handler) ListMedia(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	items, err := h.svc.ListMedia(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.MediaResponse, 0, len(items))
	for _, media := range items {
		out = append(out, toMediaResponse(media))
	}
	httpkit.OK(c, gin.H{"media": out})
}

// GetMediaURL returns a presigned download URL.
// GET /api/v1/admin/media/:id/url
func (h *Handler) GetMediaURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid media ID", nil)
		return
	}
	url, err := h.svc.MediaDownloadURL(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"url": url})
}

// DeleteMedia removes an asset.
// DELETE /api/v1/admin/media/:id
func (h *Handler) DeleteMedia(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid media ID", nil)
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteMedia(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

func currentUser(c *gin.Context) *uuid.UUID {
	if id, ok := httpkit.GetUserID(c); ok {
		return &id
	}
	return nil
}

func toPageResponses(pages []repository.Page) []transport.PageResponse {
	out := make([]transport.PageResponse, 0, len(pages))
	for _, page := range pages {
		out = append(out, toPageResponse(page))
	}
	return out
}

func toPageResponse(page repository.Page) transport.PageResponse {
	blocks := page.Blocks
	if blocks == nil {
		blocks = []repository.Block{}
	}
	return transport.PageResponse{
		ID:          page.ID,
		Slug:        page.Slug,
		Title:       page.Title,
		Blocks:      blocks,
		IsPublished: page.IsPublished,
		UpdatedAt:   page.UpdatedAt.Format(time.RFC3339),
	}
}

func toMediaResponse(media repository.Media) transport.MediaResponse {
	return transport.MediaResponse{
		ID:          media.ID,
		FileName:    media.FileName,
		ObjectKey:   media.ObjectKey,
		ContentType: media.ContentType,
		SizeBytes:   media.SizeBytes,
		CreatedAt:   media.CreatedAt.Format(time.RFC3339),
	}
}
