// Package transport defines the request and response shapes for the content
// module.
package transport

import (
	"resort_crm_backend/internal/content/repository"

	"github.com/google/uuid"
)

type CreatePageRequest struct {
	Slug        string             `json:"slug" validate:"required,min=1,max=120"`
	Title       string             `json:"title" validate:"required,min=1,max=200"`
	Blocks      []repository.Block `json:"blocks,omitempty"`
	IsPublished bool               `json:"is_published"`
}

type UpdatePageRequest struct {
	Slug        *string            `json:"slug,omitempty" validate:"omitempty,min=1,max=120"`
	Title       *string            `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Blocks      []repository.Block `json:"blocks,omitempty"`
	IsPublished *bool              `json:"is_published,omitempty"`
}

type PageResponse struct {
	ID          uuid.UUID          `json:"id"`
	Slug        string             `json:"slug"`
	Title       string             `json:"title"`
	Blocks      []repository.Block `json:"blocks"`
	IsPublished bool               `json:"is_published"`
	UpdatedAt   string             `json:"updated_at"`
}

type MediaResponse struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	ObjectKey   string    `json:"object_key"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   string    `json:"created_at"`
}
