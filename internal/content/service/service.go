// Package service implements website content management: pages built from
// content blocks and media stored in object storage.
package service

import (
	"context"
	"io"
	"regexp"
	"strings"

	"resort_crm_backend/internal/adapters/storage"
	"resort_crm_backend/internal/content/repository"
	"resort_crm_backend/internal/content/transport"
	"resort_crm_backend/platform/apperr"
	"resort_crm_backend/platform/logger"
	"resort_crm_backend/platform/validator"

	"github.com/google/uuid"
)

const mediaFolder = "media"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ObjectStore is the slice of the storage adapter the content module needs.
type ObjectStore interface {
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
	DeleteObject(ctx context.Context, bucket, fileKey string) error
	GenerateDownloadURL(ctx context.Context, bucket, fileKey string) (*storage.PresignedURL, error)
}

// Service manages site pages and media.
type Service struct {
	repo     *repository.Repo
	store    ObjectStore
	bucket   string
	validate *validator.Validator
	log      *logger.Logger
}

// New creates a new content service. store may be nil when MinIO is not
// configured; media operations then fail with a clear error.
func New(repo *repository.Repo, store ObjectStore, bucket string, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{repo: repo, store: store, bucket: bucket, validate: val, log: log}
}

// CreatePage stores a new page as a draft unless the request publishes it.
func (s *Service) CreatePage(ctx context.Context, req transport.CreatePageRequest, updatedBy *uuid.UUID) (repository.Page, error) {
	if err := s.validate.Struct(req); err != nil {
		return repository.Page{}, apperr.Validation(err.Error())
	}
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(slug) {
		return repository.Page{}, apperr.Validation("slug must be lowercase words separated by hyphens")
	}

	return s.repo.CreatePage(ctx, repository.Page{
		ID:          uuid.New(),
		Slug:        slug,
		Title:       strings.TrimSpace(req.Title),
		Blocks:      req.Blocks,
		IsPublished: req.IsPublished,
		UpdatedBy:   updatedBy,
	})
}

// GetPage retrieves any page by ID for the admin SPA.
func (s *Service) GetPage(ctx context.Context, id uuid.UUID) (repository.Page, error) {
	return s.repo.GetPageByID(ctx, id)
}

// GetPublishedPage retrieves a published page for the public site.
func (s *Service) GetPublishedPage(ctx context.Context, slug string) (repository.Page, error) {
	return s.repo.GetPublishedBySlug(ctx, slug)
}

// ListPages retrieves pages; the public listing only sees published ones.
func (s *Service) ListPages(ctx context.Context, publishedOnly bool) ([]repository.Page, error) {
	return s.repo.ListPages(ctx, publishedOnly)
}

// UpdatePage applies a partial update.
func (s *Service) UpdatePage(ctx context.Context, id uuid.UUID, req transport.UpdatePageRequest, updatedBy *uuid.UUID) (repository.Page, error) {
	if err := s.validate.Struct(req); err != nil {
		return repository.Page{}, apperr.Validation(err.Error())
	}
	page, err := s.repo.GetPageByID(ctx, id)
	if err != nil {
		return repository.Page{}, err
	}

	if req.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*req.Slug))
		if !slugPattern.MatchString(slug) {
			return repository.Page{}, apperr.Validation("slug must be lowercase words separated by hyphens")
		}
		page.Slug = slug
	}
	if req.Title != nil {
		page.Title = strings.TrimSpace(*req.Title)
	}
	if req.Blocks != nil {
		page.Blocks = req.Blocks
	}
	if req.IsPublished != nil {
		page.IsPublished = *req.IsPublished
	}
	page.UpdatedBy = updatedBy

	return s.repo.UpdatePage(ctx, page)
}

// DeletePage removes a page.
func (s *Service) DeletePage(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeletePage(ctx, id)
}

// UploadMedia stores a file in object storage and records it.
func (s *Service) UploadMedia(ctx context.Context, fileName, contentType string, reader io.Reader, size int64, uploadedBy *uuid.UUID) (repository.Media, error) {
	if s.store == nil {
		return repository.Media{}, apperr.External("media storage is not configured")
	}

	objectKey, err := s.store.UploadFile(ctx, s.bucket, mediaFolder, fileName, contentType, reader, size)
	if err != nil {
		return repository.Media{}, apperr.External(err.Error())
	}

	media, err := s.repo.CreateMedia(ctx, repository.Media{
		ID:          uuid.New(),
		FileName:    fileName,
		ObjectKey:   objectKey,
		ContentType: contentType,
		SizeBytes:   size,
		UploadedBy:  uploadedBy,
	})
	if err != nil {
		// Storage succeeded but the record failed; remove the orphan object.
		if cleanupErr := s.store.DeleteObject(ctx, s.bucket, objectKey); cleanupErr != nil {
			s.log.Error("orphaned media object", "object_key", objectKey, "error", cleanupErr.Error())
		}
		return repository.Media{}, err
	}
	return media, nil
}

// ListMedia retrieves media records.
func (s *Service) ListMedia(ctx context.Context, limit int) ([]repository.Media, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	return s.repo.ListMedia(ctx, limit)
}

// MediaDownloadURL returns a presigned URL for one media item.
func (s *Service) MediaDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	if s.store == nil {
		return "", apperr.External("media storage is not configured")
	}
	media, err := s.repo.GetMediaByID(ctx, id)
	if err != nil {
		return "", err
	}
	presigned, err := s.store.GenerateDownloadURL(ctx, s.bucket, media.ObjectKey)
	if err != nil {
		return "", apperr.External(err.Error())
	}
	return presigned.URL, nil
}

// DeleteMedia removes the record and the stored object.
func (s *Service) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	media, err := s.repo.GetMediaByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteMedia(ctx, id); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.DeleteObject(ctx, s.bucket, media.ObjectKey); err != nil {
			s.log.Error("delete media object failed", "object_key", media.ObjectKey, "error", err.Error())
		}
	}
	return nil
}
