// Package services – MaterialService
//
// Material creation mirrors registration's two-step ordering: upload the file
// first, insert the metadata row second, so a stored row never references a
// missing blob. Deletion inverts the priorities: the blob delete is
// best-effort (the object may already be gone), while the row delete is the
// operation that must succeed.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/edupay/go-course-backend/internal/domain"
	"github.com/edupay/go-course-backend/internal/repo"
	"github.com/edupay/go-course-backend/internal/storage"
)

// MaterialService manages course material blobs and metadata.
type MaterialService struct {
	DB   *gorm.DB
	Blob storage.BlobStore

	// MaterialBucket is the blob bucket holding course files.
	MaterialBucket string
	// FileMaxBytes bounds accepted material uploads.
	FileMaxBytes int64

	// Now is the time source for storage keys; defaults to time.Now.
	Now func() time.Time
}

func (s *MaterialService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create validates the payload, uploads the file under a server-generated
// key, and inserts the metadata row. Validation failures return a
// *ValidationError with every violation; store failures return *StoreError.
// A failed insert after a successful upload leaves the blob orphaned (logged).
func (s *MaterialService) Create(ctx context.Context, in MaterialInput) (*domain.Material, error) {
	if fe := in.Validate(s.FileMaxBytes); fe != nil {
		return nil, &ValidationError{Fields: fe}
	}

	key := storage.MaterialKey(in.File.Name, s.now())
	if err := s.Blob.Put(ctx, s.MaterialBucket, key, in.File.ContentType, in.File.Body); err != nil {
		return nil, &StoreError{Op: "upload material file", Err: err}
	}

	m, err := repo.CreateMaterial(ctx, s.DB, strings.TrimSpace(in.Title), strings.TrimSpace(in.Description), key, in.File.Name)
	if err != nil {
		log.Error().Err(err).Str("material_key", key).
			Msg("material insert failed; blob orphaned")
		return nil, &StoreError{Op: "save material metadata", Err: err}
	}
	return m, nil
}

// Delete removes a material. The blob path must be supplied by the caller;
// an empty one is rejected before any side effect. The blob delete runs
// first and is best-effort: a failure is logged and the workflow continues,
// because the object may have been removed out of band already. The row
// delete decides the outcome; ErrMaterialNotFound for a missing row,
// *StoreError for anything else.
func (s *MaterialService) Delete(ctx context.Context, id, filePath string) error {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		fe := FieldErrors{}
		fe.Add("file_path", "A file path is required for deletion")
		return &ValidationError{Fields: fe}
	}

	if err := s.Blob.Remove(ctx, s.MaterialBucket, []string{filePath}); err != nil {
		log.Warn().Err(err).Str("material_key", filePath).
			Msg("could not delete material blob, it might have already been removed")
	}

	if err := repo.DeleteMaterial(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrMaterialNotFound
		}
		return &StoreError{Op: "delete material", Err: err}
	}
	return nil
}

// ListPage returns a page of materials, newest first, with the total count.
func (s *MaterialService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Material, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountMaterials(ctx, s.DB)
	if err != nil {
		return nil, 0, &StoreError{Op: "count materials", Err: err}
	}
	if total == 0 {
		return []domain.Material{}, 0, nil
	}
	items, err := repo.ListMaterialsPage(ctx, s.DB, offset, pageSize)
	if err != nil {
		return nil, 0, &StoreError{Op: "list materials", Err: err}
	}
	return items, total, nil
}
