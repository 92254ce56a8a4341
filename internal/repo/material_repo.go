// Repository functions for the Material model.
//
// Same conventions as user_repo.go: thin, context-aware free functions over
// a *gorm.DB handle, ErrNotFound for missing rows, raw driver errors
// propagated otherwise.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupay/go-course-backend/internal/domain"
)

// CreateMaterial inserts a Material row referencing an already-uploaded blob.
func CreateMaterial(ctx context.Context, db *gorm.DB, title, description, filePath, fileName string) (*domain.Material, error) {
	m := &domain.Material{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		FilePath:    filePath,
		FileName:    fileName,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// GetMaterial fetches a material by ID, or ErrNotFound.
func GetMaterial(ctx context.Context, db *gorm.DB, id string) (*domain.Material, error) {
	var m domain.Material
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMaterial removes the material row with the given ID. Returns
// ErrNotFound when the row does not exist.
func DeleteMaterial(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Material{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountMaterials returns the total number of materials.
func CountMaterials(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Material{}).
		Count(&total).Error
	return total, err
}

// ListMaterialsPage returns a page of materials, newest first.
func ListMaterialsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Material, error) {
	var out []domain.Material
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
