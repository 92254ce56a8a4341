// Package repo implements the record-store access layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - A registration for an already-taken telegram_id violates the unique
//     index and surfaces as the raw driver error; the service layer
//     translates it into a conflict.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupay/go-course-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service layer
// and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateUser inserts a new User row. The record ID is a generated UUID and
// CreatedAt is set to UTC. The caller provides every registration field,
// including the server-generated receipt path and initial status.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) (*domain.User, error) {
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	if u.Status == "" {
		u.Status = domain.StatusPending
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByTelegramID fetches the user registered under telegramID, or
// ErrNotFound when no such registration exists.
func GetUserByTelegramID(ctx context.Context, db *gorm.DB, telegramID int64) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("telegram_id = ?", telegramID).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserStatusByTelegramID sets the status of the user owned by
// telegramID. Returns ErrNotFound when no row was touched.
func UpdateUserStatusByTelegramID(ctx context.Context, db *gorm.DB, telegramID int64, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("telegram_id = ?", telegramID).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateUserStatusByID sets the status of the user record identified by its
// primary key (admin review path). Returns ErrNotFound when no row was touched.
func UpdateUserStatusByID(ctx context.Context, db *gorm.DB, id, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountUsers returns the total number of registered users.
func CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Count(&total).Error
	return total, err
}

// ListUsersPage returns a paginated slice of users ordered by registration
// time descending. The caller computes offset and limit.
func ListUsersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
