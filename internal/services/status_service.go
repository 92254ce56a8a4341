// Package services – StatusService
//
// Two distinct status workflows share this service. A user updates their own
// record (ownership is the telegram id from the verified token, so no other
// authorization applies); an admin reviews a registration by record id and
// moves it to Active or Rejected. The two allow different status sets.
package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupay/go-course-backend/internal/domain"
	"github.com/edupay/go-course-backend/internal/repo"
)

// StatusService updates user record statuses.
type StatusService struct {
	DB *gorm.DB
}

// UpdateSelf sets the status of the caller's own record. Allowed values are
// Active and Paused. ErrUserNotFound when the identity has no record.
func (s *StatusService) UpdateSelf(ctx context.Context, telegramID int64, status string) error {
	if fe := ValidateSelfStatus(status); fe != nil {
		return &ValidationError{Fields: fe}
	}
	if err := repo.UpdateUserStatusByTelegramID(ctx, s.DB, telegramID, status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return &StoreError{Op: "update status", Err: err}
	}
	return nil
}

// Review sets the status of the record identified by userID (admin path).
// Allowed values are Active and Rejected.
func (s *StatusService) Review(ctx context.Context, userID, status string) error {
	fe := ValidateAdminStatus(status)
	if _, err := uuid.Parse(userID); err != nil {
		if fe == nil {
			fe = FieldErrors{}
		}
		fe.Add("userId", "User id must be a UUID")
	}
	if fe != nil {
		return &ValidationError{Fields: fe}
	}

	if err := repo.UpdateUserStatusByID(ctx, s.DB, userID, status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return &StoreError{Op: "update user status", Err: err}
	}
	return nil
}

// ListUsers returns a page of registrations for the admin dashboard,
// newest first, with the total count.
func (s *StatusService) ListUsers(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountUsers(ctx, s.DB)
	if err != nil {
		return nil, 0, &StoreError{Op: "count users", Err: err}
	}
	if total == 0 {
		return []domain.User{}, 0, nil
	}
	items, err := repo.ListUsersPage(ctx, s.DB, offset, pageSize)
	if err != nil {
		return nil, 0, &StoreError{Op: "list users", Err: err}
	}
	return items, total, nil
}
