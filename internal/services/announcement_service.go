// Package services – AnnouncementService
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/edupay/go-course-backend/internal/domain"
	"github.com/edupay/go-course-backend/internal/repo"
)

// AnnouncementService posts and lists admin announcements. Announcements are
// append-only; there is no update or delete path.
type AnnouncementService struct {
	DB *gorm.DB
}

// Post validates and stores a new announcement.
func (s *AnnouncementService) Post(ctx context.Context, content string) (*domain.Announcement, error) {
	if fe := ValidateAnnouncement(content); fe != nil {
		return nil, &ValidationError{Fields: fe}
	}
	a, err := repo.CreateAnnouncement(ctx, s.DB, strings.TrimSpace(content))
	if err != nil {
		return nil, &StoreError{Op: "save announcement", Err: err}
	}
	return a, nil
}

// ListPage returns a page of announcements, newest first, with the total.
func (s *AnnouncementService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Announcement, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountAnnouncements(ctx, s.DB)
	if err != nil {
		return nil, 0, &StoreError{Op: "count announcements", Err: err}
	}
	if total == 0 {
		return []domain.Announcement{}, 0, nil
	}
	items, err := repo.ListAnnouncementsPage(ctx, s.DB, offset, pageSize)
	if err != nil {
		return nil, 0, &StoreError{Op: "list announcements", Err: err}
	}
	return items, total, nil
}
