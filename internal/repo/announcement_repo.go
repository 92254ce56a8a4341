// Repository functions for the Announcement model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupay/go-course-backend/internal/domain"
)

// CreateAnnouncement appends a new announcement.
func CreateAnnouncement(ctx context.Context, db *gorm.DB, content string) (*domain.Announcement, error) {
	a := &domain.Announcement{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// CountAnnouncements returns the total number of announcements.
func CountAnnouncements(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Announcement{}).
		Count(&total).Error
	return total, err
}

// ListAnnouncementsPage returns a page of announcements, newest first.
func ListAnnouncementsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Announcement, error) {
	var out []domain.Announcement
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
