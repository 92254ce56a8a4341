// Package domain defines the persistence models for users, course materials,
// and announcements. These types are mapped with GORM and form the core data
// layer of the application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// User status values. New registrations start as StatusPending and move to
// Active or Rejected through the admin review endpoint; users may pause and
// resume themselves.
const (
	StatusPending  = "Pending"
	StatusActive   = "Active"
	StatusPaused   = "Paused"
	StatusRejected = "Rejected"
)

// User is a registered course participant, keyed by the Telegram numeric
// identity derived from the verified credential token.
//
// The unique index on TelegramID is the authoritative duplicate-registration
// guard: the application-level existence check is only a fast path, and two
// concurrent registrations for the same identity are resolved here.
type User struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	TelegramID  int64          `json:"telegram_id"  gorm:"not null;uniqueIndex:ux_users_telegram_id"`
	FullName    string         `json:"full_name"    gorm:"type:varchar(255);not null"`
	Age         int            `json:"age"          gorm:"not null"`
	Grade       string         `json:"grade"        gorm:"type:varchar(64);not null"`
	Phone       string         `json:"phone"        gorm:"type:varchar(32);not null"`
	Email       string         `json:"email"        gorm:"type:varchar(255);not null"`
	Language    string         `json:"language_pref" gorm:"type:varchar(8);not null"`
	ReceiptPath string         `json:"receipt_url"  gorm:"type:varchar(512);not null"`
	Status      string         `json:"status"       gorm:"type:varchar(16);not null;default:'Pending';check:status IN ('Pending','Active','Paused','Rejected')"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"            gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Material is a piece of course content. FilePath is the server-generated
// object key in the material bucket, never supplied by the client; FileName
// preserves the original upload name for display.
type Material struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	Title       string         `json:"title"       gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	FilePath    string         `json:"file_url"    gorm:"type:varchar(512);not null"`
	FileName    string         `json:"file_name"   gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`
}

// TableName returns the database table name for Material.
func (Material) TableName() string { return "materials" }

// Announcement is an append-only broadcast message posted by an admin.
type Announcement struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Content   string         `json:"content"    gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Announcement.
func (Announcement) TableName() string { return "announcements" }
