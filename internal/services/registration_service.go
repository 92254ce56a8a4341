// Package services – RegistrationService
//
// Registration is the only multi-step write in the system: check for an
// existing record, upload the payment receipt blob, then insert the user row
// referencing the uploaded key. The ordering guarantees a stored row never
// points at a missing blob; the converse (an orphaned blob after a failed
// insert) is an accepted inconsistency and is logged with the orphaned key.
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

// RegistrationService registers new course participants.
type RegistrationService struct {
	DB   *gorm.DB
	Blob storage.BlobStore

	// ReceiptBucket is the blob bucket receiving payment receipts.
	ReceiptBucket string
	// ReceiptMaxBytes bounds accepted receipt uploads.
	ReceiptMaxBytes int64

	// Now is the time source for storage keys; defaults to time.Now.
	Now func() time.Time
}

func (s *RegistrationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Register runs the registration workflow for the authenticated identity.
//
// Pipeline order:
//  1. Validate the payload; all violations are returned together as a
//     *ValidationError.
//  2. Fast-path existence check by telegram id; a hit aborts with
//     ErrAlreadyRegistered before any blob is uploaded.
//  3. Upload the receipt under a server-generated key.
//  4. Insert the user row (status Pending). A unique-index violation here is
//     the authoritative duplicate signal and also maps to
//     ErrAlreadyRegistered; the existence check alone cannot win the race
//     between two concurrent first-time registrations.
//
// Store failures are wrapped in *StoreError.
func (s *RegistrationService) Register(ctx context.Context, telegramID int64, in RegistrationInput) (*domain.User, error) {
	if fe := in.Validate(s.ReceiptMaxBytes); fe != nil {
		return nil, &ValidationError{Fields: fe}
	}

	if _, err := repo.GetUserByTelegramID(ctx, s.DB, telegramID); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, &StoreError{Op: "check existing user", Err: err}
	}

	key := storage.ReceiptKey(telegramID, in.Receipt.Name, s.now())
	if err := s.Blob.Put(ctx, s.ReceiptBucket, key, in.Receipt.ContentType, in.Receipt.Body); err != nil {
		return nil, &StoreError{Op: "upload receipt", Err: err}
	}

	user, err := repo.CreateUser(ctx, s.DB, &domain.User{
		TelegramID:  telegramID,
		FullName:    strings.TrimSpace(in.FullName),
		Age:         in.parsedAge,
		Grade:       strings.TrimSpace(in.Grade),
		Phone:       strings.TrimSpace(in.Phone),
		Email:       strings.TrimSpace(in.Email),
		Language:    in.Language,
		ReceiptPath: key,
		Status:      domain.StatusPending,
	})
	if err != nil {
		if isDuplicate(err) {
			// Lost the race after uploading; the blob is orphaned.
			log.Warn().Int64("telegram_id", telegramID).Str("receipt_key", key).
				Msg("duplicate registration after receipt upload")
			return nil, ErrAlreadyRegistered
		}
		log.Error().Err(err).Str("receipt_key", key).
			Msg("user insert failed; receipt blob orphaned")
		return nil, &StoreError{Op: "save registration", Err: err}
	}
	return user, nil
}

// Profile returns the registration record for the authenticated identity,
// or ErrUserNotFound.
func (s *RegistrationService) Profile(ctx context.Context, telegramID int64) (*domain.User, error) {
	u, err := repo.GetUserByTelegramID(ctx, s.DB, telegramID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, &StoreError{Op: "load user", Err: err}
	}
	return u, nil
}

// isDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
