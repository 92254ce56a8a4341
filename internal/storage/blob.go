// Package storage provides the blob-store collaborator used by the ingestion
// workflows: receipts uploaded during registration and course material files.
//
// The BlobStore interface keeps services testable; the production
// implementation (S3Store) talks to any S3-compatible endpoint.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// BlobStore is the minimal contract the ingestion pipeline needs from a
// content-addressable store. Put and Remove may fail independently of the
// record store; callers decide which failures are fatal.
type BlobStore interface {
	// Put streams body to bucket under key, with the given content type.
	Put(ctx context.Context, bucket, key, contentType string, body io.Reader) error

	// Remove deletes the given keys from bucket. Missing keys are not an
	// error; the store treats deletion as idempotent.
	Remove(ctx context.Context, bucket string, keys []string) error
}

// ReceiptKey builds the object key for a registration receipt:
// "<telegram_id>/<unix_millis>.<ext>". The key is server-generated so a
// client can never choose where its blob lands.
func ReceiptKey(telegramID int64, originalName string, now time.Time) string {
	return fmt.Sprintf("%d/%d%s", telegramID, now.UnixMilli(), ext(originalName))
}

// MaterialKey builds the object key for a course material:
// "protected/<unix_millis>.<ext>".
func MaterialKey(originalName string, now time.Time) string {
	return fmt.Sprintf("protected/%d%s", now.UnixMilli(), ext(originalName))
}

// ext returns the lowercased extension of name including the dot, or ""
// when the name has none.
func ext(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i:])
}
