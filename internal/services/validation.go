// Declarative input schemas for the write workflows, one validator per
// payload shape. Each validator reports every violated rule as a field-level
// message (FieldErrors), matching what the Mini App renders next to its form
// inputs, so none of them stop at the first failure.
package services

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/edupay/go-course-backend/internal/domain"
)

var (
	fullNameRE = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	phoneRE    = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
	// Intentionally loose; the store is not an email relay.
	emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// supportedLanguages are the UI locales the course ships.
var supportedLanguages = map[string]struct{}{"en": {}, "am": {}}

// FileUpload describes an uploaded file as seen by validation, plus a reader
// consumed exactly once if the workflow reaches the upload step.
type FileUpload struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// receiptTypes / materialTypes are the MIME allow-lists per workflow. The
// content type is the client-declared one, as in the original protocol.
var (
	receiptTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
		"image/webp": {},
	}
	materialTypes = map[string]struct{}{
		"application/pdf":    {},
		"video/mp4":          {},
		"application/msword": {},
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	}
)

// RegistrationInput is the registration payload before validation. Age
// arrives as the raw form string and is coerced during validation.
type RegistrationInput struct {
	FullName string
	Age      string
	Grade    string
	Phone    string
	Email    string
	Language string
	Receipt  *FileUpload

	// parsedAge is populated by Validate on success.
	parsedAge int
}

// Validate checks every rule and returns the full violation set, or nil.
// receiptMax bounds the accepted receipt size in bytes.
func (in *RegistrationInput) Validate(receiptMax int64) FieldErrors {
	fe := FieldErrors{}

	name := strings.TrimSpace(in.FullName)
	if len(name) < 3 {
		fe.Add("full_name", "Full name must be at least 3 characters")
	}
	if name != "" && !fullNameRE.MatchString(name) {
		fe.Add("full_name", "Name must only contain letters and spaces")
	}

	age, err := strconv.Atoi(strings.TrimSpace(in.Age))
	switch {
	case err != nil:
		fe.Add("age", "Age must be a whole number")
	case age < 12:
		fe.Add("age", "Must be at least 12")
	case age > 60:
		fe.Add("age", "Must be 60 or younger")
	default:
		in.parsedAge = age
	}

	if strings.TrimSpace(in.Grade) == "" {
		fe.Add("grade", "Grade is required")
	}

	phone := strings.TrimSpace(in.Phone)
	if phone != "" && !phoneRE.MatchString(phone) {
		fe.Add("phone", "Invalid phone number format")
	}
	if len(phone) < 9 {
		fe.Add("phone", "Phone number seems too short")
	}

	if !emailRE.MatchString(strings.TrimSpace(in.Email)) {
		fe.Add("email", "Invalid email address")
	}

	// The locale must be both a well-formed BCP 47 tag and one we ship.
	if _, err := language.Parse(in.Language); err != nil {
		fe.Add("language", "Invalid language code")
	} else if _, ok := supportedLanguages[in.Language]; !ok {
		fe.Add("language", "Language must be one of: en, am")
	}

	switch {
	case in.Receipt == nil:
		fe.Add("receipt", "Receipt is required")
	default:
		if in.Receipt.Size >= receiptMax {
			fe.Add("receipt", "File must be less than 5MB")
		}
		if _, ok := receiptTypes[in.Receipt.ContentType]; !ok {
			fe.Add("receipt", "Only JPEG, PNG, and WebP are allowed")
		}
	}

	if len(fe) == 0 {
		return nil
	}
	return fe
}

// MaterialInput is the material-create payload.
type MaterialInput struct {
	Title       string
	Description string
	File        *FileUpload
}

// Validate checks every rule and returns the full violation set, or nil.
func (in *MaterialInput) Validate(fileMax int64) FieldErrors {
	fe := FieldErrors{}

	if len(strings.TrimSpace(in.Title)) < 3 {
		fe.Add("title", "Title is required")
	}

	switch {
	case in.File == nil:
		fe.Add("material_file", "A file is required")
	default:
		if in.File.Size >= fileMax {
			fe.Add("material_file", "File must be less than 50MB")
		}
		if _, ok := materialTypes[in.File.ContentType]; !ok {
			fe.Add("material_file", "Only PDF, MP4, or Word documents are allowed")
		}
	}

	if len(fe) == 0 {
		return nil
	}
	return fe
}

// ValidateAnnouncement checks the announcement content rule.
func ValidateAnnouncement(content string) FieldErrors {
	if len(strings.TrimSpace(content)) < 10 {
		fe := FieldErrors{}
		fe.Add("content", "Announcement must be at least 10 characters long.")
		return fe
	}
	return nil
}

// ValidateSelfStatus checks the status values a user may set on themselves.
func ValidateSelfStatus(status string) FieldErrors {
	switch status {
	case domain.StatusActive, domain.StatusPaused:
		return nil
	}
	fe := FieldErrors{}
	fe.Add("status", "Status must be one of: Active, Paused")
	return fe
}

// ValidateAdminStatus checks the status values an admin may set during review.
func ValidateAdminStatus(status string) FieldErrors {
	switch status {
	case domain.StatusActive, domain.StatusRejected:
		return nil
	}
	fe := FieldErrors{}
	fe.Add("status", "Status must be one of: Active, Rejected")
	return fe
}
