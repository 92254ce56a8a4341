// Registration HTTP handlers.
//
// This file exposes the registration workflow and the self-profile lookup:
//   - POST /register   (multipart: init_data + form fields + receipt file)
//   - POST /me         (JSON: init_data → current registration record)
//
// It also carries the handler wiring shared by the other endpoint files:
// the service contracts, the Handlers struct, and the helpers that turn
// service-layer errors into HTTP responses.
//
// Handlers are transport-thin: they pull the signed init data out of the
// request, run it through the authorization gate, assemble service inputs,
// and translate service errors into the standard envelopes. The signed
// payload travels in the request body for mutating endpoints and in the
// X-Telegram-Init-Data header for authenticated reads.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupay/go-course-backend/internal/domain"
	"github.com/edupay/go-course-backend/internal/initdata"
	"github.com/edupay/go-course-backend/internal/services"
	"github.com/edupay/go-course-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// Gate authenticates signed init data and answers admin membership.
type Gate interface {
	// Authenticate verifies the payload and resolves the caller's identity.
	Authenticate(raw string) (*initdata.Principal, error)
	// IsAdmin reports whether the payload belongs to a listed admin.
	// It never propagates verification errors.
	IsAdmin(raw string) bool
}

// RegistrationService defines the registration workflow consumed by HTTP
// handlers. Implementations must honor the provided context.
type RegistrationService interface {
	// Register validates the form, uploads the receipt, and inserts the record.
	Register(ctx context.Context, telegramID int64, in services.RegistrationInput) (*domain.User, error)
	// Profile returns the caller's registration record.
	Profile(ctx context.Context, telegramID int64) (*domain.User, error)
}

// StatusService defines the status workflows (self and admin review).
type StatusService interface {
	// UpdateSelf sets the caller's own status (Active or Paused).
	UpdateSelf(ctx context.Context, telegramID int64, status string) error
	// Review sets a record's status by id (Active or Rejected, admin path).
	Review(ctx context.Context, userID, status string) error
	// ListUsers returns a page of registrations and the total count.
	ListUsers(ctx context.Context, page, pageSize int) ([]domain.User, int64, error)
}

// MaterialService defines the course material lifecycle.
type MaterialService interface {
	// Create uploads the file and inserts the material record.
	Create(ctx context.Context, in services.MaterialInput) (*domain.Material, error)
	// Delete removes the blob (best effort) and the record (fatal).
	Delete(ctx context.Context, id, filePath string) error
	// ListPage returns a page of materials and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Material, int64, error)
}

// AnnouncementService defines announcement posting and listing.
type AnnouncementService interface {
	// Post validates and stores a new announcement.
	Post(ctx context.Context, content string) (*domain.Announcement, error)
	// ListPage returns a page of announcements and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Announcement, int64, error)
}

//
// Handler wiring
//

// initDataHeader carries the signed payload on authenticated GET endpoints.
const initDataHeader = "X-Telegram-Init-Data"

// Handlers groups the HTTP endpoints for registration, statuses, materials,
// and announcements. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	gate      Gate
	regSvc    RegistrationService
	statusSvc StatusService
	matSvc    MaterialService
	annSvc    AnnouncementService

	// echoStoreErrors exposes raw persistence errors in 500 bodies.
	// Off outside development.
	echoStoreErrors bool
}

// New constructs a Handlers instance bound to the given gate and services.
func New(gate Gate, reg RegistrationService, status StatusService, mat MaterialService, ann AnnouncementService, echoStoreErrors bool) *Handlers {
	return &Handlers{
		gate:            gate,
		regSvc:          reg,
		statusSvc:       status,
		matSvc:          mat,
		annSvc:          ann,
		echoStoreErrors: echoStoreErrors,
	}
}

//
// Helpers
//

// authenticate resolves the caller from raw init data, failing the request
// with 401 when verification fails. ok is false when the response was
// already written.
func (h *Handlers) authenticate(c *gin.Context, raw string) (p *initdata.Principal, ok bool) {
	p, err := h.gate.Authenticate(raw)
	if err != nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid or missing Telegram credentials")
		return nil, false
	}
	return p, true
}

// requireAdmin fails the request with 403 unless raw belongs to a listed
// admin. Verification failures and non-admins are indistinguishable on
// purpose.
func (h *Handlers) requireAdmin(c *gin.Context, raw string) bool {
	if !h.gate.IsAdmin(raw) {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "admin access required")
		return false
	}
	return true
}

// serviceFail translates a service-layer error into the proper HTTP
// response. failCode is the domain code used for 500s.
func (h *Handlers) serviceFail(c *gin.Context, err error, failCode string) {
	if ve, ok := services.AsValidation(err); ok {
		failFields(c, ve.Fields)
		return
	}
	switch {
	case errors.Is(err, services.ErrAlreadyRegistered):
		fail(c, http.StatusConflict, ErrCodeConflict, "You have already submitted a registration.")
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, services.ErrMaterialNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "material not found")
	default:
		msg := "something went wrong, please try again later"
		if h.echoStoreErrors {
			msg = err.Error()
		}
		fail(c, http.StatusInternalServerError, failCode, msg)
	}
}

// fileFromForm converts a multipart file header into a service FileUpload.
// A missing part yields nil, which the validators report as a required-file
// violation.
func fileFromForm(c *gin.Context, field string) (*services.FileUpload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	return &services.FileUpload{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}, nil
}

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// paginate computes the metadata for a page of total items.
func paginate(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Handlers
//

// Register handles POST /register. The multipart form carries the signed
// init_data, the registration fields, and the payment receipt under
// "receipt". Responds 201 with a confirmation message; the stored record
// holds contact details and is never echoed back.
func (h *Handlers) Register(c *gin.Context) {
	p, authed := h.authenticate(c, c.PostForm("init_data"))
	if !authed {
		return
	}

	receipt, err := fileFromForm(c, "receipt")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid multipart form")
		return
	}
	in := services.RegistrationInput{
		FullName: c.PostForm("full_name"),
		Age:      c.PostForm("age"),
		Grade:    c.PostForm("grade"),
		Phone:    c.PostForm("phone"),
		Email:    c.PostForm("email"),
		Language: c.PostForm("language"),
		Receipt:  receipt,
	}

	if _, err := h.regSvc.Register(c.Request.Context(), p.ID, in); err != nil {
		h.serviceFail(c, err, ErrCodeRegisterFailed)
		return
	}
	okMessage(c, http.StatusCreated, "Registration successful!")
}

// MeRequest is the JSON payload for the self-profile lookup.
type MeRequest struct {
	InitData string `json:"init_data"`
}

// Me handles POST /me: it authenticates the signed payload and returns the
// caller's registration record, or 404 when none exists.
func (h *Handlers) Me(c *gin.Context) {
	var req MeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	p, authed := h.authenticate(c, req.InitData)
	if !authed {
		return
	}

	u, err := h.regSvc.Profile(c.Request.Context(), p.ID)
	if err != nil {
		h.serviceFail(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, u)
}
