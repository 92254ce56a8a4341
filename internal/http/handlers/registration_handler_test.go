package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/edupay/go-course-backend/internal/domain"
	"github.com/edupay/go-course-backend/internal/initdata"
	"github.com/edupay/go-course-backend/internal/services"
)

//
// Stubs
//

type stubGate struct {
	principal *initdata.Principal
	authErr   error
	admin     bool
}

func (g *stubGate) Authenticate(raw string) (*initdata.Principal, error) {
	if g.authErr != nil {
		return nil, g.authErr
	}
	return g.principal, nil
}

func (g *stubGate) IsAdmin(raw string) bool { return g.admin }

type stubRegSvc struct {
	registerFn func(ctx context.Context, telegramID int64, in services.RegistrationInput) (*domain.User, error)
	profileFn  func(ctx context.Context, telegramID int64) (*domain.User, error)
}

func (s *stubRegSvc) Register(ctx context.Context, telegramID int64, in services.RegistrationInput) (*domain.User, error) {
	return s.registerFn(ctx, telegramID, in)
}

func (s *stubRegSvc) Profile(ctx context.Context, telegramID int64) (*domain.User, error) {
	return s.profileFn(ctx, telegramID)
}

type stubStatusSvc struct {
	updateSelfFn func(ctx context.Context, telegramID int64, status string) error
	reviewFn     func(ctx context.Context, userID, status string) error
	listUsersFn  func(ctx context.Context, page, pageSize int) ([]domain.User, int64, error)
}

func (s *stubStatusSvc) UpdateSelf(ctx context.Context, telegramID int64, status string) error {
	return s.updateSelfFn(ctx, telegramID, status)
}

func (s *stubStatusSvc) Review(ctx context.Context, userID, status string) error {
	return s.reviewFn(ctx, userID, status)
}

func (s *stubStatusSvc) ListUsers(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	return s.listUsersFn(ctx, page, pageSize)
}

type stubMatSvc struct {
	createFn func(ctx context.Context, in services.MaterialInput) (*domain.Material, error)
	deleteFn func(ctx context.Context, id, filePath string) error
	listFn   func(ctx context.Context, page, pageSize int) ([]domain.Material, int64, error)
}

func (s *stubMatSvc) Create(ctx context.Context, in services.MaterialInput) (*domain.Material, error) {
	return s.createFn(ctx, in)
}

func (s *stubMatSvc) Delete(ctx context.Context, id, filePath string) error {
	return s.deleteFn(ctx, id, filePath)
}

func (s *stubMatSvc) ListPage(ctx context.Context, page, pageSize int) ([]domain.Material, int64, error) {
	return s.listFn(ctx, page, pageSize)
}

type stubAnnSvc struct {
	postFn func(ctx context.Context, content string) (*domain.Announcement, error)
	listFn func(ctx context.Context, page, pageSize int) ([]domain.Announcement, int64, error)
}

func (s *stubAnnSvc) Post(ctx context.Context, content string) (*domain.Announcement, error) {
	return s.postFn(ctx, content)
}

func (s *stubAnnSvc) ListPage(ctx context.Context, page, pageSize int) ([]domain.Announcement, int64, error) {
	return s.listFn(ctx, page, pageSize)
}

//
// Helpers
//

type handlerDeps struct {
	gate      *stubGate
	reg       *stubRegSvc
	status    *stubStatusSvc
	mat       *stubMatSvc
	ann       *stubAnnSvc
	echoStore bool
}

func newDeps() *handlerDeps {
	return &handlerDeps{
		gate:   &stubGate{principal: &initdata.Principal{ID: 42}},
		reg:    &stubRegSvc{},
		status: &stubStatusSvc{},
		mat:    &stubMatSvc{},
		ann:    &stubAnnSvc{},
	}
}

func newRouter(d *handlerDeps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(d.gate, d.reg, d.status, d.mat, d.ann, d.echoStore)
	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/me", h.Me)
	r.POST("/status", h.UpdateStatus)
	r.GET("/announcements", h.ListAnnouncements)
	r.POST("/announcements", h.PostAnnouncement)
	r.GET("/materials", h.ListMaterials)
	r.POST("/materials", h.CreateMaterial)
	r.DELETE("/materials/:id", h.DeleteMaterial)
	r.GET("/admin/users", h.ListUsers)
	r.PATCH("/admin/users/:id/status", h.ReviewUser)
	return r
}

// multipartBody assembles a multipart form with optional single file part.
func multipartBody(t *testing.T, fields map[string]string, fileField, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if fileField != "" {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, fileName))
		hdr.Set("Content-Type", contentType)
		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewBuffer(b)
}

func regFields() map[string]string {
	return map[string]string{
		"init_data": "signed-token",
		"full_name": "Alice Smith",
		"age":       "17",
		"grade":     "11",
		"phone":     "+251 911 223344",
		"email":     "alice@example.com",
		"language":  "am",
	}
}

//
// Registration
//

func TestRegister_Created(t *testing.T) {
	d := newDeps()
	var gotID int64
	var gotIn services.RegistrationInput
	d.reg.registerFn = func(ctx context.Context, telegramID int64, in services.RegistrationInput) (*domain.User, error) {
		gotID, gotIn = telegramID, in
		return &domain.User{ID: "rec-1", TelegramID: telegramID, FullName: in.FullName}, nil
	}
	r := newRouter(d)

	body, ct := multipartBody(t, regFields(), "receipt", "receipt.png", "image/png", []byte("png-bytes"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if gotID != 42 {
		t.Fatalf("telegram id = %d", gotID)
	}
	if gotIn.FullName != "Alice Smith" || gotIn.Language != "am" {
		t.Fatalf("input = %+v", gotIn)
	}
	if gotIn.Receipt == nil || gotIn.Receipt.Name != "receipt.png" || gotIn.Receipt.ContentType != "image/png" {
		t.Fatalf("receipt = %+v", gotIn.Receipt)
	}

	// Confirmation only; the body must not echo the stored contact details.
	var resp MessageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message != "Registration successful!" {
		t.Fatalf("message = %q", resp.Message)
	}
	for _, leak := range []string{"alice@example.com", "+251 911 223344", "telegram_id", "rec-1"} {
		if strings.Contains(w.Body.String(), leak) {
			t.Fatalf("body leaks %q: %s", leak, w.Body.String())
		}
	}
}

func TestRegister_InvalidToken(t *testing.T) {
	d := newDeps()
	d.gate.authErr = initdata.ErrSignatureInvalid
	r := newRouter(d)

	body, ct := multipartBody(t, regFields(), "", "", "", nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"unauthorized"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestRegister_ValidationEnvelope(t *testing.T) {
	d := newDeps()
	fe := services.FieldErrors{}
	fe.Add("age", "You must be at least 12 years old")
	fe.Add("full_name", "Full name must be at least 3 characters")
	d.reg.registerFn = func(ctx context.Context, telegramID int64, in services.RegistrationInput) (*domain.User, error) {
		return nil, &services.ValidationError{Fields: fe}
	}
	r := newRouter(d)

	body, ct := multipartBody(t, regFields(), "", "", "", nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != ErrCodeValidationFailed {
		t.Fatalf("code = %q", resp.Code)
	}
	if len(resp.Errors["age"]) != 1 || len(resp.Errors["full_name"]) != 1 {
		t.Fatalf("errors = %v", resp.Errors)
	}
}

func TestRegister_Conflict(t *testing.T) {
	d := newDeps()
	d.reg.registerFn = func(ctx context.Context, telegramID int64, in services.RegistrationInput) (*domain.User, error) {
		return nil, services.ErrAlreadyRegistered
	}
	r := newRouter(d)

	body, ct := multipartBody(t, regFields(), "", "", "", nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"conflict"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestRegister_StoreErrorSanitizedByDefault(t *testing.T) {
	d := newDeps()
	d.reg.registerFn = func(ctx context.Context, telegramID int64, in services.RegistrationInput) (*domain.User, error) {
		return nil, &services.StoreError{Op: "save registration", Err: errors.New("disk full at /var/lib")}
	}
	r := newRouter(d)

	body, ct := multipartBody(t, regFields(), "", "", "", nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "disk full") {
		t.Fatalf("raw store error leaked: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"code":"register_failed"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestRegister_StoreErrorEchoedWhenEnabled(t *testing.T) {
	d := newDeps()
	d.echoStore = true
	d.reg.registerFn = func(ctx context.Context, telegramID int64, in services.RegistrationInput) (*domain.User, error) {
		return nil, &services.StoreError{Op: "save registration", Err: errors.New("disk full")}
	}
	r := newRouter(d)

	body, ct := multipartBody(t, regFields(), "", "", "", nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "disk full") {
		t.Fatalf("expected echoed store error: %s", w.Body.String())
	}
}

//
// Self profile
//

func TestMe_ReturnsProfile(t *testing.T) {
	d := newDeps()
	d.reg.profileFn = func(ctx context.Context, telegramID int64) (*domain.User, error) {
		return &domain.User{ID: "rec-1", TelegramID: telegramID, Status: domain.StatusActive}, nil
	}
	r := newRouter(d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/me", jsonBody(t, MeRequest{InitData: "signed"}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"status":"Active"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestMe_NotRegistered(t *testing.T) {
	d := newDeps()
	d.reg.profileFn = func(ctx context.Context, telegramID int64) (*domain.User, error) {
		return nil, services.ErrUserNotFound
	}
	r := newRouter(d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/me", jsonBody(t, MeRequest{InitData: "signed"}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestMe_BadJSON(t *testing.T) {
	d := newDeps()
	r := newRouter(d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/me", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}
