package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/edupay/go-course-backend/internal/domain"
	"github.com/edupay/go-course-backend/internal/initdata"
	"github.com/edupay/go-course-backend/internal/services"
)

func TestUpdateStatus_Confirmation(t *testing.T) {
	d := newDeps()
	var gotID int64
	var gotStatus string
	d.status.updateSelfFn = func(ctx context.Context, telegramID int64, status string) error {
		gotID, gotStatus = telegramID, status
		return nil
	}
	r := newRouter(d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/status",
		jsonBody(t, UpdateStatusRequest{InitData: "signed", Status: domain.StatusPaused}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"message":"Status updated successfully."`) {
		t.Fatalf("body = %s", w.Body.String())
	}
	if gotID != 42 || gotStatus != domain.StatusPaused {
		t.Fatalf("got %d %q", gotID, gotStatus)
	}
}

func TestUpdateStatus_InvalidToken(t *testing.T) {
	d := newDeps()
	d.gate.authErr = initdata.ErrHashMissing
	r := newRouter(d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/status",
		jsonBody(t, UpdateStatusRequest{InitData: "", Status: domain.StatusActive}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestUpdateStatus_NoRecord(t *testing.T) {
	d := newDeps()
	d.status.updateSelfFn = func(ctx context.Context, telegramID int64, status string) error {
		return services.ErrUserNotFound
	}
	r := newRouter(d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/status",
		jsonBody(t, UpdateStatusRequest{InitData: "signed", Status: domain.StatusActive}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestReviewUser_AdminOnly(t *testing.T) {
	d := newDeps()
	d.gate.admin = false
	r := newRouter(d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/admin/users/rec-1/status",
		jsonBody(t, ReviewUserRequest{InitData: "signed", Status: domain.StatusActive}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"forbidden"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestReviewUser_Confirmation(t *testing.T) {
	d := newDeps()
	d.gate.admin = true
	var gotID, gotStatus string
	d.status.reviewFn = func(ctx context.Context, userID, status string) error {
		gotID, gotStatus = userID, status
		return nil
	}
	r := newRouter(d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/admin/users/rec-9/status",
		jsonBody(t, ReviewUserRequest{InitData: "signed", Status: domain.StatusRejected}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"message":"User status updated"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
	if gotID != "rec-9" || gotStatus != domain.StatusRejected {
		t.Fatalf("got %q %q", gotID, gotStatus)
	}
}

func TestListUsers_AdminOnly(t *testing.T) {
	d := newDeps()
	d.gate.admin = false
	r := newRouter(d)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestListUsers_PageEnvelope(t *testing.T) {
	d := newDeps()
	d.gate.admin = true
	d.status.listUsersFn = func(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
		if page != 2 || pageSize != 1 {
			t.Errorf("page = %d size = %d", page, pageSize)
		}
		return []domain.User{{ID: "rec-2", TelegramID: 7}}, 3, nil
	}
	r := newRouter(d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/users?page=2&page_size=1", nil)
	req.Header.Set("X-Telegram-Init-Data", "signed")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var resp ListUsersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Users) != 1 || resp.Pagination.Total != 3 || resp.Pagination.TotalPages != 3 {
		t.Fatalf("resp = %+v", resp)
	}
	if !resp.Pagination.HasNext {
		t.Fatal("expected has_next on page 2 of 3")
	}
}
