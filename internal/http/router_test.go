package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edupay/go-course-backend/internal/config"
	"github.com/edupay/go-course-backend/internal/domain"
)

type nopBlob struct{}

func (nopBlob) Put(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	return nil
}

func (nopBlob) Remove(ctx context.Context, bucket string, keys []string) error { return nil }

func newTestEngine(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Material{}, &domain.Announcement{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	r := gin.New()
	RegisterRoutes(r, db, nopBlob{}, cfg)
	return r
}

func baseConfig() config.Config {
	cfg := config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     1000,
		RateBurst:   1000,
	}
	cfg.Telegram.BotToken = "123:test"
	cfg.Upload.ReceiptMaxBytes = 5 << 20
	cfg.Upload.MaterialMaxBytes = 50 << 20
	cfg.OTEL.ServiceName = "test"
	return cfg
}

func TestRouter_Health(t *testing.T) {
	r := newTestEngine(t, baseConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestRouter_NoRouteEnvelope(t *testing.T) {
	r := newTestEngine(t, baseConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"not_found"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestRouter_MethodNotAllowedEnvelope(t *testing.T) {
	r := newTestEngine(t, baseConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/register", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"method_not_allowed"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r := newTestEngine(t, baseConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatal("expected prometheus exposition output")
	}
}

func TestRouter_DefaultCORSAllowsAll(t *testing.T) {
	r := newTestEngine(t, baseConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("ACAO = %q", got)
	}
}

func TestRouter_AllowlistCORSEchoesOrigin(t *testing.T) {
	cfg := baseConfig()
	cfg.CORS.AllowedOrigins = []string{"https://app.example.com"}
	r := newTestEngine(t, cfg)

	t.Run("listed", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://app.example.com")
		r.ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Fatalf("ACAO = %q", got)
		}
	})

	t.Run("unlisted", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		r.ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got == "https://evil.example.com" {
			t.Fatalf("unlisted origin echoed: %q", got)
		}
	})
}

func TestRouter_UnauthenticatedRegisterRejected(t *testing.T) {
	r := newTestEngine(t, baseConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/register",
		strings.NewReader("init_data=garbage"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestRouter_PublicAnnouncementListing(t *testing.T) {
	r := newTestEngine(t, baseConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/announcements", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"pagination"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}
