package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"org-admin/backend/config"
	"org-admin/backend/internal/model"
	"org-admin/backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func newJWTManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "middleware-test-secret-0123456789",
		AccessTokenTTL: time.Hour,
	})
}

func issue(t *testing.T, mgr *jwt.Manager, perms ...string) string {
	t.Helper()
	token, err := mgr.GenerateAccessToken(jwt.Subject{UserID: 9, Username: "alice", DeptID: 1, Permissions: perms})
	if err != nil {
		t.Fatalf("签发 Token 失败: %v", err)
	}
	return token
}

func ok(c *gin.Context) { c.Status(http.StatusOK) }

type fakeLimiter struct {
	mu      sync.Mutex
	allowed int
	keys    []string
	err     error
}

func (f *fakeLimiter) CheckRateLimit(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	f.keys = append(f.keys, key)
	if f.allowed >= limit {
		return false, nil
	}
	f.allowed++
	return true, nil
}

type fakeRecorder struct {
	logs []*model.OperLog
}

func (f *fakeRecorder) Record(_ context.Context, log *model.OperLog) {
	f.logs = append(f.logs, log)
}

// ═══════════════════════════════════════════════════════════
// Auth
// ═══════════════════════════════════════════════════════════

func TestJWTAuth(t *testing.T) {
	mgr := newJWTManager()
	valid := issue(t, mgr)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"MissingHeader", "", http.StatusUnauthorized},
		{"BadScheme", "Basic " + valid, http.StatusUnauthorized},
		{"InvalidToken", "Bearer not-a-token", http.StatusUnauthorized},
		{"Valid", "Bearer " + valid, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser uint64
			r := gin.New()
			r.GET("/x", JWTAuth(mgr), func(c *gin.Context) {
				gotUser = c.MustGet("user_id").(uint64)
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
			if tt.want == http.StatusOK && gotUser != 9 {
				t.Errorf("expected user_id 9, got %d", gotUser)
			}
		})
	}
}

func TestPermAuth(t *testing.T) {
	mgr := newJWTManager()

	tests := []struct {
		name  string
		perms []string
		want  int
	}{
		{"Granted", []string{"system:dept:add"}, http.StatusOK},
		{"Wildcard", []string{jwt.AllPermission}, http.StatusOK},
		{"Missing", []string{"system:dept:list"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/x", JWTAuth(mgr), PermAuth("system:dept:add"), ok)

			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/x", nil)
			req.Header.Set("Authorization", "Bearer "+issue(t, mgr, tt.perms...))
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestPermAuth_WithoutJWT(t *testing.T) {
	r := gin.New()
	r.GET("/x", PermAuth("system:dept:list"), ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// OperLog
// ═══════════════════════════════════════════════════════════

func TestOperLog_Success(t *testing.T) {
	rec := &fakeRecorder{}
	r := gin.New()
	r.Use(RequestID())
	r.Use(func(c *gin.Context) { c.Set("user_id", uint64(5)) })
	r.POST("/departments", OperLog(rec, "部门管理", model.BusinessTypeInsert), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/departments", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	r.ServeHTTP(w, req)

	if len(rec.logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(rec.logs))
	}
	log := rec.logs[0]
	if log.Title != "部门管理" || log.BusinessType != model.BusinessTypeInsert {
		t.Errorf("unexpected title/type: %s/%d", log.Title, log.BusinessType)
	}
	if log.OperatorID != 5 || log.RequestID != "rid-1" {
		t.Errorf("unexpected operator/request id: %d/%s", log.OperatorID, log.RequestID)
	}
	if log.Status != model.OperStatusSuccess || log.HTTPStatus != http.StatusCreated {
		t.Errorf("unexpected status: %d/%d", log.Status, log.HTTPStatus)
	}
	if log.RequestMethod != "POST" || log.OperURL != "/departments" {
		t.Errorf("unexpected method/url: %s %s", log.RequestMethod, log.OperURL)
	}
}

func TestOperLog_FailureCapturesError(t *testing.T) {
	rec := &fakeRecorder{}
	r := gin.New()
	r.DELETE("/departments/:id", OperLog(rec, "部门管理", model.BusinessTypeDelete), func(c *gin.Context) {
		_ = c.Error(errors.New("部门「研发部」存在下级部门，不允许删除"))
		c.Status(http.StatusBadRequest)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/departments/3", nil))

	if len(rec.logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(rec.logs))
	}
	if rec.logs[0].Status != model.OperStatusFail {
		t.Errorf("expected fail status, got %d", rec.logs[0].Status)
	}
	if !strings.Contains(rec.logs[0].ErrorMsg, "研发部") {
		t.Errorf("expected error message recorded, got %q", rec.logs[0].ErrorMsg)
	}
}

// ═══════════════════════════════════════════════════════════
// RateLimit / RequestID / BodyLimit
// ═══════════════════════════════════════════════════════════

func TestRateLimit(t *testing.T) {
	lim := &fakeLimiter{}
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", uint64(3)) })
	r.POST("/x", RateLimit(lim, 2, time.Minute, zap.NewNop()), ok)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/x", nil))
		codes = append(codes, w.Code)
	}

	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected codes: %v", codes)
	}
	if len(lim.keys) == 0 || !strings.HasPrefix(lim.keys[0], "rate_limit:u3:POST:") {
		t.Errorf("expected per-user key, got %v", lim.keys)
	}
}

func TestRateLimit_DegradesOnError(t *testing.T) {
	for _, lim := range []Limiter{nil, &fakeLimiter{err: errors.New("redis down")}} {
		r := gin.New()
		r.POST("/x", RateLimit(lim, 1, time.Minute, zap.NewNop()), ok)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/x", nil))
		if w.Code != http.StatusOK {
			t.Errorf("expected pass-through, got %d", w.Code)
		}
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected generated X-Request-ID")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("a", requestIDMaxLen+1))
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); len(got) > requestIDMaxLen {
		t.Errorf("oversized request id should be replaced, got %q", got)
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/x", ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/x", strings.NewReader(strings.Repeat("x", 64))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/x", strings.NewReader("tiny")))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/x", ok)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("expected allowed origin echoed, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unlisted origin must not be allowed")
	}
}
