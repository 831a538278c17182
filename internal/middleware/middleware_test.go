package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/hoc-admin-api/internal/auth"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/observability"
	"github.com/yukikurage/hoc-admin-api/internal/policy"
)

type fakeVerifier map[string]*auth.Claims

func (f fakeVerifier) VerifyToken(token string) (*auth.Claims, error) {
	if c, ok := f[token]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

type fakeLinks map[[2]string]bool

func (f fakeLinks) IsLinked(_ context.Context, resp, op string) (bool, error) {
	return f[[2]string{resp, op}], nil
}

var testVerifier = fakeVerifier{
	"admin-token":   {UserID: "u-admin", Email: "a@x.com", Role: models.RoleAdmin},
	"manager-token": {UserID: "u-resp", Email: "paolo@x.com", Role: models.RoleResponsabile},
	"op-token":      {UserID: "u-op", Email: "mario@x.com", Role: models.RoleOperatore},
}

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func perform(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := gin.New()
	r.GET("/me", RequireAuth(testVerifier), func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": caller.UserID, "email": caller.Email, "role": caller.Role})
	})

	t.Run("missing token is 401", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non bearer scheme is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token is 403", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/me", "forged")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
	})

	t.Run("valid token exposes the caller", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/me", "manager-token")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"u-resp","email":"paolo@x.com","role":"RESPONSABILE"}`, w.Body.String())
	})
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.POST("/register", RequireAuth(testVerifier), RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	assert.Equal(t, http.StatusCreated, perform(r, http.MethodPost, "/register", "admin-token").Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodPost, "/register", "manager-token").Code)
}

func TestPolicyGate(t *testing.T) {
	gate := NewPolicyGate(fakeLinks{{"u-resp", "op-1"}: true}, false)

	r := gin.New()
	api := r.Group("/", RequireAuth(testVerifier))
	api.GET("/operatori/:id", gate.Require(policy.ResourceOperatore, policy.ActionRead), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	api.DELETE("/operatori/:id", gate.Require(policy.ResourceOperatore, policy.ActionDelete), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"manager reads linked operator", http.MethodGet, "/operatori/op-1", "manager-token", http.StatusOK},
		{"manager reads unlinked operator", http.MethodGet, "/operatori/op-2", "manager-token", http.StatusForbidden},
		{"operator reads own record", http.MethodGet, "/operatori/u-op", "op-token", http.StatusOK},
		{"operator reads another record", http.MethodGet, "/operatori/op-1", "op-token", http.StatusForbidden},
		{"manager cannot delete", http.MethodDelete, "/operatori/op-1", "manager-token", http.StatusForbidden},
		{"admin deletes", http.MethodDelete, "/operatori/op-1", "admin-token", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, perform(r, tt.method, tt.path, tt.token).Code)
		})
	}
}

func TestRateLimiter_MemoryStore(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	rl := NewRateLimiter(store, 2, time.Minute, discardLogger())
	r := gin.New()
	r.POST("/login", rl.Middleware(KeyByIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", "").Code)

	w := perform(r, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", "").Code)
}

func TestRateLimiter_UnavailableRedisLetsRequestsThrough(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	rl := NewRateLimiter(NewRedisStore(client, "test:"), 1, time.Minute, discardLogger())
	r := gin.New()
	r.POST("/login", rl.Middleware(KeyByIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", "").Code)
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.Use(RequireJSON())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSAndRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), CORS([]string{"http://localhost:5173"}))
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = observability.RequestIDFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("X-Request-Id", "req-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "req-1", w.Header().Get("X-Request-Id"))
	assert.Equal(t, "req-1", seen)
}
