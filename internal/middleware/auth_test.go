// auth_test.go - Unit tests for admin authentication.
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-jwt-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// lowCostHash keeps bcrypt fast in tests.
func lowCostHash(t *testing.T, key string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(h)
}

func TestHashAdminKey(t *testing.T) {
	hash, err := HashAdminKey("s3cret")
	if err != nil {
		t.Fatalf("HashAdminKey() error = %v", err)
	}

	t.Run("matches the original key", func(t *testing.T) {
		if !CheckAdminKey(hash, "s3cret") {
			t.Error("CheckAdminKey() = false for the hashed key")
		}
	})
	t.Run("rejects other keys", func(t *testing.T) {
		if CheckAdminKey(hash, "guess") {
			t.Error("CheckAdminKey() = true for a wrong key")
		}
	})
	t.Run("rejects empty values", func(t *testing.T) {
		if CheckAdminKey("", "s3cret") || CheckAdminKey(hash, "") {
			t.Error("CheckAdminKey() accepted an empty hash or key")
		}
	})
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("ops@club", RoleAdmin, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}
	claims, err := ParseJWT(token, testSecret)
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}
	if claims.Role != RoleAdmin || claims.Subject != "ops@club" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := ParseJWT(token, "other-secret"); err == nil {
		t.Error("ParseJWT() accepted a token signed with another secret")
	}

	expired, _ := GenerateJWT("ops@club", RoleAdmin, testSecret, -time.Minute)
	if _, err := ParseJWT(expired, testSecret); err == nil {
		t.Error("ParseJWT() accepted an expired token")
	}
}

func TestAdminAuth(t *testing.T) {
	keyHash := lowCostHash(t, "admin-key")
	adminToken, _ := GenerateJWT("ops", RoleAdmin, testSecret, time.Hour)
	viewerToken, _ := GenerateJWT("coach", "viewer", testSecret, time.Hour)

	tests := []struct {
		name    string
		headers map[string]string
		want    int
		subject string
	}{
		{"no credentials", nil, http.StatusUnauthorized, ""},
		{"valid admin key", map[string]string{AdminKeyHeader: "admin-key"}, http.StatusOK, "admin-key"},
		{"wrong admin key", map[string]string{AdminKeyHeader: "nope"}, http.StatusUnauthorized, ""},
		{"admin token", map[string]string{"Authorization": "Bearer " + adminToken}, http.StatusOK, "ops"},
		{"non-admin token", map[string]string{"Authorization": "Bearer " + viewerToken}, http.StatusUnauthorized, ""},
		{"garbage token", map[string]string{"Authorization": "Bearer abc.def.ghi"}, http.StatusUnauthorized, ""},
		{"wrong key falls back to token", map[string]string{
			AdminKeyHeader:  "nope",
			"Authorization": "Bearer " + adminToken,
		}, http.StatusOK, "ops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			var subject string
			r.POST("/reset", AdminAuth(keyHash, testSecret), func(c *gin.Context) {
				subject = AdminSubject(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/reset", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if subject != tt.subject {
				t.Errorf("subject = %q, want %q", subject, tt.subject)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(2)
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/upload", rl.RateLimit(), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(); rec.Code != http.StatusAccepted || rec.Header().Get("X-RateLimit-Remaining") != "1" {
		t.Fatalf("first request: status %d remaining %q", rec.Code, rec.Header().Get("X-RateLimit-Remaining"))
	}
	if rec := do(); rec.Code != http.StatusAccepted {
		t.Fatalf("second request: status %d", rec.Code)
	}
	if rec := do(); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status %d, want 429", rec.Code)
	}

	// 45 minutes refills 1.5 tokens at 2/hour.
	now = now.Add(45 * time.Minute)
	if rec := do(); rec.Code != http.StatusAccepted {
		t.Errorf("after refill: status %d, want 202", rec.Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	rl := NewRateLimiter(0)
	r := gin.New()
	r.POST("/upload", rl.RateLimit(), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", nil))
		if rec.Code != http.StatusAccepted {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
	}
}
