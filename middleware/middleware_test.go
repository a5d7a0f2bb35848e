package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace/models"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

var secret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func token(t *testing.T, p models.Principal) string {
	t.Helper()
	tok, err := utils.GenerateToken(secret, p, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

func authRouter(roles ...string) *gin.Engine {
	r := gin.New()
	chain := []gin.HandlerFunc{JWTAuth(secret)}
	if len(roles) > 0 {
		chain = append(chain, RequireRole(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		p, _ := CurrentPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "role": p.Role})
	})
	r.GET("/me", chain...)
	return r
}

func TestJWTAuth(t *testing.T) {
	r := authRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no header -> %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token -> %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, models.Principal{ID: "u1", Role: models.RoleBuyer}))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token -> %d: %s", w.Code, w.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	r := authRouter(models.RoleSeller)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, models.Principal{ID: "u1", Role: models.RoleBuyer}))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("buyer on seller route -> %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, models.Principal{ID: "s1", Role: models.RoleSeller}))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("seller -> %d", w.Code)
	}
}

func TestRateLimit_PerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(2, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	if hit("1.1.1.1") != http.StatusOK || hit("1.1.1.1") != http.StatusOK {
		t.Fatalf("burst requests should pass")
	}
	if code := hit("1.1.1.1"); code != http.StatusTooManyRequests {
		t.Fatalf("third request -> %d; want 429", code)
	}
	if code := hit("2.2.2.2"); code != http.StatusOK {
		t.Fatalf("other ip -> %d; want 200", code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": " 3.3.3.3 , 4.4.4.4"}, "9.9.9.9:1", "3.3.3.3"},
		{"real ip", map[string]string{"X-Real-IP": "5.5.5.5"}, "9.9.9.9:1", "5.5.5.5"},
		{"remote", nil, "9.9.9.9:1234", "9.9.9.9"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				c.Request.Header.Set(k, v)
			}
			if got := getClientIP(c); got != tc.want {
				t.Fatalf("getClientIP = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestMetrics_CountsByRoute(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	base := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/items/:id", "204"))
	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/items/:id", "204")); got != base+2 {
		t.Fatalf("counter = %v; want %v", got, base+2)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight = %v; want 0", got)
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/", func(c *gin.Context) {
		if _, ok := c.Get("logger"); !ok {
			t.Errorf("logger not attached")
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "rid-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "rid-1" {
		t.Fatalf("request id = %q; want rid-1", got)
	}
}
