package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crm-backend/internal/auth"
	"github.com/tbourn/go-crm-backend/internal/domain"
)

func testTokens() auth.Tokens {
	return auth.Tokens{Secret: []byte("test-secret"), TTL: time.Hour}
}

func authRouter(tokens auth.Tokens) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireAuth(tokens))
	r.GET("/me", func(c *gin.Context) {
		id, _ := UserIDFrom(c)
		role, _ := c.Get(CtxRole)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	admin := r.Group("/admin", RequireAdmin())
	admin.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestRequireAuth_MissingAndMalformedHeader(t *testing.T) {
	r := authRouter(testTokens())

	for _, header := range []string{"", "Token abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, w.Code)
		}
	}
}

func TestRequireAuth_InvalidSignature(t *testing.T) {
	tokens := testTokens()
	other := auth.Tokens{Secret: []byte("different"), TTL: time.Hour}
	tok, err := other.Generate(&domain.User{ID: 1, Email: "a@b.co", Role: domain.RoleUser}, time.Now())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	r := authRouter(tokens)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	tokens := testTokens()
	tok, err := tokens.Generate(&domain.User{ID: 1, Email: "a@b.co", Role: domain.RoleUser}, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	r := authRouter(tokens)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuth_ValidToken_SetsIdentity(t *testing.T) {
	tokens := testTokens()
	tok, err := tokens.Generate(&domain.User{ID: 42, Email: "a@b.co", Role: domain.RoleAdmin}, time.Now())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	r := authRouter(tokens)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer "+tok) // scheme is case-insensitive
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if want := `"id":42`; !strings.Contains(body, want) {
		t.Fatalf("body %q missing %q", body, want)
	}
	if want := `"role":"admin"`; !strings.Contains(body, want) {
		t.Fatalf("body %q missing %q", body, want)
	}
}

func TestRequireAdmin_RejectsNonAdmin(t *testing.T) {
	tokens := testTokens()

	userTok, _ := tokens.Generate(&domain.User{ID: 7, Email: "u@b.co", Role: domain.RoleUser}, time.Now())
	adminTok, _ := tokens.Generate(&domain.User{ID: 8, Email: "a@b.co", Role: domain.RoleAdmin}, time.Now())

	r := authRouter(tokens)

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+userTok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("user token: status = %d, want 403", w.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req2.Header.Set("Authorization", "Bearer "+adminTok)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)
	if w2.Code != http.StatusOK {
		t.Fatalf("admin token: status = %d, want 200", w2.Code)
	}
}
