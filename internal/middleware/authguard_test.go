package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/global-DevLabs/zet-asociatie-sub002/internal/auth"
)

const guardSecret = "guard-test-secret"

func newGuardServer() *echo.Echo {
	e := echo.New()
	g := e.Group("/v1")
	g.Use(AuthGuard(guardSecret))
	g.GET("/whoami", func(c echo.Context) error {
		s, ok := Subject(c)
		if !ok {
			return c.String(http.StatusInternalServerError, "no subject")
		}
		return c.String(http.StatusOK, s.ID+"/"+s.Role)
	})
	return e
}

func guardGet(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/whoami", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func TestAuthGuardValidToken(t *testing.T) {
	e := newGuardServer()
	token, err := auth.Sign("u1", "admin", guardSecret, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	rr := guardGet(e, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if rr.Body.String() != "u1/admin" {
		t.Fatalf("body = %q, want %q", rr.Body.String(), "u1/admin")
	}
}

// TestAuthGuardOpaqueFailures checks that every failure mode produces the
// exact same status and body, so a client cannot tell a missing cookie from
// a forged or expired token.
func TestAuthGuardOpaqueFailures(t *testing.T) {
	e := newGuardServer()

	expired, err := auth.Sign("u1", "", guardSecret, -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	forged, err := auth.Sign("u1", "", "other-secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tokens := map[string]string{
		"missing":   "",
		"malformed": "definitely.not.jwt",
		"forged":    forged,
		"expired":   expired,
	}
	const wantBody = `{"error":"unauthorized"}` + "\n"
	for name, token := range tokens {
		rr := guardGet(e, token)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", name, rr.Code)
		}
		if rr.Body.String() != wantBody {
			t.Fatalf("%s: body = %q, want %q", name, rr.Body.String(), wantBody)
		}
	}
}
