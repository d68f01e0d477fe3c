package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/global-DevLabs/zet-asociatie-sub002/internal/auth"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/config"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/model"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/repository"
)

type fakeUserStore struct {
	users map[string]model.User
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, ok := f.users[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	if _, ok := f.users[email]; ok {
		return 0, repository.ErrEmailExists
	}
	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	id := uint64(len(f.users) + 1)
	f.users[email] = model.User{ID: id, Email: email, PasswordHash: hash, Role: role, IsActive: true}
	return id, nil
}

func (f *fakeUserStore) Count(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func newAuthServer(t *testing.T) (*echo.Echo, *fakeUserStore) {
	t.Helper()
	store := &fakeUserStore{users: make(map[string]model.User)}
	cfg := config.Config{Env: "test", JWTSecret: testSecret, TokenTTLMin: 60, BcryptCost: 4}
	if _, err := store.Create(context.Background(), "admin@example.com", "parola123", "admin", cfg.BcryptCost); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	e := echo.New()
	h := NewAuthHandler(cfg, store)
	e.POST("/v1/auth/login", h.Login)
	e.POST("/v1/auth/logout", h.Logout)
	return e, store
}

func postJSON(e *echo.Echo, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func TestLoginSetsIdentityCookie(t *testing.T) {
	e, _ := newAuthServer(t)

	rr := postJSON(e, "/v1/auth/login", map[string]string{"email": "admin@example.com", "password": "parola123"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("identity cookie not set")
	}
	if !cookie.HttpOnly {
		t.Fatal("identity cookie not HTTP-only")
	}
	if cookie.Path != "/" {
		t.Fatalf("cookie path = %q, want %q", cookie.Path, "/")
	}

	claims, err := auth.Verify(cookie.Value, testSecret)
	if err != nil {
		t.Fatalf("cookie does not verify: %v", err)
	}
	if claims.Subject != "1" || claims.Role != "admin" {
		t.Fatalf("claims = %+v", claims)
	}
}

// TestLoginUniformFailure checks that an unknown email and a wrong password
// are indistinguishable in the response.
func TestLoginUniformFailure(t *testing.T) {
	e, _ := newAuthServer(t)

	unknown := postJSON(e, "/v1/auth/login", map[string]string{"email": "nobody@example.com", "password": "parola123"})
	wrongPass := postJSON(e, "/v1/auth/login", map[string]string{"email": "admin@example.com", "password": "gresit"})

	if unknown.Code != http.StatusUnauthorized || wrongPass.Code != http.StatusUnauthorized {
		t.Fatalf("codes = %d/%d, want 401/401", unknown.Code, wrongPass.Code)
	}
	if unknown.Body.String() != wrongPass.Body.String() {
		t.Fatalf("bodies differ: %q vs %q", unknown.Body.String(), wrongPass.Body.String())
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	e, _ := newAuthServer(t)

	rr := postJSON(e, "/v1/auth/logout", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("logout did not touch the identity cookie")
	}
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Fatalf("cookie not expired: value=%q maxage=%d", cookie.Value, cookie.MaxAge)
	}
}

func TestSetupOnlyOnce(t *testing.T) {
	store := &fakeUserStore{users: make(map[string]model.User)}
	cfg := config.Config{Env: "test", JWTSecret: testSecret, TokenTTLMin: 60, BcryptCost: 4}
	e := echo.New()
	h := NewAuthHandler(cfg, store)
	e.POST("/api/setup", h.Setup)

	rr := postJSON(e, "/api/setup", map[string]string{"email": "admin@example.com", "password": "parola123"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("first setup: status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	rr = postJSON(e, "/api/setup", map[string]string{"email": "alt@example.com", "password": "parola123"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("second setup: status = %d, want 409", rr.Code)
	}
}
