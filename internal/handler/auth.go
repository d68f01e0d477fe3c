package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/global-DevLabs/zet-asociatie-sub002/internal/auth"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/config"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/middleware"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/model"
	"github.com/global-DevLabs/zet-asociatie-sub002/internal/repository"
)

// UserStore is the slice of the user repository the auth endpoints need.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, email, password, role string, cost int) (uint64, error)
	Count(ctx context.Context) (int64, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewAuthHandler(cfg config.Config, u UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type setupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
type loginResp struct {
	User  userPart `json:"user"`
	Token string   `json:"token"`
}

// Login verifies credentials, issues an identity token and sets it as an
// HTTP-only cookie.  Unknown email and wrong password produce the same
// response so accounts cannot be enumerated.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("login: get user: %v", err)
			return serverError(c, "login failed")
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.IsActive || !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	ttl := time.Duration(h.Cfg.TokenTTLMin) * time.Minute
	token, err := auth.Sign(strconv.FormatUint(u.ID, 10), u.Role, h.Cfg.JWTSecret, ttl)
	if err != nil {
		log.Printf("login: sign token: %v", err)
		return serverError(c, "login failed")
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
	return c.JSON(http.StatusOK, loginResp{
		User:  userPart{ID: u.ID, Email: u.Email, Role: u.Role},
		Token: token,
	})
}

// Logout clears the identity cookie by expiring it immediately.  Tokens are
// never revoked server-side; they simply age out.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	return c.NoContent(http.StatusNoContent)
}

// Me returns the verified subject attached by the auth guard.
func (h *AuthHandler) Me(c echo.Context) error {
	subject, ok := middleware.Subject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": subject.ID, "role": subject.Role})
}

// Setup creates the initial admin account.  It is only available while the
// users table is empty; afterwards it always conflicts.
func (h *AuthHandler) Setup(c echo.Context) error {
	var req setupReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), reqTimeout)
	defer cancel()

	n, err := h.Users.Count(ctx)
	if err != nil {
		log.Printf("setup: count users: %v", err)
		return serverError(c, "setup failed")
	}
	if n > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "already configured"})
	}
	uid, err := h.Users.Create(ctx, req.Email, req.Password, "admin", h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already configured"})
		}
		log.Printf("setup: create user: %v", err)
		return serverError(c, "setup failed")
	}
	return c.JSON(http.StatusCreated, userPart{ID: uid, Email: req.Email, Role: "admin"})
}
