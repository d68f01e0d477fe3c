package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // HTTP status codes for redirects
    "net/url"  // URL manipulation for the callback parameter
    "strings"  // string utilities for prefix checking

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware

    "github.com/global-DevLabs/zet-asociatie-sub002/internal/auth"
)

// loginPath is where unauthenticated clients are sent to authenticate.
const loginPath = "/login"

// callbackParam carries the same-origin path a client returns to after
// authenticating.
const callbackParam = "callbackUrl"

// publicPrefixes are the request paths that never require an identity.
// Everything outside this list is treated as protected.
var publicPrefixes = []string{
    loginPath,
    "/v1/auth",
    "/api/setup",
    "/healthz",
    "/assets",
    "/favicon.ico",
}

// EdgeGate returns the first middleware in the chain.  It runs on every
// request, performs no I/O, and only ever redirects:
//
//   - a request to the login page that already carries a structurally valid
//     identity cookie is bounced to its callbackUrl (default "/"), with the
//     parameter stripped;
//   - a request to a protected path with a missing or structurally invalid
//     cookie is bounced to the login page with callbackUrl set to the
//     original path;
//   - everything else passes through untouched.
//
// The shape check is auth.LooksStructurallyValid, which carries no
// cryptographic guarantee.  Enforcement belongs to AuthGuard; a wrong
// decision here costs the client one extra redirect, never access.
func EdgeGate() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            path := c.Request().URL.Path

            var hint auth.StructuralHint
            if cookie, err := c.Cookie(auth.CookieName); err == nil {
                hint = auth.LooksStructurallyValid(cookie.Value)
            }

            if path == loginPath {
                if hint {
                    // Already looks authenticated: skip the login page.
                    target := sanitizeCallback(c.QueryParam(callbackParam))
                    return c.Redirect(http.StatusFound, target)
                }
                return next(c)
            }

            if isPublicPath(path) {
                return next(c)
            }

            if !hint {
                // Send the client to login, remembering where it was headed.
                q := url.Values{}
                q.Set(callbackParam, path)
                return c.Redirect(http.StatusFound, loginPath+"?"+q.Encode())
            }
            return next(c)
        }
    }
}

// isPublicPath classifies a path against the static prefix rules.
func isPublicPath(path string) bool {
    for _, p := range publicPrefixes {
        if path == p || strings.HasPrefix(path, p+"/") {
            return true
        }
    }
    return false
}

// sanitizeCallback restricts redirect targets to same-origin paths.  Values
// that are empty, scheme-relative ("//evil") or absolute URLs fall back to
// the application root.
func sanitizeCallback(target string) string {
    if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
        return "/"
    }
    return target
}
