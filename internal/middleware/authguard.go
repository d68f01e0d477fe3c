package middleware

import (
    "log"      // server-side logging of the real failure reason
    "net/http" // HTTP status codes for responses

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/global-DevLabs/zet-asociatie-sub002/internal/auth"
)

// subjectKey is the echo context key under which the verified subject is
// stored for handlers.
const subjectKey = "subject"

// VerifiedSubject is the authenticated identity produced by a successful
// cryptographic token verification.  It exists only for the duration of a
// request and is the sole type handlers may use for authorization and audit
// attribution.
type VerifiedSubject struct {
    ID   string // subject id from the token's "sub" claim
    Role string // advisory role claim, may be empty
}

// AuthGuard returns a middleware that strictly verifies the identity cookie
// using the configured secret.  Every failure mode (cookie missing, token
// malformed, bad signature, expired) is collapsed to one opaque 401 body so
// that a client cannot distinguish valid-but-expired from forged tokens.
// The real reason is logged server-side.  On success the VerifiedSubject is
// stored in the context for Subject() to retrieve.
func AuthGuard(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            cookie, err := c.Cookie(auth.CookieName)
            if err != nil || cookie.Value == "" {
                log.Printf("authguard: %s %s: missing identity cookie", c.Request().Method, c.Request().URL.Path)
                return unauthorized(c)
            }
            claims, err := auth.Verify(cookie.Value, secret)
            if err != nil {
                log.Printf("authguard: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
                return unauthorized(c)
            }
            c.Set(subjectKey, VerifiedSubject{ID: claims.Subject, Role: claims.Role})
            return next(c)
        }
    }
}

// unauthorized writes the single non-distinguishing failure response used
// for every authentication problem.
func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// Subject retrieves the VerifiedSubject stored by AuthGuard.  The second
// return value is false when the guard did not run on this route, which is
// a wiring bug in the caller.
func Subject(c echo.Context) (VerifiedSubject, bool) {
    s, ok := c.Get(subjectKey).(VerifiedSubject)
    return s, ok
}
