package auth // package auth implements signing and verification of identity tokens

import (
    "errors"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// CookieName is the single cookie carrying the identity token.  It is
// HTTP-only and scoped to the whole application path; logout clears it by
// setting an immediate expiry.
const CookieName = "auth_token"

// Verification failure modes.  Handlers must never surface which of these
// occurred: the guard collapses all of them to one opaque unauthorized
// response so that invalid and near-valid tokens are indistinguishable to a
// client.
var (
    ErrMalformed    = errors.New("token malformed")
    ErrBadSignature = errors.New("token signature mismatch")
    ErrExpired      = errors.New("token expired")
)

// Claims is the decoded payload of an identity token.  Subject is the user
// identifier used for audit attribution (e.g. activities.archived_by); Role
// is advisory and must be re-derived from storage when freshness matters.
type Claims struct {
    Subject   string    // "sub" claim
    Role      string    // "role" claim, may be empty
    IssuedAt  time.Time // "iat" claim
    ExpiresAt time.Time // "exp" claim
}

// Sign builds and signs an HS256 identity token for the given claims.  The
// expiry is absolute: current UTC time plus ttl.  The result is a pure
// function of its inputs and the clock.
func Sign(subject, role, secret string, ttl time.Duration) (string, error) {
    now := time.Now().UTC()
    claims := jwt.MapClaims{
        "sub": subject,
        "exp": now.Add(ttl).Unix(),
        "iat": now.Unix(),
    }
    if role != "" {
        claims["role"] = role
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString([]byte(secret))
}

// Verify parses and cryptographically checks a token against the secret.
// It fails with ErrMalformed when the token is not well-formed, with
// ErrBadSignature when the signature does not match, and with ErrExpired
// when the current time is at or past the expiry.  On success the original
// claims are returned.
func Verify(token, secret string) (Claims, error) {
    parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
        // Reject any signing method other than HMAC.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrBadSignature
        }
        return []byte(secret), nil
    })
    if err != nil {
        switch {
        case errors.Is(err, jwt.ErrTokenExpired):
            return Claims{}, ErrExpired
        case errors.Is(err, jwt.ErrTokenSignatureInvalid):
            return Claims{}, ErrBadSignature
        default:
            return Claims{}, ErrMalformed
        }
    }
    mc, ok := parsed.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, ErrMalformed
    }
    sub, _ := mc["sub"].(string)
    if sub == "" {
        return Claims{}, ErrMalformed
    }
    out := Claims{Subject: sub}
    if role, ok := mc["role"].(string); ok {
        out.Role = role
    }
    if iat, ok := mc["iat"].(float64); ok {
        out.IssuedAt = time.Unix(int64(iat), 0).UTC()
    }
    if exp, ok := mc["exp"].(float64); ok {
        out.ExpiresAt = time.Unix(int64(exp), 0).UTC()
    }
    return out, nil
}

// StructuralHint is the result of the cheap shape check.  It carries no
// cryptographic guarantee and is a distinct type from Claims on purpose:
// redirect logic can consume a hint, but nothing that authorizes an
// operation can, because the guard only accepts verified Claims.
type StructuralHint bool

// minTokenLength is a floor below which a string cannot possibly hold a
// JWT header, payload and signature.
const minTokenLength = 20

// LooksStructurallyValid reports whether a token has the shape of a signed
// identity token: three dot-separated non-empty segments and a minimum
// length.  It performs no parsing and no signature check and must only feed
// redirect decisions, never authorization.
func LooksStructurallyValid(token string) StructuralHint {
    if len(token) < minTokenLength {
        return false
    }
    parts := strings.Split(token, ".")
    if len(parts) != 3 {
        return false
    }
    for _, p := range parts {
        if p == "" {
            return false
        }
    }
    return true
}
