// Package auth issues and verifies session tokens, hashes passwords, and
// guards protected routes.
//
// SESSION FLOW:
//  1. POST /api/login checks the password and calls TokenService.Issue
//  2. The client keeps the token and sends it on every call as
//     "Authorization: Bearer <token>"
//  3. RequireAuth verifies the token, loads the user and puts it in the
//     request context
//
// Tokens are stateless HS256 JWTs that live for 24 hours. There is no server
// side revocation; logging out means the client forgets the token.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"<userID>","iss":"sqlmanager","iat":...,"exp":...,"jti":"..."}
//	- Signature: HMAC-SHA256(header+"."+payload, secret)
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// TokenLifetime is how long an issued token stays valid.
const TokenLifetime = 24 * time.Hour

const issuer = "sqlmanager"

// Verification failures. Callers use errors.Is to tell them apart; the
// HTTP layer collapses all of them into a single 401.
var (
	ErrTokenMissing     = errors.New("auth: token missing")
	ErrTokenMalformed   = errors.New("auth: token malformed")
	ErrTokenExpired     = errors.New("auth: token expired")
	ErrSignatureInvalid = errors.New("auth: token signature invalid")
)

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret used to sign and verify tokens, and the clock
// both operations read. The same secret must be used on every instance that
// serves the API.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithTokenClock overrides time.Now for issuing and expiry checks.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService creates a TokenService with the given secret.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	s := &TokenService{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for userID that expires TokenLifetime from now.
//
// The jti claim is a fresh xid, so two tokens issued to the same user in the
// same second are still distinct strings.
func (s *TokenService) Issue(userID string) (string, error) {
	now := s.now()

	c := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		ID:        xid.New().String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, issuer and expiry of tokenStr and returns the
// user ID from its "sub" claim.
//
// ALGORITHM CONFUSION:
// jwt.WithValidMethods pins HS256, so a token claiming "none" or RS256 is
// rejected before the key is ever used.
func (s *TokenService) Verify(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrTokenMissing
	}

	var c jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrSignatureInvalid
		default:
			return "", fmt.Errorf("%w: %w", ErrTokenMalformed, err)
		}
	}

	if c.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrTokenMalformed)
	}
	return c.Subject, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrTokenMissing
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrTokenMissing
	}
	return token, nil
}
