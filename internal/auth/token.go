// Package auth issues and verifies the compact HMAC-SHA256 session tokens
// used by the API, and checks the single configured login.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/zeebo/errs"
)

// Error is the class of token issuance failures.
var Error = errs.Class("token")

var (
	// ErrMalformed is returned when the token does not have three segments.
	ErrMalformed = errors.New("malformed token")
	// ErrSignature is returned when the signature does not match the secret.
	ErrSignature = errors.New("invalid signature")
	// ErrAlgorithm is returned when the header names anything but HS256.
	ErrAlgorithm = errors.New("unsupported token algorithm")
	// ErrPayload is returned when the payload segment is not valid JSON.
	ErrPayload = errors.New("invalid payload")
	// ErrExpired is returned when exp is missing or not in the future.
	ErrExpired = errors.New("token expired")
)

// Algorithm is the only signing algorithm produced and accepted.
const Algorithm = "HS256"

var b64 = base64.RawURLEncoding

// Claims is the decoded token payload.
type Claims struct {
	Username  string `json:"username"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// ExpiresIn returns the remaining lifetime relative to now.
func (c Claims) ExpiresIn(now time.Time) time.Duration {
	return time.Unix(c.ExpiresAt, 0).Sub(now)
}

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// wireClaims keeps exp optional so a missing claim can be told apart from zero.
type wireClaims struct {
	Username  string `json:"username"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt *int64 `json:"exp"`
}

// TokenService signs and verifies tokens with a fixed secret and lifetime.
// It holds no mutable state and is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a TokenService.
type Option func(*TokenService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService constructs a TokenService.
func NewTokenService(secret []byte, ttl time.Duration, opts ...Option) *TokenService {
	s := &TokenService{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue creates a token for identity valid for the configured TTL.
func (s *TokenService) Issue(identity string) (string, error) {
	iat := s.now().Unix()
	exp := iat + int64(s.ttl/time.Second)

	h, err := json.Marshal(header{Alg: Algorithm, Typ: "JWT"})
	if err != nil {
		return "", Error.Wrap(err)
	}
	p, err := json.Marshal(Claims{Username: identity, IssuedAt: iat, ExpiresAt: exp})
	if err != nil {
		return "", Error.Wrap(err)
	}

	signingInput := b64.EncodeToString(h) + "." + b64.EncodeToString(p)
	return signingInput + "." + b64.EncodeToString(s.sign(signingInput)), nil
}

// Verify checks the token's structure, signature, header algorithm, payload
// and expiry, in that order.
func (s *TokenService) Verify(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrMalformed
	}

	sig, err := b64.DecodeString(parts[2])
	if err != nil {
		return nil, ErrSignature
	}
	if !hmac.Equal(sig, s.sign(parts[0]+"."+parts[1])) {
		return nil, ErrSignature
	}

	rawHeader, err := b64.DecodeString(parts[0])
	if err != nil {
		return nil, ErrMalformed
	}
	var h header
	if err := json.Unmarshal(rawHeader, &h); err != nil {
		return nil, ErrMalformed
	}
	if h.Alg != Algorithm {
		return nil, ErrAlgorithm
	}

	raw, err := b64.DecodeString(parts[1])
	if err != nil {
		return nil, ErrPayload
	}
	var wc wireClaims
	if err := json.Unmarshal(raw, &wc); err != nil {
		return nil, ErrPayload
	}

	if wc.ExpiresAt == nil || *wc.ExpiresAt <= s.now().Unix() {
		return nil, ErrExpired
	}

	return &Claims{
		Username:  wc.Username,
		IssuedAt:  wc.IssuedAt,
		ExpiresAt: *wc.ExpiresAt,
	}, nil
}

func (s *TokenService) sign(input string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(input))
	return mac.Sum(nil)
}

// Issue is a convenience wrapper around a one-off TokenService.
func Issue(identity string, secret []byte, ttl time.Duration) (string, error) {
	return NewTokenService(secret, ttl).Issue(identity)
}

// Verify is a convenience wrapper around a one-off TokenService.
func Verify(token string, secret []byte) (*Claims, error) {
	return NewTokenService(secret, 0).Verify(token)
}

// ExtractBearer pulls the token out of an Authorization header value.
// The header must be exactly "Bearer <token>".
func ExtractBearer(headerValue string) (string, bool) {
	if headerValue == "" {
		return "", false
	}
	parts := strings.Split(headerValue, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Reason maps a verification error to a short label for logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrSignature):
		return "signature"
	case errors.Is(err, ErrAlgorithm):
		return "algorithm"
	case errors.Is(err, ErrPayload):
		return "payload"
	case errors.Is(err, ErrExpired):
		return "expired"
	case Error.Has(err):
		return "invalid"
	default:
		return "error"
	}
}
