package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSigningKey is returned when an issuer or validator is constructed
	// without key material. This is a deployment problem, not a request error.
	ErrNoSigningKey = errors.New("signing key must not be empty")

	// ErrInvalidExpiry is returned for a non-positive token lifetime.
	ErrInvalidExpiry = errors.New("token expiry minutes must be positive")
)

// Issuer signs claim sets into compact HS256 tokens. Construct once at
// startup and share; issuance is stateless and safe for concurrent use.
type Issuer struct {
	key []byte
	ttl time.Duration
}

func NewIssuer(key []byte, expiryMinutes int) (*Issuer, error) {
	if len(key) == 0 {
		return nil, ErrNoSigningKey
	}
	if expiryMinutes <= 0 {
		return nil, ErrInvalidExpiry
	}
	return &Issuer{key: key, ttl: time.Duration(expiryMinutes) * time.Minute}, nil
}

// Issue signs the claim set with an expiry relative to the current time.
func (i *Issuer) Issue(c *Claims) (string, error) {
	return i.IssueAt(c, time.Now())
}

// IssueAt stamps iat and exp relative to now and signs the claims. The
// returned token is self-contained; no server-side state is created.
func (i *Issuer) IssueAt(c *Claims, now time.Time) (string, error) {
	if c == nil {
		return "", errors.New("claims must not be nil")
	}
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.key)
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}
