package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired means the signature checked out but the expiry instant
	// is not in the future.
	ErrTokenExpired = errors.New("token is expired")

	// ErrTokenSignatureInvalid means the signature does not verify under the
	// configured key.
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")

	// ErrTokenMalformed means the string could not be parsed into
	// header/claims/signature segments.
	ErrTokenMalformed = errors.New("token is malformed")
)

// Validator verifies tokens produced by Issuer and reconstructs their claim
// set. Trust is determined by signature and expiry alone; issuer and
// audience claims, if present, round-trip unchecked.
type Validator struct {
	key []byte
}

func NewValidator(key []byte) (*Validator, error) {
	if len(key) == 0 {
		return nil, ErrNoSigningKey
	}
	return &Validator{key: key}, nil
}

// Validate checks the token against the current time.
func (v *Validator) Validate(tokenString string) (*Claims, error) {
	return v.ValidateAt(tokenString, time.Now())
}

// ValidateAt checks signature and expiry against the supplied instant. A
// token whose expiry equals now is already expired.
func (v *Validator) ValidateAt(tokenString string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.key, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}
	if !tok.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
