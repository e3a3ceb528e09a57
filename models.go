package main

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a registered identity. The password hash never leaves the store
// layer except for credential verification; it is never serialized.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}

// PolicyError reports why a store rejected the password of a new user.
type PolicyError struct {
	Reasons []string
}

func (e *PolicyError) Error() string {
	return "password rejected: " + strings.Join(e.Reasons, "; ")
}

// newUser validates the password policy, derives the credential hash and
// assigns a fresh id. Shared by every store adapter's create path.
func newUser(email, name, password string) (*User, error) {
	if reasons := validatePassword(password); len(reasons) > 0 {
		return nil, &PolicyError{Reasons: reasons}
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
