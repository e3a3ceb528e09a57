package main

import (
	"errors"

	"github.com/example/authapi/internal/token"
	"go.uber.org/zap"
)

var (
	// ErrInvalidRequest means a required field was empty. Returned before any
	// store access.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrDuplicateEmail means an identity with this email already exists.
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrUnauthorized covers both unknown email and wrong password; the two
	// cases are never distinguishable to the caller.
	ErrUnauthorized = errors.New("invalid email or password")
)

// defaultRole is granted to every identity at registration.
const defaultRole = "User"

// Register creates a new identity with the default role. The duplicate
// pre-check is a convenience; the store's unique constraint is the
// authoritative guard, so ErrEmailTaken from the create path maps to the
// same ErrDuplicateEmail.
func (a *App) Register(name, email, password string) (*User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrInvalidRequest
	}

	existing, err := a.Store.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	user, err := a.Store.CreateUser(email, name, password)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	if err := a.Store.AddRole(user.ID, defaultRole); err != nil {
		return nil, err
	}
	user.Roles = append(user.Roles, defaultRole)

	a.Log.Info("user registered", zap.String("userId", user.ID))
	return user, nil
}

// Login verifies credentials and issues a signed token. Unknown email and
// wrong password both fail with ErrUnauthorized so callers cannot enumerate
// accounts.
func (a *App) Login(email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrInvalidRequest
	}

	user, err := a.Store.GetUserByEmail(email)
	if err != nil {
		return "", err
	}
	if user == nil || !comparePassword(user.PasswordHash, password) {
		return "", ErrUnauthorized
	}

	roles, err := a.Store.GetRoles(user.ID)
	if err != nil {
		return "", err
	}

	claims := token.NewClaims(user.ID, user.Email, user.Name, roles)
	signed, err := a.Issuer.Issue(claims)
	if err != nil {
		return "", err
	}

	a.Log.Info("user logged in", zap.String("userId", user.ID))
	return signed, nil
}
