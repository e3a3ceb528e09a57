package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the claim set carried by issued tokens: the standard registered
// claims plus the identity attributes resource servers authorize against.
type Claims struct {
	jwt.RegisteredClaims
	Email string   `json:"email,omitempty"`
	Name  string   `json:"name,omitempty"`
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// NewClaims assembles the claim set for an authenticated user. Every call
// generates a fresh jti. The primary role claim mirrors the first assigned
// role; a user with no roles gets neither a role claim nor a role list.
func NewClaims(userID, email, name string, roles []string) *Claims {
	c := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID,
			ID:      uuid.NewString(),
		},
		Email: email,
		Name:  name,
	}
	if len(roles) > 0 {
		c.Role = roles[0]
		c.Roles = append([]string(nil), roles...)
	}
	return c
}

// HasRole reports whether the claim set carries the given role.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
