package main

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password policy matches what the service was provisioned with: a length
// floor only, no character-class requirements.
const minPasswordLength = 4

func validatePassword(p string) []string {
	var reasons []string
	if len(p) < minPasswordLength {
		reasons = append(reasons, fmt.Sprintf("Passwords must be at least %d characters.", minPasswordLength))
	}
	return reasons
}

func hashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	return string(b), err
}

func comparePassword(hash, p string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(p)) == nil
}
