package utils

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// Passwords must not contain quotes, slashes or whitespace; they end up in
// too many shell and SQL contexts downstream of the original deployment.
var forbiddenPasswordChars = regexp.MustCompile(`['"\s\\/]`)

const MinPasswordLength = 8

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether the plaintext matches the stored hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword enforces the length and character rules. The returned
// string is a user-facing message; empty means the password is acceptable.
func ValidatePassword(password string) string {
	if len(password) < MinPasswordLength {
		return "password must be at least 8 characters long"
	}
	if forbiddenPasswordChars.MatchString(password) {
		return "password must not contain spaces, quotes, / or \\"
	}
	return ""
}
