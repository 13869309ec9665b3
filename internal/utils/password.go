package utils

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Password length limits. bcrypt ignores everything past 72 bytes, so longer
// passwords are refused instead of silently truncated.
const (
	MinPasswordLen   = 8
	MaxPasswordBytes = 72
)

var ErrWeakPassword = errors.New("weak password")

// ValidatePassword checks the length rules applied at registration.
func ValidatePassword(plain string) error {
	if utf8.RuneCountInString(plain) < MinPasswordLen {
		return fmt.Errorf("%w: must have at least %d characters", ErrWeakPassword, MinPasswordLen)
	}
	if len(plain) > MaxPasswordBytes {
		return fmt.Errorf("%w: must have at most %d bytes", ErrWeakPassword, MaxPasswordBytes)
	}
	return nil
}

// HashPassword hashes plain with bcrypt. A cost outside bcrypt's range falls
// back to bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
