package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var (
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrPasswordNumeric    = errors.New("password cannot be entirely numeric")
	ErrPasswordLikeEmail  = errors.New("password is too similar to the email address")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// CheckPasswordPolicy enforces the minimum password rules. email may be empty.
func CheckPasswordPolicy(password, email string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return ErrPasswordNumeric
	}
	if email != "" {
		lp := strings.ToLower(password)
		le := strings.ToLower(strings.TrimSpace(email))
		local, _, _ := strings.Cut(le, "@")
		if lp == le || (len(local) >= minPasswordLength && lp == local) {
			return ErrPasswordLikeEmail
		}
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword returns ErrInvalidCredentials when the password does not match the hash.
func VerifyPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
