// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 30
	MinPasswordLength = 6
	// bcrypt refuses inputs longer than 72 bytes.
	MaxPasswordBytes  = 72
	MaxEmailLength    = 254
	MaxBioLength      = 500
	MaxLocationLength = 100
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateUsername checks if a username meets requirements.
// Usernames are case-sensitive and may not contain whitespace.
func ValidateUsername(username string) error {
	if !utf8.ValidString(username) {
		return fmt.Errorf("username must be valid UTF-8")
	}
	n := utf8.RuneCountInString(username)
	if n == 0 {
		return fmt.Errorf("username is required")
	}
	if n > MaxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return fmt.Errorf("username cannot contain whitespace")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword checks the length bounds of a new password.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordBytes)
	}
	return nil
}

// ValidateBio checks the optional profile bio.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return fmt.Errorf("bio must not exceed %d characters", MaxBioLength)
	}
	return nil
}

// ValidateLocation checks the optional profile location.
func ValidateLocation(location string) error {
	if utf8.RuneCountInString(location) > MaxLocationLength {
		return fmt.Errorf("location must not exceed %d characters", MaxLocationLength)
	}
	return nil
}
