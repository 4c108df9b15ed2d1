package validation

import (
	"fmt"
	"unicode/utf8"

	"warbler/internal/models"
)

// ValidateMessageText checks that text holds 1..140 characters.
func ValidateMessageText(text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("message text must be valid UTF-8")
	}
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return fmt.Errorf("message text is required")
	}
	if n > models.MaxMessageLength {
		return fmt.Errorf("message must not exceed %d characters", models.MaxMessageLength)
	}
	return nil
}
