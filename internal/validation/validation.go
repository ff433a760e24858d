// Package validation provides input validation utilities.
//
// Validators return the empty string when the value is acceptable and a
// user-facing message otherwise, so callers can render them inline per field.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"framez/internal/models"
)

const (
	MaxCaptionLength  = 2200
	MaxMediaItems     = 10
	MaxCommentLength  = 10000
	minNameLength     = 2
	minPasswordLength = 8
)

var (
	// \s alone only covers ASCII; Unicode spaces are rejected as well.
	emailRegex     = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	digitRegex     = regexp.MustCompile(`\d`)
)

// ValidateFirstName checks the first name field of the sign-up form.
func ValidateFirstName(value string) string {
	return validateName(value, "First name")
}

// ValidateLastName checks the last name field of the sign-up form.
func ValidateLastName(value string) string {
	return validateName(value, "Last name")
}

func validateName(value, label string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return label + " is required"
	}
	if utf8.RuneCountInString(trimmed) < minNameLength {
		return label + " must be at least 2 characters"
	}
	return ""
}

// ValidateEmail checks basic email format
func ValidateEmail(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Email is required"
	}
	if !emailRegex.MatchString(value) {
		return "Please enter a valid email address"
	}
	return ""
}

// ValidatePassword checks if a password meets the account requirements.
func ValidatePassword(value string) string {
	if value == "" {
		return "Password is required"
	}
	if utf8.RuneCountInString(value) < minPasswordLength {
		return "Password must be at least 8 characters"
	}
	if !lowercaseRegex.MatchString(value) {
		return "Password must contain at least one lowercase letter"
	}
	if !uppercaseRegex.MatchString(value) {
		return "Password must contain at least one uppercase letter"
	}
	if !digitRegex.MatchString(value) {
		return "Password must contain at least one number"
	}
	return ""
}

// ValidateConfirmPassword checks that the confirmation matches the password.
func ValidateConfirmPassword(value, password string) string {
	if value == "" {
		return "Please confirm your password"
	}
	if value != password {
		return "Passwords do not match"
	}
	return ""
}

// ValidateCaption checks a post caption. Length is counted in characters.
func ValidateCaption(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Caption is required"
	}
	if utf8.RuneCountInString(value) > MaxCaptionLength {
		return "Caption must be 2200 characters or less"
	}
	return ""
}

// ValidateMedia checks the media carousel of a post. An empty carousel is allowed.
func ValidateMedia(items []models.MediaItem) string {
	if len(items) > MaxMediaItems {
		return "Maximum 10 media items allowed"
	}
	for _, item := range items {
		if item.Type != models.MediaTypeImage && item.Type != models.MediaTypeVideo {
			return "Media type must be image or video"
		}
		if strings.TrimSpace(item.URL) == "" {
			return "Media URL is required"
		}
	}
	return ""
}

// ValidateCommentText checks the body of a comment.
func ValidateCommentText(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Comment text is required"
	}
	if utf8.RuneCountInString(value) > MaxCommentLength {
		return "Comment must be 10000 characters or less"
	}
	return ""
}
