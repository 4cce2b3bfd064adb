package service

import (
	"regexp"
	"strings"
)

// MinPasswordLength matches the dashboard's registration form.
const MinPasswordLength = 6

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	ninPattern   = regexp.MustCompile(`^[0-9]{11}$`)
)

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(field, email string) error {
	if !emailPattern.MatchString(email) {
		return invalid(field, "invalid email")
	}
	return nil
}

func validateRegistration(in RegisterInput) error {
	if err := validateEmail("email", in.Email); err != nil {
		return err
	}
	if !ninPattern.MatchString(in.NIN) {
		return invalid("nin", "must be 11 digits")
	}
	if len(in.Password) < MinPasswordLength {
		return invalid("password", "must be at least 6 characters")
	}
	if in.Password2 != in.Password {
		return invalid("password2", "passwords do not match")
	}
	if strings.TrimSpace(in.FullName) == "" {
		return invalid("full_name", "required")
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		return invalid("phone_number", "required")
	}
	return nil
}
