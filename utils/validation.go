package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// Email and phone regex patterns
var (
	EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	PhoneRegex = regexp.MustCompile(`^\d{10}$`)
)

// LeadValidationRules contains validation configuration
type LeadValidationRules struct {
	MaxNameLength int
}

// DefaultValidationRules provides default validation constraints
var DefaultValidationRules = LeadValidationRules{
	MaxNameLength: 100,
}

// ValidateEmail checks if email format is valid
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !EmailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePhone checks the phone is exactly 10 digits
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone is required")
	}
	if !PhoneRegex.MatchString(phone) {
		return fmt.Errorf("phone number must be exactly 10 digits")
	}
	return nil
}

// ValidateName checks if name meets requirements
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > DefaultValidationRules.MaxNameLength {
		return fmt.Errorf("name must be less than %d characters", DefaultValidationRules.MaxNameLength)
	}
	return nil
}

// ValidateLeadSource checks the source type and the fields it depends on
func ValidateLeadSource(source, otherSource string) error {
	switch source {
	case SourceStudentRef, SourceCounsellorRef:
		return nil
	case SourceOther:
		if strings.TrimSpace(otherSource) == "" {
			return fmt.Errorf("other_source is required when source is %q", SourceOther)
		}
		return nil
	case "":
		return fmt.Errorf("source is required")
	default:
		return fmt.Errorf("invalid lead source: %s", source)
	}
}
