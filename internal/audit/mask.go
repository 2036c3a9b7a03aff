// Package audit holds the shared pieces of the audit trail that every
// privileged mutation path must agree on, chiefly the masking of sensitive
// fields in before/after snapshots.
package audit

import (
	"regexp"
	"strings"
)

var (
	cardPattern   = regexp.MustCompile(`(\d{4}[- ]?){3}\d{4}`)
	nonDigits     = regexp.MustCompile(`\D`)
	bcryptPrefix  = []string{"$2a$", "$2b$", "$2y$"}
	personalIDKey = []string{"ssn", "mynumber", "personalid"}
)

// MaskDetails returns a deep copy of an audit details payload with sensitive
// values masked: passwords and password hashes fully, card numbers down to
// the last four digits, CVV entirely, phone numbers down to the last four
// digits, personal identification numbers entirely. It is a pure transform;
// the input is never modified. Every call site that writes audit details
// must pass them through here first.
func MaskDetails(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	return maskValue(details).(map[string]any)
}

func maskValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		masked := make(map[string]any, len(val))
		for key, inner := range val {
			masked[key] = maskField(key, inner)
		}
		return masked
	case []any:
		masked := make([]any, len(val))
		for i, item := range val {
			masked[i] = maskValue(item)
		}
		return masked
	case string:
		return maskString(val)
	default:
		return v
	}
}

// maskField applies key-driven masking before falling back to value-driven
// masking.
func maskField(key string, v any) any {
	lower := strings.ToLower(key)

	if strings.Contains(lower, "password") || strings.Contains(lower, "passwd") {
		return "********"
	}

	if strings.Contains(lower, "cvv") || strings.Contains(lower, "cvc") ||
		strings.Contains(lower, "securitycode") {
		return "***"
	}

	if s, ok := v.(string); ok {
		if strings.Contains(lower, "card") && strings.Contains(lower, "number") {
			if digits := nonDigits.ReplaceAllString(s, ""); len(digits) >= 13 && len(digits) <= 19 {
				return "****-****-****-" + digits[len(digits)-4:]
			}
		}

		if strings.Contains(lower, "phone") || strings.Contains(lower, "tel") {
			if digits := nonDigits.ReplaceAllString(s, ""); len(digits) >= 4 {
				return "***-****-" + digits[len(digits)-4:]
			}
		}

		for _, marker := range personalIDKey {
			if strings.Contains(lower, marker) {
				return "***-****-****"
			}
		}
	}

	return maskValue(v)
}

// maskString catches sensitive values that slip through under innocuous
// keys: card-number-shaped strings and bcrypt hashes.
func maskString(s string) any {
	if cardPattern.MatchString(s) {
		if digits := nonDigits.ReplaceAllString(s, ""); len(digits) >= 13 && len(digits) <= 19 {
			return "****-****-****-" + digits[len(digits)-4:]
		}
	}

	for _, prefix := range bcryptPrefix {
		if strings.HasPrefix(s, prefix) {
			return "********"
		}
	}

	return s
}
