// Package forms validates RSVP and contact submissions against the
// configured field definitions. Validation failures are field-level and
// block submission; entered values are always echoed back so a failed
// attempt never clears what the guest already typed.
package forms

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/soireehq/soiree/internal/invite"
)

// Result carries the validated (or rejected) submission.
type Result struct {
	// Values holds every submitted value, valid or not.
	Values map[string]string
	// Errors maps field name to the message shown inline next to it.
	Errors map[string]string
}

// Valid reports whether the submission may proceed.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// ErrorFor returns the inline message for a field, or empty.
func (r Result) ErrorFor(field string) string {
	return r.Errors[field]
}

// ValidateRSVP checks a submission against the RSVP field definitions.
func ValidateRSVP(cfg invite.RSVP, values map[string]string) Result {
	result := Result{
		Values: copyValues(values),
		Errors: make(map[string]string),
	}

	for _, field := range cfg.Fields {
		value := strings.TrimSpace(values[field.Name])
		label := field.Label
		if label == "" {
			label = field.Name
		}

		if value == "" {
			if field.Required {
				result.Errors[field.Name] = fmt.Sprintf("%s is required", label)
			}
			continue
		}

		if msg := checkType(field, value, cfg.MaxGuests); msg != "" {
			result.Errors[field.Name] = msg
		}
	}

	return result
}

// ValidateContact checks the fixed contact form shape: name, email, and
// message are required; email must parse.
func ValidateContact(values map[string]string) Result {
	result := Result{
		Values: copyValues(values),
		Errors: make(map[string]string),
	}

	for _, field := range []struct{ name, label string }{
		{"name", "Your name"},
		{"email", "Email address"},
		{"message", "Message"},
	} {
		if strings.TrimSpace(values[field.name]) == "" {
			result.Errors[field.name] = fmt.Sprintf("%s is required", field.label)
		}
	}

	if email := strings.TrimSpace(values["email"]); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			result.Errors["email"] = "Enter a valid email address"
		}
	}

	return result
}

// checkType validates a non-empty value against its declared field type.
func checkType(field invite.RSVPField, value string, maxGuests int) string {
	switch field.Type {
	case "email":
		if _, err := mail.ParseAddress(value); err != nil {
			return "Enter a valid email address"
		}
	case "tel":
		if !validPhone(value) {
			return "Enter a valid phone number"
		}
	case "number":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return "Enter a whole number"
		}
		// Guest counts are additionally capped by the event configuration.
		if field.Name == "guests" && maxGuests > 0 && n > maxGuests {
			return fmt.Sprintf("A maximum of %d guests is allowed", maxGuests)
		}
	case "select":
		if len(field.Options) > 0 && !contains(field.Options, value) {
			return "Choose one of the listed options"
		}
	}
	return ""
}

// validPhone accepts digits with common separators, at least seven
// digits total.
func validPhone(value string) bool {
	digits := 0
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits >= 7
}

func contains(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}

func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
