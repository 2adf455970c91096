// Package contact validates contact-form fields and produces a structured
// error list. Every rule is evaluated independently (never short-circuited)
// so a single pass yields the complete set of problems for display, both as
// field-level inline messages and as an aggregate summary suitable for a
// screen-reader announcement.
//
// The package performs no I/O; the server-side relay applies the same email
// shape check before touching any collaborator.
package contact

import (
	"regexp"
	"strings"
)

// Field identifiers as used by the form markup.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldMessage = "message"
	FieldConsent = "rodo"
)

// EmailRE is the permissive shape check shared by client and server: some
// non-whitespace-non-@ characters, "@", more, ".", more. Format sanity, not
// deliverability proof.
var EmailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Form carries the user-editable contact fields.
type Form struct {
	Name         string
	Email        string
	Message      string
	RODOAccepted bool
}

// FieldError ties a human-readable message to the field it concerns.
type FieldError struct {
	FieldID string `json:"field_id"`
	Message string `json:"message"`
}

// Errors is the full validation result.
type Errors []FieldError

// Summary joins all messages into one string for aggregate display.
func (e Errors) Summary() string {
	if len(e) == 0 {
		return ""
	}
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Message
	}
	return strings.Join(parts, " ")
}

// Has reports whether any error concerns the given field.
func (e Errors) Has(fieldID string) bool {
	for _, fe := range e {
		if fe.FieldID == fieldID {
			return true
		}
	}
	return false
}

// Validate applies every rule and collects the failures. An empty result
// means the form may be submitted.
func Validate(f Form) Errors {
	var errs Errors

	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, FieldError{FieldName, "Pole imię jest wymagane."})
	}
	if strings.TrimSpace(f.Email) == "" {
		errs = append(errs, FieldError{FieldEmail, "Pole e-mail jest wymagane."})
	} else if !EmailRE.MatchString(f.Email) {
		errs = append(errs, FieldError{FieldEmail, "Nieprawidłowy format e-mail."})
	}
	if strings.TrimSpace(f.Message) == "" {
		errs = append(errs, FieldError{FieldMessage, "Pole wiadomość jest wymagane."})
	}
	// Consent gets its own wording, distinct from the generic "required".
	if !f.RODOAccepted {
		errs = append(errs, FieldError{FieldConsent, "Wymagana zgoda RODO."})
	}

	return errs
}
