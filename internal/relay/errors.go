// Package relay implements the contact-form submission flow. This file
// centralizes the service-level error values so handlers can map each gate's
// failure to the right HTTP status and user-facing message.
package relay

import "errors"

// Validation gate errors (HTTP 400 at the handler layer).
var (
	// ErrMissingName, ErrMissingEmail, ErrMissingMessage report the specific
	// required field that is absent, so the caller gets an actionable message.
	ErrMissingName    = errors.New("name is required")
	ErrMissingEmail   = errors.New("email is required")
	ErrMissingMessage = errors.New("message is required")

	// ErrConsentRequired is returned when the RODO consent flag is false.
	ErrConsentRequired = errors.New("consent is required")

	// ErrInvalidEmail is returned when the email fails the shape check.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrMissingToken is returned when no bot-verification token accompanies
	// the submission while verification is configured.
	ErrMissingToken = errors.New("verification token missing")
)

// ErrVerificationFailed is returned when the bot-verification service does
// not answer with an explicit success (HTTP 403).
var ErrVerificationFailed = errors.New("verification failed")

// Configuration errors (HTTP 500; the relay fails closed rather than
// silently skipping a gate).
var (
	ErrVerifierNotConfigured = errors.New("verification secret not configured")
	ErrMailerNotConfigured   = errors.New("mail provider not configured")
)

// DeliveryError wraps an email-delivery failure after the lead was captured
// in the fallback store. Ref is the fallback record key the caller can quote
// in support correspondence; it is empty when even the fallback write failed.
type DeliveryError struct {
	Ref string
	Err error
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	if e.Ref != "" {
		return "delivery failed (saved as " + e.Ref + "): " + e.Err.Error()
	}
	return "delivery failed: " + e.Err.Error()
}

// Unwrap exposes the underlying delivery error.
func (e *DeliveryError) Unwrap() error { return e.Err }
