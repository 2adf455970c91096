// Package relay implements the contact-form submission flow: validation,
// the bot-verification gate, two email sends (operator notification and
// sender acknowledgment), and the best-effort fallback write when delivery
// fails. The steps form a fail-fast chain executed sequentially; each gate's
// outcome decides whether the next runs at all. There are no retries inside
// the service; a retrying client can opt into deduplication with an
// Idempotency-Key (handled at the HTTP layer).
package relay

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/domindev/site-backend/internal/contact"
	"github.com/domindev/site-backend/internal/mailer"
)

// Submission is the parsed contact-form payload. Honeypot handling happens
// before the service is invoked; everything else is gated here.
type Submission struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Message      string `json:"message"`
	Budget       int    `json:"budget,omitempty"`
	Service      string `json:"service,omitempty"`
	RODOAccepted bool   `json:"rodoAccepted"`
}

// leadPayload is what gets serialized into emails and fallback records.
type leadPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Budget  int    `json:"budget"`
	Service string `json:"service"`
}

// Verifier is the bot-verification collaborator. A nil error is the explicit
// success signal; anything else is a hard reject.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// Mailer is the email-delivery collaborator.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Email) error
}

// LeadStore is the fallback persistence collaborator: a put with TTL,
// returning the generated record key. The relay never reads records back.
type LeadStore interface {
	Put(ctx context.Context, payload any, deliveryErr error, ttl time.Duration) (string, error)
}

// Config carries the relay's mail addressing and retention settings.
type Config struct {
	// OperatorAddr receives the lead notification and is the From identity.
	OperatorAddr string
	// LeadFrom / AckFrom are the sender headers for the two messages.
	LeadFrom string
	AckFrom  string
	// FallbackTTL bounds fallback-record retention; zero selects the store
	// default (7 days).
	FallbackTTL time.Duration
	// Clock supplies the lead-email timestamp; nil means time.Now.
	Clock func() time.Time
}

// Service runs the submission flow. Verifier and Mailer may be nil, which
// models the corresponding credential being absent: the service then fails
// closed (verification) or falls back and reports misconfiguration (mail).
type Service struct {
	Verifier Verifier
	Mailer   Mailer
	Leads    LeadStore
	Cfg      Config
	Log      zerolog.Logger
}

// Process executes the gate sequence for one submission. The returned error
// is one of the package sentinels, ErrVerificationFailed (possibly wrapped),
// a configuration error, or a *DeliveryError carrying the fallback ref.
// A nil return means both the operator notification was delivered and the
// submission is fully accepted.
func (s *Service) Process(ctx context.Context, sub Submission, token, remoteIP string) error {
	tr := otel.Tracer("relay/Service")
	ctx, span := tr.Start(ctx, "Process",
		trace.WithAttributes(attribute.String("submission.service", sub.Service)),
	)
	defer span.End()

	// Required fields, consent, email shape. Field-specific errors so the
	// caller can render an actionable message.
	if err := s.validate(sub); err != nil {
		submissions.WithLabelValues("invalid").Inc()
		return err
	}

	// Bot verification: fail closed when the secret is absent, never skip.
	if s.Verifier == nil {
		submissions.WithLabelValues("misconfigured").Inc()
		return ErrVerifierNotConfigured
	}
	if strings.TrimSpace(token) == "" {
		submissions.WithLabelValues("invalid").Inc()
		return ErrMissingToken
	}
	if err := s.Verifier.Verify(ctx, token, remoteIP); err != nil {
		submissions.WithLabelValues("verification_failed").Inc()
		s.Log.Warn().Err(err).Str("remote_ip", remoteIP).Msg("turnstile verification failed")
		return ErrVerificationFailed
	}

	payload := leadPayload{
		Name:    sub.Name,
		Email:   sub.Email,
		Message: sub.Message,
		Budget:  sub.Budget,
		Service: sub.Service,
	}

	// Mail credential absent: save the lead so it is not silently lost,
	// then still report the configuration error.
	if s.Mailer == nil {
		submissions.WithLabelValues("misconfigured").Inc()
		if ref, err := s.putFallback(ctx, payload, ErrMailerNotConfigured); err == nil {
			s.Log.Error().Str("ref", ref).Msg("mail provider not configured, lead saved to fallback")
		}
		return ErrMailerNotConfigured
	}

	if err := s.deliver(ctx, sub, payload); err != nil {
		submissions.WithLabelValues("delivery_failed").Inc()
		ref, perr := s.putFallback(ctx, payload, err)
		if perr != nil {
			// No second fallback tier: log and surface the delivery error
			// without a reference.
			s.Log.Error().Err(perr).Msg("fallback write failed")
		}
		return &DeliveryError{Ref: ref, Err: err}
	}

	submissions.WithLabelValues("accepted").Inc()
	return nil
}

// RecordHoneypot counts a silently rejected bot submission. Called by the
// handler, which answers success without invoking Process.
func RecordHoneypot() {
	submissions.WithLabelValues("honeypot").Inc()
}

func (s *Service) validate(sub Submission) error {
	if strings.TrimSpace(sub.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(sub.Email) == "" {
		return ErrMissingEmail
	}
	if strings.TrimSpace(sub.Message) == "" {
		return ErrMissingMessage
	}
	if !sub.RODOAccepted {
		return ErrConsentRequired
	}
	if !contact.EmailRE.MatchString(sub.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// deliver sends the operator notification and, best-effort, the sender
// acknowledgment. An operator-notification failure is returned (the lead
// must not be lost); an acknowledgment failure is only logged, because the
// lead was already captured.
func (s *Service) deliver(ctx context.Context, sub Submission, payload leadPayload) error {
	now := time.Now
	if s.Cfg.Clock != nil {
		now = s.Cfg.Clock
	}

	serviceDisplay := sub.Service
	if serviceDisplay == "" {
		serviceDisplay = "Nie określono"
	}
	leadHTML, err := mailer.RenderLeadEmail(mailer.LeadEmailData{
		Name:           sub.Name,
		Email:          sub.Email,
		Message:        sub.Message,
		BudgetDisplay:  mailer.FormatBudget(sub.Budget),
		ServiceDisplay: serviceDisplay,
		Timestamp:      now().Format("2006-01-02 15:04:05 MST"),
	})
	if err != nil {
		return err
	}

	if err := s.Mailer.Send(ctx, mailer.Email{
		From:    s.Cfg.LeadFrom,
		To:      []string{s.Cfg.OperatorAddr},
		ReplyTo: sub.Email,
		Subject: "[LEAD] Nowy sygnał: " + sub.Name,
		HTML:    leadHTML,
	}); err != nil {
		return err
	}
	emailsSent.WithLabelValues("lead").Inc()

	ackHTML, err := mailer.RenderAckEmail(mailer.AckEmailData{Name: sub.Name})
	if err == nil {
		err = s.Mailer.Send(ctx, mailer.Email{
			From:    s.Cfg.AckFrom,
			To:      []string{sub.Email},
			Subject: "Sygnał odebrany — potwierdzenie kontaktu",
			HTML:    ackHTML,
		})
	}
	if err != nil {
		// Lesser failure: the operator already has the lead.
		s.Log.Error().Err(err).Str("to", sub.Email).Msg("acknowledgment email failed")
	} else {
		emailsSent.WithLabelValues("ack").Inc()
	}

	return nil
}

func (s *Service) putFallback(ctx context.Context, payload leadPayload, cause error) (string, error) {
	if s.Leads == nil {
		return "", ErrMailerNotConfigured
	}
	ref, err := s.Leads.Put(ctx, payload, cause, s.Cfg.FallbackTTL)
	if err != nil {
		return "", err
	}
	fallbackWrites.Inc()
	s.Log.Info().Str("ref", ref).Msg("lead saved to fallback store")
	return ref, nil
}
