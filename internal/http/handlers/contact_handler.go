// Contact form HTTP handler.
//
// This file exposes the submission endpoint consumed by the site's contact
// widget:
//   - POST /api/contact
//
// The endpoint speaks the widget's own envelope rather than the generic
// ErrorResponse shape:
//   - 200 {"ok":true}                      accepted (or honeypot trip)
//   - 4xx/5xx {"error":"..."}              rejected with a user-facing message
//   - 502 {"ok":false,"error":...,"ref":}  delivery failed, lead saved
//
// The handler is transport-thin: it parses and screens the body (honeypot),
// delegates the gate sequence to relay.Service, and maps service errors to
// the response contract. Clients that retry may supply an Idempotency-Key
// header; a recorded outcome for a still-valid key is replayed instead of
// reprocessing, so retries cannot duplicate operator emails or fallback
// records.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/domindev/site-backend/internal/chat"
	"github.com/domindev/site-backend/internal/http/middleware"
	"github.com/domindev/site-backend/internal/relay"
	"github.com/domindev/site-backend/internal/repo"
)

// User-facing messages of the contact endpoint. Polish on purpose; the site
// audience is Polish and the widget renders these verbatim.
const (
	msgInvalidJSON        = "Invalid JSON"
	msgMissingFields      = "Wypełnij wymagane pola."
	msgConsentRequired    = "Wymagana zgoda RODO."
	msgInvalidEmail       = "Nieprawidłowy format e-mail."
	msgServerConfig       = "Server configuration error."
	msgMailConfig         = "Server mail configuration error."
	msgMissingToken       = "Brak weryfikacji anty-spam."
	msgVerificationFailed = "Weryfikacja anty-spam nieudana."
	msgDeliverySaved      = "Tymczasowy problem z wysyłką. Twoja wiadomość została zapisana - skontaktujemy się wkrótce."
	msgDeliveryFailed     = "Błąd wysyłki powiadomienia."
)

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for contact submissions and chat
// sessions. It depends on the relay service and session manager to keep
// transport concerns separate from business logic.
type Handlers struct {
	relay    *relay.Service
	sessions *chat.Manager

	// db backs the optional Idempotency-Key replay; nil disables it.
	db      *gorm.DB
	idemTTL time.Duration
}

// New constructs a Handlers instance bound to the given collaborators.
// A nil db disables idempotent-retry support without affecting anything else.
func New(relaySvc *relay.Service, sessions *chat.Manager, db *gorm.DB, idemTTL time.Duration) *Handlers {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &Handlers{relay: relaySvc, sessions: sessions, db: db, idemTTL: idemTTL}
}

//
// DTOs
//

// ContactRequest is the JSON payload posted by the contact widget. Honey is
// the honeypot field (hidden in the form, expected empty); TurnstileToken
// carries the anti-bot challenge response.
type ContactRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Message        string `json:"message"`
	Budget         int    `json:"budget"`
	Service        string `json:"service"`
	RODOAccepted   bool   `json:"rodoAccepted"`
	Honey          string `json:"honey"`
	TurnstileToken string `json:"turnstileToken"`
}

//
// Response helpers (widget envelope)
//

func contactAccepted(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func contactError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func contactSaved(c *gin.Context, ref string) {
	c.JSON(http.StatusBadGateway, gin.H{
		"ok":    false,
		"error": msgDeliverySaved,
		"ref":   ref,
	})
}

//
// Handler
//

// SubmitContact processes one contact-form submission.
//
// Order matters and mirrors the gate sequence: parse, honeypot screen,
// idempotency replay, then the relay (validation, bot verification, emails,
// fallback). The honeypot answers success without touching any collaborator
// so an automated sender cannot distinguish "accepted" from "blocked".
func (h *Handlers) SubmitContact(c *gin.Context) {
	ctx := c.Request.Context()

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		contactError(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	if strings.TrimSpace(req.Honey) != "" {
		relay.RecordHoneypot()
		contactAccepted(c)
		return
	}

	// Idempotency replay path: read the validated key if present.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey != "" && h.db != nil {
		if rec, err := repo.GetIdempotency(ctx, h.db, idemKey, time.Now().UTC()); err == nil && rec != nil {
			c.Header("Idempotency-Replayed", "true")
			if rec.Status == http.StatusBadGateway {
				contactSaved(c, rec.Ref)
			} else {
				contactAccepted(c)
			}
			return
		}
	}

	sub := relay.Submission{
		Name:         req.Name,
		Email:        req.Email,
		Message:      req.Message,
		Budget:       req.Budget,
		Service:      req.Service,
		RODOAccepted: req.RODOAccepted,
	}

	err := h.relay.Process(ctx, sub, req.TurnstileToken, c.ClientIP())
	if err == nil {
		h.recordOutcome(c, idemKey, http.StatusOK, "")
		contactAccepted(c)
		return
	}

	var de *relay.DeliveryError
	switch {
	case errors.Is(err, relay.ErrMissingName),
		errors.Is(err, relay.ErrMissingEmail),
		errors.Is(err, relay.ErrMissingMessage):
		contactError(c, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, relay.ErrConsentRequired):
		contactError(c, http.StatusBadRequest, msgConsentRequired)
	case errors.Is(err, relay.ErrInvalidEmail):
		contactError(c, http.StatusBadRequest, msgInvalidEmail)
	case errors.Is(err, relay.ErrMissingToken):
		contactError(c, http.StatusBadRequest, msgMissingToken)
	case errors.Is(err, relay.ErrVerificationFailed):
		contactError(c, http.StatusForbidden, msgVerificationFailed)
	case errors.Is(err, relay.ErrVerifierNotConfigured):
		contactError(c, http.StatusInternalServerError, msgServerConfig)
	case errors.Is(err, relay.ErrMailerNotConfigured):
		contactError(c, http.StatusInternalServerError, msgMailConfig)
	case errors.As(err, &de):
		if de.Ref != "" {
			h.recordOutcome(c, idemKey, http.StatusBadGateway, de.Ref)
			contactSaved(c, de.Ref)
		} else {
			// Fallback write failed too; there is no reference to hand out.
			contactError(c, http.StatusBadGateway, msgDeliveryFailed)
		}
	default:
		contactError(c, http.StatusInternalServerError, "Internal Server Error")
	}
}

// recordOutcome persists the terminal outcome for an idempotency key so a
// retried submission replays it. Best effort: only outcomes that already had
// side effects (emails sent, fallback written) are worth pinning.
func (h *Handlers) recordOutcome(c *gin.Context, key string, status int, ref string) {
	if key == "" || h.db == nil {
		return
	}
	_, _ = repo.CreateIdempotency(c.Request.Context(), h.db, key, ref, status, h.idemTTL)
}
