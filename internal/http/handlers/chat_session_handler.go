// Chat session HTTP handlers.
//
// This file exposes REST endpoints for the site chatbot:
//   - POST   /api/chat/sessions                (open a session)
//   - POST   /api/chat/sessions/{id}/messages  (send a message, get the reply)
//   - DELETE /api/chat/sessions/{id}           (close, idempotent)
//
// Handlers are transport-thin: they validate input, call the session manager,
// and translate session errors into HTTP responses. The send cooldown is a
// double-submit guard, so it surfaces as 400 `cooldown` rather than 429.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/domindev/site-backend/internal/chat"
)

//
// DTOs
//

// OpenSessionResponse is returned when a chat session is created.
type OpenSessionResponse struct {
	// ID identifies the session in subsequent requests.
	ID string `json:"id"`
	// State is "loading" until the response database finished loading.
	State string `json:"state"`
}

// SendMessageRequest is the JSON payload for sending a chat message.
type SendMessageRequest struct {
	// Content is the visitor's message. It must be non-empty.
	Content string `json:"content" binding:"required,min=1"`
}

// SendMessageResponse wraps the bot's reply to a sent message.
type SendMessageResponse struct {
	Message chat.Message `json:"message"`
}

//
// Handlers
//

// OpenChatSession creates a new session and starts loading the response
// database in the background. Sends issued while the load is still in flight
// wait for it server-side.
func (h *Handlers) OpenChatSession(c *gin.Context) {
	id, s := h.sessions.Open(c.Request.Context())
	ok(c, http.StatusCreated, OpenSessionResponse{ID: id, State: s.State().String()})
}

// SendChatMessage appends the visitor message to the transcript and returns
// the sanitized bot reply.
func (h *Handlers) SendChatMessage(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id must be a UUID")
		return
	}

	s := h.sessions.Get(id)
	if s == nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "session not found")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	msg, err := s.Send(c.Request.Context(), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		case errors.Is(err, chat.ErrCooldown):
			fail(c, http.StatusBadRequest, ErrCodeCooldown, "sending too fast, try again in a moment")
		case errors.Is(err, chat.ErrClosed):
			fail(c, http.StatusConflict, ErrCodeConflict, "session closed")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, SendMessageResponse{Message: msg})
}

// CloseChatSession closes and forgets the session. Closing an unknown or
// already-closed session is not an error.
func (h *Handlers) CloseChatSession(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id must be a UUID")
		return
	}

	h.sessions.Close(id)
	noContent(c)
}
