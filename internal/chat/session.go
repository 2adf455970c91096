// Session controller.
//
// A Session owns the ephemeral per-visitor chat state: the open/closed
// lifecycle, the lazily loaded response database, the send cooldown, the
// simulated typing delay, and the append-only transcript. State is an
// explicit enum observed by callers rather than something inferred from
// presentation classes.
package chat

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/domindev/site-backend/internal/botdb"
)

// State is the session lifecycle phase.
type State int

const (
	StateClosed State = iota
	StateLoading
	StateReady
)

// String implements fmt.Stringer for logs.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Session errors.
var (
	// ErrClosed is returned by Send when the session is not open.
	ErrClosed = errors.New("chat: session closed")

	// ErrEmptyMessage is returned by Send for empty (trimmed) input.
	ErrEmptyMessage = errors.New("chat: empty message")

	// ErrCooldown is returned by Send when a previous send happened within
	// the cooldown window. A double-submit guard, not a correctness rule.
	ErrCooldown = errors.New("chat: sending too fast")
)

// Message is one transcript entry.
type Message struct {
	Text   string    `json:"text"`
	IsUser bool      `json:"is_user"`
	At     time.Time `json:"at"`
}

// Loader produces the response database. It is invoked at most once per
// session, on the first Open. Sends issued while the load is in flight wait
// for it instead of failing.
type Loader func(ctx context.Context) (*botdb.Database, error)

// Options configures a Session.
type Options struct {
	// Cooldown is the minimum interval between sends. Zero selects the
	// 500 ms default.
	Cooldown time.Duration

	// TypingMin and TypingMax bound the simulated typing delay before a bot
	// reply. Both zero disables the delay entirely; the delay is cosmetic
	// and disabling it does not change functional behavior.
	TypingMin, TypingMax time.Duration

	// Sanitize post-processes bot replies before they enter the transcript.
	// Nil leaves replies untouched. User text is never passed through it;
	// it is always recorded as literal text.
	Sanitize func(string) string
}

const defaultCooldown = 500 * time.Millisecond

// Session is a single visitor conversation. All methods are safe for
// concurrent use, though in practice callers drive one session from one
// request at a time.
type Session struct {
	load    Loader
	opts    Options
	limiter *rate.Limiter

	mu       sync.Mutex
	state    State
	resolver *Resolver
	loadDone chan struct{} // closed when the database load finished
	loadErr  error
	messages []Message
	lastSeen time.Time

	cancelMu sync.Mutex
	cancel   context.CancelFunc // cancels an in-flight typing delay
}

// NewSession constructs a closed session that will load its database through
// load on first open.
func NewSession(load Loader, opts Options) *Session {
	cd := opts.Cooldown
	if cd <= 0 {
		cd = defaultCooldown
	}
	return &Session{
		load:    load,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(cd), 1),
		state:   StateClosed,
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Messages returns a copy of the transcript so far.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Open transitions the session out of Closed and kicks off the database load
// if it has not started yet. Calling Open on an already open session is a
// no-op.
func (s *Session) Open(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	if s.state != StateClosed {
		return
	}
	if s.loadDone != nil {
		// A previous open already completed (or is completing) the load;
		// reopening just flips the state back.
		select {
		case <-s.loadDone:
			s.state = StateReady
		default:
			s.state = StateLoading
		}
		return
	}

	s.state = StateLoading
	done := make(chan struct{})
	s.loadDone = done

	go func() {
		db, err := s.load(ctx)

		s.mu.Lock()
		if err != nil {
			s.loadErr = err
			s.resolver = &Resolver{} // nil DB: fixed unavailable replies
		} else {
			s.resolver = &Resolver{DB: db}
		}
		if s.state == StateLoading {
			s.state = StateReady
		}
		s.mu.Unlock()
		close(done)
	}()
}

// Close shuts the session. It is idempotent and always safe to call; any
// in-flight typing delay is cancelled so no timer fires into a closed
// session.
func (s *Session) Close() {
	s.cancelMu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.cancelMu.Unlock()

	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()
}

// Send records the user message, resolves a reply, and appends the (possibly
// sanitized) bot response to the transcript after the simulated typing delay.
//
// It returns ErrClosed when the session is not open, ErrEmptyMessage for
// blank input, and ErrCooldown when called within the cooldown window of the
// previous send. A send issued while the database is still loading waits for
// the load to finish rather than failing.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return Message{}, ErrClosed
	}
	if !s.limiter.Allow() {
		s.mu.Unlock()
		return Message{}, ErrCooldown
	}
	s.lastSeen = time.Now()
	s.messages = append(s.messages, Message{Text: text, IsUser: true, At: time.Now()})
	done := s.loadDone
	s.mu.Unlock()

	// Queue behind a pending load. Loading and Ready are indistinguishable
	// to the caller.
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return Message{}, ctx.Err()
		}
	}

	if err := s.typingDelay(ctx); err != nil {
		return Message{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return Message{}, ErrClosed
	}

	resolver := s.resolver
	if resolver == nil {
		resolver = &Resolver{}
	}
	_, reply := resolver.Resolve(text)
	if s.opts.Sanitize != nil {
		reply = s.opts.Sanitize(reply)
	}
	bot := Message{Text: reply, At: time.Now()}
	s.messages = append(s.messages, bot)
	return bot, nil
}

// typingDelay sleeps for a uniform duration in [TypingMin, TypingMax],
// cancellable by ctx or by Close.
func (s *Session) typingDelay(ctx context.Context) error {
	min, max := s.opts.TypingMin, s.opts.TypingMax
	if max <= 0 {
		return nil
	}
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min)))
	}

	dctx, cancel := context.WithCancel(ctx)
	s.cancelMu.Lock()
	s.cancel = cancel
	s.cancelMu.Unlock()
	defer func() {
		s.cancelMu.Lock()
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		s.cancelMu.Unlock()
	}()

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-dctx.Done():
		return dctx.Err()
	}
}
