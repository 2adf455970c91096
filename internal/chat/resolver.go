// Package chat implements the chatbot core: the intent resolver that maps a
// freeform visitor message to a response, and the session controller that
// owns transcript state, the send cooldown, and the simulated typing delay.
//
// The resolver is deliberately rule-based and auditable. Matching runs in a
// strict precedence order with first-defined-wins ties inside each stage;
// there is no scoring, weighting, or learned component.
package chat

import (
	"math/rand"
	"strings"
	"sync"
	"unicode"

	"github.com/domindev/site-backend/internal/botdb"
	"github.com/domindev/site-backend/internal/textnorm"
)

// Reserved intent names produced by the resolver itself (they never come
// from the keyword table).
const (
	IntentOffline = "offline"
	IntentEmpty   = "empty"
)

// Fixed responses for the resolver's own failure and edge states. These are
// the only replies not drawn from the database.
const (
	replyOffline = "System chwilowo niedostępny. Spróbuj ponownie za chwilę lub napisz przez formularz kontaktowy."
	replyEmpty   = "Napisz coś, a postaram się pomóc."
)

// Resolver decides which response category applies to a message given a
// loaded response database. The database is an explicit dependency, not a
// package-level singleton, so tests can supply fixtures directly.
//
// A nil DB puts the resolver in its single error state: every Resolve call
// returns the fixed system-unavailable reply.
type Resolver struct {
	DB *botdb.Database

	// Rand is the source for uniform template selection. Nil falls back to
	// the shared math/rand source.
	Rand *rand.Rand

	mu sync.Mutex // guards Rand, which is not safe for concurrent use
}

// Resolve maps a raw message to (intent, reply) using the staged precedence:
// vulgar terms, glossary definitions, multi-word phrases, single words,
// catch-all. A glossary hit returns its definition directly and never goes
// through the template table.
func (r *Resolver) Resolve(raw string) (intent, reply string) {
	if r.DB == nil {
		return IntentOffline, replyOffline
	}
	if strings.TrimSpace(raw) == "" {
		return IntentEmpty, replyEmpty
	}

	msg := textnorm.Fold(raw)

	// Vulgarity first, so an intent keyword in the same message cannot mask it.
	for _, term := range r.DB.VulgarTerms {
		if term != "" && strings.Contains(msg, term) {
			return botdb.IntentVulgar, r.pick(botdb.IntentVulgar)
		}
	}

	// Glossary: exact-definition lookups outrank generic intents because they
	// answer a more specific question ("what is X").
	for _, g := range r.DB.Glossary {
		if g.Term != "" && strings.Contains(msg, g.Term) {
			return g.Term, g.Definition
		}
	}

	// Phrases before single words; both in document order.
	for _, kw := range r.DB.Keywords {
		if !strings.ContainsAny(kw.Match, " \t") {
			continue
		}
		if strings.Contains(msg, kw.Match) {
			return kw.Intent, r.pick(kw.Intent)
		}
	}

	words := splitWords(msg)
	for _, kw := range r.DB.Keywords {
		if strings.ContainsAny(kw.Match, " \t") {
			continue
		}
		for _, w := range words {
			if w == kw.Match {
				return kw.Intent, r.pick(kw.Intent)
			}
		}
	}

	return botdb.IntentUnknown, r.pick(botdb.IntentUnknown)
}

// pick chooses one template uniformly at random for intent, falling back to
// the catch-all set when the intent has no templates of its own.
func (r *Resolver) pick(intent string) string {
	ts := r.DB.Templates(intent)
	if len(ts) == 0 {
		return replyOffline
	}
	if len(ts) == 1 {
		return ts[0]
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Rand != nil {
		return ts[r.Rand.Intn(len(ts))]
	}
	return ts[rand.Intn(len(ts))]
}

// splitWords breaks a folded message into candidate words on whitespace and
// punctuation. Digits stay attached to letters ("web3" is one word).
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
