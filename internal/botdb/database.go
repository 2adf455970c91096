// Package botdb loads and holds the chatbot response database: the vulgar
// term list, the glossary, the keyword-to-intent rules, and the response
// templates. The database is decoded once from a static JSON document and is
// read-only thereafter, so a single *Database value is safe for concurrent
// use by any number of resolvers.
//
// Ordering is significant and explicit: glossary entries and keyword rules
// are literal ordered lists in the source document, and matching always
// proceeds in document order (first-defined wins). No scoring or weighting
// is used.
package botdb

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/domindev/site-backend/internal/textnorm"
)

// IntentUnknown is the catch-all response category. Every database must
// define templates for it; it is the fallback whenever a resolved intent has
// no entry of its own.
const IntentUnknown = "unknown"

// IntentVulgar is resolved when the input contains any vulgar term. It is
// checked before every other rule so an intent keyword appearing in the same
// message cannot mask it.
const IntentVulgar = "vulgar"

// GlossaryEntry maps a term to its definition. A glossary match returns the
// definition verbatim, bypassing response templates entirely.
type GlossaryEntry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// KeywordRule maps a phrase or a single word to an intent name. Rules whose
// Match contains whitespace are treated as phrases (substring match); the
// rest match whole words only.
type KeywordRule struct {
	Match  string `json:"match"`
	Intent string `json:"intent"`
}

// Database is the loaded, read-only response dataset.
type Database struct {
	VulgarTerms []string            `json:"vulgar_terms"`
	Glossary    []GlossaryEntry     `json:"glossary"`
	Keywords    []KeywordRule       `json:"keywords"`
	Responses   map[string][]string `json:"responses"`
}

// ErrNoUnknown is returned by Validate when the database lacks templates for
// the catch-all intent.
var ErrNoUnknown = errors.New(`botdb: responses must define the "unknown" intent`)

// Load reads and decodes the database from a JSON file at path.
func Load(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes a database from UTF-8 JSON provided by r and normalizes it
// for matching: vulgar terms, glossary terms, and keyword matches are folded
// (diacritic-stripped and lower-cased) once at load time so the resolver can
// compare directly against folded input.
func Decode(r io.Reader) (*Database, error) {
	var db Database
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&db); err != nil {
		return nil, err
	}
	db.normalize()
	if err := db.Validate(); err != nil {
		return nil, err
	}
	return &db, nil
}

// Validate checks structural invariants. Keyword rules referencing an intent
// with no response templates are tolerated (the resolver falls back to
// "unknown"), but the "unknown" intent itself must exist.
func (db *Database) Validate() error {
	if len(db.Responses[IntentUnknown]) == 0 {
		return ErrNoUnknown
	}
	return nil
}

// Orphans returns intent names referenced by keyword rules that have no
// response templates. Useful for logging a warning at startup; the resolver
// handles them gracefully either way.
func (db *Database) Orphans() []string {
	seen := make(map[string]struct{}, len(db.Keywords))
	var out []string
	for _, kw := range db.Keywords {
		if _, ok := db.Responses[kw.Intent]; ok {
			continue
		}
		if _, dup := seen[kw.Intent]; dup {
			continue
		}
		seen[kw.Intent] = struct{}{}
		out = append(out, kw.Intent)
	}
	return out
}

// Templates returns the response templates for intent, falling back to the
// catch-all set when the intent is absent or empty.
func (db *Database) Templates(intent string) []string {
	if ts := db.Responses[intent]; len(ts) > 0 {
		return ts
	}
	return db.Responses[IntentUnknown]
}

func (db *Database) normalize() {
	for i, t := range db.VulgarTerms {
		db.VulgarTerms[i] = textnorm.Fold(t)
	}
	for i := range db.Glossary {
		db.Glossary[i].Term = textnorm.Fold(db.Glossary[i].Term)
	}
	for i := range db.Keywords {
		db.Keywords[i].Match = textnorm.Fold(strings.TrimSpace(db.Keywords[i].Match))
	}
}
