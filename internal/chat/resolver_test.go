package chat

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/domindev/site-backend/internal/botdb"
)

func fixtureDB(t *testing.T) *botdb.Database {
	t.Helper()
	const doc = `{
	  "vulgar_terms": ["cholera"],
	  "glossary": [
	    {"term": "seo", "definition": "SEO to optymalizacja widoczności strony w wyszukiwarkach."},
	    {"term": "landing page", "definition": "Landing page to pojedyncza strona nastawiona na konwersję."}
	  ],
	  "keywords": [
	    {"match": "landing page", "intent": "pricing"},
	    {"match": "kosztuje", "intent": "pricing"},
	    {"match": "cena", "intent": "pricing"},
	    {"match": "kontakt", "intent": "contact"},
	    {"match": "strona internetowa", "intent": "services"}
	  ],
	  "responses": {
	    "pricing": ["Wycena zależy od zakresu.", "Ceny zaczynają się od 3000 PLN."],
	    "contact": ["Napisz przez formularz kontaktowy."],
	    "vulgar": ["Trzymajmy profesjonalny ton."],
	    "unknown": ["Nie rozumiem, spróbuj inaczej.", "Możesz zapytać o ceny lub usługi."]
	  }
	}`
	db, err := botdb.Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return db
}

func newResolver(t *testing.T) *Resolver {
	return &Resolver{DB: fixtureDB(t), Rand: rand.New(rand.NewSource(1))}
}

func TestResolveNilDB(t *testing.T) {
	r := &Resolver{}
	intent, reply := r.Resolve("czesc")
	if intent != IntentOffline || reply == "" {
		t.Fatalf("nil DB: got (%q, %q), want offline with fixed reply", intent, reply)
	}
}

func TestResolveEmpty(t *testing.T) {
	r := newResolver(t)
	for _, in := range []string{"", "   ", "\t\n"} {
		if intent, _ := r.Resolve(in); intent != IntentEmpty {
			t.Errorf("Resolve(%q) intent = %q, want %q", in, intent, IntentEmpty)
		}
	}
}

func TestResolveVulgarPrecedence(t *testing.T) {
	r := newResolver(t)
	// Contains both a vulgar term and a pricing keyword; vulgar must win.
	intent, reply := r.Resolve("cholera ile to kosztuje")
	if intent != botdb.IntentVulgar {
		t.Fatalf("intent = %q, want %q", intent, botdb.IntentVulgar)
	}
	if reply != "Trzymajmy profesjonalny ton." {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestResolveGlossaryBypassesTemplates(t *testing.T) {
	r := newResolver(t)
	// "seo" is both a glossary term and could be a keyword; the glossary
	// definition must be returned verbatim.
	_, reply := r.Resolve("Co to jest SEO?")
	if reply != "SEO to optymalizacja widoczności strony w wyszukiwarkach." {
		t.Fatalf("glossary definition not returned: %q", reply)
	}
}

func TestResolveGlossaryBeatsKeyword(t *testing.T) {
	r := newResolver(t)
	// "landing page" appears in both the glossary and the keyword table;
	// the glossary stage runs first.
	_, reply := r.Resolve("czym jest landing page")
	if reply != "Landing page to pojedyncza strona nastawiona na konwersję." {
		t.Fatalf("expected glossary definition, got %q", reply)
	}
}

func TestResolvePhraseStage(t *testing.T) {
	r := newResolver(t)
	intent, _ := r.Resolve("potrzebuję strona internetowa dla firmy")
	if intent != "services" {
		t.Fatalf("intent = %q, want services (multi-word phrase stage)", intent)
	}
}

func TestResolveSingleWordStage(t *testing.T) {
	r := newResolver(t)
	intent, _ := r.Resolve("Ile to kosztuje?")
	if intent != "pricing" {
		t.Fatalf("intent = %q, want pricing", intent)
	}
}

func TestResolveDiacriticInsensitive(t *testing.T) {
	r := newResolver(t)
	// "kosztuje" typed with a stray accent still matches after folding.
	intent, _ := r.Resolve("ile kosztujé")
	if intent != "pricing" {
		t.Fatalf("intent = %q, want pricing", intent)
	}
}

func TestResolveWordBoundaries(t *testing.T) {
	r := newResolver(t)
	// "cennik" contains "cena"? It does not; but "wycena" contains "cena" as
	// a substring and must NOT match the single-word rule.
	intent, _ := r.Resolve("wycena proszę")
	if intent == "pricing" {
		t.Fatalf("single-word rules must match whole words only")
	}
}

func TestResolveUnknown(t *testing.T) {
	r := newResolver(t)
	unknown := map[string]bool{
		"Nie rozumiem, spróbuj inaczej.":    true,
		"Możesz zapytać o ceny lub usługi.": true,
	}
	for i := 0; i < 20; i++ {
		intent, reply := r.Resolve("xyzzy plugh")
		if intent != botdb.IntentUnknown {
			t.Fatalf("intent = %q, want unknown", intent)
		}
		if !unknown[reply] {
			t.Fatalf("reply %q not from the unknown template set", reply)
		}
	}
}

func TestResolveOrphanIntentFallsBack(t *testing.T) {
	db := fixtureDB(t)
	db.Keywords = append(db.Keywords, botdb.KeywordRule{Match: "hosting", Intent: "hosting"})
	r := &Resolver{DB: db, Rand: rand.New(rand.NewSource(1))}

	intent, reply := r.Resolve("hosting")
	if intent != "hosting" {
		t.Fatalf("intent = %q, want hosting", intent)
	}
	found := false
	for _, tpl := range db.Responses[botdb.IntentUnknown] {
		if tpl == reply {
			found = true
		}
	}
	if !found {
		t.Fatalf("orphan intent must fall back to unknown templates, got %q", reply)
	}
}

func TestResolveDocumentOrderTies(t *testing.T) {
	const doc = `{
	  "vulgar_terms": [],
	  "glossary": [],
	  "keywords": [
	    {"match": "oferta", "intent": "first"},
	    {"match": "oferta", "intent": "second"}
	  ],
	  "responses": {
	    "first": ["pierwsza"],
	    "second": ["druga"],
	    "unknown": ["?"]
	  }
	}`
	db, err := botdb.Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	r := &Resolver{DB: db}
	if intent, _ := r.Resolve("oferta"); intent != "first" {
		t.Fatalf("tie must resolve to first-defined rule, got %q", intent)
	}
}
