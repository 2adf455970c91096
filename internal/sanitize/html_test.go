package sanitize

import (
	"strings"
	"testing"
)

func TestHTMLKeepsAllowedSubset(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"plain text", "cześć", "cześć"},
		{"paragraph", "<p>oferta</p>", "<p>oferta</p>"},
		{"bold", "zakres: <b>pełny</b>", "zakres: <b>pełny</b>"},
		{"strong", "<strong>ważne</strong>", "<strong>ważne</strong>"},
		{"list", "<ul><li>a</li><li>b</li></ul>", "<ul><li>a</li><li>b</li></ul>"},
		{"break", "linia<br>druga", "linia<br>druga"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTML(tc.in); got != tc.want {
				t.Errorf("HTML(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestHTMLUnwrapsUnknownTags(t *testing.T) {
	got := HTML(`<div><span>tekst</span> w <em>środku</em></div>`)
	if got != "tekst w środku" {
		t.Fatalf("unknown tags should unwrap to their text content, got %q", got)
	}
}

func TestHTMLDropsDangerousTags(t *testing.T) {
	cases := []string{
		`<script>alert(1)</script>po`,
		`<style>body{}</style>po`,
		`<iframe src="https://evil.example"></iframe>po`,
	}
	for _, in := range cases {
		got := HTML(in)
		if got != "po" {
			t.Errorf("HTML(%q) = %q, want dangerous subtree dropped entirely", in, got)
		}
	}
}

func TestHTMLAnchorPolicy(t *testing.T) {
	cases := []struct {
		name, in string
		want     string
	}{
		{
			"external http link",
			`<a href="https://domindev.com/oferta">oferta</a>`,
			`<a href="https://domindev.com/oferta" target="_blank" rel="noopener noreferrer nofollow">oferta</a>`,
		},
		{
			"mailto",
			`<a href="mailto:contact@domindev.com">mail</a>`,
			`<a href="mailto:contact@domindev.com">mail</a>`,
		},
		{
			"fragment",
			`<a href="#kontakt">kontakt</a>`,
			`<a href="#kontakt">kontakt</a>`,
		},
		{
			"relative",
			`<a href="/cennik">cennik</a>`,
			`<a href="/cennik">cennik</a>`,
		},
		{
			"javascript scheme stripped",
			`<a href="javascript:alert(1)">x</a>`,
			`<a>x</a>`,
		},
		{
			"data scheme stripped",
			`<a href="data:text/html,x">x</a>`,
			`<a>x</a>`,
		},
		{
			"onclick dropped",
			`<a href="/ok" onclick="evil()">x</a>`,
			`<a href="/ok">x</a>`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTML(tc.in); got != tc.want {
				t.Errorf("HTML(%q)\n got %q\nwant %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestHTMLEscapesTextNodes(t *testing.T) {
	got := HTML(`<p>1 &lt; 2</p>`)
	if got != "<p>1 &lt; 2</p>" {
		t.Fatalf("text nodes must stay escaped, got %q", got)
	}
}

func TestEscapeText(t *testing.T) {
	got := EscapeText(`<img src=x onerror=alert(1)>`)
	if strings.Contains(got, "<") {
		t.Fatalf("EscapeText must not leave raw markup: %q", got)
	}
}
