// Package sanitize renders untrusted-ish HTML down to a small allow-listed
// subset. Bot response templates are authored by the site owner and may use
// basic formatting (paragraphs, lists, bold, line breaks, anchors); anything
// else is stripped. The policy is data, not control flow: each element maps
// to a verdict, and the transformer walks the parsed tree applying it.
//
// User-submitted text must never be passed through this package as markup;
// callers insert it as literal text (see EscapeText).
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Verdict is the policy outcome for an element.
type Verdict int

const (
	// Drop removes the element and its entire subtree.
	Drop Verdict = iota
	// Unwrap removes the element but keeps its children, so text content
	// survives inside unexpected markup.
	Unwrap
	// Keep retains the element with filtered attributes.
	Keep
)

// policy maps element atoms to verdicts. Elements not present default to
// Unwrap; the listed Drop entries are containers whose text content is never
// meaningful to show.
var policy = map[atom.Atom]Verdict{
	atom.P:      Keep,
	atom.Ul:     Keep,
	atom.Ol:     Keep,
	atom.Li:     Keep,
	atom.B:      Keep,
	atom.Strong: Keep,
	atom.Br:     Keep,
	atom.A:      Keep,

	atom.Script:   Drop,
	atom.Style:    Drop,
	atom.Iframe:   Drop,
	atom.Object:   Drop,
	atom.Embed:    Drop,
	atom.Template: Drop,
}

// allowedHrefPrefixes are the only href shapes an anchor may carry.
var allowedHrefPrefixes = []string{"http", "mailto:", "#", "/"}

// HTML sanitizes a markup fragment to the allow-listed subset and returns the
// re-rendered result. Parsing failures yield the fully escaped input rather
// than an error, so the function is total.
func HTML(fragment string) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return html.EscapeString(fragment)
	}

	var b strings.Builder
	for _, n := range nodes {
		renderNode(&b, n)
	}
	return b.String()
}

// EscapeText renders user input as literal text. The asymmetry with HTML is
// deliberate: user input is adversarial, bot templates are trusted static
// content.
func EscapeText(s string) string {
	return html.EscapeString(s)
}

func renderNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(html.EscapeString(n.Data))
		return
	case html.ElementNode:
		// handled below
	default:
		// Comments, doctypes, etc. contribute nothing.
		return
	}

	verdict, ok := policy[n.DataAtom]
	if !ok {
		verdict = Unwrap
	}

	switch verdict {
	case Drop:
		return
	case Unwrap:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			renderNode(b, c)
		}
		return
	}

	tag := n.DataAtom.String()
	b.WriteByte('<')
	b.WriteString(tag)
	writeAttrs(b, n)
	b.WriteByte('>')

	if n.DataAtom == atom.Br {
		return // void element
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(b, c)
	}
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
}

// writeAttrs emits the filtered attribute list for a kept element. Only
// anchors carry attributes at all: a validated href, plus the opener and
// referrer protections for external links.
func writeAttrs(b *strings.Builder, n *html.Node) {
	if n.DataAtom != atom.A {
		return
	}
	href := ""
	for _, a := range n.Attr {
		if a.Key == "href" && a.Namespace == "" {
			href = strings.TrimSpace(a.Val)
			break
		}
	}
	if href == "" || !allowedHref(href) {
		return
	}
	b.WriteString(` href="`)
	b.WriteString(html.EscapeString(href))
	b.WriteByte('"')
	if strings.HasPrefix(href, "http") {
		b.WriteString(` target="_blank" rel="noopener noreferrer nofollow"`)
	}
}

func allowedHref(href string) bool {
	lower := strings.ToLower(href)
	for _, p := range allowedHrefPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
