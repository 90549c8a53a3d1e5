// Package richtext flattens the structured markup carried by imported text
// elements into plain text, and extracts a single whole-box style from
// inline style attributes. The flattening is lossy on purpose: per-run
// styling is not preserved, one style applies to the entire text box.
package richtext

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// policy keeps only the structural and styling markup the flattener and the
// style extractor understand. Everything else is stripped before parsing.
var policy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "div", "ul", "ol", "li", "span", "strong", "b", "em", "i", "u", "br", "font")
	p.AllowAttrs("style").Globally()
	p.AllowAttrs("color", "face").OnElements("font")
	return p
}()

// Flatten converts markup into a plain-text representation: paragraphs
// become newline-terminated blocks, unordered list items get a "· " prefix,
// ordered items an "N. " prefix. Input that is not markup passes through
// unchanged. Lines reports the number of text lines for height computation
// (at least 1 for non-empty input).
func Flatten(content string) (text string, lines int) {
	if !strings.Contains(content, "<") {
		content = strings.TrimSpace(content)
		if content == "" {
			return "", 0
		}
		n := strings.Count(content, "\n") + 1
		return content, n
	}

	sanitized := policy.Sanitize(content)
	nodes, err := html.ParseFragment(strings.NewReader(sanitized), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		// Markup too broken to parse: fall back to the sanitized text.
		plain := strings.TrimSpace(sanitized)
		if plain == "" {
			return "", 0
		}
		return plain, strings.Count(plain, "\n") + 1
	}

	var b strings.Builder
	for _, n := range nodes {
		flattenNode(n, &b)
	}
	text = strings.TrimRight(b.String(), "\n")
	if text == "" {
		return "", 0
	}
	return text, strings.Count(text, "\n") + 1
}

func flattenNode(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Ul:
			for li := n.FirstChild; li != nil; li = li.NextSibling {
				if li.Type == html.ElementNode && li.DataAtom == atom.Li {
					b.WriteString("· ")
					b.WriteString(inlineText(li))
					b.WriteByte('\n')
				}
			}
			return
		case atom.Ol:
			i := 0
			for li := n.FirstChild; li != nil; li = li.NextSibling {
				if li.Type == html.ElementNode && li.DataAtom == atom.Li {
					i++
					fmt.Fprintf(b, "%d. %s\n", i, inlineText(li))
				}
			}
			return
		case atom.P, atom.Div:
			b.WriteString(inlineText(n))
			b.WriteByte('\n')
			return
		case atom.Br:
			b.WriteByte('\n')
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flattenNode(c, b)
	}
}

// inlineText collects the text content of a node, discarding nested tag
// structure. A <br> inside a paragraph still breaks the line.
func inlineText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Br {
			b.WriteByte('\n')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
