// Package locate finds the content block to scan inside a parsed page.
package locate

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultMinTextLength is the minimum visible text length for a candidate root
const DefaultMinTextLength = 20

// OverlayID marks the engine's own UI container, which is never content
const OverlayID = "intercept-overlay-root"

// candidateClasses are class tokens that mark an answer/content container
var candidateClasses = map[string]bool{
	"answer":   true,
	"prose":    true,
	"Result":   true,
	"response": true,
}

// Root returns the current content root: the document-order-last candidate
// whose extracted text meets the minimum length, or nil when none qualifies.
// Candidates are recognized by class, data-testid or id markers; when no
// marked candidate qualifies, the last sufficiently large div is used.
func Root(doc *html.Node, minText int) *html.Node {
	if minText <= 0 {
		minText = DefaultMinTextLength
	}

	var last, lastDiv *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if skipSubtree(n) {
			return
		}
		if n.Type == html.ElementNode {
			if isCandidate(n) && len([]rune(Text(n))) > minText {
				last = n
			}
			if n.Data == "div" && len([]rune(Text(n))) > minText*2 {
				lastDiv = n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if last != nil {
		return last
	}
	return lastDiv
}

// Text extracts the visible text of a node: text leaves trimmed and joined
// with single spaces, skipping non-content subtrees. Matching downstream is
// whitespace-insensitive, so the exact joins do not matter.
func Text(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if skipSubtree(n) {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if buf.Len() > 0 {
					buf.WriteString(" ")
				}
				buf.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return buf.String()
}

// skipSubtree approximates in-browser visibility server-side: script-like
// elements, hidden nodes and the engine's own overlay never count as content.
func skipSubtree(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "script", "style", "noscript", "template", "iframe", "head":
		return true
	}
	for _, attr := range n.Attr {
		switch attr.Key {
		case "hidden":
			return true
		case "id":
			if attr.Val == OverlayID {
				return true
			}
		case "style":
			if strings.Contains(strings.ReplaceAll(attr.Val, " ", ""), "display:none") {
				return true
			}
		}
	}
	return false
}

func isCandidate(n *html.Node) bool {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "class":
			for _, token := range strings.Fields(attr.Val) {
				if candidateClasses[token] {
					return true
				}
			}
		case "data-testid":
			if attr.Val == "answer" {
				return true
			}
		case "id":
			if attr.Val == "main" {
				return true
			}
		}
	}
	return false
}
