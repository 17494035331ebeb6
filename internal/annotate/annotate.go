// Package annotate rewrites a live content tree so that text runs matching
// verified claims are wrapped in annotation spans, leaving every other node
// and character untouched. The full cycle is clear-then-apply and converges:
// running it twice with the same inputs yields an identical tree.
package annotate

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ppiankov/intercept/internal/model"
	"github.com/ppiankov/intercept/internal/textutil"
)

// Annotation span classes. An annotation wraps the literal matched text in
// place; it never owns or copies surrounding content.
const (
	ClassCorrect   = "intercept-correct"
	ClassIncorrect = "intercept-incorrect"
)

// Data attributes carrying the verification detail for hover rendering
const (
	AttrCorrect    = "data-correct"
	AttrReason     = "data-reason"
	AttrCorrection = "data-correction"
	AttrSource     = "data-source"
)

const overlayID = "intercept-overlay-root"

// Clear unwraps every annotation span under root in place, restoring the
// surrounding text flow. It runs before every apply pass, including the
// first, so a partially annotated tree is always safe to re-scan.
func Clear(root *html.Node) {
	var spans []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if IsAnnotation(n) {
			spans = append(spans, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	for _, span := range spans {
		unwrap(span)
	}
	mergeTextSiblings(root)
}

// Apply wraps every live-text run matching a claim in an annotation span and
// returns the number of annotations tagged incorrect. results is keyed by
// normalized claim text; a claim with no result annotates as correct. Callers
// must Clear first; Apply skips anything still tagged as an annotation
// rather than nesting.
func Apply(root *html.Node, claims []model.Claim, results map[string]model.VerificationResult) int {
	matchers := compileMatchers(claims)
	if len(matchers) == 0 {
		return 0
	}

	incorrect := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if skipNode(n) || IsAnnotation(n) {
			return
		}

		// Snapshot children before rewriting: replacing a text leaf with
		// fragments must not invalidate the traversal.
		var children []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			children = append(children, c)
		}
		for _, c := range children {
			if c.Type == html.TextNode {
				incorrect += annotateLeaf(c, matchers, results)
			} else {
				walk(c)
			}
		}
	}
	walk(root)

	return incorrect
}

// IsAnnotation reports whether the node is one of our annotation spans
func IsAnnotation(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, token := range strings.Fields(attr.Val) {
				if token == ClassCorrect || token == ClassIncorrect {
					return true
				}
			}
		}
	}
	return false
}

type claimMatcher struct {
	claim model.Claim
	re    *regexp.Regexp
}

func compileMatchers(claims []model.Claim) []claimMatcher {
	matchers := make([]claimMatcher, 0, len(claims))
	for _, claim := range claims {
		re, err := textutil.Pattern(claim.Text)
		if err != nil || re == nil {
			continue
		}
		matchers = append(matchers, claimMatcher{claim: claim, re: re})
	}
	return matchers
}

// annotateLeaf rewrites one text leaf into a sequence of verbatim-text and
// annotation fragments. A cursor advances past each match, so matches can
// never overlap. Among claims matching the remaining text, the leftmost
// match wins; on a shared start position the first claim in list order wins.
func annotateLeaf(leaf *html.Node, matchers []claimMatcher, results map[string]model.VerificationResult) int {
	raw := leaf.Data
	if strings.TrimSpace(raw) == "" {
		return 0
	}

	parent := leaf.Parent
	if parent == nil {
		return 0
	}

	var frags []*html.Node
	incorrect := 0
	matched := false
	cursor := 0

	for cursor < len(raw) {
		best := -1
		bestStart, bestEnd := 0, 0
		for i, m := range matchers {
			loc := m.re.FindStringIndex(raw[cursor:])
			if loc == nil {
				continue
			}
			if start := cursor + loc[0]; best == -1 || start < bestStart {
				best = i
				bestStart = start
				bestEnd = cursor + loc[1]
			}
		}

		if best == -1 {
			frags = append(frags, textNode(raw[cursor:]))
			break
		}

		if bestStart > cursor {
			frags = append(frags, textNode(raw[cursor:bestStart]))
		}

		// Verification may silently omit a claim; annotate it as correct
		res, ok := results[textutil.Normalize(matchers[best].claim.Text)]
		if !ok {
			res = model.VerificationResult{Correct: true}
		}
		if !res.Correct {
			incorrect++
		}

		// Wrap the run as it literally appears, not the normalized claim
		frags = append(frags, newAnnotation(raw[bestStart:bestEnd], res))
		matched = true
		cursor = bestEnd
	}

	if !matched {
		return 0
	}

	for _, f := range frags {
		parent.InsertBefore(f, leaf)
	}
	parent.RemoveChild(leaf)

	return incorrect
}

func newAnnotation(text string, res model.VerificationResult) *html.Node {
	class := ClassCorrect
	correct := "true"
	title := "Verified correct."
	if !res.Correct {
		class = ClassIncorrect
		correct = "false"
		title = res.Reason
		if title == "" {
			title = "Potential inaccuracy"
		}
	}

	attrs := []html.Attribute{
		{Key: "class", Val: class},
		{Key: AttrCorrect, Val: correct},
		{Key: "title", Val: title},
	}
	if !res.Correct {
		attrs = append(attrs, html.Attribute{Key: AttrReason, Val: title})
		if res.Correction != "" {
			attrs = append(attrs, html.Attribute{Key: AttrCorrection, Val: res.Correction})
		}
		if res.Source != "" {
			attrs = append(attrs, html.Attribute{Key: AttrSource, Val: res.Source})
		}
	}

	span := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr:     attrs,
	}
	span.AppendChild(textNode(text))
	return span
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for n.FirstChild != nil {
		c := n.FirstChild
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

// mergeTextSiblings coalesces adjacent text leaves left behind by unwrapping,
// so repeated clear/apply cycles see the same leaf layout every time.
func mergeTextSiblings(n *html.Node) {
	c := n.FirstChild
	for c != nil {
		next := c.NextSibling
		if c.Type == html.TextNode && next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			n.RemoveChild(next)
			continue
		}
		if c.Type == html.ElementNode {
			mergeTextSiblings(c)
		}
		c = next
	}
}

func skipNode(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return n.Type != html.DocumentNode && n.Type != html.TextNode
	}
	switch n.Data {
	case "script", "style", "noscript", "template", "iframe":
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == "id" && attr.Val == overlayID {
			return true
		}
	}
	return false
}
