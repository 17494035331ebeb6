package locate

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/intercept/internal/model"
)

// skippedHosts are link targets that are never citation sources
var skippedHosts = []string{"perplexity.ai", "twitter.com", "facebook.com"}

// Sources harvests outbound citation links from the content root: http(s)
// anchors, deduplicated by URL, excluding social and self-referential hosts.
func Sources(root *html.Node) []model.Source {
	var sources []model.Source
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if skipSubtree(n) {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			if s, ok := sourceFromAnchor(n); ok && !seen[s.URL] {
				seen[s.URL] = true
				sources = append(sources, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return sources
}

func sourceFromAnchor(n *html.Node) (model.Source, bool) {
	var href, label string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "href":
			href = strings.TrimSpace(attr.Val)
		case "aria-label":
			label = strings.TrimSpace(attr.Val)
		}
	}

	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		return model.Source{}, false
	}
	for _, host := range skippedHosts {
		if strings.Contains(href, host) {
			return model.Source{}, false
		}
	}

	title := strings.TrimSpace(Text(n))
	if title == "" {
		title = label
	}
	if title == "" {
		title = "Source"
	}

	return model.Source{URL: href, Title: title}, true
}
