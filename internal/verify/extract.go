// Package verify checks a generated HTML document against the build output:
// every local <script src> and <link href> must name a file that exists.
package verify

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/htmlres/internal/foundation/errors"
)

// Ref is one asset reference found in a document.
type Ref struct {
	URL       string
	Tag       string // script or link
	Attribute string // src or href
	Rel       string // link rel, empty for scripts
}

// ExtractRefs returns the script and link references of an HTML document in
// document order.
func ExtractRefs(r io.Reader) ([]Ref, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}

	var refs []Ref
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script":
				if src := getAttr(n, "src"); src != "" {
					refs = append(refs, Ref{URL: src, Tag: "script", Attribute: "src"})
				}
			case "link":
				if href := getAttr(n, "href"); href != "" {
					refs = append(refs, Ref{URL: href, Tag: "link", Attribute: "href", Rel: strings.ToLower(getAttr(n, "rel"))})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs, nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// isExternal reports refs that point off the build output.
func isExternal(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "//") ||
		strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:")
}
