package crawler

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// QuerySelectorAll returns all element nodes under root matching selector,
// in document order. Supported syntax:
//   - tag: "h2"
//   - .class: ".result-box"
//   - #id: "#main"
//   - tag.class, tag#id: "div.result-box"
//   - tag[attr], tag[attr=val]: "a[href]"
//   - descendant combinator (space): "div.result-box h3.title01"
func QuerySelectorAll(root *html.Node, selector string) []*html.Node {
	parts := strings.Fields(selector)
	if root == nil || len(parts) == 0 {
		return nil
	}

	matches := matchDescendants(root, parseSimpleSelector(parts[0]))
	for _, part := range parts[1:] {
		sel := parseSimpleSelector(part)
		var next []*html.Node
		seen := make(map[*html.Node]bool)
		for _, parent := range matches {
			for _, n := range matchDescendants(parent, sel) {
				if !seen[n] {
					seen[n] = true
					next = append(next, n)
				}
			}
		}
		matches = next
	}
	return matches
}

// QuerySelector returns the first match of selector under root, or nil.
func QuerySelector(root *html.Node, selector string) *html.Node {
	if m := QuerySelectorAll(root, selector); len(m) > 0 {
		return m[0]
	}
	return nil
}

// FindNext returns the first element named tag that follows n in document
// order (its own descendants first), or nil.
func FindNext(n *html.Node, tag string) *html.Node {
	for cur := nextInDocument(n); cur != nil; cur = nextInDocument(cur) {
		if cur.Type == html.ElementNode && cur.Data == tag {
			return cur
		}
	}
	return nil
}

func nextInDocument(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.NextSibling != nil {
			return cur.NextSibling
		}
	}
	return nil
}

// Text returns the text content of n: every text node trimmed and
// concatenated, with remaining whitespace runs collapsed to one space.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(c.Data))
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// Attr returns the value of attribute key, or "".
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	return slices.ContainsFunc(n.Attr, func(a html.Attribute) bool { return a.Key == key })
}

type simpleSelector struct {
	tag     string
	id      string
	class   string
	attrKey string
	attrVal string
}

func parseSimpleSelector(sel string) simpleSelector {
	var s simpleSelector
	if idx := strings.IndexByte(sel, '['); idx >= 0 {
		attr := strings.TrimRight(sel[idx+1:], "]")
		sel = sel[:idx]
		if eq := strings.IndexByte(attr, '='); eq >= 0 {
			s.attrKey = attr[:eq]
			s.attrVal = strings.Trim(attr[eq+1:], `"'`)
		} else {
			s.attrKey = attr
		}
	}
	if idx := strings.IndexByte(sel, '#'); idx >= 0 {
		s.id = sel[idx+1:]
		sel = sel[:idx]
	}
	if idx := strings.IndexByte(sel, '.'); idx >= 0 {
		s.class = sel[idx+1:]
		sel = sel[:idx]
	}
	s.tag = strings.ToLower(sel)
	return s
}

// matchDescendants returns the nodes strictly below root that match s.
func matchDescendants(root *html.Node, s simpleSelector) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if s.matches(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

func (s simpleSelector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && n.Data != s.tag {
		return false
	}
	if s.id != "" && Attr(n, "id") != s.id {
		return false
	}
	if s.class != "" && !slices.Contains(strings.Fields(Attr(n, "class")), s.class) {
		return false
	}
	if s.attrKey != "" {
		if s.attrVal != "" {
			return Attr(n, s.attrKey) == s.attrVal
		}
		return hasAttr(n, s.attrKey)
	}
	return true
}
