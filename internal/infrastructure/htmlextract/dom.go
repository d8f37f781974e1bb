package htmlextract

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Marker identifies elements by class and, optionally, by tag name.
// It covers the selector forms ".class" and "tag.class".
type Marker struct {
	Tag   string
	Class string
}

// Matches reports whether n is an element carrying the marker.
func (m Marker) Matches(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if m.Tag != "" && !strings.EqualFold(n.Data, m.Tag) {
		return false
	}
	return hasClass(n, m.Class)
}

func (m Marker) String() string {
	return m.Tag + "." + m.Class
}

func hasClass(n *html.Node, class string) bool {
	value, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, field := range strings.Fields(value) {
		if field == class {
			return true
		}
	}
	return false
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Namespace == "" && strings.EqualFold(attr.Key, name) {
			return attr.Val, true
		}
	}
	return "", false
}

// WalkByMarker visits root and its descendants in document order and calls
// visit for every node carrying marker. Returning false from visit stops the walk.
func WalkByMarker(root *html.Node, marker Marker, visit func(*html.Node) bool) {
	walk(root, marker, visit)
}

func walk(n *html.Node, marker Marker, visit func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if marker.Matches(n) && !visit(n) {
		return false
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if !walk(child, marker, visit) {
			return false
		}
	}
	return true
}

// FindAllByMarker returns every node under root, root included, carrying marker.
func FindAllByMarker(root *html.Node, marker Marker) []*html.Node {
	var nodes []*html.Node
	WalkByMarker(root, marker, func(n *html.Node) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

// FindFirstByMarker returns the first descendant of node carrying marker, or nil.
func FindFirstByMarker(node *html.Node, marker Marker) *html.Node {
	if node == nil {
		return nil
	}
	var found *html.Node
	for child := node.FirstChild; child != nil && found == nil; child = child.NextSibling {
		WalkByMarker(child, marker, func(n *html.Node) bool {
			found = n
			return false
		})
	}
	return found
}

// TextOf concatenates the visible text under n and collapses whitespace runs
// into single spaces.
func TextOf(n *html.Node) string {
	var sb strings.Builder
	visibleText(n, func(text string) {
		sb.WriteString(text)
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

// JoinedTextOf trims every visible text fragment under n, drops empty ones and
// joins the rest with sep.
func JoinedTextOf(n *html.Node, sep string) string {
	var parts []string
	visibleText(n, func(text string) {
		if trimmed := strings.Join(strings.Fields(text), " "); trimmed != "" {
			parts = append(parts, trimmed)
		}
	})
	return strings.Join(parts, sep)
}

func visibleText(n *html.Node, emit func(string)) {
	if n == nil {
		return
	}
	switch n.Type {
	case html.TextNode:
		emit(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		visibleText(child, emit)
	}
}
