package markup

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

func ParseFragment(markup string) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(markup), bodyContext)
}

// Render serialises n back to markup. Rendering a parsed node cannot fail
// for an in-memory buffer, so errors collapse to an empty string.
func Render(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

func RenderAll(nodes []*html.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(Render(n))
	}
	return sb.String()
}

func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

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

func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func ElementChildren(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if tag == "" || c.Data == tag {
			out = append(out, c)
		}
	}
	return out
}

// FindAll returns, in document order, every element named tag within roots,
// the roots themselves included.
func FindAll(roots []*html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return out
}

func FindFirst(roots []*html.Node, tag string) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == tag {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range roots {
		walk(root)
		if found != nil {
			break
		}
	}
	return found
}

func findBody(doc *html.Node) *html.Node {
	return FindFirst([]*html.Node{doc}, "body")
}

func significantChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.CommentNode:
			continue
		case html.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// RenderPruned renders n without the descendants for which prune reports
// true. n itself is never pruned and the tree is left untouched.
func RenderPruned(n *html.Node, prune func(*html.Node) bool) string {
	return Render(clonePruned(n, prune))
}

func clonePruned(n *html.Node, prune func(*html.Node) bool) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if prune(ch) {
			continue
		}
		c.AppendChild(clonePruned(ch, prune))
	}
	return c
}
