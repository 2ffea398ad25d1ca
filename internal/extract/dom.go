package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/loosehose/sunvoy/internal/types"
)

// DOM extracts fields from a parsed document. A labelled field takes the value
// attribute of the first element that follows the label text in document
// order, which matches how the settings form pairs labels with inputs.
type DOM struct{}

// NewDOM returns the goquery-backed parser.
func NewDOM() *DOM {
	return &DOM{}
}

// Nonce returns the value of input[name=nonce], or "".
func (d *DOM) Nonce(page string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}
	return doc.Find(`input[name="nonce"]`).AttrOr("value", "")
}

// Profile fills what it can find and keeps placeholders for the rest.
func (d *DOM) Profile(page string) types.Profile {
	p := defaultProfile()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return p
	}
	nodes := flatten(doc.Nodes)

	if id, ok := firstUUIDValue(nodes); ok {
		p.ID = id
	}
	if v, ok := valueAfterLabel(nodes, labelFirstName); ok {
		p.FirstName = v
	}
	if v, ok := valueAfterLabel(nodes, labelLastName); ok {
		p.LastName = v
	}
	if v, ok := valueAfterLabel(nodes, labelEmail); ok {
		p.Email = v
	}
	return p
}

// flatten lists every node under roots in document order.
func flatten(roots []*html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		out = append(out, n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

func valueAttr(n *html.Node) (string, bool) {
	if n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == "value" {
			return a.Val, true
		}
	}
	return "", false
}

func firstUUIDValue(nodes []*html.Node) (string, bool) {
	for _, n := range nodes {
		v, ok := valueAttr(n)
		if !ok || len(v) != 36 || v != strings.ToLower(v) {
			continue
		}
		if _, err := uuid.Parse(v); err == nil {
			return v, true
		}
	}
	return "", false
}

func valueAfterLabel(nodes []*html.Node, label string) (string, bool) {
	for i, n := range nodes {
		if n.Type != html.TextNode || !strings.Contains(n.Data, label) {
			continue
		}
		for _, next := range nodes[i+1:] {
			if v, ok := valueAttr(next); ok {
				return v, true
			}
		}
		return "", false
	}
	return "", false
}
