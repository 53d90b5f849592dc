// Package render turns scrape results into markup for the result panel.
package render

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/use-agent/scrapedesk/models"
)

const (
	cardStyle    = "display:flex;gap:12px;padding:10px 0;border-bottom:1px solid rgba(255,255,255,0.04);"
	thumbStyle   = "max-width:72px;max-height:72px;margin-right:8px;"
	priceStyle   = "font-weight:600;color:#00ffd5"
	snippetStyle = "color:#ddd;margin-top:6px"
)

// Class names carried by the generated markup.
const (
	ClassItem    = "listing-item"
	ClassThumb   = "listing-thumb"
	ClassTitle   = "listing-title"
	ClassPrice   = "listing-price"
	ClassSnippet = "listing-snippet"
)

// ListingHTML renders one card per item, in the order given. Values are
// escaped by the HTML renderer; URLs with a scheme other than http or https
// are never emitted as href or src.
func ListingHTML(items []models.ListingItem) (string, error) {
	var buf bytes.Buffer
	for _, it := range items {
		if err := html.Render(&buf, card(it)); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func card(it models.ListingItem) *html.Node {
	root := element(atom.Div, "class", ClassItem, "style", cardStyle)

	if src, ok := safeURL(it.Image.String()); ok {
		root.AppendChild(element(atom.Img, "class", ClassThumb, "src", src, "style", thumbStyle, "alt", ""))
	}

	body := element(atom.Div)
	root.AppendChild(body)

	title := element(atom.Div, "class", ClassTitle)
	if href, ok := safeURL(it.URL.String()); ok {
		link := element(atom.A, "href", href, "target", "_blank", "rel", "noopener")
		link.AppendChild(text(it.Title.String()))
		title.AppendChild(link)
	} else {
		title.AppendChild(text(it.Title.String()))
	}
	body.AppendChild(title)

	if it.Price.Truthy() {
		price := element(atom.Div, "class", ClassPrice, "style", priceStyle)
		price.AppendChild(text(it.Price.String()))
		body.AppendChild(price)
	}

	if it.Snippet.Truthy() {
		snippet := element(atom.Div, "class", ClassSnippet, "style", snippetStyle)
		snippet.AppendChild(text(it.Snippet.String()))
		body.AppendChild(snippet)
	}

	return root
}

// element builds a node from an atom and key/value attribute pairs.
func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// safeURL accepts http, https and scheme-less references.
func safeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return raw, true
	}
	return "", false
}
