// Package page models the UI surface the page controller drives: a set of
// optional element handles, blocking alerts and a diagnostic console.
package page

import (
	"sync"

	"github.com/use-agent/scrapedesk/models"
)

// Element ids of the scraping page.
const (
	IDSelectedType = "selectedType"
	IDURLInput     = "urlInput"
	IDResult       = "result"
	IDTitle        = "articleTitle"
	IDContent      = "articleContent"
)

// Element is a handle to one element of the page.
type Element interface {
	SetText(text string)
	SetHTML(markup string)
	Show()
}

// Surface is the UI boundary seen by the controller.
type Surface interface {
	// Element returns the element with the given id, or nil if the page
	// does not have one.
	Element(id string) Element

	// Value returns the current value of an input element ("" if absent).
	Value(id string) string

	// Alert raises a blocking, user-facing message.
	Alert(msg string)

	// ConsoleError records a diagnostic for the developer console.
	ConsoleError(err error)
}

// SetText writes text to el. A nil element is ignored.
func SetText(el Element, text string) {
	if el != nil {
		el.SetText(text)
	}
}

// SetHTML writes markup to el. A nil element is ignored.
func SetHTML(el Element, markup string) {
	if el != nil {
		el.SetHTML(markup)
	}
}

// Show makes el visible. A nil element is ignored.
func Show(el Element) {
	if el != nil {
		el.Show()
	}
}

// Document is an in-memory Surface. It is safe for concurrent use.
type Document struct {
	mu       sync.Mutex
	elements map[string]*node
	alerts   []string
	console  []string
}

type node struct {
	doc     *Document
	text    string
	html    string
	value   string
	visible bool
}

// NewDocument returns a document holding exactly the given element ids.
// All elements start visible except IDResult, which starts hidden.
func NewDocument(ids ...string) *Document {
	d := &Document{elements: make(map[string]*node, len(ids))}
	for _, id := range ids {
		d.elements[id] = &node{doc: d, visible: id != IDResult}
	}
	return d
}

// NewScrapePage returns a document with every element of the scraping page.
func NewScrapePage() *Document {
	return NewDocument(IDSelectedType, IDURLInput, IDResult, IDTitle, IDContent)
}

// Element implements Surface.
func (d *Document) Element(id string) Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.elements[id]
	if !ok {
		return nil
	}
	return n
}

// Value implements Surface.
func (d *Document) Value(id string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n, ok := d.elements[id]; ok {
		return n.value
	}
	return ""
}

// SetValue sets the value of an input element, as a user typing would.
// Unknown ids are ignored.
func (d *Document) SetValue(id, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n, ok := d.elements[id]; ok {
		n.value = value
	}
}

// Alert implements Surface.
func (d *Document) Alert(msg string) {
	d.mu.Lock()
	d.alerts = append(d.alerts, msg)
	d.mu.Unlock()
}

// ConsoleError implements Surface.
func (d *Document) ConsoleError(err error) {
	if err == nil {
		return
	}
	d.mu.Lock()
	d.console = append(d.console, err.Error())
	d.mu.Unlock()
}

// Text returns the text of an element.
func (d *Document) Text(id string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n, ok := d.elements[id]; ok {
		return n.text
	}
	return ""
}

// HTML returns the markup of an element; empty unless SetHTML was the last write.
func (d *Document) HTML(id string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n, ok := d.elements[id]; ok {
		return n.html
	}
	return ""
}

// Visible reports whether an element is shown.
func (d *Document) Visible(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n, ok := d.elements[id]; ok {
		return n.visible
	}
	return false
}

// Alerts returns the alerts raised so far without clearing them.
func (d *Document) Alerts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.alerts...)
}

// Snapshot returns the current view state. Pending alerts and console
// entries are moved into the snapshot and cleared from the document.
func (d *Document) Snapshot() models.ViewState {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := models.ViewState{
		Alerts:        d.alerts,
		ConsoleErrors: d.console,
	}
	d.alerts = nil
	d.console = nil

	if n, ok := d.elements[IDSelectedType]; ok {
		v.Status = n.text
	}
	if n, ok := d.elements[IDURLInput]; ok {
		v.URL = n.value
	}
	if n, ok := d.elements[IDResult]; ok {
		v.ResultVisible = n.visible
	}
	if n, ok := d.elements[IDTitle]; ok {
		v.Title = n.text
	}
	if n, ok := d.elements[IDContent]; ok {
		v.Content = n.text
		v.ContentHTML = n.html
	}
	return v
}

func (n *node) SetText(text string) {
	n.doc.mu.Lock()
	n.text = text
	n.html = ""
	n.doc.mu.Unlock()
}

func (n *node) SetHTML(markup string) {
	n.doc.mu.Lock()
	n.html = markup
	n.text = ""
	n.doc.mu.Unlock()
}

func (n *node) Show() {
	n.doc.mu.Lock()
	n.visible = true
	n.doc.mu.Unlock()
}
