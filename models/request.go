package models

// PageType selects both the request payload and the rendering branch.
type PageType string

const (
	PageTypeArticle PageType = "article"
	PageTypeProduct PageType = "product"
	PageTypeListing PageType = "listing"
)

// PageTypes lists the page types the UI offers, in display order.
var PageTypes = []PageType{PageTypeArticle, PageTypeProduct, PageTypeListing}

// Known reports whether t is one of the offered page types.
func (t PageType) Known() bool {
	switch t {
	case PageTypeArticle, PageTypeProduct, PageTypeListing:
		return true
	}
	return false
}

// ScrapeRequest is the body POSTed to the scraping service.
// It is built fresh for every submission and never retained.
type ScrapeRequest struct {
	Type PageType `json:"type"`
	URL  string   `json:"url"`
}

// SelectRequest is the payload for POST /api/v1/select.
type SelectRequest struct {
	Type string `json:"type" form:"type"`
}

// SubmitRequest is the payload for POST /api/v1/scrape.
type SubmitRequest struct {
	URL string `json:"url" form:"url"`
}
