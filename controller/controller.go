// Package controller implements the page controller: picking a page type,
// submitting a URL to the scraping service and rendering what comes back.
package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/use-agent/scrapedesk/models"
	"github.com/use-agent/scrapedesk/page"
	"github.com/use-agent/scrapedesk/render"
)

// User-facing messages.
const (
	AlertSelectType   = "Please select a page type first"
	AlertEnterURL     = "Please enter a URL"
	AlertCheckConsole = "Check console (F12)"

	StatusPrefix = "Selected page type: "

	PlaceholderTitle   = "Loading..."
	PlaceholderContent = "Working..."

	TitleError   = "Error"
	TitleListing = "Listing results"
	NoTitle      = "No title"
	NoContent    = "No content"
	NoItems      = "No items found"
)

// Outcome is how a submission ended.
type Outcome string

const (
	OutcomeMissingType    Outcome = "missing_type"
	OutcomeMissingURL     Outcome = "missing_url"
	OutcomeRendered       Outcome = "rendered"
	OutcomeServiceError   Outcome = "service_error"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeUnknownType    Outcome = "unknown_type"
)

// Scraper is the remote scraping service.
type Scraper interface {
	Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResponse, error)
}

// Observer is told about every submission that reached the network.
type Observer func(pageType models.PageType, outcome Outcome, elapsed time.Duration)

// Selection holds the selected page type for one page. The zero value is an
// empty selection.
type Selection struct {
	mu       sync.RWMutex
	pageType models.PageType
}

// Set overwrites the selection.
func (s *Selection) Set(t models.PageType) {
	s.mu.Lock()
	s.pageType = t
	s.mu.Unlock()
}

// Get returns the current selection.
func (s *Selection) Get() models.PageType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pageType
}

// Controller wires page events to the scraping service.
type Controller struct {
	scraper  Scraper
	logger   *slog.Logger
	observer Observer
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for transport diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers a callback for completed submissions.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// New creates a Controller backed by sc.
func New(sc Scraper, opts ...Option) *Controller {
	c := &Controller{scraper: sc, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectPageType records the selected type and updates the status label if
// the page has one. The value is not validated.
func (c *Controller) SelectPageType(sel *Selection, s page.Surface, pageType string) {
	sel.Set(models.PageType(pageType))
	page.SetText(s.Element(page.IDSelectedType), StatusPrefix+pageType)
}

// StartScraping submits the URL input for the selected type and renders the
// reply. It blocks until the service answers or ctx is done.
//
// The type used for rendering is the one sent with the request; changing
// the selection while a request is in flight does not affect how its reply
// is rendered.
func (c *Controller) StartScraping(ctx context.Context, sel *Selection, s page.Surface) Outcome {
	pageType := sel.Get()
	url := s.Value(page.IDURLInput)

	if pageType == "" {
		s.Alert(AlertSelectType)
		return OutcomeMissingType
	}
	if url == "" {
		s.Alert(AlertEnterURL)
		return OutcomeMissingURL
	}

	page.Show(s.Element(page.IDResult))
	page.SetText(s.Element(page.IDTitle), PlaceholderTitle)
	page.SetText(s.Element(page.IDContent), PlaceholderContent)

	start := time.Now()
	resp, err := c.scraper.Scrape(ctx, &models.ScrapeRequest{Type: pageType, URL: url})

	var outcome Outcome
	if err != nil {
		c.logger.Error("scrape request failed",
			"type", pageType,
			"url", url,
			"error", err,
		)
		s.ConsoleError(err)
		s.Alert(AlertCheckConsole)
		outcome = OutcomeTransportError
	} else {
		outcome, err = Render(s, pageType, resp)
		if err != nil {
			c.logger.Error("render scrape result failed",
				"type", pageType,
				"url", url,
				"error", err,
			)
			s.ConsoleError(err)
			s.Alert(AlertCheckConsole)
			outcome = OutcomeTransportError
		}
	}

	if c.observer != nil {
		c.observer(pageType, outcome, time.Since(start))
	}
	return outcome
}

// Render writes resp into the title and content elements according to
// pageType. A service-reported error wins over every type branch.
func Render(s page.Surface, pageType models.PageType, resp *models.ScrapeResponse) (Outcome, error) {
	title := s.Element(page.IDTitle)
	content := s.Element(page.IDContent)

	if resp.Error.Truthy() {
		page.SetText(title, TitleError)
		page.SetText(content, resp.Error.String())
		return OutcomeServiceError, nil
	}

	switch pageType {
	case models.PageTypeArticle:
		page.SetText(title, resp.Title.Or(NoTitle))
		page.SetText(content, resp.Content.Or(NoContent))

	case models.PageTypeProduct:
		page.SetText(title, resp.Title.Or(NoTitle))
		page.SetText(content, "Price: "+resp.Price.String()+"\n\n"+resp.Description.String())

	case models.PageTypeListing:
		page.SetText(title, TitleListing)
		if len(resp.Items) == 0 {
			page.SetText(content, resp.Error.Or(NoItems))
			break
		}
		markup, err := render.ListingHTML(resp.Items)
		if err != nil {
			return "", err
		}
		page.SetHTML(content, markup)

	default:
		page.SetText(title, TitleError)
		page.SetText(content, "Unknown page type: "+string(pageType))
		return OutcomeUnknownType, nil
	}

	return OutcomeRendered, nil
}
