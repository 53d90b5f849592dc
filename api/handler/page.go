package handler

import (
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scrapedesk/api/middleware"
	"github.com/use-agent/scrapedesk/cache"
	"github.com/use-agent/scrapedesk/controller"
	"github.com/use-agent/scrapedesk/metrics"
	"github.com/use-agent/scrapedesk/models"
	"github.com/use-agent/scrapedesk/page"
)

// indexData feeds templates/index.html.
type indexData struct {
	View      models.ViewState
	PageTypes []models.PageType

	// ContentHTML is generated by the render package, which escapes every
	// value it emits.
	ContentHTML template.HTML
}

// Index returns a handler for GET /. It renders the caller's page and
// delivers any pending alerts and console entries.
func Index() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)
		c.HTML(http.StatusOK, "index.html", newIndexData(s))
	}
}

// SelectForm returns a handler for POST /select (form field "type").
func SelectForm(ctrl *controller.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)
		ctrl.SelectPageType(s.Selection, s.Document, c.PostForm("type"))
		c.Redirect(http.StatusSeeOther, "/")
	}
}

// ScrapeForm returns a handler for POST /scrape (form field "url").
// It redirects at once; the page keeps refreshing itself while the
// submission is pending, so the placeholder is shown until the reply lands.
func ScrapeForm(ctrl *controller.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)
		s.Document.SetValue(page.IDURLInput, c.PostForm("url"))

		ctx := c.Request.Context()
		s.Begin()
		go func() {
			defer s.End()
			submit(ctx, ctrl, s)
		}()

		c.Redirect(http.StatusSeeOther, "/")
	}
}

// submit runs one submission for s and keeps it marked pending meanwhile.
// The scrape is detached from the caller's context: leaving the page does
// not cancel a request in flight.
func submit(ctx context.Context, ctrl *controller.Controller, s *cache.Session) controller.Outcome {
	s.Begin()
	defer s.End()

	outcome := ctrl.StartScraping(context.WithoutCancel(ctx), s.Selection, s.Document)
	switch outcome {
	case controller.OutcomeMissingType, controller.OutcomeMissingURL:
		metrics.Reject(outcome)
	}
	return outcome
}

func newIndexData(s *cache.Session) indexData {
	v := snapshot(s)
	return indexData{
		View:        v,
		PageTypes:   models.PageTypes,
		ContentHTML: template.HTML(v.ContentHTML),
	}
}

func snapshot(s *cache.Session) models.ViewState {
	v := s.Document.Snapshot()
	v.SelectedType = string(s.Selection.Get())
	v.Pending = s.Pending()
	return v
}
