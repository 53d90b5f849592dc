package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scrapedesk/api/middleware"
	"github.com/use-agent/scrapedesk/controller"
	"github.com/use-agent/scrapedesk/models"
	"github.com/use-agent/scrapedesk/page"
)

// GetView returns a handler for GET /api/v1/view.
func GetView() gin.HandlerFunc {
	return func(c *gin.Context) {
		v := snapshot(middleware.SessionFrom(c))
		c.JSON(http.StatusOK, models.ViewResponse{Success: true, View: &v})
	}
}

// PostSelect returns a handler for POST /api/v1/select.
func PostSelect(ctrl *controller.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SelectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		s := middleware.SessionFrom(c)
		ctrl.SelectPageType(s.Selection, s.Document, req.Type)

		v := snapshot(s)
		c.JSON(http.StatusOK, models.ViewResponse{Success: true, View: &v})
	}
}

// PostScrape returns a handler for POST /api/v1/scrape.
//
// The response is 200 whenever the submission ran, including when it was
// rejected by a precondition or the service failed; the outcome and the
// pending alerts say what happened.
func PostScrape(ctrl *controller.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		s := middleware.SessionFrom(c)
		s.Document.SetValue(page.IDURLInput, req.URL)
		outcome := submit(c.Request.Context(), ctrl, s)

		v := snapshot(s)
		c.JSON(http.StatusOK, models.ViewResponse{
			Success: outcome == controller.OutcomeRendered,
			Outcome: string(outcome),
			View:    &v,
		})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ViewResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeInvalidInput,
			Message: err.Error(),
		},
	})
}
