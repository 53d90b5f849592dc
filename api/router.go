package api

import (
	"context"
	"embed"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/use-agent/scrapedesk/api/handler"
	"github.com/use-agent/scrapedesk/api/middleware"
	"github.com/use-agent/scrapedesk/cache"
	"github.com/use-agent/scrapedesk/config"
	"github.com/use-agent/scrapedesk/controller"
)

//go:embed templates/*.html
var templates embed.FS

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	Page:    Session
//	Submit:  Session → RateLimit
//
// Health and metrics are outside the session group so monitoring never
// creates sessions. Background work started for the router stops when ctx
// is done.
func NewRouter(ctx context.Context, ctrl *controller.Controller, sessions *cache.Cache, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.SetHTMLTemplate(template.Must(template.ParseFS(templates, "templates/*.html")))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/api/v1/health", handler.Health(sessions, cfg.Service.Endpoint, startTime))

	pages := r.Group("")
	pages.Use(middleware.Session(sessions, cfg.Session))

	limited := pages.Group("")
	limited.Use(middleware.RateLimit(ctx, cfg.RateLimit, cfg.Session.TTL))

	// Browser page
	pages.GET("/", handler.Index())
	pages.POST("/select", handler.SelectForm(ctrl))
	limited.POST("/scrape", handler.ScrapeForm(ctrl))

	// JSON
	pages.GET("/api/v1/view", handler.GetView())
	pages.POST("/api/v1/select", handler.PostSelect(ctrl))
	limited.POST("/api/v1/scrape", handler.PostScrape(ctrl))

	return r
}
