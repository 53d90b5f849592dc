package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/scrapedesk/controller"
	"github.com/use-agent/scrapedesk/models"
	"github.com/use-agent/scrapedesk/page"
	"github.com/use-agent/scrapedesk/render"
)

// desk is the single page driven by the MCP client.
type desk struct {
	ctrl *controller.Controller
	sel  *controller.Selection
	doc  *page.Document
}

func newDesk(ctrl *controller.Controller) *desk {
	return &desk{
		ctrl: ctrl,
		sel:  &controller.Selection{},
		doc:  page.NewScrapePage(),
	}
}

func registerTools(s *server.MCPServer, d *desk) {
	types := make([]string, 0, len(models.PageTypes))
	for _, pt := range models.PageTypes {
		types = append(types, string(pt))
	}

	selectTool := mcp.NewTool("select_page_type",
		mcp.WithDescription("Choose how the next scraped page is interpreted: article (title and body), product (title, price, description) or listing (a list of items)."),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Page type"),
			mcp.Enum(types...),
		),
	)
	s.AddTool(selectTool, d.handleSelect)

	scrapeTool := mcp.NewTool("start_scraping",
		mcp.WithDescription("Send a URL to the scraping service using the selected page type and return the rendered result."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to scrape"),
		),
	)
	s.AddTool(scrapeTool, d.handleScrape)
}

func (d *desk) handleSelect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageType, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type is required"), nil
	}

	d.ctrl.SelectPageType(d.sel, d.doc, pageType)
	return mcp.NewToolResultText(d.doc.Text(page.IDSelectedType)), nil
}

func (d *desk) handleScrape(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// A missing url is left to the controller so the user sees the same
	// message as in the browser.
	d.doc.SetValue(page.IDURLInput, request.GetString("url", ""))

	outcome := d.ctrl.StartScraping(ctx, d.sel, d.doc)
	v := d.doc.Snapshot()

	switch outcome {
	case controller.OutcomeMissingType, controller.OutcomeMissingURL:
		return mcp.NewToolResultError(strings.Join(v.Alerts, "\n")), nil
	case controller.OutcomeTransportError:
		msg := strings.Join(v.ConsoleErrors, "\n")
		if msg == "" {
			msg = controller.AlertCheckConsole
		}
		return mcp.NewToolResultError("scrape failed: " + msg), nil
	case controller.OutcomeServiceError, controller.OutcomeUnknownType:
		return mcp.NewToolResultError(v.Content), nil
	}

	body := v.Content
	if v.ContentHTML != "" {
		md, err := render.ToMarkdown(v.ContentHTML)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to convert result: %v", err)), nil
		}
		body = md
	}
	return mcp.NewToolResultText(fmt.Sprintf("Title: %s\n\n%s", v.Title, body)), nil
}
