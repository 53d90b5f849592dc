package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/scrapedesk/client"
	"github.com/use-agent/scrapedesk/config"
	"github.com/use-agent/scrapedesk/controller"
	"github.com/use-agent/scrapedesk/logging"
)

func main() {
	cfg := config.Load()

	// stdout carries the MCP protocol; logs go to stderr.
	logger := logging.New(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	sc := client.New(cfg.Service.Endpoint, cfg.Service.Timeout)
	ctrl := controller.New(sc, controller.WithLogger(logger))

	s := server.NewMCPServer(
		"scrapedesk",
		"0.1.0",
		server.WithToolCapabilities(false),
	)
	registerTools(s, newDesk(ctrl))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
