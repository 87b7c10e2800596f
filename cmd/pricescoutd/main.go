// Command pricescoutd serves the scrape API over HTTP. Every POST
// /api/v1/scrape runs one scrape synchronously, so it is a batch-job front
// rather than a low-latency service.
package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/mkadhem/pricescout/internal/app"
	"github.com/mkadhem/pricescout/internal/browser"
	"github.com/mkadhem/pricescout/internal/logging"
	"github.com/mkadhem/pricescout/internal/scraper"
	"github.com/mkadhem/pricescout/internal/server"
	"github.com/mkadhem/pricescout/internal/storage"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", ":8080", "HTTP listen address")
	showBrowser := flag.Bool("show-browser", false, "run the browser with a visible window")
	flag.Parse()

	logger := logging.NewStdoutLogger("pricescoutd")

	browser.RegisterDefaultBackends()
	scraper.RegisterDefaultRetailers()
	storage.RegisterDefaultBackends()

	cfg := app.DefaultConfig()
	cfg.Browser.ShowBrowser = *showBrowser

	orch := app.NewOrchestrator(cfg, logger)
	srv := server.NewServer(server.Config{ListenAddr: *addr}, orch, logger)

	logger.Info("listening", logging.Field{Key: "addr", Value: *addr})
	if err := srv.HTTPServer().ListenAndServe(); err != nil {
		logger.Error("server exited", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
}
