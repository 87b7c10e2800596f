// Command pricescout scrapes one retailer page for product prices and writes
// the results to every configured storage target. One process invocation is
// one scrape; retries belong to the external job scheduler.
//
// Usage:
//
//	pricescout -retailer AMZ -url https://... -brand acme \
//	    -category "Electronics/Computers&Accessories/Laptops" \
//	    -storage-config '{"storage_type":"S3","storage_options":{"bucket":"prices"}}' \
//	    -storage-config '{"storage_type":"POSTGRES","storage_options":{"database":"prices"}}'
//
// Exit codes: 0 success, 1 validation error, 2 scrape or storage failure.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/mkadhem/pricescout/internal/app"
	"github.com/mkadhem/pricescout/internal/browser"
	"github.com/mkadhem/pricescout/internal/logging"
	"github.com/mkadhem/pricescout/internal/model"
	"github.com/mkadhem/pricescout/internal/scraper"
	"github.com/mkadhem/pricescout/internal/storage"
)

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint(*s) }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	// Local convenience; credentials normally come from the job environment.
	_ = godotenv.Load()

	var (
		retailer       = flag.String("retailer", "", "retailer enum (AMZ, BBY)")
		url            = flag.String("url", "", "URL of the page to scrape; must be scoped to one brand and category")
		brand          = flag.String("brand", "", "brand the page is for")
		category       = flag.String("category", "", "category drill-down, nested segments separated by '/'")
		proxyConfig    = flag.String("proxy-config", "", "optional browser proxy configuration as a JSON object")
		timeout        = flag.Int("timeout", 30, "page load timeout in seconds")
		maxPagination  = flag.Int("max-pagination", 20, "maximum result pages to load")
		showBrowser    = flag.Bool("show-browser", false, "run the browser with a visible window")
		storageConfigs stringList
	)
	flag.Var(&storageConfigs, "storage-config",
		`storage target as JSON, e.g. '{"storage_type":"S3","storage_options":{"bucket":"b"}}'; repeatable`)
	flag.Parse()

	logger := logging.NewStdoutLogger("pricescout")

	browser.RegisterDefaultBackends()
	scraper.RegisterDefaultRetailers()
	storage.RegisterDefaultBackends()

	targets := make([]model.StorageTarget, 0, len(storageConfigs))
	for _, raw := range storageConfigs {
		var t model.StorageTarget
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			logger.Error("invalid -storage-config JSON",
				logging.Field{Key: "value", Value: raw},
				logging.Field{Key: "error", Value: err.Error()})
			os.Exit(1)
		}
		targets = append(targets, t)
	}

	var proxy map[string]string
	if *proxyConfig != "" {
		if err := json.Unmarshal([]byte(*proxyConfig), &proxy); err != nil {
			logger.Error("invalid -proxy-config JSON",
				logging.Field{Key: "error", Value: err.Error()})
			os.Exit(1)
		}
	}

	req, err := model.NewScrapeRequest(model.RequestParams{
		Retailer:       *retailer,
		URL:            *url,
		Brand:          *brand,
		Category:       *category,
		Targets:        targets,
		ProxyOptions:   proxy,
		TimeoutSeconds: *timeout,
		MaxPagination:  *maxPagination,
	})
	if err != nil {
		logger.Error("invalid request", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	cfg := app.DefaultConfig()
	cfg.Browser.ShowBrowser = *showBrowser

	orch := app.NewOrchestrator(cfg, logger)
	report, err := orch.Run(context.Background(), req)
	if err != nil {
		fields := []logging.Field{{Key: "error", Value: err.Error()}}
		if report != nil {
			fields = append(fields, logging.Field{Key: "report", Value: report})
		}
		logger.Error("scrape run failed", fields...)
		if errors.Is(err, model.ErrUnknownRetailer) ||
			errors.Is(err, model.ErrUnknownStorageType) ||
			errors.Is(err, model.ErrInvalidRequest) ||
			errors.Is(err, storage.ErrInvalidConfig) {
			os.Exit(1)
		}
		os.Exit(2)
	}

	logger.Info("scrape run finished",
		logging.Field{Key: "records", Value: report.Records},
		logging.Field{Key: "targets", Value: len(report.Targets)})
}
