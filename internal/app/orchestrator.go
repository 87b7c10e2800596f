package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkadhem/pricescout/internal/browser"
	"github.com/mkadhem/pricescout/internal/logging"
	"github.com/mkadhem/pricescout/internal/model"
	"github.com/mkadhem/pricescout/internal/scraper"
	"github.com/mkadhem/pricescout/internal/storage"
)

// Orchestrator runs one scrape end to end: validate, build storage targets,
// build the scraper, open a browser session, scrape, fan the records out to
// every target, and release everything.
type Orchestrator struct {
	cfg    *Config
	logger logging.Logger

	// Factory hooks default to the package registries; tests replace them
	// with fakes.
	newSession func(browser.Config, logging.Logger) (browser.Session, error)
	newScraper func(*model.ScrapeRequest, logging.Logger) (scraper.Scraper, error)
	newStorage func(model.StorageTarget, logging.Logger) (storage.Storage, error)
}

// NewOrchestrator ties together config and logger.
func NewOrchestrator(cfg *Config, logger logging.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Orchestrator{
		cfg:        cfg,
		logger:     logger,
		newSession: browser.NewSession,
		newScraper: scraper.New,
		newStorage: storage.New,
	}
}

// TargetOutcome is the per-target result of the fan-out. Targets are
// independent: a failure on one never rolls back another.
type TargetOutcome struct {
	Type    model.StorageType `json:"storage_type"`
	Written int               `json:"written"`
	Error   string            `json:"error,omitempty"`
}

// RunReport summarizes one invocation for the CLI and the API.
type RunReport struct {
	Retailer model.Retailer  `json:"retailer"`
	URL      string          `json:"url"`
	Records  int             `json:"records"`
	Targets  []TargetOutcome `json:"targets"`
}

// Run executes one scrape request. The returned report is populated even
// when err is non-nil; err aggregates every stage and target failure rather
// than stopping at the first.
//
// Ordering is deliberate: all storage backends and the scraper are
// constructed before the browser launches, so misconfiguration surfaces
// before the costly part.
func (o *Orchestrator) Run(ctx context.Context, req *model.ScrapeRequest) (*RunReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	report := &RunReport{Retailer: req.Retailer, URL: req.URL}

	stores := make([]storage.Storage, 0, len(req.Targets))
	closeStores := func() {
		for i, st := range stores {
			if err := st.Close(); err != nil {
				o.logger.Warn("closing storage target",
					logging.Field{Key: "storage_type", Value: string(req.Targets[i].Type)},
					logging.Field{Key: "error", Value: err.Error()})
			}
		}
	}
	for _, t := range req.Targets {
		st, err := o.newStorage(t, o.logger)
		if err != nil {
			closeStores()
			return nil, fmt.Errorf("storage target %s: %w", t.Type, err)
		}
		stores = append(stores, st)
	}

	scr, err := o.newScraper(req, o.logger)
	if err != nil {
		closeStores()
		return nil, err
	}

	browserCfg := o.cfg.Browser
	browserCfg.PageLoadTimeout = req.Timeout
	if req.ProxyOptions != nil {
		browserCfg.ProxyServer = req.ProxyOptions["server"]
	}
	sess, err := o.newSession(browserCfg, o.logger)
	if err != nil {
		closeStores()
		return nil, fmt.Errorf("open browser session: %w", err)
	}

	records, scrapeErr := scr.Scrape(ctx, sess)
	if err := sess.Close(); err != nil {
		o.logger.Warn("closing browser session",
			logging.Field{Key: "error", Value: err.Error()})
	}
	report.Records = len(records)

	var errs []error
	if scrapeErr != nil {
		errs = append(errs, fmt.Errorf("scrape %s: %w", req.URL, scrapeErr))
	}

	// Fan out sequentially. Every target gets written and closed no matter
	// what happened to its siblings; failures are collected, not fatal
	// mid-loop.
	for i, st := range stores {
		outcome := TargetOutcome{Type: req.Targets[i].Type}
		if scrapeErr == nil {
			for j := range records {
				if err := st.Write(ctx, &records[j]); err != nil {
					outcome.Error = err.Error()
					errs = append(errs, fmt.Errorf("target %s: %w", req.Targets[i].Type, err))
					break
				}
				outcome.Written++
			}
		}
		if err := st.Close(); err != nil {
			if outcome.Error == "" {
				outcome.Error = err.Error()
			}
			errs = append(errs, fmt.Errorf("target %s: close: %w", req.Targets[i].Type, err))
		}
		if outcome.Error == "" && scrapeErr == nil {
			o.logger.Info("finished storing batch",
				logging.Field{Key: "storage_type", Value: string(req.Targets[i].Type)},
				logging.Field{Key: "records", Value: outcome.Written})
		}
		report.Targets = append(report.Targets, outcome)
	}

	return report, errors.Join(errs...)
}
