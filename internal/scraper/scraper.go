package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mkadhem/pricescout/internal/browser"
	"github.com/mkadhem/pricescout/internal/logging"
	"github.com/mkadhem/pricescout/internal/model"
)

var (
	// ErrPageLoad indicates the page never loaded: navigation timeout or a
	// browser-level failure.
	ErrPageLoad = errors.New("page load failed")

	// ErrElementMissing indicates the page loaded but an expected element is
	// absent, which usually means the retailer changed its layout.
	ErrElementMissing = errors.New("expected page element missing")
)

// Scraper extracts product records from one retailer page using a browser
// session it does not own. Implementations are stateless beyond the request
// they were built for.
type Scraper interface {
	Scrape(ctx context.Context, sess browser.Session) ([]model.ScrapedRecord, error)
}

// Constructor builds a Scraper for a validated request.
type Constructor func(req *model.ScrapeRequest, logger logging.Logger) Scraper

var (
	mu       sync.RWMutex
	registry = map[model.Retailer]Constructor{}
)

// RegisterRetailer registers a scraper constructor for a retailer. Adding a
// retailer requires only one implementation plus one Register call; the
// orchestrator and storage layer stay untouched.
func RegisterRetailer(r model.Retailer, ctor Constructor) {
	if r == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[r] = ctor
}

// New constructs the scraper for the request's retailer. Unknown retailers
// fail here, before any browser session is opened.
func New(req *model.ScrapeRequest, logger logging.Logger) (Scraper, error) {
	mu.RLock()
	ctor, ok := registry[req.Retailer]
	mu.RUnlock()
	if !ok || ctor == nil {
		return nil, fmt.Errorf("%w: %q has no registered scraper", model.ErrUnknownRetailer, req.Retailer)
	}
	return ctor(req, logger), nil
}

// SupportedRetailers returns the retailers with a registered scraper.
func SupportedRetailers() []model.Retailer {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]model.Retailer, 0, len(registry))
	for r := range registry {
		out = append(out, r)
	}
	return out
}

// RegisterDefaultRetailers registers the built-in retailer scrapers. Call
// this from main() or test setup before using New.
func RegisterDefaultRetailers() {
	RegisterRetailer(model.RetailerAmazon, newAmazonScraper)
	RegisterRetailer(model.RetailerBestBuy, newBestBuyScraper)
}
