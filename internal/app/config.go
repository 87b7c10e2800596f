package app

import (
	"github.com/mkadhem/pricescout/internal/browser"
)

// Config carries the runtime options shared by the CLI and the API server.
type Config struct {
	// Browser configures the browser backend used for scraping. The
	// per-request timeout and proxy settings override it at run time.
	Browser browser.Config
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Browser: browser.Config{
			Backend: "chromedp",
		},
	}
}
