package browser

import (
	"context"
	"time"
)

// Session is one remote-controlled browser tab. Implementations own the
// underlying driver process; Close must release it on every exit path.
type Session interface {
	// Navigate loads the given URL, honoring the configured page-load timeout.
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until the CSS selector matches a visible element or
	// the timeout elapses. This is an explicit DOM-condition wait, never a
	// fixed sleep.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// Click clicks the first visible element matching the selector and waits
	// for in-flight network activity to settle.
	Click(ctx context.Context, selector string) error

	// HTML returns the rendered outer HTML of the current document.
	HTML(ctx context.Context) (string, error)

	Close() error
}

// Config selects and tunes the browser backend.
type Config struct {
	// Backend is the registered backend name. Empty means "chromedp".
	Backend string

	// ShowBrowser disables headless mode for local debugging.
	ShowBrowser bool

	// PageLoadTimeout bounds Navigate. Zero means no explicit bound.
	PageLoadTimeout time.Duration

	// ProxyServer, if set, routes all browser traffic through the given
	// proxy (scheme://host:port).
	ProxyServer string

	// SettleAfter is how long the network must stay idle after a click
	// before the click is considered settled.
	SettleAfter time.Duration
}
