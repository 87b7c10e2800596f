package browser

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/mkadhem/pricescout/internal/logging"
)

// chromedpSession drives a headless Chrome tab over the DevTools protocol.
type chromedpSession struct {
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc

	pageLoadTimeout time.Duration
	settleAfter     time.Duration
	logger          logging.Logger
}

func newChromedpSession(cfg Config, logger logging.Logger) (*chromedpSession, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if cfg.ShowBrowser {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.ProxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(cfg.ProxyServer))
		if logger != nil {
			logger.Info("configured browser proxy",
				logging.Field{Key: "server", Value: cfg.ProxyServer})
		}
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	settleAfter := cfg.SettleAfter
	if settleAfter <= 0 {
		settleAfter = 2 * time.Second
	}

	componentLogger := logger
	if componentLogger != nil {
		componentLogger = componentLogger.With(logging.Field{Key: "backend", Value: "chromedp"})
		componentLogger.Info("created chromedp session",
			logging.Field{Key: "page_load_timeout", Value: cfg.PageLoadTimeout.String()})
	}

	return &chromedpSession{
		tabCtx:          tabCtx,
		tabCancel:       tabCancel,
		allocCancel:     allocCancel,
		pageLoadTimeout: cfg.PageLoadTimeout,
		settleAfter:     settleAfter,
		logger:          componentLogger,
	}, nil
}

// run executes actions on the tab context, bounded by timeout when non-zero.
// The caller context is only consulted for early cancellation; chromedp
// actions must run on the tab context to reach the browser.
func (s *chromedpSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx := s.tabCtx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	if s.logger != nil {
		s.logger.Debug("navigating", logging.Field{Key: "url", Value: url})
	}
	return s.run(ctx, s.pageLoadTimeout, chromedp.Navigate(url))
}

func (s *chromedpSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (s *chromedpSession) Click(ctx context.Context, selector string) error {
	idleChan := waitNetworkIdle(s.tabCtx, s.settleAfter)

	if err := s.run(ctx, s.pageLoadTimeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return err
	}

	// Lazy-loading pages fetch the next batch after the click; wait for the
	// network to go quiet before the caller reads the DOM.
	select {
	case <-idleChan:
	case <-time.After(s.settleAfter + 5*time.Second):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (s *chromedpSession) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, s.pageLoadTimeout, chromedp.OuterHTML("html", &html)); err != nil {
		return "", err
	}
	return html, nil
}

func (s *chromedpSession) Close() error {
	if s.logger != nil {
		s.logger.Info("closing chromedp session")
	}
	s.tabCancel()
	s.allocCancel()
	return nil
}

// waitNetworkIdle signals once no requests have been in flight for idleAfter.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) chan struct{} {
	idleChan := make(chan struct{})
	var activeReqs int32
	var timer *time.Timer
	var timerMutex sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMutex.Lock()
		defer timerMutex.Unlock()

		if timer != nil {
			timer.Stop()
		}

		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() {
					close(idleChan)
				})
			}
		})
	}

	chromedp.ListenTarget(ctx,
		func(ev any) {
			switch ev.(type) {
			case *network.EventRequestWillBeSent:
				atomic.AddInt32(&activeReqs, 1)
			case *network.EventLoadingFinished, *network.EventLoadingFailed:
				if atomic.AddInt32(&activeReqs, -1) == 0 {
					startTimer()
				}
			}
		})

	// If nothing is in flight to begin with, the idle timer still has to fire.
	startTimer()

	return idleChan
}
