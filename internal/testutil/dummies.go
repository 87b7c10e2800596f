// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/mkadhem/pricescout/internal/logging"
	"github.com/mkadhem/pricescout/internal/model"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ─── Browser session ───────────────────────────────────────────────────

// FakeSession implements browser.Session over a canned url -> HTML map.
// Navigate selects the page, HTML returns it, WaitVisible succeeds unless
// the selector is listed in MissingSelectors.
type FakeSession struct {
	// Pages maps URL to the HTML that session serves after navigating there.
	Pages map[string]string

	// MissingSelectors lists selectors WaitVisible reports as never
	// appearing.
	MissingSelectors map[string]error

	// NavigateErr, HTMLErr and ClickErr inject failures unconditionally.
	NavigateErr error
	HTMLErr     error
	ClickErr    error

	// CurrentURL is the last successfully navigated URL.
	CurrentURL string

	// Clicks records every selector passed to Click, in order.
	Clicks []string

	// CloseCount counts Close calls.
	CloseCount int
}

func (s *FakeSession) Navigate(_ context.Context, url string) error {
	if s.NavigateErr != nil {
		return s.NavigateErr
	}
	s.CurrentURL = url
	return nil
}

func (s *FakeSession) WaitVisible(_ context.Context, selector string, _ time.Duration) error {
	if err, ok := s.MissingSelectors[selector]; ok {
		return err
	}
	return nil
}

func (s *FakeSession) Click(_ context.Context, selector string) error {
	s.Clicks = append(s.Clicks, selector)
	return s.ClickErr
}

func (s *FakeSession) HTML(_ context.Context) (string, error) {
	if s.HTMLErr != nil {
		return "", s.HTMLErr
	}
	return s.Pages[s.CurrentURL], nil
}

func (s *FakeSession) Close() error {
	s.CloseCount++
	return nil
}

// ─── Storage ───────────────────────────────────────────────────────────

// RecorderStorage implements storage.Storage by recording every write.
type RecorderStorage struct {
	mu      sync.Mutex
	Records []model.ScrapedRecord

	// WriteErr, if set, is returned by every Write.
	WriteErr error

	// CloseErr is returned by Close.
	CloseErr error

	// CloseCount counts Close calls.
	CloseCount int
}

func (r *RecorderStorage) Write(_ context.Context, rec *model.ScrapedRecord) error {
	if r.WriteErr != nil {
		return r.WriteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Records = append(r.Records, *rec)
	return nil
}

func (r *RecorderStorage) Close() error {
	r.CloseCount++
	return r.CloseErr
}

// Written returns a snapshot of the recorded writes.
func (r *RecorderStorage) Written() []model.ScrapedRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ScrapedRecord, len(r.Records))
	copy(out, r.Records)
	return out
}
