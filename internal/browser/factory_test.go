package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkadhem/pricescout/internal/logging"
)

type stubSession struct{}

func (stubSession) Navigate(context.Context, string) error { return nil }
func (stubSession) WaitVisible(context.Context, string, time.Duration) error {
	return nil
}
func (stubSession) Click(context.Context, string) error { return nil }
func (stubSession) HTML(context.Context) (string, error) {
	return "", nil
}
func (stubSession) Close() error { return nil }

func TestNewSession_RegisteredBackend(t *testing.T) {
	RegisterBackend("stub", func(_ Config, _ logging.Logger) (Session, error) {
		return stubSession{}, nil
	})

	sess, err := NewSession(Config{Backend: "STUB"}, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if sess == nil {
		t.Fatal("NewSession returned nil session")
	}
}

func TestNewSession_UnknownBackend(t *testing.T) {
	if _, err := NewSession(Config{Backend: "no-such-backend"}, nil); err == nil {
		t.Fatal("want error for unregistered backend")
	}
}

func TestNewSession_ConstructorError(t *testing.T) {
	ctorErr := errors.New("boom")
	RegisterBackend("failing", func(_ Config, _ logging.Logger) (Session, error) {
		return nil, ctorErr
	})

	_, err := NewSession(Config{Backend: "failing"}, nil)
	if !errors.Is(err, ctorErr) {
		t.Fatalf("want constructor error, got %v", err)
	}
}
