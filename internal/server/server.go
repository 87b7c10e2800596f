package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkadhem/pricescout/internal/app"
	"github.com/mkadhem/pricescout/internal/logging"
	"github.com/mkadhem/pricescout/internal/model"
	"github.com/mkadhem/pricescout/internal/scraper"
	"github.com/mkadhem/pricescout/internal/storage"
)

// Runner executes one validated scrape request. Implemented by
// *app.Orchestrator; tests plug in a fake.
type Runner interface {
	Run(ctx context.Context, req *model.ScrapeRequest) (*app.RunReport, error)
}

// Server is the HTTP API surface: scrapes run synchronously within the
// request, batch-job style.
type Server struct {
	cfg    Config
	runner Runner
	router chi.Router
	logger logging.Logger
}

// NewServer wires the router around a Runner.
func NewServer(cfg Config, runner Runner, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}
	s := &Server{
		cfg:    cfg,
		runner: runner,
		router: chi.NewRouter(),
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Get("/healthz", s.handleHealthz)
	r.Get("/api/v1/retailers", s.handleListRetailers)
	r.Get("/api/v1/storage-types", s.handleListStorageTypes)
	r.Post("/api/v1/scrape", s.handleScrape)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("http_request",
		logging.Field{Key: "method", Value: r.Method},
		logging.Field{Key: "path", Value: r.URL.Path})
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe. Scrapes run
// inside the request, so the write timeout stays generous.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- HTTP handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRetailers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, scraper.SupportedRetailers())
}

func (s *Server) handleListStorageTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, storage.SupportedTypes())
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var body ScrapeRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req, err := model.NewScrapeRequest(model.RequestParams{
		Retailer:       body.Retailer,
		URL:            body.URL,
		Brand:          body.Brand,
		Category:       body.Category,
		Targets:        body.StorageConfig,
		ProxyOptions:   body.ProxyConfig,
		TimeoutSeconds: body.Timeout,
		MaxPagination:  body.MaxPagination,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.runner.Run(r.Context(), req)
	if err != nil {
		s.logger.Warn("scrape run failed", logging.Field{Key: "error", Value: err.Error()})

		if errors.Is(err, model.ErrUnknownRetailer) ||
			errors.Is(err, model.ErrUnknownStorageType) ||
			errors.Is(err, model.ErrInvalidRequest) ||
			errors.Is(err, storage.ErrInvalidConfig) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		// Partial outcomes still matter to the caller; ship the report with
		// the error.
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":  err.Error(),
			"report": report,
		})
		return
	}

	writeJSON(w, http.StatusOK, report)
}
