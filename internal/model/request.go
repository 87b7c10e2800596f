package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownRetailer    = errors.New("unknown retailer")
	ErrUnknownStorageType = errors.New("unknown storage type")
	ErrInvalidRequest     = errors.New("invalid scrape request")
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultMaxPagination = 20
)

// StorageTarget is one destination for a scraped batch: a storage type plus
// the options its backend understands.
type StorageTarget struct {
	Type    StorageType       `json:"storage_type"`
	Options map[string]string `json:"storage_options,omitempty"`
}

// RequestParams carries the raw user input for one scrape invocation.
// NewScrapeRequest validates it into an immutable ScrapeRequest.
type RequestParams struct {
	Retailer       string
	URL            string
	Brand          string
	Category       string
	Targets        []StorageTarget
	ProxyOptions   map[string]string
	TimeoutSeconds int
	MaxPagination  int
}

// ScrapeRequest is a fully validated scrape invocation. Construct it through
// NewScrapeRequest and treat it as read-only afterwards.
type ScrapeRequest struct {
	Retailer      Retailer
	URL           string
	Brand         string
	Category      []string
	Targets       []StorageTarget
	ProxyOptions  map[string]string
	Timeout       time.Duration
	MaxPagination int
}

// NewScrapeRequest validates params and applies defaults (30s timeout,
// 20 page cap). It fails before any external resource is touched.
func NewScrapeRequest(p RequestParams) (*ScrapeRequest, error) {
	retailer, err := ParseRetailer(p.Retailer)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.URL) == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}
	brand := strings.ToLower(strings.TrimSpace(p.Brand))
	if brand == "" {
		return nil, fmt.Errorf("%w: brand is required", ErrInvalidRequest)
	}
	category := SplitCategory(p.Category)
	if len(category) == 0 {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidRequest)
	}
	if len(p.Targets) == 0 {
		return nil, fmt.Errorf("%w: at least one storage target is required", ErrInvalidRequest)
	}

	targets := make([]StorageTarget, 0, len(p.Targets))
	for _, t := range p.Targets {
		st, err := ParseStorageType(string(t.Type))
		if err != nil {
			return nil, err
		}
		targets = append(targets, StorageTarget{Type: st, Options: t.Options})
	}

	timeout := DefaultTimeout
	if p.TimeoutSeconds > 0 {
		timeout = time.Duration(p.TimeoutSeconds) * time.Second
	}
	maxPagination := DefaultMaxPagination
	if p.MaxPagination > 0 {
		maxPagination = p.MaxPagination
	}

	return &ScrapeRequest{
		Retailer:      retailer,
		URL:           strings.TrimSpace(p.URL),
		Brand:         brand,
		Category:      category,
		Targets:       targets,
		ProxyOptions:  p.ProxyOptions,
		Timeout:       timeout,
		MaxPagination: maxPagination,
	}, nil
}

// Validate re-checks the enum fields. Requests built by NewScrapeRequest
// always pass; the orchestrator calls this so hand-built requests fail fast
// as well.
func (r *ScrapeRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	if _, err := ParseRetailer(string(r.Retailer)); err != nil {
		return err
	}
	if len(r.Targets) == 0 {
		return fmt.Errorf("%w: at least one storage target is required", ErrInvalidRequest)
	}
	for _, t := range r.Targets {
		if _, err := ParseStorageType(string(t.Type)); err != nil {
			return err
		}
	}
	return nil
}

// CategoryString joins the category path back into its slash form.
func (r *ScrapeRequest) CategoryString() string {
	return strings.Join(r.Category, "/")
}

// SplitCategory splits a slash-delimited category drill-down into its
// ordered segments. Leading/trailing slashes and empty segments are dropped;
// an input with no slash yields a single-element path.
func SplitCategory(s string) []string {
	var out []string
	for _, seg := range strings.Split(strings.Trim(strings.TrimSpace(s), "/"), "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
