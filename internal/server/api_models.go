package server

import "github.com/mkadhem/pricescout/internal/model"

// ScrapeRequestPayload is the POST /api/v1/scrape body. storage_config
// mirrors the CLI's repeated -storage-config JSON objects.
type ScrapeRequestPayload struct {
	Retailer      string                `json:"retailer"`
	URL           string                `json:"url"`
	Brand         string                `json:"brand"`
	Category      string                `json:"category"`
	StorageConfig []model.StorageTarget `json:"storage_config"`
	ProxyConfig   map[string]string     `json:"proxy_config,omitempty"`
	Timeout       int                   `json:"timeout,omitempty"`
	MaxPagination int                   `json:"max_pagination,omitempty"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
}
