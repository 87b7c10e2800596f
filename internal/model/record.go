package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScrapedRecord is the canonical result for one product found on a retailer
// page. It is produced by exactly one scraper invocation and never mutated
// afterwards; storage backends share it read-only.
type ScrapedRecord struct {
	ID        string
	ProductID string
	Retailer  Retailer
	URL       string
	Brand     string
	Category  []string

	Title        string
	Availability string

	Price         float64
	Currency      string
	OriginalPrice float64
	CouponValue   float64
	Rating        float64
	ReviewCount   int

	ScrapedAt time.Time
}

// NewScrapedRecord fills the identity fields shared by every record of a
// scrape: a fresh row id, the retailer-prefixed product id (for cross
// retailer uniqueness) and the request's retailer/url/brand/category.
func NewScrapedRecord(req *ScrapeRequest, productID string) ScrapedRecord {
	return ScrapedRecord{
		ID:        uuid.New().String(),
		ProductID: string(req.Retailer) + productID,
		Retailer:  req.Retailer,
		URL:       req.URL,
		Brand:     req.Brand,
		Category:  req.Category,
		ScrapedAt: time.Now().UTC(),
	}
}

// CategoryString joins the category path back into its slash form for
// storage backends with a flat category column.
func (r *ScrapedRecord) CategoryString() string {
	return strings.Join(r.Category, "/")
}
