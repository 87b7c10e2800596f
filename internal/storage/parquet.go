package storage

import (
	"bytes"
	"fmt"
	"path"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/mkadhem/pricescout/internal/model"
)

// parquetRow is the columnar projection of a ScrapedRecord. Category is
// flattened to its slash form; the timestamp is unix milliseconds.
type parquetRow struct {
	ID            string  `parquet:"id"`
	ProductID     string  `parquet:"product_id"`
	Retailer      string  `parquet:"retailer"`
	URL           string  `parquet:"url"`
	Brand         string  `parquet:"brand"`
	Category      string  `parquet:"category"`
	Title         string  `parquet:"title"`
	Availability  string  `parquet:"availability"`
	Price         float64 `parquet:"price"`
	Currency      string  `parquet:"currency"`
	OriginalPrice float64 `parquet:"original_price"`
	CouponValue   float64 `parquet:"coupon_value"`
	Rating        float64 `parquet:"rating"`
	ReviewCount   int64   `parquet:"review_count"`
	ScrapedAtMS   int64   `parquet:"scraped_at_ms"`
}

// encodeParquet serializes one batch of records into a parquet file in
// memory. Batches are small (one page's worth of products), so buffering the
// whole file is fine.
func encodeParquet(records []model.ScrapedRecord) ([]byte, error) {
	rows := make([]parquetRow, 0, len(records))
	for i := range records {
		rec := &records[i]
		rows = append(rows, parquetRow{
			ID:            rec.ID,
			ProductID:     rec.ProductID,
			Retailer:      string(rec.Retailer),
			URL:           rec.URL,
			Brand:         rec.Brand,
			Category:      rec.CategoryString(),
			Title:         rec.Title,
			Availability:  rec.Availability,
			Price:         rec.Price,
			Currency:      rec.Currency,
			OriginalPrice: rec.OriginalPrice,
			CouponValue:   rec.CouponValue,
			Rating:        rec.Rating,
			ReviewCount:   int64(rec.ReviewCount),
			ScrapedAtMS:   rec.ScrapedAt.UnixMilli(),
		})
	}

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[parquetRow](&buf)
	if _, err := w.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// batchKey builds the partitioned object key for one batch:
//
//	<prefix>/<category...>/<brand>/ts/YYYY/MM/DD/<RETAILER>.parquet
//
// so downstream analytical queries can prune by category, brand and date.
func batchKey(prefix string, rec *model.ScrapedRecord, dt time.Time) string {
	parts := []string{prefix}
	parts = append(parts, rec.Category...)
	parts = append(parts, rec.Brand, "ts", dt.UTC().Format("2006/01/02"), string(rec.Retailer)+".parquet")
	return path.Join(parts...)
}
