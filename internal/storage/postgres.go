package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/mkadhem/pricescout/internal/logging"
	"github.com/mkadhem/pricescout/internal/model"
)

// Fixed relational schema for scraped prices. Indexed for the common
// read paths (per-product history, per-category browsing).
const postgresSchema = `
CREATE TABLE IF NOT EXISTS product_prices (
	id             VARCHAR(36) PRIMARY KEY,
	product_id     TEXT NOT NULL,
	retailer       TEXT NOT NULL,
	url            TEXT NOT NULL,
	brand          TEXT NOT NULL,
	category       TEXT NOT NULL,
	title          TEXT,
	availability   TEXT,
	price          DOUBLE PRECISION,
	currency       VARCHAR(8),
	original_price DOUBLE PRECISION,
	coupon_value   DOUBLE PRECISION,
	rating         DOUBLE PRECISION,
	review_count   INTEGER,
	scraped_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_product_prices_product_id ON product_prices (product_id);
CREATE INDEX IF NOT EXISTS idx_product_prices_scraped_at_product_id ON product_prices (scraped_at, product_id);
CREATE INDEX IF NOT EXISTS idx_product_prices_category ON product_prices (category);
CREATE INDEX IF NOT EXISTS idx_product_prices_brand ON product_prices (brand);
`

const postgresInsert = `
INSERT INTO product_prices
	(id, product_id, retailer, url, brand, category, title, availability,
	 price, currency, original_price, coupon_value, rating, review_count, scraped_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

// postgresStorage inserts one row per record into the fixed table.
//
// Options: database (required), host (default localhost), port (default
// 5432), sslmode (default disable). Username and password come from the
// POSTGRES_USER / POSTGRES_PASSWORD environment variables so credentials
// stay out of request payloads.
type postgresStorage struct {
	db     *sql.DB
	logger logging.Logger
}

func newPostgresStorage(target model.StorageTarget, logger logging.Logger) (Storage, error) {
	if err := requireOptions(target.Options, "database"); err != nil {
		return nil, err
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		optionOr(target.Options, "host", "localhost"),
		optionOr(target.Options, "port", "5432"),
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		target.Options["database"],
		optionOr(target.Options, "sslmode", "disable"),
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %w", ErrWrite, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %w", ErrWrite, err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ensure schema: %w", ErrWrite, err)
	}

	componentLogger := logger.With(logging.Field{Key: "component", Value: "storage.postgres"})
	componentLogger.Info("created postgres storage",
		logging.Field{Key: "database", Value: target.Options["database"]})

	return &postgresStorage{db: db, logger: componentLogger}, nil
}

func (p *postgresStorage) Write(ctx context.Context, rec *model.ScrapedRecord) error {
	_, err := p.db.ExecContext(ctx, postgresInsert,
		rec.ID, rec.ProductID, string(rec.Retailer), rec.URL, rec.Brand,
		rec.CategoryString(), rec.Title, rec.Availability,
		rec.Price, rec.Currency, rec.OriginalPrice, rec.CouponValue,
		rec.Rating, rec.ReviewCount, rec.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert product %s: %w", ErrWrite, rec.ProductID, err)
	}
	return nil
}

func (p *postgresStorage) Close() error {
	p.logger.Info("closing postgres storage")
	return p.db.Close()
}
