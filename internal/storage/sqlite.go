package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mkadhem/pricescout/internal/logging"
	"github.com/mkadhem/pricescout/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS product_prices (
	id             TEXT PRIMARY KEY,
	product_id     TEXT NOT NULL,
	retailer       TEXT NOT NULL,
	url            TEXT NOT NULL,
	brand          TEXT NOT NULL,
	category       TEXT NOT NULL,
	title          TEXT,
	availability   TEXT,
	price          REAL,
	currency       TEXT,
	original_price REAL,
	coupon_value   REAL,
	rating         REAL,
	review_count   INTEGER,
	scraped_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_product_prices_product_id ON product_prices (product_id);
CREATE INDEX IF NOT EXISTS idx_product_prices_category ON product_prices (category);
`

const sqliteInsert = `
INSERT INTO product_prices
	(id, product_id, retailer, url, brand, category, title, availability,
	 price, currency, original_price, coupon_value, rating, review_count, scraped_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// sqliteStorage is the local relational target, same fixed schema as the
// postgres backend with unix-second timestamps.
//
// Options: path (required).
type sqliteStorage struct {
	db     *sql.DB
	logger logging.Logger
}

func newSQLiteStorage(target model.StorageTarget, logger logging.Logger) (Storage, error) {
	if err := requireOptions(target.Options, "path"); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", target.Options["path"])
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %w", ErrWrite, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ensure schema: %w", ErrWrite, err)
	}

	componentLogger := logger.With(logging.Field{Key: "component", Value: "storage.sqlite"})
	componentLogger.Info("created sqlite storage",
		logging.Field{Key: "path", Value: target.Options["path"]})

	return &sqliteStorage{db: db, logger: componentLogger}, nil
}

func (s *sqliteStorage) Write(ctx context.Context, rec *model.ScrapedRecord) error {
	_, err := s.db.ExecContext(ctx, sqliteInsert,
		rec.ID, rec.ProductID, string(rec.Retailer), rec.URL, rec.Brand,
		rec.CategoryString(), rec.Title, rec.Availability,
		rec.Price, rec.Currency, rec.OriginalPrice, rec.CouponValue,
		rec.Rating, rec.ReviewCount, rec.ScrapedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("%w: insert product %s: %w", ErrWrite, rec.ProductID, err)
	}
	return nil
}

func (s *sqliteStorage) Close() error {
	s.logger.Info("closing sqlite storage")
	return s.db.Close()
}
