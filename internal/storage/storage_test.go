package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/mkadhem/pricescout/internal/model"
	"github.com/mkadhem/pricescout/internal/testutil"
)

func testRecord() model.ScrapedRecord {
	return model.ScrapedRecord{
		ID:            "8b8f66f2-0000-4000-8000-000000000001",
		ProductID:     "AMZB0TEST123",
		Retailer:      model.RetailerAmazon,
		URL:           "https://www.amazon.com/stores/page/123",
		Brand:         "acme",
		Category:      []string{"Electronics", "Laptops"},
		Title:         "Acme Laptop 15",
		Availability:  "In Stock",
		Price:         1299.99,
		Currency:      "USD",
		OriginalPrice: 1499.99,
		Rating:        4.5,
		ReviewCount:   1234,
		ScrapedAt:     time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

// ─── Registry ──────────────────────────────────────────────────────────

func TestNew_UnknownStorageType(t *testing.T) {
	RegisterDefaultBackends()

	_, err := New(model.StorageTarget{Type: "GCS"}, &testutil.DummyLogger{})
	if !errors.Is(err, model.ErrUnknownStorageType) {
		t.Fatalf("want ErrUnknownStorageType, got %v", err)
	}
}

func TestNew_MissingRequiredOptions(t *testing.T) {
	RegisterDefaultBackends()

	cases := []struct {
		name   string
		target model.StorageTarget
	}{
		{"s3 without bucket", model.StorageTarget{Type: model.StorageS3}},
		{"fs without root", model.StorageTarget{Type: model.StorageFS}},
		{"postgres without database", model.StorageTarget{Type: model.StoragePostgres}},
		{"sqlite without path", model.StorageTarget{Type: model.StorageSQLite}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(c.target, &testutil.DummyLogger{})
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("want ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSupportedTypes_SortedAndComplete(t *testing.T) {
	RegisterDefaultBackends()

	got := SupportedTypes()
	if len(got) != 4 {
		t.Fatalf("SupportedTypes() = %v, want 4 entries", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Fatalf("SupportedTypes() not sorted: %v", got)
		}
	}
}

// ─── Partitioning ──────────────────────────────────────────────────────

func TestBatchKey(t *testing.T) {
	t.Parallel()
	rec := testRecord()
	key := batchKey("prices", &rec, rec.ScrapedAt)
	want := "prices/Electronics/Laptops/acme/ts/2026/08/30/AMZ.parquet"
	if key != want {
		t.Fatalf("batchKey = %q, want %q", key, want)
	}

	key = batchKey("", &rec, rec.ScrapedAt)
	want = "Electronics/Laptops/acme/ts/2026/08/30/AMZ.parquet"
	if key != want {
		t.Fatalf("batchKey without prefix = %q, want %q", key, want)
	}
}
