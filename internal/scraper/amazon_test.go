package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mkadhem/pricescout/internal/model"
	"github.com/mkadhem/pricescout/internal/testutil"
)

const amazonStoreURL = "https://www.amazon.com/stores/page/ACME123"

func amazonRequest(t *testing.T) *model.ScrapeRequest {
	t.Helper()
	req, err := model.NewScrapeRequest(model.RequestParams{
		Retailer: "AMZ",
		URL:      amazonStoreURL,
		Brand:    "acme",
		Category: "Electronics/Laptops",
		Targets:  []model.StorageTarget{{Type: model.StorageFS, Options: map[string]string{"root": "/tmp"}}},
	})
	if err != nil {
		t.Fatalf("NewScrapeRequest: %v", err)
	}
	return req
}

func amazonGridItem(productID, title, buyPrice, strikePrice string) string {
	return fmt.Sprintf(`
<div class="ProductGridItem__item__x1">
  <div class="ProductGridItem__image__x1"><img alt=%q src="/img.jpg"/></div>
  <a class="Title__title__x1" href="/acme/dp/%s/ref=ast_sto_dp">%s</a>
  <span class="ProductGridItem__buyPrice__x1" aria-label=%q></span>
  <span class="StrikeThroughPrice__strikePrice__x1" aria-label=%q></span>
  <i class="Icon__icon__x1">4.5 out of 5 stars</i>
  <span class="ProductGridItem__reviewCount_x1">(1,234)</span>
</div>`, title, productID, title, buyPrice, strikePrice)
}

func TestAmazonScrape_ParsesGridItems(t *testing.T) {
	t.Parallel()
	req := amazonRequest(t)
	sess := &testutil.FakeSession{
		Pages: map[string]string{
			amazonStoreURL: "<html><body>" +
				amazonGridItem("B0AAA1111", "Acme Laptop 15", "$1,299.99", "$1,499.99") +
				amazonGridItem("B0BBB2222", "Acme Laptop 13", "$999.00", "") +
				"</body></html>",
		},
		MissingSelectors: map[string]error{
			amazonShowMoreSelector: errors.New("not visible"),
		},
	}

	scr := newAmazonScraper(req, &testutil.DummyLogger{})
	records, err := scr.Scrape(context.Background(), sess)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.ProductID != "AMZB0AAA1111" {
		t.Errorf("ProductID = %q", first.ProductID)
	}
	if first.Title != "Acme Laptop 15" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Price != 1299.99 || first.Currency != "USD" {
		t.Errorf("Price = %v %q", first.Price, first.Currency)
	}
	if first.OriginalPrice != 1499.99 {
		t.Errorf("OriginalPrice = %v", first.OriginalPrice)
	}
	if first.Rating != 4.5 {
		t.Errorf("Rating = %v", first.Rating)
	}
	if first.ReviewCount != 1234 {
		t.Errorf("ReviewCount = %d", first.ReviewCount)
	}
	if first.Brand != "acme" || first.Retailer != model.RetailerAmazon {
		t.Errorf("identity fields: brand=%q retailer=%q", first.Brand, first.Retailer)
	}

	if records[1].OriginalPrice != 0 {
		t.Errorf("second item OriginalPrice = %v, want 0", records[1].OriginalPrice)
	}
}

func TestAmazonScrape_ShowMoreCappedByMaxPagination(t *testing.T) {
	t.Parallel()
	req := amazonRequest(t)
	req.MaxPagination = 3
	sess := &testutil.FakeSession{
		Pages: map[string]string{
			amazonStoreURL: "<html><body>" +
				amazonGridItem("B0AAA1111", "Acme Laptop 15", "$1,299.99", "") +
				"</body></html>",
		},
		// Show more stays visible forever; only the cap stops the loop.
	}

	scr := newAmazonScraper(req, &testutil.DummyLogger{})
	if _, err := scr.Scrape(context.Background(), sess); err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(sess.Clicks) != 3 {
		t.Fatalf("got %d show more clicks, want 3", len(sess.Clicks))
	}
}

func TestAmazonScrape_NavigateFailureIsPageLoad(t *testing.T) {
	t.Parallel()
	sess := &testutil.FakeSession{NavigateErr: errors.New("net::ERR_TIMED_OUT")}
	scr := newAmazonScraper(amazonRequest(t), &testutil.DummyLogger{})
	_, err := scr.Scrape(context.Background(), sess)
	if !errors.Is(err, ErrPageLoad) {
		t.Fatalf("want ErrPageLoad, got %v", err)
	}
}

func TestAmazonScrape_MissingGridIsElementMissing(t *testing.T) {
	t.Parallel()
	sess := &testutil.FakeSession{
		Pages: map[string]string{amazonStoreURL: "<html><body></body></html>"},
		MissingSelectors: map[string]error{
			amazonItemSelector: errors.New("not visible"),
		},
	}
	scr := newAmazonScraper(amazonRequest(t), &testutil.DummyLogger{})
	_, err := scr.Scrape(context.Background(), sess)
	if !errors.Is(err, ErrElementMissing) {
		t.Fatalf("want ErrElementMissing, got %v", err)
	}
}

func TestAmazonScrape_ItemsWithoutProductIDSkipped(t *testing.T) {
	t.Parallel()
	req := amazonRequest(t)
	sess := &testutil.FakeSession{
		Pages: map[string]string{
			amazonStoreURL: `<html><body>
<div class="ProductGridItem__item__x1">
  <a class="Title__title__x1" href="/acme/gp/help">Not a product</a>
</div></body></html>`,
		},
		MissingSelectors: map[string]error{
			amazonShowMoreSelector: errors.New("not visible"),
		},
	}
	scr := newAmazonScraper(req, &testutil.DummyLogger{})
	_, err := scr.Scrape(context.Background(), sess)
	if !errors.Is(err, ErrElementMissing) {
		t.Fatalf("want ErrElementMissing when no item yields an id, got %v", err)
	}
}
