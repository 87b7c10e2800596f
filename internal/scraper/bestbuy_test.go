package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mkadhem/pricescout/internal/model"
	"github.com/mkadhem/pricescout/internal/testutil"
)

const bestBuyListURL = "https://www.bestbuy.com/site/searchpage.jsp?id=pcat17071&st=acme+laptops"

func bestBuyRequest(t *testing.T) *model.ScrapeRequest {
	t.Helper()
	req, err := model.NewScrapeRequest(model.RequestParams{
		Retailer: "BBY",
		URL:      bestBuyListURL,
		Brand:    "acme",
		Category: "Electronics/Laptops",
		Targets:  []model.StorageTarget{{Type: model.StorageFS, Options: map[string]string{"root": "/tmp"}}},
	})
	if err != nil {
		t.Fatalf("NewScrapeRequest: %v", err)
	}
	return req
}

func bestBuyListItem(sku, title, heroPrice, regularPrice string) string {
	return fmt.Sprintf(`
<li class="list-item x1">
  <div class="sku-title"><a href="/site/p/%s.p">%s</a></div>
  <div class="sku-model">Model: M-%s SKU: %s</div>
  <div class="priceView-hero-price price-box"><span>%s</span></div>
  <div class="pricing-price__regular-price-content">%s</div>
  <div class="c-ratings-reviews">Rating 4.7 out of 5 stars with 1,024 reviews</div>
  <button class="fulfillment-add-to-cart-button x1">Add to Cart</button>
</li>`, sku, title, sku, sku, heroPrice, regularPrice)
}

func bestBuyPage(items string, pageCount int) string {
	paging := ""
	if pageCount > 1 {
		for i := 1; i <= pageCount; i++ {
			paging += fmt.Sprintf(`<li class="page-item">%d</li>`, i)
		}
		paging = `<ol class="paging-list">` + paging + `</ol>`
	}
	return "<html><body><ul>" + items + "</ul>" + paging +
		`<footer class="footer-wrapper">footer</footer></body></html>`
}

func TestBestBuyScrape_ParsesListItems(t *testing.T) {
	t.Parallel()
	sess := &testutil.FakeSession{
		Pages: map[string]string{
			bestBuyListURL: bestBuyPage(
				bestBuyListItem("6543210", "Acme 15.6\" Laptop", "$999.99", "$1,099.99"), 1),
		},
	}

	scr := newBestBuyScraper(bestBuyRequest(t), &testutil.DummyLogger{})
	records, err := scr.Scrape(context.Background(), sess)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.ProductID != "BBY6543210" {
		t.Errorf("ProductID = %q", rec.ProductID)
	}
	if rec.Title != "Acme 15.6\" Laptop" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Price != 999.99 || rec.Currency != "USD" {
		t.Errorf("Price = %v %q", rec.Price, rec.Currency)
	}
	if rec.OriginalPrice != 1099.99 {
		t.Errorf("OriginalPrice = %v", rec.OriginalPrice)
	}
	if rec.Rating != 4.7 {
		t.Errorf("Rating = %v", rec.Rating)
	}
	if rec.ReviewCount != 1024 {
		t.Errorf("ReviewCount = %d", rec.ReviewCount)
	}
	if rec.Availability != "Add to Cart" {
		t.Errorf("Availability = %q", rec.Availability)
	}
}

func TestBestBuyScrape_PaginatesWithHardReloads(t *testing.T) {
	t.Parallel()
	sess := &testutil.FakeSession{
		Pages: map[string]string{
			bestBuyListURL: bestBuyPage(
				bestBuyListItem("1111111", "Acme Laptop A", "$899.99", ""), 2),
			bestBuyListURL + "?cp=2": bestBuyPage(
				bestBuyListItem("2222222", "Acme Laptop B", "$799.99", ""), 2),
		},
	}

	scr := newBestBuyScraper(bestBuyRequest(t), &testutil.DummyLogger{})
	records, err := scr.Scrape(context.Background(), sess)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ProductID != "BBY1111111" || records[1].ProductID != "BBY2222222" {
		t.Errorf("product ids = %q, %q", records[0].ProductID, records[1].ProductID)
	}
}

func TestBestBuyScrape_PageCountCappedByMaxPagination(t *testing.T) {
	t.Parallel()
	req := bestBuyRequest(t)
	req.MaxPagination = 1
	sess := &testutil.FakeSession{
		Pages: map[string]string{
			bestBuyListURL: bestBuyPage(
				bestBuyListItem("1111111", "Acme Laptop A", "$899.99", ""), 5),
		},
	}

	scr := newBestBuyScraper(req, &testutil.DummyLogger{})
	records, err := scr.Scrape(context.Background(), sess)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (single page)", len(records))
	}
	if sess.CurrentURL != bestBuyListURL {
		t.Errorf("navigated past page 1: %q", sess.CurrentURL)
	}
}

func TestBestBuyScrape_MissingFooterIsPageLoad(t *testing.T) {
	t.Parallel()
	sess := &testutil.FakeSession{
		Pages: map[string]string{bestBuyListURL: "<html><body></body></html>"},
		MissingSelectors: map[string]error{
			bestBuyFooterSelector: errors.New("not visible"),
		},
	}
	scr := newBestBuyScraper(bestBuyRequest(t), &testutil.DummyLogger{})
	_, err := scr.Scrape(context.Background(), sess)
	if !errors.Is(err, ErrPageLoad) {
		t.Fatalf("want ErrPageLoad, got %v", err)
	}
}

func TestBestBuyScrape_NoItemsIsElementMissing(t *testing.T) {
	t.Parallel()
	sess := &testutil.FakeSession{
		Pages: map[string]string{bestBuyListURL: bestBuyPage("", 1)},
	}
	scr := newBestBuyScraper(bestBuyRequest(t), &testutil.DummyLogger{})
	_, err := scr.Scrape(context.Background(), sess)
	if !errors.Is(err, ErrElementMissing) {
		t.Fatalf("want ErrElementMissing, got %v", err)
	}
}
