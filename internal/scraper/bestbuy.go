package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mkadhem/pricescout/internal/browser"
	"github.com/mkadhem/pricescout/internal/logging"
	"github.com/mkadhem/pricescout/internal/model"
)

const (
	bestBuyFooterSelector       = `[class^="footer"]`
	bestBuyItemSelector         = `[class^="list-item"]`
	bestBuyPagingListSelector   = `[class^="paging-list"]`
	bestBuyPageItemSelector     = `[class^="page-item"]`
	bestBuySKUSelector          = `[class^="sku-model"]`
	bestBuyTitleSelector        = `[class^="sku-title"]`
	bestBuyHeroPriceSelector    = `[class^="priceView-hero-price"]`
	bestBuyRegularPriceSelector = `[class^="pricing-price__regular-price-content"]`
	bestBuyRatingsSelector      = `[class^="c-ratings-reviews"]`
	bestBuyFulfillmentSelector  = `[class*="fulfillment-add-to-cart-button"]`
)

var (
	bestBuySKURe     = regexp.MustCompile(`SKU:\s*(\S+)`)
	bestBuyRatingRe  = regexp.MustCompile(`Rating (\d+(?:\.\d+)?) out of`)
	bestBuyReviewsRe = regexp.MustCompile(`with ([\d,]+) reviews`)
)

type bestBuyScraper struct {
	req    *model.ScrapeRequest
	logger logging.Logger
}

func newBestBuyScraper(req *model.ScrapeRequest, logger logging.Logger) Scraper {
	return &bestBuyScraper{
		req:    req,
		logger: logger.With(logging.Field{Key: "component", Value: "scraper.bestbuy"}),
	}
}

func (b *bestBuyScraper) Scrape(ctx context.Context, sess browser.Session) ([]model.ScrapedRecord, error) {
	doc, err := b.loadPage(ctx, sess, b.req.URL)
	if err != nil {
		return nil, err
	}

	// BestBuy uses hard page reloads (?cp=N); the last paging entry holds
	// the page count.
	numPages := 1
	if text := strings.TrimSpace(doc.Find(bestBuyPagingListSelector).Find(bestBuyPageItemSelector).Last().Text()); text != "" {
		if n, err := strconv.Atoi(text); err == nil && n > 0 {
			numPages = n
		}
	}
	if numPages > b.req.MaxPagination {
		numPages = b.req.MaxPagination
	}
	b.logger.Info("scraping result pages", logging.Field{Key: "pages", Value: numPages})

	var records []model.ScrapedRecord
	sawItems := false
	for page := 1; ; page++ {
		items := doc.Find(bestBuyItemSelector)
		if items.Length() > 0 {
			sawItems = true
		}
		items.Each(func(_ int, el *goquery.Selection) {
			if rec, ok := b.parseItem(el); ok {
				records = append(records, rec)
			}
		})

		if page >= numPages {
			break
		}
		doc, err = b.loadPage(ctx, sess, fmt.Sprintf("%s?cp=%d", b.req.URL, page+1))
		if err != nil {
			b.logger.Warn("failed to load result page, stopping pagination",
				logging.Field{Key: "page", Value: page + 1},
				logging.Field{Key: "error", Value: err.Error()})
			break
		}
	}

	if !sawItems {
		return nil, fmt.Errorf("no product list items (%s): %w", bestBuyItemSelector, ErrElementMissing)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no list item yielded a sku: %w", ErrElementMissing)
	}

	b.logger.Info("scraped products", logging.Field{Key: "count", Value: len(records)})
	return records, nil
}

// loadPage navigates, waits for the footer (present only once results have
// rendered), and parses the resulting HTML.
func (b *bestBuyScraper) loadPage(ctx context.Context, sess browser.Session, url string) (*goquery.Document, error) {
	if err := sess.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("navigate %s: %w: %w", url, ErrPageLoad, err)
	}
	if err := sess.WaitVisible(ctx, bestBuyFooterSelector, b.req.Timeout); err != nil {
		return nil, fmt.Errorf("page never finished rendering (%s): %w: %w", bestBuyFooterSelector, ErrPageLoad, err)
	}
	html, err := sess.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %w: %w", ErrPageLoad, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse rendered page: %w", err)
	}
	return doc, nil
}

func (b *bestBuyScraper) parseItem(el *goquery.Selection) (model.ScrapedRecord, bool) {
	description := el.Find(bestBuySKUSelector).Text()
	m := bestBuySKURe.FindStringSubmatch(description)
	if m == nil {
		b.logger.Warn("cannot extract sku, skipping item",
			logging.Field{Key: "text", Value: strings.TrimSpace(description)})
		return model.ScrapedRecord{}, false
	}
	rec := model.NewScrapedRecord(b.req, m[1])

	rec.Title = strings.TrimSpace(el.Find(bestBuyTitleSelector).Text())
	rec.Availability = strings.TrimSpace(el.Find(bestBuyFulfillmentSelector).First().Text())

	if text := el.Find(bestBuyHeroPriceSelector).Text(); text != "" {
		if value, currency, err := parsePrice(text); err == nil {
			rec.Price, rec.Currency = value, currency
		} else {
			b.logger.Warn("cannot parse hero price, assuming null",
				logging.Field{Key: "text", Value: text})
		}
	}
	if text := el.Find(bestBuyRegularPriceSelector).Text(); text != "" {
		if value, _, err := parsePrice(text); err == nil {
			rec.OriginalPrice = value
		}
	}

	reviews := el.Find(bestBuyRatingsSelector).Text()
	if m := bestBuyRatingRe.FindStringSubmatch(reviews); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			rec.Rating = v
		}
	}
	if m := bestBuyReviewsRe.FindStringSubmatch(reviews); m != nil {
		if v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			rec.ReviewCount = v
		}
	}

	return rec, true
}
