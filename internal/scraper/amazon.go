package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mkadhem/pricescout/internal/browser"
	"github.com/mkadhem/pricescout/internal/logging"
	"github.com/mkadhem/pricescout/internal/model"
)

// Amazon brand storefront grids use hashed class names with stable prefixes,
// so every selector is a prefix/substring match.
const (
	amazonItemSelector        = `[class^="ProductGridItem__item__"]`
	amazonShowMoreSelector    = `[class*="ShowMoreButton__button__"]`
	amazonTitleSelector       = `[class^="Title__title__"]`
	amazonImageSelector       = `[class^="ProductGridItem__image__"]`
	amazonBuyPriceSelector    = `[class*="ProductGridItem__buyPrice__"]`
	amazonStrikePriceSelector = `[class*="StrikeThroughPrice__strikePrice__"]`
	amazonCouponSelector      = `[class*="Price__base__"]`
	amazonRatingSelector      = `[class^="Icon__icon__"]`
	amazonReviewCountSelector = `[class^="ProductGridItem__reviewCount"]`
)

// Product detail URLs embed the catalog id after /dp/.
var amazonProductIDRe = regexp.MustCompile(`/dp/([^/?]+)`)

type amazonScraper struct {
	req    *model.ScrapeRequest
	logger logging.Logger
}

func newAmazonScraper(req *model.ScrapeRequest, logger logging.Logger) Scraper {
	return &amazonScraper{
		req:    req,
		logger: logger.With(logging.Field{Key: "component", Value: "scraper.amazon"}),
	}
}

func (a *amazonScraper) Scrape(ctx context.Context, sess browser.Session) ([]model.ScrapedRecord, error) {
	if err := sess.Navigate(ctx, a.req.URL); err != nil {
		return nil, fmt.Errorf("navigate %s: %w: %w", a.req.URL, ErrPageLoad, err)
	}
	if err := sess.WaitVisible(ctx, amazonItemSelector, a.req.Timeout); err != nil {
		return nil, fmt.Errorf("product grid never rendered (%s): %w: %w", amazonItemSelector, ErrElementMissing, err)
	}

	// The grid lazy-loads: press "show more" until it disappears or the
	// pagination cap is reached.
	for page := 1; page <= a.req.MaxPagination; page++ {
		if err := sess.WaitVisible(ctx, amazonShowMoreSelector, a.req.Timeout); err != nil {
			a.logger.Debug("show more button not present, all items rendered",
				logging.Field{Key: "pages_loaded", Value: page})
			break
		}
		if err := sess.Click(ctx, amazonShowMoreSelector); err != nil {
			a.logger.Warn("clicking show more failed, moving on",
				logging.Field{Key: "error", Value: err.Error()})
			break
		}
		a.logger.Info("clicked show more", logging.Field{Key: "page", Value: page + 1})
	}

	html, err := sess.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %w: %w", ErrPageLoad, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse rendered page: %w", err)
	}

	items := doc.Find(amazonItemSelector)
	if items.Length() == 0 {
		return nil, fmt.Errorf("no product grid items (%s): %w", amazonItemSelector, ErrElementMissing)
	}

	var records []model.ScrapedRecord
	items.Each(func(_ int, el *goquery.Selection) {
		if rec, ok := a.parseItem(el); ok {
			records = append(records, rec)
		}
	})
	if len(records) == 0 {
		return nil, fmt.Errorf("no grid item yielded a product id: %w", ErrElementMissing)
	}

	a.logger.Info("scraped products", logging.Field{Key: "count", Value: len(records)})
	return records, nil
}

func (a *amazonScraper) parseItem(el *goquery.Selection) (model.ScrapedRecord, bool) {
	href, _ := el.Find(amazonTitleSelector).Attr("href")
	m := amazonProductIDRe.FindStringSubmatch(href)
	if m == nil {
		a.logger.Warn("cannot extract product id, skipping item",
			logging.Field{Key: "href", Value: href})
		return model.ScrapedRecord{}, false
	}
	rec := model.NewScrapedRecord(a.req, m[1])

	// The image alt carries the full product name; the title span is the
	// truncated fallback.
	if alt, ok := el.Find(amazonImageSelector).Find("img").Attr("alt"); ok && alt != "" {
		rec.Title = alt
	} else {
		rec.Title = strings.TrimSpace(el.Find(amazonTitleSelector).Text())
	}

	if label, ok := el.Find(amazonBuyPriceSelector).Attr("aria-label"); ok {
		if value, currency, err := parsePrice(label); err == nil {
			rec.Price, rec.Currency = value, currency
		} else {
			a.logger.Warn("cannot parse buy price, assuming null",
				logging.Field{Key: "text", Value: label})
		}
	}
	if label, ok := el.Find(amazonStrikePriceSelector).Attr("aria-label"); ok {
		if value, _, err := parsePrice(label); err == nil {
			rec.OriginalPrice = value
		}
	}
	if label, ok := el.Find(amazonCouponSelector).Attr("aria-label"); ok {
		if value, _, err := parsePrice(label); err == nil {
			rec.CouponValue = value
		}
	}
	if rating, ok := parseLeadingFloat(el.Find(amazonRatingSelector).Text()); ok {
		rec.Rating = rating
	}
	if count, ok := parseCount(el.Find(amazonReviewCountSelector).Text()); ok {
		rec.ReviewCount = count
	}

	return rec, true
}
