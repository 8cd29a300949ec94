// Package crawler walks a university site breadth-first and produces raw
// page records for the processing pipeline. Fetch failures are recorded per
// page and never abort a crawl.
package crawler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"iitubot/config"
	"iitubot/internal/helpers"
	"iitubot/metrics"
	"iitubot/models"
)

// Crawler performs a rate-limited breadth-first traversal within a single
// domain. A crawl run is single-threaded and meant as a batch operation, not
// something interleaved with live serving.
type Crawler struct {
	cfg     config.CrawlerConfig
	client  *http.Client
	logger  *log.Logger
	allowed func(url string) bool
}

// New builds a crawler whose domain predicate admits cfg.Domain and its
// subdomains.
func New(cfg config.CrawlerConfig, logger *log.Logger) *Crawler {
	if logger == nil {
		logger = log.New(log.Writer(), "[CRAWLER] ", log.LstdFlags)
	}
	return &Crawler{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		allowed: func(u string) bool {
			return helpers.SameDomain(u, cfg.Domain)
		},
	}
}

// Crawl traverses the site starting at seed until the frontier drains or
// maxPages pages have been collected. Every collected page, including failed
// fetches, occupies one slot of maxPages; a URL is fetched at most once per
// run. Returns the pages collected so far together with ctx.Err() when the
// context is cancelled mid-crawl.
func (c *Crawler) Crawl(ctx context.Context, seed string, maxPages int) ([]models.PageRecord, error) {
	start, err := helpers.CanonicalURL(seed)
	if err != nil {
		return nil, fmt.Errorf("seed url: %w", err)
	}

	frontier := []string{start}
	queued := map[string]struct{}{start: {}}
	visited := map[string]struct{}{}
	var pages []models.PageRecord

	c.logger.Printf("starting crawl at %s (max %d pages)", start, maxPages)

	for len(frontier) > 0 && len(pages) < maxPages {
		if err := ctx.Err(); err != nil {
			return pages, err
		}

		current := frontier[0]
		frontier = frontier[1:]
		if _, ok := visited[current]; ok {
			continue
		}
		visited[current] = struct{}{}

		rec := c.fetchPage(ctx, current)
		pages = append(pages, rec)
		metrics.PagesCrawled.Inc()
		if rec.Failed() {
			metrics.CrawlErrors.Inc()
			c.logger.Printf("error scraping %s: %s", current, rec.Error)
		} else {
			c.logger.Printf("scraped %s (%d links, %d pages total, %d queued)",
				current, len(rec.Links), len(pages), len(frontier))
		}

		for _, link := range rec.Links {
			canonical, err := helpers.CanonicalURL(link)
			if err != nil || !c.allowed(canonical) {
				continue
			}
			if _, ok := visited[canonical]; ok {
				continue
			}
			if _, ok := queued[canonical]; ok {
				continue
			}
			queued[canonical] = struct{}{}
			frontier = append(frontier, canonical)
		}

		if c.cfg.Delay > 0 && len(frontier) > 0 && len(pages) < maxPages {
			select {
			case <-ctx.Done():
				return pages, ctx.Err()
			case <-time.After(c.cfg.Delay):
			}
		}
	}

	c.logger.Printf("crawl completed: %d pages", len(pages))
	return pages, nil
}

// fetchPage fetches and parses one page. Failures are captured in the
// record's Error field; Links stay same-domain only.
func (c *Crawler) fetchPage(ctx context.Context, url string) models.PageRecord {
	rec := models.PageRecord{URL: url, FetchedAt: time.Now().UTC()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		rec.Error = err.Error()
		return rec
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		rec.Error = err.Error()
		return rec
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rec.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		return rec
	}

	ex, err := extractPage(url, resp.Body)
	if err != nil {
		rec.Error = err.Error()
		return rec
	}

	rec.Title = ex.Title
	rec.Description = ex.Description
	rec.Content = ex.Text
	for _, link := range ex.Links {
		if c.allowed(link) {
			rec.Links = append(rec.Links, link)
		}
	}
	return rec
}
