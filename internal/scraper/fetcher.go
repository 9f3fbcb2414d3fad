package scraper

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"manhwahub/pkg/apperr"
)

// userAgents is the fixed pool the fetcher rotates through, one pick per
// request, so traffic does not present a single client fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

// Client fetches pages and binary assets from the source site. All outbound
// traffic goes through one rate limiter.
type Client struct {
	baseURL string
	http    *resty.Client
}

func NewClient(baseURL string, timeout time.Duration, requestsPerSec float64) *Client {
	if requestsPerSec <= 0 {
		requestsPerSec = 2
	}
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")

	httpClient := resty.New()
	httpClient.SetTimeout(timeout)
	httpClient.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	httpClient.SetHeader("Accept-Language", "en-US,en;q=0.9")
	httpClient.SetHeader("Connection", "keep-alive")
	httpClient.SetHeader("Referer", trimmed+"/")

	limiter := rate.NewLimiter(rate.Limit(requestsPerSec), 2)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if err := limiter.Wait(req.Context()); err != nil {
			return err
		}
		req.SetHeader("User-Agent", userAgents[rand.IntN(len(userAgents))])
		return nil
	})

	return &Client{
		baseURL: trimmed,
		http:    httpClient,
	}
}

// Page fetches one HTML page and returns its raw body.
func (c *Client) Page(ctx context.Context, pageURL string) (string, error) {
	res, err := c.http.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return "", apperr.Upstream(0, "failed to reach source site", err)
	}
	if res.IsError() {
		return "", apperr.Upstream(res.StatusCode(), fmt.Sprintf("source site returned %s", res.Status()), nil)
	}
	return res.String(), nil
}

// Binary fetches one raw asset, typically a chapter page image.
func (c *Client) Binary(ctx context.Context, assetURL string) ([]byte, error) {
	res, err := c.http.R().SetContext(ctx).Get(assetURL)
	if err != nil {
		return nil, apperr.Upstream(0, "failed to fetch image", err)
	}
	if res.IsError() {
		return nil, apperr.Upstream(res.StatusCode(), fmt.Sprintf("image host returned %s", res.Status()), nil)
	}
	return res.Body(), nil
}

// MangaURL builds the canonical detail page URL for a raw (hyphenated) title.
func (c *Client) MangaURL(title string) string {
	return c.baseURL + "/manga/" + url.PathEscape(title) + "/"
}

// ChapterURL builds the page URL for one chapter of a title.
func (c *Client) ChapterURL(title, chapter string) string {
	return c.baseURL + "/manga/" + url.PathEscape(title) + "/chapter-" + url.PathEscape(chapter) + "/"
}

// SearchURL builds the source site's search URL for a query.
func (c *Client) SearchURL(query string) string {
	return c.baseURL + "/?s=" + url.QueryEscape(query) + "&post_type=wp-manga"
}

// BaseURL returns the configured source site root.
func (c *Client) BaseURL() string {
	return c.baseURL
}
