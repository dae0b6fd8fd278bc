// Package download implements the resumable archive fetcher: month
// discovery against the Receita Federal's directory listing, a bounded
// worker pool, and per-file range-resumable downloads with retry
// (spec.md §4.B).
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/msantosjader/rfb-cnpj-etl/internal/ingesterr"
)

var monthDirPattern = regexp.MustCompile(`^\d{4}-\d{2}/$`)

// hrefPattern pulls href targets out of the directory listing's raw
// HTML; the listing is a bare Apache-style index, not valid enough
// XHTML to warrant a full parser for two capture groups.
var hrefPattern = regexp.MustCompile(`href="([^"]+)"`)

// Discoverer lists available months and, for a given month, the
// archive URLs it publishes.
type Discoverer struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  func() string
}

// NewDiscoverer builds a Discoverer against baseURL using client.
func NewDiscoverer(baseURL string, client *http.Client, userAgent func() string) *Discoverer {
	return &Discoverer{BaseURL: baseURL, HTTPClient: client, UserAgent: userAgent}
}

// AvailableMonths returns every "YYYY-MM" directory published at the
// base URL, sorted ascending.
func (d *Discoverer) AvailableMonths(ctx context.Context) ([]string, error) {
	body, err := d.getListing(ctx, d.BaseURL)
	if err != nil {
		return nil, err
	}

	var months []string
	for _, href := range hrefPattern.FindAllStringSubmatch(body, -1) {
		if monthDirPattern.MatchString(href[1]) {
			months = append(months, strings.TrimSuffix(href[1], "/"))
		}
	}
	sort.Strings(months)
	return months, nil
}

// LatestMonth returns the most recent available month.
func (d *Discoverer) LatestMonth(ctx context.Context) (string, error) {
	months, err := d.AvailableMonths(ctx)
	if err != nil {
		return "", err
	}
	if len(months) == 0 {
		return "", ingesterr.WrapStructural("download.LatestMonth", fmt.Errorf("no months published at %s", d.BaseURL))
	}
	return months[len(months)-1], nil
}

// URLsForMonth returns every .zip archive URL published under month
// ("MM/YYYY" or "YYYY-MM", either is accepted).
func (d *Discoverer) URLsForMonth(ctx context.Context, month string) ([]string, error) {
	monthDir, err := normalizeMonth(month)
	if err != nil {
		return nil, err
	}

	listingURL := strings.TrimRight(d.BaseURL, "/") + "/" + monthDir + "/"
	body, err := d.getListing(ctx, listingURL)
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, href := range hrefPattern.FindAllStringSubmatch(body, -1) {
		if strings.HasSuffix(strings.ToLower(href[1]), ".zip") {
			urls = append(urls, listingURL+href[1])
		}
	}
	sort.Strings(urls)
	return urls, nil
}

// normalizeMonth accepts "MM/YYYY" or "YYYY-MM" and returns "YYYY-MM".
func normalizeMonth(month string) (string, error) {
	if monthDirPattern.MatchString(month + "/") {
		return month, nil
	}
	parts := strings.Split(month, "/")
	if len(parts) == 2 && len(parts[0]) == 2 && len(parts[1]) == 4 {
		return parts[1] + "-" + parts[0], nil
	}
	return "", ingesterr.WrapStructural("download.normalizeMonth", fmt.Errorf("invalid month %q (expected MM/YYYY or YYYY-MM)", month))
}

func (d *Discoverer) getListing(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", ingesterr.WrapStructural("download.getListing: build request", err)
	}
	if d.UserAgent != nil {
		req.Header.Set("User-Agent", d.UserAgent())
	}

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return "", ingesterr.WrapTransient("download.getListing: "+url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", ingesterr.WrapTransient("download.getListing", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url))
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ingesterr.WrapTransient("download.getListing: read body", err)
	}
	return string(b), nil
}
