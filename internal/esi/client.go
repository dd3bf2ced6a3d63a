// Package esi talks to the EVE Swagger Interface and turns its industry
// endpoints into the reference data the appraisal engine consumes:
// system cost indices, adjusted prices, and regional sell-order
// snapshots.
package esi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const defaultBaseURL = "https://esi.evetech.net/latest"

const userAgent = "starfoundry/1.0 (github.com)"

// Client is a rate-limited ESI HTTP client. ESI allows up to 150
// error-free requests per second; 50 concurrent connections stays well
// inside that.
type Client struct {
	http    *http.Client
	baseURL string
	sem     chan struct{}

	// Hourly/half-hourly reference data (cost indices, adjusted
	// prices) lives in a TTL cache; order snapshots carry their own
	// ETag-aware cache.
	refCache *gocache.Cache
	group    singleflight.Group
	orders   *orderCache
}

// NewClient creates an ESI client with rate limiting.
func NewClient() *Client {
	return &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		baseURL:  defaultBaseURL,
		sem:      make(chan struct{}, 50),
		refCache: gocache.New(30*time.Minute, 10*time.Minute),
		orders:   newOrderCache(),
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint.
// Tests point this at a local httptest server.
func NewClientWithBaseURL(base string) *Client {
	c := NewClient()
	c.baseURL = base
	return c
}

// HealthCheck pings ESI to verify connectivity.
func (c *Client) HealthCheck() bool {
	req, err := newESIRequest(c.baseURL + "/status/?datasource=tranquility")
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == 200
}

// GetJSON fetches a URL and decodes JSON into dst.
func (c *Client) GetJSON(url string, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	req, err := newESIRequest(url)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ESI %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// getPaginatedWithHeaders fetches every page of a paginated endpoint
// and returns the first page's ETag and Expires alongside the data.
func (c *Client) getPaginatedWithHeaders(url string) ([]MarketOrder, string, time.Time, error) {
	c.sem <- struct{}{}

	req, err := newESIRequest(url + "&page=1")
	if err != nil {
		<-c.sem
		return nil, "", time.Time{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		<-c.sem
		return nil, "", time.Time{}, err
	}

	etag := resp.Header.Get("ETag")
	expires := parseExpires(resp)
	totalPages := 1
	if p := resp.Header.Get("X-Pages"); p != "" {
		totalPages, _ = strconv.Atoi(p)
	}

	var page1 []MarketOrder
	err = json.NewDecoder(resp.Body).Decode(&page1)
	resp.Body.Close()
	<-c.sem
	if err != nil {
		return nil, "", time.Time{}, err
	}

	if totalPages == 1 {
		return page1, etag, expires, nil
	}

	type pageResult struct {
		data []MarketOrder
		err  error
	}
	results := make(chan pageResult, totalPages-1)
	for p := 2; p <= totalPages; p++ {
		go func(pageNum int) {
			var data []MarketOrder
			err := c.GetJSON(fmt.Sprintf("%s&page=%d", url, pageNum), &data)
			results <- pageResult{data: data, err: err}
		}(p)
	}

	all := make([]MarketOrder, 0, len(page1)*totalPages)
	all = append(all, page1...)
	for i := 0; i < totalPages-1; i++ {
		r := <-results
		if r.err != nil {
			return nil, "", time.Time{}, r.err
		}
		all = append(all, r.data...)
	}
	return all, etag, expires, nil
}

// conditionalCheck revalidates a cached snapshot with If-None-Match.
// Returns (notModified, newExpires, error).
func (c *Client) conditionalCheck(pageURL, etag string) (bool, time.Time, error) {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	req, err := newESIRequest(pageURL)
	if err != nil {
		return false, time.Time{}, err
	}
	req.Header.Set("If-None-Match", etag)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, time.Time{}, err
	}
	resp.Body.Close()

	expires := parseExpires(resp)
	return resp.StatusCode == 304, expires, nil
}

func newESIRequest(url string) (*http.Request, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// parseExpires reads the Expires header from an ESI response, falling
// back to the typical 5-minute market refresh window when absent.
func parseExpires(resp *http.Response) time.Time {
	if exp := resp.Header.Get("Expires"); exp != "" {
		if t, err := time.Parse(time.RFC1123, exp); err == nil {
			return t
		}
	}
	return time.Now().Add(5 * time.Minute)
}
