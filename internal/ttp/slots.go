package ttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/globalentry/slot-alerter/internal/metrics"
	domain "github.com/globalentry/slot-alerter/pkg/types"
)

const (
	defaultSlotsURL     = "https://ttp.cbp.dhs.gov/schedulerapi/slots"
	defaultLocationsURL = "https://ttp.cbp.dhs.gov/schedulerapi/locations"
	defaultSlotLimit    = 100
	defaultWindowDays   = 365

	// The scheduler API serves an error page to clients that identify
	// themselves as bots, so a browser user agent is sent by default.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Client implements SchedulerClient against the public scheduler API.
type Client struct {
	slotsURL     string
	locationsURL string
	userAgent    string
	slotLimit    int
	windowDays   int
	client       *http.Client
	rateLimiter  *RateLimiter
	nowFunc      func() time.Time
}

// Option configures the Client.
type Option func(*Client)

// WithSlotsURL overrides the default slots endpoint.
func WithSlotsURL(u string) Option {
	return func(c *Client) {
		c.slotsURL = u
	}
}

// WithLocationsURL overrides the default locations endpoint.
func WithLocationsURL(u string) Option {
	return func(c *Client) {
		c.locationsURL = u
	}
}

// WithUserAgent overrides the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithSlotLimit sets the maximum slots requested per location.
func WithSlotLimit(n int) Option {
	return func(c *Client) {
		c.slotLimit = n
	}
}

// WithWindowDays sets how far ahead of now the search window extends.
func WithWindowDays(n int) Option {
	return func(c *Client) {
		c.windowDays = n
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithRateLimiter injects a rate limiter that controls per-second and daily
// API call limits. When set, every Slots() call goes through Wait() first.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		c.rateLimiter = r
	}
}

// WithNowFunc overrides the time source used to compute the search window.
func WithNowFunc(f func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = f
	}
}

// NewClient creates a new scheduler API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		slotsURL:     defaultSlotsURL,
		locationsURL: defaultLocationsURL,
		userAgent:    defaultUserAgent,
		slotLimit:    defaultSlotLimit,
		windowDays:   defaultWindowDays,
		client:       &http.Client{Timeout: 30 * time.Second},
		nowFunc:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Slots implements SchedulerClient.Slots. The search window is recomputed
// on every call so long-running processes never query a stale date range.
func (c *Client) Slots(ctx context.Context, locationID int) ([]domain.Slot, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.SchedulerAPIDailyLimitHits.Inc()
			}
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.SchedulerAPICallsTotal.Inc()
		metrics.SchedulerAPIDailyUsage.Set(float64(c.rateLimiter.DailyCount()))
	}

	body, err := c.get(ctx, c.buildSlotsURL(locationID))
	if err != nil {
		return nil, err
	}

	var slots []apiSlot
	if err := json.Unmarshal(body, &slots); err != nil {
		return nil, fmt.Errorf("parsing slots response: %w", err)
	}

	return toSlots(slots, locationID), nil
}

// Locations implements SchedulerClient.Locations.
func (c *Client) Locations(ctx context.Context) ([]domain.Location, error) {
	body, err := c.get(ctx, c.locationsURL)
	if err != nil {
		return nil, err
	}

	var locations []apiLocation
	if err := json.Unmarshal(body, &locations); err != nil {
		return nil, fmt.Errorf("parsing locations response: %w", err)
	}

	return toLocations(locations), nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"scheduler API error (status %d): %s",
			resp.StatusCode,
			string(body),
		)
	}

	return body, nil
}

func (c *Client) buildSlotsURL(locationID int) string {
	now := c.nowFunc()

	params := url.Values{}
	params.Set("orderBy", "soonest")
	params.Set("limit", strconv.Itoa(c.slotLimit))
	params.Set("locationId", strconv.Itoa(locationID))
	params.Set("minimum", now.Format("2006-01-02"))
	params.Set("maximum", now.AddDate(0, 0, c.windowDays).Format("2006-01-02"))

	return c.slotsURL + "?" + params.Encode()
}
