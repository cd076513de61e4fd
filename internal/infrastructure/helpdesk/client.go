// Package helpdesk implements the rate-limited client for the upstream
// helpdesk API: paginated list fetches, single-item fetches, retry with
// exponential backoff on throttling and typed error propagation.
package helpdesk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"opsdesk/internal/shared/config"
	"opsdesk/internal/shared/logger"
)

const (
	// maxPageSize is the upstream API's maximum page size; every list
	// request uses it so the page count stays minimal under the hourly
	// request budget.
	maxPageSize = 100

	defaultRequestTimeout = 30 * time.Second

	// maxResponseSize bounds a single response body (10MB).
	maxResponseSize = 10 << 20
)

// ProgressFunc reports list-fetch liveness: pages fetched so far and
// records accumulated.
type ProgressFunc func(pages, records int)

// RateLimitError is returned when 429 retries are exhausted for one
// request.
type RateLimitError struct {
	Resource string
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("helpdesk %s: rate limit exceeded after %d attempts", e.Resource, e.Attempts)
}

// IsRateLimit reports whether err is a rate-limit exhaustion error.
func IsRateLimit(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}

// StatusError is a non-2xx, non-429 response from the upstream API.
type StatusError struct {
	Resource string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("helpdesk %s: unexpected status %d", e.Resource, e.Code)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client talks to the upstream helpdesk API. All pacing behavior comes
// from the injected PacingPolicy.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	pacing     PacingPolicy
	logger     logger.Interface
}

// NewClient builds a client from configuration. Missing credentials fail
// fast here with a descriptive error; the client never silently no-ops.
func NewClient(cfg *config.HelpdeskConfig, log logger.Interface) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("helpdesk base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("helpdesk API key is required")
	}

	timeout := defaultRequestTimeout
	if cfg.RequestTimeoutSec > 0 {
		timeout = time.Duration(cfg.RequestTimeoutSec) * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		pacing: PacingFromConfig(cfg),
		logger: log,
	}, nil
}

// Pacing returns the policy this client was built with; the enricher
// shares it so all upstream traffic follows one strategy.
func (c *Client) Pacing() PacingPolicy {
	return c.pacing
}

// ListAgents fetches every agent, page by page.
func (c *Client) ListAgents(ctx context.Context, onProgress ProgressFunc) ([]Agent, error) {
	var all []Agent
	err := c.fetchAllPages(ctx, "agents", func(ctx context.Context, page int) (int, error) {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(maxPageSize))

		var env agentsEnvelope
		if err := c.getJSON(ctx, "agents", "/api/v2/agents", q, &env); err != nil {
			return 0, err
		}
		all = append(all, env.Agents...)
		return len(env.Agents), nil
	}, onProgress)
	return all, err
}

// ListTickets fetches every ticket updated since the given time, page by
// page, including lifecycle stats. The upstream filter is open-ended;
// closed-range windows are post-filtered by the caller.
func (c *Client) ListTickets(ctx context.Context, updatedSince time.Time, onProgress ProgressFunc) ([]Ticket, error) {
	var all []Ticket
	err := c.fetchAllPages(ctx, "tickets", func(ctx context.Context, page int) (int, error) {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(maxPageSize))
		q.Set("updated_since", updatedSince.UTC().Format(time.RFC3339))
		q.Set("include", "stats")

		var env ticketsEnvelope
		if err := c.getJSON(ctx, "tickets", "/api/v2/tickets", q, &env); err != nil {
			return 0, err
		}
		all = append(all, env.Tickets...)
		return len(env.Tickets), nil
	}, onProgress)
	return all, err
}

// FetchTicketActivities fetches one ticket's activity timeline. Errors
// (including ordinary 5xx noise on some tickets) are expected to be caught
// per-item by the caller.
func (c *Client) FetchTicketActivities(ctx context.Context, ticketID int64) ([]Activity, error) {
	var env activitiesEnvelope
	path := fmt.Sprintf("/api/v2/tickets/%d/activities", ticketID)
	if err := c.getJSON(ctx, "ticket activities", path, nil, &env); err != nil {
		return nil, err
	}
	return env.Activities, nil
}

// FetchRequester fetches one requester's detail record.
func (c *Client) FetchRequester(ctx context.Context, requesterID int64) (*Requester, error) {
	var env requesterEnvelope
	path := fmt.Sprintf("/api/v2/requesters/%d", requesterID)
	if err := c.getJSON(ctx, "requester", path, nil, &env); err != nil {
		return nil, err
	}
	return &env.Requester, nil
}

// FetchSatisfactionRating fetches one ticket's CSAT response. A 404 means
// "no response yet" and returns (nil, nil); it is not an error.
func (c *Client) FetchSatisfactionRating(ctx context.Context, ticketID int64) (*SatisfactionResponse, error) {
	var env satisfactionEnvelope
	path := fmt.Sprintf("/api/v2/tickets/%d/satisfaction_ratings", ticketID)
	if err := c.getJSON(ctx, "satisfaction rating", path, nil, &env); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &env.SatisfactionResponse, nil
}

// fetchAllPages drives a sequential page loop: one in-flight request at a
// time, a fixed delay between pages, stop on a short or empty page.
// Retries inside getJSON do not count toward page progress.
func (c *Client) fetchAllPages(
	ctx context.Context,
	resource string,
	fetchPage func(ctx context.Context, page int) (int, error),
	onProgress ProgressFunc,
) error {
	records := 0
	for page := 1; ; page++ {
		count, err := fetchPage(ctx, page)
		if err != nil {
			return fmt.Errorf("fetch %s page %d: %w", resource, page, err)
		}
		records += count

		if onProgress != nil && c.pacing.ProgressEvery > 0 && page%c.pacing.ProgressEvery == 0 {
			onProgress(page, records)
		}

		if count < maxPageSize {
			if onProgress != nil {
				onProgress(page, records)
			}
			c.logger.Debugw("page loop finished",
				"resource", resource,
				"pages", page,
				"records", records,
			)
			return nil
		}

		if err := sleepCtx(ctx, c.pacing.PageDelay); err != nil {
			return err
		}
	}
}

// getJSON issues one GET with bounded 429 retries. Non-429 errors are
// returned typed so callers can distinguish absence (404) from failure.
func (c *Client) getJSON(ctx context.Context, resource, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("helpdesk %s: create request: %w", resource, err)
		}
		req.SetBasicAuth(c.apiKey, "X")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("helpdesk %s: %w", resource, err)
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if readErr != nil {
				return fmt.Errorf("helpdesk %s: read response: %w", resource, readErr)
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("helpdesk %s: decode response: %w", resource, err)
			}
			return nil

		case resp.StatusCode == http.StatusTooManyRequests:
			if attempt >= c.pacing.MaxRetries {
				return &RateLimitError{Resource: resource, Attempts: attempt + 1}
			}
			delay := c.pacing.BackoffDelay(attempt)
			c.logger.Warnw("rate limited, backing off",
				"resource", resource,
				"attempt", attempt+1,
				"delay", delay,
			)
			if err := sleepCtx(ctx, delay); err != nil {
				return err
			}

		default:
			return &StatusError{Resource: resource, Code: resp.StatusCode}
		}
	}
}

// sleepCtx pauses for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
