// Package hubspot talks to the HubSpot CRM v3 API: windowed call searches
// under pagination and rate limiting, and the owner directory.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avelior/calex/internal/metrics"
	"github.com/avelior/calex/internal/types"
	"github.com/avelior/calex/internal/window"
	"github.com/rs/zerolog"
)

// callProperties is the fixed projection requested for every call.
var callProperties = []string{
	"hs_call_duration",
	"hs_call_disposition",
	"hs_timestamp",
	"hubspot_owner_id",
}

// Backoff returns the wait before retrying a rate-limited request.
// retry is zero-based: 1s, 2s, 4s, ... capped at 60s.
func Backoff(retry int) time.Duration {
	if retry >= 6 {
		return 60 * time.Second
	}
	return time.Duration(1<<retry) * time.Second
}

// Client is a HubSpot API client scoped to one access token.
type Client struct {
	baseURL    string
	token      string
	limit      int
	httpClient *http.Client
	sleep      func(time.Duration)
	logger     zerolog.Logger
}

// NewClient creates a Client. baseURL is overridable for tests.
func NewClient(baseURL, token string, pageLimit int, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		limit:      pageLimit,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sleep:      time.Sleep,
		logger:     logger,
	}
}

// SetSleep replaces the backoff sleep, so tests run without real delays.
func (c *Client) SetSleep(fn func(time.Duration)) { c.sleep = fn }

// SearchWindow returns every call whose activity timestamp falls in w,
// following pagination until no cursor is returned. Rate limiting is
// retried indefinitely with capped exponential backoff. Any other failure
// abandons the rest of the window; results collected so far are kept.
//
// The upstream BETWEEN filter is doubly inclusive, so the high bound is
// w.EndMillis()-1 to keep windows half-open and boundary timestamps from
// being counted in two adjacent windows.
func (c *Client) SearchWindow(ctx context.Context, w window.Window) []types.RawCall {
	m := metrics.Get()

	request := types.SearchRequest{
		FilterGroups: []types.SearchFilterGroup{{
			Filters: []types.SearchFilter{{
				PropertyName: "hs_timestamp",
				Operator:     "BETWEEN",
				Value:        w.StartMillis(),
				HighValue:    w.EndMillis() - 1,
			}},
		}},
		Properties: callProperties,
		Limit:      c.limit,
	}

	var calls []types.RawCall
	after, retry := "", 0
	for {
		request.After = after

		page, status, err := c.searchPage(ctx, request)
		if err != nil {
			m.RecordWindowFailure()
			c.logger.Warn().Err(err).
				Time("window_start", w.Start).
				Msg("search request failed, keeping partial window")
			return calls
		}

		if status == http.StatusTooManyRequests {
			wait := Backoff(retry)
			retry++
			m.RecordRateLimitHit()
			c.logger.Debug().Dur("wait", wait).Int("retry", retry).Msg("rate limited, backing off")
			c.sleep(wait)
			continue
		}

		if status != http.StatusOK {
			m.RecordWindowFailure()
			c.logger.Warn().Int("status", status).
				Time("window_start", w.Start).
				Msg("search returned non-200, keeping partial window")
			return calls
		}

		m.RecordPageFetched()
		calls = append(calls, page.Results...)

		if page.Paging == nil || page.Paging.Next == nil || page.Paging.Next.After == "" {
			return calls
		}
		after = page.Paging.Next.After
	}
}

// searchPage performs a single search request. A 429 or non-200 status is
// reported through the status return, not as an error.
func (c *Client) searchPage(ctx context.Context, request types.SearchRequest) (*types.SearchResponse, int, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/crm/v3/objects/calls/search", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	var page types.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &page, resp.StatusCode, nil
}

// FetchOwners fetches the owner directory once and builds the id-to-name
// map. On failure the map is empty and lookups degrade to the sentinel.
func (c *Client) FetchOwners(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/crm/v3/owners", nil)
	if err != nil {
		return map[string]string{}, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return map[string]string{}, fmt.Errorf("owners request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return map[string]string{}, fmt.Errorf("owners request returned status %d", resp.StatusCode)
	}

	var directory types.OwnersResponse
	if err := json.NewDecoder(resp.Body).Decode(&directory); err != nil {
		return map[string]string{}, fmt.Errorf("failed to decode owners response: %w", err)
	}

	owners := make(map[string]string, len(directory.Results))
	for _, o := range directory.Results {
		owners[o.ID] = strings.TrimSpace(o.FirstName + " " + o.LastName)
	}

	c.logger.Info().Int("owners", len(owners)).Msg("owner directory loaded")
	return owners, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
}
