// Package lostfound provides a client for the campus Lost & Found REST API.
package lostfound

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Lost & Found API operations the client core relies on.
type Client interface {
	// ListItems returns item reports matching the filter.
	ListItems(ctx context.Context, filter ItemFilter) ([]Item, error)
	// ListClaims returns claims matching the filter.
	ListClaims(ctx context.Context, filter ClaimFilter) ([]Claim, error)
	// GetClaim returns a single claim, or nil if it does not exist.
	GetClaim(ctx context.Context, claimID int64) (*Claim, error)
	// SearchCandidates asks the matcher for scored counterpart suggestions
	// for one item.
	SearchCandidates(ctx context.Context, itemID int64, limit int) ([]Candidate, error)
	// UpsertMatch creates a match row for the pair, or returns the existing
	// one. Idempotent.
	UpsertMatch(ctx context.Context, lostItemID, foundItemID int64, score Score) (*Match, error)
	// ConfirmMatch transitions a match to confirmed.
	ConfirmMatch(ctx context.Context, matchID int64) (*Match, error)
	// DismissMatch transitions a match to dismissed.
	DismissMatch(ctx context.Context, matchID int64) (*Match, error)
	// ApproveClaim transitions a claim to approved.
	ApproveClaim(ctx context.Context, claimID int64, adminNote string) (*Claim, error)
	// RejectClaim transitions a claim to rejected.
	RejectClaim(ctx context.Context, claimID int64, adminNote string) (*Claim, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request rate (10 req/s). A zero or
// negative rate disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// WithToken sets the bearer token attached to authenticated requests.
func WithToken(token string) Option {
	return func(c *httpClient) {
		c.token = token
	}
}

type httpClient struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Lost & Found API client against the given base URL
// (e.g. "https://lostfound.campus.example/api").
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// do executes one request and returns the response body and status code.
// Write failures must surface to the caller immediately, so there is no
// retry here; transport behavior is whatever the http.Client provides.
func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, int, error) {
	if err := c.wait(ctx); err != nil {
		return nil, 0, eris.Wrap(err, "lostfound: rate limit")
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, eris.Wrap(err, "lostfound: marshal request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, 0, eris.Wrap(err, "lostfound: create request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "lostfound: %s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, eris.Wrap(err, "lostfound: read response body")
	}
	return data, resp.StatusCode, nil
}

// apiError extracts the service's {"error": "..."} envelope, falling back to
// the raw body.
func apiError(path string, status int, body []byte) error {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return eris.Errorf("lostfound: %s: %s (status %d)", path, envelope.Error, status)
	}
	return eris.Errorf("lostfound: %s: unexpected status %d: %s", path, status, string(body))
}

func (c *httpClient) ListItems(ctx context.Context, filter ItemFilter) ([]Item, error) {
	q := url.Values{}
	if filter.Kind != "" {
		q.Set("type", string(filter.Kind))
	}
	if filter.OwnerID != 0 {
		q.Set("ownerId", strconv.FormatInt(filter.OwnerID, 10))
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	body, status, err := c.do(ctx, http.MethodGet, "/items", q, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError("/items", status, body)
	}

	var resp struct {
		Items []Item `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "lostfound: decode items")
	}
	return resp.Items, nil
}

func (c *httpClient) ListClaims(ctx context.Context, filter ClaimFilter) ([]Claim, error) {
	q := url.Values{}
	if filter.ClaimantUserID != 0 {
		q.Set("claimantId", strconv.FormatInt(filter.ClaimantUserID, 10))
	}
	if filter.ItemID != 0 {
		q.Set("itemId", strconv.FormatInt(filter.ItemID, 10))
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	body, status, err := c.do(ctx, http.MethodGet, "/claims", q, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError("/claims", status, body)
	}

	var resp struct {
		Claims []Claim `json:"claims"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "lostfound: decode claims")
	}
	return resp.Claims, nil
}

func (c *httpClient) GetClaim(ctx context.Context, claimID int64) (*Claim, error) {
	path := fmt.Sprintf("/claims/%d", claimID)
	body, status, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, apiError(path, status, body)
	}

	var resp struct {
		Claim *Claim `json:"claim"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "lostfound: decode claim")
	}
	return resp.Claim, nil
}

func (c *httpClient) SearchCandidates(ctx context.Context, itemID int64, limit int) ([]Candidate, error) {
	q := url.Values{}
	q.Set("itemId", strconv.FormatInt(itemID, 10))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	body, status, err := c.do(ctx, http.MethodGet, "/search/smart", q, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError("/search/smart", status, body)
	}

	var resp struct {
		Matches []Candidate `json:"matches"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "lostfound: decode candidates")
	}
	return resp.Matches, nil
}

func (c *httpClient) UpsertMatch(ctx context.Context, lostItemID, foundItemID int64, score Score) (*Match, error) {
	payload := map[string]any{
		"lostItemId":  lostItemID,
		"foundItemId": foundItemID,
		"score":       score.Percent(),
	}
	body, status, err := c.do(ctx, http.MethodPost, "/matches", nil, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, apiError("/matches", status, body)
	}
	return decodeMatch(body)
}

func (c *httpClient) ConfirmMatch(ctx context.Context, matchID int64) (*Match, error) {
	return c.transitionMatch(ctx, matchID, "confirm")
}

func (c *httpClient) DismissMatch(ctx context.Context, matchID int64) (*Match, error) {
	return c.transitionMatch(ctx, matchID, "dismiss")
}

func (c *httpClient) transitionMatch(ctx context.Context, matchID int64, action string) (*Match, error) {
	path := fmt.Sprintf("/matches/%d/%s", matchID, action)
	body, status, err := c.do(ctx, http.MethodPost, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(path, status, body)
	}
	return decodeMatch(body)
}

func decodeMatch(body []byte) (*Match, error) {
	var resp struct {
		Match *Match `json:"match"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "lostfound: decode match")
	}
	if resp.Match == nil {
		return nil, eris.New("lostfound: response missing match")
	}
	return resp.Match, nil
}

func (c *httpClient) ApproveClaim(ctx context.Context, claimID int64, adminNote string) (*Claim, error) {
	return c.patchClaim(ctx, claimID, ClaimApproved, adminNote)
}

func (c *httpClient) RejectClaim(ctx context.Context, claimID int64, adminNote string) (*Claim, error) {
	return c.patchClaim(ctx, claimID, ClaimRejected, adminNote)
}

func (c *httpClient) patchClaim(ctx context.Context, claimID int64, status ClaimStatus, adminNote string) (*Claim, error) {
	payload := map[string]any{
		"status": string(status),
	}
	if adminNote != "" {
		payload["adminNotes"] = adminNote
	}

	path := fmt.Sprintf("/claims/%d", claimID)
	body, code, err := c.do(ctx, http.MethodPatch, path, nil, payload)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, apiError(path, code, body)
	}

	var resp struct {
		Claim *Claim `json:"claim"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "lostfound: decode claim")
	}
	if resp.Claim == nil {
		return nil, eris.New("lostfound: response missing claim")
	}
	return resp.Claim, nil
}
