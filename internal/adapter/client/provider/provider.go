package provider

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

	"github.com/MikeRez0/smmrefund/internal/adapter/config"
	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBatchSize = 100
	defaultTimeout   = 15 * time.Second
	maxResponseSize  = 4 << 20
)

// Client talks to an SMM panel API (v2 flavour). It never retries, callers
// decide when to try again.
type Client struct {
	logger     *zap.Logger
	apiURL     string
	apiKey     string
	batchSize  int
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewProviderClient(cfg *config.Provider, log *zap.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("provider api url is required")
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("provider api url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}

	return &Client{
		logger:     log,
		apiURL:     cfg.URL,
		apiKey:     cfg.Key,
		batchSize:  batch,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}, nil
}

type errProviderRequest struct {
	RetryAfter time.Duration
}

func (e *errProviderRequest) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

func (e *errProviderRequest) Unwrap() error {
	return domain.ErrProviderRateLimited
}

// RetryAfter extracts the provider's back-off hint from a rate-limit error.
func RetryAfter(err error) (time.Duration, bool) {
	var e *errProviderRequest
	if errors.As(err, &e) {
		return e.RetryAfter, true
	}
	return 0, false
}

// statusResponse fields arrive as strings or numbers depending on the panel.
type statusResponse struct {
	Status     *string  `json:"status"`
	Remains    flexInt  `json:"remains"`
	StartCount flexInt  `json:"start_count"`
	Charge     flexText `json:"charge"`
	Currency   string   `json:"currency"`
	Error      string   `json:"error"`
}

type refillResponse struct {
	Refill flexText `json:"refill"`
	Error  string   `json:"error"`
}

func (c *Client) Status(ctx context.Context, externalID string) (*domain.ProviderReport, error) {
	body, err := c.call(ctx, url.Values{"action": {"status"}, "order": {externalID}})
	if err != nil {
		return nil, err
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode status: %v", domain.ErrProviderUnavailable, err)
	}
	return resp.report(externalID)
}

func (c *Client) StatusMany(ctx context.Context, externalIDs []string) map[string]domain.ProviderResult {
	results := make(map[string]domain.ProviderResult, len(externalIDs))
	for start := 0; start < len(externalIDs); start += c.batchSize {
		end := min(start+c.batchSize, len(externalIDs))
		chunk := externalIDs[start:end]

		reports, err := c.statusChunk(ctx, chunk)
		if err != nil {
			c.logger.Warn("multi-status request failed", zap.Int("orders", len(chunk)), zap.Error(err))
			for _, id := range chunk {
				results[id] = domain.ProviderResult{Err: err}
			}
			continue
		}
		for _, id := range chunk {
			r, ok := reports[id]
			if !ok {
				results[id] = domain.ProviderResult{Err: fmt.Errorf("%w: %s missing from response", domain.ErrProviderOrder, id)}
				continue
			}
			results[id] = r
		}
	}
	return results
}

func (c *Client) statusChunk(ctx context.Context, ids []string) (map[string]domain.ProviderResult, error) {
	body, err := c.call(ctx, url.Values{"action": {"status"}, "orders": {strings.Join(ids, ",")}})
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode multi-status: %v", domain.ErrProviderUnavailable, err)
	}
	if msg, ok := raw["error"]; ok {
		var text string
		_ = json.Unmarshal(msg, &text)
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderOrder, text)
	}

	reports := make(map[string]domain.ProviderResult, len(raw))
	for id, msg := range raw {
		var resp statusResponse
		if err := json.Unmarshal(msg, &resp); err != nil {
			reports[id] = domain.ProviderResult{Err: fmt.Errorf("%w: decode %s: %v", domain.ErrProviderUnavailable, id, err)}
			continue
		}
		report, err := resp.report(id)
		reports[id] = domain.ProviderResult{Report: report, Err: err}
	}
	return reports, nil
}

func (c *Client) Refill(ctx context.Context, externalID string) (string, error) {
	body, err := c.call(ctx, url.Values{"action": {"refill"}, "order": {externalID}})
	if err != nil {
		return "", err
	}

	var resp refillResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode refill: %v", domain.ErrProviderUnavailable, err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrProviderOrder, resp.Error)
	}
	if resp.Refill == "" {
		return "", fmt.Errorf("%w: empty refill id", domain.ErrProviderUnavailable)
	}
	return string(resp.Refill), nil
}

func (c *Client) call(ctx context.Context, form url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}

	form.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error on %s : %w", c.apiURL, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Debug("Fire provider request",
		zap.String("action", form.Get("action")),
		zap.String("order", form.Get("order")),
		zap.String("orders", form.Get("orders")))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 10 * time.Second
		if sec, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			retryAfter = time.Duration(sec) * time.Second
		}
		return nil, &errProviderRequest{RetryAfter: retryAfter}
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("unexpected status for request",
			zap.String("action", form.Get("action")), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: bad response %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrProviderUnavailable, err)
	}
	return body, nil
}

func (r *statusResponse) report(externalID string) (*domain.ProviderReport, error) {
	if r.Error != "" {
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrProviderOrder, externalID, r.Error)
	}
	if r.Status == nil {
		return nil, fmt.Errorf("%w: %s: status missing", domain.ErrProviderUnavailable, externalID)
	}
	status, err := NormalizeStatus(*r.Status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", externalID, err)
	}
	return &domain.ProviderReport{
		ExternalOrderID: externalID,
		Status:          status,
		Remains:         r.Remains.ptr(),
		StartCount:      r.StartCount.ptr(),
	}, nil
}
