// Package chaindata fetches chain state from a Toshi-style blockchain data REST service.
package chaindata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// DefaultPageLimit asks the service for an effectively unbounded page.
const DefaultPageLimit = 999999

// Config configures the data service client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RPS caps outgoing requests per second; zero disables the limit.
	RPS int
}

// Pagination selects a page of a list resource. A nil page asks for DefaultPageLimit items.
type Pagination struct {
	Limit  int
	Offset int
}

// Client is a JSON client for the blockchain data service.
type Client struct {
	http    *resty.Client
	rl      ratelimit.Limiter
	metrics Metrics
	logger  *zap.Logger
}

// NewClient constructs a Client for cfg.BaseURL.
func NewClient(cfg Config, metrics Metrics, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("data service base url is required")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse data service url: %w", err)
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}

	rl := ratelimit.NewUnlimited()
	if cfg.RPS > 0 {
		rl = ratelimit.New(cfg.RPS)
	}

	return &Client{
		http:    httpClient,
		rl:      rl,
		metrics: metrics,
		logger:  logger.Named("chaindata"),
	}, nil
}

// fetch returns the raw JSON document found under the given path segments.
// A 404 yields ErrNotFound; a connection failure yields ErrTransportUnavailable.
func (c *Client) fetch(ctx context.Context, operation string, segments []string, page *Pagination) (body json.RawMessage, err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe(operation, err, started)
	}()

	path := joinPath(segments)
	c.rl.Take()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(pageParams(page)).
		Get(path)
	if err != nil {
		if isUnavailable(err) {
			return nil, fmt.Errorf("get %s: %w: %w", path, ErrTransportUnavailable, err)
		}
		return nil, fmt.Errorf("get %s: %w", path, err)
	}

	c.logger.Debug("data service response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", resp.Time()),
	)

	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("get %s: %w", path, ErrNotFound)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get %s: unexpected status %d: %s", path, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return resp.Body(), nil
}

func (c *Client) getJSON(ctx context.Context, operation string, out any, segments ...string) error {
	return c.getPage(ctx, operation, out, nil, segments...)
}

func (c *Client) getPage(ctx context.Context, operation string, out any, page *Pagination, segments ...string) error {
	body, err := c.fetch(ctx, operation, segments, page)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", joinPath(segments), err)
	}
	return nil
}

func joinPath(segments []string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return strings.Join(escaped, "/")
}

func pageParams(page *Pagination) map[string]string {
	limit := DefaultPageLimit
	if page != nil && page.Limit > 0 {
		limit = page.Limit
	}
	params := map[string]string{"limit": strconv.Itoa(limit)}
	if page != nil && page.Offset > 0 {
		params["offset"] = strconv.Itoa(page.Offset)
	}
	return params
}
