package socrata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type sodaClient struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	sleep      func(ctx context.Context, d time.Duration) error
}

func newSodaClient(cfg Config) *sodaClient {
	cfg = cfg.WithDefaults()

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &sodaClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
		sleep:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *sodaClient) resourceURL(q Query) string {
	params := url.Values{}
	if q.Select != "" {
		params.Set("$select", q.Select)
	}
	if q.Where != "" {
		params.Set("$where", q.Where)
	}
	if q.Order != "" {
		params.Set("$order", q.Order)
	}
	params.Set("$limit", strconv.Itoa(q.Limit))
	params.Set("$offset", strconv.Itoa(q.Offset))

	return fmt.Sprintf("%s/resource/%s.json?%s", c.cfg.BaseURL, c.cfg.Dataset, params.Encode())
}

// fetchOnce performs a single attempt and classifies its outcome.
func (c *sodaClient) fetchOnce(ctx context.Context, q Query) ChunkResult {
	if err := c.limiter.Wait(ctx); err != nil {
		return ChunkResult{Fatal: err}
	}

	reqURL := c.resourceURL(q)
	log.Debug().Str("url", reqURL).Int("offset", q.Offset).Msg("Requesting SODA page")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return ChunkResult{Fatal: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.AppToken != "" {
		req.Header.Set("X-App-Token", c.cfg.AppToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classifyTransportError(ctx, q, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return ChunkResult{Transient: &TransientError{Offset: q.Offset, StatusCode: resp.StatusCode}}
		case http.StatusUnauthorized, http.StatusForbidden:
			return ChunkResult{Fatal: fmt.Errorf("SODA authentication failed (%d), check the app token", resp.StatusCode)}
		case http.StatusNotFound:
			return ChunkResult{Fatal: fmt.Errorf("dataset %s not found", c.cfg.Dataset)}
		default:
			return ChunkResult{Fatal: fmt.Errorf("SODA API returned status %d at offset %d", resp.StatusCode, q.Offset)}
		}
	}

	var rows []RowDTO
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		if isTimeout(err) {
			return ChunkResult{Transient: &TransientError{Offset: q.Offset, Err: err}}
		}
		return ChunkResult{Fatal: fmt.Errorf("failed to decode SODA response: %w", err)}
	}

	return ChunkResult{Rows: rows}
}

func (c *sodaClient) classifyTransportError(ctx context.Context, q Query, err error) ChunkResult {
	// Caller cancellation is never retried.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ChunkResult{Fatal: ctxErr}
	}
	if isTimeout(err) {
		return ChunkResult{Transient: &TransientError{Offset: q.Offset, Err: err}}
	}
	return ChunkResult{Fatal: fmt.Errorf("SODA request failed: %w", err)}
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
