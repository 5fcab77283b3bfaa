package socrata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrRetriesExhausted is returned when every attempt for a page failed transiently.
var ErrRetriesExhausted = errors.New("max retries reached")

// TransientError signals a failure worth retrying: a read timeout or a throttling/gateway status.
type TransientError struct {
	Offset     int
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transient SODA failure at offset=%d: status %d", e.Offset, e.StatusCode)
	}
	return fmt.Sprintf("transient SODA failure at offset=%d: %v", e.Offset, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// ChunkResult is the outcome of a single page attempt. Exactly one of Rows (possibly empty),
// Transient or Fatal is meaningful: Fatal wins over Transient, and Rows only counts when both are nil.
type ChunkResult struct {
	Rows      []RowDTO
	Transient *TransientError
	Fatal     error
}

// Backoff is the wait after the given zero-based failed attempt: base * 2^attempt.
func Backoff(base time.Duration, attempt int) time.Duration {
	return base << attempt
}

// FetchPage fetches one page, retrying transient failures with geometric backoff.
func (c *sodaClient) FetchPage(ctx context.Context, q Query) ([]RowDTO, error) {
	var last *TransientError
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		res := c.fetchOnce(ctx, q)
		if res.Fatal != nil {
			return nil, res.Fatal
		}
		if res.Transient == nil {
			return res.Rows, nil
		}

		last = res.Transient
		if attempt == c.cfg.MaxRetries-1 {
			break
		}

		wait := Backoff(c.cfg.BackoffBase, attempt)
		log.Warn().
			Err(res.Transient).
			Int("attempt", attempt+1).
			Int("maxRetries", c.cfg.MaxRetries).
			Int("offset", q.Offset).
			Dur("wait", wait).
			Msg("Transient SODA failure, backing off")

		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w for offset=%d: %w", ErrRetriesExhausted, q.Offset, last)
}
