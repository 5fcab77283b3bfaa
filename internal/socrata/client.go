package socrata

import (
	"context"
	"time"
)

// Client is the interface for reading pages from a Socrata (SODA) dataset.
type Client interface {
	FetchPage(ctx context.Context, q Query) ([]RowDTO, error)
}

// Query is a single SODA request. Limit and Offset drive offset-based paging.
type Query struct {
	Select string
	Where  string
	Order  string
	Limit  int
	Offset int
}

// Config holds the connection and retry settings for a dataset.
// It is a value: each client gets its own copy and nothing mutates it afterwards.
type Config struct {
	// Domain is the Socrata host, e.g. data.cityofchicago.org.
	Domain string
	// BaseURL overrides the https://<Domain> origin (tests, proxies).
	BaseURL  string
	Dataset  string
	AppToken string

	Timeout           time.Duration
	ChunkSize         int
	MaxRetries        int
	BackoffBase       time.Duration
	RequestsPerSecond float64
}

// Defaults used when a Config field is left zero.
const (
	DefaultTimeout     = 180 * time.Second
	DefaultChunkSize   = 2000
	DefaultMaxRetries  = 5
	DefaultBackoffBase = time.Second
)

// WithDefaults returns a copy of the config with zero fields filled in.
func (c Config) WithDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	if c.BaseURL == "" && c.Domain != "" {
		c.BaseURL = "https://" + c.Domain
	}
	return c
}

// NewClient creates a new SODA client based on the provided configuration.
func NewClient(cfg Config) Client {
	return newSodaClient(cfg)
}
