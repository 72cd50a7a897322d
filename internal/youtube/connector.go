package youtube

import (
	"context"
	"log/slog"
	"sync"

	"google.golang.org/api/option"

	"livestream-controller/internal/broadcast"
	"livestream-controller/internal/credentials"
)

// Connector builds the authenticated Client on first use and reuses it for
// the life of the process. A failed build is retried on the next call.
type Connector struct {
	cache *credentials.Cache
	opts  []option.ClientOption
	log   *slog.Logger

	mu     sync.Mutex
	client *Client
}

var _ broadcast.PlatformProvider = (*Connector)(nil)

// NewConnector returns a Connector authenticating through cache. Extra opts
// are appended after the token source.
func NewConnector(cache *credentials.Cache, log *slog.Logger, opts ...option.ClientOption) *Connector {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Connector{cache: cache, opts: opts, log: log}
}

// Platform implements broadcast.PlatformProvider.
func (c *Connector) Platform(ctx context.Context) (broadcast.Platform, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	// Fail here with credentials.ErrAuthentication rather than on the first API call.
	if _, err := c.cache.Obtain(ctx); err != nil {
		return nil, err
	}

	// The client outlives this request; later token refreshes must not
	// inherit its cancellation.
	base := context.WithoutCancel(ctx)
	opts := append([]option.ClientOption{option.WithTokenSource(c.cache.TokenSource(base))}, c.opts...)

	client, err := NewClient(base, opts...)
	if err != nil {
		return nil, err
	}
	c.log.Info("youtube client initialised")
	c.client = client
	return client, nil
}
