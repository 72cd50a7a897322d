package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// ErrAuthentication is returned when no valid credential can be produced.
var ErrAuthentication = errors.New("no valid credentials available")

const loadKey = "credential"

// Cache loads the credential from a BlobStore once per process, refreshing and
// writing it back when it has expired. Successful loads are kept in memory;
// failed loads are retried on the next call.
type Cache struct {
	store     BlobStore
	refresher Refresher
	log       *slog.Logger
	now       func() time.Time
	scratch   string
	onRefresh func()

	sf   singleflight.Group
	mu   sync.RWMutex
	cred *Credential
}

// Option customises a Cache.
type Option func(*Cache)

// WithLogger sets the logger. The default discards output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithScratchFile mirrors the downloaded and refreshed blob to a local path.
func WithScratchFile(path string) Option {
	return func(c *Cache) { c.scratch = path }
}

// WithRefreshHook registers fn to run after each successful write-back.
func WithRefreshHook(fn func()) Option {
	return func(c *Cache) { c.onRefresh = fn }
}

// NewCache returns a Cache reading from store and refreshing with refresher.
func NewCache(store BlobStore, refresher Refresher, opts ...Option) *Cache {
	c := &Cache{
		store:     store,
		refresher: refresher,
		log:       slog.New(slog.DiscardHandler),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Obtain returns a valid credential. The first call reads the blob store;
// later calls reuse the in-memory copy, refreshing it (and writing it back)
// only if it has expired since. Callers get their own copy.
func (c *Cache) Obtain(ctx context.Context) (*Credential, error) {
	if cred := c.current(); cred != nil && cred.ValidAt(c.now()) {
		return cred.clone(), nil
	}

	v, err, _ := c.sf.Do(loadKey, func() (any, error) {
		cred := c.current()
		if cred != nil && cred.ValidAt(c.now()) {
			return cred, nil
		}

		if cred == nil {
			loaded, err := c.load(ctx)
			if err != nil {
				return nil, err
			}
			cred = loaded
		} else {
			cred = cred.clone()
		}

		if err := c.refreshIfExpired(ctx, cred); err != nil {
			return nil, err
		}
		if !cred.ValidAt(c.now()) {
			return nil, fmt.Errorf("%w: credential missing access token or expired", ErrAuthentication)
		}

		c.mu.Lock()
		c.cred = cred
		c.mu.Unlock()
		return cred, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Credential).clone(), nil
}

// TokenSource adapts the cache for google.golang.org/api clients.
func (c *Cache) TokenSource(ctx context.Context) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &cacheTokenSource{ctx: ctx, cache: c})
}

type cacheTokenSource struct {
	ctx   context.Context
	cache *Cache
}

func (s *cacheTokenSource) Token() (*oauth2.Token, error) {
	cred, err := s.cache.Obtain(s.ctx)
	if err != nil {
		return nil, err
	}
	return cred.OAuth2Token(), nil
}

func (c *Cache) current() *Credential {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cred
}

func (c *Cache) load(ctx context.Context) (*Credential, error) {
	data, err := c.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	c.mirror(data)

	cred, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	c.log.Debug("credential loaded", slog.Time("expiry", cred.Expiry))
	return cred, nil
}

func (c *Cache) refreshIfExpired(ctx context.Context, cred *Credential) error {
	if !cred.ExpiredAt(c.now()) || cred.RefreshToken == "" {
		return nil
	}

	if err := c.refresher.Refresh(ctx, cred); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	data, err := cred.Encode()
	if err != nil {
		return err
	}
	c.mirror(data)

	if err := c.store.Put(ctx, data); err != nil {
		return fmt.Errorf("write back refreshed credential: %w", err)
	}

	c.log.Info("credential refreshed", slog.Time("expiry", cred.Expiry))
	if c.onRefresh != nil {
		c.onRefresh()
	}
	return nil
}

// mirror copies the blob to the scratch file. Failures only cost the local copy.
func (c *Cache) mirror(data []byte) {
	if c.scratch == "" {
		return
	}
	if err := writeFileAtomic(c.scratch, data); err != nil {
		c.log.Warn("scratch credential copy failed", slog.String("path", c.scratch), slog.String("error", err.Error()))
	}
}
