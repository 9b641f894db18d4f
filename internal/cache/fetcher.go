package cache

import (
	"context"

	"github.com/rs/zerolog"

	"chatview/internal/attach"
)

// CachingFetcher serves attachment bytes from the store and falls through to
// the wrapped getter on a miss. Cache errors are logged and never fail a
// fetch.
type CachingFetcher struct {
	Store *Store
	Next  attach.Getter
	Log   zerolog.Logger
}

func (c *CachingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if c.Store != nil {
		e, ok, err := c.Store.Get(ctx, url)
		if err != nil {
			c.Log.Warn().Err(err).Str("component", "cache").Msg("cache read failed")
		} else if ok {
			c.Log.Debug().Str("component", "cache").Str("url", url).Int64("size", e.Size).Msg("cache hit")
			return e.Data, nil
		}
	}
	b, err := c.Next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if c.Store != nil {
		if err := c.Store.Put(ctx, url, b); err != nil {
			c.Log.Warn().Err(err).Str("component", "cache").Msg("cache write failed")
		}
	}
	return b, nil
}
