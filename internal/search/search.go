package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/mgomes/wikisearch/internal/hits"
	"github.com/mgomes/wikisearch/internal/logging"
)

const (
	defaultSuggestLimit = 5
	defaultCacheSize    = 256
	defaultCacheTTL     = 5 * time.Minute
)

var log = logging.ForComponent(logging.CompSearch)

// Backend is the subset of *hits.Client the searcher needs.
type Backend interface {
	Suggest(ctx context.Context, query string, k int) (*hits.Response, error)
	Search(ctx context.Context, query string) (*hits.Response, error)
}

type Options struct {
	SuggestLimit int
	CacheSize    int
	CacheTTL     time.Duration
}

// Searcher fronts the endpoint for one session. Suggestions are cached in
// memory and concurrent identical lookups share one request; full searches
// always go to the endpoint.
type Searcher struct {
	backend      Backend
	suggestLimit int
	cache        *expirable.LRU[string, *hits.Response]
	group        singleflight.Group
}

func New(backend Backend, opts Options) *Searcher {
	if opts.SuggestLimit <= 0 {
		opts.SuggestLimit = defaultSuggestLimit
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}

	return &Searcher{
		backend:      backend,
		suggestLimit: opts.SuggestLimit,
		cache:        expirable.NewLRU[string, *hits.Response](opts.CacheSize, nil, opts.CacheTTL),
	}
}

func (s *Searcher) SuggestLimit() int {
	return s.suggestLimit
}

func (s *Searcher) Suggest(ctx context.Context, query string) (*hits.Response, error) {
	key := strconv.Itoa(s.suggestLimit) + "\x00" + query
	if resp, ok := s.cache.Get(key); ok {
		log.Debug("suggestion_cache_hit", slog.String("query", query))
		return resp, nil
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		resp, err := s.backend.Suggest(ctx, query, s.suggestLimit)
		if err != nil {
			return nil, err
		}
		s.cache.Add(key, resp)
		return resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("suggest %q: %w", query, err)
	}
	if shared {
		log.Debug("suggestion_shared", slog.String("query", query))
	}

	return v.(*hits.Response), nil
}

func (s *Searcher) Search(ctx context.Context, query string) (*hits.Response, error) {
	resp, err := s.backend.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return resp, nil
}
