package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgomes/wikisearch/internal/hits"
)

type fakeBackend struct {
	suggestCalls atomic.Int32
	searchCalls  atomic.Int32
	lastK        atomic.Int32
	release      chan struct{}
	err          error
}

func (f *fakeBackend) Suggest(ctx context.Context, query string, k int) (*hits.Response, error) {
	f.suggestCalls.Add(1)
	f.lastK.Store(int32(k))
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &hits.Response{Results: []hits.Hit{{Title: query}}, SearchTime: 0.01}, nil
}

func (f *fakeBackend) Search(ctx context.Context, query string) (*hits.Response, error) {
	f.searchCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &hits.Response{Results: []hits.Hit{{Title: query, URL: "/wiki/" + query}}}, nil
}

func TestSuggest_UsesConfiguredLimit(t *testing.T) {
	backend := &fakeBackend{}
	s := New(backend, Options{SuggestLimit: 7})

	_, err := s.Suggest(context.Background(), "cat")
	require.NoError(t, err)
	assert.Equal(t, int32(7), backend.lastK.Load())
	assert.Equal(t, 7, s.SuggestLimit())
}

func TestSuggest_DefaultLimitIsFive(t *testing.T) {
	s := New(&fakeBackend{}, Options{})
	assert.Equal(t, 5, s.SuggestLimit())
}

func TestSuggest_CachesResponses(t *testing.T) {
	backend := &fakeBackend{}
	s := New(backend, Options{})

	first, err := s.Suggest(context.Background(), "cat")
	require.NoError(t, err)
	second, err := s.Suggest(context.Background(), "cat")
	require.NoError(t, err)

	assert.Equal(t, int32(1), backend.suggestCalls.Load())
	assert.Same(t, first, second)

	_, err = s.Suggest(context.Background(), "catalog")
	require.NoError(t, err)
	assert.Equal(t, int32(2), backend.suggestCalls.Load())
}

func TestSuggest_CacheExpires(t *testing.T) {
	backend := &fakeBackend{}
	s := New(backend, Options{CacheTTL: 20 * time.Millisecond})

	_, err := s.Suggest(context.Background(), "cat")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := s.Suggest(context.Background(), "cat")
		return err == nil && backend.suggestCalls.Load() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSuggest_ErrorsAreNotCached(t *testing.T) {
	backend := &fakeBackend{err: errors.New("down")}
	s := New(backend, Options{})

	_, err := s.Suggest(context.Background(), "cat")
	require.Error(t, err)

	backend.err = nil
	resp, err := s.Suggest(context.Background(), "cat")
	require.NoError(t, err)
	assert.Equal(t, "cat", resp.Results[0].Title)
	assert.Equal(t, int32(2), backend.suggestCalls.Load())
}

func TestSuggest_CollapsesConcurrentLookups(t *testing.T) {
	backend := &fakeBackend{release: make(chan struct{})}
	s := New(backend, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Suggest(context.Background(), "cat")
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool {
		return backend.suggestCalls.Load() == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(backend.release)
	wg.Wait()

	assert.Equal(t, int32(1), backend.suggestCalls.Load())
}

func TestSearch_NeverCached(t *testing.T) {
	backend := &fakeBackend{}
	s := New(backend, Options{})

	for i := 0; i < 3; i++ {
		resp, err := s.Search(context.Background(), "einstein")
		require.NoError(t, err)
		assert.Equal(t, "/wiki/einstein", resp.Results[0].URL)
	}
	assert.Equal(t, int32(3), backend.searchCalls.Load())
}

func TestSearch_WrapsErrors(t *testing.T) {
	backend := &fakeBackend{err: &hits.StatusError{Code: 500}}
	s := New(backend, Options{})

	_, err := s.Search(context.Background(), "einstein")
	require.Error(t, err)
	assert.True(t, hits.IsStatus(err))
}
