package session

import (
	"context"
	"sync"
	"time"

	"github.com/mgomes/wikisearch/internal/hits"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// elapse fires every timer that has not been stopped.
func (c *fakeClock) elapse() {
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			t.f()
		}
	}
}

func (c *fakeClock) active() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeReply struct {
	resp *hits.Response
	err  error
}

type fakeFetcher struct {
	mu         sync.Mutex
	suggest    map[string]fakeReply
	search     map[string]fakeReply
	suggested  []string
	searched   []string
	searchCtxs []context.Context
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		suggest: make(map[string]fakeReply),
		search:  make(map[string]fakeReply),
	}
}

func (f *fakeFetcher) Suggest(ctx context.Context, query string) (*hits.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggested = append(f.suggested, query)
	r := f.suggest[query]
	return r.resp, r.err
}

func (f *fakeFetcher) Search(ctx context.Context, query string) (*hits.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searched = append(f.searched, query)
	f.searchCtxs = append(f.searchCtxs, ctx)
	r := f.search[query]
	return r.resp, r.err
}

func titles(hs []hits.Hit) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.Title
	}
	return out
}

func response(searchTime float64, ts ...string) *hits.Response {
	resp := &hits.Response{SearchTime: searchTime, Results: []hits.Hit{}}
	for _, t := range ts {
		resp.Results = append(resp.Results, hits.Hit{Title: t})
	}
	return resp
}
