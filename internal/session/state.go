package session

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/mgomes/wikisearch/internal/hits"
)

// State is everything the render layer reads.
type State struct {
	Query       string
	Suggestions []hits.Hit
	Results     []hits.Hit
	Loading     bool
	Err         string
	HasSearched bool
	Visibility  Visibility
	SearchTime  time.Duration
}

func (s State) SuggestionsVisible() bool {
	return s.Visibility == Visible
}

func (s State) clone() State {
	s.Suggestions = cloneHits(s.Suggestions)
	s.Results = cloneHits(s.Results)
	return s
}

func cloneHits(in []hits.Hit) []hits.Hit {
	if in == nil {
		return nil
	}
	out := make([]hits.Hit, len(in))
	copy(out, in)
	for i := range out {
		out[i].Extra = cloneExtra(out[i].Extra)
	}
	return out
}

func cloneExtra(in map[string]json.RawMessage) map[string]json.RawMessage {
	if in == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = bytes.Clone(v)
	}
	return out
}

// SuggestionsMsg carries a suggestion response back into the event loop.
type SuggestionsMsg struct {
	Gen      uint64
	Query    string
	Response *hits.Response
	Err      error
}

// ResultsMsg carries a full search response back into the event loop.
type ResultsMsg struct {
	Gen      uint64
	Query    string
	Response *hits.Response
	Err      error
}
