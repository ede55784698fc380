package hits

import (
	"encoding/json"
	"time"
)

// Hit is one entry of a hits response. Fields the client does not use are
// kept in Extra so callers can pass them through untouched.
type Hit struct {
	Title   string  `json:"title"`
	URL     string  `json:"url,omitempty"`
	Score   float64 `json:"score,omitempty"`
	Summary string  `json:"summary,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownFields = []string{"title", "url", "score", "summary"}

func (h *Hit) UnmarshalJSON(data []byte) error {
	type plain Hit
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range knownFields {
		delete(all, k)
	}
	if len(all) > 0 {
		p.Extra = all
	}

	*h = Hit(p)
	return nil
}

type Response struct {
	Results    []Hit   `json:"results"`
	SearchTime float64 `json:"search_time"`
}

// Elapsed converts the reported search time (fractional seconds).
func (r *Response) Elapsed() time.Duration {
	if r == nil {
		return 0
	}
	return time.Duration(r.SearchTime * float64(time.Second))
}
