// Package session holds the search session controller: it owns the session
// state and turns input events into debounced suggestion lookups and
// latest-wins search requests.
//
// All Controller methods must be called from a single goroutine (the Bubble
// Tea update loop). Network work runs inside the returned tea.Cmd values and
// comes back as SuggestionsMsg / ResultsMsg tagged with the generation that
// was current when the request was sent; replies for older generations are
// dropped.
package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgomes/wikisearch/internal/hits"
	"github.com/mgomes/wikisearch/internal/logging"
)

// SearchFailed is the user-visible message for a failed search.
const SearchFailed = "Search failed"

type Fetcher interface {
	Suggest(ctx context.Context, query string) (*hits.Response, error)
	Search(ctx context.Context, query string) (*hits.Response, error)
}

type Options struct {
	Debounce  time.Duration
	AfterFunc AfterFunc
	Logger    *slog.Logger
}

type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc

	fetcher   Fetcher
	debouncer *Debouncer
	log       *slog.Logger

	state        State
	suggestGen   uint64
	searchGen    uint64
	cancelSearch context.CancelFunc
	closed       bool
}

func New(ctx context.Context, fetcher Fetcher, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = logging.ForComponent(logging.CompSession)
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Controller{
		ctx:       ctx,
		cancel:    cancel,
		fetcher:   fetcher,
		debouncer: NewDebouncer(opts.Debounce, opts.AfterFunc),
		log:       logger,
	}
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	return c.state.clone()
}

// QueryChanged records a keystroke. Blank text clears the suggestions right
// away; anything else (re)starts the debounce timer.
func (c *Controller) QueryChanged(text string) {
	c.state.Query = text
	c.state.Visibility = Transition(c.state.Visibility, EventInput, text)

	if strings.TrimSpace(text) == "" {
		c.debouncer.Cancel()
		c.clearSuggestions()
		return
	}
	if !c.closed {
		c.debouncer.Schedule(text)
	}
}

// Focus reports that the input gained focus.
func (c *Controller) Focus() {
	c.state.Visibility = Transition(c.state.Visibility, EventFocus, c.state.Query)
}

// Dismiss reports an interaction outside the input and dropdown.
func (c *Controller) Dismiss() {
	c.state.Visibility = Transition(c.state.Visibility, EventOutside, c.state.Query)
}

// Submit starts a search for the current query.
func (c *Controller) Submit() tea.Cmd {
	return c.submit(c.state.Query)
}

// Pick replaces the query with a suggestion title and searches for it.
func (c *Controller) Pick(title string) tea.Cmd {
	c.state.Visibility = Transition(c.state.Visibility, EventPick, title)
	return c.SubmitQuery(title)
}

// SubmitQuery replaces the query and searches for it without asking for
// suggestions. Suggestion replies for the replaced query are dropped.
func (c *Controller) SubmitQuery(text string) tea.Cmd {
	c.state.Query = text
	c.debouncer.Cancel()
	c.suggestGen++
	return c.submit(text)
}

// Listen waits for the next settled query. Re-arm it after every Settled.
func (c *Controller) Listen() tea.Cmd {
	ch := c.debouncer.C()
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return s
	}
}

// Update applies a message produced by Listen or by a fetch command.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case Settled:
		return c.handleSettled(msg)
	case SuggestionsMsg:
		c.handleSuggestions(msg)
	case ResultsMsg:
		c.handleResults(msg)
	}
	return nil
}

func (c *Controller) SetDebounce(d time.Duration) {
	c.debouncer.SetDelay(d)
}

// Close stops the debounce timer and aborts in-flight requests.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.debouncer.Close()
	c.cancel()
}

func (c *Controller) clearSuggestions() {
	c.suggestGen++
	c.state.Suggestions = nil
}

func (c *Controller) handleSettled(msg Settled) tea.Cmd {
	if c.closed || msg.Seq != c.debouncer.Current() {
		return nil
	}
	if strings.TrimSpace(msg.Text) == "" {
		c.clearSuggestions()
		return nil
	}

	c.suggestGen++
	gen := c.suggestGen
	ctx := c.ctx
	fetcher := c.fetcher
	text := msg.Text

	return func() tea.Msg {
		resp, err := fetcher.Suggest(ctx, text)
		return SuggestionsMsg{Gen: gen, Query: text, Response: resp, Err: err}
	}
}

func (c *Controller) handleSuggestions(msg SuggestionsMsg) {
	if msg.Gen != c.suggestGen {
		c.log.Debug("suggestion_stale",
			slog.String("query", msg.Query),
			slog.Uint64("gen", msg.Gen),
			slog.Uint64("latest", c.suggestGen),
		)
		return
	}
	if msg.Err != nil {
		c.log.Warn("suggestion_fetch_failed",
			slog.String("query", msg.Query),
			slog.String("error", msg.Err.Error()),
		)
		return
	}

	c.state.Suggestions = resultsOf(msg.Response)
	c.state.SearchTime = msg.Response.Elapsed()
}

func (c *Controller) submit(text string) tea.Cmd {
	if c.closed || strings.TrimSpace(text) == "" {
		return nil
	}

	c.state.Loading = true
	c.state.Err = ""
	c.state.HasSearched = true
	c.state.Visibility = Transition(c.state.Visibility, EventSubmit, text)

	if c.cancelSearch != nil {
		c.log.Debug("search_superseded", slog.Uint64("gen", c.searchGen))
		c.cancelSearch()
	}

	c.searchGen++
	gen := c.searchGen
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelSearch = cancel
	fetcher := c.fetcher

	c.log.Info("search_submitted", slog.String("query", text), slog.Uint64("gen", gen))

	return func() tea.Msg {
		resp, err := fetcher.Search(ctx, text)
		return ResultsMsg{Gen: gen, Query: text, Response: resp, Err: err}
	}
}

func (c *Controller) handleResults(msg ResultsMsg) {
	if msg.Gen != c.searchGen {
		c.log.Debug("search_response_discarded",
			slog.String("query", msg.Query),
			slog.Uint64("gen", msg.Gen),
			slog.Uint64("latest", c.searchGen),
		)
		return
	}
	if c.cancelSearch != nil {
		c.cancelSearch()
		c.cancelSearch = nil
	}

	c.state.Loading = false
	if msg.Err != nil {
		c.state.Err = searchErrorMessage(msg.Err)
		c.log.Error("search_failed",
			slog.String("query", msg.Query),
			slog.String("error", msg.Err.Error()),
		)
		return
	}

	c.state.Results = resultsOf(msg.Response)
	c.state.SearchTime = msg.Response.Elapsed()
}

func resultsOf(resp *hits.Response) []hits.Hit {
	if resp == nil || len(resp.Results) == 0 {
		return []hits.Hit{}
	}
	return cloneHits(resp.Results)
}

func searchErrorMessage(err error) string {
	if hits.IsStatus(err) {
		return SearchFailed
	}
	return SearchFailed + ": " + err.Error()
}
