// Package search implements the suggestion engine behind the search overlay:
// a debounced case-insensitive substring filter over the catalog and the
// decorative placeholder rotation that runs while the overlay is open.
package search

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"dishuflix/internal/catalog"
	"dishuflix/internal/clock"
	"dishuflix/internal/config"
	"dishuflix/internal/errors"
	"dishuflix/internal/metrics"
)

// State is a snapshot of the search session.
type State struct {
	Open        bool           `json:"open"`
	Query       string         `json:"query"`
	Suggestions []catalog.Item `json:"suggestions"`
	NoMatches   bool           `json:"no_matches"`
	Placeholder string         `json:"placeholder"`
}

type Engine struct {
	index    *catalog.Index
	items    []catalog.Item
	folded   []string
	clock    clock.Clock
	logger   zerolog.Logger
	debounce time.Duration
	minQuery int
	limit    int
	cache    *lru.Cache[string, []int]
	rotator  *Rotator

	mu          sync.Mutex
	open        bool
	query       string
	suggestions []catalog.Item
	noMatches   bool
	gen         uint64
	pending     clock.Timer
}

func New(index *catalog.Index, cfg config.SearchConfig, clk clock.Clock, logger zerolog.Logger) (*Engine, error) {
	cache, err := lru.New[string, []int](cfg.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "suggestion cache")
	}

	e := &Engine{
		index:    index,
		items:    index.Items(),
		clock:    clk,
		logger:   logger.With().Str("component", "search").Logger(),
		debounce: cfg.Debounce,
		minQuery: cfg.MinQuery,
		limit:    cfg.MaxSuggestions,
		cache:    cache,
		rotator:  NewRotator(DefaultPhrases, timingFrom(cfg)),
	}

	fold := cases.Fold()
	e.folded = make([]string, len(e.items))
	for i, item := range e.items {
		e.folded[i] = fold.String(item.Title)
	}
	return e, nil
}

// Open shows the search surface and starts the placeholder rotation.
func (e *Engine) Open() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.open {
		return
	}
	e.open = true
	e.rotator.Start(e.clock)
	e.logger.Debug().Msg("search opened")
}

// Close hides the search surface, tears down the rotation and drops any
// pending recompute together with the session's query and suggestions.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.open {
		e.logger.Debug().Msg("search closed")
	}
	e.open = false
	e.rotator.Stop()
	e.cancelPending()
	e.gen++
	e.query = ""
	e.suggestions = nil
	e.noMatches = false
}

func (e *Engine) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// SetQuery records text and schedules a recompute after the debounce window,
// replacing any recompute still pending. Queries shorter than the minimum
// clear the suggestions at once.
func (e *Engine) SetQuery(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.query = text
	e.gen++
	gen := e.gen
	e.cancelPending()

	q := strings.TrimSpace(text)
	if utf8.RuneCountInString(q) < e.minQuery {
		e.suggestions = nil
		e.noMatches = false
		return
	}

	e.pending = e.clock.AfterFunc(e.debounce, func() {
		e.recompute(gen, q)
	})
}

// cancelPending stops the pending recompute. Callers hold e.mu.
func (e *Engine) cancelPending() {
	if e.pending == nil {
		return
	}
	if e.pending.Stop() {
		metrics.SearchSuperseded.Inc()
	}
	e.pending = nil
}

func (e *Engine) recompute(gen uint64, q string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		metrics.SearchSuperseded.Inc()
		return
	}
	e.pending = nil
	e.suggestions = e.match(q)
	e.noMatches = len(e.suggestions) == 0
	metrics.SearchRecomputes.Inc()
	e.logger.Debug().Str("query", q).Int("suggestions", len(e.suggestions)).Msg("suggestions recomputed")
}

// match returns up to limit items whose title contains q, in catalog order.
func (e *Engine) match(q string) []catalog.Item {
	key := cases.Fold().String(q)

	positions, ok := e.cache.Get(key)
	if ok {
		metrics.SearchCacheHits.Inc()
	} else {
		for i, title := range e.folded {
			if len(positions) == e.limit {
				break
			}
			if strings.Contains(title, key) {
				positions = append(positions, i)
			}
		}
		e.cache.Add(key, positions)
	}

	out := make([]catalog.Item, 0, len(positions))
	for _, i := range positions {
		out = append(out, e.items[i])
	}
	return out
}

// Suggestions returns the last applied suggestion list.
func (e *Engine) Suggestions() []catalog.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]catalog.Item(nil), e.suggestions...)
}

func (e *Engine) NoMatches() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.noMatches
}

// Placeholder returns the visible part of the rotating example phrase.
func (e *Engine) Placeholder() string {
	return e.rotator.Text()
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return State{
		Open:        e.open,
		Query:       e.query,
		Suggestions: append([]catalog.Item(nil), e.suggestions...),
		NoMatches:   e.noMatches,
		Placeholder: e.rotator.Text(),
	}
}

// Submit returns the trimmed query as the key to hand to playback.
func (e *Engine) Submit(query string) (string, error) {
	key := strings.TrimSpace(query)
	if key == "" {
		return "", errors.Validation("search query must not be empty")
	}
	return key, nil
}

// SelectSuggestion submits the exact title of the suggested item.
func (e *Engine) SelectSuggestion(id int) (string, error) {
	item, ok := e.index.Lookup(id)
	if !ok {
		return "", errors.NotFoundf("title %d not found", id)
	}
	return item.Title, nil
}
