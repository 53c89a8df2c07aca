// Package suggestion keeps a bounded, persisted log of past queries and turns it
// into follow-up questions for the next turn.
package suggestion

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// HistoryCapacity bounds the log; the oldest entries are evicted first.
	HistoryCapacity = 50
	// DefaultRecentLimit is used when RecentQueries gets a non-positive limit.
	DefaultRecentLimit = 10
	popularLimit       = 5
)

// HistoryEntry is one recorded query. Timestamp is in Unix milliseconds.
type HistoryEntry struct {
	Query      string   `json:"query"`
	Timestamp  int64    `json:"timestamp"`
	ToolsUsed  []string `json:"toolsUsed"`
	HasResults bool     `json:"hasResults"`
}

// PopularQuery is a normalized query and how often it was asked.
type PopularQuery struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

type Option func(*Engine)

func WithLogger(l Logger) Option { return func(e *Engine) { e.logger = l } }

func WithSelector(s Selector) Option { return func(e *Engine) { e.selector = s } }

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// Engine owns the history log. It is safe for concurrent use.
type Engine struct {
	store    Store
	logger   Logger
	selector Selector
	now      func() time.Time

	mu          sync.RWMutex
	history     []HistoryEntry
	suggestions []string
}

// New loads the history log from store. An unreadable or corrupt log is logged
// and treated as empty.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		logger:   nopLogger{},
		selector: FirstAvailable{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	history, err := e.load()
	if err != nil {
		e.logger.Warn(logModule, "history unavailable, starting empty", map[string]interface{}{"error": err.Error()})
	}
	e.history = history
	e.suggestions = ComputeSuggestions(e.history, e.selector)
	return e
}

// RecordQuery appends a query to the log and recomputes suggestions. The
// in-memory log is always updated; a returned error only means the write to
// the store failed.
func (e *Engine) RecordQuery(query string, toolsUsed []string, hasResults bool) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	entry := HistoryEntry{
		Query:      query,
		Timestamp:  e.now().UnixMilli(),
		ToolsUsed:  append([]string{}, toolsUsed...),
		HasResults: hasResults,
	}

	e.mu.Lock()
	e.history = append(e.history, entry)
	if over := len(e.history) - HistoryCapacity; over > 0 {
		e.history = append([]HistoryEntry(nil), e.history[over:]...)
	}
	e.suggestions = ComputeSuggestions(e.history, e.selector)
	err := e.persistLocked()
	e.mu.Unlock()

	if err != nil {
		e.logger.Error(logModule, "failed to persist history", map[string]interface{}{"error": err.Error()})
	}
	return err
}

// ClearHistory empties the log and resets suggestions to the base list.
func (e *Engine) ClearHistory() error {
	e.mu.Lock()
	e.history = nil
	e.suggestions = BaseSuggestions()
	err := e.store.Remove(StorageKey)
	e.mu.Unlock()

	if err != nil {
		err = fmt.Errorf("%w: remove: %v", ErrPersistence, err)
		e.logger.Error(logModule, "failed to clear stored history", map[string]interface{}{"error": err.Error()})
	}
	return err
}

// Suggestions returns the current suggestion list.
func (e *Engine) Suggestions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.suggestions...)
}

// History returns a copy of the log, oldest first.
func (e *Engine) History() []HistoryEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]HistoryEntry(nil), e.history...)
}

// RecentQueries returns up to limit entries, most recent first.
func (e *Engine) RecentQueries(limit int) []HistoryEntry {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	if limit > len(e.history) {
		limit = len(e.history)
	}
	out := make([]HistoryEntry, 0, limit)
	for i := len(e.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, e.history[i])
	}
	return out
}

// PopularQueries ranks normalized queries by count, ties by first appearance.
func (e *Engine) PopularQueries() []PopularQuery {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return rankPopular(e.history, popularLimit)
}

func rankPopular(history []HistoryEntry, limit int) []PopularQuery {
	index := make(map[string]int)
	var ranked []PopularQuery
	for _, h := range history {
		q := normalize(h.Query)
		if q == "" {
			continue
		}
		if i, ok := index[q]; ok {
			ranked[i].Count++
			continue
		}
		index[q] = len(ranked)
		ranked = append(ranked, PopularQuery{Query: q, Count: 1})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func (e *Engine) load() ([]HistoryEntry, error) {
	raw, found, err := e.store.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrPersistence, err)
	}
	if !found || raw == "" {
		return nil, nil
	}

	var history []HistoryEntry
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrPersistence, err)
	}
	if over := len(history) - HistoryCapacity; over > 0 {
		history = history[over:]
	}
	return history, nil
}

func (e *Engine) persistLocked() error {
	data, err := json.Marshal(e.history)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}
	if err := e.store.Set(StorageKey, string(data)); err != nil {
		return fmt.Errorf("%w: write: %v", ErrPersistence, err)
	}
	return nil
}
