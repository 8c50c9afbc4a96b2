package services

import (
	"sync"
	"time"

	"github.com/golang/groupcache/lru"

	"techstore/internal/domain"
)

// ConfigSource supplies model configurations; *catalog.Catalog satisfies it.
type ConfigSource interface {
	Configuration(model string) domain.Configuration
}

// Selection is the variant a user is currently looking at.
type Selection struct {
	Model       string
	Config      domain.Configuration
	ColorIndex  int
	MemoryIndex int
	Color       string
	Variant     domain.Variant
}

type selectionState struct {
	model   string
	color   int
	memory  int
	touched time.Time
}

// SelectionStore keeps the per-user colour/memory cursor. Entries are evicted
// least-recently-used beyond capacity and after ttl of inactivity.
type SelectionStore struct {
	mu    sync.Mutex
	cache *lru.Cache
	ttl   time.Duration
	src   ConfigSource
	Now   func() time.Time
}

func NewSelectionStore(src ConfigSource, capacity int, ttl time.Duration) *SelectionStore {
	if capacity <= 0 {
		capacity = 10000
	}
	return &SelectionStore{cache: lru.New(capacity), ttl: ttl, src: src, Now: time.Now}
}

// Open starts browsing model at its first colour and memory variant.
func (s *SelectionStore) Open(userID int64, model string) (Selection, error) {
	cfg := s.src.Configuration(model)
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &selectionState{model: model, touched: s.Now()}
	s.cache.Add(userID, st)
	if cfg.Empty() {
		return Selection{Model: model, Config: cfg}, domain.ErrNotFound
	}
	return resolve(st, cfg), nil
}

// Current returns the selection for model, restarting at (0,0) when the user
// has no live session for it.
func (s *SelectionStore) Current(userID int64, model string) (Selection, error) {
	cfg := s.src.Configuration(model)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.Empty() {
		return Selection{Model: model, Config: cfg}, domain.ErrNotFound
	}
	st := s.state(userID, model)
	clamp(st, cfg)
	return resolve(st, cfg), nil
}

// Cycle moves one axis of the cursor, wrapping both ways. An axis with a
// single value returns ErrSingleOption and leaves the cursor alone.
func (s *SelectionStore) Cycle(userID int64, model string, axis domain.Axis, dir domain.Direction) (Selection, error) {
	cfg := s.src.Configuration(model)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.Empty() {
		return Selection{Model: model, Config: cfg}, domain.ErrNotFound
	}
	st := s.state(userID, model)
	clamp(st, cfg)

	n := cfg.ColorCount()
	if axis == domain.AxisMemory {
		n = cfg.MemoryCount(st.color)
	}
	if n <= 1 {
		return resolve(st, cfg), domain.ErrSingleOption
	}
	switch axis {
	case domain.AxisColor:
		st.color = wrap(st.color+int(dir), n)
		clamp(st, cfg)
	case domain.AxisMemory:
		st.memory = wrap(st.memory+int(dir), n)
	}
	return resolve(st, cfg), nil
}

func (s *SelectionStore) Forget(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(userID)
}

func (s *SelectionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

// state returns the live entry for (user, model), replacing expired entries
// and entries for another model with a fresh one. Caller holds mu.
func (s *SelectionStore) state(userID int64, model string) *selectionState {
	now := s.Now()
	if v, ok := s.cache.Get(userID); ok {
		st := v.(*selectionState)
		if st.model == model && (s.ttl <= 0 || now.Sub(st.touched) <= s.ttl) {
			st.touched = now
			return st
		}
	}
	st := &selectionState{model: model, touched: now}
	s.cache.Add(userID, st)
	return st
}

// clamp resets indices the configuration no longer has, e.g. after stock
// ran out between renders.
func clamp(st *selectionState, cfg domain.Configuration) {
	if st.color < 0 || st.color >= cfg.ColorCount() {
		st.color, st.memory = 0, 0
	}
	if st.memory < 0 || st.memory >= cfg.MemoryCount(st.color) {
		st.memory = 0
	}
}

func resolve(st *selectionState, cfg domain.Configuration) Selection {
	g, v, _ := cfg.At(st.color, st.memory)
	return Selection{
		Model:       st.model,
		Config:      cfg,
		ColorIndex:  st.color,
		MemoryIndex: st.memory,
		Color:       g.Color,
		Variant:     v,
	}
}

func wrap(i, n int) int { return ((i % n) + n) % n }
