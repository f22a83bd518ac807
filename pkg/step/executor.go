package step

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Func is the unit of work executed by a step. Implementations must be safe
// to re-invoke: the executor decides whether a cached result is returned
// instead of calling the function again.
type Func func(ctx context.Context) (any, error)

// Executor runs a named step at most once per logical run and decodes the
// (possibly cached) result into result, which must be a pointer or nil when
// the caller does not need the value.
//
// How "at most once" is enforced is entirely up to the implementation: the
// Temporal-backed executor records results in workflow history, Memo keeps an
// in-process cache, Direct does not cache at all.
type Executor interface {
	Run(ctx context.Context, stepID string, fn Func, result any) error
}

// Direct executes every step immediately with no caching. It is the behavior
// wrapped tools fall back to when no ambient executor is installed.
type Direct struct{}

// Run executes fn and decodes its value into result.
func (Direct) Run(ctx context.Context, stepID string, fn Func, result any) error {
	v, err := fn(ctx)
	if err != nil {
		return err
	}
	return decodeResult(stepID, v, result)
}

// Memo is an in-process Executor that caches step results the way a replaying
// durability runtime would: by step ID and occurrence. Repeated invocations of
// the same step ID within one pass are distinct occurrences and each runs
// fresh, so a tool called twice with different inputs never sees the first
// call's result. Cached values are only returned when the same pass is
// replayed via Replay. Intended for tests and local development.
type Memo struct {
	mu    sync.Mutex
	cache map[string][]byte
	seen  map[string]int
}

// NewMemo creates an empty in-process memoizing executor.
func NewMemo() *Memo {
	return &Memo{
		cache: make(map[string][]byte),
		seen:  make(map[string]int),
	}
}

// Run returns the cached result for this occurrence of stepID if present,
// otherwise executes fn and caches its encoded value. A failed execution does
// not consume the occurrence, so retrying the call lands on the same slot.
func (m *Memo) Run(ctx context.Context, stepID string, fn Func, result any) error {
	m.mu.Lock()
	n := m.seen[stepID]
	key := occurrenceKey(stepID, n)
	if cached, ok := m.cache[key]; ok {
		m.seen[stepID] = n + 1
		m.mu.Unlock()
		return unmarshalResult(stepID, cached, result)
	}
	m.mu.Unlock()

	v, err := fn(ctx)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding step %q result: %w", stepID, err)
	}

	m.mu.Lock()
	if prev, ok := m.cache[key]; ok {
		encoded = prev
	} else {
		m.cache[key] = encoded
	}
	m.seen[stepID] = n + 1
	m.mu.Unlock()

	return unmarshalResult(stepID, encoded, result)
}

// Replay rewinds the occurrence counters while keeping the cache, simulating
// a fresh execution of the same logical run. Steps re-run in the same order
// then resolve from cache without executing.
func (m *Memo) Replay() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = make(map[string]int)
}

// Len reports the number of cached step occurrences.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}

func occurrenceKey(stepID string, n int) string {
	if n == 0 {
		return stepID
	}
	return fmt.Sprintf("%s:%d", stepID, n)
}

// decodeResult round-trips v through JSON into result so that the direct path
// observes exactly the same value shapes as a cache hit would produce.
func decodeResult(stepID string, v any, result any) error {
	if result == nil {
		return nil
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding step %q result: %w", stepID, err)
	}
	return unmarshalResult(stepID, encoded, result)
}

func unmarshalResult(stepID string, encoded []byte, result any) error {
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(encoded, result); err != nil {
		return fmt.Errorf("decoding step %q result: %w", stepID, err)
	}
	return nil
}
