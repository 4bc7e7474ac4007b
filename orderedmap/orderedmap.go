// Ordered map container.
// Works like the Go `map` built-in, but preserves the order that key/value
// pairs were added when iterating — used by dom.Element to hold XML
// attributes, where source order has to survive the attribute-copying and
// cleanup passes.

package orderedmap

import (
	wk8orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is a thin, domain-neutral wrapper around go-ordered-map/v2 so callers
// don't depend on the third-party type directly.
type Map[K comparable, V any] struct {
	inner *wk8orderedmap.OrderedMap[K, V]
}

// Pair is a single key/value entry, usable for forward iteration via Next.
type Pair[K comparable, V any] struct {
	inner *wk8orderedmap.Pair[K, V]
}

// New creates an empty ordered map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{inner: wk8orderedmap.New[K, V]()}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	if m == nil || m.inner == nil {
		return 0
	}
	return m.inner.Len()
}

// Get returns the value for key and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if m == nil || m.inner == nil {
		var zero V
		return zero, false
	}
	return m.inner.Get(key)
}

// GetOrZero returns the value for key, or the zero value if absent.
func (m *Map[K, V]) GetOrZero(key K) V {
	v, _ := m.Get(key)
	return v
}

// Set inserts or updates key, preserving original insertion order on
// update and appending on first insertion.
func (m *Map[K, V]) Set(key K, value V) {
	if m.inner == nil {
		m.inner = wk8orderedmap.New[K, V]()
	}
	m.inner.Set(key, value)
}

// Delete removes key if present.
func (m *Map[K, V]) Delete(key K) (V, bool) {
	if m == nil || m.inner == nil {
		var zero V
		return zero, false
	}
	return m.inner.Delete(key)
}

// First returns the oldest pair for forward iteration, or nil if empty.
func (m *Map[K, V]) First() *Pair[K, V] {
	if m == nil || m.inner == nil {
		return nil
	}
	p := m.inner.Oldest()
	if p == nil {
		return nil
	}
	return &Pair[K, V]{inner: p}
}

// Next returns the following pair, or nil after the last one.
func (p *Pair[K, V]) Next() *Pair[K, V] {
	n := p.inner.Next()
	if n == nil {
		return nil
	}
	return &Pair[K, V]{inner: n}
}

func (p *Pair[K, V]) Key() K   { return p.inner.Key }
func (p *Pair[K, V]) Value() V { return p.inner.Value }

// Keys returns every key in insertion order.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.Len())
	for p := m.First(); p != nil; p = p.Next() {
		keys = append(keys, p.Key())
	}
	return keys
}

// Len is a nil-safe way to get the length of anything shaped like a Map.
func Len[K comparable, V any](m *Map[K, V]) int {
	return m.Len()
}
