// Package record provides an insertion-ordered keyed collection used to walk
// fixed-shape chain and category records deterministically.
package record

// Record is a map that remembers the order in which keys were first set.
type Record[K comparable, V any] struct {
	keys    []K
	entries map[K]V
}

// New returns an empty record with room for capacity keys.
func New[K comparable, V any](capacity int) *Record[K, V] {
	return &Record[K, V]{
		keys:    make([]K, 0, capacity),
		entries: make(map[K]V, capacity),
	}
}

// FromMap builds a record from m, taking keys in the order given by order.
// Keys of m that are not listed in order are left out.
func FromMap[K comparable, V any](m map[K]V, order []K) *Record[K, V] {
	r := New[K, V](len(m))
	for _, k := range order {
		if v, ok := m[k]; ok {
			r.Set(k, v)
		}
	}
	return r
}

// Set stores v under k. A new key is appended to the key order; an existing
// key keeps its position.
func (r *Record[K, V]) Set(k K, v V) {
	if _, exists := r.entries[k]; !exists {
		r.keys = append(r.keys, k)
	}
	r.entries[k] = v
}

func (r *Record[K, V]) Get(k K) (V, bool) {
	v, ok := r.entries[k]
	return v, ok
}

func (r *Record[K, V]) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns a copy of the keys in order.
func (r *Record[K, V]) Keys() []K {
	if r == nil {
		return nil
	}
	out := make([]K, len(r.keys))
	copy(out, r.keys)
	return out
}

// Map returns the entries as a plain Go map.
func (r *Record[K, V]) Map() map[K]V {
	out := make(map[K]V, r.Len())
	if r == nil {
		return out
	}
	for _, k := range r.keys {
		out[k] = r.entries[k]
	}
	return out
}

// Values returns the values of r in key order.
func Values[K comparable, V any](r *Record[K, V]) []V {
	if r == nil {
		return []V{}
	}
	out := make([]V, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.entries[k])
	}
	return out
}

// MapValues returns a new record with the same keys in the same order, each
// value replaced by selector(value, key).
func MapValues[K comparable, V, T any](r *Record[K, V], selector func(V, K) T) *Record[K, T] {
	out := New[K, T](r.Len())
	if r == nil {
		return out
	}
	for _, k := range r.keys {
		out.Set(k, selector(r.entries[k], k))
	}
	return out
}
