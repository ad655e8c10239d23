package wire

import "strings"

// Header is a case-insensitive header map that remembers insertion order.
//
// Keys are lower-cased on every write and read. Setting an existing key
// replaces its value in place, so the position of the first insertion is
// kept for serialization.
type Header struct {
	keys   []string
	values map[string]string
}

// NewHeader creates an empty Header.
func NewHeader() *Header {
	return &Header{values: make(map[string]string)}
}

// Set stores value under the lower-cased key. The last write wins.
func (h *Header) Set(key, value string) {
	k := strings.ToLower(key)
	if _, ok := h.values[k]; !ok {
		h.keys = append(h.keys, k)
	}
	h.values[k] = value
}

// Get returns the value stored under key, or "" when absent.
func (h *Header) Get(key string) string {
	return h.values[strings.ToLower(key)]
}

// Lookup returns the value stored under key and whether it was present.
func (h *Header) Lookup(key string) (string, bool) {
	v, ok := h.values[strings.ToLower(key)]
	return v, ok
}

// Del removes key.
func (h *Header) Del(key string) {
	k := strings.ToLower(key)
	if _, ok := h.values[k]; !ok {
		return
	}
	delete(h.values, k)
	for i, existing := range h.keys {
		if existing == k {
			h.keys = append(h.keys[:i], h.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of stored headers.
func (h *Header) Len() int {
	return len(h.keys)
}

// Keys returns the lower-cased keys in insertion order.
func (h *Header) Keys() []string {
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// Each calls fn for every header in insertion order.
func (h *Header) Each(fn func(key, value string)) {
	for _, k := range h.keys {
		fn(k, h.values[k])
	}
}
