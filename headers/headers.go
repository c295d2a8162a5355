// Package headers implements the ordered, case-insensitive multimap spec.md
// §3 requires for both Request and Response: names preserved in original
// case, lookup case-insensitive, multiplicity preserved on the wire for
// headers like Set-Cookie.
//
// Grounded on shockwave/pkg/shockwave/http11/header.go's inline Header type
// (case-insensitive storage, explicit Add/Get/Del semantics) and bolt's
// preference for an ordered slice-backed structure over net/http.Header's
// map[string][]string, which canonicalizes keys and loses original casing.
// The fixed-size inline-array optimization in the teacher is zero-alloc
// scaffolding for its own benchmark suite; it is dropped here per DESIGN.md
// in favor of a plain growable slice, since this module's contract
// (ordered multimap, arbitrary header count) takes priority over the
// teacher's 32-header zero-allocation ceiling.
package headers

import "strings"

// entry is one name/value pair, stored with its original casing.
type entry struct {
	name  string
	value string
}

// Headers is an ordered, case-insensitive multimap.
type Headers struct {
	entries []entry
}

// New returns an empty Headers value.
func New() *Headers {
	return &Headers{}
}

// Clone returns a deep copy.
func (h *Headers) Clone() *Headers {
	if h == nil {
		return New()
	}
	out := &Headers{entries: make([]entry, len(h.entries))}
	copy(out.entries, h.entries)
	return out
}

func eqFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Add appends a name/value pair, preserving any existing values for name
// (required for Set-Cookie multiplicity).
func (h *Headers) Add(name, value string) {
	h.entries = append(h.entries, entry{name: name, value: value})
}

// Set removes all existing values for name (case-insensitive) and sets a
// single value.
func (h *Headers) Set(name, value string) {
	h.Del(name)
	h.Add(name, value)
}

// Get returns the first value for name, case-insensitive, or "" if absent.
func (h *Headers) Get(name string) string {
	for _, e := range h.entries {
		if eqFold(e.name, name) {
			return e.value
		}
	}
	return ""
}

// Values returns every value for name in insertion order.
func (h *Headers) Values(name string) []string {
	var out []string
	for _, e := range h.entries {
		if eqFold(e.name, name) {
			out = append(out, e.value)
		}
	}
	return out
}

// Has reports whether name is present, case-insensitive.
func (h *Headers) Has(name string) bool {
	for _, e := range h.entries {
		if eqFold(e.name, name) {
			return true
		}
	}
	return false
}

// Del removes every entry matching name, case-insensitive.
func (h *Headers) Del(name string) {
	out := h.entries[:0]
	for _, e := range h.entries {
		if !eqFold(e.name, name) {
			out = append(out, e)
		}
	}
	h.entries = out
}

// Len returns the number of stored entries (counting multiplicity).
func (h *Headers) Len() int {
	return len(h.entries)
}

// Range calls fn for every entry in insertion order. fn returning false
// stops iteration early.
func (h *Headers) Range(fn func(name, value string) bool) {
	for _, e := range h.entries {
		if !fn(e.name, e.value) {
			return
		}
	}
}

// Pairs returns the entries as [][2]string in insertion order, matching the
// bridge envelope's [[k,v],...] wire shape (spec.md §6.3).
func (h *Headers) Pairs() [][2]string {
	out := make([][2]string, len(h.entries))
	for i, e := range h.entries {
		out[i] = [2]string{e.name, e.value}
	}
	return out
}

// FromPairs rebuilds a Headers value from the bridge wire shape.
func FromPairs(pairs [][2]string) *Headers {
	h := &Headers{entries: make([]entry, 0, len(pairs))}
	for _, p := range pairs {
		h.entries = append(h.entries, entry{name: p[0], value: p[1]})
	}
	return h
}

// HopByHop is the set of headers meaningful only to a single transport
// connection (spec.md §6.2), filtered from the HTTP/2 response path and,
// per SPEC_FULL.md open-question D.1, from HTTP/1.1 responses too.
var HopByHop = map[string]struct{}{
	"connection":         {},
	"keep-alive":         {},
	"proxy-connection":   {},
	"transfer-encoding":  {},
	"upgrade":            {},
}

// IsHopByHop reports whether name (case-insensitive) is a hop-by-hop header.
func IsHopByHop(name string) bool {
	_, ok := HopByHop[strings.ToLower(name)]
	return ok
}

// StripHopByHop returns a copy of h with every hop-by-hop header removed.
func StripHopByHop(h *Headers) *Headers {
	out := New()
	h.Range(func(name, value string) bool {
		if !IsHopByHop(name) {
			out.Add(name, value)
		}
		return true
	})
	return out
}
