package domain

// Record is an ordered string->Value mapping. Keys are case-sensitive. A
// Record is mutable for the lifetime of a single pipeline traversal and then
// dropped (SPEC_FULL.md §3): the Entry Loop owns it exclusively while routing
// it through the workflow.
//
// An ordered map is used (rather than a bare map[string]Value) for the same
// reason the configuration chain mapping needs one: deterministic iteration
// matters for logging and for any future Value-of-a-Record use, even though
// field lookups by name are the overwhelmingly common operation.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord returns an empty Record ready for field insertion.
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Get returns the field's Value and whether it was present.
func (r *Record) Get(field string) (Value, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Set inserts or overwrites field with value. Insertion order is preserved
// for new keys; overwriting an existing key does not move it.
func (r *Record) Set(field string, value Value) {
	if _, exists := r.values[field]; !exists {
		r.keys = append(r.keys, field)
	}
	r.values[field] = value
}

// Delete removes field, if present.
func (r *Record) Delete(field string) {
	if _, exists := r.values[field]; !exists {
		return
	}
	delete(r.values, field)
	for i, k := range r.keys {
		if k == field {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns field names in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.keys) }

// Clone returns a deep-enough copy (Values are immutable, so a shallow value
// copy of the backing map/slice suffices).
func (r *Record) Clone() *Record {
	cp := &Record{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]Value, len(r.values)),
	}
	copy(cp.keys, r.keys)
	for k, v := range r.values {
		cp.values[k] = v
	}
	return cp
}

// GetString is a convenience accessor returning the field's string form only
// when the field exists and is itself a string Value (the same rule the
// Template substitution algorithm uses, SPEC_FULL.md §4.1).
func (r *Record) GetString(field string) (string, bool) {
	v, ok := r.Get(field)
	if !ok {
		return "", false
	}
	return v.AsString()
}
