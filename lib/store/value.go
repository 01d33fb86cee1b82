package store

import (
	"cmp"
	"fmt"
	"reflect"

	gocmp "github.com/google/go-cmp/cmp"
)

// Cloner is implemented by element types that know how to deep copy themselves.
// Value.Take prefers it over the codec round trip.
type Cloner[V any] interface {
	Clone() V
}

// Value is the read-only result of Get, Last and the iterators.
//
// It is either owned (freshly decoded from the store, nobody else holds it) or
// borrowed (a copy of the cache entry). Go cannot stop a caller from mutating
// through pointers, slices or maps inside a borrowed value, so Take deep-copies
// borrowed values before handing them out; Get returns the value as is and must
// be treated as read-only.
type Value[V any] struct {
	v        V
	borrowed bool
	clone    func(V) V
}

func ownedValue[V any](v V) Value[V] {
	return Value[V]{v: v}
}

func borrowedValue[V any](v V, clone func(V) V) Value[V] {
	return Value[V]{v: v, borrowed: true, clone: clone}
}

// Get returns the wrapped value. Do not mutate it.
func (v Value[V]) Get() V {
	return v.v
}

// IsBorrowed reports whether the value came from the cache.
func (v Value[V]) IsBorrowed() bool {
	return v.borrowed
}

// Take returns a value the caller owns. Borrowed values are deep copied,
// using Clone if V implements Cloner, otherwise the collection's codec.
func (v Value[V]) Take() V {
	if !v.borrowed {
		return v.v
	}
	if c, ok := any(v.v).(Cloner[V]); ok {
		return c.Clone()
	}
	if v.clone != nil {
		return v.clone(v.v)
	}
	return v.v
}

// exportAll lets go-cmp look into unexported struct fields.
var exportAll = gocmp.Exporter(func(reflect.Type) bool { return true })

// Equal compares the wrapped value with a bare value.
// An Equal method on V is honoured.
func (v Value[V]) Equal(other V) bool {
	return gocmp.Equal(v.v, other, exportAll)
}

// String implements fmt.Stringer.
func (v Value[V]) String() string {
	return fmt.Sprint(v.v)
}

// CompareValue orders a Value against a bare value of an ordered type:
// -1 if v < other, 0 if equal, +1 if v > other.
func CompareValue[V cmp.Ordered](v Value[V], other V) int {
	return cmp.Compare(v.v, other)
}
