package store

import (
	"testing"

	"github.com/ValentinKolb/fundb/lib/codec"
	"github.com/stretchr/testify/assert"
)

type tags struct {
	Names []string
}

type clonedTags struct {
	names  []string
	clones *int
}

func (c clonedTags) Clone() clonedTags {
	*c.clones++
	return clonedTags{names: append([]string(nil), c.names...), clones: c.clones}
}

// TestValueOwned tests that an owned value is handed out as is
func TestValueOwned(t *testing.T) {
	v := ownedValue(tags{Names: []string{"a"}})

	assert.False(t, v.IsBorrowed())
	taken := v.Take()
	taken.Names[0] = "b"
	assert.Equal(t, "b", v.Get().Names[0])
}

// TestValueBorrowedTakeCopies tests that taking a borrowed value never aliases the source
func TestValueBorrowedTakeCopies(t *testing.T) {
	src := tags{Names: []string{"a", "b"}}
	v := borrowedValue(src, codecClone(codec.NewJSONCodec[tags]()))

	assert.True(t, v.IsBorrowed())
	taken := v.Take()
	taken.Names[0] = "changed"

	assert.Equal(t, "a", src.Names[0])
	assert.True(t, v.Equal(tags{Names: []string{"a", "b"}}))
}

// TestValueBorrowedPrefersCloner tests that Clone is used instead of the codec
func TestValueBorrowedPrefersCloner(t *testing.T) {
	clones := 0
	src := clonedTags{names: []string{"x"}, clones: &clones}
	v := borrowedValue(src, func(clonedTags) clonedTags {
		t.Fatal("codec clone must not be used")
		return clonedTags{}
	})

	taken := v.Take()
	taken.names[0] = "y"
	assert.Equal(t, 1, clones)
	assert.Equal(t, "x", src.names[0])
}

// TestValueCompare tests equality and ordering against bare values
func TestValueCompare(t *testing.T) {
	v := ownedValue(10)

	assert.True(t, v.Equal(10))
	assert.False(t, v.Equal(11))
	assert.Equal(t, -1, CompareValue(v, 11))
	assert.Equal(t, 0, CompareValue(v, 10))
	assert.Equal(t, 1, CompareValue(v, 9))
	assert.Equal(t, "10", v.String())

	s := borrowedValue("b", nil)
	assert.Equal(t, 1, CompareValue(s, "a"))
	assert.Equal(t, "b", s.Take())
}

// TestValueEqualUnexported tests that unexported fields take part in equality
func TestValueEqualUnexported(t *testing.T) {
	n := 0
	v := ownedValue(clonedTags{names: []string{"a"}, clones: &n})

	assert.True(t, v.Equal(clonedTags{names: []string{"a"}, clones: &n}))
	assert.False(t, v.Equal(clonedTags{names: []string{"b"}, clones: &n}))
}
