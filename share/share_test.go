package share

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateSumsValueAndCount(t *testing.T) {
	a := New(1.0, 123)
	b := New(2.0, 125)
	c := New(3.0, 1243)

	result := Aggregate([]Share{a, b, c})

	assert.Equal(t, 6.0, result.Value)
	assert.Equal(t, 3, result.Count)
	assert.NotEmpty(t, result.ID)
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	a := New(1.0, 123)
	b := New(2.0, 125)
	c := New(3.0, 1243)

	forward := Aggregate([]Share{a, b, c})
	backward := Aggregate([]Share{c, b, a})

	assert.Equal(t, forward, backward)
}

func TestAggregateIsAssociativeOnValueAndCount(t *testing.T) {
	// The id of an aggregate summarizes the immediate shares folded into
	// it, so re-bracketing changes the id's input set even though it
	// always reflects the same leaves. Value and count, which are what
	// the protocol actually reasons about, must still match regardless
	// of bracketing.
	a := New(1.0, 123)
	b := New(2.0, 125)
	c := New(3.0, 1243)

	left := Aggregate([]Share{Aggregate([]Share{a, b}), c})
	right := Aggregate([]Share{a, Aggregate([]Share{b, c})})

	assert.Equal(t, left.Value, right.Value)
	assert.Equal(t, left.Count, right.Count)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Equal(t, Share{}, Aggregate(nil))
}
