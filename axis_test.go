package sptensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxisIdentity(t *testing.T) {
	a := NewAxisBuilder().Label("x").Range(0, 10).Build()
	b := NewAxisBuilder().Label("x").Range(0, 10).Build()

	assert.True(t, a.Equal(a), "an axis equals itself")
	assert.False(t, a.Equal(b), "coinciding ranges do not make axes equal")

	c := a // plain copy preserves identity
	assert.True(t, a.Equal(c))

	relabeled := a.CloneWithLabel("y")
	assert.False(t, a.Equal(relabeled), "relabeling mints a new identity")
	assert.Equal(t, "y", relabeled.Label())
	lo, hi := relabeled.Range()
	assert.Equal(t, 0, lo)
	assert.Equal(t, 10, hi)

	reranged := a.CloneWithRange(5, 15)
	assert.False(t, a.Equal(reranged))
	assert.Equal(t, "x", reranged.Label())
	assert.Equal(t, 5, reranged.Lower())
	assert.Equal(t, 15, reranged.Upper())
}

func TestAxisSize(t *testing.T) {
	assert.Equal(t, 10, NewAxis(0, 10).Size())
	assert.Equal(t, 7, NewAxis(3, 10).Size())
	assert.Equal(t, 0, NewAxis(10, 0).Size())
	assert.True(t, NewAxis(10, 0).IsEmpty())
	assert.True(t, NewAxis(4, 4).IsEmpty())
	assert.False(t, NewAxis(4, 5).IsEmpty())

	ax := NewAxis(2, 5)
	assert.True(t, ax.Contains(2))
	assert.True(t, ax.Contains(4))
	assert.False(t, ax.Contains(5))
	assert.False(t, ax.Contains(1))
}

func TestAxisExtendIntersect(t *testing.T) {
	a := NewAxis(0, 10)
	b := NewAxis(20, 30)

	hull := a.Extend(b)
	assert.Equal(t, 0, hull.Lower())
	assert.Equal(t, 30, hull.Upper())
	assert.False(t, hull.Equal(a), "extend mints a fresh identity")
	assert.False(t, hull.Equal(b))

	c := NewAxis(0, 20)
	d := NewAxis(10, 30)
	meet := c.Intersect(d)
	assert.Equal(t, 10, meet.Lower())
	assert.Equal(t, 20, meet.Upper())
	assert.False(t, meet.Equal(c))

	disjoint := a.Intersect(b)
	assert.True(t, disjoint.IsEmpty())

	named := a.ExtendWithLabel(b, "z")
	assert.Equal(t, "z", named.Label())
}

func TestAxisString(t *testing.T) {
	labeled := NewAxisBuilder().Label("time").Range(1, 4).Build()
	assert.Equal(t, "time(1..4)", labeled.String())

	anon := NewAxis(0, 2)
	assert.Contains(t, anon.String(), "ax#")
	assert.Contains(t, anon.String(), "(0..2)")

	assert.Equal(t, "[time(1..4)]", AxesToString([]Axis{labeled}))
}

func TestAxesHelpers(t *testing.T) {
	a, b, c := NewAxis(0, 2), NewAxis(0, 3), NewAxis(0, 4)
	axes := []Axis{a, b, c}

	require.Equal(t, 1, findAxis(axes, b))
	require.Equal(t, -1, findAxis(axes, NewAxis(0, 3)))

	assert.Equal(t, []int{2, 0}, mapAxes([]Axis{c, a}, axes))
	assert.Equal(t, []int{-1}, mapAxes([]Axis{NewAxis(0, 2)}, axes))

	assert.True(t, isAxisPermutation([]Axis{c, a, b}, axes))
	assert.False(t, isAxisPermutation([]Axis{a, b}, axes))
	assert.False(t, isAxisPermutation([]Axis{a, a, b}, axes))
	assert.False(t, isAxisPermutation([]Axis{a, b, NewAxis(0, 4)}, axes))

	rest := removeAxis(axes, b)
	require.Len(t, rest, 2)
	assert.True(t, rest[0].Equal(a))
	assert.True(t, rest[1].Equal(c))
}
