package sptensor

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// axisIDCounter mints process-wide unique axis identities.
var axisIDCounter int64

// Axis is an identity-bearing half-open interval [lower, upper) naming one tensor
// dimension.  Two axes are the same dimension if and only if one is a copy of the
// other; range coincidence means nothing, and CloneWithLabel/CloneWithRange mint
// new dimensions.  Axes are small values and may
// be copied freely; the identity travels with the copy.
type Axis struct {
	id    int64
	label string
	lower int
	upper int
}

// NewAxis builds an axis over [lower, upper) with a fresh identity.
func NewAxis(lower, upper int) Axis {
	return Axis{id: atomic.AddInt64(&axisIDCounter, 1), lower: lower, upper: upper}
}

// NewAxisBuilder returns a builder for Axis.  Every Build mints a fresh identity.
func NewAxisBuilder() *AxisBuilder {
	return &AxisBuilder{}
}

// AxisBuilder assembles an Axis from an optional label and a range.
type AxisBuilder struct {
	label string
	lower int
	upper int
}

// Label sets the label of the axis (optional).
func (b *AxisBuilder) Label(label string) *AxisBuilder {
	b.label = label
	return b
}

// Range sets the half-open range of the axis.
func (b *AxisBuilder) Range(lower, upper int) *AxisBuilder {
	b.lower = lower
	b.upper = upper
	return b
}

// Build mints a new Axis.  The identity is unique within the process.
func (b *AxisBuilder) Build() Axis {
	return Axis{
		id:    atomic.AddInt64(&axisIDCounter, 1),
		label: b.label,
		lower: b.lower,
		upper: b.upper,
	}
}

// Label returns the label of the axis, empty if none was set.
func (ax Axis) Label() string { return ax.label }

// Lower returns the inclusive lower bound.
func (ax Axis) Lower() int { return ax.lower }

// Upper returns the exclusive upper bound.
func (ax Axis) Upper() int { return ax.upper }

// Range returns the half-open bounds of the axis.
func (ax Axis) Range() (lower, upper int) { return ax.lower, ax.upper }

// Size returns upper-lower, or 0 for an empty axis.
func (ax Axis) Size() int {
	if ax.lower < ax.upper {
		return ax.upper - ax.lower
	}
	return 0
}

// IsEmpty reports whether the axis contains no indices.
func (ax Axis) IsEmpty() bool { return ax.upper <= ax.lower }

// Contains reports whether idx lies within the axis range.
func (ax Axis) Contains(idx int) bool { return idx >= ax.lower && idx < ax.upper }

// Equal reports whether two axes share identity.  Axes with equal ranges but
// separate origins are NOT equal; associate them explicitly with Extend or
// Intersect if they are meant to be one dimension.
func (ax Axis) Equal(other Axis) bool { return ax.id == other.id }

// CloneWithLabel mints a relabeled axis.  The new axis is not equal to the old one.
func (ax Axis) CloneWithLabel(label string) Axis {
	return (&AxisBuilder{label: label, lower: ax.lower, upper: ax.upper}).Build()
}

// CloneWithRange mints an axis with the same label over a new range.  The new axis
// is not equal to the old one.
func (ax Axis) CloneWithRange(lower, upper int) Axis {
	return (&AxisBuilder{label: ax.label, lower: lower, upper: upper}).Build()
}

// Extend mints an axis covering the hull of both ranges.
func (ax Axis) Extend(other Axis) Axis {
	return (&AxisBuilder{lower: minInt(ax.lower, other.lower), upper: maxInt(ax.upper, other.upper)}).Build()
}

// ExtendWithLabel is Extend with a label on the result.
func (ax Axis) ExtendWithLabel(other Axis, label string) Axis {
	return (&AxisBuilder{label: label, lower: minInt(ax.lower, other.lower), upper: maxInt(ax.upper, other.upper)}).Build()
}

// Intersect mints an axis covering the meet of both ranges.  The result may be
// empty.
func (ax Axis) Intersect(other Axis) Axis {
	return (&AxisBuilder{lower: maxInt(ax.lower, other.lower), upper: minInt(ax.upper, other.upper)}).Build()
}

// IntersectWithLabel is Intersect with a label on the result.
func (ax Axis) IntersectWithLabel(other Axis, label string) Axis {
	return (&AxisBuilder{label: label, lower: maxInt(ax.lower, other.lower), upper: minInt(ax.upper, other.upper)}).Build()
}

// String renders the axis as label(lower..upper), or ax#id(lower..upper) when
// unlabeled.
func (ax Axis) String() string {
	if ax.label != "" {
		return fmt.Sprintf("%s(%d..%d)", ax.label, ax.lower, ax.upper)
	}
	return fmt.Sprintf("ax#%d(%d..%d)", ax.id, ax.lower, ax.upper)
}

// AxesToString renders a list of axes as "[a, b, c]".
func AxesToString(axes []Axis) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, ax := range axes {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(ax.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// findAxis returns the position of ax within axes by identity, or -1.
func findAxis(axes []Axis, ax Axis) int {
	for i := range axes {
		if axes[i].Equal(ax) {
			return i
		}
	}
	return -1
}

// mapAxes maps each axis of from onto its position within to.  Missing axes map to
// -1.
func mapAxes(from, to []Axis) []int {
	pos := make([]int, len(from))
	for i := range from {
		pos[i] = findAxis(to, from[i])
	}
	return pos
}

// isAxisPermutation reports whether order is exactly a permutation of axes by
// identity.
func isAxisPermutation(order, axes []Axis) bool {
	if len(order) != len(axes) {
		return false
	}
	seen := make(map[int64]bool, len(order))
	for _, ax := range order {
		if seen[ax.id] {
			return false
		}
		seen[ax.id] = true
		if findAxis(axes, ax) < 0 {
			return false
		}
	}
	return true
}

// removeAxis returns axes with the first identity match of ax removed.
func removeAxis(axes []Axis, ax Axis) []Axis {
	out := make([]Axis, 0, len(axes))
	removed := false
	for _, a := range axes {
		if !removed && a.Equal(ax) {
			removed = true
			continue
		}
		out = append(out, a)
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
