package rendering

import "github.com/odvcencio/textgrid/pkg/errors"

// WidthRange describes how wide a widget wants to be. Min is the narrowest
// width it renders at without truncation, Max the width it uses when
// unconstrained. Min never exceeds Max.
type WidthRange struct {
	Min int
	Max int
}

// NewWidthRange validates min <= max.
func NewWidthRange(min, max int) (WidthRange, error) {
	if min > max {
		return WidthRange{}, errors.Newf(errors.ErrCodeInvalidWidthRange, "range min %d cannot be larger than max %d", min, max)
	}
	return WidthRange{Min: min, Max: max}, nil
}

// FixedRange returns a range whose min and max are both w.
func FixedRange(w int) WidthRange {
	return WidthRange{Min: w, Max: w}
}

// Add widens both ends by extra.
func (r WidthRange) Add(extra int) WidthRange {
	return WidthRange{Min: r.Min + extra, Max: r.Max + extra}
}

// Plus concatenates two ranges.
func (r WidthRange) Plus(other WidthRange) WidthRange {
	return WidthRange{Min: r.Min + other.Min, Max: r.Max + other.Max}
}

// Div spreads the range across divisor columns.
func (r WidthRange) Div(divisor int) WidthRange {
	if divisor <= 1 {
		return r
	}
	return WidthRange{Min: r.Min / divisor, Max: r.Max / divisor}
}

// MaxWidthRange returns the largest min and largest max of ranges, each
// widened by padding.
func MaxWidthRange(ranges []WidthRange, padding int) WidthRange {
	var out WidthRange
	for _, r := range ranges {
		out.Min = max(out.Min, r.Min)
		out.Max = max(out.Max, r.Max)
	}
	return out.Add(padding)
}
