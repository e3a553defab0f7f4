package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
)

// Column width priorities. When a column has more than one declared width
// policy, the one with the highest priority wins.
const (
	PriorityExpand = 1
	PriorityAuto   = 2
	PriorityFixed  = 3
)

// ColumnWidth is a column sizing policy. A positive Width makes the column
// fixed, otherwise a positive ExpandWeight makes it expand, otherwise it
// fits its content.
type ColumnWidth struct {
	Width        int
	ExpandWeight float64
	Priority     int
}

// Auto sizes the column to its content.
func Auto() ColumnWidth {
	return ColumnWidth{Priority: PriorityAuto}
}

// Fixed sizes the column to exactly width cells.
func Fixed(width int) (ColumnWidth, error) {
	if width <= 0 {
		return ColumnWidth{}, errors.New(errors.ErrCodeInvalidWidth, "fixed width must be greater than zero").
			WithContext("width", width)
	}
	return ColumnWidth{Width: width, Priority: PriorityFixed}, nil
}

// Expand makes the column share the remaining width in proportion to weight.
func Expand(weight float64) (ColumnWidth, error) {
	if weight <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return ColumnWidth{}, errors.New(errors.ErrCodeInvalidWidth, "expand weight must be greater than zero").
			WithContext("weight", weight)
	}
	return ColumnWidth{ExpandWeight: weight, Priority: PriorityExpand}, nil
}

// Custom builds a policy with an explicit priority. A nil width and weight
// yields an auto column.
func Custom(width *int, expandWeight *float64, priority int) ColumnWidth {
	c := ColumnWidth{Priority: priority}
	if width != nil {
		c.Width = *width
	}
	if expandWeight != nil {
		c.ExpandWeight = *expandWeight
	}
	return c
}

// IsFixed reports whether the column has a fixed width.
func (c ColumnWidth) IsFixed() bool { return c.Width > 0 }

// IsExpand reports whether the column expands.
func (c ColumnWidth) IsExpand() bool { return !c.IsFixed() && c.ExpandWeight > 0 }

// IsAuto reports whether the column fits its content.
func (c ColumnWidth) IsAuto() bool { return !c.IsFixed() && !c.IsExpand() }

func (c ColumnWidth) String() string {
	switch {
	case c.IsFixed():
		return "fixed:" + strconv.Itoa(c.Width)
	case c.IsExpand():
		return "expand:" + strconv.FormatFloat(c.ExpandWeight, 'g', -1, 64)
	default:
		return "auto"
	}
}

// ParseColumnWidth reads "auto", "expand", "expand:<weight>",
// "fixed:<width>" or a bare width.
func ParseColumnWidth(s string) (ColumnWidth, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	kind, arg, hasArg := strings.Cut(s, ":")
	switch kind {
	case "", "auto":
		return Auto(), nil
	case "expand":
		if !hasArg {
			return Expand(1)
		}
		w, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return ColumnWidth{}, fmt.Errorf("invalid expand weight %q: %w", arg, err)
		}
		return Expand(w)
	case "fixed":
		s = arg
	}
	w, err := strconv.Atoi(s)
	if err != nil {
		return ColumnWidth{}, fmt.Errorf("invalid column width %q", s)
	}
	return Fixed(w)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ColumnWidth) UnmarshalText(text []byte) error {
	v, err := ParseColumnWidth(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// strongest returns the highest priority policy among candidates. Ties go
// to the earliest. With no candidates the column is auto.
func strongest(candidates ...*ColumnWidth) ColumnWidth {
	var best *ColumnWidth
	for _, c := range candidates {
		if c != nil && (best == nil || c.Priority > best.Priority) {
			best = c
		}
	}
	if best == nil {
		return Auto()
	}
	return *best
}

// allocateWidths splits available cells between columns. measured holds
// each column's width range; fixed columns are expected to report their
// fixed width as max. The result sums to available whenever there is an
// expanding column or available does not exceed the fixed and auto maxima.
func allocateWidths(policies []ColumnWidth, measured []rendering.WidthRange, available int) []int {
	widths := make([]int, len(policies))
	if available <= 0 {
		return widths
	}
	for i, m := range measured {
		widths[i] = m.Max
	}

	var fixed, expand, auto []int
	for i, p := range policies {
		switch {
		case p.IsFixed():
			fixed = append(fixed, i)
		case p.IsExpand():
			expand = append(expand, i)
		default:
			auto = append(auto, i)
		}
	}

	var maxAuto, minAuto, maxFixed, minExpand int
	for _, i := range auto {
		maxAuto += measured[i].Max
		minAuto += measured[i].Min
	}
	for _, i := range fixed {
		maxFixed += measured[i].Max
	}
	for _, i := range expand {
		minExpand += measured[i].Min
	}

	// fixed columns shrink only when they cannot fit at all
	allocFixed := min(maxFixed, available)
	// auto columns shrink only as far as expanding columns need to reach
	// their min, and never below their own min unless nothing else fits
	allocAuto := min(max(min(available-allocFixed-minExpand, maxAuto), minAuto), available-allocFixed)
	allocExpand := available - allocFixed - allocAuto

	setWeights := func(idxs []int, weights []float64, total int) {
		if len(idxs) == 0 {
			return
		}
		for j, w := range distributeWidths(weights, total) {
			widths[idxs[j]] = w
		}
	}

	if allocFixed != maxFixed {
		// shrinking in proportion to declared width never pushes a column
		// past it
		declared := make([]float64, len(fixed))
		for j, i := range fixed {
			declared[j] = float64(measured[i].Max)
		}
		setWeights(fixed, declared, allocFixed)
	}

	weights := make([]float64, len(expand))
	for j, i := range expand {
		weights[j] = policies[i].ExpandWeight
	}
	setWeights(expand, weights, allocExpand)

	switch {
	case allocAuto == maxAuto:
		// every auto column gets its max
	case allocAuto >= minAuto:
		flex := make([]float64, len(auto))
		for j, i := range auto {
			flex[j] = float64(measured[i].Max - measured[i].Min)
		}
		setWeights(auto, flex, allocAuto-minAuto)
		for _, i := range auto {
			widths[i] += measured[i].Min
		}
	default:
		// shrink while keeping the columns' relative widths
		current := make([]float64, len(auto))
		for j, i := range auto {
			current[j] = float64(widths[i])
		}
		setWeights(auto, current, allocAuto)
	}
	return widths
}

func repeatWeight(w float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = w
	}
	return out
}

// distributeWidths turns weights into integer widths summing to total. Each
// width is the floor of its share; the rounding remainder goes one cell at
// a time to the first columns. Zero total weight splits evenly.
func distributeWidths(weights []float64, total int) []int {
	widths := make([]int, len(weights))
	if total <= 0 || len(weights) == 0 {
		return widths
	}

	var totalWeight float64
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight <= 0 {
		weights = repeatWeight(1, len(weights))
		totalWeight = float64(len(weights))
	}

	sum := 0
	for i, w := range weights {
		// the epsilon absorbs float error on exact multiples
		widths[i] = int(math.Floor(w/totalWeight*float64(total) + 1e-9))
		sum += widths[i]
	}
	for i := 0; i < total-sum; i++ {
		widths[i%len(widths)]++
	}
	return widths
}
