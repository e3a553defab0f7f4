package table

import (
	"fmt"
	"strings"
)

// Borders is the set of cell edges that draw a line.
type Borders uint8

const (
	edgeLeft Borders = 1 << iota
	edgeTop
	edgeRight
	edgeBottom
)

// Border presets, one for each combination of edges.
const (
	BordersNone            Borders = 0
	BordersBottom                  = edgeBottom
	BordersRight                   = edgeRight
	BordersBottomRight             = edgeRight | edgeBottom
	BordersTop                     = edgeTop
	BordersTopBottom               = edgeTop | edgeBottom
	BordersTopRight                = edgeTop | edgeRight
	BordersTopRightBottom          = edgeTop | edgeRight | edgeBottom
	BordersLeft                    = edgeLeft
	BordersLeftBottom              = edgeLeft | edgeBottom
	BordersLeftRight               = edgeLeft | edgeRight
	BordersLeftRightBottom         = edgeLeft | edgeRight | edgeBottom
	BordersLeftTop                 = edgeLeft | edgeTop
	BordersLeftTopBottom           = edgeLeft | edgeTop | edgeBottom
	BordersLeftTopRight            = edgeLeft | edgeTop | edgeRight
	BordersAll                     = edgeLeft | edgeTop | edgeRight | edgeBottom
)

var bordersNames = map[Borders]string{
	BordersNone:            "none",
	BordersBottom:          "bottom",
	BordersRight:           "right",
	BordersBottomRight:     "bottom-right",
	BordersTop:             "top",
	BordersTopBottom:       "top-bottom",
	BordersTopRight:        "top-right",
	BordersTopRightBottom:  "top-right-bottom",
	BordersLeft:            "left",
	BordersLeftBottom:      "left-bottom",
	BordersLeftRight:       "left-right",
	BordersLeftRightBottom: "left-right-bottom",
	BordersLeftTop:         "left-top",
	BordersLeftTopBottom:   "left-top-bottom",
	BordersLeftTopRight:    "left-top-right",
	BordersAll:             "all",
}

func (b Borders) Left() bool   { return b&edgeLeft != 0 }
func (b Borders) Top() bool    { return b&edgeTop != 0 }
func (b Borders) Right() bool  { return b&edgeRight != 0 }
func (b Borders) Bottom() bool { return b&edgeBottom != 0 }

func (b Borders) String() string {
	if name, ok := bordersNames[b&BordersAll]; ok {
		return name
	}
	return fmt.Sprintf("borders(%d)", uint8(b))
}

// ParseBorders accepts preset names such as "all", "left-right" or
// "TOP_BOTTOM".
func ParseBorders(name string) (Borders, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for b, n := range bordersNames {
		if n == key {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown borders %q", name)
}

// UnmarshalText implements encoding.TextUnmarshaler so borders can be
// read from YAML and JSON.
func (b *Borders) UnmarshalText(text []byte) error {
	v, err := ParseBorders(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (b Borders) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}
