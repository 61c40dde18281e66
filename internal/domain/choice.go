package domain

import (
	"encoding/json"
	"strconv"
)

// Choice is the optimal strategy for one (period, bin) cell: either a strategy
// index or Ambiguous when several strategies tie. The zero value is Ambiguous.
type Choice struct {
	index int
	set   bool
}

// Ambiguous marks a cell where more than one strategy is optimal.
var Ambiguous = Choice{}

// Chosen returns the choice of strategy i.
func Chosen(i int) Choice { return Choice{index: i, set: true} }

// Index returns the strategy index and false when the choice is ambiguous.
func (c Choice) Index() (int, bool) { return c.index, c.set }

// IsAmbiguous reports whether no single strategy was chosen.
func (c Choice) IsAmbiguous() bool { return !c.set }

// IndexOr returns the strategy index, or def when ambiguous.
func (c Choice) IndexOr(def int) int {
	if !c.set {
		return def
	}
	return c.index
}

func (c Choice) String() string {
	if !c.set {
		return "ambiguous"
	}
	return strconv.Itoa(c.index)
}

// MarshalJSON encodes the strategy index, or null when ambiguous.
func (c Choice) MarshalJSON() ([]byte, error) {
	if !c.set {
		return []byte("null"), nil
	}
	return json.Marshal(c.index)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (c *Choice) UnmarshalJSON(data []byte) error {
	var idx *int
	if err := json.Unmarshal(data, &idx); err != nil {
		return err
	}
	if idx == nil {
		*c = Ambiguous
		return nil
	}
	*c = Chosen(*idx)
	return nil
}
