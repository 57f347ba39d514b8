package timeseries

import (
	"strings"

	sentinel "github.com/sartorproj/marketfit/errors"
)

// Set is an ordered collection of labelled series. Batch operations walk it in
// insertion order and report results in that same order.
type Set struct {
	series []*Series
	index  map[string]int
}

// NewSet builds a set from series, using each series' Name as its label.
// Labels must be non-empty and unique.
func NewSet(series ...*Series) (*Set, error) {
	set := &Set{index: make(map[string]int, len(series))}
	for _, s := range series {
		if err := set.Add(s); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Add appends a series to the end of the set.
func (st *Set) Add(s *Series) error {
	if s == nil {
		return sentinel.InvalidParameter("series", nil, "series must not be nil")
	}
	label := s.Name
	if strings.TrimSpace(label) == "" {
		return sentinel.InvalidParameter("label", s.Name, "label must not be empty")
	}
	if st.index == nil {
		st.index = make(map[string]int)
	}
	if _, dup := st.index[label]; dup {
		return sentinel.InvalidParameter("label", label, "label must be unique within a set")
	}
	st.index[label] = len(st.series)
	st.series = append(st.series, s)
	return nil
}

// Len returns the number of series in the set.
func (st *Set) Len() int {
	return len(st.series)
}

// Labels returns the labels in insertion order.
func (st *Set) Labels() []string {
	labels := make([]string, len(st.series))
	for i, s := range st.series {
		labels[i] = s.Name
	}
	return labels
}

// Get returns the series stored under label.
func (st *Set) Get(label string) (*Series, bool) {
	i, ok := st.index[label]
	if !ok {
		return nil, false
	}
	return st.series[i], true
}

// All returns the series in insertion order. The slice is a copy; the series are shared.
func (st *Set) All() []*Series {
	out := make([]*Series, len(st.series))
	copy(out, st.series)
	return out
}
