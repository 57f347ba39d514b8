// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"math"
	"sort"
	"time"

	sentinel "github.com/sartorproj/marketfit/errors"
)

// Series represents a time series of closing values with optional timestamps.
// A Series handed to an analysis routine is treated as immutable; every
// transformation below returns a fresh copy.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a new series from values. Timestamps are left empty.
func New(name string, values []float64) *Series {
	return &Series{
		Values: values,
		Name:   name,
	}
}

// NewWithTimestamps creates a series with explicit timestamps.
func NewWithTimestamps(name string, timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, sentinel.InvalidParameter("timestamps", len(timestamps), "timestamps and values must have the same length")
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       name,
	}, nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Validate checks that every value is finite.
func (s *Series) Validate() error {
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return sentinel.InvalidParameter(s.Name+".values", i, "value is not finite")
		}
	}
	return nil
}

// Median returns the median of values without modifying them.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}, Name: s.Name}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	var timestamps []time.Time
	if len(s.Timestamps) >= end {
		timestamps = make([]time.Time, len(values))
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	var timestamps []time.Time
	if s.Timestamps != nil {
		timestamps = make([]time.Time, len(s.Timestamps))
		copy(timestamps, s.Timestamps)
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Log applies the natural logarithm. Non-positive values are rejected.
func (s *Series) Log() (*Series, error) {
	result := make([]float64, len(s.Values))
	for i, v := range s.Values {
		if !(v > 0) || math.IsInf(v, 1) {
			return nil, sentinel.InvalidParameter(s.Name+".values", v, "logarithm requires strictly positive finite values")
		}
		result[i] = math.Log(v)
	}

	out := s.Copy()
	out.Values = result
	out.Name = s.Name + "_log"
	return out, nil
}

// DiffAt returns x[lag:] - x[:-lag].
func (s *Series) DiffAt(lag int) *Series {
	if lag <= 0 || len(s.Values) <= lag {
		return &Series{Values: []float64{}, Name: s.Name + "_diff"}
	}

	result := make([]float64, len(s.Values)-lag)
	for i := lag; i < len(s.Values); i++ {
		result[i-lag] = s.Values[i] - s.Values[i-lag]
	}

	var timestamps []time.Time
	if len(s.Timestamps) == len(s.Values) {
		timestamps = make([]time.Time, len(result))
		copy(timestamps, s.Timestamps[lag:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + "_diff",
	}
}

// PctChangeOver returns value[i]/value[i-period] - 1 for every i >= period.
func (s *Series) PctChangeOver(period int) ([]float64, error) {
	if period < 1 {
		return nil, sentinel.InvalidParameter("period", period, "must be at least 1")
	}
	if len(s.Values) <= period {
		return nil, sentinel.InsufficientData("pct_change", period+1, len(s.Values))
	}
	out := make([]float64, len(s.Values)-period)
	for i := period; i < len(s.Values); i++ {
		prev := s.Values[i-period]
		if prev == 0 {
			return nil, sentinel.InvalidParameter(s.Name+".values", i-period, "percentage change from a zero value")
		}
		out[i-period] = s.Values[i]/prev - 1
	}
	return out, nil
}
