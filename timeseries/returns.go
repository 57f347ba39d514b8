package timeseries

import (
	"fmt"
	"strings"

	sentinel "github.com/sartorproj/marketfit/errors"
)

// LeadingGapPolicy decides what happens to the first return, which has no predecessor.
type LeadingGapPolicy int

const (
	// BackfillFromLast plugs the leading gap with the last computable return in the series.
	BackfillFromLast LeadingGapPolicy = iota
	// BackfillNext plugs the leading gap with the next valid return, value[1]/value[0] - 1.
	BackfillNext
	// Drop removes the leading gap; the result has len(values)-1 elements.
	Drop
	// Zero fills the leading gap with 0.
	Zero
)

var policyNames = map[LeadingGapPolicy]string{
	BackfillFromLast: "backfill_from_last",
	BackfillNext:     "backfill_next",
	Drop:             "drop",
	Zero:             "zero",
}

func (p LeadingGapPolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("LeadingGapPolicy(%d)", int(p))
}

// Valid reports whether p is one of the defined policies.
func (p LeadingGapPolicy) Valid() bool {
	_, ok := policyNames[p]
	return ok
}

// ParseLeadingGapPolicy parses the configuration spelling of a policy.
func ParseLeadingGapPolicy(s string) (LeadingGapPolicy, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	for p, name := range policyNames {
		if name == key || strings.ReplaceAll(name, "_", "") == key {
			return p, nil
		}
	}
	return 0, sentinel.InvalidParameter("leading_gap_policy", s, "must be one of backfill_from_last, backfill_next, drop, zero")
}

// Returns computes simple period-over-period returns value[i]/value[i-1] - 1.
// The leading gap is handled according to policy.
func (s *Series) Returns(policy LeadingGapPolicy) (*Series, error) {
	n := len(s.Values)
	if n < 2 {
		return nil, sentinel.InsufficientData("returns", 2, n)
	}

	computed, err := s.PctChangeOver(1)
	if err != nil {
		return nil, err
	}

	var values []float64
	switch policy {
	case BackfillFromLast:
		values = append([]float64{computed[len(computed)-1]}, computed...)
	case BackfillNext:
		values = append([]float64{computed[0]}, computed...)
	case Zero:
		values = append([]float64{0}, computed...)
	case Drop:
		values = computed
	default:
		return nil, sentinel.InvalidParameter("leading_gap_policy", int(policy), "unknown policy")
	}

	out := &Series{Values: values, Name: s.Name + "_returns"}
	if len(s.Timestamps) == n {
		start := 0
		if policy == Drop {
			start = 1
		}
		out.Timestamps = append(out.Timestamps, s.Timestamps[start:]...)
	}
	return out, nil
}
