package timeseries

import (
	"slices"
	"time"
)

// Align restricts every series to the timestamps present in all of them, in
// chronological order. When any series lacks timestamps the series are aligned
// on their trailing observations instead. Duplicate timestamps keep their
// first observation.
func Align(series ...*Series) []*Series {
	if len(series) == 0 {
		return nil
	}
	for _, s := range series {
		if len(s.Timestamps) != len(s.Values) {
			return alignTail(series)
		}
	}

	positions := make([]map[int64]int, len(series))
	counts := make(map[int64]int)
	for i, s := range series {
		pos := make(map[int64]int, len(s.Timestamps))
		for j, ts := range s.Timestamps {
			k := ts.UnixNano()
			if _, dup := pos[k]; !dup {
				pos[k] = j
				counts[k]++
			}
		}
		positions[i] = pos
	}

	common := make([]int64, 0, len(positions[0]))
	for k, c := range counts {
		if c == len(series) {
			common = append(common, k)
		}
	}
	slices.Sort(common)

	out := make([]*Series, len(series))
	for i, s := range series {
		aligned := &Series{
			Timestamps: make([]time.Time, len(common)),
			Values:     make([]float64, len(common)),
			Name:       s.Name,
		}
		for j, k := range common {
			at := positions[i][k]
			aligned.Timestamps[j] = s.Timestamps[at]
			aligned.Values[j] = s.Values[at]
		}
		out[i] = aligned
	}
	return out
}

func alignTail(series []*Series) []*Series {
	n := series[0].Len()
	for _, s := range series[1:] {
		n = min(n, s.Len())
	}
	out := make([]*Series, len(series))
	for i, s := range series {
		out[i] = s.Slice(s.Len()-n, s.Len())
	}
	return out
}
