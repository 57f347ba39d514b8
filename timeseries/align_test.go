package timeseries

import (
	"reflect"
	"testing"
	"time"
)

func days(offsets ...int) []time.Time {
	start := time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, len(offsets))
	for i, d := range offsets {
		out[i] = start.AddDate(0, 0, d)
	}
	return out
}

func TestAlignByTimestamp(t *testing.T) {
	a := &Series{Name: "a", Timestamps: days(0, 1, 2, 3, 4), Values: []float64{10, 11, 12, 13, 14}}
	// b misses day 2 and is listed out of order
	b := &Series{Name: "b", Timestamps: days(4, 1, 3, 0), Values: []float64{24, 21, 23, 20}}
	c := &Series{Name: "c", Timestamps: days(1, 3, 4, 5), Values: []float64{31, 33, 34, 35}}

	got := Align(a, b, c)
	if len(got) != 3 {
		t.Fatalf("Expected 3 series, got %d", len(got))
	}

	want := [][]float64{{11, 13, 14}, {21, 23, 24}, {31, 33, 34}}
	for i, s := range got {
		if !reflect.DeepEqual(s.Values, want[i]) {
			t.Errorf("%s: expected %v, got %v", s.Name, want[i], s.Values)
		}
		if !reflect.DeepEqual(s.Timestamps, days(1, 3, 4)) {
			t.Errorf("%s: unexpected timestamps %v", s.Name, s.Timestamps)
		}
	}
	if a.Len() != 5 || b.Values[0] != 24 {
		t.Error("Align modified its input")
	}
}

func TestAlignWithoutTimestamps(t *testing.T) {
	a := New("a", []float64{1, 2, 3, 4})
	b := &Series{Name: "b", Timestamps: days(0, 1), Values: []float64{7, 8}}

	got := Align(a, b)
	if !reflect.DeepEqual(got[0].Values, []float64{3, 4}) {
		t.Errorf("Expected trailing [3 4], got %v", got[0].Values)
	}
	if !reflect.DeepEqual(got[1].Values, []float64{7, 8}) {
		t.Errorf("Expected [7 8], got %v", got[1].Values)
	}

	if Align() != nil {
		t.Error("Expected nil for no series")
	}
}

func TestAlignDisjoint(t *testing.T) {
	a := &Series{Name: "a", Timestamps: days(0, 1), Values: []float64{1, 2}}
	b := &Series{Name: "b", Timestamps: days(2, 3), Values: []float64{3, 4}}

	for _, s := range Align(a, b) {
		if s.Len() != 0 {
			t.Errorf("%s: expected no common observations, got %d", s.Name, s.Len())
		}
	}
}
