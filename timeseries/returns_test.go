package timeseries

import (
	"errors"
	"math"
	"testing"

	sentinel "github.com/sartorproj/marketfit/errors"
)

func TestReturnsLeadingGapPolicies(t *testing.T) {
	s := New("idx", []float64{100, 110, 99, 108.9})
	// computed returns: 0.1, -0.1, 0.1
	tests := []struct {
		policy   LeadingGapPolicy
		expected []float64
	}{
		{BackfillFromLast, []float64{0.1, 0.1, -0.1, 0.1}},
		{BackfillNext, []float64{0.1, 0.1, -0.1, 0.1}},
		{Zero, []float64{0, 0.1, -0.1, 0.1}},
		{Drop, []float64{0.1, -0.1, 0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			r, err := s.Returns(tt.policy)
			if err != nil {
				t.Fatalf("Returns failed: %v", err)
			}
			if r.Len() != len(tt.expected) {
				t.Fatalf("Expected %d returns, got %d", len(tt.expected), r.Len())
			}
			for i, v := range r.Values {
				if math.Abs(v-tt.expected[i]) > 1e-12 {
					t.Errorf("Expected %f at index %d, got %f", tt.expected[i], i, v)
				}
			}
		})
	}
}

func TestReturnsBackfillDistinguishesEnds(t *testing.T) {
	s := New("idx", []float64{100, 102, 101, 110})

	last, err := s.Returns(BackfillFromLast)
	if err != nil {
		t.Fatal(err)
	}
	next, err := s.Returns(BackfillNext)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(last.Values[0]-(110.0/101-1)) > 1e-12 {
		t.Errorf("BackfillFromLast used %f", last.Values[0])
	}
	if math.Abs(next.Values[0]-0.02) > 1e-12 {
		t.Errorf("BackfillNext used %f", next.Values[0])
	}
}

func TestReturnsErrors(t *testing.T) {
	_, err := New("one", []float64{1}).Returns(BackfillFromLast)
	if !errors.Is(err, sentinel.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}

	_, err = New("zero", []float64{0, 1, 2}).Returns(Drop)
	if !errors.Is(err, sentinel.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for a zero price, got %v", err)
	}
}

func TestParseLeadingGapPolicy(t *testing.T) {
	tests := map[string]LeadingGapPolicy{
		"backfill_from_last": BackfillFromLast,
		"BackfillFromLast":   BackfillFromLast,
		"backfill-next":      BackfillNext,
		"drop":               Drop,
		" zero ":             Zero,
	}
	for in, want := range tests {
		got, err := ParseLeadingGapPolicy(in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("%q: expected %v, got %v", in, want, got)
		}
	}

	if _, err := ParseLeadingGapPolicy("ffill"); !errors.Is(err, sentinel.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
}

func TestSetPreservesOrder(t *testing.T) {
	set, err := NewSet(
		New("FTSE", []float64{1}),
		New("DAX", []float64{2}),
		New("SP500", []float64{3}),
	)
	if err != nil {
		t.Fatal(err)
	}

	labels := set.Labels()
	expected := []string{"FTSE", "DAX", "SP500"}
	for i := range expected {
		if labels[i] != expected[i] {
			t.Errorf("Expected label %s at %d, got %s", expected[i], i, labels[i])
		}
	}

	dax, ok := set.Get("DAX")
	if !ok || dax.Values[0] != 2 {
		t.Errorf("Get(DAX) returned %v, %v", dax, ok)
	}
}

func TestSetRejectsDuplicatesAndBlankLabels(t *testing.T) {
	_, err := NewSet(New("A", nil), New("A", nil))
	if !errors.Is(err, sentinel.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for duplicate label, got %v", err)
	}

	_, err = NewSet(New("  ", nil))
	if !errors.Is(err, sentinel.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for blank label, got %v", err)
	}
}
