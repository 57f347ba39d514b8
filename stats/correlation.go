package stats

import (
	"gonum.org/v1/gonum/stat"

	sentinel "github.com/sartorproj/marketfit/errors"
	"github.com/sartorproj/marketfit/timeseries"
)

// CorrelationMatrix holds pairwise Pearson correlations between labelled series.
type CorrelationMatrix struct {
	Labels []string
	Values [][]float64
}

// At returns the correlation between the series labelled a and b.
func (m *CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, l := range m.Labels {
		if l == a {
			i = k
		}
		if l == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// Correlate computes the correlation matrix of equally long series, in input order.
func Correlate(series ...*timeseries.Series) (*CorrelationMatrix, error) {
	if len(series) == 0 {
		return nil, sentinel.InsufficientData("correlate", 1, 0)
	}
	n := series[0].Len()
	if n < 2 {
		return nil, sentinel.InsufficientData("correlate", 2, n)
	}
	for _, s := range series {
		if s.Len() != n {
			return nil, sentinel.InvalidParameter("correlate."+s.Name, s.Len(), "all series must share one length")
		}
		if stat.Variance(s.Values, nil) == 0 {
			return nil, sentinel.DegenerateInput("correlate", s.Name+" has zero variance")
		}
	}

	m := &CorrelationMatrix{
		Labels: make([]string, len(series)),
		Values: make([][]float64, len(series)),
	}
	for i, a := range series {
		m.Labels[i] = a.Name
		m.Values[i] = make([]float64, len(series))
		for j, b := range series {
			switch {
			case i == j:
				m.Values[i][j] = 1
			case j < i:
				m.Values[i][j] = m.Values[j][i]
			default:
				m.Values[i][j] = stat.Correlation(a.Values, b.Values, nil)
			}
		}
	}

	return m, nil
}
