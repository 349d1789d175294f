package analysis

import (
	"math"
	"sort"
	"time"

	"etfadvisor/internal/dataflows"
)

// Series is a date-indexed sequence of values, ordered ascending by date.
type Series struct {
	Dates  []time.Time
	Values []float64
}

func (s Series) Len() int { return len(s.Values) }

// CloseSeries extracts the closing prices of a bar history as a Series.
func CloseSeries(bars []dataflows.PriceBar) Series {
	s := Series{
		Dates:  make([]time.Time, 0, len(bars)),
		Values: make([]float64, 0, len(bars)),
	}
	for _, bar := range bars {
		s.Dates = append(s.Dates, bar.Date)
		s.Values = append(s.Values, bar.Close.InexactFloat64())
	}
	return s
}

// DailyReturns computes the percentage-change series. The first observation
// has no return and is dropped, so the result is one element shorter.
func (s Series) DailyReturns() Series {
	if s.Len() < 2 {
		return Series{}
	}
	r := Series{
		Dates:  make([]time.Time, 0, s.Len()-1),
		Values: make([]float64, 0, s.Len()-1),
	}
	for i := 1; i < s.Len(); i++ {
		r.Dates = append(r.Dates, s.Dates[i])
		r.Values = append(r.Values, s.Values[i]/s.Values[i-1]-1)
	}
	return r
}

// alignPrices joins several price series on their date union, forward-fills
// gaps, then drops any date where a column is still missing (leading gaps).
// The returned columns all share the returned date slice.
func alignPrices(columns map[string]Series) ([]time.Time, map[string][]float64) {
	dateSet := make(map[int64]time.Time)
	for _, col := range columns {
		for _, d := range col.Dates {
			dateSet[d.Unix()] = d
		}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for _, d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	// Forward-fill each column over the union index; NaN marks a leading gap.
	filled := make(map[string][]float64, len(columns))
	for name, col := range columns {
		byDate := make(map[int64]float64, col.Len())
		for i, d := range col.Dates {
			byDate[d.Unix()] = col.Values[i]
		}
		values := make([]float64, len(dates))
		last := math.NaN()
		for i, d := range dates {
			if v, ok := byDate[d.Unix()]; ok {
				last = v
			}
			values[i] = last
		}
		filled[name] = values
	}

	// Drop rows where any column is still NaN.
	keep := make([]int, 0, len(dates))
	for i := range dates {
		ok := true
		for _, values := range filled {
			if math.IsNaN(values[i]) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}

	outDates := make([]time.Time, len(keep))
	out := make(map[string][]float64, len(filled))
	for name := range filled {
		out[name] = make([]float64, len(keep))
	}
	for j, i := range keep {
		outDates[j] = dates[i]
		for name, values := range filled {
			out[name][j] = values[i]
		}
	}
	return outDates, out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleVariance uses the n-1 denominator; NaN below two observations.
func sampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values)-1)
}

func sampleCovariance(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return math.NaN()
	}
	mx, my := mean(xs), mean(ys)
	sum := 0.0
	for i := range xs {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(len(xs)-1)
}
