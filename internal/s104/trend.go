// Package s104 implements S-104 Data Coding Format 8 water level product
// generation: trend classification, data array formatting, and the binary
// group layout.
package s104

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/oceanobs/tidewriter/internal/series"
)

// TrendFlag classifies the local rate of change of a water level series.
type TrendFlag uint8

const (
	TrendSteady     TrendFlag = 0
	TrendDecreasing TrendFlag = 1
	TrendIncreasing TrendFlag = 2
	TrendUnknown    TrendFlag = 3
)

// DefaultTrendThreshold is the slope magnitude, in height units per sample,
// beyond which a series counts as rising or falling.
const DefaultTrendThreshold = 0.2

// Classify maps a rolling-window slope to a trend flag. The threshold
// comparisons are strict: a slope of exactly ±threshold is steady.
func Classify(slope, threshold float64) TrendFlag {
	switch {
	case math.IsNaN(slope):
		return TrendUnknown
	case slope > threshold:
		return TrendIncreasing
	case slope < -threshold:
		return TrendDecreasing
	}
	return TrendSteady
}

// Trends derives the trend flag table for a water level table: per column,
// the OLS slope of height against sample index over a centered rolling
// window spanning one hour, classified against threshold. Windows that
// reach past either end of the series, and windows containing a missing
// sample, classify unknown. An empty table yields an empty table.
func Trends(t *series.Table, threshold float64) (*series.Table, error) {
	if t.IsEmpty() {
		return series.Empty(), nil
	}

	interval, ok := t.IntervalSeconds()
	if !ok {
		return nil, ErrInsufficientData
	}
	if interval <= 0 {
		return nil, fmt.Errorf("non-increasing time index: interval %v seconds", interval)
	}
	window := int(3600 / interval)

	rows := t.Rows()
	cells := make([][]float64, t.Cols())
	for ci := range cells {
		flags := make([]float64, rows)
		col := t.ColumnAt(ci)
		slopes := rollingSlopes(col, window)
		for ri, slope := range slopes {
			flags[ri] = float64(Classify(slope, threshold))
		}
		cells[ci] = flags
	}
	return t.WithCells(cells)
}

// rollingSlopes computes the centered rolling-window regression slope for
// every position of ys. The window for position i covers rows
// [i-floor(w/2), i+ceil(w/2)-1]; positions whose window is not fully inside
// the series get NaN, as does any window too small to define a slope.
func rollingSlopes(ys []float64, window int) []float64 {
	slopes := make([]float64, len(ys))
	if window < 2 {
		for i := range slopes {
			slopes[i] = math.NaN()
		}
		return slopes
	}

	xs := make([]float64, window)
	for i := range xs {
		xs[i] = float64(i)
	}

	for i := range ys {
		start := i - window/2
		end := start + window
		if start < 0 || end > len(ys) {
			slopes[i] = math.NaN()
			continue
		}
		// NaN inside the window propagates through the fit, so a window
		// with any missing sample comes out NaN.
		_, beta := stat.LinearRegression(xs, ys[start:end], nil, false)
		slopes[i] = beta
	}
	return slopes
}
