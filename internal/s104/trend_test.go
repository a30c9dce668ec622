package s104

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/oceanobs/tidewriter/internal/series"
)

func fptr(v float64) *float64 { return &v }

// buildTable makes a one-station table sampled every step, with nil entries
// for missing samples.
func buildTable(step time.Duration, values []*float64) *series.Table {
	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	samples := make([]series.Sample, len(values))
	for i, v := range values {
		samples[i] = series.Sample{Time: base.Add(time.Duration(i) * step), Value: v}
	}
	b := series.NewBuilder()
	b.AddColumn("01970", samples)
	return b.Build()
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		slope float64
		want  TrendFlag
	}{
		{"nan", math.NaN(), TrendUnknown},
		{"above threshold", 0.21, TrendIncreasing},
		{"below negative threshold", -0.21, TrendDecreasing},
		{"zero", 0.0, TrendSteady},
		{"exactly threshold", 0.2, TrendSteady},
		{"exactly negative threshold", -0.2, TrendSteady},
		{"large positive", 1e9, TrendIncreasing},
		{"large negative", -1e9, TrendDecreasing},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.slope, DefaultTrendThreshold); got != tc.want {
				t.Errorf("Classify(%v) = %d, want %d", tc.slope, got, tc.want)
			}
		})
	}
}

func TestTrendsEmptyTable(t *testing.T) {
	got, err := Trends(series.Empty(), DefaultTrendThreshold)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsEmpty() {
		t.Fatal("trend table of an empty table should be empty")
	}
}

func TestTrendsSingleRow(t *testing.T) {
	tbl := buildTable(15*time.Minute, []*float64{fptr(1.0)})
	_, err := Trends(tbl, DefaultTrendThreshold)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("got %v, want ErrInsufficientData", err)
	}
}

func TestTrendsRisingSeries(t *testing.T) {
	// 15-minute sampling gives a window of 4; slope 0.3 per sample.
	values := make([]*float64, 8)
	for i := range values {
		values[i] = fptr(0.3 * float64(i))
	}
	tbl := buildTable(15*time.Minute, values)

	trend, err := Trends(tbl, DefaultTrendThreshold)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trend.Rows() != tbl.Rows() || trend.Cols() != tbl.Cols() {
		t.Fatalf("shape not preserved: %dx%d", trend.Rows(), trend.Cols())
	}

	want := []TrendFlag{
		TrendUnknown, TrendUnknown, // window reaches past the start
		TrendIncreasing, TrendIncreasing, TrendIncreasing, TrendIncreasing, TrendIncreasing,
		TrendUnknown, // window reaches past the end
	}
	for i, w := range want {
		if got := TrendFlag(trend.At(i, 0)); got != w {
			t.Errorf("row %d: flag %d, want %d", i, got, w)
		}
	}
}

func TestTrendsFallingAndSteady(t *testing.T) {
	falling := make([]*float64, 8)
	steady := make([]*float64, 8)
	for i := range falling {
		falling[i] = fptr(-0.3 * float64(i))
		steady[i] = fptr(2.5)
	}

	fall, err := Trends(buildTable(15*time.Minute, falling), DefaultTrendThreshold)
	if err != nil {
		t.Fatal(err)
	}
	if got := TrendFlag(fall.At(4, 0)); got != TrendDecreasing {
		t.Errorf("falling series row 4: flag %d, want decreasing", got)
	}

	flat, err := Trends(buildTable(15*time.Minute, steady), DefaultTrendThreshold)
	if err != nil {
		t.Fatal(err)
	}
	if got := TrendFlag(flat.At(4, 0)); got != TrendSteady {
		t.Errorf("steady series row 4: flag %d, want steady", got)
	}
}

func TestTrendsMissingSampleContaminatesWindow(t *testing.T) {
	values := make([]*float64, 8)
	for i := range values {
		values[i] = fptr(0.3 * float64(i))
	}
	values[4] = nil // window of 4 centered rows 3..6 all cover row 4
	tbl := buildTable(15*time.Minute, values)

	trend, err := Trends(tbl, DefaultTrendThreshold)
	if err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{3, 4, 5, 6} {
		if got := TrendFlag(trend.At(i, 0)); got != TrendUnknown {
			t.Errorf("row %d overlaps the missing sample: flag %d, want unknown", i, got)
		}
	}
	if got := TrendFlag(trend.At(2, 0)); got != TrendIncreasing {
		t.Errorf("row 2 window is clean: flag %d, want increasing", got)
	}
}

func TestTrendsHourlySamplingHasNoWindow(t *testing.T) {
	// One hour between samples leaves a window of one: no slope is
	// derivable anywhere.
	tbl := buildTable(time.Hour, []*float64{fptr(1.0), fptr(1.2), fptr(1.4)})
	trend, err := Trends(tbl, DefaultTrendThreshold)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < trend.Rows(); i++ {
		if got := TrendFlag(trend.At(i, 0)); got != TrendUnknown {
			t.Errorf("row %d: flag %d, want unknown", i, got)
		}
	}
}
