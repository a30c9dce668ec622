package series

import (
	"math"
	"testing"
	"time"
)

func fptr(v float64) *float64 { return &v }

func tstamp(minute int) time.Time {
	return time.Date(2026, 8, 30, 12, minute, 0, 0, time.UTC)
}

func TestBuilderAlignsOnUnionOfTimestamps(t *testing.T) {
	b := NewBuilder()
	b.AddColumn("01970", []Sample{
		{Time: tstamp(0), Value: fptr(1.0)},
		{Time: tstamp(15), Value: fptr(1.1)},
	})
	b.AddColumn("07735", []Sample{
		{Time: tstamp(15), Value: fptr(2.0)},
		{Time: tstamp(30), Value: fptr(2.1)},
	})
	tbl := b.Build()

	if tbl.Rows() != 3 || tbl.Cols() != 2 {
		t.Fatalf("got %dx%d, want 3x2", tbl.Rows(), tbl.Cols())
	}
	if got := tbl.Columns(); got[0] != "01970" || got[1] != "07735" {
		t.Fatalf("column order %v, want insertion order", got)
	}
	// 01970 has no sample at 12:30, 07735 none at 12:00
	if !math.IsNaN(tbl.At(2, 0)) {
		t.Errorf("missing sample should be NaN, got %v", tbl.At(2, 0))
	}
	if !math.IsNaN(tbl.At(0, 1)) {
		t.Errorf("missing sample should be NaN, got %v", tbl.At(0, 1))
	}
	if tbl.At(1, 0) != 1.1 || tbl.At(1, 1) != 2.0 {
		t.Errorf("shared timestamp row wrong: %v %v", tbl.At(1, 0), tbl.At(1, 1))
	}
}

func TestBuilderNilValueIsNaN(t *testing.T) {
	b := NewBuilder()
	b.AddColumn("01970", []Sample{
		{Time: tstamp(0), Value: fptr(1.0)},
		{Time: tstamp(15), Value: nil},
	})
	tbl := b.Build()
	if !math.IsNaN(tbl.At(1, 0)) {
		t.Fatalf("nil sample value should be NaN, got %v", tbl.At(1, 0))
	}
}

func TestEmptyTable(t *testing.T) {
	if !Empty().IsEmpty() {
		t.Fatal("Empty() should be empty")
	}
	if !NewBuilder().Build().IsEmpty() {
		t.Fatal("builder with no columns should build an empty table")
	}
	if _, ok := Empty().IntervalSeconds(); ok {
		t.Fatal("empty table should have no interval")
	}
}

func TestFillReplacesOnlyNaN(t *testing.T) {
	b := NewBuilder()
	b.AddColumn("01970", []Sample{
		{Time: tstamp(0), Value: fptr(1.0)},
		{Time: tstamp(15), Value: nil},
	})
	tbl := b.Build()
	filled := tbl.Fill(-9999)

	if filled.At(0, 0) != 1.0 {
		t.Errorf("present value changed: %v", filled.At(0, 0))
	}
	if filled.At(1, 0) != -9999 {
		t.Errorf("missing value not filled: %v", filled.At(1, 0))
	}
	// original untouched
	if !math.IsNaN(tbl.At(1, 0)) {
		t.Error("Fill must not mutate the source table")
	}
}

func TestMaxMinSkipNaN(t *testing.T) {
	b := NewBuilder()
	b.AddColumn("01970", []Sample{
		{Time: tstamp(0), Value: fptr(-1.2)},
		{Time: tstamp(15), Value: nil},
		{Time: tstamp(30), Value: fptr(3.5)},
	})
	tbl := b.Build()

	if max, ok := tbl.Max(); !ok || max != 3.5 {
		t.Errorf("Max = %v %v, want 3.5 true", max, ok)
	}
	if min, ok := tbl.Min(); !ok || min != -1.2 {
		t.Errorf("Min = %v %v, want -1.2 true", min, ok)
	}

	allNaN := NewBuilder()
	allNaN.AddColumn("01970", []Sample{{Time: tstamp(0), Value: nil}})
	if _, ok := allNaN.Build().Max(); ok {
		t.Error("all-NaN table should report no finite max")
	}
}

func TestIntervalSeconds(t *testing.T) {
	b := NewBuilder()
	b.AddColumn("01970", []Sample{
		{Time: tstamp(0), Value: fptr(1.0)},
		{Time: tstamp(15), Value: fptr(1.1)},
		{Time: tstamp(30), Value: fptr(1.2)},
	})
	secs, ok := b.Build().IntervalSeconds()
	if !ok || secs != 900 {
		t.Fatalf("IntervalSeconds = %v %v, want 900 true", secs, ok)
	}

	one := NewBuilder()
	one.AddColumn("01970", []Sample{{Time: tstamp(0), Value: fptr(1.0)}})
	if _, ok := one.Build().IntervalSeconds(); ok {
		t.Fatal("single-row table should have no derivable interval")
	}
}

func TestWithCellsShapeMismatch(t *testing.T) {
	b := NewBuilder()
	b.AddColumn("01970", []Sample{{Time: tstamp(0), Value: fptr(1.0)}})
	tbl := b.Build()
	if _, err := tbl.WithCells([][]float64{{1}, {2}}); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}
