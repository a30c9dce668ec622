// Package series implements the station-wise time series table used by the
// S-100 product generators: a shared strictly-increasing time index with one
// float64 column per station. Missing samples are NaN.
package series

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Sample is a single timestamped water level reading. A nil Value marks a
// sample the upstream API reported without a height.
type Sample struct {
	Time  time.Time
	Value *float64
}

// Table is a time-indexed, column-per-station numeric table. The index is
// shared by all columns; cells with no sample hold NaN. Column order is
// insertion order.
type Table struct {
	index   []time.Time
	columns []string
	colIdx  map[string]int
	cells   [][]float64 // column-major: cells[col][row]
}

// Builder accumulates per-station sample lists and aligns them onto the
// union of their timestamps.
type Builder struct {
	columns []string
	samples map[string][]Sample
}

func NewBuilder() *Builder {
	return &Builder{samples: make(map[string][]Sample)}
}

// AddColumn registers a station's samples. Adding the same station again
// appends to its sample list without changing column order.
func (b *Builder) AddColumn(station string, samples []Sample) {
	if _, dup := b.samples[station]; !dup {
		b.columns = append(b.columns, station)
	}
	b.samples[station] = append(b.samples[station], samples...)
}

// Build aligns all registered columns on the sorted union of their
// timestamps and returns the resulting table. Stations with no samples
// still contribute a column of NaN when the union index is non-empty.
func (b *Builder) Build() *Table {
	stamps := make(map[time.Time]struct{})
	for _, col := range b.columns {
		for _, s := range b.samples[col] {
			stamps[s.Time.UTC()] = struct{}{}
		}
	}

	index := make([]time.Time, 0, len(stamps))
	for ts := range stamps {
		index = append(index, ts)
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Before(index[j]) })

	rowIdx := make(map[time.Time]int, len(index))
	for i, ts := range index {
		rowIdx[ts] = i
	}

	t := &Table{
		index:   index,
		columns: append([]string(nil), b.columns...),
		colIdx:  make(map[string]int, len(b.columns)),
		cells:   make([][]float64, len(b.columns)),
	}
	for ci, col := range t.columns {
		t.colIdx[col] = ci
		cells := make([]float64, len(index))
		for i := range cells {
			cells[i] = math.NaN()
		}
		for _, s := range b.samples[col] {
			ri := rowIdx[s.Time.UTC()]
			if s.Value != nil {
				cells[ri] = *s.Value
			}
		}
		t.cells[ci] = cells
	}
	return t
}

// Empty returns a table with no rows and no columns.
func Empty() *Table {
	return &Table{colIdx: make(map[string]int)}
}

// IsEmpty reports whether the table holds no cells at all.
func (t *Table) IsEmpty() bool {
	return len(t.index) == 0 || len(t.columns) == 0
}

func (t *Table) Rows() int { return len(t.index) }
func (t *Table) Cols() int { return len(t.columns) }

// Index returns the shared time index. Callers must not modify it.
func (t *Table) Index() []time.Time { return t.index }

// Columns returns the station identifiers in column order.
func (t *Table) Columns() []string { return t.columns }

// At returns the cell at the given row and column position.
func (t *Table) At(row, col int) float64 {
	return t.cells[col][row]
}

// Column returns the named column's cells. Callers must not modify it.
func (t *Table) Column(station string) ([]float64, error) {
	ci, ok := t.colIdx[station]
	if !ok {
		return nil, fmt.Errorf("series: no column for station %q", station)
	}
	return t.cells[ci], nil
}

// ColumnAt returns the cells of the column at the given position.
func (t *Table) ColumnAt(col int) []float64 {
	return t.cells[col]
}

// WithCells returns a new table sharing this table's index and columns but
// holding the given column-major cells. Used to derive same-shape tables
// (trend flags, fill-substituted values).
func (t *Table) WithCells(cells [][]float64) (*Table, error) {
	if len(cells) != len(t.columns) {
		return nil, fmt.Errorf("series: shape mismatch: %d columns of cells for %d table columns", len(cells), len(t.columns))
	}
	for ci := range cells {
		if len(cells[ci]) != len(t.index) {
			return nil, fmt.Errorf("series: shape mismatch in column %q: %d rows for index of %d", t.columns[ci], len(cells[ci]), len(t.index))
		}
	}
	return &Table{index: t.index, columns: t.columns, colIdx: t.colIdx, cells: cells}, nil
}

// Fill returns a copy of the table with every NaN cell replaced by v.
func (t *Table) Fill(v float64) *Table {
	cells := make([][]float64, len(t.cells))
	for ci, col := range t.cells {
		filled := make([]float64, len(col))
		for ri, x := range col {
			if math.IsNaN(x) {
				filled[ri] = v
			} else {
				filled[ri] = x
			}
		}
		cells[ci] = filled
	}
	return &Table{index: t.index, columns: t.columns, colIdx: t.colIdx, cells: cells}
}

// Max returns the largest finite cell value. ok is false when the table has
// no finite cells.
func (t *Table) Max() (float64, bool) {
	max, ok := math.Inf(-1), false
	for _, col := range t.cells {
		for _, x := range col {
			if !math.IsNaN(x) && x > max {
				max, ok = x, true
			}
		}
	}
	if !ok {
		return math.NaN(), false
	}
	return max, true
}

// Min returns the smallest finite cell value. ok is false when the table has
// no finite cells.
func (t *Table) Min() (float64, bool) {
	min, ok := math.Inf(1), false
	for _, col := range t.cells {
		for _, x := range col {
			if !math.IsNaN(x) && x < min {
				min, ok = x, true
			}
		}
	}
	if !ok {
		return math.NaN(), false
	}
	return min, true
}

// IntervalSeconds returns the sampling interval derived from the first two
// index entries. ok is false when the table has fewer than two rows.
func (t *Table) IntervalSeconds() (float64, bool) {
	if len(t.index) < 2 {
		return 0, false
	}
	return t.index[1].Sub(t.index[0]).Seconds(), true
}
