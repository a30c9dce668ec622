package s104

import (
	"fmt"
	"math"

	"github.com/oceanobs/tidewriter/internal/iwls"
	"github.com/oceanobs/tidewriter/internal/s100"
	"github.com/oceanobs/tidewriter/internal/series"
)

// FillValue is the sentinel written in place of missing water level
// heights.
const FillValue = -9999.0

// datasetTypeOrder fixes the order in which present data types are
// numbered into instances.
var datasetTypeOrder = []string{iwls.SeriesWLO, iwls.SeriesWLF, iwls.SeriesWLP, iwls.SeriesSpine}

// Product is the S-104 DCF8 water level product. It implements
// s100.Product.
type Product struct {
	// Threshold is the trend classification threshold in height units per
	// sample.
	Threshold float64
}

// NewProduct returns the water level product with the given trend
// threshold; zero means DefaultTrendThreshold.
func NewProduct(threshold float64) *Product {
	if threshold == 0 {
		threshold = DefaultTrendThreshold
	}
	return &Product{Threshold: threshold}
}

func (p *Product) ProductID() string { return "WaterLevel" }
func (p *Product) FileType() string  { return "104" }

// FormatDataArrays reshapes raw station features into the writer's bundle:
// aligned value tables, trend tables, per-station positions, dataset-wide
// extrema over the raw values, and the ordered list of present data types.
// Missing samples become FillValue in the value tables only; extrema are
// taken before the substitution.
func (p *Product) FormatDataArrays(features []iwls.StationFeature) (*s100.DataArrays, error) {
	wl := make(map[string]*series.Table, len(datasetTypeOrder))
	trend := make(map[string]*series.Table, len(datasetTypeOrder))
	position := make(map[string]s100.PositionTable, len(datasetTypeOrder))

	for _, key := range datasetTypeOrder {
		t, err := s100.DataTable(features, key)
		if err != nil {
			return nil, fmt.Errorf("building %s table: %w", key, err)
		}
		wl[key] = t

		tr, err := Trends(t, p.Threshold)
		if err != nil {
			return nil, fmt.Errorf("generating %s trends: %w", key, err)
		}
		trend[key] = tr
	}

	// Extrema come from the raw values, before fill substitution.
	max, min := math.NaN(), math.NaN()
	allEmpty := true
	for _, key := range datasetTypeOrder {
		t := wl[key]
		if t.IsEmpty() {
			continue
		}
		allEmpty = false
		if m, ok := t.Max(); ok && (math.IsNaN(max) || m > max) {
			max = m
		}
		if m, ok := t.Min(); ok && (math.IsNaN(min) || m < min) {
			min = m
		}
	}
	if allEmpty {
		return nil, ErrEmptyDataset
	}

	var datasetTypes []string
	for _, key := range datasetTypeOrder {
		if !wl[key].IsEmpty() {
			datasetTypes = append(datasetTypes, key)
		}

		wl[key] = wl[key].Fill(FillValue)

		pos, err := s100.Positions(features, wl[key])
		if err != nil {
			return nil, fmt.Errorf("deriving %s positions: %w", key, err)
		}
		position[key] = pos
	}

	return &s100.DataArrays{
		WL:           wl,
		Trend:        trend,
		Position:     position,
		Max:          max,
		Min:          min,
		DatasetTypes: datasetTypes,
	}, nil
}
