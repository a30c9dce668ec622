package s100

import (
	"fmt"

	"github.com/oceanobs/tidewriter/internal/iwls"
	"github.com/oceanobs/tidewriter/internal/series"
)

// DataTable builds the station-wise time series table for one data-type key
// from the raw station features: one column per station carrying that
// series, aligned on the sorted union of all timestamps. Stations without a
// single reading for the key contribute no column; when no station carries
// the series the table is empty.
func DataTable(features []iwls.StationFeature, key string) (*series.Table, error) {
	b := series.NewBuilder()
	for _, ft := range features {
		readings, err := ft.Properties.Series(key)
		if err != nil {
			return nil, fmt.Errorf("station %q: %w", ft.Properties.Metadata.Code, err)
		}
		if len(readings) == 0 {
			continue
		}
		samples := make([]series.Sample, len(readings))
		for i, r := range readings {
			samples[i] = series.Sample{Time: r.EventDate, Value: r.Value}
		}
		b.AddColumn(ft.Properties.Metadata.Code, samples)
	}
	return b.Build(), nil
}

// PositionTable holds per-station WGS84 positions, ordered like the table
// columns it was derived from.
type PositionTable struct {
	Stations []string
	Lat      []float64
	Lon      []float64
}

// Positions derives the position table for a data table from the station
// metadata carried by the features. Every table column must have matching
// metadata.
func Positions(features []iwls.StationFeature, t *series.Table) (PositionTable, error) {
	meta := make(map[string]iwls.StationMetadata, len(features))
	for _, ft := range features {
		meta[ft.Properties.Metadata.Code] = ft.Properties.Metadata
	}

	pos := PositionTable{}
	for _, station := range t.Columns() {
		m, ok := meta[station]
		if !ok {
			return PositionTable{}, fmt.Errorf("no station metadata for column %q", station)
		}
		pos.Stations = append(pos.Stations, station)
		pos.Lat = append(pos.Lat, m.Latitude)
		pos.Lon = append(pos.Lon, m.Longitude)
	}
	return pos, nil
}
