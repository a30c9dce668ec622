package s100

import (
	"math"
	"testing"
	"time"

	"github.com/oceanobs/tidewriter/internal/iwls"
	"github.com/oceanobs/tidewriter/internal/series"
)

func fptr(v float64) *float64 { return &v }

func reading(minute int, v *float64) iwls.Reading {
	return iwls.Reading{
		EventDate: time.Date(2026, 8, 30, 12, minute, 0, 0, time.UTC),
		Value:     v,
	}
}

func feature(code string, lat, lon float64, wlo []iwls.Reading) iwls.StationFeature {
	return iwls.StationFeature{
		Type: "Feature",
		ID:   code,
		Geometry: iwls.Geometry{
			Type:        "Point",
			Coordinates: [2]float64{lon, lat},
		},
		Properties: iwls.StationProperties{
			Metadata: iwls.StationMetadata{Code: code, Latitude: lat, Longitude: lon},
			WLO:      wlo,
		},
	}
}

func TestDataTableAlignsStations(t *testing.T) {
	features := []iwls.StationFeature{
		feature("01970", 49.2, -123.1, []iwls.Reading{reading(0, fptr(1.0)), reading(15, fptr(1.1))}),
		feature("07735", 48.4, -123.4, []iwls.Reading{reading(15, fptr(2.0)), reading(30, nil)}),
	}

	tbl, err := DataTable(features, iwls.SeriesWLO)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Rows() != 3 || tbl.Cols() != 2 {
		t.Fatalf("shape %dx%d, want 3x2", tbl.Rows(), tbl.Cols())
	}
	if !math.IsNaN(tbl.At(0, 1)) {
		t.Error("station without sample at a union timestamp should be NaN")
	}
	if !math.IsNaN(tbl.At(2, 1)) {
		t.Error("null reading should be NaN")
	}
}

func TestDataTableEmptySeries(t *testing.T) {
	features := []iwls.StationFeature{feature("01970", 49.2, -123.1, nil)}
	tbl, err := DataTable(features, iwls.SeriesWLP)
	if err != nil {
		t.Fatal(err)
	}
	if !tbl.IsEmpty() {
		t.Fatal("no readings anywhere should build an empty table")
	}
}

func TestDataTableUnknownKey(t *testing.T) {
	features := []iwls.StationFeature{feature("01970", 49.2, -123.1, nil)}
	if _, err := DataTable(features, "bogus"); err == nil {
		t.Fatal("unknown series key must fail")
	}
}

func TestPositionsFollowColumnOrder(t *testing.T) {
	features := []iwls.StationFeature{
		feature("01970", 49.2, -123.1, []iwls.Reading{reading(0, fptr(1.0))}),
		feature("07735", 48.4, -123.4, []iwls.Reading{reading(0, fptr(2.0))}),
	}
	tbl, err := DataTable(features, iwls.SeriesWLO)
	if err != nil {
		t.Fatal(err)
	}
	pos, err := Positions(features, tbl)
	if err != nil {
		t.Fatal(err)
	}
	if len(pos.Stations) != 2 || pos.Stations[0] != "01970" || pos.Stations[1] != "07735" {
		t.Fatalf("stations %v", pos.Stations)
	}
	if pos.Lat[0] != 49.2 || pos.Lon[0] != -123.1 {
		t.Errorf("first station position %v,%v", pos.Lat[0], pos.Lon[0])
	}
}

func TestPositionsMissingMetadata(t *testing.T) {
	b := series.NewBuilder()
	b.AddColumn("99999", []series.Sample{{Time: time.Now(), Value: fptr(1.0)}})
	if _, err := Positions(nil, b.Build()); err == nil {
		t.Fatal("column without station metadata must fail")
	}
}
