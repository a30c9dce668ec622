package s100

import (
	"fmt"
	"math"

	"github.com/oceanobs/tidewriter/internal/series"
)

// DCF8 timestamp format for start/end attributes.
const timeAttrFormat = "20060102T150405Z"

// DatasetNames names the per-station value and trend datasets a product
// stores in its station groups.
type DatasetNames struct {
	Values string
	Trend  string
}

// CreateStationGroups creates one Group_NNN subgroup per station column
// under the instance path, holding the station's value and trend vectors
// plus its timing attributes. The value table must already carry the fill
// value in place of missing samples; the trend table must be the same shape
// with flag cells. groupCounter is the zero-based instance counter, used
// only for error context.
func CreateStationGroups(f *File, instancePath string, wl, trend *series.Table, names DatasetNames, groupCounter int) error {
	if trend.Rows() != wl.Rows() || trend.Cols() != wl.Cols() {
		return &WriteError{
			Path: instancePath,
			Op:   fmt.Sprintf("create station groups (instance %d)", groupCounter),
			Err:  fmt.Errorf("trend table shape %dx%d does not match value table %dx%d", trend.Rows(), trend.Cols(), wl.Rows(), wl.Cols()),
		}
	}

	var interval uint64
	if secs, ok := wl.IntervalSeconds(); ok {
		interval = uint64(secs)
	}

	index := wl.Index()
	for j, station := range wl.Columns() {
		path := fmt.Sprintf("%s/Group_%03d", instancePath, j+1)
		grp, err := f.CreateGroup(path)
		if err != nil {
			return err
		}

		grp.SetStringAttr("stationIdentification", station)
		grp.SetUintAttr("numberOfTimes", uint64(wl.Rows()))
		grp.SetUintAttr("timeIntervalIndex", 1)
		grp.SetUintAttr("timeRecordInterval", interval)
		grp.SetStringAttr("startDateTime", index[0].UTC().Format(timeAttrFormat))
		grp.SetStringAttr("endDateTime", index[len(index)-1].UTC().Format(timeAttrFormat))

		values := make([][]float64, wl.Rows())
		flags := make([][]uint8, wl.Rows())
		wlCol := wl.ColumnAt(j)
		trendCol := trend.ColumnAt(j)
		for ri := range wlCol {
			values[ri] = []float64{wlCol[ri]}
			flags[ri] = []uint8{trendFlagByte(trendCol[ri])}
		}
		if err := grp.CreateFloatDataset(names.Values, values); err != nil {
			return err
		}
		if err := grp.CreateUint8Dataset(names.Trend, flags); err != nil {
			return err
		}
	}
	return nil
}

// trendFlagByte narrows a trend cell to its byte code. Cells outside the
// flag domain degrade to 3 (unknown) rather than corrupting the dataset.
func trendFlagByte(v float64) uint8 {
	if math.IsNaN(v) || v < 0 || v > 3 {
		return 3
	}
	return uint8(v)
}

// CreatePositioningGroup creates the station positioning subtree under an
// instance path from per-station latitude and longitude vectors.
func CreatePositioningGroup(f *File, instancePath string, pos PositionTable) error {
	grp, err := f.CreateGroup(instancePath + "/Positioning")
	if err != nil {
		return err
	}
	lat := make([][]float64, len(pos.Lat))
	lon := make([][]float64, len(pos.Lon))
	for i := range pos.Lat {
		lat[i] = []float64{pos.Lat[i]}
		lon[i] = []float64{pos.Lon[i]}
	}
	if err := grp.CreateFloatDataset("latitude", lat); err != nil {
		return err
	}
	if err := grp.CreateFloatDataset("longitude", lon); err != nil {
		return err
	}
	if err := grp.CreateStringDataset("stationIdentification", pos.Stations); err != nil {
		return err
	}
	return nil
}
