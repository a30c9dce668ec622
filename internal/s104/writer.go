package s104

import (
	"fmt"

	"github.com/oceanobs/tidewriter/internal/s100"
)

// TypeOfWaterLevelData is the S-104 enumeration for the origin of a water
// level series, over a signed integer base.
var TypeOfWaterLevelData = &s100.EnumType{
	Name: "typeOfWaterLevelData",
	Members: []s100.EnumMember{
		{Label: "Observation", Code: 1},
		{Label: "Astronomical prediction", Code: 2},
		{Label: "Analysis or hybrid method", Code: 3},
		{Label: "Hydrodynamic model hindcast", Code: 4},
		{Label: "Hydrodynamic model forecast", Code: 5},
		{Label: "Observed minus predicted", Code: 6},
		{Label: "Observed minus hindcast", Code: 7},
		{Label: "Observed minus forecast", Code: 9},
		{Label: "Forecast minus predicted", Code: 10},
	},
}

// datasetNames are the per-station datasets stored in each station group.
var datasetNames = s100.DatasetNames{Values: "waterLevelHeight", Trend: "waterLevelTrend"}

// waterLevelDataCode maps a data-type key to its typeOfWaterLevelData code.
// Forecast and spine series both carry the hydrodynamic model forecast
// code.
func waterLevelDataCode(key string) int64 {
	switch key {
	case "wlo":
		return 1
	case "wlp":
		return 2
	}
	return 5
}

// UpdateFeatureMetadata sets the bundle-derived attributes on the
// WaterLevel feature group. Everything else on the group comes from the
// template.
func (p *Product) UpdateFeatureMetadata(f *s100.File, data *s100.DataArrays) error {
	grp, ok := f.Group(p.ProductID())
	if !ok {
		return &s100.WriteError{Path: p.ProductID(), Op: "update feature metadata", Err: fmt.Errorf("feature group missing from template")}
	}
	grp.SetFloatAttr("maxDatasetHeight", data.Max)
	grp.SetFloatAttr("minDatasetHeight", data.Min)
	grp.SetUintAttr("numInstances", uint64(len(data.DatasetTypes)))
	return nil
}

// CreateGroups creates one instance group per present data type, in the
// fixed type order, numbered from .01. Each instance carries its data
// origin and station count, the per-station value and trend vectors, and
// the station positioning subtree. The first failed container operation
// aborts the write.
func (p *Product) CreateGroups(f *s100.File, data *s100.DataArrays) error {
	for i, dataType := range data.DatasetTypes {
		instanceWL := data.WL[dataType]
		instanceTrend := data.Trend[dataType]
		instancePosition := data.Position[dataType]

		instancePath := fmt.Sprintf("%s/%s.0%d", p.ProductID(), p.ProductID(), i+1)
		instance, err := f.CreateGroup(instancePath)
		if err != nil {
			return fmt.Errorf("data type %q: %w", dataType, err)
		}

		if err := instance.SetEnumAttr("typeOfWaterLevelData", waterLevelDataCode(dataType), TypeOfWaterLevelData); err != nil {
			return fmt.Errorf("data type %q: %w", dataType, err)
		}
		instance.SetUintAttr("numberOfStations", uint64(instanceWL.Cols()))

		if err := s100.CreateStationGroups(f, instancePath, instanceWL, instanceTrend, datasetNames, i); err != nil {
			return fmt.Errorf("data type %q: %w", dataType, err)
		}
		if err := s100.CreatePositioningGroup(f, instancePath, instancePosition); err != nil {
			return fmt.Errorf("data type %q: %w", dataType, err)
		}
	}
	return nil
}
