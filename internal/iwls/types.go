package iwls

import (
	"fmt"
	"time"
)

// Data-type keys for the water level time series carried by a station
// feature. Order elsewhere in the system is always wlo, wlf, wlp, spine.
const (
	SeriesWLO   = "wlo"   // observations
	SeriesWLP   = "wlp"   // astronomical predictions
	SeriesWLF   = "wlf"   // model forecasts
	SeriesSpine = "spine" // blended observed/hindcast/forecast
)

// apiSeriesCode maps a data-type key to the time-series code the upstream
// API expects.
var apiSeriesCode = map[string]string{
	SeriesWLO:   "wlo",
	SeriesWLP:   "wlp",
	SeriesWLF:   "wlf",
	SeriesSpine: "wlf-spine",
}

// Reading is a single timestamped value from the upstream API. Value is nil
// when the API reported the timestamp without a height.
type Reading struct {
	EventDate time.Time `json:"eventDate"`
	Value     *float64  `json:"value"`
}

// StationMetadata is the station description returned by the upstream API.
type StationMetadata struct {
	ID           string  `json:"id,omitempty"`
	Code         string  `json:"code"`
	OfficialName string  `json:"officialName,omitempty"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// Geometry is a GeoJSON point geometry, coordinates ordered lon, lat.
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// StationProperties carries a station's metadata and its four water level
// series.
type StationProperties struct {
	Metadata StationMetadata `json:"metadata"`
	WLO      []Reading       `json:"wlo"`
	WLP      []Reading       `json:"wlp"`
	WLF      []Reading       `json:"wlf"`
	Spine    []Reading       `json:"spine"`
}

// Series returns the readings for a data-type key.
func (p *StationProperties) Series(key string) ([]Reading, error) {
	switch key {
	case SeriesWLO:
		return p.WLO, nil
	case SeriesWLP:
		return p.WLP, nil
	case SeriesWLF:
		return p.WLF, nil
	case SeriesSpine:
		return p.Spine, nil
	}
	return nil, fmt.Errorf("iwls: unknown series key %q", key)
}

// StationFeature is one station's GeoJSON feature: point geometry plus the
// station's time series in the properties.
type StationFeature struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Geometry   Geometry          `json:"geometry"`
	Properties StationProperties `json:"properties"`
	SourceURL  string            `json:"-"`
}

// FeatureCollection is the boundary-query result: matched station features
// plus the pagination cursor.
type FeatureCollection struct {
	Type           string           `json:"type"`
	Features       []StationFeature `json:"features"`
	NumberMatched  int              `json:"numberMatched"`
	NumberReturned int              `json:"numberReturned"`
	EndIndex       int              `json:"endIndex"`
}
