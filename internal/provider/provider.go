// Package provider exposes IWLS water level data as geospatial features:
// a single station by identifier, or a feature collection by bounding box
// and time range.
package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oceanobs/tidewriter/internal/iwls"
)

// worldBounds is the query default when no bounding box is given.
var worldBounds = iwls.BoundingBox{-180, -90, 180, 90}

// Provider answers feature queries over the IWLS connector.
type Provider struct {
	client       *iwls.Client
	defaultLimit int
}

// New returns a provider with the given default page size.
func New(client *iwls.Client, defaultLimit int) *Provider {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &Provider{client: client, defaultLimit: defaultLimit}
}

// QueryParams are the feature collection query parameters. Zero values
// select the defaults: the whole world, the last and next 24 hours, the
// provider's page size, offset 0.
type QueryParams struct {
	Bbox       *iwls.BoundingBox
	Datetime   string // "start/end", both ISO 8601 UTC
	Limit      int
	StartIndex int
}

// Get returns a single station feature by identifier. Only the latest 24
// hours (and the next 24 hours of predictions and forecasts) are available
// through this path.
func (p *Provider) Get(ctx context.Context, identifier string) (iwls.StationFeature, error) {
	now := time.Now().UTC()
	return p.client.StationData(ctx, identifier, now.Add(-24*time.Hour), now.Add(24*time.Hour))
}

// Query returns the feature collection matching the parameters.
func (p *Provider) Query(ctx context.Context, params QueryParams) (iwls.FeatureCollection, error) {
	bbox := worldBounds
	if params.Bbox != nil {
		bbox = *params.Bbox
	}

	start, end, err := parseDatetime(params.Datetime)
	if err != nil {
		return iwls.FeatureCollection{}, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = p.defaultLimit
	}

	return p.client.TimeseriesByBoundary(ctx, bbox, start, end, limit, params.StartIndex)
}

// parseDatetime splits a "start/end" interval; empty means now plus or
// minus 24 hours.
func parseDatetime(datetime string) (time.Time, time.Time, error) {
	if datetime == "" {
		now := time.Now().UTC()
		return now.Add(-24 * time.Hour), now.Add(24 * time.Hour), nil
	}
	parts := strings.SplitN(datetime, "/", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("datetime %q: want start/end interval", datetime)
	}
	start, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("datetime start %q: %w", parts[0], err)
	}
	end, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("datetime end %q: %w", parts[1], err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("datetime %q: end precedes start", datetime)
	}
	return start.UTC(), end.UTC(), nil
}
