// Package iwls is the REST connector for the Integrated Water Level System
// API: station metadata lookup, per-series time series retrieval, and
// boundary queries with pagination.
package iwls

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/oceanobs/tidewriter/internal/log"
	"github.com/oceanobs/tidewriter/internal/metrics"
)

const timeQueryFormat = "2006-01-02T15:04:05Z"

// Client talks to the IWLS REST API. Transient upstream failures are
// retried with exponential backoff; responses can be served from an
// optional cache to spare the upstream during batch generation.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *Cache
	maxRetries uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache attaches a response cache.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// NewClient returns a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StationData fetches one station's metadata and all four water level
// series for a UTC time range, assembled as a GeoJSON feature.
func (c *Client) StationData(ctx context.Context, stationCode string, start, end time.Time) (StationFeature, error) {
	meta, err := c.station(ctx, stationCode)
	if err != nil {
		return StationFeature{}, err
	}

	dataURL := fmt.Sprintf("%s/stations/%s/data", c.baseURL, url.PathEscape(meta.ID))

	props := StationProperties{Metadata: meta}
	for _, key := range []string{SeriesWLO, SeriesWLP, SeriesWLF, SeriesSpine} {
		readings, err := c.timeseries(ctx, dataURL, key, start, end)
		if err != nil {
			return StationFeature{}, fmt.Errorf("station %q series %q: %w", stationCode, key, err)
		}
		switch key {
		case SeriesWLO:
			props.WLO = readings
		case SeriesWLP:
			props.WLP = readings
		case SeriesWLF:
			props.WLF = readings
		case SeriesSpine:
			props.Spine = readings
		}
	}

	return StationFeature{
		Type: "Feature",
		ID:   meta.Code,
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: [2]float64{meta.Longitude, meta.Latitude},
		},
		Properties: props,
		SourceURL:  dataURL,
	}, nil
}

// BoundingBox is minx, miny, maxx, maxy in degrees.
type BoundingBox [4]float64

// Contains reports whether a lon/lat point falls inside the box.
func (b BoundingBox) Contains(lon, lat float64) bool {
	return lon >= b[0] && lon <= b[2] && lat >= b[1] && lat <= b[3]
}

// TimeseriesByBoundary fetches full station data for every station inside
// the bounding box, paginated by limit and startIndex. EndIndex in the
// returned collection is the cursor for the next page.
func (c *Client) TimeseriesByBoundary(ctx context.Context, bbox BoundingBox, start, end time.Time, limit, startIndex int) (FeatureCollection, error) {
	stations, err := c.stations(ctx)
	if err != nil {
		return FeatureCollection{}, err
	}

	var within []StationMetadata
	for _, st := range stations {
		if bbox.Contains(st.Longitude, st.Latitude) {
			within = append(within, st)
		}
	}

	if startIndex < 0 {
		startIndex = 0
	}
	pageEnd := startIndex + limit
	if pageEnd > len(within) || limit <= 0 {
		pageEnd = len(within)
	}
	var page []StationMetadata
	if startIndex < len(within) {
		page = within[startIndex:pageEnd]
	}

	fc := FeatureCollection{
		Type:           "FeatureCollection",
		NumberMatched:  len(within),
		NumberReturned: len(page),
		EndIndex:       startIndex + len(page),
	}
	for _, st := range page {
		feature, err := c.StationData(ctx, st.Code, start, end)
		if err != nil {
			return FeatureCollection{}, err
		}
		fc.Features = append(fc.Features, feature)
	}
	return fc, nil
}

// station resolves a station code to its metadata.
func (c *Client) station(ctx context.Context, code string) (StationMetadata, error) {
	u := fmt.Sprintf("%s/stations?code=%s", c.baseURL, url.QueryEscape(code))
	var matches []StationMetadata
	if err := c.getJSON(ctx, u, &matches); err != nil {
		return StationMetadata{}, fmt.Errorf("station %q: %w", code, err)
	}
	if len(matches) == 0 {
		return StationMetadata{}, fmt.Errorf("station %q: not found", code)
	}
	return matches[0], nil
}

// stations fetches the full station catalog.
func (c *Client) stations(ctx context.Context) ([]StationMetadata, error) {
	var all []StationMetadata
	if err := c.getJSON(ctx, c.baseURL+"/stations", &all); err != nil {
		return nil, fmt.Errorf("station catalog: %w", err)
	}
	return all, nil
}

// timeseries fetches one series for a station data URL.
func (c *Client) timeseries(ctx context.Context, dataURL, key string, start, end time.Time) ([]Reading, error) {
	code, ok := apiSeriesCode[key]
	if !ok {
		return nil, fmt.Errorf("unknown series key %q", key)
	}
	u := fmt.Sprintf("%s?time-series-code=%s&from=%s&to=%s",
		dataURL,
		url.QueryEscape(code),
		url.QueryEscape(start.UTC().Format(timeQueryFormat)),
		url.QueryEscape(end.UTC().Format(timeQueryFormat)),
	)
	var readings []Reading
	if err := c.getJSON(ctx, u, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

// getJSON fetches a URL into out, through the cache when one is attached.
// Server-side and transport failures are retried; client errors are not.
func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	if c.cache != nil {
		if body, ok := c.cache.Get(u); ok {
			metrics.APICacheHits.Inc()
			return json.Unmarshal(body, out)
		}
	}

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.APICallsTotal.WithLabelValues("error").Inc()
			return err
		}
		defer resp.Body.Close()
		metrics.APICallsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()
		metrics.APICallLatency.Observe(time.Since(start).Seconds())

		if resp.StatusCode >= 500 {
			return fmt.Errorf("upstream status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("upstream status %d", resp.StatusCode))
		}
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.RetryNotify(op, bo, func(err error, wait time.Duration) {
		log.Warnw("retrying upstream request", "url", u, "error", err, "wait", wait)
	}); err != nil {
		return fmt.Errorf("GET %s: %w", u, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("GET %s: decoding response: %w", u, err)
	}
	if c.cache != nil {
		c.cache.Put(u, body)
	}
	return nil
}
