package iwls

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func fptr(v float64) *float64 { return &v }

type fakeAPI struct {
	stations []StationMetadata
	hits     atomic.Int64
}

// newFakeAPI serves a small station catalog plus synthetic readings for
// every series code.
func newFakeAPI(stations []StationMetadata) (*fakeAPI, *httptest.Server) {
	api := &fakeAPI{stations: stations}
	mux := http.NewServeMux()

	mux.HandleFunc("/stations", func(w http.ResponseWriter, r *http.Request) {
		api.hits.Add(1)
		code := r.URL.Query().Get("code")
		out := api.stations
		if code != "" {
			out = nil
			for _, st := range api.stations {
				if st.Code == code {
					out = append(out, st)
				}
			}
		}
		json.NewEncoder(w).Encode(out)
	})

	mux.HandleFunc("/stations/", func(w http.ResponseWriter, r *http.Request) {
		api.hits.Add(1)
		if !strings.HasSuffix(r.URL.Path, "/data") {
			http.NotFound(w, r)
			return
		}
		tsCode := r.URL.Query().Get("time-series-code")
		base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
		readings := []Reading{
			{EventDate: base, Value: fptr(1.0)},
			{EventDate: base.Add(15 * time.Minute), Value: fptr(1.2)},
		}
		if tsCode == "wlf-spine" {
			readings[1].Value = nil
		}
		json.NewEncoder(w).Encode(readings)
	})

	return api, httptest.NewServer(mux)
}

var testStations = []StationMetadata{
	{ID: "5cebf1df3d0f4a073c4bbd1e", Code: "07735", OfficialName: "Vancouver", Latitude: 49.29, Longitude: -123.11},
	{ID: "5cebf1de3d0f4a073c4bb996", Code: "07120", OfficialName: "Point Atkinson", Latitude: 49.34, Longitude: -123.25},
	{ID: "5cebf1df3d0f4a073c4bbd9f", Code: "00490", OfficialName: "Halifax", Latitude: 44.67, Longitude: -63.58},
}

func TestStationData(t *testing.T) {
	_, srv := newFakeAPI(testStations)
	defer srv.Close()

	c := NewClient(srv.URL)
	start := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	feature, err := c.StationData(context.Background(), "07735", start, start.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	if feature.Type != "Feature" || feature.ID != "07735" {
		t.Errorf("feature identity: %s %s", feature.Type, feature.ID)
	}
	if feature.Geometry.Coordinates != [2]float64{-123.11, 49.29} {
		t.Errorf("geometry coordinates %v, want lon,lat order", feature.Geometry.Coordinates)
	}
	if len(feature.Properties.WLO) != 2 || len(feature.Properties.Spine) != 2 {
		t.Fatalf("series lengths wlo=%d spine=%d", len(feature.Properties.WLO), len(feature.Properties.Spine))
	}
	if feature.Properties.Spine[1].Value != nil {
		t.Error("null reading should keep a nil value")
	}
	if feature.SourceURL == "" {
		t.Error("source URL must be recorded")
	}
}

func TestStationDataUnknownStation(t *testing.T) {
	_, srv := newFakeAPI(testStations)
	defer srv.Close()

	c := NewClient(srv.URL)
	now := time.Now()
	if _, err := c.StationData(context.Background(), "99999", now, now); err == nil {
		t.Fatal("unknown station must fail")
	}
}

func TestTimeseriesByBoundaryPagination(t *testing.T) {
	_, srv := newFakeAPI(testStations)
	defer srv.Close()

	c := NewClient(srv.URL)
	// west coast box matches 07735 and 07120, not Halifax
	bbox := BoundingBox{-124, 48, -122, 50}
	start := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	fc, err := c.TimeseriesByBoundary(context.Background(), bbox, start, start.Add(24*time.Hour), 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if fc.NumberMatched != 2 || fc.NumberReturned != 1 || fc.EndIndex != 1 {
		t.Fatalf("page 1: matched=%d returned=%d end=%d", fc.NumberMatched, fc.NumberReturned, fc.EndIndex)
	}

	fc2, err := c.TimeseriesByBoundary(context.Background(), bbox, start, start.Add(24*time.Hour), 1, fc.EndIndex)
	if err != nil {
		t.Fatal(err)
	}
	if fc2.NumberReturned != 1 || fc2.EndIndex != 2 {
		t.Fatalf("page 2: returned=%d end=%d", fc2.NumberReturned, fc2.EndIndex)
	}
	if fc.Features[0].ID == fc2.Features[0].ID {
		t.Error("pages must not overlap")
	}
}

func TestCacheAvoidsRefetch(t *testing.T) {
	api, srv := newFakeAPI(testStations)
	defer srv.Close()

	cache, err := OpenCache(":memory:", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	c := NewClient(srv.URL, WithCache(cache))
	start := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	if _, err := c.StationData(context.Background(), "07735", start, end); err != nil {
		t.Fatal(err)
	}
	first := api.hits.Load()
	if first == 0 {
		t.Fatal("first fetch must hit upstream")
	}

	if _, err := c.StationData(context.Background(), "07735", start, end); err != nil {
		t.Fatal(err)
	}
	if api.hits.Load() != first {
		t.Fatalf("second fetch hit upstream: %d -> %d", first, api.hits.Load())
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]StationMetadata{{ID: "x", Code: "07735", Latitude: 49, Longitude: -123}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithMaxRetries(4))
	if _, err := c.station(context.Background(), "07735"); err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("upstream called %d times, want 3", calls.Load())
	}
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithMaxRetries(4))
	if _, err := c.station(context.Background(), "07735"); err == nil {
		t.Fatal("client error must surface")
	}
	if calls.Load() != 1 {
		t.Errorf("upstream called %d times, want 1", calls.Load())
	}
}

func TestMalformedPayloadFailsFast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not": "a list"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.station(context.Background(), "07735"); err == nil {
		t.Fatal("malformed payload must fail")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	cache, err := OpenCache(":memory:", -time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	cache.Put("u", []byte("body"))
	if _, ok := cache.Get("u"); ok {
		t.Fatal("expired entry must not be served")
	}
}
