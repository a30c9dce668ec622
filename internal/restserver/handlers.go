package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/oceanobs/tidewriter/internal/iwls"
	"github.com/oceanobs/tidewriter/internal/metrics"
	"github.com/oceanobs/tidewriter/internal/provider"
	"github.com/oceanobs/tidewriter/internal/s104"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{controller: ctrl}
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (c *Controller) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, req)

		route := req.URL.Path
		if current := mux.CurrentRoute(req); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		c.logger.Infow("request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", req.RemoteAddr,
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// parseBbox parses "minx,miny,maxx,maxy".
func parseBbox(raw string) (*iwls.BoundingBox, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bbox %q: want minx,miny,maxx,maxy", raw)
	}
	var bbox iwls.BoundingBox
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bbox %q: %w", raw, err)
		}
		bbox[i] = v
	}
	return &bbox, nil
}

func parseIntParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// GetItems handles the feature collection query.
func (h *Handlers) GetItems(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	bbox, err := parseBbox(q.Get("bbox"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := parseIntParam(q.Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("limit: %w", err))
		return
	}
	startIndex, err := parseIntParam(q.Get("startindex"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("startindex: %w", err))
		return
	}

	fc, err := h.controller.provider.Query(req.Context(), provider.QueryParams{
		Bbox:       bbox,
		Datetime:   q.Get("datetime"),
		Limit:      limit,
		StartIndex: startIndex,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

// GetItem handles a single feature lookup by station identifier.
func (h *Handlers) GetItem(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	feature, err := h.controller.provider.Get(req.Context(), id)
	if err != nil {
		status := http.StatusBadGateway
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, feature)
}

// generateRequest is the product generation request body.
type generateRequest struct {
	Bbox       string `json:"bbox"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Limit      int    `json:"limit,omitempty"`
	StartIndex int    `json:"start_index,omitempty"`
}

// GenerateProducts fetches all stations in the requested boundary and
// writes one S-104 product file covering them.
func (h *Handlers) GenerateProducts(w http.ResponseWriter, req *http.Request) {
	if h.controller.generator == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("product generation is not configured"))
		return
	}

	var body generateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	bbox, err := parseBbox(body.Bbox)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	datetime := ""
	if body.StartTime != "" || body.EndTime != "" {
		datetime = body.StartTime + "/" + body.EndTime
	}

	fc, err := h.controller.provider.Query(req.Context(), provider.QueryParams{
		Bbox:       bbox,
		Datetime:   datetime,
		Limit:      body.Limit,
		StartIndex: body.StartIndex,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	if len(fc.Features) == 0 {
		writeError(w, http.StatusNotFound, fmt.Errorf("no stations in requested boundary"))
		return
	}

	start := time.Now()
	path, err := h.controller.generator.Generate(fc.Features)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "error"
		status := http.StatusInternalServerError
		if errors.Is(err, s104.ErrEmptyDataset) {
			outcome = "empty"
			status = http.StatusUnprocessableEntity
		}
		metrics.GenerationRunsTotal.WithLabelValues("WaterLevel", outcome).Inc()
		writeError(w, status, err)
		return
	}
	metrics.GenerationRunsTotal.WithLabelValues("WaterLevel", "ok").Inc()

	writeJSON(w, http.StatusCreated, map[string]any{
		"file":     path,
		"stations": len(fc.Features),
	})
}

// Health reports service liveness.
func (h *Handlers) Health(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
