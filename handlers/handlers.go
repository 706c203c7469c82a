// Package handlers provides HTTP request handlers for the dosage API
// endpoints: drug-label search and lookup against the openFDA proxy, dose
// estimation from the static rule table, and health checks.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rxlabel/dosage-api/dosing"
	"github.com/rxlabel/dosage-api/interfaces"
	"github.com/rxlabel/dosage-api/logging"
	"github.com/rxlabel/dosage-api/monitor"
	"github.com/rxlabel/dosage-api/openfda"
)

var serverStartTime = time.Now()

// Handler serves all API endpoints with injected dependencies.
type Handler struct {
	source  interfaces.LabelSource
	monitor interfaces.SourceMonitor
	table   []dosing.Rule
}

// NewHandler creates a handler backed by the given label source and source
// monitor, using the built-in dosing table.
func NewHandler(source interfaces.LabelSource, sourceMonitor interfaces.SourceMonitor) *Handler {
	return &Handler{
		source:  source,
		monitor: sourceMonitor,
		table:   dosing.DefaultTable,
	}
}

// RespondWithJSON writes a JSON response.
func (h *Handler) RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Warn("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response.
func (h *Handler) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// respondSourceError maps label-source failures onto the caller-facing
// surface: 404 for confirmed missing records, 503 when the source cannot
// be reached, and a propagated status code when the source answered with
// an unexpected status.
func (h *Handler) respondSourceError(w http.ResponseWriter, err error, notFoundMessage string) {
	var sourceErr *openfda.SourceError
	var unavailableErr *openfda.UnavailableError

	switch {
	case errors.Is(err, openfda.ErrNotFound):
		h.RespondWithError(w, http.StatusNotFound, notFoundMessage)
	case errors.As(err, &unavailableErr):
		h.RespondWithError(w, http.StatusServiceUnavailable, "openFDA API unavailable")
	case errors.As(err, &sourceErr):
		code := sourceErr.StatusCode
		if code < http.StatusBadRequest {
			code = http.StatusBadGateway
		}
		h.RespondWithError(w, code, "openFDA API error")
	default:
		logging.Error("Unexpected label source error", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// searchResponse is the caller-facing search envelope.
type searchResponse struct {
	Results []openfda.CandidateMatch `json:"results"`
	Total   int                      `json:"total"`
	Source  string                   `json:"source"`
}

// SearchDrugs handles GET /api/fda/search?q=<text>. Queries shorter than
// two characters are rejected here and never reach the source.
func (h *Handler) SearchDrugs(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(query) < 2 {
		h.RespondWithError(w, http.StatusBadRequest, "Search query must be at least 2 characters")
		return
	}

	result, err := h.source.Search(r.Context(), query)
	if err != nil {
		h.respondSourceError(w, err, "No drugs found")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, searchResponse{
		Results: result.Results,
		Total:   result.Total,
		Source:  "openFDA",
	})
}

// GetDrug handles GET /api/fda/drug/{drugID}.
func (h *Handler) GetDrug(w http.ResponseWriter, r *http.Request) {
	drugID := chi.URLParam(r, "drugID")
	if drugID == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Missing drug id")
		return
	}

	record, err := h.source.FetchByID(r.Context(), drugID)
	if err != nil {
		h.respondSourceError(w, err, "Drug not found")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, record)
}

// GetDrugByName handles GET /api/fda/drug-by-name?name=<text>. Brand names
// are tried before generic names; 404 only after both fail.
func (h *Handler) GetDrugByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if utf8.RuneCountInString(name) < 2 {
		h.RespondWithError(w, http.StatusBadRequest, "Drug name must be at least 2 characters")
		return
	}

	record, err := h.source.FetchByName(r.Context(), name)
	if err != nil {
		h.respondSourceError(w, err, "Drug '"+name+"' not found in FDA database")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, record)
}

// doseResponse wraps an estimate with the name it was computed for.
type doseResponse struct {
	GenericName string `json:"generic_name"`
	dosing.Estimate
}

// EstimateDose handles GET /api/dose?name=<generic>&age=<years>&weight=<kg>.
// A name matching no rule is a valid 200 outcome with matched=false; the
// caller should fall back to the label dosage text.
func (h *Handler) EstimateDose(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	name := strings.TrimSpace(query.Get("name"))
	if name == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Missing generic drug name")
		return
	}

	age, err := parseOptionalFloat(query.Get("age"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid age")
		return
	}

	weight, err := parseOptionalFloat(query.Get("weight"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid weight")
		return
	}

	if age == nil && weight == nil {
		h.RespondWithError(w, http.StatusBadRequest, "Provide at least age or weight")
		return
	}

	estimate := dosing.Calculate(name, age, weight, h.table)

	h.RespondWithJSON(w, http.StatusOK, doseResponse{
		GenericName: name,
		Estimate:    estimate,
	})
}

// guidelineView is the display shape of one dosing rule. The strategy is
// spelled out as a type tag so clients can render the two variants without
// probing for fields.
type guidelineView struct {
	Key         string              `json:"key"`
	Unit        string              `json:"unit"`
	Frequency   string              `json:"frequency"`
	Type        string              `json:"type"`
	WeightBased *dosing.WeightBased `json:"weight_based,omitempty"`
	FixedByAge  *dosing.FixedByAge  `json:"fixed_by_age,omitempty"`
}

// ListGuidelines handles GET /api/dose/guidelines, returning the static
// rule table in priority order.
func (h *Handler) ListGuidelines(w http.ResponseWriter, r *http.Request) {
	views := make([]guidelineView, 0, len(h.table))

	for _, rule := range h.table {
		view := guidelineView{
			Key:       rule.Key,
			Unit:      rule.Unit,
			Frequency: rule.Frequency,
		}
		switch g := rule.Guideline.(type) {
		case dosing.WeightBased:
			view.Type = "weight_based"
			view.WeightBased = &g
		case dosing.FixedByAge:
			view.Type = "fixed_by_age"
			view.FixedByAge = &g
		}
		views = append(views, view)
	}

	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"guidelines": views,
		"count":      len(views),
	})
}

// HealthResponse defines the structure for consistent JSON ordering.
type HealthResponse struct {
	Status        string                 `json:"status"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	Source        monitor.Status         `json:"source"`
	System        map[string]interface{} `json:"system"`
}

// HealthCheck returns server health information. The server is degraded,
// not unhealthy, when the upstream source is down: requests still run and
// fail individually.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	sourceStatus := h.monitor.Snapshot()

	healthStatus := "healthy"
	if !sourceStatus.Up {
		healthStatus = "degraded"
	}

	response := HealthResponse{
		Status:        healthStatus,
		UptimeSeconds: time.Since(serverStartTime).Seconds(),
		Source:        sourceStatus,
		System: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, http.StatusOK, response)
}

// parseOptionalFloat parses an optional query parameter. Empty means not
// supplied; a non-numeric or negative value is an error.
func parseOptionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	if value < 0 {
		return nil, errors.New("value cannot be negative")
	}

	return &value, nil
}
