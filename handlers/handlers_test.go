package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rxlabel/dosage-api/monitor"
	"github.com/rxlabel/dosage-api/openfda"
)

func TestRespondWithJSON(t *testing.T) {
	handler := NewHandler(NewMockLabelSourceBuilder().Build(), &MockSourceMonitor{})

	tests := []struct {
		name           string
		code           int
		payload        any
		expectedStatus int
		expectedJSON   string
	}{
		{
			name:           "successful response",
			code:           http.StatusOK,
			payload:        map[string]string{"message": "success"},
			expectedStatus: http.StatusOK,
			expectedJSON:   `{"message":"success"}`,
		},
		{
			name:           "array payload",
			code:           http.StatusOK,
			payload:        []string{"item1", "item2"},
			expectedStatus: http.StatusOK,
			expectedJSON:   `["item1","item2"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			handler.RespondWithJSON(rr, tt.code, tt.payload)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}

			if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
				t.Errorf("Expected Content-Type application/json; charset=utf-8, got %s", ct)
			}

			if !strings.Contains(rr.Body.String(), tt.expectedJSON) {
				t.Errorf("Expected body to contain %s, got %s", tt.expectedJSON, rr.Body.String())
			}
		})
	}
}

func TestRespondWithError(t *testing.T) {
	handler := NewHandler(NewMockLabelSourceBuilder().Build(), &MockSourceMonitor{})

	rr := httptest.NewRecorder()
	handler.RespondWithError(rr, http.StatusBadRequest, "Invalid input")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"message":"Invalid input"`) {
		t.Errorf("Expected message in body, got %s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"code":400`) {
		t.Errorf("Expected code in body, got %s", rr.Body.String())
	}
}

func TestSearchDrugs(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		source       *MockLabelSource
		expectedCode int
		expectedBody string
	}{
		{
			name:  "valid search",
			query: "tylenol",
			source: NewMockLabelSourceBuilder().WithSearchResult(&openfda.SearchResult{
				Results: []openfda.CandidateMatch{
					{ID: "abc-123", BrandName: strPtr("TYLENOL"), GenericName: strPtr("ACETAMINOPHEN")},
				},
				Total: 1,
			}).Build(),
			expectedCode: http.StatusOK,
			expectedBody: `"source":"openFDA"`,
		},
		{
			name:         "query too short",
			query:        "t",
			source:       NewMockLabelSourceBuilder().Build(),
			expectedCode: http.StatusBadRequest,
			expectedBody: "at least 2 characters",
		},
		{
			name:         "missing query",
			query:        "",
			source:       NewMockLabelSourceBuilder().Build(),
			expectedCode: http.StatusBadRequest,
			expectedBody: "at least 2 characters",
		},
		{
			name:         "whitespace only query",
			query:        "   ",
			source:       NewMockLabelSourceBuilder().Build(),
			expectedCode: http.StatusBadRequest,
			expectedBody: "at least 2 characters",
		},
		{
			name:  "empty result set is a valid answer",
			query: "nonexistent",
			source: NewMockLabelSourceBuilder().WithSearchResult(&openfda.SearchResult{
				Results: []openfda.CandidateMatch{},
				Total:   0,
			}).Build(),
			expectedCode: http.StatusOK,
			expectedBody: `"results":[]`,
		},
		{
			name:         "source unavailable",
			query:        "tylenol",
			source:       NewMockLabelSourceBuilder().WithSearchError(&openfda.UnavailableError{Err: errors.New("connection refused")}).Build(),
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: "unavailable",
		},
		{
			name:         "source error propagates status",
			query:        "tylenol",
			source:       NewMockLabelSourceBuilder().WithSearchError(&openfda.SourceError{StatusCode: http.StatusTooManyRequests, Err: errors.New("rate limited")}).Build(),
			expectedCode: http.StatusTooManyRequests,
			expectedBody: "openFDA API error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(tt.source, &MockSourceMonitor{})

			req := httptest.NewRequest("GET", "/api/fda/search?q="+url.QueryEscape(tt.query), nil)
			rr := httptest.NewRecorder()

			handler.SearchDrugs(rr, req)

			if rr.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d", tt.expectedCode, rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tt.expectedBody) {
				t.Errorf("Expected body to contain %q, got %s", tt.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestSearchDrugsTrimsQuery(t *testing.T) {
	source := NewMockLabelSourceBuilder().WithSearchResult(&openfda.SearchResult{
		Results: []openfda.CandidateMatch{}, Total: 0,
	}).Build()
	handler := NewHandler(source, &MockSourceMonitor{})

	req := httptest.NewRequest("GET", "/api/fda/search?q=%20%20advil%20%20", nil)
	rr := httptest.NewRecorder()

	handler.SearchDrugs(rr, req)

	if source.lastQuery != "advil" {
		t.Errorf("Expected trimmed query 'advil', got %q", source.lastQuery)
	}
}

func TestGetDrug(t *testing.T) {
	tests := []struct {
		name         string
		drugID       string
		source       *MockLabelSource
		expectedCode int
		expectedBody string
	}{
		{
			name:   "found",
			drugID: "abc-123",
			source: NewMockLabelSourceBuilder().WithRecord(&openfda.LabelRecord{
				ID:        "abc-123",
				BrandName: strPtr("TYLENOL"),
			}).Build(),
			expectedCode: http.StatusOK,
			expectedBody: `"id":"abc-123"`,
		},
		{
			name:         "not found",
			drugID:       "missing-id",
			source:       NewMockLabelSourceBuilder().WithRecordError(openfda.ErrNotFound).Build(),
			expectedCode: http.StatusNotFound,
			expectedBody: "Drug not found",
		},
		{
			name:         "source unavailable",
			drugID:       "abc-123",
			source:       NewMockLabelSourceBuilder().WithRecordError(&openfda.UnavailableError{Err: errors.New("timeout")}).Build(),
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(tt.source, &MockSourceMonitor{})

			req := httptest.NewRequest("GET", "/api/fda/drug/"+tt.drugID, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("drugID", tt.drugID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rr := httptest.NewRecorder()

			handler.GetDrug(rr, req)

			if rr.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d", tt.expectedCode, rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tt.expectedBody) {
				t.Errorf("Expected body to contain %q, got %s", tt.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestGetDrugByName(t *testing.T) {
	tests := []struct {
		name         string
		drugName     string
		source       *MockLabelSource
		expectedCode int
		expectedBody string
	}{
		{
			name:     "found",
			drugName: "tylenol",
			source: NewMockLabelSourceBuilder().WithRecord(&openfda.LabelRecord{
				ID:          "abc-123",
				BrandName:   strPtr("TYLENOL"),
				GenericName: strPtr("ACETAMINOPHEN"),
			}).Build(),
			expectedCode: http.StatusOK,
			expectedBody: `"generic_name":"ACETAMINOPHEN"`,
		},
		{
			name:         "not found mentions the name",
			drugName:     "notadrug",
			source:       NewMockLabelSourceBuilder().WithRecordError(openfda.ErrNotFound).Build(),
			expectedCode: http.StatusNotFound,
			expectedBody: "'notadrug' not found",
		},
		{
			name:         "name too short",
			drugName:     "x",
			source:       NewMockLabelSourceBuilder().Build(),
			expectedCode: http.StatusBadRequest,
			expectedBody: "at least 2 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(tt.source, &MockSourceMonitor{})

			req := httptest.NewRequest("GET", "/api/fda/drug-by-name?name="+tt.drugName, nil)
			rr := httptest.NewRecorder()

			handler.GetDrugByName(rr, req)

			if rr.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d", tt.expectedCode, rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tt.expectedBody) {
				t.Errorf("Expected body to contain %q, got %s", tt.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestEstimateDose(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "weight based match",
			url:          "/api/dose?name=ibuprofen&weight=20",
			expectedCode: http.StatusOK,
			expectedBody: `"single_dose":200`,
		},
		{
			name:         "no rule applies is still a 200",
			url:          "/api/dose?name=obscuredrug&age=30",
			expectedCode: http.StatusOK,
			expectedBody: `"matched":false`,
		},
		{
			name:         "missing name",
			url:          "/api/dose?age=30",
			expectedCode: http.StatusBadRequest,
			expectedBody: "Missing generic drug name",
		},
		{
			name:         "missing both age and weight",
			url:          "/api/dose?name=ibuprofen",
			expectedCode: http.StatusBadRequest,
			expectedBody: "at least age or weight",
		},
		{
			name:         "invalid age",
			url:          "/api/dose?name=ibuprofen&age=abc",
			expectedCode: http.StatusBadRequest,
			expectedBody: "Invalid age",
		},
		{
			name:         "negative weight",
			url:          "/api/dose?name=ibuprofen&weight=-5",
			expectedCode: http.StatusBadRequest,
			expectedBody: "Invalid weight",
		},
		{
			name:         "fixed dose by age",
			url:          "/api/dose?name=cetirizine&age=4",
			expectedCode: http.StatusOK,
			expectedBody: `"single_dose":5`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(NewMockLabelSourceBuilder().Build(), &MockSourceMonitor{})

			req := httptest.NewRequest("GET", tt.url, nil)
			rr := httptest.NewRecorder()

			handler.EstimateDose(rr, req)

			if rr.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d", tt.expectedCode, rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tt.expectedBody) {
				t.Errorf("Expected body to contain %q, got %s", tt.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestListGuidelines(t *testing.T) {
	handler := NewHandler(NewMockLabelSourceBuilder().Build(), &MockSourceMonitor{})

	req := httptest.NewRequest("GET", "/api/dose/guidelines", nil)
	rr := httptest.NewRecorder()

	handler.ListGuidelines(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var response struct {
		Guidelines []map[string]any `json:"guidelines"`
		Count      int              `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response.Count != 6 {
		t.Errorf("Expected 6 guidelines, got %d", response.Count)
	}
	if len(response.Guidelines) != response.Count {
		t.Errorf("Count %d does not match list length %d", response.Count, len(response.Guidelines))
	}

	// First entry keeps table order and carries the type tag
	first := response.Guidelines[0]
	if first["key"] != "ACETAMINOPHEN" {
		t.Errorf("Expected first guideline ACETAMINOPHEN, got %v", first["key"])
	}
	if first["type"] != "weight_based" {
		t.Errorf("Expected type weight_based, got %v", first["type"])
	}

	for _, g := range response.Guidelines {
		if g["type"] != "weight_based" && g["type"] != "fixed_by_age" {
			t.Errorf("Unexpected guideline type %v for %v", g["type"], g["key"])
		}
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		sourceStatus   monitor.Status
		expectedStatus string
	}{
		{
			name:           "healthy when source is up",
			sourceStatus:   monitor.Status{Up: true, LastChecked: time.Now()},
			expectedStatus: "healthy",
		},
		{
			name:           "degraded when source is down",
			sourceStatus:   monitor.Status{Up: false, LastChecked: time.Now(), LastError: "connection refused"},
			expectedStatus: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(NewMockLabelSourceBuilder().Build(), &MockSourceMonitor{status: tt.sourceStatus})

			req := httptest.NewRequest("GET", "/health", nil)
			rr := httptest.NewRecorder()

			handler.HealthCheck(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", rr.Code)
			}

			var response HealthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
				t.Fatalf("Failed to parse response: %v", err)
			}

			if response.Status != tt.expectedStatus {
				t.Errorf("Expected status %q, got %q", tt.expectedStatus, response.Status)
			}
			if response.Source.Up != tt.sourceStatus.Up {
				t.Errorf("Expected source up %v, got %v", tt.sourceStatus.Up, response.Source.Up)
			}
		})
	}
}
