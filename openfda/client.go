// Package openfda queries the openFDA drug-label endpoint and reshapes the
// raw records into compact, normalized results. It is a thin proxy: no
// caching, no retries, and every failure maps to one of a small set of
// caller-facing error conditions.
package openfda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rxlabel/dosage-api/logging"
	"github.com/rxlabel/dosage-api/metrics"
	"github.com/sony/gobreaker"
)

// DefaultBaseURL is the public openFDA drug-label endpoint.
const DefaultBaseURL = "https://api.fda.gov/drug/label.json"

// DefaultTimeout bounds each upstream request.
const DefaultTimeout = 10 * time.Second

// Disclaimer accompanies records returned by FetchByName for display.
const Disclaimer = "This information is from FDA drug labeling. Always consult a healthcare professional."

const searchLimit = 20

// Client talks to the openFDA label endpoint. All methods are safe for
// concurrent use; each call is an independent, time-bounded request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a client for the given base URL. Zero values fall back
// to DefaultBaseURL and DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openfda",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		breaker:    breaker,
	}
}

// Search queries brand and generic names for the given free-text query and
// returns up to 20 deduplicated candidate matches. A source-side "no
// matches" yields an empty result set, not an error. Callers are expected
// to have validated the query length already.
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("search", fmt.Sprintf("(openfda.brand_name:%s OR openfda.generic_name:%s)", query, query))
	params.Set("limit", fmt.Sprintf("%d", searchLimit))

	env, err := c.get(ctx, "search", params)
	if errors.Is(err, errNoMatches) {
		return &SearchResult{Results: []CandidateMatch{}}, nil
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(env.Results))
	results := make([]CandidateMatch, 0, len(env.Results))

	for _, item := range env.Results {
		brand := firstOf(item.OpenFDA.BrandName)
		generic := firstOf(item.OpenFDA.GenericName)

		// A record without any name is useless to the caller.
		if brand == nil && generic == nil {
			continue
		}

		// First occurrence wins; later duplicates in the batch are dropped.
		key := dedupKey(brand, generic)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		results = append(results, CandidateMatch{
			ID:           item.ID,
			BrandName:    brand,
			GenericName:  generic,
			Manufacturer: firstOf(item.OpenFDA.ManufacturerName),
			ProductType:  firstOf(item.OpenFDA.ProductType),
		})
	}

	return &SearchResult{Results: results, Total: env.Meta.Results.Total}, nil
}

// FetchByID retrieves the full label record for a source identifier.
// Returns ErrNotFound when the source has no such record.
func (c *Client) FetchByID(ctx context.Context, id string) (*LabelRecord, error) {
	params := url.Values{}
	params.Set("search", "id:"+id)
	params.Set("limit", "1")

	env, err := c.get(ctx, "drug", params)
	if errors.Is(err, errNoMatches) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(env.Results) == 0 {
		return nil, ErrNotFound
	}

	return recordFromResult(&env.Results[0]), nil
}

// FetchByName retrieves a label record by exact name. Brand names are the
// more common user input, so they are tried first; the generic-name field
// is queried once when the brand lookup finds nothing. ErrNotFound is
// returned only after both attempts are exhausted.
func (c *Client) FetchByName(ctx context.Context, name string) (*LabelRecord, error) {
	for _, field := range []string{"openfda.brand_name", "openfda.generic_name"} {
		params := url.Values{}
		params.Set("search", fmt.Sprintf("%s:%q", field, name))
		params.Set("limit", "1")

		env, err := c.get(ctx, "drug-by-name", params)
		if errors.Is(err, errNoMatches) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(env.Results) == 0 {
			continue
		}

		record := recordFromResult(&env.Results[0])
		record.Disclaimer = Disclaimer
		return record, nil
	}

	return nil, ErrNotFound
}

// Probe issues the cheapest possible request against the source, used by
// the health monitor to report upstream reachability.
func (c *Client) Probe(ctx context.Context) error {
	params := url.Values{}
	params.Set("limit", "1")

	_, err := c.get(ctx, "probe", params)
	if errors.Is(err, errNoMatches) {
		return nil
	}
	return err
}

// httpResult carries a completed response out of the circuit breaker.
type httpResult struct {
	status int
	body   []byte
}

// get performs one request and maps every failure to the package's error
// taxonomy. Transport failures and source 5xx count against the breaker;
// a 404 is a valid "zero matches" answer, surfaced as errNoMatches.
func (c *Client) get(ctx context.Context, operation string, params url.Values) (*labelEnvelope, error) {
	start := time.Now()
	env, err := c.doGet(ctx, params)
	metrics.ObserveSourceRequest(operation, outcomeLabel(err), time.Since(start))

	if err != nil && !errors.Is(err, errNoMatches) {
		logging.Warn("openFDA request failed", "operation", operation, "error", err)
	}
	return env, err
}

func (c *Client) doGet(ctx context.Context, params url.Values) (*labelEnvelope, error) {
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &UnavailableError{Err: err}
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				logging.Warn("Failed to close response body", "error", err)
			}
		}()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &UnavailableError{Err: err}
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &SourceError{StatusCode: resp.StatusCode}
		}
		return httpResult{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &UnavailableError{Err: err}
		}
		return nil, err
	}

	result := raw.(httpResult)
	if result.status == http.StatusNotFound {
		return nil, errNoMatches
	}
	if result.status < 200 || result.status > 299 {
		return nil, &SourceError{StatusCode: result.status}
	}

	var env labelEnvelope
	if err := json.Unmarshal(result.body, &env); err != nil {
		return nil, &SourceError{StatusCode: result.status, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return &env, nil
}

// recordFromResult shapes one raw result into a LabelRecord. Display
// strings are taken as-is; long-form text is normalized.
func recordFromResult(item *labelResult) *LabelRecord {
	return &LabelRecord{
		ID:               item.ID,
		BrandName:        firstOf(item.OpenFDA.BrandName),
		GenericName:      firstOf(item.OpenFDA.GenericName),
		Manufacturer:     firstOf(item.OpenFDA.ManufacturerName),
		ProductType:      firstOf(item.OpenFDA.ProductType),
		Route:            firstOf(item.OpenFDA.Route),
		ActiveIngredient: firstCleaned(item.ActiveIngredient),
		Purpose:          firstCleaned(item.Purpose),
		Indications:      firstCleaned(item.IndicationsAndUsage),
		DosageText:       firstCleaned(item.DosageAndAdministration),
		Warnings:         firstCleaned(item.Warnings),
		DoNotUse:         firstCleaned(item.DoNotUse),
		AskDoctor:        firstCleaned(item.AskDoctor),
		StopUse:          firstCleaned(item.StopUse),
		Storage:          firstCleaned(item.StorageAndHandling),
	}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errNoMatches):
		return "no_matches"
	default:
		var unavailable *UnavailableError
		if errors.As(err, &unavailable) {
			return "unavailable"
		}
		return "source_error"
	}
}
