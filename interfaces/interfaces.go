// Package interfaces defines core abstractions for the dosage API to
// improve testability and separation of concerns.
package interfaces

import (
	"context"

	"github.com/rxlabel/dosage-api/monitor"
	"github.com/rxlabel/dosage-api/openfda"
)

// LabelSource defines the contract for querying the external drug-label
// source. Implementations must be safe for concurrent use; each call is an
// independent, cancellable request.
type LabelSource interface {
	// Search returns deduplicated candidate matches for a free-text name.
	Search(ctx context.Context, query string) (*openfda.SearchResult, error)

	// FetchByID returns the full label record for a source identifier.
	FetchByID(ctx context.Context, id string) (*openfda.LabelRecord, error)

	// FetchByName returns the label record matching a brand or generic name.
	FetchByName(ctx context.Context, name string) (*openfda.LabelRecord, error)
}

// SourceMonitor reports the last observed reachability of the upstream
// source.
type SourceMonitor interface {
	Snapshot() monitor.Status
}
