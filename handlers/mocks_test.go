package handlers

import (
	"context"

	"github.com/rxlabel/dosage-api/monitor"
	"github.com/rxlabel/dosage-api/openfda"
)

// MockLabelSource implements interfaces.LabelSource with canned responses.
type MockLabelSource struct {
	searchResult *openfda.SearchResult
	searchErr    error
	record       *openfda.LabelRecord
	recordErr    error

	lastQuery string
	lastID    string
	lastName  string
}

func (m *MockLabelSource) Search(ctx context.Context, query string) (*openfda.SearchResult, error) {
	m.lastQuery = query
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResult, nil
}

func (m *MockLabelSource) FetchByID(ctx context.Context, id string) (*openfda.LabelRecord, error) {
	m.lastID = id
	if m.recordErr != nil {
		return nil, m.recordErr
	}
	return m.record, nil
}

func (m *MockLabelSource) FetchByName(ctx context.Context, name string) (*openfda.LabelRecord, error) {
	m.lastName = name
	if m.recordErr != nil {
		return nil, m.recordErr
	}
	return m.record, nil
}

// MockLabelSourceBuilder builds configured mock sources.
type MockLabelSourceBuilder struct {
	source *MockLabelSource
}

func NewMockLabelSourceBuilder() *MockLabelSourceBuilder {
	return &MockLabelSourceBuilder{source: &MockLabelSource{
		searchResult: &openfda.SearchResult{Results: []openfda.CandidateMatch{}},
	}}
}

func (b *MockLabelSourceBuilder) WithSearchResult(result *openfda.SearchResult) *MockLabelSourceBuilder {
	b.source.searchResult = result
	return b
}

func (b *MockLabelSourceBuilder) WithSearchError(err error) *MockLabelSourceBuilder {
	b.source.searchErr = err
	return b
}

func (b *MockLabelSourceBuilder) WithRecord(record *openfda.LabelRecord) *MockLabelSourceBuilder {
	b.source.record = record
	return b
}

func (b *MockLabelSourceBuilder) WithRecordError(err error) *MockLabelSourceBuilder {
	b.source.recordErr = err
	return b
}

func (b *MockLabelSourceBuilder) Build() *MockLabelSource {
	return b.source
}

// MockSourceMonitor implements interfaces.SourceMonitor.
type MockSourceMonitor struct {
	status monitor.Status
}

func (m *MockSourceMonitor) Snapshot() monitor.Status {
	return m.status
}

func strPtr(s string) *string {
	return &s
}
