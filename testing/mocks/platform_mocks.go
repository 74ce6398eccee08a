// Package mocks provides call-tracking mock implementations for testing.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/avollmer/workbridge/pkg/platform"
	"github.com/avollmer/workbridge/pkg/workitem"
)

// MethodCall represents a tracked method call with its parameters.
type MethodCall struct {
	Method string
	Params map[string]any
}

// Provider is a mock implementation of platform.Provider with call tracking.
type Provider struct {
	mu    sync.Mutex
	calls []MethodCall

	// ProviderName is what Name returns; defaults to "mock".
	ProviderName string

	// CapabilitiesResponse is what Capabilities returns.
	CapabilitiesResponse workitem.Capabilities

	// Configurable responses
	InitializeError error
	GetResponse     *workitem.WorkItem
	GetError        error
	ListResponse    []workitem.WorkItem
	ListError       error
	CreateError     error
	UpdateResponse  *workitem.WorkItem
	UpdateError     error
	DeleteError     error
	LinkError       error
	UnlinkError     error
	SearchResponse  []workitem.WorkItem
	SearchError     error
	QueryResponse   []workitem.WorkItem
	QueryError      error
	ExportResponse  *workitem.Export
	ExportError     error

	// GetFunc, when set, overrides GetResponse/GetError per call.
	GetFunc func(id workitem.ID) (*workitem.WorkItem, error)

	// CreateFunc, when set, overrides the default Create behavior of
	// synthesizing an item with an incrementing native ID.
	CreateFunc func(imp workitem.Import) (*workitem.WorkItem, error)

	// ExportFunc, when set, overrides ExportResponse/ExportError per call.
	ExportFunc func(id workitem.ID) (*workitem.Export, error)

	created int
}

// NewProvider creates a new mock provider.
func NewProvider() *Provider {
	return &Provider{
		ProviderName: "mock",
		calls:        make([]MethodCall, 0),
	}
}

func (m *Provider) trackCall(method string, params map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MethodCall{Method: method, Params: params})
}

// Initialize implements platform.Provider.
func (m *Provider) Initialize(_ context.Context) error {
	m.trackCall("Initialize", nil)
	return m.InitializeError
}

// Name implements platform.Provider.
func (m *Provider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Capabilities implements platform.Provider.
func (m *Provider) Capabilities() workitem.Capabilities {
	return m.CapabilitiesResponse
}

// Get implements platform.Provider.
func (m *Provider) Get(_ context.Context, id workitem.ID) (*workitem.WorkItem, error) {
	m.trackCall("Get", map[string]any{"id": id.String()})
	if m.GetFunc != nil {
		return m.GetFunc(id)
	}
	return m.GetResponse, m.GetError
}

// List implements platform.Provider.
func (m *Provider) List(_ context.Context, filter platform.ListFilter) ([]workitem.WorkItem, error) {
	m.trackCall("List", map[string]any{"filter": filter})
	return m.ListResponse, m.ListError
}

// Create implements platform.Provider. Unless CreateFunc is set, it
// synthesizes a work item with an incrementing native ID.
func (m *Provider) Create(_ context.Context, imp workitem.Import) (*workitem.WorkItem, error) {
	m.trackCall("Create", map[string]any{"title": imp.Title})
	if m.CreateFunc != nil {
		return m.CreateFunc(imp)
	}
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	m.mu.Lock()
	m.created++
	nativeID := m.created
	m.mu.Unlock()
	return &workitem.WorkItem{
		ID: workitem.ID{
			Provider: m.Name(),
			Scope:    "mock/project",
			NativeID: fmt.Sprintf("%d", nativeID),
		},
		Title:     imp.Title,
		Type:      imp.Type,
		State:     imp.State,
		Labels:    imp.Labels,
		Assignees: imp.Assignees,
		Priority:  imp.Priority,
	}, nil
}

// Update implements platform.Provider.
func (m *Provider) Update(_ context.Context, id workitem.ID, upd platform.Update) (*workitem.WorkItem, error) {
	m.trackCall("Update", map[string]any{"id": id.String(), "update": upd})
	return m.UpdateResponse, m.UpdateError
}

// Delete implements platform.Provider.
func (m *Provider) Delete(_ context.Context, id workitem.ID) error {
	m.trackCall("Delete", map[string]any{"id": id.String()})
	return m.DeleteError
}

// Link implements platform.Provider.
func (m *Provider) Link(_ context.Context, from, to workitem.ID, rel platform.Relation) error {
	m.trackCall("Link", map[string]any{"from": from.String(), "to": to.String(), "rel": rel})
	return m.LinkError
}

// Unlink implements platform.Provider.
func (m *Provider) Unlink(_ context.Context, from, to workitem.ID, rel platform.Relation) error {
	m.trackCall("Unlink", map[string]any{"from": from.String(), "to": to.String(), "rel": rel})
	return m.UnlinkError
}

// BulkCreate implements platform.Provider.
func (m *Provider) BulkCreate(ctx context.Context, imps []workitem.Import) ([]workitem.WorkItem, error) {
	m.trackCall("BulkCreate", map[string]any{"count": len(imps)})
	created := make([]workitem.WorkItem, 0, len(imps))
	for _, imp := range imps {
		item, err := m.Create(ctx, imp)
		if err != nil {
			return created, err
		}
		created = append(created, *item)
	}
	return created, nil
}

// BulkUpdate implements platform.Provider.
func (m *Provider) BulkUpdate(ctx context.Context, upds []platform.BulkUpdate) ([]workitem.WorkItem, error) {
	m.trackCall("BulkUpdate", map[string]any{"count": len(upds)})
	updated := make([]workitem.WorkItem, 0, len(upds))
	for _, u := range upds {
		item, err := m.Update(ctx, u.ID, u.Update)
		if err != nil {
			return updated, err
		}
		if item != nil {
			updated = append(updated, *item)
		}
	}
	return updated, nil
}

// Search implements platform.Provider.
func (m *Provider) Search(_ context.Context, text string) ([]workitem.WorkItem, error) {
	m.trackCall("Search", map[string]any{"text": text})
	return m.SearchResponse, m.SearchError
}

// Query implements platform.Provider.
func (m *Provider) Query(_ context.Context, query string) ([]workitem.WorkItem, error) {
	m.trackCall("Query", map[string]any{"query": query})
	return m.QueryResponse, m.QueryError
}

// Export implements platform.Provider.
func (m *Provider) Export(_ context.Context, id workitem.ID) (*workitem.Export, error) {
	m.trackCall("Export", map[string]any{"id": id.String()})
	if m.ExportFunc != nil {
		return m.ExportFunc(id)
	}
	return m.ExportResponse, m.ExportError
}

// GetCalls returns all tracked method calls.
func (m *Provider) GetCalls() []MethodCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MethodCall{}, m.calls...)
}

// GetCallCount returns the number of times a method was called.
func (m *Provider) GetCallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, call := range m.calls {
		if call.Method == method {
			count++
		}
	}
	return count
}

// GetLastCall returns the last call to the specified method, or nil if not called.
func (m *Provider) GetLastCall(method string) *MethodCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.calls) - 1; i >= 0; i-- {
		if m.calls[i].Method == method {
			return &m.calls[i]
		}
	}
	return nil
}

// Reset clears all tracked calls.
func (m *Provider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make([]MethodCall, 0)
	m.created = 0
}

// Compile-time interface check.
var _ platform.Provider = (*Provider)(nil)
