package platform

import (
	"context"

	"github.com/avollmer/workbridge/pkg/workitem"
)

// Provider defines the unified operation set every platform adapter
// implements.
//
// Contract requirements:
//   - Reads are idempotent: the same native object yields the same
//     canonical ID on every call.
//   - Operations the platform cannot perform fail with an error
//     wrapping [ErrUnsupported]; they never silently no-op.
//   - Adapters are stateless beyond their connection configuration.
//     A given adapter instance is driven by at most one migration
//     pipeline at a time; concurrent reuse must be serialized by the
//     caller.
type Provider interface {
	// Initialize validates connectivity and credentials, failing fast
	// on bad configuration before any other operation is attempted.
	Initialize(ctx context.Context) error

	// Name returns the provider name ("github", "gitlab", "azure").
	Name() string

	// Capabilities reports which optional features the platform supports.
	Capabilities() workitem.Capabilities

	// Get fetches a single work item by canonical ID.
	Get(ctx context.Context, id workitem.ID) (*workitem.WorkItem, error)

	// List returns the work items matching the filter.
	List(ctx context.Context, filter ListFilter) ([]workitem.WorkItem, error)

	// Create creates a new work item from an import payload and returns
	// the created item with its platform-assigned canonical ID.
	Create(ctx context.Context, imp workitem.Import) (*workitem.WorkItem, error)

	// Update applies a partial update to an existing item.
	Update(ctx context.Context, id workitem.ID, upd Update) (*workitem.WorkItem, error)

	// Delete removes an item. Platforms without true deletion emulate
	// it (GitHub closes the item and attaches archival labels).
	Delete(ctx context.Context, id workitem.ID) error

	// Link records a relationship between two items.
	Link(ctx context.Context, from, to workitem.ID, rel Relation) error

	// Unlink removes a relationship between two items.
	Unlink(ctx context.Context, from, to workitem.ID, rel Relation) error

	// BulkCreate creates several items, stopping at the first failure.
	BulkCreate(ctx context.Context, imps []workitem.Import) ([]workitem.WorkItem, error)

	// BulkUpdate applies several updates, stopping at the first failure.
	BulkUpdate(ctx context.Context, upds []BulkUpdate) ([]workitem.WorkItem, error)

	// Search performs a free-text search over the configured scope.
	Search(ctx context.Context, text string) ([]workitem.WorkItem, error)

	// Query executes a platform-native query (GitHub search qualifiers,
	// WIQL for Azure DevOps).
	Query(ctx context.Context, query string) ([]workitem.WorkItem, error)

	// Export fetches an item together with its relationship snapshot.
	Export(ctx context.Context, id workitem.ID) (*workitem.Export, error)
}
