// Package platform provides a unified abstraction layer over the three
// supported work-item tracking backends.
//
// The [Provider] interface defines a common operation set that the
// GitHub, GitLab, and Azure DevOps adapters implement. The migration
// pipeline and any query surface depend only on this interface, never
// on adapter internals.
//
// Use [NewProvider] to construct the adapter for a configured backend:
//
//	provider, err := platform.NewProvider(ctx, platform.ProviderGitHub, cfg, logger)
//	if err := provider.Initialize(ctx); err != nil { ... }
//	items, err := provider.List(ctx, platform.ListFilter{State: workitem.StateOpen})
//
// Every adapter owns both directions of schema conversion between its
// native wire format and the canonical [workitem.WorkItem] model.
package platform

import (
	"time"

	"github.com/avollmer/workbridge/pkg/workitem"
)

// Provider names. These appear as the first component of canonical IDs.
const (
	ProviderGitHub = "github"
	ProviderGitLab = "gitlab"
	ProviderAzure  = "azure"
)

// Relation is the kind of a link between two work items.
type Relation string

// Supported relation kinds.
const (
	RelationParent  Relation = "parent"
	RelationChild   Relation = "child"
	RelationBlocks  Relation = "blocks"
	RelationBlocked Relation = "blocked-by"
	RelationRelated Relation = "related"
)

// ListFilter narrows a List operation. Zero values mean "no constraint".
type ListFilter struct {
	State        workitem.State
	Labels       []string
	Type         workitem.Type
	UpdatedAfter time.Time

	// Limit caps the number of returned items; 0 means no cap.
	Limit int
}

// Update carries the fields of an Update operation. Nil pointers leave
// the corresponding field untouched on the platform.
type Update struct {
	Title       *string
	Description *string
	State       *workitem.State
	Labels      *[]string
	Assignees   *[]string
	Priority    *workitem.Priority
}

// BulkUpdate pairs an item ID with the update to apply to it.
type BulkUpdate struct {
	ID     workitem.ID
	Update Update
}
