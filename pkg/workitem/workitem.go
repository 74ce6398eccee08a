// Package workitem defines the canonical work-item model that every
// platform adapter converges on.
//
// A [WorkItem] is the platform-independent representation of an issue,
// task, or epic. Adapters convert their native wire schemas into this
// model on reads and back out of it on writes; the migration pipeline
// only ever sees canonical items.
package workitem

import "time"

// Type is the canonical work-item type vocabulary shared by all providers.
type Type string

// Canonical work-item types.
const (
	TypeEpic    Type = "epic"
	TypeFeature Type = "feature"
	TypeStory   Type = "story"
	TypeBug     Type = "bug"
	TypeTask    Type = "task"
	TypeTest    Type = "test"
	TypeIssue   Type = "issue"
)

// Valid reports whether t is one of the canonical types.
func (t Type) Valid() bool {
	switch t {
	case TypeEpic, TypeFeature, TypeStory, TypeBug, TypeTask, TypeTest, TypeIssue:
		return true
	}
	return false
}

// State is the canonical open/closed state.
type State string

// Canonical states.
const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// Priority is the canonical priority scale.
type Priority string

// Canonical priorities, highest first.
const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// WorkItem is the canonical representation of a single tracked item.
//
// ProviderFields retains native data the canonical model has no field
// for (weight, story points, area paths, ...) so that items can be
// round-tripped and custom fields extracted during migration.
type WorkItem struct {
	ID          ID
	Type        Type
	Title       string
	Description string
	State       State
	Author      string
	Assignees   []string
	Labels      []string
	Milestone   string
	Iteration   string
	Priority    Priority
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
	WebURL      string

	ProviderFields map[string]any
}

// Relationships is the snapshot of an item's links to other items,
// captured once at extraction time and never mutated afterward.
type Relationships struct {
	Parent    string
	Children  []string
	Blocks    []string
	BlockedBy []string
	RelatedTo []string
}

// Export is a work item plus its relationship snapshot, as produced by
// an adapter's Export operation. Exports are read-only once created.
type Export struct {
	Item          WorkItem
	Relationships Relationships
	ExportedAt    time.Time
}

// Import is the minimal creation payload handed to a target adapter.
// It deliberately carries no identifiers; the target platform assigns
// its own.
type Import struct {
	Title        string
	Description  string
	Type         Type
	State        State
	Labels       []string
	Assignees    []string
	Priority     Priority
	CustomFields map[string]any
}
