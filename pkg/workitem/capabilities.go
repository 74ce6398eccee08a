package workitem

// Capabilities declares which optional features a platform supports.
// Adapters return a fixed Capabilities value; the pipeline and type
// mapper consult it instead of hard-coding per-platform knowledge.
type Capabilities struct {
	SupportsEpics             bool
	SupportsIterations        bool
	SupportsMilestones        bool
	SupportsMultipleAssignees bool
	SupportsConfidential      bool
	SupportsWeight            bool
	SupportsTimeTracking      bool
	SupportsCustomFields      bool

	// MaxAssignees is the platform limit on assignees per item;
	// 0 means no platform-enforced limit.
	MaxAssignees int

	// HierarchyDepth is the number of nesting levels the platform's
	// type system expresses (epic > feature > story counts as 3).
	HierarchyDepth int

	// ItemTypes is the canonical type vocabulary the platform can
	// represent natively.
	ItemTypes []Type
}

// SupportsType reports whether t is in the platform's native vocabulary.
func (c Capabilities) SupportsType(t Type) bool {
	for _, have := range c.ItemTypes {
		if have == t {
			return true
		}
	}
	return false
}
