// Package typemap resolves canonical work-item types across the three
// provider type vocabularies.
//
// Resolution is a pure function: identical input always yields an
// identical result, including the order of the rationale trail. This
// lets adapters be extended without touching the migration pipeline.
package typemap

import (
	"fmt"
	"strings"

	"github.com/avollmer/workbridge/pkg/workitem"
)

// epicChildThreshold is the number of child items (or unchecked
// checklist entries) above which an untyped item is considered an epic.
const epicChildThreshold = 3

// Request carries the signals available for resolving a canonical type.
type Request struct {
	// SourceProvider is the provider the item came from.
	SourceProvider string

	// NativeType is the explicit native type name, when the source
	// platform has one ("User Story", "epic", ...). Explicit hints
	// always override heuristic inference.
	NativeType string

	// SubType is the native sub-type tag from the canonical ID, for
	// providers with multiple resource classes (GitLab issue vs epic).
	SubType string

	// TargetTemplate optionally names the target process template so
	// the resolved type can be constrained to its vocabulary.
	TargetTemplate string

	// Labels, ChildCount, and UncheckedTasks feed heuristic inference
	// and apply only when no explicit hint is present.
	Labels         []string
	ChildCount     int
	UncheckedTasks int
}

// Result is a resolved canonical type plus auxiliary tags preserving
// information the target type system cannot express, and an ordered
// rationale trail for audit logging.
type Result struct {
	Type      workitem.Type
	ExtraTags []string
	Rationale []string
}

// labelKeywords maps label substrings to canonical types, checked in a
// fixed order so resolution stays deterministic.
var labelKeywords = []struct {
	keyword string
	typ     workitem.Type
}{
	{"epic", workitem.TypeEpic},
	{"feature", workitem.TypeFeature},
	{"user story", workitem.TypeStory},
	{"story", workitem.TypeStory},
	{"bug", workitem.TypeBug},
	{"defect", workitem.TypeBug},
	{"task", workitem.TypeTask},
	{"chore", workitem.TypeTask},
	{"test", workitem.TypeTest},
	{"qa", workitem.TypeTest},
}

// Resolve determines the canonical type for the given signals.
func Resolve(req Request) Result {
	res := Result{}

	switch {
	case req.SubType != "":
		res.Type, res.Rationale = resolveExplicit(req.SourceProvider, req.SubType)
	case req.NativeType != "":
		res.Type, res.Rationale = resolveExplicit(req.SourceProvider, req.NativeType)
	default:
		res.Type, res.Rationale = resolveHeuristic(req)
	}

	if req.TargetTemplate != "" {
		res = constrainToTemplate(res, req.TargetTemplate)
	}
	return res
}

func resolveExplicit(provider, native string) (workitem.Type, []string) {
	if t, ok := NativeToCanonical(provider, native); ok {
		return t, []string{fmt.Sprintf("explicit native type %q maps to %q", native, t)}
	}
	return workitem.TypeIssue, []string{
		fmt.Sprintf("unknown native type %q on %s, defaulting to %q", native, provider, workitem.TypeIssue),
	}
}

func resolveHeuristic(req Request) (workitem.Type, []string) {
	for _, kw := range labelKeywords {
		for _, label := range req.Labels {
			if strings.Contains(strings.ToLower(label), kw.keyword) {
				return kw.typ, []string{
					fmt.Sprintf("label %q matches keyword %q, inferring %q", label, kw.keyword, kw.typ),
				}
			}
		}
	}
	if req.UncheckedTasks >= epicChildThreshold {
		return workitem.TypeEpic, []string{
			fmt.Sprintf("%d unchecked checklist items (threshold %d), inferring %q",
				req.UncheckedTasks, epicChildThreshold, workitem.TypeEpic),
		}
	}
	if req.ChildCount >= epicChildThreshold {
		return workitem.TypeEpic, []string{
			fmt.Sprintf("%d child items (threshold %d), inferring %q",
				req.ChildCount, epicChildThreshold, workitem.TypeEpic),
		}
	}
	return workitem.TypeIssue, []string{fmt.Sprintf("no type signals, defaulting to %q", workitem.TypeIssue)}
}

// constrainToTemplate downgrades a type the target template cannot
// express to its closest supported type, attaching the original type
// name as an extra tag so the information survives the migration.
func constrainToTemplate(res Result, template string) Result {
	tpl, ok := TemplateByName(template)
	if !ok {
		res.Rationale = append(res.Rationale,
			fmt.Sprintf("unknown target template %q, leaving type %q unchanged", template, res.Type))
		return res
	}
	if tpl.Supports(res.Type) {
		res.Rationale = append(res.Rationale,
			fmt.Sprintf("target template %q supports %q", tpl.Name, res.Type))
		return res
	}

	fallback := tpl.Fallback(res.Type)
	res.ExtraTags = append(res.ExtraTags, string(res.Type))
	res.Rationale = append(res.Rationale,
		fmt.Sprintf("target template %q cannot express %q, downgrading to %q with tag %q",
			tpl.Name, res.Type, fallback, res.Type))
	res.Type = fallback
	return res
}
