package typemap

import (
	"strings"

	"github.com/avollmer/workbridge/pkg/workitem"
)

// Template describes a process template: the type vocabulary an Azure
// DevOps style backend exposes and how deep its hierarchy nests.
type Template struct {
	Name           string
	HierarchyDepth int

	// nativeNames maps canonical types to the template's native type
	// names. Absence means the template cannot express the type.
	nativeNames map[workitem.Type]string
}

// The three supported process templates.
var (
	templateAgile = Template{
		Name:           "agile",
		HierarchyDepth: 4,
		nativeNames: map[workitem.Type]string{
			workitem.TypeEpic:    "Epic",
			workitem.TypeFeature: "Feature",
			workitem.TypeStory:   "User Story",
			workitem.TypeBug:     "Bug",
			workitem.TypeTask:    "Task",
			workitem.TypeTest:    "Test Case",
			workitem.TypeIssue:   "Issue",
		},
	}
	templateScrum = Template{
		Name:           "scrum",
		HierarchyDepth: 4,
		nativeNames: map[workitem.Type]string{
			workitem.TypeEpic:    "Epic",
			workitem.TypeFeature: "Feature",
			workitem.TypeStory:   "Product Backlog Item",
			workitem.TypeBug:     "Bug",
			workitem.TypeTask:    "Task",
			workitem.TypeTest:    "Test Case",
			workitem.TypeIssue:   "Impediment",
		},
	}
	templateBasic = Template{
		Name:           "basic",
		HierarchyDepth: 3,
		nativeNames: map[workitem.Type]string{
			workitem.TypeEpic:  "Epic",
			workitem.TypeIssue: "Issue",
			workitem.TypeTask:  "Task",
		},
	}
)

// TemplateByName looks up a process template by its config name.
func TemplateByName(name string) (Template, bool) {
	switch strings.ToLower(name) {
	case "agile":
		return templateAgile, true
	case "scrum":
		return templateScrum, true
	case "basic":
		return templateBasic, true
	}
	return Template{}, false
}

// Supports reports whether the template's vocabulary expresses t.
func (t Template) Supports(typ workitem.Type) bool {
	_, ok := t.nativeNames[typ]
	return ok
}

// NativeName returns the template's native type name for a canonical
// type, falling back through [Template.Fallback] when unsupported.
func (t Template) NativeName(typ workitem.Type) string {
	if name, ok := t.nativeNames[typ]; ok {
		return name
	}
	return t.nativeNames[t.Fallback(typ)]
}

// Types returns the canonical types the template expresses, in
// hierarchy order.
func (t Template) Types() []workitem.Type {
	ordered := []workitem.Type{
		workitem.TypeEpic, workitem.TypeFeature, workitem.TypeStory,
		workitem.TypeBug, workitem.TypeTask, workitem.TypeTest, workitem.TypeIssue,
	}
	out := make([]workitem.Type, 0, len(t.nativeNames))
	for _, typ := range ordered {
		if t.Supports(typ) {
			out = append(out, typ)
		}
	}
	return out
}

// Fallback picks the closest supported type for one the template
// cannot express.
func (t Template) Fallback(typ workitem.Type) workitem.Type {
	if t.Supports(typ) {
		return typ
	}
	switch typ {
	case workitem.TypeFeature:
		if t.Supports(workitem.TypeEpic) {
			return workitem.TypeEpic
		}
	case workitem.TypeStory, workitem.TypeBug, workitem.TypeTest:
		if t.Supports(workitem.TypeIssue) {
			return workitem.TypeIssue
		}
	}
	return workitem.TypeIssue
}

// nativeToCanonical maps native type names, lowercased, to canonical
// types per provider.
var nativeToCanonical = map[string]map[string]workitem.Type{
	"gitlab": {
		"issue":     workitem.TypeIssue,
		"epic":      workitem.TypeEpic,
		"incident":  workitem.TypeBug,
		"test_case": workitem.TypeTest,
	},
	"azure": {
		"epic":                 workitem.TypeEpic,
		"feature":              workitem.TypeFeature,
		"user story":           workitem.TypeStory,
		"product backlog item": workitem.TypeStory,
		"bug":                  workitem.TypeBug,
		"task":                 workitem.TypeTask,
		"test case":            workitem.TypeTest,
		"issue":                workitem.TypeIssue,
		"impediment":           workitem.TypeIssue,
	},
	"github": {
		"issue": workitem.TypeIssue,
	},
}

// NativeToCanonical maps a provider's native type name to its canonical
// type. Matching is case-insensitive; canonical type names themselves
// are always accepted.
func NativeToCanonical(provider, native string) (workitem.Type, bool) {
	lowered := strings.ToLower(native)
	if table, ok := nativeToCanonical[provider]; ok {
		if t, ok := table[lowered]; ok {
			return t, true
		}
	}
	if t := workitem.Type(lowered); t.Valid() {
		return t, true
	}
	return "", false
}
