package migration

import (
	"fmt"
	"sort"
	"strings"

	"github.com/avollmer/workbridge/pkg/typemap"
	"github.com/avollmer/workbridge/pkg/workitem"
)

// customFieldAllowlist maps provider-field keys worth carrying across
// a migration to their normalized custom-field names. Everything else
// in ProviderFields is provider bookkeeping and stays behind.
var customFieldAllowlist = map[string]string{
	"weight":                                     "weight",
	"time_estimate":                              "time_estimate",
	"story_points":                               "story_points",
	"effort":                                     "effort",
	"area_path":                                  "area_path",
	"iteration_path":                             "iteration_path",
	"Microsoft.VSTS.Scheduling.StoryPoints":      "story_points",
	"Microsoft.VSTS.Scheduling.Effort":           "effort",
	"Microsoft.VSTS.Scheduling.OriginalEstimate": "time_estimate",
	"System.AreaPath":                            "area_path",
	"System.IterationPath":                       "iteration_path",
}

// Transform converts extracted items into target-ready import
// payloads. It is a pure function: no clock, no network, no
// randomness. Items are processed independently; a blank title is
// recorded as a per-item error without failing the phase.
func Transform(exports []workitem.Export, opts TransformOptions) TransformResult {
	result := TransformResult{
		Mapped: map[string][]string{},
		Lost:   map[string][]string{},
	}

	for i := range exports {
		item, warnings, err := transformOne(&exports[i], opts)
		if err != nil {
			result.Errors = append(result.Errors, ItemFailure{
				Ref:    exports[i].Item.ID.String(),
				Reason: err.Error(),
			})
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)
		result.Items = append(result.Items, item)
		result.Mapped[item.SourceID] = mappedFields(item.Import)
		if len(item.LostFields) > 0 {
			result.Lost[item.SourceID] = item.LostFields
		}
	}
	return result
}

func transformOne(export *workitem.Export, opts TransformOptions) (TransformedItem, []string, error) {
	src := export.Item
	sourceID := src.ID.String()

	if strings.TrimSpace(src.Title) == "" {
		return TransformedItem{}, nil, fmt.Errorf("%w: item has a blank title", errValidation)
	}

	resolved := typemap.Resolve(typemap.Request{
		SourceProvider: src.ID.Provider,
		NativeType:     string(src.Type),
		TargetTemplate: opts.TargetTemplate,
	})

	var lost []string
	var warnings []string

	imp := workitem.Import{
		Title:       src.Title,
		Description: src.Description,
		Type:        resolved.Type,
		State:       src.State,
		Priority:    src.Priority,
	}
	if len(opts.TargetCapabilities.ItemTypes) > 0 && !opts.TargetCapabilities.SupportsType(resolved.Type) {
		lost = append(lost, fmt.Sprintf("type=%s", resolved.Type))
		imp.Type = workitem.TypeIssue
	}

	imp.Labels = remapLabels(src.Labels, opts.LabelMapping)
	imp.Labels = append(imp.Labels, resolved.ExtraTags...)

	imp.Assignees, lost = remapAssignees(src.Assignees, opts, &warnings, lost)

	custom := map[string]any{}
	for key, value := range src.ProviderFields {
		if normalized, ok := customFieldAllowlist[key]; ok {
			custom[normalized] = value
		}
	}
	for key, value := range opts.FieldOverrides {
		custom[key] = value
	}
	if opts.PreserveIDs {
		custom["source_id"] = sourceID
	}
	lost = append(lost, capabilityDrops(&src, opts.TargetCapabilities, custom)...)
	if len(custom) > 0 {
		imp.CustomFields = custom
	}

	sort.Strings(lost)
	applyMissingFieldPolicy(&imp, lost, opts.MissingFieldPolicy)

	if opts.AddProvenance {
		imp.Description = fmt.Sprintf("Migrated from %s.\n\n%s", sourceID, imp.Description)
	}

	return TransformedItem{
		Token:      CorrelationToken(sourceID),
		SourceID:   sourceID,
		Import:     imp,
		LostFields: lost,
	}, warnings, nil
}

func remapLabels(labels []string, mapping map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		if mapped, ok := mapping[label]; ok {
			out = append(out, mapped)
			continue
		}
		out = append(out, label)
	}
	return out
}

func remapAssignees(assignees []string, opts TransformOptions, warnings *[]string, lost []string) ([]string, []string) {
	caps := opts.TargetCapabilities
	out := make([]string, 0, len(assignees))
	for _, user := range assignees {
		if mapped, ok := opts.UserMapping[user]; ok {
			out = append(out, mapped)
			continue
		}
		if len(opts.UserMapping) > 0 {
			*warnings = append(*warnings,
				fmt.Sprintf("user %q has no mapping on %s, carrying unchanged", user, opts.TargetProvider))
		}
		out = append(out, user)
	}

	limit := len(out)
	if !caps.SupportsMultipleAssignees && limit > 1 {
		limit = 1
	}
	if caps.MaxAssignees > 0 && limit > caps.MaxAssignees {
		limit = caps.MaxAssignees
	}
	for _, dropped := range out[limit:] {
		lost = append(lost, fmt.Sprintf("assignee=%s", dropped))
	}
	return out[:limit], lost
}

// capabilityDrops records fields the target platform cannot hold.
// Custom fields already collected are cleared when unsupported.
func capabilityDrops(src *workitem.WorkItem, caps workitem.Capabilities, custom map[string]any) []string {
	var lost []string
	if src.Milestone != "" && !caps.SupportsMilestones {
		lost = append(lost, fmt.Sprintf("milestone=%s", src.Milestone))
	}
	if src.Iteration != "" && !caps.SupportsIterations {
		lost = append(lost, fmt.Sprintf("iteration=%s", src.Iteration))
	}
	if !caps.SupportsWeight {
		if weight, ok := custom["weight"]; ok {
			lost = append(lost, fmt.Sprintf("weight=%v", weight))
			delete(custom, "weight")
		}
	}
	if confidential, ok := src.ProviderFields["confidential"].(bool); ok && confidential && !caps.SupportsConfidential {
		lost = append(lost, "confidential=true")
	}
	if !caps.SupportsCustomFields && len(custom) > 0 {
		keys := make([]string, 0, len(custom))
		for key := range custom {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			lost = append(lost, fmt.Sprintf("%s=%v", key, custom[key]))
			delete(custom, key)
		}
	}
	return lost
}

// applyMissingFieldPolicy decides what happens to dropped fields: the
// metadata policy always attaches a lost-fields record, the
// description policy appends a readable trailer, ignore does nothing.
func applyMissingFieldPolicy(imp *workitem.Import, lost []string, policy string) {
	if len(lost) == 0 {
		return
	}
	switch policy {
	case PolicyMetadata:
		if imp.CustomFields == nil {
			imp.CustomFields = map[string]any{}
		}
		imp.CustomFields[lostFieldsKey] = strings.Join(lost, ", ")
	case PolicyDescription:
		imp.Description = fmt.Sprintf("%s\n\n---\nFields not migrated: %s",
			imp.Description, strings.Join(lost, ", "))
	}
}

// mappedFields lists the canonical fields an import payload carries,
// for the transform ledger.
func mappedFields(imp workitem.Import) []string {
	fields := []string{"title", "type", "state"}
	if imp.Description != "" {
		fields = append(fields, "description")
	}
	if len(imp.Labels) > 0 {
		fields = append(fields, "labels")
	}
	if len(imp.Assignees) > 0 {
		fields = append(fields, "assignees")
	}
	if imp.Priority != "" {
		fields = append(fields, "priority")
	}
	if len(imp.CustomFields) > 0 {
		fields = append(fields, "custom_fields")
	}
	return fields
}
