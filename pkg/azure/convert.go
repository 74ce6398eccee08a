package azure

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/webapi"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"

	"github.com/avollmer/workbridge/pkg/typemap"
	"github.com/avollmer/workbridge/pkg/workitem"
)

// Well-known Azure DevOps field reference names.
const (
	fieldTitle            = "System.Title"
	fieldDescription      = "System.Description"
	fieldWorkItemType     = "System.WorkItemType"
	fieldState            = "System.State"
	fieldTags             = "System.Tags"
	fieldAssignedTo       = "System.AssignedTo"
	fieldCreatedBy        = "System.CreatedBy"
	fieldCreatedDate      = "System.CreatedDate"
	fieldChangedDate      = "System.ChangedDate"
	fieldClosedDate       = "Microsoft.VSTS.Common.ClosedDate"
	fieldPriority         = "Microsoft.VSTS.Common.Priority"
	fieldStoryPoints      = "Microsoft.VSTS.Scheduling.StoryPoints"
	fieldEffort           = "Microsoft.VSTS.Scheduling.Effort"
	fieldOriginalEstimate = "Microsoft.VSTS.Scheduling.OriginalEstimate"
	fieldAreaPath         = "System.AreaPath"
	fieldIterationPath    = "System.IterationPath"
	fieldHistory          = "System.History"
)

// Relation reference names for work item links.
var relationRels = map[string]string{
	"parent":     "System.LinkTypes.Hierarchy-Reverse",
	"child":      "System.LinkTypes.Hierarchy-Forward",
	"blocks":     "System.LinkTypes.Dependency-Forward",
	"blocked-by": "System.LinkTypes.Dependency-Reverse",
	"related":    "System.LinkTypes.Related",
}

// RelationRel maps a canonical relation name to the native link type.
func RelationRel(rel string) (string, bool) {
	native, ok := relationRels[rel]
	return native, ok
}

// closedStates are native states that map to the canonical closed state
// across all three process templates.
var closedStates = map[string]bool{
	"Closed": true, "Done": true, "Removed": true, "Resolved": true, "Completed": true,
}

// Converter translates between Azure DevOps work items and the
// canonical model for one project under a given process template.
type Converter struct {
	project  string
	template typemap.Template
}

// NewConverter creates a converter for the project and template.
func NewConverter(organization, project string, template typemap.Template) *Converter {
	return &Converter{project: organization + "/" + project, template: template}
}

// Template returns the process template the converter resolves types
// against.
func (cv *Converter) Template() typemap.Template { return cv.template }

// CanonicalID builds the canonical ID for a work item. Azure DevOps
// has a single resource class, so the ID carries no sub-type tag.
func (cv *Converter) CanonicalID(id int) workitem.ID {
	return workitem.ID{
		Provider: "azure",
		Scope:    cv.project,
		NativeID: strconv.Itoa(id),
	}
}

// ToCanonical converts a work item's fields map into a canonical item.
// The native type resolves through the process template; area and
// iteration paths and estimation fields ride along as provider fields.
func (cv *Converter) ToCanonical(item *workitemtracking.WorkItem) workitem.WorkItem {
	fields := map[string]any{}
	if item.Fields != nil {
		fields = *item.Fields
	}

	nativeType := stringField(fields, fieldWorkItemType)
	resolved := typemap.Resolve(typemap.Request{
		SourceProvider: "azure",
		NativeType:     nativeType,
	})

	state := workitem.StateOpen
	if closedStates[stringField(fields, fieldState)] {
		state = workitem.StateClosed
	}

	out := workitem.WorkItem{
		Type:        resolved.Type,
		Title:       stringField(fields, fieldTitle),
		Description: stringField(fields, fieldDescription),
		State:       state,
		Author:      identityField(fields, fieldCreatedBy),
		Labels:      splitTags(stringField(fields, fieldTags)),
		Iteration:   stringField(fields, fieldIterationPath),
		CreatedAt:   timeField(fields, fieldCreatedDate),
		UpdatedAt:   timeField(fields, fieldChangedDate),
		ProviderFields: map[string]any{
			"native_type": nativeType,
			"state":       stringField(fields, fieldState),
		},
	}
	if item.Id != nil {
		out.ID = cv.CanonicalID(*item.Id)
	}
	if item.Url != nil {
		out.WebURL = *item.Url
	}
	if assignee := identityField(fields, fieldAssignedTo); assignee != "" {
		out.Assignees = []string{assignee}
	}
	if rank, ok := floatField(fields, fieldPriority); ok {
		out.Priority = typemap.PriorityFromRank(int(rank))
	}
	if closed := timeField(fields, fieldClosedDate); !closed.IsZero() {
		out.ClosedAt = &closed
	}
	for _, key := range []string{fieldStoryPoints, fieldEffort, fieldOriginalEstimate, fieldAreaPath} {
		if v, ok := fields[key]; ok {
			out.ProviderFields[key] = v
		}
	}
	return out
}

// FromImport builds the creation patch document and resolves the
// native work item type for an import payload.
func (cv *Converter) FromImport(imp workitem.Import) (nativeType string, doc []webapi.JsonPatchOperation) {
	nativeType = cv.template.NativeName(imp.Type)

	doc = appendFieldOp(doc, fieldTitle, imp.Title)
	if imp.Description != "" {
		doc = appendFieldOp(doc, fieldDescription, imp.Description)
	}
	if len(imp.Labels) > 0 {
		doc = appendFieldOp(doc, fieldTags, strings.Join(imp.Labels, "; "))
	}
	if len(imp.Assignees) > 0 {
		// Azure DevOps supports a single assignee.
		doc = appendFieldOp(doc, fieldAssignedTo, imp.Assignees[0])
	}
	if rank, ok := typemap.PriorityRank(imp.Priority); ok {
		doc = appendFieldOp(doc, fieldPriority, rank)
	}
	fields, history := customFieldOps(imp.CustomFields)
	for key, value := range fields {
		doc = appendFieldOp(doc, key, value)
	}
	if len(history) > 0 {
		doc = appendFieldOp(doc, fieldHistory, strings.Join(history, "<br>"))
	}
	return nativeType, doc
}

// customFieldOps maps canonical custom-field names onto native field
// reference names. Keys naming a field reference directly (dotted,
// capitalized, like "Custom.Severity") pass through so explicit
// overrides keep working. Anything else has no field on Azure DevOps;
// those values go into the work item history so they survive the
// migration instead of producing an invalid field reference.
func customFieldOps(custom map[string]any) (fields map[string]any, history []string) {
	aliases := map[string]string{
		"story_points":   fieldStoryPoints,
		"effort":         fieldEffort,
		"time_estimate":  fieldOriginalEstimate,
		"area_path":      fieldAreaPath,
		"iteration_path": fieldIterationPath,
	}
	fields = make(map[string]any, len(custom))
	for key, value := range custom {
		if native, ok := aliases[key]; ok {
			fields[native] = value
			continue
		}
		if isFieldReference(key) {
			fields[key] = value
			continue
		}
		history = append(history, fmt.Sprintf("%s: %v", key, value))
	}
	sort.Strings(history)
	return fields, history
}

// isFieldReference reports whether key looks like a native field
// reference name: dotted segments starting with an uppercase letter
// (System.*, Microsoft.*, Custom.*).
func isFieldReference(key string) bool {
	if key == "" || !strings.Contains(key, ".") {
		return false
	}
	return key[0] >= 'A' && key[0] <= 'Z'
}

// UpdateFields holds the partial update an adapter wants rendered as a
// patch document. Nil pointers leave the field untouched.
type UpdateFields struct {
	Title       *string
	Description *string
	Labels      *[]string
	Assignees   *[]string
	Priority    *workitem.Priority
	State       *workitem.State
}

// UpdateDocument renders a partial update as a JSON patch document.
func (cv *Converter) UpdateDocument(upd UpdateFields) []webapi.JsonPatchOperation {
	var doc []webapi.JsonPatchOperation
	if upd.Title != nil {
		doc = appendFieldOp(doc, fieldTitle, *upd.Title)
	}
	if upd.Description != nil {
		doc = appendFieldOp(doc, fieldDescription, *upd.Description)
	}
	if upd.Labels != nil {
		doc = appendFieldOp(doc, fieldTags, strings.Join(*upd.Labels, "; "))
	}
	if upd.Assignees != nil && len(*upd.Assignees) > 0 {
		doc = appendFieldOp(doc, fieldAssignedTo, (*upd.Assignees)[0])
	}
	if upd.Priority != nil {
		if rank, ok := typemap.PriorityRank(*upd.Priority); ok {
			doc = appendFieldOp(doc, fieldPriority, rank)
		}
	}
	if upd.State != nil {
		doc = append(doc, cv.StatePatch(*upd.State))
	}
	return doc
}

// StatePatch builds the patch operation that moves an item to the
// canonical state, using the template-appropriate native state.
func (cv *Converter) StatePatch(state workitem.State) webapi.JsonPatchOperation {
	native := "New"
	if state == workitem.StateClosed {
		native = "Closed"
		if cv.template.Name == "scrum" {
			native = "Done"
		}
	}
	return fieldOp(fieldState, native)
}

// RelationPatch builds the patch operation adding a link to targetURL.
func RelationPatch(rel, targetURL string) webapi.JsonPatchOperation {
	path := "/relations/-"
	return webapi.JsonPatchOperation{
		Op:   &webapi.OperationValues.Add,
		Path: &path,
		Value: map[string]any{
			"rel": rel,
			"url": targetURL,
		},
	}
}

// RelationRemovePatch builds the patch operation removing the relation
// at the given index.
func RelationRemovePatch(index int) webapi.JsonPatchOperation {
	path := fmt.Sprintf("/relations/%d", index)
	return webapi.JsonPatchOperation{
		Op:   &webapi.OperationValues.Remove,
		Path: &path,
	}
}

// BuildWIQL renders a WIQL statement for a list filter.
func (cv *Converter) BuildWIQL(project string, state workitem.State, typ workitem.Type) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT [System.Id] FROM WorkItems WHERE [System.TeamProject] = '%s'", escapeWIQL(project))
	switch state {
	case workitem.StateOpen:
		b.WriteString(" AND [System.State] NOT IN ('Closed', 'Done', 'Removed', 'Resolved', 'Completed')")
	case workitem.StateClosed:
		b.WriteString(" AND [System.State] IN ('Closed', 'Done', 'Removed', 'Resolved', 'Completed')")
	}
	if typ != "" {
		fmt.Fprintf(&b, " AND [System.WorkItemType] = '%s'", escapeWIQL(cv.template.NativeName(typ)))
	}
	b.WriteString(" ORDER BY [System.Id]")
	return b.String()
}

// BuildSearchWIQL renders a WIQL statement for a free-text search over
// titles.
func BuildSearchWIQL(project, text string) string {
	return fmt.Sprintf(
		"SELECT [System.Id] FROM WorkItems WHERE [System.TeamProject] = '%s' AND [System.Title] CONTAINS '%s' ORDER BY [System.Id]",
		escapeWIQL(project), escapeWIQL(text))
}

func appendFieldOp(doc []webapi.JsonPatchOperation, field string, value any) []webapi.JsonPatchOperation {
	return append(doc, fieldOp(field, value))
}

func fieldOp(field string, value any) webapi.JsonPatchOperation {
	path := "/fields/" + field
	return webapi.JsonPatchOperation{
		Op:    &webapi.OperationValues.Add,
		Path:  &path,
		Value: value,
	}
}

func stringField(fields map[string]any, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

func floatField(fields map[string]any, key string) (float64, bool) {
	switch v := fields[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// identityField extracts a username from an identity value, which the
// API returns either as a bare string or as an IdentityRef object.
func identityField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case map[string]any:
		if name, ok := v["uniqueName"].(string); ok && name != "" {
			return name
		}
		if name, ok := v["displayName"].(string); ok {
			return name
		}
	}
	return ""
}

func timeField(fields map[string]any, key string) time.Time {
	s, ok := fields[key].(string)
	if !ok {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func splitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	parts := strings.Split(tags, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
