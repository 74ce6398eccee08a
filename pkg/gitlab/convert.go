package gitlab

import (
	"fmt"
	"strconv"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/avollmer/workbridge/pkg/typemap"
	"github.com/avollmer/workbridge/pkg/workitem"
)

// Sub-type tags used in canonical IDs. GitLab IDs always carry one;
// an untagged GitLab ID is malformed rather than implicitly an issue.
const (
	KindIssue = "issue"
	KindEpic  = "epic"
)

// Converter translates between GitLab resources and the canonical
// model for one project/group scope.
type Converter struct {
	project string
	group   string
}

// NewConverter creates a converter for the given project and group.
func NewConverter(project, group string) *Converter {
	return &Converter{project: project, group: group}
}

// IssueID builds the canonical ID for a project issue.
func (cv *Converter) IssueID(iid int) workitem.ID {
	return workitem.ID{
		Provider: "gitlab",
		Scope:    cv.project,
		Kind:     KindIssue,
		NativeID: strconv.Itoa(iid),
	}
}

// EpicID builds the canonical ID for a group epic.
func (cv *Converter) EpicID(iid int) workitem.ID {
	return workitem.ID{
		Provider: "gitlab",
		Scope:    cv.group,
		Kind:     KindEpic,
		NativeID: strconv.Itoa(iid),
	}
}

// SplitID validates a GitLab canonical ID and returns its kind and
// native IID. The kind tag is mandatory: ambiguous IDs are rejected
// instead of being silently treated as issues.
func SplitID(id workitem.ID) (kind string, iid int, err error) {
	switch id.Kind {
	case KindIssue, KindEpic:
	case "":
		return "", 0, fmt.Errorf("gitlab id %q carries no issue/epic tag", id)
	default:
		return "", 0, fmt.Errorf("gitlab id %q has unknown sub-type %q", id, id.Kind)
	}
	iid, convErr := strconv.Atoi(id.NativeID)
	if convErr != nil {
		return "", 0, fmt.Errorf("gitlab id %q has non-numeric native id: %w", id, convErr)
	}
	return id.Kind, iid, nil
}

// IssueToCanonical converts a project issue. Weight and time tracking
// have no canonical fields and ride along as provider fields.
func (cv *Converter) IssueToCanonical(issue *gitlab.Issue) workitem.WorkItem {
	labels := []string(issue.Labels)
	assignees := make([]string, 0, len(issue.Assignees))
	for _, a := range issue.Assignees {
		assignees = append(assignees, a.Username)
	}

	resolved := typemap.Resolve(typemap.Request{
		SourceProvider: "gitlab",
		SubType:        KindIssue,
		Labels:         labels,
	})

	state := workitem.StateOpen
	if issue.State == "closed" {
		state = workitem.StateClosed
	}

	item := workitem.WorkItem{
		ID:          cv.IssueID(issue.IID),
		Type:        resolved.Type,
		Title:       issue.Title,
		Description: issue.Description,
		State:       state,
		Assignees:   assignees,
		Labels:      labels,
		Priority:    typemap.PriorityFromLabels(labels),
		WebURL:      issue.WebURL,
		ProviderFields: map[string]any{
			"iid":          issue.IID,
			"confidential": issue.Confidential,
			"weight":       issue.Weight,
		},
	}
	if issue.Author != nil {
		item.Author = issue.Author.Username
	}
	if issue.Milestone != nil {
		item.Milestone = issue.Milestone.Title
	}
	if issue.CreatedAt != nil {
		item.CreatedAt = *issue.CreatedAt
	}
	if issue.UpdatedAt != nil {
		item.UpdatedAt = *issue.UpdatedAt
	}
	if issue.ClosedAt != nil {
		item.ClosedAt = issue.ClosedAt
	}
	if issue.TimeStats != nil {
		item.ProviderFields["time_estimate"] = issue.TimeStats.TimeEstimate
		item.ProviderFields["total_time_spent"] = issue.TimeStats.TotalTimeSpent
	}
	return item
}

// EpicToCanonical converts a group epic.
func (cv *Converter) EpicToCanonical(epic *gitlab.Epic) workitem.WorkItem {
	labels := []string(epic.Labels)

	state := workitem.StateOpen
	if epic.State == "closed" {
		state = workitem.StateClosed
	}

	item := workitem.WorkItem{
		ID:          cv.EpicID(epic.IID),
		Type:        workitem.TypeEpic,
		Title:       epic.Title,
		Description: epic.Description,
		State:       state,
		Labels:      labels,
		Priority:    typemap.PriorityFromLabels(labels),
		WebURL:      epic.WebURL,
		ProviderFields: map[string]any{
			"iid":      epic.IID,
			"group_id": epic.GroupID,
		},
	}
	if epic.Author != nil {
		item.Author = epic.Author.Username
	}
	if epic.CreatedAt != nil {
		item.CreatedAt = *epic.CreatedAt
	}
	if epic.UpdatedAt != nil {
		item.UpdatedAt = *epic.UpdatedAt
	}
	return item
}

// IssueFromImport builds the issue creation options for an import
// payload. Assignee IDs are resolved separately by the adapter since
// that requires API calls.
func (cv *Converter) IssueFromImport(imp workitem.Import, assigneeIDs []int) *gitlab.CreateIssueOptions {
	labels := importLabels(imp)
	opts := &gitlab.CreateIssueOptions{
		Title:       gitlab.Ptr(imp.Title),
		Description: gitlab.Ptr(imp.Description),
		Labels:      (*gitlab.LabelOptions)(&labels),
	}
	if len(assigneeIDs) > 0 {
		opts.AssigneeIDs = &assigneeIDs
	}
	if weight, ok := intField(imp.CustomFields, "weight"); ok {
		opts.Weight = gitlab.Ptr(weight)
	}
	return opts
}

// EpicFromImport builds the epic creation options for an import payload.
func (cv *Converter) EpicFromImport(imp workitem.Import) *gitlab.CreateEpicOptions {
	labels := importLabels(imp)
	return &gitlab.CreateEpicOptions{
		Title:       gitlab.Ptr(imp.Title),
		Description: gitlab.Ptr(imp.Description),
		Labels:      (*gitlab.LabelOptions)(&labels),
	}
}

// importLabels augments the import's labels with a priority label when
// the priority would otherwise be lost.
func importLabels(imp workitem.Import) []string {
	labels := append([]string(nil), imp.Labels...)
	if imp.Priority != "" && typemap.PriorityFromLabels(labels) == "" {
		labels = append(labels, fmt.Sprintf("priority::%s", imp.Priority))
	}
	return labels
}

func intField(fields map[string]any, key string) (int, bool) {
	switch v := fields[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}
