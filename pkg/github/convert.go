package github

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/go-github/v69/github"

	"github.com/avollmer/workbridge/pkg/typemap"
	"github.com/avollmer/workbridge/pkg/workitem"
)

// archiveLabels are attached when emulating deletion: GitHub has no
// true issue deletion, so items are closed and tagged instead.
var archiveLabels = []string{"archived", "deleted"}

// ArchiveLabels returns the labels used for emulated deletion.
func ArchiveLabels() []string {
	return append([]string(nil), archiveLabels...)
}

var uncheckedTaskRegex = regexp.MustCompile(`(?m)^\s*[-*]\s+\[ \]`)

// CountUncheckedTasks counts unchecked markdown checklist items in a
// description. Three or more imply the item tracks an epic-sized body
// of work.
func CountUncheckedTasks(body string) int {
	return len(uncheckedTaskRegex.FindAllString(body, -1))
}

// Converter translates between GitHub issues and the canonical model
// for one owner/repo scope.
type Converter struct {
	owner string
	repo  string
}

// NewConverter creates a converter scoped to owner/repo.
func NewConverter(owner, repo string) *Converter {
	return &Converter{owner: owner, repo: repo}
}

// Scope returns the canonical scope component, "owner/repo".
func (cv *Converter) Scope() string {
	return cv.owner + "/" + cv.repo
}

// CanonicalID builds the canonical ID for an issue number. GitHub has
// a single issue resource class, so the ID carries no sub-type tag.
func (cv *Converter) CanonicalID(number int) workitem.ID {
	return workitem.ID{
		Provider: "github",
		Scope:    cv.Scope(),
		NativeID: strconv.Itoa(number),
	}
}

// ToCanonical converts a GitHub issue into a canonical work item.
// GitHub has no native type field; the type is inferred from explicit
// type labels first, then checklist density, defaulting to issue.
func (cv *Converter) ToCanonical(issue *github.Issue) workitem.WorkItem {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}
	assignees := make([]string, 0, len(issue.Assignees))
	for _, user := range issue.Assignees {
		assignees = append(assignees, user.GetLogin())
	}

	resolved := typemap.Resolve(typemap.Request{
		SourceProvider: "github",
		Labels:         labels,
		UncheckedTasks: CountUncheckedTasks(issue.GetBody()),
	})

	state := workitem.StateOpen
	if issue.GetState() == "closed" {
		state = workitem.StateClosed
	}

	item := workitem.WorkItem{
		ID:          cv.CanonicalID(issue.GetNumber()),
		Type:        resolved.Type,
		Title:       issue.GetTitle(),
		Description: issue.GetBody(),
		State:       state,
		Author:      issue.GetUser().GetLogin(),
		Assignees:   assignees,
		Labels:      labels,
		Milestone:   issue.GetMilestone().GetTitle(),
		Priority:    typemap.PriorityFromLabels(labels),
		CreatedAt:   issue.GetCreatedAt().Time,
		UpdatedAt:   issue.GetUpdatedAt().Time,
		WebURL:      issue.GetHTMLURL(),
		ProviderFields: map[string]any{
			"number":   issue.GetNumber(),
			"comments": issue.GetComments(),
			"locked":   issue.GetLocked(),
		},
	}
	if issue.ClosedAt != nil {
		closed := issue.GetClosedAt().Time
		item.ClosedAt = &closed
	}
	return item
}

// FromImport builds the issue creation request for an import payload.
// Type and priority have no native fields on GitHub, so both are
// expressed as labels.
func (cv *Converter) FromImport(imp workitem.Import) *github.IssueRequest {
	labels := append([]string(nil), imp.Labels...)
	if imp.Type != "" && imp.Type != workitem.TypeIssue && !hasTypeLabel(labels, imp.Type) {
		labels = append(labels, fmt.Sprintf("type: %s", imp.Type))
	}
	if imp.Priority != "" && typemap.PriorityFromLabels(labels) == "" {
		labels = append(labels, fmt.Sprintf("priority: %s", imp.Priority))
	}

	req := &github.IssueRequest{
		Title:  github.Ptr(imp.Title),
		Body:   github.Ptr(imp.Description),
		Labels: &labels,
	}
	if len(imp.Assignees) > 0 {
		assignees := append([]string(nil), imp.Assignees...)
		req.Assignees = &assignees
	}
	return req
}

func hasTypeLabel(labels []string, t workitem.Type) bool {
	for _, label := range labels {
		if strings.Contains(strings.ToLower(label), string(t)) {
			return true
		}
	}
	return false
}
