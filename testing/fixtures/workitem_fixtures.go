// Package fixtures provides canonical test data shared across packages.
package fixtures

import (
	"strconv"
	"time"

	"github.com/avollmer/workbridge/pkg/workitem"
)

// Test constants for work-item fixtures.
const (
	defaultTitle  = "Fix login timeout"
	defaultAuthor = "alice"
	defaultWebURL = "https://example.com/acme/api/issues/7"
)

// defaultCreatedAt is a fixed timestamp so fixtures stay deterministic.
var defaultCreatedAt = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// GitHubIssueID returns a canonical GitHub issue ID for testing.
func GitHubIssueID() workitem.ID {
	return workitem.ID{Provider: "github", Scope: "acme/api", NativeID: "7"}
}

// GitLabIssueID returns a canonical GitLab issue ID for testing.
func GitLabIssueID() workitem.ID {
	return workitem.ID{Provider: "gitlab", Scope: "acme/api", Kind: "issue", NativeID: "7"}
}

// GitLabEpicID returns a canonical GitLab epic ID for testing.
func GitLabEpicID() workitem.ID {
	return workitem.ID{Provider: "gitlab", Scope: "acme", Kind: "epic", NativeID: "3"}
}

// AzureWorkItemID returns a canonical Azure DevOps work item ID for testing.
func AzureWorkItemID() workitem.ID {
	return workitem.ID{Provider: "azure", Scope: "acme/platform", NativeID: "1042"}
}

// ValidWorkItem returns a fully populated open bug for testing.
func ValidWorkItem() workitem.WorkItem {
	return workitem.WorkItem{
		ID:          GitHubIssueID(),
		Type:        workitem.TypeBug,
		Title:       defaultTitle,
		Description: "Sessions expire after 5 minutes instead of 30.",
		State:       workitem.StateOpen,
		Author:      defaultAuthor,
		Assignees:   []string{"bob"},
		Labels:      []string{"bug", "priority: high"},
		Priority:    workitem.PriorityHigh,
		CreatedAt:   defaultCreatedAt,
		UpdatedAt:   defaultCreatedAt.Add(2 * time.Hour),
		WebURL:      defaultWebURL,
	}
}

// ValidExport returns an export of [ValidWorkItem] with no relationships.
func ValidExport() workitem.Export {
	return workitem.Export{
		Item:       ValidWorkItem(),
		ExportedAt: defaultCreatedAt.Add(24 * time.Hour),
	}
}

// ValidImport returns a creation payload matching [ValidWorkItem].
func ValidImport() workitem.Import {
	return workitem.Import{
		Title:       defaultTitle,
		Description: "Sessions expire after 5 minutes instead of 30.",
		Type:        workitem.TypeBug,
		State:       workitem.StateOpen,
		Labels:      []string{"bug", "priority: high"},
		Assignees:   []string{"bob"},
		Priority:    workitem.PriorityHigh,
	}
}

// ExportBatch returns n exports with distinct IDs and titles, suitable
// for pipeline batch tests.
func ExportBatch(n int) []workitem.Export {
	exports := make([]workitem.Export, 0, n)
	for i := 1; i <= n; i++ {
		export := ValidExport()
		export.Item.ID.NativeID = strconv.Itoa(i)
		export.Item.Title = defaultTitle + " #" + strconv.Itoa(i)
		exports = append(exports, export)
	}
	return exports
}
