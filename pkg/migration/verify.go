package migration

import (
	"context"
	"fmt"

	"github.com/avollmer/workbridge/pkg/platform"
	"github.com/avollmer/workbridge/pkg/workitem"
)

// Verify fetches each loaded item back from the target and compares
// it against the import payload that produced it: title, state, and
// assignee count (capped at the target's assignee limit). Items
// without an ID mapping count as failed without an integrity issue.
// Discrepancies are records, never errors; the only error surface is
// the fetches themselves, which become issue records too.
func Verify(ctx context.Context, target platform.Provider, items []TransformedItem, mapping map[string]string) *VerificationReport {
	report := &VerificationReport{Total: len(items)}
	caps := target.Capabilities()

	for _, item := range items {
		targetRef, ok := mapping[item.Token]
		if !ok {
			report.Failed++
			continue
		}

		targetID, err := workitem.ParseID(targetRef)
		if err != nil {
			report.Failed++
			report.Issues = append(report.Issues, IntegrityIssue{
				SourceID: item.SourceID,
				TargetID: targetRef,
				Field:    "id",
				Detail:   fmt.Sprintf("malformed target id: %v", err),
			})
			continue
		}

		loaded, err := target.Get(ctx, targetID)
		if err != nil {
			report.Failed++
			report.Issues = append(report.Issues, IntegrityIssue{
				SourceID: item.SourceID,
				TargetID: targetRef,
				Field:    "item",
				Detail:   fmt.Sprintf("fetch failed: %v", err),
			})
			continue
		}

		issues := compareItem(item, loaded, caps)
		for i := range issues {
			issues[i].SourceID = item.SourceID
			issues[i].TargetID = targetRef
		}
		if len(issues) > 0 {
			report.Failed++
			report.Issues = append(report.Issues, issues...)
			continue
		}
		report.Successful++
	}
	return report
}

func compareItem(item TransformedItem, loaded *workitem.WorkItem, caps workitem.Capabilities) []IntegrityIssue {
	var issues []IntegrityIssue

	if loaded.Title != item.Import.Title {
		issues = append(issues, IntegrityIssue{
			Field:  "title",
			Detail: fmt.Sprintf("want %q, have %q", item.Import.Title, loaded.Title),
		})
	}
	if loaded.State != item.Import.State {
		issues = append(issues, IntegrityIssue{
			Field:  "state",
			Detail: fmt.Sprintf("want %q, have %q", item.Import.State, loaded.State),
		})
	}

	want := len(item.Import.Assignees)
	if caps.MaxAssignees > 0 && want > caps.MaxAssignees {
		want = caps.MaxAssignees
	}
	if len(loaded.Assignees) != want {
		issues = append(issues, IntegrityIssue{
			Field:  "assignees",
			Detail: fmt.Sprintf("want %d assignees, have %d", want, len(loaded.Assignees)),
		})
	}
	return issues
}
