package gitlab_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gogitlab "gitlab.com/gitlab-org/api/client-go"

	glclient "github.com/avollmer/workbridge/pkg/gitlab"
	"github.com/avollmer/workbridge/pkg/workitem"
)

func TestSplitID(t *testing.T) {
	t.Run("issue id", func(t *testing.T) {
		kind, iid, err := glclient.SplitID(workitem.ID{
			Provider: "gitlab", Scope: "acme/api", Kind: glclient.KindIssue, NativeID: "42",
		})
		require.NoError(t, err)
		assert.Equal(t, glclient.KindIssue, kind)
		assert.Equal(t, 42, iid)
	})

	t.Run("epic id", func(t *testing.T) {
		kind, iid, err := glclient.SplitID(workitem.ID{
			Provider: "gitlab", Scope: "acme", Kind: glclient.KindEpic, NativeID: "3",
		})
		require.NoError(t, err)
		assert.Equal(t, glclient.KindEpic, kind)
		assert.Equal(t, 3, iid)
	})

	t.Run("missing tag is rejected, not defaulted", func(t *testing.T) {
		_, _, err := glclient.SplitID(workitem.ID{
			Provider: "gitlab", Scope: "acme/api", NativeID: "42",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no issue/epic tag")
	})

	t.Run("unknown tag", func(t *testing.T) {
		_, _, err := glclient.SplitID(workitem.ID{
			Provider: "gitlab", Scope: "acme/api", Kind: "merge_request", NativeID: "42",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown sub-type")
	})

	t.Run("non-numeric native id", func(t *testing.T) {
		_, _, err := glclient.SplitID(workitem.ID{
			Provider: "gitlab", Scope: "acme/api", Kind: glclient.KindIssue, NativeID: "abc",
		})
		require.Error(t, err)
	})
}

func TestIssueToCanonical(t *testing.T) {
	cv := glclient.NewConverter("acme/api", "acme")
	created := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)

	issue := &gogitlab.Issue{
		IID:          17,
		Title:        "Exports hang",
		Description:  "CSV export never finishes.",
		State:        "opened",
		Labels:       gogitlab.Labels{"bug", "priority::high"},
		Author:       &gogitlab.IssueAuthor{Username: "alice"},
		Assignees:    []*gogitlab.IssueAssignee{{Username: "bob"}},
		Milestone:    &gogitlab.Milestone{Title: "v2.0"},
		Confidential: true,
		Weight:       3,
		CreatedAt:    &created,
		WebURL:       "https://gitlab.com/acme/api/-/issues/17",
		TimeStats:    &gogitlab.TimeStats{TimeEstimate: 3600, TotalTimeSpent: 1200},
	}

	item := cv.IssueToCanonical(issue)

	assert.Equal(t, "gitlab:acme/api#issue:17", item.ID.String())
	assert.Equal(t, workitem.TypeBug, item.Type)
	assert.Equal(t, workitem.StateOpen, item.State)
	assert.Equal(t, "alice", item.Author)
	assert.Equal(t, []string{"bob"}, item.Assignees)
	assert.Equal(t, "v2.0", item.Milestone)
	assert.Equal(t, workitem.PriorityHigh, item.Priority)
	assert.Equal(t, true, item.ProviderFields["confidential"])
	assert.Equal(t, 3, item.ProviderFields["weight"])
	assert.Equal(t, 3600, item.ProviderFields["time_estimate"])
}

func TestEpicToCanonical(t *testing.T) {
	cv := glclient.NewConverter("acme/api", "acme")

	epic := &gogitlab.Epic{
		IID:         5,
		GroupID:     99,
		Title:       "Billing rework",
		Description: "Everything invoicing.",
		State:       "closed",
		Labels:      gogitlab.Labels{"billing"},
		Author:      &gogitlab.EpicAuthor{Username: "carol"},
		WebURL:      "https://gitlab.com/groups/acme/-/epics/5",
	}

	item := cv.EpicToCanonical(epic)

	assert.Equal(t, "gitlab:acme#epic:5", item.ID.String())
	assert.Equal(t, workitem.TypeEpic, item.Type)
	assert.Equal(t, workitem.StateClosed, item.State)
	assert.Equal(t, "carol", item.Author)
	assert.Equal(t, 99, item.ProviderFields["group_id"])
}

func TestIssueFromImport(t *testing.T) {
	cv := glclient.NewConverter("acme/api", "acme")

	t.Run("priority becomes scoped label", func(t *testing.T) {
		opts := cv.IssueFromImport(workitem.Import{
			Title:    "Crash on save",
			Priority: workitem.PriorityHigh,
			Labels:   []string{"bug"},
		}, []int{12, 34})

		require.NotNil(t, opts.Labels)
		assert.Contains(t, []string(*opts.Labels), "bug")
		assert.Contains(t, []string(*opts.Labels), "priority::high")
		require.NotNil(t, opts.AssigneeIDs)
		assert.Equal(t, []int{12, 34}, *opts.AssigneeIDs)
	})

	t.Run("weight custom field maps to native weight", func(t *testing.T) {
		opts := cv.IssueFromImport(workitem.Import{
			Title:        "Tune cache",
			CustomFields: map[string]any{"weight": 5},
		}, nil)

		require.NotNil(t, opts.Weight)
		assert.Equal(t, 5, *opts.Weight)
		assert.Nil(t, opts.AssigneeIDs)
	})

	t.Run("existing priority label wins", func(t *testing.T) {
		opts := cv.IssueFromImport(workitem.Import{
			Title:    "Tidy docs",
			Priority: workitem.PriorityLow,
			Labels:   []string{"priority::low"},
		}, nil)

		assert.Equal(t, []string{"priority::low"}, []string(*opts.Labels))
	})
}

func TestEpicFromImport(t *testing.T) {
	cv := glclient.NewConverter("acme/api", "acme")

	opts := cv.EpicFromImport(workitem.Import{
		Title:       "Platform hardening",
		Description: "Umbrella for security work.",
		Priority:    workitem.PriorityCritical,
	})

	require.NotNil(t, opts.Title)
	assert.Equal(t, "Platform hardening", *opts.Title)
	assert.Contains(t, []string(*opts.Labels), "priority::critical")
}
