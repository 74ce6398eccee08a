package github_test

import (
	"testing"
	"time"

	gh "github.com/google/go-github/v69/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghclient "github.com/avollmer/workbridge/pkg/github"
	"github.com/avollmer/workbridge/pkg/workitem"
)

func TestCountUncheckedTasks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty body", "", 0},
		{"no checklist", "just prose\nwith lines", 0},
		{"mixed checked and unchecked", "- [x] done\n- [ ] pending\n- [ ] also pending", 2},
		{"asterisk bullets count too", "* [ ] one\n* [ ] two", 2},
		{"indented items count", "  - [ ] nested", 1},
		{"checkbox mid-line ignored", "see - [ ] not a list item", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ghclient.CountUncheckedTasks(tt.body))
		})
	}
}

func TestToCanonical(t *testing.T) {
	cv := ghclient.NewConverter("acme", "api")
	created := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	issue := &gh.Issue{
		Number:    gh.Ptr(42),
		Title:     gh.Ptr("Login times out"),
		Body:      gh.Ptr("Session expires too early."),
		State:     gh.Ptr("open"),
		User:      &gh.User{Login: gh.Ptr("alice")},
		Assignees: []*gh.User{{Login: gh.Ptr("bob")}},
		Labels: []*gh.Label{
			{Name: gh.Ptr("bug")},
			{Name: gh.Ptr("priority: high")},
		},
		Milestone: &gh.Milestone{Title: gh.Ptr("v2.0")},
		CreatedAt: &gh.Timestamp{Time: created},
		UpdatedAt: &gh.Timestamp{Time: created.Add(time.Hour)},
		HTMLURL:   gh.Ptr("https://github.com/acme/api/issues/42"),
		Comments:  gh.Ptr(3),
	}

	item := cv.ToCanonical(issue)

	assert.Equal(t, "github:acme/api#42", item.ID.String())
	assert.Equal(t, workitem.TypeBug, item.Type)
	assert.Equal(t, workitem.StateOpen, item.State)
	assert.Equal(t, "alice", item.Author)
	assert.Equal(t, []string{"bob"}, item.Assignees)
	assert.Equal(t, "v2.0", item.Milestone)
	assert.Equal(t, workitem.PriorityHigh, item.Priority)
	assert.Nil(t, item.ClosedAt)
	assert.Equal(t, 42, item.ProviderFields["number"])
	assert.Equal(t, 3, item.ProviderFields["comments"])
}

func TestToCanonicalClosedIssueWithChecklist(t *testing.T) {
	cv := ghclient.NewConverter("acme", "api")
	closed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	issue := &gh.Issue{
		Number:   gh.Ptr(7),
		Title:    gh.Ptr("Rework billing"),
		Body:     gh.Ptr("- [ ] invoices\n- [ ] refunds\n- [ ] receipts"),
		State:    gh.Ptr("closed"),
		ClosedAt: &gh.Timestamp{Time: closed},
	}

	item := cv.ToCanonical(issue)

	assert.Equal(t, workitem.TypeEpic, item.Type)
	assert.Equal(t, workitem.StateClosed, item.State)
	require.NotNil(t, item.ClosedAt)
	assert.Equal(t, closed, *item.ClosedAt)
}

func TestFromImport(t *testing.T) {
	cv := ghclient.NewConverter("acme", "api")

	t.Run("type and priority become labels", func(t *testing.T) {
		req := cv.FromImport(workitem.Import{
			Title:     "Plan the rollout",
			Type:      workitem.TypeEpic,
			Priority:  workitem.PriorityHigh,
			Labels:    []string{"infra"},
			Assignees: []string{"alice", "bob"},
		})

		require.NotNil(t, req.Labels)
		assert.Contains(t, *req.Labels, "infra")
		assert.Contains(t, *req.Labels, "type: epic")
		assert.Contains(t, *req.Labels, "priority: high")
		require.NotNil(t, req.Assignees)
		assert.Equal(t, []string{"alice", "bob"}, *req.Assignees)
	})

	t.Run("plain issue adds no type label", func(t *testing.T) {
		req := cv.FromImport(workitem.Import{
			Title: "Fix typo",
			Type:  workitem.TypeIssue,
		})

		require.NotNil(t, req.Labels)
		assert.Empty(t, *req.Labels)
		assert.Nil(t, req.Assignees)
	})

	t.Run("existing labels are not duplicated", func(t *testing.T) {
		req := cv.FromImport(workitem.Import{
			Title:    "Crash on save",
			Type:     workitem.TypeBug,
			Priority: workitem.PriorityLow,
			Labels:   []string{"bug", "priority: low"},
		})

		assert.Equal(t, []string{"bug", "priority: low"}, *req.Labels)
	})
}

func TestArchiveLabels(t *testing.T) {
	labels := ghclient.ArchiveLabels()
	assert.Equal(t, []string{"archived", "deleted"}, labels)

	// The returned slice is a copy; mutating it must not leak back.
	labels[0] = "mutated"
	assert.Equal(t, []string{"archived", "deleted"}, ghclient.ArchiveLabels())
}
