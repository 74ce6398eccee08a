package typemap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avollmer/workbridge/pkg/typemap"
	"github.com/avollmer/workbridge/pkg/workitem"
)

func TestResolveExplicitHintOverridesHeuristics(t *testing.T) {
	// Labels scream "epic" but the explicit native type wins.
	res := typemap.Resolve(typemap.Request{
		SourceProvider: "azure",
		NativeType:     "Bug",
		Labels:         []string{"epic"},
		UncheckedTasks: 10,
	})
	assert.Equal(t, workitem.TypeBug, res.Type)
}

func TestResolveSubTypeOutranksNativeType(t *testing.T) {
	res := typemap.Resolve(typemap.Request{
		SourceProvider: "gitlab",
		SubType:        "epic",
		NativeType:     "issue",
	})
	assert.Equal(t, workitem.TypeEpic, res.Type)
}

func TestResolveHeuristics(t *testing.T) {
	tests := []struct {
		name string
		req  typemap.Request
		want workitem.Type
	}{
		{
			name: "type label wins over checklist density",
			req: typemap.Request{
				SourceProvider: "github",
				Labels:         []string{"kind/bug"},
				UncheckedTasks: 5,
			},
			want: workitem.TypeBug,
		},
		{
			name: "checklist density implies epic",
			req: typemap.Request{
				SourceProvider: "github",
				UncheckedTasks: 3,
			},
			want: workitem.TypeEpic,
		},
		{
			name: "child count implies epic",
			req: typemap.Request{
				SourceProvider: "github",
				ChildCount:     4,
			},
			want: workitem.TypeEpic,
		},
		{
			name: "two unchecked tasks stay below threshold",
			req: typemap.Request{
				SourceProvider: "github",
				UncheckedTasks: 2,
			},
			want: workitem.TypeIssue,
		},
		{
			name: "no signals default to issue",
			req:  typemap.Request{SourceProvider: "github"},
			want: workitem.TypeIssue,
		},
		{
			name: "story label",
			req: typemap.Request{
				SourceProvider: "github",
				Labels:         []string{"User Story"},
			},
			want: workitem.TypeStory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := typemap.Resolve(tt.req)
			assert.Equal(t, tt.want, res.Type)
			assert.NotEmpty(t, res.Rationale)
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	req := typemap.Request{
		SourceProvider: "github",
		Labels:         []string{"enhancement", "bug", "epic"},
		TargetTemplate: "basic",
		UncheckedTasks: 4,
	}

	first := typemap.Resolve(req)
	for range 10 {
		assert.Equal(t, first, typemap.Resolve(req))
	}
}

func TestResolveConstrainsToTemplate(t *testing.T) {
	t.Run("story onto basic becomes issue with tag", func(t *testing.T) {
		res := typemap.Resolve(typemap.Request{
			SourceProvider: "github",
			NativeType:     "story",
			TargetTemplate: "basic",
		})
		assert.Equal(t, workitem.TypeIssue, res.Type)
		assert.Contains(t, res.ExtraTags, "story")
	})

	t.Run("feature onto basic becomes epic", func(t *testing.T) {
		res := typemap.Resolve(typemap.Request{
			SourceProvider: "github",
			NativeType:     "feature",
			TargetTemplate: "basic",
		})
		assert.Equal(t, workitem.TypeEpic, res.Type)
		assert.Contains(t, res.ExtraTags, "feature")
	})

	t.Run("supported type passes unchanged", func(t *testing.T) {
		res := typemap.Resolve(typemap.Request{
			SourceProvider: "github",
			NativeType:     "bug",
			TargetTemplate: "agile",
		})
		assert.Equal(t, workitem.TypeBug, res.Type)
		assert.Empty(t, res.ExtraTags)
	})
}

func TestTemplateNativeNames(t *testing.T) {
	agile, ok := typemap.TemplateByName("agile")
	require.True(t, ok)
	assert.Equal(t, "User Story", agile.NativeName(workitem.TypeStory))
	assert.Equal(t, "Bug", agile.NativeName(workitem.TypeBug))

	scrum, ok := typemap.TemplateByName("scrum")
	require.True(t, ok)
	assert.Equal(t, "Product Backlog Item", scrum.NativeName(workitem.TypeStory))

	basic, ok := typemap.TemplateByName("basic")
	require.True(t, ok)
	assert.Equal(t, "Issue", basic.NativeName(workitem.TypeBug))
	assert.Equal(t, 3, basic.HierarchyDepth)

	_, ok = typemap.TemplateByName("cmmi")
	assert.False(t, ok)
}

func TestPriorityFromLabels(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   workitem.Priority
	}{
		{"priority high label", []string{"bug", "priority: high"}, workitem.PriorityHigh},
		{"p0 is critical", []string{"p0"}, workitem.PriorityCritical},
		{"urgent is critical", []string{"urgent"}, workitem.PriorityCritical},
		{"severity low", []string{"severity::low"}, workitem.PriorityLow},
		{"critical outranks low", []string{"priority: low", "critical"}, workitem.PriorityCritical},
		{"no priority labels", []string{"bug", "backend"}, workitem.Priority("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, typemap.PriorityFromLabels(tt.labels))
		})
	}
}

func TestPriorityRankRoundTrip(t *testing.T) {
	for rank, want := range map[int]workitem.Priority{
		1: workitem.PriorityCritical,
		2: workitem.PriorityHigh,
		3: workitem.PriorityMedium,
		4: workitem.PriorityLow,
	} {
		assert.Equal(t, want, typemap.PriorityFromRank(rank))
		got, ok := typemap.PriorityRank(want)
		require.True(t, ok)
		assert.Equal(t, rank, got)
	}
}
