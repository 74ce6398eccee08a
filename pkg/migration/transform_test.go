package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avollmer/workbridge/pkg/migration"
	"github.com/avollmer/workbridge/pkg/workitem"
	"github.com/avollmer/workbridge/testing/fixtures"
)

// gitlabLikeCaps mirrors a target with group support and no assignee cap.
func gitlabLikeCaps() workitem.Capabilities {
	return workitem.Capabilities{
		SupportsEpics:             true,
		SupportsMilestones:        true,
		SupportsMultipleAssignees: true,
		SupportsWeight:            true,
		SupportsCustomFields:      true,
		HierarchyDepth:            2,
		ItemTypes: []workitem.Type{
			workitem.TypeEpic, workitem.TypeFeature, workitem.TypeStory,
			workitem.TypeBug, workitem.TypeTask, workitem.TypeTest, workitem.TypeIssue,
		},
	}
}

// azureLikeCaps mirrors an Azure DevOps target: one assignee, custom
// fields, process-template typing.
func azureLikeCaps() workitem.Capabilities {
	caps := gitlabLikeCaps()
	caps.SupportsMultipleAssignees = false
	caps.MaxAssignees = 1
	caps.SupportsIterations = true
	return caps
}

func TestTransformIsPure(t *testing.T) {
	exports := fixtures.ExportBatch(5)
	opts := migration.TransformOptions{
		TargetProvider:     "azure",
		TargetCapabilities: azureLikeCaps(),
		TargetTemplate:     "agile",
		UserMapping:        map[string]string{"bob": "bob@acme.example"},
		MissingFieldPolicy: migration.PolicyMetadata,
		AddProvenance:      true,
	}

	first := migration.Transform(exports, opts)
	for range 5 {
		assert.Equal(t, first, migration.Transform(exports, opts))
	}
}

func TestTransformBlankTitleIsRecordedNotFatal(t *testing.T) {
	exports := fixtures.ExportBatch(3)
	exports[1].Item.Title = "   "

	result := migration.Transform(exports, migration.TransformOptions{
		TargetProvider:     "gitlab",
		TargetCapabilities: gitlabLikeCaps(),
	})

	require.Len(t, result.Errors, 1)
	assert.Equal(t, exports[1].Item.ID.String(), result.Errors[0].Ref)
	assert.Len(t, result.Items, 2)
}

func TestTransformCorrelationToken(t *testing.T) {
	exports := fixtures.ExportBatch(2)
	// Identical titles must still produce distinct tokens.
	exports[1].Item.Title = exports[0].Item.Title

	result := migration.Transform(exports, migration.TransformOptions{
		TargetProvider:     "gitlab",
		TargetCapabilities: gitlabLikeCaps(),
	})

	require.Len(t, result.Items, 2)
	assert.NotEqual(t, result.Items[0].Token, result.Items[1].Token)
	assert.Equal(t, migration.CorrelationToken(exports[0].Item.ID.String()), result.Items[0].Token)
}

func TestTransformUserMapping(t *testing.T) {
	export := fixtures.ValidExport()
	export.Item.Assignees = []string{"bob", "carol"}

	t.Run("mapped users are renamed", func(t *testing.T) {
		result := migration.Transform([]workitem.Export{export}, migration.TransformOptions{
			TargetProvider:     "gitlab",
			TargetCapabilities: gitlabLikeCaps(),
			UserMapping:        map[string]string{"bob": "bob@acme.example", "carol": "carol@acme.example"},
		})
		require.Len(t, result.Items, 1)
		assert.Equal(t, []string{"bob@acme.example", "carol@acme.example"}, result.Items[0].Import.Assignees)
		assert.Empty(t, result.Warnings)
	})

	t.Run("unmapped user carries unchanged with warning", func(t *testing.T) {
		result := migration.Transform([]workitem.Export{export}, migration.TransformOptions{
			TargetProvider:     "gitlab",
			TargetCapabilities: gitlabLikeCaps(),
			UserMapping:        map[string]string{"bob": "bob@acme.example"},
		})
		require.Len(t, result.Items, 1)
		assert.Equal(t, []string{"bob@acme.example", "carol"}, result.Items[0].Import.Assignees)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "carol")
	})
}

func TestTransformAssigneeCap(t *testing.T) {
	export := fixtures.ValidExport()
	export.Item.Assignees = []string{"bob", "carol", "dave"}

	result := migration.Transform([]workitem.Export{export}, migration.TransformOptions{
		TargetProvider:     "azure",
		TargetCapabilities: azureLikeCaps(),
	})

	require.Len(t, result.Items, 1)
	item := result.Items[0]
	assert.Equal(t, []string{"bob"}, item.Import.Assignees)
	assert.Contains(t, item.LostFields, "assignee=carol")
	assert.Contains(t, item.LostFields, "assignee=dave")
}

func TestTransformLabelMapping(t *testing.T) {
	export := fixtures.ValidExport()
	export.Item.Labels = []string{"bug", "kundenprio"}

	result := migration.Transform([]workitem.Export{export}, migration.TransformOptions{
		TargetProvider:     "github",
		TargetCapabilities: gitlabLikeCaps(),
		LabelMapping:       map[string]string{"kundenprio": "customer-priority"},
	})

	require.Len(t, result.Items, 1)
	assert.Equal(t, []string{"bug", "customer-priority"}, result.Items[0].Import.Labels)
}

func TestTransformMissingFieldPolicies(t *testing.T) {
	export := fixtures.ValidExport()
	export.Item.Milestone = "v2.0"
	caps := gitlabLikeCaps()
	caps.SupportsMilestones = false

	t.Run("metadata always attaches a lost-fields record", func(t *testing.T) {
		result := migration.Transform([]workitem.Export{export}, migration.TransformOptions{
			TargetProvider:     "azure",
			TargetCapabilities: caps,
			MissingFieldPolicy: migration.PolicyMetadata,
		})
		require.Len(t, result.Items, 1)
		require.NotNil(t, result.Items[0].Import.CustomFields)
		assert.Contains(t, result.Items[0].Import.CustomFields["migration.lost_fields"], "milestone=v2.0")
	})

	t.Run("description appends a readable trailer", func(t *testing.T) {
		result := migration.Transform([]workitem.Export{export}, migration.TransformOptions{
			TargetProvider:     "azure",
			TargetCapabilities: caps,
			MissingFieldPolicy: migration.PolicyDescription,
		})
		require.Len(t, result.Items, 1)
		assert.Contains(t, result.Items[0].Import.Description, "Fields not migrated: milestone=v2.0")
	})

	t.Run("ignore never attaches anything", func(t *testing.T) {
		result := migration.Transform([]workitem.Export{export}, migration.TransformOptions{
			TargetProvider:     "azure",
			TargetCapabilities: caps,
			MissingFieldPolicy: migration.PolicyIgnore,
		})
		require.Len(t, result.Items, 1)
		assert.NotContains(t, result.Items[0].Import.CustomFields, "migration.lost_fields")
		assert.NotContains(t, result.Items[0].Import.Description, "Fields not migrated")
		// The ledger still records the drop.
		assert.Contains(t, result.Lost[export.Item.ID.String()], "milestone=v2.0")
	})
}

func TestTransformCustomFieldAllowlist(t *testing.T) {
	export := fixtures.ValidExport()
	export.Item.ProviderFields = map[string]any{
		"weight":      5,
		"native_type": "Bug", // bookkeeping, must not cross
	}

	result := migration.Transform([]workitem.Export{export}, migration.TransformOptions{
		TargetProvider:     "azure",
		TargetCapabilities: azureLikeCaps(),
		FieldOverrides:     map[string]any{"area_path": "Platform\\Auth"},
	})

	require.Len(t, result.Items, 1)
	fields := result.Items[0].Import.CustomFields
	assert.Equal(t, 5, fields["weight"])
	assert.Equal(t, "Platform\\Auth", fields["area_path"])
	assert.NotContains(t, fields, "native_type")
}

func TestTransformProvenanceAndPreservedIDs(t *testing.T) {
	export := fixtures.ValidExport()
	sourceID := export.Item.ID.String()

	result := migration.Transform([]workitem.Export{export}, migration.TransformOptions{
		TargetProvider:     "gitlab",
		TargetCapabilities: gitlabLikeCaps(),
		AddProvenance:      true,
		PreserveIDs:        true,
	})

	require.Len(t, result.Items, 1)
	item := result.Items[0]
	assert.Contains(t, item.Import.Description, "Migrated from "+sourceID)
	assert.Equal(t, sourceID, item.Import.CustomFields["source_id"])
}

func TestTransformTemplateDowngradeAddsTag(t *testing.T) {
	export := fixtures.ValidExport()
	export.Item.Type = workitem.TypeStory

	result := migration.Transform([]workitem.Export{export}, migration.TransformOptions{
		TargetProvider:     "azure",
		TargetCapabilities: azureLikeCaps(),
		TargetTemplate:     "basic",
	})

	require.Len(t, result.Items, 1)
	assert.Equal(t, workitem.TypeIssue, result.Items[0].Import.Type)
	assert.Contains(t, result.Items[0].Import.Labels, "story")
}

func TestTransformPreservedIDDroppedWithoutCustomFieldSupport(t *testing.T) {
	export := fixtures.ValidExport()
	caps := gitlabLikeCaps()
	caps.SupportsCustomFields = false

	result := migration.Transform([]workitem.Export{export}, migration.TransformOptions{
		TargetProvider:     "github",
		TargetCapabilities: caps,
		PreserveIDs:        true,
	})

	require.Len(t, result.Items, 1)
	item := result.Items[0]

	// The preserved ID is subject to the same capability gate as every
	// other custom field: dropped, and recorded in the lost ledger.
	assert.NotContains(t, item.Import.CustomFields, "source_id")
	assert.Contains(t, item.LostFields, "source_id="+export.Item.ID.String())
}
