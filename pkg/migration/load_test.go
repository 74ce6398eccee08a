package migration_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avollmer/workbridge/pkg/migration"
	"github.com/avollmer/workbridge/pkg/workitem"
	"github.com/avollmer/workbridge/testing/fixtures"
	"github.com/avollmer/workbridge/testing/mocks"
)

func transformedBatch(t *testing.T, n int) []migration.TransformedItem {
	t.Helper()
	result := migration.Transform(fixtures.ExportBatch(n), migration.TransformOptions{
		TargetProvider:     "gitlab",
		TargetCapabilities: gitlabLikeCaps(),
	})
	require.Len(t, result.Items, n)
	return result.Items
}

func TestLoadEveryItemIsAccountedFor(t *testing.T) {
	items := transformedBatch(t, 7)
	target := mocks.NewProvider()
	target.ProviderName = "gitlab"
	failing := items[2].Import.Title
	target.CreateFunc = func(imp workitem.Import) (*workitem.WorkItem, error) {
		if imp.Title == failing {
			return nil, errors.New("boom")
		}
		return &workitem.WorkItem{
			ID:    workitem.ID{Provider: "gitlab", Scope: "acme/api", Kind: "issue", NativeID: imp.Title},
			Title: imp.Title,
		}, nil
	}

	result, err := migration.Load(context.Background(), target, items, migration.LoadOptions{
		BatchSize:       3,
		ContinueOnError: true,
	})
	require.NoError(t, err)

	assert.Equal(t, len(items), result.Successful+len(result.Failures))
	assert.Equal(t, 6, result.Successful)
	assert.Len(t, result.IDMapping, 6)
}

func TestLoadDryRunNeverTouchesTheProvider(t *testing.T) {
	items := transformedBatch(t, 9)
	target := mocks.NewProvider()

	result, err := migration.Load(context.Background(), target, items, migration.LoadOptions{
		BatchSize: 4,
		DryRun:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, 9, result.Successful)
	assert.Empty(t, result.Failures)
	assert.Len(t, result.IDMapping, 9)
	assert.Equal(t, 3, result.Batches)
	assert.Empty(t, target.GetCalls())
}

func TestLoadBatchingWithContinueOnError(t *testing.T) {
	// 25 items in batches of 10 with item 14 failing: 24 succeed,
	// 1 failure, 3 batches.
	items := transformedBatch(t, 25)
	target := mocks.NewProvider()
	created := 0
	target.CreateFunc = func(imp workitem.Import) (*workitem.WorkItem, error) {
		created++
		if created == 14 {
			return nil, errors.New("title too long")
		}
		return &workitem.WorkItem{
			ID: workitem.ID{Provider: "mock", Scope: "mock/project", NativeID: strconv.Itoa(created)},
		}, nil
	}

	result, err := migration.Load(context.Background(), target, items, migration.LoadOptions{
		BatchSize:       10,
		ContinueOnError: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 24, result.Successful)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, items[13].SourceID, result.Failures[0].Ref)
	assert.Equal(t, 3, result.Batches)
}

func TestLoadAbortsWithoutContinueOnError(t *testing.T) {
	items := transformedBatch(t, 5)
	target := mocks.NewProvider()
	created := 0
	target.CreateFunc = func(imp workitem.Import) (*workitem.WorkItem, error) {
		created++
		if created == 3 {
			return nil, errors.New("boom")
		}
		return &workitem.WorkItem{
			ID: workitem.ID{Provider: "mock", Scope: "mock/project", NativeID: fmt.Sprint(created)},
		}, nil
	}

	result, err := migration.Load(context.Background(), target, items, migration.LoadOptions{BatchSize: 2})
	require.Error(t, err)

	var phaseErr *migration.PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, migration.PhaseLoad, phaseErr.Phase)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 3, created, "load must stop after the failing item")
}
