package platform_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avollmer/workbridge/internal/logger"
	"github.com/avollmer/workbridge/pkg/config"
	ghclient "github.com/avollmer/workbridge/pkg/github"
	glclient "github.com/avollmer/workbridge/pkg/gitlab"
	"github.com/avollmer/workbridge/pkg/platform"
	"github.com/avollmer/workbridge/pkg/workitem"
	"github.com/avollmer/workbridge/testing/fixtures"
	"github.com/avollmer/workbridge/testing/mocks"
)

func newGitHubAdapter(t *testing.T) *platform.GitHubAdapter {
	t.Helper()
	client, err := ghclient.NewClient(config.GitHubConfig{
		Token: "ghp_testtoken", Owner: "acme", Repo: "api",
	})
	require.NoError(t, err)
	return platform.NewGitHubAdapter(client, logger.NoLogger())
}

func newGitLabAdapter(t *testing.T, group string) *platform.GitLabAdapter {
	t.Helper()
	client, err := glclient.NewClient(config.GitLabConfig{
		Token: "glpat-testtoken", Project: "acme/api", Group: group,
	})
	require.NoError(t, err)
	return platform.NewGitLabAdapter(client, logger.NoLogger())
}

func TestClassifyHTTPStatus(t *testing.T) {
	base := errors.New("upstream says no")

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"401 is authentication", 401, platform.ErrAuthentication},
		{"403 is access denied", 403, platform.ErrAccessDenied},
		{"404 is not found", 404, platform.ErrNotFound},
		{"500 is server", 500, platform.ErrServer},
		{"503 is server", 503, platform.ErrServer},
		{"422 falls back to http", 422, platform.ErrHTTP},
		{"zero status falls back to http", 0, platform.ErrHTTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := platform.ClassifyHTTPStatus("github get", tt.status, base)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, base)
			assert.Contains(t, err.Error(), "github get")
		})
	}
}

func TestGitHubAdapterRejectsForeignIDs(t *testing.T) {
	adapter := newGitHubAdapter(t)
	ctx := context.Background()

	tests := []struct {
		name string
		id   workitem.ID
	}{
		{"wrong provider", fixtures.GitLabIssueID()},
		{"sub-type tag", workitem.ID{Provider: "github", Scope: "acme/api", Kind: "issue", NativeID: "7"}},
		{"non-numeric native id", workitem.ID{Provider: "github", Scope: "acme/api", NativeID: "seven"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := adapter.Get(ctx, tt.id)
			require.Error(t, err)
			assert.ErrorIs(t, err, platform.ErrValidation)
		})
	}
}

func TestGitHubAdapterUnsupportedOperations(t *testing.T) {
	adapter := newGitHubAdapter(t)
	ctx := context.Background()
	from := fixtures.GitHubIssueID()
	to := workitem.ID{Provider: "github", Scope: "acme/api", NativeID: "8"}

	err := adapter.Link(ctx, from, to, platform.RelationBlocks)
	require.Error(t, err)
	assert.ErrorIs(t, err, platform.ErrUnsupported)

	err = adapter.Unlink(ctx, from, to, platform.RelationBlocks)
	require.Error(t, err)
	assert.ErrorIs(t, err, platform.ErrUnsupported)
}

func TestGitHubAdapterCapabilities(t *testing.T) {
	caps := newGitHubAdapter(t).Capabilities()
	assert.False(t, caps.SupportsEpics)
	assert.True(t, caps.SupportsMultipleAssignees)
	assert.Equal(t, 10, caps.MaxAssignees)
	assert.Equal(t, []workitem.Type{workitem.TypeIssue}, caps.ItemTypes)
}

func TestGitLabAdapterEpicWithoutGroupIsConfigError(t *testing.T) {
	adapter := newGitLabAdapter(t, "")

	_, err := adapter.Get(context.Background(), fixtures.GitLabEpicID())
	require.Error(t, err)
	assert.ErrorIs(t, err, platform.ErrConfig)
	assert.Contains(t, err.Error(), "group")
}

func TestGitLabAdapterRejectsUntaggedIDs(t *testing.T) {
	adapter := newGitLabAdapter(t, "acme")

	// A GitLab ID must say whether it names an issue or an epic.
	_, err := adapter.Get(context.Background(),
		workitem.ID{Provider: "gitlab", Scope: "acme/api", NativeID: "7"})
	require.Error(t, err)
	assert.ErrorIs(t, err, platform.ErrValidation)
}

func TestGitLabAdapterCapabilitiesDependOnGroup(t *testing.T) {
	t.Run("without group", func(t *testing.T) {
		caps := newGitLabAdapter(t, "").Capabilities()
		assert.False(t, caps.SupportsEpics)
		assert.Equal(t, 1, caps.HierarchyDepth)
	})

	t.Run("with group", func(t *testing.T) {
		caps := newGitLabAdapter(t, "acme").Capabilities()
		assert.True(t, caps.SupportsEpics)
		assert.Equal(t, 2, caps.HierarchyDepth)
		assert.Contains(t, caps.ItemTypes, workitem.TypeEpic)
	})
}

func TestGitLabAdapterQueryUnsupported(t *testing.T) {
	adapter := newGitLabAdapter(t, "")
	_, err := adapter.Query(context.Background(), "select * from issues")
	require.Error(t, err)
	assert.ErrorIs(t, err, platform.ErrUnsupported)
}

func TestSearchAllIsAllSettled(t *testing.T) {
	healthy := mocks.NewProvider()
	healthy.ProviderName = "github"
	healthy.SearchResponse = []workitem.WorkItem{fixtures.ValidWorkItem()}

	broken := mocks.NewProvider()
	broken.ProviderName = "gitlab"
	broken.SearchError = errors.New("502 bad gateway")

	alsoHealthy := mocks.NewProvider()
	alsoHealthy.ProviderName = "azure"
	alsoHealthy.SearchResponse = nil

	results := platform.SearchAll(context.Background(),
		[]platform.Provider{healthy, broken, alsoHealthy}, "login")

	require.Len(t, results, 3)
	assert.Equal(t, "github", results[0].Provider)
	assert.Len(t, results[0].Items, 1)
	require.Error(t, results[1].Err)
	assert.Empty(t, results[1].Items)
	assert.NoError(t, results[2].Err)
}

func TestNewProviderConfigErrors(t *testing.T) {
	cfg := &config.Config{}
	ctx := context.Background()

	for _, name := range []string{"github", "gitlab", "azure"} {
		t.Run(name+" unconfigured", func(t *testing.T) {
			_, err := platform.NewProvider(ctx, name, cfg, logger.NoLogger())
			require.Error(t, err)
			assert.ErrorIs(t, err, platform.ErrConfig)
		})
	}

	t.Run("unknown provider", func(t *testing.T) {
		_, err := platform.NewProvider(ctx, "jira", cfg, logger.NoLogger())
		require.Error(t, err)
		assert.ErrorIs(t, err, platform.ErrConfig)
	})
}

func TestEnabledProviders(t *testing.T) {
	cfg := &config.Config{
		GitHub: config.GitHubConfig{Token: "t", Owner: "o", Repo: "r"},
		Azure:  config.AzureConfig{Token: "t", OrganizationURL: "https://dev.azure.com/acme", Project: "platform"},
	}
	assert.Equal(t, []string{"github", "azure"}, platform.EnabledProviders(cfg))
}
