package gitremote_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avollmer/workbridge/pkg/gitremote"
)

func TestParseRemote(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want gitremote.Remote
	}{
		{
			name: "github https",
			url:  "https://github.com/acme/api.git",
			want: gitremote.Remote{Provider: "github", Scope: "acme/api"},
		},
		{
			name: "github ssh",
			url:  "git@github.com:acme/api.git",
			want: gitremote.Remote{Provider: "github", Scope: "acme/api"},
		},
		{
			name: "gitlab keeps the full namespace path",
			url:  "git@gitlab.com:acme/backend/api.git",
			want: gitremote.Remote{Provider: "gitlab", Scope: "acme/backend/api"},
		},
		{
			name: "self-hosted gitlab",
			url:  "https://gitlab.example.org/acme/api.git",
			want: gitremote.Remote{Provider: "gitlab", Scope: "acme/api"},
		},
		{
			name: "azure https",
			url:  "https://dev.azure.com/contoso/platform/_git/api",
			want: gitremote.Remote{Provider: "azure", Scope: "contoso/platform"},
		},
		{
			name: "azure ssh v3",
			url:  "git@ssh.dev.azure.com:v3/contoso/platform/api",
			want: gitremote.Remote{Provider: "azure", Scope: "contoso/platform"},
		},
		{
			name: "legacy visualstudio.com host",
			url:  "https://contoso.visualstudio.com/platform/_git/api",
			want: gitremote.Remote{Provider: "azure", Scope: "contoso/platform"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gitremote.ParseRemote(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRemoteRejects(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"unknown host", "https://bitbucket.org/acme/api.git"},
		{"github without owner", "https://github.com/api"},
		{"azure without project", "https://dev.azure.com/contoso"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gitremote.ParseRemote(tt.url)
			require.Error(t, err)
		})
	}
}

func TestOpenOutsideRepository(t *testing.T) {
	_, err := gitremote.Open(t.TempDir())
	require.Error(t, err)
}
