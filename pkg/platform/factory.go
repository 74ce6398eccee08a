package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sgaunet/bullets"

	azclient "github.com/avollmer/workbridge/pkg/azure"
	"github.com/avollmer/workbridge/pkg/config"
	ghclient "github.com/avollmer/workbridge/pkg/github"
	glclient "github.com/avollmer/workbridge/pkg/gitlab"
	"github.com/avollmer/workbridge/pkg/typemap"
)

// defaultAzureTemplate is used when the config leaves the process
// template empty.
const defaultAzureTemplate = "agile"

// NewProvider constructs the adapter for a configured backend. The
// returned provider still needs Initialize before use.
func NewProvider(ctx context.Context, name string, cfg *config.Config, log *bullets.Logger) (Provider, error) {
	switch name {
	case ProviderGitHub:
		if !cfg.GitHub.Enabled() {
			return nil, fmt.Errorf("%w: github is not configured", ErrConfig)
		}
		client, err := ghclient.NewClient(cfg.GitHub)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		return NewGitHubAdapter(client, log), nil

	case ProviderGitLab:
		if !cfg.GitLab.Enabled() {
			return nil, fmt.Errorf("%w: gitlab is not configured", ErrConfig)
		}
		client, err := glclient.NewClient(cfg.GitLab)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		return NewGitLabAdapter(client, log), nil

	case ProviderAzure:
		if !cfg.Azure.Enabled() {
			return nil, fmt.Errorf("%w: azure is not configured", ErrConfig)
		}
		templateName := cfg.Azure.ProcessTemplate
		if templateName == "" {
			templateName = defaultAzureTemplate
		}
		template, ok := typemap.TemplateByName(templateName)
		if !ok {
			return nil, fmt.Errorf("%w: unknown process template %q", ErrConfig, templateName)
		}
		client, err := azclient.NewClient(ctx, cfg.Azure)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		org, err := organizationName(cfg.Azure.OrganizationURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		return NewAzureAdapter(client, org, template, log), nil

	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrConfig, name)
	}
}

// EnabledProviders returns the names of all configured backends, in a
// stable order.
func EnabledProviders(cfg *config.Config) []string {
	var names []string
	if cfg.GitHub.Enabled() {
		names = append(names, ProviderGitHub)
	}
	if cfg.GitLab.Enabled() {
		names = append(names, ProviderGitLab)
	}
	if cfg.Azure.Enabled() {
		names = append(names, ProviderAzure)
	}
	return names
}

// organizationName extracts the organization from an Azure DevOps
// organization URL such as https://dev.azure.com/myorg.
func organizationName(orgURL string) (string, error) {
	parsed, err := url.Parse(orgURL)
	if err != nil {
		return "", fmt.Errorf("invalid organization url %q: %w", orgURL, err)
	}
	name := strings.Trim(parsed.Path, "/")
	if name == "" {
		// visualstudio.com style: org is the host's first label.
		name, _, _ = strings.Cut(parsed.Host, ".")
	}
	if name == "" {
		return "", fmt.Errorf("organization url %q carries no organization name", orgURL)
	}
	return name, nil
}
