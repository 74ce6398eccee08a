// Package config handles loading and validation of workbridge configuration.
//
// Configuration is an explicit struct threaded through constructors;
// there are no environment-variable singletons. Tokens are wrapped in
// [security.SecureToken] so they cannot leak through formatting.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/avollmer/workbridge/internal/security"
)

var (
	errConfigNotFound    = errors.New("config file not found")
	errNoProviders       = errors.New("no providers configured")
	errGitHubIncomplete  = errors.New("github requires token, owner, and repo")
	errGitLabIncomplete  = errors.New("gitlab requires token and project")
	errAzureIncomplete   = errors.New("azure requires token, organization url, and project")
	errUnknownTemplate   = errors.New("unknown azure process template")
	errUnknownPolicy     = errors.New("unknown missing-field policy")
)

// validTemplates are the Azure DevOps process templates workbridge understands.
var validTemplates = map[string]bool{"": true, "agile": true, "scrum": true, "basic": true}

// validPolicies are the accepted missing-field policies.
var validPolicies = map[string]bool{"": true, "ignore": true, "metadata": true, "description": true}

// Config is the complete workbridge configuration.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	GitHub    GitHubConfig    `yaml:"github"`
	GitLab    GitLabConfig    `yaml:"gitlab"`
	Azure     AzureConfig     `yaml:"azure"`
	Migration MigrationConfig `yaml:"migration"`
}

// GitHubConfig configures the GitHub adapter.
type GitHubConfig struct {
	BaseURL string `yaml:"base_url"` // empty for github.com
	Token   string `yaml:"token"`
	Owner   string `yaml:"owner"`
	Repo    string `yaml:"repo"`
}

// Enabled reports whether the GitHub adapter is configured at all.
func (c GitHubConfig) Enabled() bool {
	return c.Token != "" || c.Owner != "" || c.Repo != ""
}

// SecureToken returns the token wrapped for log-safe handling.
func (c GitHubConfig) SecureToken() security.SecureToken {
	return security.NewSecureToken(c.Token)
}

// GitLabConfig configures the GitLab adapter. Group is only required
// for epic operations; leaving it empty makes epic-tagged IDs fail
// with a configuration error.
type GitLabConfig struct {
	BaseURL string `yaml:"base_url"` // empty for gitlab.com
	Token   string `yaml:"token"`
	Project string `yaml:"project"` // namespace/project path
	Group   string `yaml:"group"`   // group path for epics, optional
}

// Enabled reports whether the GitLab adapter is configured at all.
func (c GitLabConfig) Enabled() bool {
	return c.Token != "" || c.Project != ""
}

// SecureToken returns the token wrapped for log-safe handling.
func (c GitLabConfig) SecureToken() security.SecureToken {
	return security.NewSecureToken(c.Token)
}

// AzureConfig configures the Azure DevOps adapter.
type AzureConfig struct {
	OrganizationURL string `yaml:"organization_url"`
	Token           string `yaml:"token"`
	Project         string `yaml:"project"`
	ProcessTemplate string `yaml:"process_template"` // agile, scrum, or basic
}

// Enabled reports whether the Azure adapter is configured at all.
func (c AzureConfig) Enabled() bool {
	return c.Token != "" || c.OrganizationURL != ""
}

// SecureToken returns the token wrapped for log-safe handling.
func (c AzureConfig) SecureToken() security.SecureToken {
	return security.NewSecureToken(c.Token)
}

// MigrationConfig holds pipeline defaults; flags can override them.
type MigrationConfig struct {
	BatchSize          int               `yaml:"batch_size"`
	BatchDelaySeconds  int               `yaml:"batch_delay_seconds"`
	ContinueOnError    bool              `yaml:"continue_on_error"`
	MissingFieldPolicy string            `yaml:"missing_field_policy"`
	AddProvenance      bool              `yaml:"add_provenance"`
	UserMapping        map[string]string `yaml:"user_mapping"`
	LabelMapping       map[string]string `yaml:"label_mapping"`
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "workbridge", "config.yml"), nil
}

// Load reads, parses, and validates the configuration file at path.
// An empty path falls back to [DefaultPath].
func Load(path string) (*Config, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	// #nosec G304 - reading the user's own config file is intentional
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errConfigNotFound, path)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks that every configured provider has the fields its
// adapter needs and that enum-valued settings are recognized.
func (c *Config) Validate() error {
	if !c.GitHub.Enabled() && !c.GitLab.Enabled() && !c.Azure.Enabled() {
		return errNoProviders
	}

	if c.GitHub.Enabled() {
		if c.GitHub.Token == "" || c.GitHub.Owner == "" || c.GitHub.Repo == "" {
			return errGitHubIncomplete
		}
	}
	if c.GitLab.Enabled() {
		if c.GitLab.Token == "" || c.GitLab.Project == "" {
			return errGitLabIncomplete
		}
	}
	if c.Azure.Enabled() {
		if c.Azure.Token == "" || c.Azure.OrganizationURL == "" || c.Azure.Project == "" {
			return errAzureIncomplete
		}
		if !validTemplates[c.Azure.ProcessTemplate] {
			return fmt.Errorf("%w: %q", errUnknownTemplate, c.Azure.ProcessTemplate)
		}
	}

	if !validPolicies[c.Migration.MissingFieldPolicy] {
		return fmt.Errorf("%w: %q", errUnknownPolicy, c.Migration.MissingFieldPolicy)
	}

	return nil
}
