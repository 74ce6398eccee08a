// Package github provides GitHub API client operations for the GitHub
// work-item adapter.
package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v69/github"
	"golang.org/x/oauth2"

	"github.com/avollmer/workbridge/pkg/config"
)

var errTokenRequired = errors.New("github token is required")

// listPageSize is the page size used for issue listing and search.
const listPageSize = 100

// Client wraps the GitHub REST client for one owner/repo scope.
type Client struct {
	client *github.Client
	owner  string
	repo   string
}

// NewClient creates a GitHub client from adapter configuration.
// A non-empty BaseURL switches the client to an enterprise instance.
func NewClient(cfg config.GitHubConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, errTokenRequired
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.SecureToken().Value()})
	tc := oauth2.NewClient(context.Background(), ts)
	client := github.NewClient(tc)

	if cfg.BaseURL != "" {
		enterprise, err := client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure enterprise base URL: %w", err)
		}
		client = enterprise
	}

	return &Client{client: client, owner: cfg.Owner, repo: cfg.Repo}, nil
}

// Owner returns the configured repository owner.
func (c *Client) Owner() string { return c.owner }

// Repo returns the configured repository name.
func (c *Client) Repo() string { return c.repo }

// Validate checks connectivity and credentials by fetching the
// configured repository.
func (c *Client) Validate(ctx context.Context) error {
	_, resp, err := c.client.Repositories.Get(ctx, c.owner, c.repo)
	if err != nil {
		return wrapAPIError("get repository", resp, err)
	}
	return nil
}

// GetIssue fetches a single issue by number.
func (c *Client) GetIssue(ctx context.Context, number int) (*github.Issue, error) {
	issue, resp, err := c.client.Issues.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return nil, wrapAPIError(fmt.Sprintf("get issue #%d", number), resp, err)
	}
	return issue, nil
}

// ListIssues returns repository issues matching the options, filtering
// out pull requests (the issues API returns both).
func (c *Client) ListIssues(ctx context.Context, opts *github.IssueListByRepoOptions) ([]*github.Issue, error) {
	if opts == nil {
		opts = &github.IssueListByRepoOptions{}
	}
	opts.ListOptions.PerPage = listPageSize

	var all []*github.Issue
	for {
		issues, resp, err := c.client.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, wrapAPIError("list issues", resp, err)
		}
		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			all = append(all, issue)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}
	return all, nil
}

// CreateIssue creates a new issue.
func (c *Client) CreateIssue(ctx context.Context, req *github.IssueRequest) (*github.Issue, error) {
	issue, resp, err := c.client.Issues.Create(ctx, c.owner, c.repo, req)
	if err != nil {
		return nil, wrapAPIError("create issue", resp, err)
	}
	return issue, nil
}

// EditIssue applies a partial edit to an issue.
func (c *Client) EditIssue(ctx context.Context, number int, req *github.IssueRequest) (*github.Issue, error) {
	issue, resp, err := c.client.Issues.Edit(ctx, c.owner, c.repo, number, req)
	if err != nil {
		return nil, wrapAPIError(fmt.Sprintf("edit issue #%d", number), resp, err)
	}
	return issue, nil
}

// AddLabels attaches labels to an issue.
func (c *Client) AddLabels(ctx context.Context, number int, labels []string) error {
	_, resp, err := c.client.Issues.AddLabelsToIssue(ctx, c.owner, c.repo, number, labels)
	if err != nil {
		return wrapAPIError(fmt.Sprintf("add labels to issue #%d", number), resp, err)
	}
	return nil
}

// SearchIssues runs a search with the given qualifiers, scoped to the
// configured repository, and returns matching issues (not PRs).
func (c *Client) SearchIssues(ctx context.Context, query string) ([]*github.Issue, error) {
	scoped := fmt.Sprintf("repo:%s/%s is:issue %s", c.owner, c.repo, query)
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: listPageSize}}

	var all []*github.Issue
	for {
		result, resp, err := c.client.Search.Issues(ctx, scoped, opts)
		if err != nil {
			return nil, wrapAPIError("search issues", resp, err)
		}
		all = append(all, result.Issues...)
		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}
	return all, nil
}
