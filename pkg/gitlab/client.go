// Package gitlab provides GitLab API client operations for the GitLab
// work-item adapter.
//
// GitLab exposes two distinct resource classes, project-level issues
// and group-level epics; the client surfaces both and callers select
// one via the sub-type tag in the canonical ID. Epic operations fail
// with [ErrGroupRequired] when no group is configured.
package gitlab

import (
	"context"
	"errors"
	"fmt"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/avollmer/workbridge/pkg/config"
)

var errTokenRequired = errors.New("gitlab token is required")

// listPageSize is the page size used for issue and epic listing.
const listPageSize = 100

// Client wraps the GitLab client for one project (and optionally one
// group, for epics).
type Client struct {
	client  *gitlab.Client
	project string
	group   string
}

// NewClient creates a GitLab client from adapter configuration.
func NewClient(cfg config.GitLabConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, errTokenRequired
	}

	var opts []gitlab.ClientOptionFunc
	if cfg.BaseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(cfg.BaseURL))
	}
	client, err := gitlab.NewClient(cfg.SecureToken().Value(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab client: %w", err)
	}

	return &Client{client: client, project: cfg.Project, group: cfg.Group}, nil
}

// Project returns the configured project path.
func (c *Client) Project() string { return c.project }

// Group returns the configured group path; empty when epics are not
// available.
func (c *Client) Group() string { return c.group }

// HasGroup reports whether epic operations can be performed.
func (c *Client) HasGroup() bool { return c.group != "" }

// requireGroup guards epic operations.
func (c *Client) requireGroup() error {
	if c.group == "" {
		return ErrGroupRequired
	}
	return nil
}

// Validate checks connectivity and credentials by fetching the
// configured project, and the group when one is set.
func (c *Client) Validate(ctx context.Context) error {
	_, resp, err := c.client.Projects.GetProject(c.project, nil, gitlab.WithContext(ctx))
	if err != nil {
		return wrapAPIError("get project", resp, err)
	}
	if c.group != "" {
		_, resp, err := c.client.Groups.GetGroup(c.group, nil, gitlab.WithContext(ctx))
		if err != nil {
			return wrapAPIError("get group", resp, err)
		}
	}
	return nil
}

// GetIssue fetches a project issue by IID.
func (c *Client) GetIssue(ctx context.Context, iid int) (*gitlab.Issue, error) {
	issue, resp, err := c.client.Issues.GetIssue(c.project, iid, gitlab.WithContext(ctx))
	if err != nil {
		return nil, wrapAPIError(fmt.Sprintf("get issue !%d", iid), resp, err)
	}
	return issue, nil
}

// ListIssues returns project issues matching the options, handling
// pagination.
func (c *Client) ListIssues(ctx context.Context, opts *gitlab.ListProjectIssuesOptions) ([]*gitlab.Issue, error) {
	if opts == nil {
		opts = &gitlab.ListProjectIssuesOptions{}
	}
	opts.ListOptions.PerPage = listPageSize

	var all []*gitlab.Issue
	for {
		issues, resp, err := c.client.Issues.ListProjectIssues(c.project, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, wrapAPIError("list issues", resp, err)
		}
		all = append(all, issues...)
		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}
	return all, nil
}

// CreateIssue creates a project issue.
func (c *Client) CreateIssue(ctx context.Context, opts *gitlab.CreateIssueOptions) (*gitlab.Issue, error) {
	issue, resp, err := c.client.Issues.CreateIssue(c.project, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, wrapAPIError("create issue", resp, err)
	}
	return issue, nil
}

// UpdateIssue applies a partial update to a project issue.
func (c *Client) UpdateIssue(ctx context.Context, iid int, opts *gitlab.UpdateIssueOptions) (*gitlab.Issue, error) {
	issue, resp, err := c.client.Issues.UpdateIssue(c.project, iid, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, wrapAPIError(fmt.Sprintf("update issue !%d", iid), resp, err)
	}
	return issue, nil
}

// DeleteIssue removes a project issue. GitLab supports true deletion.
func (c *Client) DeleteIssue(ctx context.Context, iid int) error {
	resp, err := c.client.Issues.DeleteIssue(c.project, iid, gitlab.WithContext(ctx))
	if err != nil {
		return wrapAPIError(fmt.Sprintf("delete issue !%d", iid), resp, err)
	}
	return nil
}

// SearchIssues performs a free-text search over project issues.
func (c *Client) SearchIssues(ctx context.Context, text string) ([]*gitlab.Issue, error) {
	opts := &gitlab.ListProjectIssuesOptions{
		Search:      gitlab.Ptr(text),
		ListOptions: gitlab.ListOptions{PerPage: listPageSize},
	}
	return c.ListIssues(ctx, opts)
}

// LinkIssues records a relationship between two project issues.
// linkType is a native GitLab link type: "relates_to", "blocks", or
// "is_blocked_by".
func (c *Client) LinkIssues(ctx context.Context, sourceIID, targetIID int, linkType string) error {
	opts := &gitlab.CreateIssueLinkOptions{
		TargetProjectID: gitlab.Ptr(c.project),
		TargetIssueIID:  gitlab.Ptr(fmt.Sprintf("%d", targetIID)),
		LinkType:        gitlab.Ptr(linkType),
	}
	_, resp, err := c.client.IssueLinks.CreateIssueLink(c.project, sourceIID, opts, gitlab.WithContext(ctx))
	if err != nil {
		return wrapAPIError(fmt.Sprintf("link issue !%d to !%d", sourceIID, targetIID), resp, err)
	}
	return nil
}

// GetEpic fetches a group epic by IID.
func (c *Client) GetEpic(ctx context.Context, iid int) (*gitlab.Epic, error) {
	if err := c.requireGroup(); err != nil {
		return nil, err
	}
	epic, resp, err := c.client.Epics.GetEpic(c.group, iid, gitlab.WithContext(ctx))
	if err != nil {
		return nil, wrapAPIError(fmt.Sprintf("get epic &%d", iid), resp, err)
	}
	return epic, nil
}

// ListEpics returns group epics, handling pagination.
func (c *Client) ListEpics(ctx context.Context, opts *gitlab.ListGroupEpicsOptions) ([]*gitlab.Epic, error) {
	if err := c.requireGroup(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &gitlab.ListGroupEpicsOptions{}
	}
	opts.ListOptions.PerPage = listPageSize

	var all []*gitlab.Epic
	for {
		epics, resp, err := c.client.Epics.ListGroupEpics(c.group, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, wrapAPIError("list epics", resp, err)
		}
		all = append(all, epics...)
		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}
	return all, nil
}

// CreateEpic creates a group epic.
func (c *Client) CreateEpic(ctx context.Context, opts *gitlab.CreateEpicOptions) (*gitlab.Epic, error) {
	if err := c.requireGroup(); err != nil {
		return nil, err
	}
	epic, resp, err := c.client.Epics.CreateEpic(c.group, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, wrapAPIError("create epic", resp, err)
	}
	return epic, nil
}

// UpdateEpic applies a partial update to a group epic.
func (c *Client) UpdateEpic(ctx context.Context, iid int, opts *gitlab.UpdateEpicOptions) (*gitlab.Epic, error) {
	if err := c.requireGroup(); err != nil {
		return nil, err
	}
	epic, resp, err := c.client.Epics.UpdateEpic(c.group, iid, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, wrapAPIError(fmt.Sprintf("update epic &%d", iid), resp, err)
	}
	return epic, nil
}

// DeleteEpic removes a group epic.
func (c *Client) DeleteEpic(ctx context.Context, iid int) error {
	if err := c.requireGroup(); err != nil {
		return err
	}
	resp, err := c.client.Epics.DeleteEpic(c.group, iid, gitlab.WithContext(ctx))
	if err != nil {
		return wrapAPIError(fmt.Sprintf("delete epic &%d", iid), resp, err)
	}
	return nil
}

// LookupUserIDs resolves usernames to user IDs for assignee fields.
// Unknown usernames are skipped; the caller surfaces warnings.
func (c *Client) LookupUserIDs(ctx context.Context, usernames []string) ([]int, []string, error) {
	var ids []int
	var missing []string
	for _, username := range usernames {
		users, resp, err := c.client.Users.ListUsers(&gitlab.ListUsersOptions{
			Username: gitlab.Ptr(username),
		}, gitlab.WithContext(ctx))
		if err != nil {
			return nil, nil, wrapAPIError(fmt.Sprintf("look up user %q", username), resp, err)
		}
		if len(users) == 0 {
			missing = append(missing, username)
			continue
		}
		ids = append(ids, users[0].ID)
	}
	return ids, missing, nil
}
