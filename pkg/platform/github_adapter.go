package platform

import (
	"context"
	"fmt"
	"strconv"
	"time"

	gogithub "github.com/google/go-github/v69/github"
	"github.com/sgaunet/bullets"

	ghclient "github.com/avollmer/workbridge/pkg/github"
	"github.com/avollmer/workbridge/pkg/workitem"
)

// githubMaxAssignees is GitHub's limit on assignees per issue.
const githubMaxAssignees = 10

// GitHubAdapter implements [Provider] on top of the GitHub issues API.
//
// GitHub has no native work-item types, epics, or iterations: types
// are inferred from labels and checklist density, priority from label
// text, and deletion is emulated by closing the issue and attaching
// archival labels.
type GitHubAdapter struct {
	client *ghclient.Client
	conv   *ghclient.Converter
	log    *bullets.Logger
}

// NewGitHubAdapter creates a GitHub adapter around a configured client.
func NewGitHubAdapter(client *ghclient.Client, log *bullets.Logger) *GitHubAdapter {
	return &GitHubAdapter{
		client: client,
		conv:   ghclient.NewConverter(client.Owner(), client.Repo()),
		log:    log,
	}
}

// Initialize validates connectivity and credentials.
func (a *GitHubAdapter) Initialize(ctx context.Context) error {
	if err := a.client.Validate(ctx); err != nil {
		return a.wrap("initialize", err)
	}
	return nil
}

// Name returns "github".
func (a *GitHubAdapter) Name() string { return ProviderGitHub }

// Capabilities reports GitHub's feature set.
func (a *GitHubAdapter) Capabilities() workitem.Capabilities {
	return workitem.Capabilities{
		SupportsMilestones:        true,
		SupportsMultipleAssignees: true,
		MaxAssignees:              githubMaxAssignees,
		HierarchyDepth:            1,
		ItemTypes:                 []workitem.Type{workitem.TypeIssue},
	}
}

// Get fetches an issue by canonical ID.
func (a *GitHubAdapter) Get(ctx context.Context, id workitem.ID) (*workitem.WorkItem, error) {
	number, err := a.issueNumber(id)
	if err != nil {
		return nil, err
	}
	issue, err := a.client.GetIssue(ctx, number)
	if err != nil {
		return nil, a.wrap(fmt.Sprintf("get %s", id), err)
	}
	item := a.conv.ToCanonical(issue)
	return &item, nil
}

// List returns issues matching the filter.
func (a *GitHubAdapter) List(ctx context.Context, filter ListFilter) ([]workitem.WorkItem, error) {
	opts := &gogithub.IssueListByRepoOptions{State: "all"}
	switch filter.State {
	case workitem.StateOpen:
		opts.State = "open"
	case workitem.StateClosed:
		opts.State = "closed"
	}
	if len(filter.Labels) > 0 {
		opts.Labels = filter.Labels
	}
	if !filter.UpdatedAfter.IsZero() {
		opts.Since = filter.UpdatedAfter
	}

	issues, err := a.client.ListIssues(ctx, opts)
	if err != nil {
		return nil, a.wrap("list", err)
	}

	items := make([]workitem.WorkItem, 0, len(issues))
	for _, issue := range issues {
		item := a.conv.ToCanonical(issue)
		if filter.Type != "" && item.Type != filter.Type {
			continue
		}
		items = append(items, item)
		if filter.Limit > 0 && len(items) >= filter.Limit {
			break
		}
	}
	return items, nil
}

// Create creates an issue from an import payload.
func (a *GitHubAdapter) Create(ctx context.Context, imp workitem.Import) (*workitem.WorkItem, error) {
	if imp.Title == "" {
		return nil, fmt.Errorf("%w: import has no title", ErrValidation)
	}
	issue, err := a.client.CreateIssue(ctx, a.conv.FromImport(imp))
	if err != nil {
		return nil, a.wrap("create", err)
	}
	if imp.State == workitem.StateClosed {
		issue, err = a.client.EditIssue(ctx, issue.GetNumber(), &gogithub.IssueRequest{
			State: gogithub.Ptr("closed"),
		})
		if err != nil {
			return nil, a.wrap("create (close)", err)
		}
	}
	item := a.conv.ToCanonical(issue)
	return &item, nil
}

// Update applies a partial update to an issue.
func (a *GitHubAdapter) Update(ctx context.Context, id workitem.ID, upd Update) (*workitem.WorkItem, error) {
	number, err := a.issueNumber(id)
	if err != nil {
		return nil, err
	}

	req := &gogithub.IssueRequest{}
	if upd.Title != nil {
		req.Title = upd.Title
	}
	if upd.Description != nil {
		req.Body = upd.Description
	}
	if upd.State != nil {
		state := "open"
		if *upd.State == workitem.StateClosed {
			state = "closed"
		}
		req.State = gogithub.Ptr(state)
	}
	if upd.Labels != nil {
		req.Labels = upd.Labels
	}
	if upd.Assignees != nil {
		req.Assignees = upd.Assignees
	}

	issue, err := a.client.EditIssue(ctx, number, req)
	if err != nil {
		return nil, a.wrap(fmt.Sprintf("update %s", id), err)
	}

	// Priority has no native field; it is expressed as a label.
	if upd.Priority != nil {
		label := fmt.Sprintf("priority: %s", *upd.Priority)
		if err := a.client.AddLabels(ctx, number, []string{label}); err != nil {
			return nil, a.wrap(fmt.Sprintf("update %s (priority label)", id), err)
		}
	}

	item := a.conv.ToCanonical(issue)
	return &item, nil
}

// Delete emulates deletion: GitHub cannot delete issues, so the item
// is closed and tagged with archival labels instead.
func (a *GitHubAdapter) Delete(ctx context.Context, id workitem.ID) error {
	number, err := a.issueNumber(id)
	if err != nil {
		return err
	}
	a.log.Warn(fmt.Sprintf("GitHub does not support deletion; closing and archiving issue #%d", number))
	if _, err := a.client.EditIssue(ctx, number, &gogithub.IssueRequest{State: gogithub.Ptr("closed")}); err != nil {
		return a.wrap(fmt.Sprintf("delete %s (close)", id), err)
	}
	if err := a.client.AddLabels(ctx, number, ghclient.ArchiveLabels()); err != nil {
		return a.wrap(fmt.Sprintf("delete %s (archive labels)", id), err)
	}
	return nil
}

// Link is unsupported: the GitHub issues API has no relationship resource.
func (a *GitHubAdapter) Link(_ context.Context, _, _ workitem.ID, _ Relation) error {
	return Unsupported(ProviderGitHub, "linking work items")
}

// Unlink is unsupported for the same reason as Link.
func (a *GitHubAdapter) Unlink(_ context.Context, _, _ workitem.ID, _ Relation) error {
	return Unsupported(ProviderGitHub, "unlinking work items")
}

// BulkCreate creates issues sequentially, stopping at the first failure.
func (a *GitHubAdapter) BulkCreate(ctx context.Context, imps []workitem.Import) ([]workitem.WorkItem, error) {
	created := make([]workitem.WorkItem, 0, len(imps))
	for i, imp := range imps {
		item, err := a.Create(ctx, imp)
		if err != nil {
			return created, fmt.Errorf("bulk create stopped at item %d: %w", i, err)
		}
		created = append(created, *item)
	}
	return created, nil
}

// BulkUpdate applies updates sequentially, stopping at the first failure.
func (a *GitHubAdapter) BulkUpdate(ctx context.Context, upds []BulkUpdate) ([]workitem.WorkItem, error) {
	updated := make([]workitem.WorkItem, 0, len(upds))
	for i, u := range upds {
		item, err := a.Update(ctx, u.ID, u.Update)
		if err != nil {
			return updated, fmt.Errorf("bulk update stopped at item %d: %w", i, err)
		}
		updated = append(updated, *item)
	}
	return updated, nil
}

// Search performs a free-text search over repository issues.
func (a *GitHubAdapter) Search(ctx context.Context, text string) ([]workitem.WorkItem, error) {
	return a.runSearch(ctx, "search", text)
}

// Query executes a native search-qualifier query ("label:bug state:open").
func (a *GitHubAdapter) Query(ctx context.Context, query string) ([]workitem.WorkItem, error) {
	return a.runSearch(ctx, "query", query)
}

func (a *GitHubAdapter) runSearch(ctx context.Context, op, query string) ([]workitem.WorkItem, error) {
	issues, err := a.client.SearchIssues(ctx, query)
	if err != nil {
		return nil, a.wrap(op, err)
	}
	items := make([]workitem.WorkItem, 0, len(issues))
	for _, issue := range issues {
		items = append(items, a.conv.ToCanonical(issue))
	}
	return items, nil
}

// Export fetches an issue with its relationship snapshot. GitHub has
// no native relationships, so the snapshot is always empty.
func (a *GitHubAdapter) Export(ctx context.Context, id workitem.ID) (*workitem.Export, error) {
	item, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &workitem.Export{
		Item:       *item,
		ExportedAt: time.Now().UTC(),
	}, nil
}

// issueNumber validates a canonical GitHub ID and extracts the issue
// number. GitHub IDs never carry a sub-type tag.
func (a *GitHubAdapter) issueNumber(id workitem.ID) (int, error) {
	if id.Provider != ProviderGitHub {
		return 0, fmt.Errorf("%w: id %q does not belong to github", ErrValidation, id)
	}
	if id.Kind != "" {
		return 0, fmt.Errorf("%w: github id %q must not carry a sub-type tag", ErrValidation, id)
	}
	number, err := strconv.Atoi(id.NativeID)
	if err != nil {
		return 0, fmt.Errorf("%w: github id %q has non-numeric issue number", ErrValidation, id)
	}
	return number, nil
}

func (a *GitHubAdapter) wrap(op string, err error) error {
	return ClassifyHTTPStatus("github "+op, ghclient.StatusCode(err), err)
}

// Compile-time interface check.
var _ Provider = (*GitHubAdapter)(nil)
