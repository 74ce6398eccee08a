package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sgaunet/bullets"
	gogitlab "gitlab.com/gitlab-org/api/client-go"

	glclient "github.com/avollmer/workbridge/pkg/gitlab"
	"github.com/avollmer/workbridge/pkg/workitem"
)

// GitLabAdapter implements [Provider] on top of the GitLab issues and
// epics APIs.
//
// GitLab has two native resource classes: project-level issues and
// group-level epics. The canonical ID's sub-type tag selects between
// them, and epic operations fail with a configuration error when no
// group is configured.
type GitLabAdapter struct {
	client *glclient.Client
	conv   *glclient.Converter
	log    *bullets.Logger
}

// NewGitLabAdapter creates a GitLab adapter around a configured client.
func NewGitLabAdapter(client *glclient.Client, log *bullets.Logger) *GitLabAdapter {
	return &GitLabAdapter{
		client: client,
		conv:   glclient.NewConverter(client.Project(), client.Group()),
		log:    log,
	}
}

// Initialize validates connectivity and credentials.
func (a *GitLabAdapter) Initialize(ctx context.Context) error {
	if err := a.client.Validate(ctx); err != nil {
		return a.wrap("initialize", err)
	}
	return nil
}

// Name returns "gitlab".
func (a *GitLabAdapter) Name() string { return ProviderGitLab }

// Capabilities reports GitLab's feature set. Epic support depends on
// whether a group is configured.
func (a *GitLabAdapter) Capabilities() workitem.Capabilities {
	caps := workitem.Capabilities{
		SupportsMilestones:        true,
		SupportsMultipleAssignees: true,
		SupportsConfidential:      true,
		SupportsWeight:            true,
		SupportsTimeTracking:      true,
		HierarchyDepth:            1,
		ItemTypes:                 []workitem.Type{workitem.TypeIssue},
	}
	if a.client.HasGroup() {
		caps.SupportsEpics = true
		caps.HierarchyDepth = 2
		caps.ItemTypes = []workitem.Type{workitem.TypeEpic, workitem.TypeIssue}
	}
	return caps
}

// Get fetches an issue or epic by canonical ID.
func (a *GitLabAdapter) Get(ctx context.Context, id workitem.ID) (*workitem.WorkItem, error) {
	kind, iid, err := a.splitID(id)
	if err != nil {
		return nil, err
	}
	if kind == glclient.KindEpic {
		epic, err := a.client.GetEpic(ctx, iid)
		if err != nil {
			return nil, a.wrap(fmt.Sprintf("get %s", id), err)
		}
		item := a.conv.EpicToCanonical(epic)
		return &item, nil
	}

	issue, err := a.client.GetIssue(ctx, iid)
	if err != nil {
		return nil, a.wrap(fmt.Sprintf("get %s", id), err)
	}
	item := a.conv.IssueToCanonical(issue)
	return &item, nil
}

// List returns issues matching the filter, plus epics when a group is
// configured and the filter does not exclude them.
func (a *GitLabAdapter) List(ctx context.Context, filter ListFilter) ([]workitem.WorkItem, error) {
	var items []workitem.WorkItem

	if filter.Type == "" || filter.Type != workitem.TypeEpic {
		opts := &gogitlab.ListProjectIssuesOptions{}
		switch filter.State {
		case workitem.StateOpen:
			opts.State = gogitlab.Ptr("opened")
		case workitem.StateClosed:
			opts.State = gogitlab.Ptr("closed")
		}
		if len(filter.Labels) > 0 {
			labels := gogitlab.LabelOptions(filter.Labels)
			opts.Labels = &labels
		}
		if !filter.UpdatedAfter.IsZero() {
			opts.UpdatedAfter = &filter.UpdatedAfter
		}
		issues, err := a.client.ListIssues(ctx, opts)
		if err != nil {
			return nil, a.wrap("list issues", err)
		}
		for _, issue := range issues {
			item := a.conv.IssueToCanonical(issue)
			if filter.Type != "" && item.Type != filter.Type {
				continue
			}
			items = append(items, item)
		}
	}

	if a.client.HasGroup() && (filter.Type == "" || filter.Type == workitem.TypeEpic) {
		opts := &gogitlab.ListGroupEpicsOptions{}
		switch filter.State {
		case workitem.StateOpen:
			opts.State = gogitlab.Ptr("opened")
		case workitem.StateClosed:
			opts.State = gogitlab.Ptr("closed")
		}
		epics, err := a.client.ListEpics(ctx, opts)
		if err != nil {
			return nil, a.wrap("list epics", err)
		}
		for _, epic := range epics {
			items = append(items, a.conv.EpicToCanonical(epic))
		}
	}

	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

// Create creates an issue, or an epic when the import's type is epic.
func (a *GitLabAdapter) Create(ctx context.Context, imp workitem.Import) (*workitem.WorkItem, error) {
	if imp.Title == "" {
		return nil, fmt.Errorf("%w: import has no title", ErrValidation)
	}

	if imp.Type == workitem.TypeEpic {
		epic, err := a.client.CreateEpic(ctx, a.conv.EpicFromImport(imp))
		if err != nil {
			return nil, a.wrap("create epic", err)
		}
		if imp.State == workitem.StateClosed {
			epic, err = a.client.UpdateEpic(ctx, epic.IID, &gogitlab.UpdateEpicOptions{
				StateEvent: gogitlab.Ptr("close"),
			})
			if err != nil {
				return nil, a.wrap("create epic (close)", err)
			}
		}
		item := a.conv.EpicToCanonical(epic)
		return &item, nil
	}

	assigneeIDs, missing, err := a.client.LookupUserIDs(ctx, imp.Assignees)
	if err != nil {
		return nil, a.wrap("create (resolve assignees)", err)
	}
	for _, username := range missing {
		a.log.Warn(fmt.Sprintf("GitLab user %q not found; dropping assignee", username))
	}

	issue, err := a.client.CreateIssue(ctx, a.conv.IssueFromImport(imp, assigneeIDs))
	if err != nil {
		return nil, a.wrap("create issue", err)
	}
	if imp.State == workitem.StateClosed {
		issue, err = a.client.UpdateIssue(ctx, issue.IID, &gogitlab.UpdateIssueOptions{
			StateEvent: gogitlab.Ptr("close"),
		})
		if err != nil {
			return nil, a.wrap("create issue (close)", err)
		}
	}
	item := a.conv.IssueToCanonical(issue)
	return &item, nil
}

// Update applies a partial update to an issue or epic.
func (a *GitLabAdapter) Update(ctx context.Context, id workitem.ID, upd Update) (*workitem.WorkItem, error) {
	kind, iid, err := a.splitID(id)
	if err != nil {
		return nil, err
	}

	if kind == glclient.KindEpic {
		opts := &gogitlab.UpdateEpicOptions{
			Title:       upd.Title,
			Description: upd.Description,
		}
		if upd.Labels != nil {
			labels := gogitlab.LabelOptions(*upd.Labels)
			opts.Labels = &labels
		}
		if upd.State != nil {
			opts.StateEvent = gogitlab.Ptr(stateEvent(*upd.State))
		}
		epic, err := a.client.UpdateEpic(ctx, iid, opts)
		if err != nil {
			return nil, a.wrap(fmt.Sprintf("update %s", id), err)
		}
		item := a.conv.EpicToCanonical(epic)
		return &item, nil
	}

	opts := &gogitlab.UpdateIssueOptions{
		Title:       upd.Title,
		Description: upd.Description,
	}
	if upd.Labels != nil {
		labels := gogitlab.LabelOptions(*upd.Labels)
		opts.Labels = &labels
	}
	if upd.State != nil {
		opts.StateEvent = gogitlab.Ptr(stateEvent(*upd.State))
	}
	if upd.Assignees != nil {
		ids, missing, err := a.client.LookupUserIDs(ctx, *upd.Assignees)
		if err != nil {
			return nil, a.wrap(fmt.Sprintf("update %s (resolve assignees)", id), err)
		}
		for _, username := range missing {
			a.log.Warn(fmt.Sprintf("GitLab user %q not found; dropping assignee", username))
		}
		opts.AssigneeIDs = &ids
	}

	issue, err := a.client.UpdateIssue(ctx, iid, opts)
	if err != nil {
		return nil, a.wrap(fmt.Sprintf("update %s", id), err)
	}
	item := a.conv.IssueToCanonical(issue)
	return &item, nil
}

// Delete removes an issue or epic. GitLab supports true deletion.
func (a *GitLabAdapter) Delete(ctx context.Context, id workitem.ID) error {
	kind, iid, err := a.splitID(id)
	if err != nil {
		return err
	}
	if kind == glclient.KindEpic {
		if err := a.client.DeleteEpic(ctx, iid); err != nil {
			return a.wrap(fmt.Sprintf("delete %s", id), err)
		}
		return nil
	}
	if err := a.client.DeleteIssue(ctx, iid); err != nil {
		return a.wrap(fmt.Sprintf("delete %s", id), err)
	}
	return nil
}

// linkTypes maps canonical relations to native issue link types.
var linkTypes = map[Relation]string{
	RelationBlocks:  "blocks",
	RelationBlocked: "is_blocked_by",
	RelationRelated: "relates_to",
}

// Link records a relationship between two project issues. Hierarchy
// relations and epic links are not expressible through issue links.
func (a *GitLabAdapter) Link(ctx context.Context, from, to workitem.ID, rel Relation) error {
	linkType, ok := linkTypes[rel]
	if !ok {
		return Unsupported(ProviderGitLab, fmt.Sprintf("%s links between issues", rel))
	}
	fromKind, fromIID, err := a.splitID(from)
	if err != nil {
		return err
	}
	toKind, toIID, err := a.splitID(to)
	if err != nil {
		return err
	}
	if fromKind == glclient.KindEpic || toKind == glclient.KindEpic {
		return Unsupported(ProviderGitLab, "linking epics through issue links")
	}
	if err := a.client.LinkIssues(ctx, fromIID, toIID, linkType); err != nil {
		return a.wrap(fmt.Sprintf("link %s to %s", from, to), err)
	}
	return nil
}

// Unlink is unsupported: removing an issue link requires the native
// link identifier, which the canonical relationship model does not
// carry.
func (a *GitLabAdapter) Unlink(_ context.Context, _, _ workitem.ID, _ Relation) error {
	return Unsupported(ProviderGitLab, "unlinking work items")
}

// BulkCreate creates items sequentially, stopping at the first failure.
func (a *GitLabAdapter) BulkCreate(ctx context.Context, imps []workitem.Import) ([]workitem.WorkItem, error) {
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
func (a *GitLabAdapter) BulkUpdate(ctx context.Context, upds []BulkUpdate) ([]workitem.WorkItem, error) {
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

// Search performs a free-text search over project issues.
func (a *GitLabAdapter) Search(ctx context.Context, text string) ([]workitem.WorkItem, error) {
	issues, err := a.client.SearchIssues(ctx, text)
	if err != nil {
		return nil, a.wrap("search", err)
	}
	items := make([]workitem.WorkItem, 0, len(issues))
	for _, issue := range issues {
		items = append(items, a.conv.IssueToCanonical(issue))
	}
	return items, nil
}

// Query is unsupported: GitLab exposes no SQL-like query language for
// issues, only the structured filters List already covers.
func (a *GitLabAdapter) Query(_ context.Context, _ string) ([]workitem.WorkItem, error) {
	return nil, Unsupported(ProviderGitLab, "native query execution")
}

// Export fetches an item with its relationship snapshot. For issues
// the epic link, when present, becomes the parent relation.
func (a *GitLabAdapter) Export(ctx context.Context, id workitem.ID) (*workitem.Export, error) {
	kind, iid, err := a.splitID(id)
	if err != nil {
		return nil, err
	}

	export := &workitem.Export{ExportedAt: time.Now().UTC()}
	if kind == glclient.KindEpic {
		epic, err := a.client.GetEpic(ctx, iid)
		if err != nil {
			return nil, a.wrap(fmt.Sprintf("export %s", id), err)
		}
		export.Item = a.conv.EpicToCanonical(epic)
		return export, nil
	}

	issue, err := a.client.GetIssue(ctx, iid)
	if err != nil {
		return nil, a.wrap(fmt.Sprintf("export %s", id), err)
	}
	export.Item = a.conv.IssueToCanonical(issue)
	if issue.Epic != nil {
		export.Relationships.Parent = a.conv.EpicID(issue.Epic.IID).String()
	}
	return export, nil
}

func (a *GitLabAdapter) splitID(id workitem.ID) (string, int, error) {
	if id.Provider != ProviderGitLab {
		return "", 0, fmt.Errorf("%w: id %q does not belong to gitlab", ErrValidation, id)
	}
	kind, iid, err := glclient.SplitID(id)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return kind, iid, nil
}

// wrap classifies a client error, mapping the missing-group guard to
// a configuration error instead of an HTTP one.
func (a *GitLabAdapter) wrap(op string, err error) error {
	if errors.Is(err, glclient.ErrGroupRequired) {
		return fmt.Errorf("gitlab %s: %w: %w", op, ErrConfig, err)
	}
	return ClassifyHTTPStatus("gitlab "+op, glclient.StatusCode(err), err)
}

func stateEvent(state workitem.State) string {
	if state == workitem.StateClosed {
		return "close"
	}
	return "reopen"
}

// Compile-time interface check.
var _ Provider = (*GitLabAdapter)(nil)
