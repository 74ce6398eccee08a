package platform

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/webapi"
	"github.com/sgaunet/bullets"

	azclient "github.com/avollmer/workbridge/pkg/azure"
	"github.com/avollmer/workbridge/pkg/typemap"
	"github.com/avollmer/workbridge/pkg/workitem"
)

// AzureAdapter implements [Provider] on top of the Azure DevOps
// work-item tracking API.
//
// Azure DevOps exposes a single generic work-item resource; the
// configured process template decides its type vocabulary and
// hierarchy depth. Writes go through JSON patch documents and listing
// through WIQL, batched at the server's page cap.
type AzureAdapter struct {
	client *azclient.Client
	conv   *azclient.Converter
	log    *bullets.Logger
}

// NewAzureAdapter creates an Azure DevOps adapter around a configured
// client, resolving types through the given process template.
func NewAzureAdapter(client *azclient.Client, organization string, template typemap.Template, log *bullets.Logger) *AzureAdapter {
	return &AzureAdapter{
		client: client,
		conv:   azclient.NewConverter(organization, client.Project(), template),
		log:    log,
	}
}

// Initialize validates connectivity and credentials.
func (a *AzureAdapter) Initialize(ctx context.Context) error {
	if err := a.client.Validate(ctx); err != nil {
		return a.wrap("initialize", err)
	}
	return nil
}

// Name returns "azure".
func (a *AzureAdapter) Name() string { return ProviderAzure }

// Capabilities reports the feature set under the configured template.
func (a *AzureAdapter) Capabilities() workitem.Capabilities {
	template := a.conv.Template()
	return workitem.Capabilities{
		SupportsEpics:        template.Supports(workitem.TypeEpic),
		SupportsIterations:   true,
		SupportsTimeTracking: true,
		SupportsCustomFields: true,
		MaxAssignees:         1,
		HierarchyDepth:       template.HierarchyDepth,
		ItemTypes:            template.Types(),
	}
}

// Get fetches a work item by canonical ID.
func (a *AzureAdapter) Get(ctx context.Context, id workitem.ID) (*workitem.WorkItem, error) {
	nativeID, err := a.itemID(id)
	if err != nil {
		return nil, err
	}
	item, err := a.client.GetWorkItem(ctx, nativeID)
	if err != nil {
		return nil, a.wrap(fmt.Sprintf("get %s", id), err)
	}
	canonical := a.conv.ToCanonical(item)
	return &canonical, nil
}

// List returns work items matching the filter via a WIQL query.
// Labels and update-time constraints are applied after the fetch,
// since WIQL tag matching is unreliable across templates.
func (a *AzureAdapter) List(ctx context.Context, filter ListFilter) ([]workitem.WorkItem, error) {
	ids, err := a.client.QueryIDs(ctx, a.conv.BuildWIQL(a.client.Project(), filter.State, filter.Type))
	if err != nil {
		return nil, a.wrap("list", err)
	}
	items, err := a.fetchItems(ctx, ids)
	if err != nil {
		return nil, a.wrap("list", err)
	}

	filtered := items[:0]
	for _, item := range items {
		if len(filter.Labels) > 0 && !hasAllLabels(item.Labels, filter.Labels) {
			continue
		}
		if !filter.UpdatedAfter.IsZero() && item.UpdatedAt.Before(filter.UpdatedAfter) {
			continue
		}
		filtered = append(filtered, item)
		if filter.Limit > 0 && len(filtered) >= filter.Limit {
			break
		}
	}
	return filtered, nil
}

// Create creates a work item from an import payload.
func (a *AzureAdapter) Create(ctx context.Context, imp workitem.Import) (*workitem.WorkItem, error) {
	if imp.Title == "" {
		return nil, fmt.Errorf("%w: import has no title", ErrValidation)
	}
	nativeType, doc := a.conv.FromImport(imp)
	item, err := a.client.CreateWorkItem(ctx, nativeType, doc)
	if err != nil {
		return nil, a.wrap("create", err)
	}
	if imp.State == workitem.StateClosed && item.Id != nil {
		item, err = a.client.UpdateWorkItem(ctx, *item.Id,
			[]webapi.JsonPatchOperation{a.conv.StatePatch(workitem.StateClosed)})
		if err != nil {
			return nil, a.wrap("create (close)", err)
		}
	}
	canonical := a.conv.ToCanonical(item)
	return &canonical, nil
}

// Update applies a partial update as a patch document.
func (a *AzureAdapter) Update(ctx context.Context, id workitem.ID, upd Update) (*workitem.WorkItem, error) {
	nativeID, err := a.itemID(id)
	if err != nil {
		return nil, err
	}
	doc := a.conv.UpdateDocument(azclient.UpdateFields{
		Title:       upd.Title,
		Description: upd.Description,
		Labels:      upd.Labels,
		Assignees:   upd.Assignees,
		Priority:    upd.Priority,
		State:       upd.State,
	})
	if len(doc) == 0 {
		return a.Get(ctx, id)
	}
	item, err := a.client.UpdateWorkItem(ctx, nativeID, doc)
	if err != nil {
		return nil, a.wrap(fmt.Sprintf("update %s", id), err)
	}
	canonical := a.conv.ToCanonical(item)
	return &canonical, nil
}

// Delete removes a work item.
func (a *AzureAdapter) Delete(ctx context.Context, id workitem.ID) error {
	nativeID, err := a.itemID(id)
	if err != nil {
		return err
	}
	if err := a.client.DeleteWorkItem(ctx, nativeID); err != nil {
		return a.wrap(fmt.Sprintf("delete %s", id), err)
	}
	return nil
}

// Link records a relationship by appending a relation to the source
// item's patch document.
func (a *AzureAdapter) Link(ctx context.Context, from, to workitem.ID, rel Relation) error {
	nativeRel, ok := azclient.RelationRel(string(rel))
	if !ok {
		return Unsupported(ProviderAzure, fmt.Sprintf("%s links", rel))
	}
	fromID, err := a.itemID(from)
	if err != nil {
		return err
	}
	toID, err := a.itemID(to)
	if err != nil {
		return err
	}
	doc := []webapi.JsonPatchOperation{azclient.RelationPatch(nativeRel, a.client.ItemURL(toID))}
	if _, err := a.client.UpdateWorkItem(ctx, fromID, doc); err != nil {
		return a.wrap(fmt.Sprintf("link %s to %s", from, to), err)
	}
	return nil
}

// Unlink removes a relationship by locating its index on the source
// item and patching it out.
func (a *AzureAdapter) Unlink(ctx context.Context, from, to workitem.ID, rel Relation) error {
	nativeRel, ok := azclient.RelationRel(string(rel))
	if !ok {
		return Unsupported(ProviderAzure, fmt.Sprintf("%s links", rel))
	}
	fromID, err := a.itemID(from)
	if err != nil {
		return err
	}
	toID, err := a.itemID(to)
	if err != nil {
		return err
	}

	item, err := a.client.GetWorkItem(ctx, fromID)
	if err != nil {
		return a.wrap(fmt.Sprintf("unlink %s from %s", to, from), err)
	}
	index := -1
	if item.Relations != nil {
		suffix := fmt.Sprintf("/workItems/%d", toID)
		for i, relation := range *item.Relations {
			if relation.Rel != nil && *relation.Rel == nativeRel &&
				relation.Url != nil && strings.HasSuffix(*relation.Url, suffix) {
				index = i
				break
			}
		}
	}
	if index < 0 {
		return fmt.Errorf("unlink %s from %s: %w: no %s relation", to, from, ErrNotFound, rel)
	}

	doc := []webapi.JsonPatchOperation{azclient.RelationRemovePatch(index)}
	if _, err := a.client.UpdateWorkItem(ctx, fromID, doc); err != nil {
		return a.wrap(fmt.Sprintf("unlink %s from %s", to, from), err)
	}
	return nil
}

// BulkCreate creates items sequentially, stopping at the first failure.
func (a *AzureAdapter) BulkCreate(ctx context.Context, imps []workitem.Import) ([]workitem.WorkItem, error) {
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
func (a *AzureAdapter) BulkUpdate(ctx context.Context, upds []BulkUpdate) ([]workitem.WorkItem, error) {
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

// Search performs a free-text title search via WIQL.
func (a *AzureAdapter) Search(ctx context.Context, text string) ([]workitem.WorkItem, error) {
	ids, err := a.client.QueryIDs(ctx, azclient.BuildSearchWIQL(a.client.Project(), text))
	if err != nil {
		return nil, a.wrap("search", err)
	}
	items, err := a.fetchItems(ctx, ids)
	if err != nil {
		return nil, a.wrap("search", err)
	}
	return items, nil
}

// Query executes a raw WIQL statement.
func (a *AzureAdapter) Query(ctx context.Context, query string) ([]workitem.WorkItem, error) {
	ids, err := a.client.QueryIDs(ctx, query)
	if err != nil {
		return nil, a.wrap("query", err)
	}
	items, err := a.fetchItems(ctx, ids)
	if err != nil {
		return nil, a.wrap("query", err)
	}
	return items, nil
}

// Export fetches a work item and snapshots its relations.
func (a *AzureAdapter) Export(ctx context.Context, id workitem.ID) (*workitem.Export, error) {
	nativeID, err := a.itemID(id)
	if err != nil {
		return nil, err
	}
	item, err := a.client.GetWorkItem(ctx, nativeID)
	if err != nil {
		return nil, a.wrap(fmt.Sprintf("export %s", id), err)
	}

	export := &workitem.Export{
		Item:       a.conv.ToCanonical(item),
		ExportedAt: time.Now().UTC(),
	}
	if item.Relations != nil {
		for _, relation := range *item.Relations {
			if relation.Rel == nil || relation.Url == nil {
				continue
			}
			targetID, ok := trailingItemID(*relation.Url)
			if !ok {
				continue
			}
			target := a.conv.CanonicalID(targetID).String()
			switch *relation.Rel {
			case "System.LinkTypes.Hierarchy-Reverse":
				export.Relationships.Parent = target
			case "System.LinkTypes.Hierarchy-Forward":
				export.Relationships.Children = append(export.Relationships.Children, target)
			case "System.LinkTypes.Dependency-Forward":
				export.Relationships.Blocks = append(export.Relationships.Blocks, target)
			case "System.LinkTypes.Dependency-Reverse":
				export.Relationships.BlockedBy = append(export.Relationships.BlockedBy, target)
			case "System.LinkTypes.Related":
				export.Relationships.RelatedTo = append(export.Relationships.RelatedTo, target)
			}
		}
	}
	return export, nil
}

func (a *AzureAdapter) fetchItems(ctx context.Context, ids []int) ([]workitem.WorkItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	native, err := a.client.GetWorkItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]workitem.WorkItem, 0, len(native))
	for i := range native {
		items = append(items, a.conv.ToCanonical(&native[i]))
	}
	return items, nil
}

// itemID validates a canonical Azure ID and extracts the native ID.
func (a *AzureAdapter) itemID(id workitem.ID) (int, error) {
	if id.Provider != ProviderAzure {
		return 0, fmt.Errorf("%w: id %q does not belong to azure", ErrValidation, id)
	}
	if id.Kind != "" {
		return 0, fmt.Errorf("%w: azure id %q must not carry a sub-type tag", ErrValidation, id)
	}
	nativeID, err := strconv.Atoi(id.NativeID)
	if err != nil {
		return 0, fmt.Errorf("%w: azure id %q has non-numeric work item id", ErrValidation, id)
	}
	return nativeID, nil
}

func (a *AzureAdapter) wrap(op string, err error) error {
	return ClassifyHTTPStatus("azure "+op, azclient.StatusCode(err), err)
}

// trailingItemID extracts the numeric id at the end of a work item API URL.
func trailingItemID(url string) (int, bool) {
	idx := strings.LastIndex(url, "/")
	if idx < 0 {
		return 0, false
	}
	id, err := strconv.Atoi(url[idx+1:])
	if err != nil {
		return 0, false
	}
	return id, true
}

func hasAllLabels(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Compile-time interface check.
var _ Provider = (*AzureAdapter)(nil)
