// Package azure provides Azure DevOps work-item tracking operations
// for the Azure adapter.
//
// Azure DevOps exposes a single generic work-item resource. The
// canonical type of an item is resolved through the project's process
// template, writes use JSON patch documents rather than whole-object
// replacement, and listing goes through WIQL with a server-enforced
// page cap that requires multi-request batching.
package azure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/webapi"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"

	"github.com/avollmer/workbridge/pkg/config"
)

var (
	errTokenRequired = errors.New("azure devops token is required")
	errOrgRequired   = errors.New("azure devops organization url is required")
)

// maxBatchSize is the server-enforced cap on work items per read
// request; larger WIQL result sets are fetched in multiple batches.
const maxBatchSize = 200

// Client wraps the Azure DevOps work-item tracking client for one
// organization/project scope.
type Client struct {
	wit     workitemtracking.Client
	orgURL  string
	project string
}

// NewClient creates an Azure DevOps client from adapter configuration.
func NewClient(ctx context.Context, cfg config.AzureConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, errTokenRequired
	}
	if cfg.OrganizationURL == "" {
		return nil, errOrgRequired
	}

	connection := azuredevops.NewPatConnection(cfg.OrganizationURL, cfg.SecureToken().Value())
	wit, err := workitemtracking.NewClient(ctx, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to create work item tracking client: %w", err)
	}

	return &Client{wit: wit, orgURL: strings.TrimSuffix(cfg.OrganizationURL, "/"), project: cfg.Project}, nil
}

// Project returns the configured project name.
func (c *Client) Project() string { return c.project }

// ItemURL returns the API URL of a work item, used as the target of
// relation patch operations.
func (c *Client) ItemURL(id int) string {
	return fmt.Sprintf("%s/_apis/wit/workItems/%d", c.orgURL, id)
}

// Validate checks connectivity and credentials with a minimal WIQL
// round trip against the configured project.
func (c *Client) Validate(ctx context.Context) error {
	query := fmt.Sprintf(
		"SELECT [System.Id] FROM WorkItems WHERE [System.TeamProject] = '%s'", escapeWIQL(c.project))
	_, err := c.wit.QueryByWiql(ctx, workitemtracking.QueryByWiqlArgs{
		Wiql:    &workitemtracking.Wiql{Query: &query},
		Project: &c.project,
		Top:     intPtr(1),
	})
	if err != nil {
		return wrapAPIError("validate connection", err)
	}
	return nil
}

// GetWorkItem fetches a single work item with its relations.
func (c *Client) GetWorkItem(ctx context.Context, id int) (*workitemtracking.WorkItem, error) {
	item, err := c.wit.GetWorkItem(ctx, workitemtracking.GetWorkItemArgs{
		Id:      &id,
		Project: &c.project,
		Expand:  &workitemtracking.WorkItemExpandValues.Relations,
	})
	if err != nil {
		return nil, wrapAPIError(fmt.Sprintf("get work item %d", id), err)
	}
	return item, nil
}

// QueryIDs executes a WIQL query and returns the matching item IDs.
func (c *Client) QueryIDs(ctx context.Context, query string) ([]int, error) {
	result, err := c.wit.QueryByWiql(ctx, workitemtracking.QueryByWiqlArgs{
		Wiql:    &workitemtracking.Wiql{Query: &query},
		Project: &c.project,
	})
	if err != nil {
		return nil, wrapAPIError("wiql query", err)
	}
	if result == nil || result.WorkItems == nil {
		return nil, nil
	}
	ids := make([]int, 0, len(*result.WorkItems))
	for _, ref := range *result.WorkItems {
		if ref.Id != nil {
			ids = append(ids, *ref.Id)
		}
	}
	return ids, nil
}

// GetWorkItems fetches full work items for an ID set, batching reads
// at the server's page cap.
func (c *Client) GetWorkItems(ctx context.Context, ids []int) ([]workitemtracking.WorkItem, error) {
	var all []workitemtracking.WorkItem
	for start := 0; start < len(ids); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]
		items, err := c.wit.GetWorkItems(ctx, workitemtracking.GetWorkItemsArgs{
			Ids:     &batch,
			Project: &c.project,
			Expand:  &workitemtracking.WorkItemExpandValues.Relations,
		})
		if err != nil {
			return nil, wrapAPIError(fmt.Sprintf("get work items batch %d..%d", start, end-1), err)
		}
		if items != nil {
			all = append(all, *items...)
		}
	}
	return all, nil
}

// CreateWorkItem creates a work item of the given native type from a
// patch document.
func (c *Client) CreateWorkItem(ctx context.Context, nativeType string, doc []webapi.JsonPatchOperation) (*workitemtracking.WorkItem, error) {
	item, err := c.wit.CreateWorkItem(ctx, workitemtracking.CreateWorkItemArgs{
		Type:     &nativeType,
		Project:  &c.project,
		Document: &doc,
	})
	if err != nil {
		return nil, wrapAPIError(fmt.Sprintf("create %s work item", nativeType), err)
	}
	return item, nil
}

// UpdateWorkItem applies a patch document to an existing work item.
func (c *Client) UpdateWorkItem(ctx context.Context, id int, doc []webapi.JsonPatchOperation) (*workitemtracking.WorkItem, error) {
	item, err := c.wit.UpdateWorkItem(ctx, workitemtracking.UpdateWorkItemArgs{
		Id:       &id,
		Project:  &c.project,
		Document: &doc,
	})
	if err != nil {
		return nil, wrapAPIError(fmt.Sprintf("update work item %d", id), err)
	}
	return item, nil
}

// DeleteWorkItem removes a work item (into the recycle bin).
func (c *Client) DeleteWorkItem(ctx context.Context, id int) error {
	_, err := c.wit.DeleteWorkItem(ctx, workitemtracking.DeleteWorkItemArgs{
		Id:      &id,
		Project: &c.project,
	})
	if err != nil {
		return wrapAPIError(fmt.Sprintf("delete work item %d", id), err)
	}
	return nil
}

// escapeWIQL doubles single quotes for safe literal embedding.
func escapeWIQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func intPtr(v int) *int { return &v }
