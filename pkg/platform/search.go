package platform

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/avollmer/workbridge/pkg/workitem"
)

// SearchResult holds the outcome of a free-text search against one
// provider during a cross-platform fan-out.
type SearchResult struct {
	Provider string
	Items    []workitem.WorkItem
	Err      error
}

// SearchAll runs a free-text search against every provider
// concurrently with all-settled semantics: one provider failing yields
// an empty result (with its error recorded) without cancelling or
// failing the others. Results come back in the order the providers
// were given.
func SearchAll(ctx context.Context, providers []Provider, text string) []SearchResult {
	results := make([]SearchResult, len(providers))

	var group errgroup.Group
	for i, p := range providers {
		group.Go(func() error {
			items, err := p.Search(ctx, text)
			if err != nil {
				results[i] = SearchResult{Provider: p.Name(), Err: err}
				return nil
			}
			results[i] = SearchResult{Provider: p.Name(), Items: items}
			return nil
		})
	}
	// Closures never return an error; Wait only synchronizes.
	_ = group.Wait()

	return results
}
