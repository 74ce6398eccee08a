package migration

import (
	"context"
	"fmt"

	"github.com/avollmer/workbridge/pkg/platform"
	"github.com/avollmer/workbridge/pkg/workitem"
)

// Extract lists the source items matching filter and exports exactly
// that ID set, relationships included. Any failure aborts the phase;
// the result never exceeds the matched count.
func Extract(ctx context.Context, source platform.Provider, filter platform.ListFilter) ([]workitem.Export, error) {
	items, err := source.List(ctx, filter)
	if err != nil {
		return nil, &PhaseError{Phase: PhaseExtract, Err: err}
	}

	exports := make([]workitem.Export, 0, len(items))
	for _, item := range items {
		export, err := source.Export(ctx, item.ID)
		if err != nil {
			return nil, &PhaseError{Phase: PhaseExtract,
				Err: fmt.Errorf("export %s: %w", item.ID, err)}
		}
		exports = append(exports, *export)
	}
	return exports, nil
}
