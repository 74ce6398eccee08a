package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/avollmer/workbridge/pkg/platform"
	"github.com/avollmer/workbridge/pkg/workitem"
)

// Load creates the transformed items on the target in fixed-size
// sequential batches with a static pause between batches. A dry run
// synthesizes placeholder IDs and never touches the provider.
//
// With ContinueOnError set, per-item failures are recorded and the
// phase keeps going; otherwise the first failure aborts with a phase
// error, returning the partial result alongside it.
func Load(ctx context.Context, target platform.Provider, items []TransformedItem, opts LoadOptions) (*LoadResult, error) {
	result := &LoadResult{IDMapping: map[string]string{}}

	if opts.DryRun {
		for i, item := range items {
			result.IDMapping[item.Token] = workitem.ID{
				Provider: target.Name(),
				Scope:    "dry-run",
				NativeID: fmt.Sprintf("%d", i+1),
			}.String()
		}
		result.Successful = len(items)
		result.Batches = batchCount(len(items), opts.BatchSize)
		return result, nil
	}

	batchSize := opts.BatchSize
	if batchSize < 1 {
		batchSize = len(items)
	}

	for start := 0; start < len(items); start += batchSize {
		if result.Batches > 0 && opts.BatchDelay > 0 {
			if err := pause(ctx, opts.BatchDelay); err != nil {
				return result, &PhaseError{Phase: PhaseLoad, Err: err}
			}
		}
		result.Batches++

		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		for _, item := range items[start:end] {
			created, err := target.Create(ctx, item.Import)
			if err != nil {
				result.Failures = append(result.Failures, ItemFailure{
					Ref:    item.SourceID,
					Reason: err.Error(),
				})
				if !opts.ContinueOnError {
					return result, &PhaseError{Phase: PhaseLoad,
						Err: fmt.Errorf("create for %s: %w", item.SourceID, err)}
				}
				continue
			}
			result.IDMapping[item.Token] = created.ID.String()
			result.Successful++
		}
	}
	return result, nil
}

// pause sleeps for the inter-batch delay, honoring cancellation.
func pause(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func batchCount(total, batchSize int) int {
	if total == 0 {
		return 0
	}
	if batchSize < 1 {
		return 1
	}
	return (total + batchSize - 1) / batchSize
}
