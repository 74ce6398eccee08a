package migration

import (
	"context"
	"fmt"

	"github.com/sgaunet/bullets"

	"github.com/avollmer/workbridge/pkg/platform"
	"github.com/avollmer/workbridge/pkg/workitem"
)

// Options configures a full pipeline run for one source/target pair.
type Options struct {
	// Filter selects the source items to migrate.
	Filter platform.ListFilter

	// Only restricts the run to these source items after extraction,
	// for interactive selection. Empty means every matched item.
	Only []workitem.ID

	Transform TransformOptions
	Load      LoadOptions

	// SkipVerify leaves the verification phase out entirely.
	SkipVerify bool
}

// Result aggregates the outcome of every phase that ran.
type Result struct {
	Extracted    int
	Transform    TransformResult
	Load         *LoadResult
	Verification *VerificationReport
}

// Orchestrator runs the four pipeline phases against one source and
// one target provider. It is single-use per migration; adapters must
// not be shared with a concurrently running pipeline.
type Orchestrator struct {
	source platform.Provider
	target platform.Provider
	log    *bullets.Logger
}

// NewOrchestrator wires a pipeline for the given source/target pair.
func NewOrchestrator(source, target platform.Provider, log *bullets.Logger) *Orchestrator {
	return &Orchestrator{source: source, target: target, log: log}
}

// restrictExports keeps only the exports whose item IDs appear in only,
// preserving extraction order.
func restrictExports(exports []workitem.Export, only []workitem.ID) []workitem.Export {
	keep := make(map[string]bool, len(only))
	for _, id := range only {
		keep[id.String()] = true
	}
	out := make([]workitem.Export, 0, len(only))
	for _, export := range exports {
		if keep[export.Item.ID.String()] {
			out = append(out, export)
		}
	}
	return out
}

// Run executes Extract, Transform, Load, and Verify in order. The
// transform's target parameters are derived from the target adapter,
// never supplied by the caller. Per-item transform errors abort the
// run before Load unless the load options continue on error; Verify
// failures are findings in the report, not run failures.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}

	exports, err := Extract(ctx, o.source, opts.Filter)
	if err != nil {
		return result, err
	}
	if len(opts.Only) > 0 {
		exports = restrictExports(exports, opts.Only)
	}
	result.Extracted = len(exports)
	o.log.Info(fmt.Sprintf("Extracted %d items from %s", len(exports), o.source.Name()))

	topts := opts.Transform
	topts.TargetProvider = o.target.Name()
	topts.TargetCapabilities = o.target.Capabilities()
	result.Transform = Transform(exports, topts)
	for _, warning := range result.Transform.Warnings {
		o.log.Warn("Transform: " + warning)
	}
	for _, failure := range result.Transform.Errors {
		o.log.Warn(fmt.Sprintf("Transform: %s: %s", failure.Ref, failure.Reason))
	}
	if len(result.Transform.Errors) > 0 && !opts.Load.ContinueOnError {
		return result, &PhaseError{Phase: PhaseTransform,
			Err: fmt.Errorf("%d of %d items failed to transform", len(result.Transform.Errors), len(exports))}
	}

	result.Load, err = Load(ctx, o.target, result.Transform.Items, opts.Load)
	if err != nil {
		return result, err
	}
	o.log.Info(fmt.Sprintf("Loaded %d of %d items onto %s in %d batches",
		result.Load.Successful, len(result.Transform.Items), o.target.Name(), result.Load.Batches))

	if opts.SkipVerify || opts.Load.DryRun {
		return result, nil
	}
	result.Verification = Verify(ctx, o.target, result.Transform.Items, result.Load.IDMapping)
	o.log.Info(fmt.Sprintf("Verified %d/%d items (%d failed)",
		result.Verification.Successful, result.Verification.Total, result.Verification.Failed))
	return result, nil
}
