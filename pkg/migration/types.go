// Package migration implements the four-phase work-item migration
// pipeline: Extract, Transform, Load, Verify.
//
// Extract and Load talk to providers; Transform and Verify comparison
// are pure so they can be tested without any network surface. Items
// are correlated across phases by a deterministic token derived from
// the source ID, never by title.
package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/avollmer/workbridge/pkg/workitem"
)

var errValidation = errors.New("invalid item")

// Pipeline phase names, used in [PhaseError].
const (
	PhaseExtract   = "extract"
	PhaseTransform = "transform"
	PhaseLoad      = "load"
	PhaseVerify    = "verify"
)

// Missing-field policies: what Transform does with fields the target
// platform cannot represent.
const (
	PolicyIgnore      = "ignore"
	PolicyMetadata    = "metadata"
	PolicyDescription = "description"
)

// lostFieldsKey is the custom-field key the metadata policy records
// dropped fields under.
const lostFieldsKey = "migration.lost_fields"

// PhaseError names the pipeline phase a failure occurred in.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// TransformOptions steers the Transform phase. The target fields are
// filled in by the orchestrator from the target adapter.
type TransformOptions struct {
	// TargetProvider and TargetCapabilities describe the destination
	// platform so capability-driven field drops are decided up front.
	TargetProvider     string
	TargetCapabilities workitem.Capabilities

	// TargetTemplate names the destination process template, when the
	// destination resolves types through one.
	TargetTemplate string

	// PreserveIDs records each item's source ID as a custom field on
	// the import payload.
	PreserveIDs bool

	// UserMapping maps source usernames to target usernames. Unmapped
	// users are carried unchanged with a warning.
	UserMapping map[string]string

	// LabelMapping renames labels; labels without an entry pass
	// through unchanged.
	LabelMapping map[string]string

	// MissingFieldPolicy is one of the Policy constants. Empty means
	// ignore.
	MissingFieldPolicy string

	// FieldOverrides is merged into each import's custom fields after
	// the per-provider allowlist has been applied.
	FieldOverrides map[string]any

	// AddProvenance prefixes each description with the source ID.
	AddProvenance bool
}

// TransformedItem is one item ready for loading, correlated back to
// its source by Token.
type TransformedItem struct {
	Token      string
	SourceID   string
	Import     workitem.Import
	LostFields []string
}

// ItemFailure records a single item that could not be processed.
type ItemFailure struct {
	Ref    string
	Reason string
}

// TransformResult is the full outcome of the Transform phase. Mapped
// and Lost are field ledgers keyed by source ID.
type TransformResult struct {
	Items    []TransformedItem
	Warnings []string
	Errors   []ItemFailure
	Mapped   map[string][]string
	Lost     map[string][]string
}

// LoadOptions steers the Load phase.
type LoadOptions struct {
	// BatchSize caps the items created per batch; values below 1 mean
	// a single batch.
	BatchSize int

	// BatchDelay is the fixed pause between batches.
	BatchDelay time.Duration

	// ContinueOnError keeps loading after a per-item failure instead
	// of aborting the phase.
	ContinueOnError bool

	// DryRun synthesizes placeholder IDs without any provider calls.
	DryRun bool
}

// LoadResult is the outcome of the Load phase. IDMapping is keyed by
// correlation token and holds the canonical ID created on the target.
type LoadResult struct {
	Successful int
	Failures   []ItemFailure
	IDMapping  map[string]string
	Batches    int
}

// IntegrityIssue records one field discrepancy found during Verify.
type IntegrityIssue struct {
	SourceID string
	TargetID string
	Field    string
	Detail   string
}

// VerificationReport summarizes the Verify phase. Discrepancies are
// records, never errors.
type VerificationReport struct {
	Total      int
	Successful int
	Failed     int
	Issues     []IntegrityIssue
}

// CorrelationToken derives the deterministic token that correlates an
// item across pipeline phases from its source ID.
func CorrelationToken(sourceID string) string {
	sum := sha256.Sum256([]byte(sourceID))
	return hex.EncodeToString(sum[:6])
}
