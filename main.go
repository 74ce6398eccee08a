// Package main provides the entry point for the workbridge CLI tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sgaunet/bullets"
	"github.com/spf13/cobra"

	"github.com/avollmer/workbridge/internal/logger"
	"github.com/avollmer/workbridge/internal/security"
	"github.com/avollmer/workbridge/internal/timeutil"
	"github.com/avollmer/workbridge/internal/ui"
	"github.com/avollmer/workbridge/pkg/config"
	"github.com/avollmer/workbridge/pkg/gitremote"
	"github.com/avollmer/workbridge/pkg/migration"
	"github.com/avollmer/workbridge/pkg/platform"
	"github.com/avollmer/workbridge/pkg/workitem"
)

var (
	errSameProvider     = errors.New("source and target providers must differ")
	errNoSourceProvider = errors.New("no source provider given and none detected from the working directory")
	errMigrationAborted = errors.New("migration aborted")
)

var (
	logLevel   string
	configPath string
	log        *bullets.Logger
)

var rootCmd = &cobra.Command{
	Use:   "workbridge",
	Short: "Work-item aggregation and migration across GitHub, GitLab, and Azure DevOps",
	Long: `workbridge exposes GitHub issues, GitLab issues and epics, and Azure DevOps
work items behind one canonical model. It searches across platforms and
migrates items between them through an extract-transform-load-verify
pipeline.`,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate work items from one platform to another",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		return runMigrate(cmd.Context())
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search work items across every configured platform",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runSearch(cmd.Context(), args[0])
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate connectivity and credentials for every configured platform",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		return runCheck(cmd.Context())
	},
}

var migrateFlags struct {
	from            string
	to              string
	state           string
	labels          []string
	itemType        string
	batchSize       int
	batchDelay      time.Duration
	continueOnError bool
	dryRun          bool
	skipVerify      bool
	yes             bool
	interactive     bool
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info",
		"Set log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to the config file")

	migrateCmd.Flags().StringVar(&migrateFlags.from, "from", "",
		"Source provider (github, gitlab, azure); detected from the working directory when empty")
	migrateCmd.Flags().StringVar(&migrateFlags.to, "to", "", "Target provider (github, gitlab, azure)")
	migrateCmd.Flags().StringVar(&migrateFlags.state, "state", "", "Only migrate items in this state (open, closed)")
	migrateCmd.Flags().StringSliceVar(&migrateFlags.labels, "label", nil, "Only migrate items carrying these labels")
	migrateCmd.Flags().StringVar(&migrateFlags.itemType, "type", "", "Only migrate items of this canonical type")
	migrateCmd.Flags().IntVar(&migrateFlags.batchSize, "batch-size", 0, "Items per load batch (0 uses the config value)")
	migrateCmd.Flags().DurationVar(&migrateFlags.batchDelay, "batch-delay", 0, "Pause between load batches")
	migrateCmd.Flags().BoolVar(&migrateFlags.continueOnError, "continue-on-error", false,
		"Keep loading after per-item failures")
	migrateCmd.Flags().BoolVar(&migrateFlags.dryRun, "dry-run", false, "Run the pipeline without creating anything")
	migrateCmd.Flags().BoolVar(&migrateFlags.skipVerify, "skip-verify", false, "Skip the verification phase")
	migrateCmd.Flags().BoolVarP(&migrateFlags.yes, "yes", "y", false, "Skip the confirmation prompt")
	migrateCmd.Flags().BoolVarP(&migrateFlags.interactive, "interactive", "i", false,
		"Pick the items to migrate from a preview list")
	if err := migrateCmd.MarkFlagRequired("to"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(migrateCmd, searchCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", security.SanitizeString(err.Error()))
		os.Exit(1)
	}
}

func runMigrate(ctx context.Context) error {
	log = logger.NewLogger(logLevel)
	started := time.Now()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	sourceName, err := resolveSourceProvider()
	if err != nil {
		return err
	}
	if sourceName == migrateFlags.to {
		return fmt.Errorf("%w: %s", errSameProvider, sourceName)
	}

	source, err := newInitializedProvider(ctx, sourceName, cfg)
	if err != nil {
		return err
	}
	target, err := newInitializedProvider(ctx, migrateFlags.to, cfg)
	if err != nil {
		return err
	}

	opts, err := buildPipelineOptions(cfg)
	if err != nil {
		return err
	}

	if !migrateFlags.dryRun && (migrateFlags.interactive || !migrateFlags.yes) {
		matched, err := source.List(ctx, opts.Filter)
		if err != nil {
			return fmt.Errorf("failed to list source items: %w", err)
		}
		if migrateFlags.interactive {
			only, err := pickItems(matched)
			if err != nil {
				return err
			}
			opts.Only = only
		} else {
			confirmed, err := ui.NewPrompter().ConfirmMigration(len(matched), target.Name())
			if err != nil {
				return err
			}
			if !confirmed {
				return errMigrationAborted
			}
		}
	}

	result, err := migration.NewOrchestrator(source, target, log).Run(ctx, opts)
	if err != nil {
		return err
	}

	reportMigration(result)
	log.Info("Migration finished in " + timeutil.FormatDuration(time.Since(started)))
	return nil
}

func pickItems(matched []workitem.WorkItem) ([]workitem.ID, error) {
	preview := make([]ui.PreviewItem, len(matched))
	for i, item := range matched {
		preview[i] = ui.PreviewItem{
			SourceID: item.ID.String(),
			Title:    item.Title,
			Type:     string(item.Type),
		}
	}
	picked, err := ui.NewPrompter().SelectItems(preview)
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		return nil, errMigrationAborted
	}
	ids := make([]workitem.ID, 0, len(picked))
	for _, idx := range picked {
		ids = append(ids, matched[idx].ID)
	}
	return ids, nil
}

func resolveSourceProvider() (string, error) {
	if migrateFlags.from != "" {
		return migrateFlags.from, nil
	}
	repo, err := gitremote.Open(".")
	if err != nil {
		return "", errNoSourceProvider
	}
	remote, err := repo.DetectRemote()
	if err != nil {
		return "", fmt.Errorf("%w: %v", errNoSourceProvider, err)
	}
	log.Info("Detected source provider " + remote.Provider + " from origin remote")
	return remote.Provider, nil
}

func newInitializedProvider(ctx context.Context, name string, cfg *config.Config) (platform.Provider, error) {
	provider, err := platform.NewProvider(ctx, name, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", name, err)
	}
	if err := provider.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize %s provider: %w", name, err)
	}
	return provider, nil
}

func buildPipelineOptions(cfg *config.Config) (migration.Options, error) {
	batchSize := migrateFlags.batchSize
	if batchSize == 0 {
		batchSize = cfg.Migration.BatchSize
	}
	batchDelay := migrateFlags.batchDelay
	if batchDelay == 0 {
		batchDelay = time.Duration(cfg.Migration.BatchDelaySeconds) * time.Second
	}

	filter := platform.ListFilter{
		State:  workitem.State(migrateFlags.state),
		Labels: migrateFlags.labels,
	}
	if migrateFlags.itemType != "" {
		typ := workitem.Type(migrateFlags.itemType)
		if !typ.Valid() {
			return migration.Options{}, fmt.Errorf("unknown work item type %q", migrateFlags.itemType)
		}
		filter.Type = typ
	}

	// The process template only constrains type resolution when the
	// items are headed for Azure DevOps.
	targetTemplate := ""
	if migrateFlags.to == platform.ProviderAzure {
		targetTemplate = cfg.Azure.ProcessTemplate
	}

	return migration.Options{
		Filter: filter,
		Transform: migration.TransformOptions{
			TargetTemplate:     targetTemplate,
			UserMapping:        cfg.Migration.UserMapping,
			LabelMapping:       cfg.Migration.LabelMapping,
			MissingFieldPolicy: cfg.Migration.MissingFieldPolicy,
			AddProvenance:      cfg.Migration.AddProvenance,
		},
		Load: migration.LoadOptions{
			BatchSize:       batchSize,
			BatchDelay:      batchDelay,
			ContinueOnError: migrateFlags.continueOnError || cfg.Migration.ContinueOnError,
			DryRun:          migrateFlags.dryRun,
		},
		SkipVerify: migrateFlags.skipVerify,
	}, nil
}

func reportMigration(result *migration.Result) {
	for sourceID, lost := range result.Transform.Lost {
		log.Warn(fmt.Sprintf("Fields not migrated for %s: %s", sourceID, strings.Join(lost, ", ")))
	}
	for _, failure := range result.Load.Failures {
		log.Warn(fmt.Sprintf("Failed to load %s: %s", failure.Ref, security.SanitizeString(failure.Reason)))
	}
	if result.Verification != nil {
		for _, issue := range result.Verification.Issues {
			log.Warn(fmt.Sprintf("Integrity issue on %s (%s): %s", issue.TargetID, issue.Field, issue.Detail))
		}
	}
}

func runSearch(ctx context.Context, text string) error {
	log = logger.NewLogger(logLevel)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var providers []platform.Provider
	for _, name := range platform.EnabledProviders(cfg) {
		provider, err := newInitializedProvider(ctx, name, cfg)
		if err != nil {
			return err
		}
		providers = append(providers, provider)
	}
	if len(providers) == 0 {
		return errors.New("no providers configured")
	}

	for _, result := range platform.SearchAll(ctx, providers, text) {
		if result.Err != nil {
			security.LogWarning(log, "Search on "+result.Provider+" failed", result.Err)
			continue
		}
		log.Info(fmt.Sprintf("%s: %d matches", result.Provider, len(result.Items)))
		for _, item := range result.Items {
			fmt.Printf("%-40s %-8s %-6s %s\n", item.ID, item.Type, item.State, item.Title)
		}
	}
	return nil
}

func runCheck(ctx context.Context) error {
	log = logger.NewLogger(logLevel)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	names := platform.EnabledProviders(cfg)
	if len(names) == 0 {
		return errors.New("no providers configured")
	}

	var failed bool
	for _, name := range names {
		provider, err := newInitializedProvider(ctx, name, cfg)
		if err != nil {
			security.LogError(log, name, err)
			failed = true
			continue
		}
		caps := provider.Capabilities()
		log.Info(fmt.Sprintf("%s: ok (types %v, hierarchy depth %d)", name, caps.ItemTypes, caps.HierarchyDepth))
	}
	if failed {
		return errors.New("one or more providers failed the check")
	}
	return nil
}
