package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
)

var (
	withEditing      bool
	withProofreading bool
	withProblematic  bool
	onlyChanged      bool
	dryRun           bool
)

var insertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Write translations back into game files",
	Long: `Insert writes translated documents back into the game files.

Only entries marked Done are inserted by default; the --with-* flags opt in
further statuses. Entries that are not selected keep their source text.`,
}

var insertStoryCmd = &cobra.Command{
	Use:   "story",
	Short: "Rebuild the dialogue scripts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInsert(cmd, "story", func(ctx context.Context, in driving.Inserter, opts driving.InsertOptions) (*domain.Report, error) {
			return in.InsertStory(ctx, opts)
		})
	},
}

var insertMenuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Patch the configured menu files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInsert(cmd, "menu", func(ctx context.Context, in driving.Inserter, opts driving.InsertOptions) (*domain.Report, error) {
			return in.InsertMenu(ctx, opts)
		})
	},
}

var insertArchiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Repack the story archive from the rebuilt scripts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInsert(cmd, "archive", func(ctx context.Context, in driving.Inserter, _ driving.InsertOptions) (*domain.Report, error) {
			return in.PackArchive(ctx)
		})
	},
}

var insertAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Rebuild the story, repack the archive and patch the menus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInsert(cmd, "all", func(ctx context.Context, in driving.Inserter, opts driving.InsertOptions) (*domain.Report, error) {
			return in.InsertAll(ctx, opts)
		})
	},
}

func init() {
	addStageFlags(insertCmd)
	insertCmd.PersistentFlags().BoolVar(&onlyChanged, "only-changed", false, "skip documents unchanged since the last insertion")
	insertCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "encode and place everything without writing")
	insertCmd.AddCommand(insertStoryCmd)
	insertCmd.AddCommand(insertMenuCmd)
	insertCmd.AddCommand(insertArchiveCmd)
	insertCmd.AddCommand(insertAllCmd)
	rootCmd.AddCommand(insertCmd)
}

func addStageFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&withEditing, "with-editing", false, "also insert entries marked Editing")
	cmd.PersistentFlags().BoolVar(&withProofreading, "with-proofreading", false, "also insert entries marked Proofreading")
	cmd.PersistentFlags().BoolVar(&withProblematic, "with-problematic", false, "also insert entries marked Problematic")
}

// insertOptions collects the insertion flags.
func insertOptions() driving.InsertOptions {
	var stages []domain.Status
	if withEditing {
		stages = append(stages, domain.StatusEditing)
	}
	if withProofreading {
		stages = append(stages, domain.StatusProofreading)
	}
	if withProblematic {
		stages = append(stages, domain.StatusProblematic)
	}
	return driving.InsertOptions{Stages: stages, OnlyChanged: onlyChanged, DryRun: dryRun}
}

func runInsert(cmd *cobra.Command, title string, fn func(context.Context, driving.Inserter, driving.InsertOptions) (*domain.Report, error)) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.Inserter == nil {
		return errNotConfigured("insert")
	}
	opts := insertOptions()
	report, err := fn(commandContext(cmd), svc.Inserter, opts)
	if opts.DryRun {
		title += " (dry run)"
	}
	printReport(cmd.OutOrStdout(), "insert "+title, report)
	return err
}

func errNotConfigured(name string) error {
	return fmt.Errorf("%s service not configured", name)
}
