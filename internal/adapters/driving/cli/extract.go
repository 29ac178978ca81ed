package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
)

var extractReplace bool

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract game files into translation documents",
	Long: `Extract unpacks the game and writes one XML document per dialogue script
and per configured menu file.

Existing documents are kept unless --replace is given. With --replace the
documents are regenerated and translations whose pointer offsets and source
text still match are carried over.`,
}

var extractImageCmd = &cobra.Command{
	Use:   "image [game.nds]",
	Short: "Unpack the disk image into the original files",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExtractImage,
}

var extractArchiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Unpack and decompress the story archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runExtract(cmd, "archive", func(ctx context.Context, ex driving.Extractor) (*domain.Report, error) {
			return ex.ExtractArchive(ctx)
		})
	},
}

var extractStoryCmd = &cobra.Command{
	Use:   "story",
	Short: "Write a document for every dialogue script",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runExtract(cmd, "story", func(ctx context.Context, ex driving.Extractor) (*domain.Report, error) {
			return ex.ExtractStory(ctx, driving.ExtractOptions{Replace: extractReplace})
		})
	},
}

var extractMenuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Write a document for every configured menu file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runExtract(cmd, "menu", func(ctx context.Context, ex driving.Extractor) (*domain.Report, error) {
			return ex.ExtractMenu(ctx, driving.ExtractOptions{Replace: extractReplace})
		})
	},
}

func init() {
	extractCmd.PersistentFlags().BoolVar(&extractReplace, "replace", false, "regenerate existing documents, keeping matching translations")
	extractCmd.AddCommand(extractImageCmd)
	extractCmd.AddCommand(extractArchiveCmd)
	extractCmd.AddCommand(extractStoryCmd)
	extractCmd.AddCommand(extractMenuCmd)
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, title string, fn func(context.Context, driving.Extractor) (*domain.Report, error)) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.Extractor == nil {
		return errNotConfigured("extract")
	}
	report, err := fn(commandContext(cmd), svc.Extractor)
	printReport(cmd.OutOrStdout(), "extract "+title, report)
	return err
}

func runExtractImage(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.Image == nil {
		return errNotConfigured("image")
	}
	image := ""
	if len(args) > 0 {
		image = args[0]
	}
	if err := svc.Image.ExtractImage(commandContext(cmd), image); err != nil {
		return err
	}
	cmd.Println("Disk image extracted.")
	return nil
}
