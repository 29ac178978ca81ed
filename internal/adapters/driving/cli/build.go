package cli

import (
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compose the final files into a new disk image",
	Long: `Build writes <name>_YYYYMMDDHHMM.nds into the game builds directory from
the final files. Only the newest builds are kept.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.Image == nil {
		return errNotConfigured("image")
	}
	out, err := svc.Image.BuildImage(commandContext(cmd))
	if err != nil {
		return err
	}
	cmd.Printf("Built %s\n", out)
	return nil
}
