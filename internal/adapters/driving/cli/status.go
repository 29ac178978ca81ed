package cli

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [document]",
	Short: "Show translation progress",
	Long: `Status counts the entries of each document by workflow status. Without an
argument every story and menu document is listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.Status == nil {
		return errNotConfigured("status")
	}
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	docs, err := svc.Status.Status(commandContext(cmd), path)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		cmd.Println("No documents. Run 'scenetext extract story' first.")
		return nil
	}
	printStatus(cmd.OutOrStdout(), docs)
	return nil
}
