package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-insert documents as they are saved",
	Long: `Watch follows the translated documents and runs an only-changed insertion
of the story or menu files whenever a document is saved. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	addStageFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.Watcher == nil {
		return errNotConfigured("watch")
	}
	cmd.Println("Watching for document changes...")
	return svc.Watcher.Watch(commandContext(cmd), insertOptions(), func(ev driving.WatchEvent) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", ev.Change.Type, shortPath(ev.Change.Path))
		printReport(out, "insert", ev.Report)
		if ev.Err != nil && ev.Report == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", ev.Err)
		}
	})
}
