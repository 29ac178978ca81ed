package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/scenetext/internal/adapters/driving/tui"
)

// runApp starts the interactive browser. Replaced in tests.
var runApp = (*tui.App).Run

// interactive reports whether stdin and stdout are a terminal. Replaced in tests.
var interactive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse documents and their entries interactively",
	Long: `Browse opens a terminal view listing every document with its progress.
Open a document to read its entries, optionally hiding the ones already done.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	if !interactive() {
		return errors.New("browse needs an interactive terminal, use 'scenetext status' instead")
	}
	svc, err := loadServices()
	if err != nil {
		return err
	}
	app, err := tui.NewApp(commandContext(cmd), &tui.Ports{Status: svc.Status})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	if err := runApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
