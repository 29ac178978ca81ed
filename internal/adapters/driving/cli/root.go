// Package cli provides the scenetext command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scenetext/internal/core/ports/driven"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
	"github.com/custodia-labs/scenetext/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

var (
	projectPath string
	verbose     bool
)

// Services are the driving ports the commands call.
type Services struct {
	Extractor driving.Extractor
	Inserter  driving.Inserter
	Validator driving.Validator
	Status    driving.StatusReporter
	Image     driving.ImageService
	Watcher   driving.Watcher
	Runs      driving.RunHistory

	// Close releases stores opened for the services. May be nil.
	Close func() error
}

// ProjectConfig is the project file seen both as keys and as a typed project.
type ProjectConfig interface {
	driven.ConfigStore
	driven.ProjectStore
}

// Bootstrap builds the services for the project file at path.
type Bootstrap func(path string) (*Services, error)

// ConfigOpener opens the project file at path, which may not exist yet.
type ConfigOpener func(path string) (ProjectConfig, error)

var (
	bootstrap  Bootstrap
	openConfig ConfigOpener
	services   *Services
)

var rootCmd = &cobra.Command{
	Use:   "scenetext",
	Short: "Extract and insert game script text for translation",
	Long: `scenetext turns the story archive and fixed-layout menu files of a game
into XML documents for translators, then writes the translations back.

Run "scenetext init" in an empty directory to create project.toml, then
"scenetext extract image <game.nds>" to start.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectPath, "project", "p", "project.toml", "path to the project file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress for every file")
}

// Execute runs the root command. boot is called lazily by commands that
// need the pipeline; config backs the init and config commands.
func Execute(ctx context.Context, boot Bootstrap, config ConfigOpener) error {
	bootstrap, openConfig = boot, config
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// loadServices builds the services on first use.
func loadServices() (*Services, error) {
	if services != nil {
		return services, nil
	}
	if bootstrap == nil {
		return nil, errors.New("services not configured")
	}
	svc, err := bootstrap(projectPath)
	if err != nil {
		return nil, err
	}
	services = svc
	return services, nil
}

func closeServices() {
	if services == nil || services.Close == nil {
		return
	}
	if err := services.Close(); err != nil {
		logger.Warn("close: %v", err)
	}
	services = nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
