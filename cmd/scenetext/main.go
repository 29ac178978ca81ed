// Command scenetext extracts game script text for translation and inserts
// the translations back.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/scenetext/internal/adapters/driven/backup"
	"github.com/custodia-labs/scenetext/internal/adapters/driven/config/file"
	"github.com/custodia-labs/scenetext/internal/adapters/driven/document/xmldoc"
	"github.com/custodia-labs/scenetext/internal/adapters/driven/process"
	"github.com/custodia-labs/scenetext/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/scenetext/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/scenetext/internal/adapters/driven/watch"
	"github.com/custodia-labs/scenetext/internal/adapters/driving/cli"
	"github.com/custodia-labs/scenetext/internal/codec"
	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driven"
	"github.com/custodia-labs/scenetext/internal/core/services"
	"github.com/custodia-labs/scenetext/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, bootstrap, openConfig)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func openConfig(path string) (cli.ProjectConfig, error) {
	return file.NewConfigStore(path)
}

// bootstrap wires the adapters for the project file at path into the services.
func bootstrap(path string) (*cli.Services, error) {
	store, err := file.NewConfigStore(path)
	if err != nil {
		return nil, fmt.Errorf("open project: %w", err)
	}
	project, err := store.Project()
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w (run 'scenetext init' to create one)", err)
	}
	if err != nil {
		return nil, err
	}

	dialect, err := file.NewDialectStore().Dialect(project.Resolve(project.Paths.Dialect))
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("no dialect file at %s, using the built-in dialect without character tables", project.Paths.Dialect)
		dialect, err = codec.TalesDialect(), nil
	}
	if err != nil {
		return nil, err
	}
	c, err := codec.New(dialect)
	if err != nil {
		return nil, err
	}

	state := project.Resolve(project.Paths.State)
	var ledger driven.BuildLedger
	ledger, err = sqlite.NewStore(state)
	if err != nil {
		logger.Warn("ledger unavailable, changes are tracked for this run only: %v", err)
		ledger = memory.NewLedger()
	}

	runner := process.NewRunner(project.Tools.LaunchesPerSecond, process.Exec)
	ws := &services.Workspace{
		Project: project,
		Codec:   c,
		Docs:    xmldoc.NewStore(),
		Ledger:  ledger,
		Backups: backup.NewStore(project.Root, filepath.Join(state, "backups")),
		LZSS:    process.NewLZSS(runner, project.Tools.LZSS),
		BLZ:     process.NewBLZ(runner, project.Tools.BLZ),
		Image:   process.NewNDSTool(runner, project.Tools.NDSTool),
	}
	logger.Debug("project %q at %s", project.Name, project.Root)

	return &cli.Services{
		Extractor: services.NewExtractService(ws),
		Inserter:  services.NewInsertService(ws),
		Validator: services.NewValidateService(ws),
		Status:    services.NewStatusService(ws),
		Image:     services.NewImageService(ws),
		Watcher:   services.NewWatchService(ws, watch.New(xmldoc.Ext)),
		Runs:      services.NewRunService(ws),
		Close:     ledger.Close,
	}, nil
}
