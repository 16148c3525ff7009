// Package commands implements the sheet-sync CLI used by operators to
// reconcile the store with the spreadsheet outside the API server.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/noah-isme/dms-admin-api/internal/app"
	"github.com/noah-isme/dms-admin-api/internal/models"
	"github.com/noah-isme/dms-admin-api/internal/service"
	"github.com/noah-isme/dms-admin-api/pkg/config"
	"github.com/noah-isme/dms-admin-api/pkg/logger"
)

type puller interface {
	PullStudents(ctx context.Context) (*models.PullResult, error)
	PullTeachers(ctx context.Context) (*models.PullResult, error)
}

type codePreviewer interface {
	NextCode(ctx context.Context) (string, error)
}

type archiver interface {
	Archive(ctx context.Context, roster service.Roster, format service.ExportFormat) (string, error)
}

// runtime is the slice of the container the commands need.
type runtime struct {
	sync     puller
	students codePreviewer
	exports  archiver
	close    func()
}

// loadRuntime connects to the store. Tests replace it with fakes.
var loadRuntime = func(storage service.FileStorage) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	container, err := app.New(cfg, logr, storage)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &runtime{
		sync:     container.Sync,
		students: container.Students,
		exports:  container.Exports,
		close: func() {
			container.Close()
			_ = logr.Sync()
		},
	}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sheet-sync",
		Short: "Reconcile the admin store with the school spreadsheet",
		Long: `sheet-sync runs the spreadsheet reconciliation jobs against the same
store and configuration as the API server.

Examples:
  # Pull enrollment rows into the store
  sheet-sync pull students

  # Preview the next student code
  sheet-sync next-code

  # Snapshot the teacher roster as PDF and drop snapshots older than 30 days
  sheet-sync export --roster teachers --format pdf --dir ./exports --max-age 720h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPullCmd(), newNextCodeCmd(), newExportCmd())
	return root
}

// Execute runs the CLI. An interrupt cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func withRuntime(storage service.FileStorage, fn func(rt *runtime) error) error {
	rt, err := loadRuntime(storage)
	if err != nil {
		return err
	}
	if rt.close != nil {
		defer rt.close()
	}
	return fn(rt)
}
