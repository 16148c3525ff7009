package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/dms-admin-api/internal/service"
	"github.com/noah-isme/dms-admin-api/pkg/storage"
)

func newExportCmd() *cobra.Command {
	var (
		roster string
		format string
		dir    string
		maxAge time.Duration
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a roster snapshot in the spreadsheet column layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch service.Roster(roster) {
			case service.RosterTeachers, service.RosterStudents:
			default:
				return fmt.Errorf("unknown roster %q (want teachers or students)", roster)
			}
			store, err := storage.NewLocalStorage(dir)
			if err != nil {
				return err
			}
			return withRuntime(store, func(rt *runtime) error {
				path, err := rt.exports.Archive(cmd.Context(), service.Roster(roster), service.ExportFormat(format))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				if maxAge <= 0 {
					return nil
				}
				removed, err := store.CleanupOlderThan(maxAge)
				if err != nil {
					return err
				}
				for _, name := range removed {
					fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", name)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&roster, "roster", "students", "Roster to export: teachers or students")
	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or pdf")
	cmd.Flags().StringVar(&dir, "dir", "./exports", "Directory for snapshots")
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Remove snapshots older than this after writing")
	return cmd
}
