package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/dms-admin-api/internal/models"
)

func newPullCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:       "pull students|teachers|all",
		Short:     "Pull spreadsheet rows into the store",
		Long:      "Reads the enrollment and/or teacher tab and creates or updates matching store records. Row failures are listed without aborting the run.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"students", "teachers", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(nil, func(rt *runtime) error {
				return runPull(cmd.Context(), cmd.OutOrStdout(), rt.sync, args[0], asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func runPull(ctx context.Context, out io.Writer, sync puller, target string, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var pulls []func(context.Context) (*models.PullResult, error)
	switch target {
	case "students":
		pulls = append(pulls, sync.PullStudents)
	case "teachers":
		pulls = append(pulls, sync.PullTeachers)
	default:
		pulls = append(pulls, sync.PullStudents, sync.PullTeachers)
	}

	results := make([]*models.PullResult, 0, len(pulls))
	for _, pull := range pulls {
		result, err := pull(ctx)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		printPullResult(out, r)
	}
	return nil
}

func printPullResult(out io.Writer, r *models.PullResult) {
	fmt.Fprintf(out, "%s: %d rows, %d created, %d updated, %d failed (%s)\n",
		r.Tab, r.Rows, r.Created, r.Updated, r.Failed, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	if len(r.Errors) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tKEY\tREASON")
	for _, e := range r.Errors {
		fmt.Fprintf(w, "%d\t%s\t%s\n", e.RowNumber, e.Key, e.Reason)
	}
	_ = w.Flush()
}
