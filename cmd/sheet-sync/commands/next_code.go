package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNextCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-code",
		Short: "Print the next student code without reserving it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(nil, func(rt *runtime) error {
				code, err := rt.students.NextCode(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), code)
				return nil
			})
		},
	}
}
