package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oboe-board/oboe/backend/internal/setup"
)

func newMigrateCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables of the configured databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withBackends(cmd.Context(), func(b *setup.Backends) error {
				if err := b.Migrate(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
				return nil
			})
		},
	}
}
