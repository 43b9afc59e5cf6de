package admin

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oboe-board/oboe/backend/internal/setup"
	"github.com/oboe-board/oboe/shared/domain"
)

type threadRow struct {
	ThreadId domain.ThreadId `json:"thread_id"`
	Title    string          `json:"title"`
	Date     string          `json:"date"`
}

func newThreadsCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "Inspect stored threads",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print thread ids and titles, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withBackends(cmd.Context(), func(b *setup.Backends) error {
				heads, err := b.Records.ListThreads(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([]threadRow, 0, len(heads))
				for _, h := range heads {
					rows = append(rows, threadRow{ThreadId: h.ThreadId, Title: h.Title, Date: domain.DisplayDate(h.CreatedAt)})
				}
				return opts.print(cmd.OutOrStdout(), rows, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tDATE\tTITLE")
					for _, r := range rows {
						fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ThreadId, r.Date, r.Title)
					}
					tw.Flush()
				})
			})
		},
	})
	return cmd
}
