package admin

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oboe-board/oboe/backend/internal/allocator"
	"github.com/oboe-board/oboe/backend/internal/setup"
	"github.com/oboe-board/oboe/shared/domain"
)

type counterState struct {
	ThreadId  domain.ThreadId `json:"thread_id"`
	Counter   domain.PostId   `json:"counter"`
	MaxPostId domain.PostId   `json:"max_post_id,omitempty"`
}

func newCountersCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counters",
		Short: "Inspect and repair post id counters",
	}
	cmd.AddCommand(newCountersPeekCmd(opts))
	cmd.AddCommand(newCountersReconcileCmd(opts))
	return cmd
}

func parseThreadIds(args []string) ([]domain.ThreadId, error) {
	ids := make([]domain.ThreadId, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid thread id %q", arg)
		}
		ids = append(ids, domain.ThreadId(id))
	}
	return ids, nil
}

func newCountersPeekCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "peek <thread>",
		Short: "Print the last issued post id of a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseThreadIds(args)
			if err != nil {
				return err
			}
			return opts.withBackends(cmd.Context(), func(b *setup.Backends) error {
				value, err := allocator.New(b.Counters).Peek(cmd.Context(), ids[0])
				if err != nil {
					return err
				}
				state := counterState{ThreadId: ids[0], Counter: value}
				return opts.print(cmd.OutOrStdout(), state, func(w io.Writer) {
					fmt.Fprintf(w, "thread %d: %d\n", state.ThreadId, state.Counter)
				})
			})
		},
	}
}

func newCountersReconcileCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [thread...]",
		Short: "Raise counters to the highest stored post id",
		Long: `Raise each thread's counter to at least the highest post id stored for it.

Use after the counter medium was lost or restored from an older backup, so
that no stored id is issued again. Counters are never lowered. Without
arguments every thread is reconciled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseThreadIds(args)
			if err != nil {
				return err
			}
			return opts.withBackends(cmd.Context(), func(b *setup.Backends) error {
				ctx := cmd.Context()
				if len(ids) == 0 {
					heads, err := b.Records.ListThreads(ctx)
					if err != nil {
						return err
					}
					for _, h := range heads {
						ids = append(ids, h.ThreadId)
					}
				}

				alloc := allocator.New(b.Counters)
				states := make([]counterState, 0, len(ids))
				for _, id := range ids {
					maxId, err := b.Records.MaxPostId(ctx, id)
					if err != nil {
						return err
					}
					value, err := alloc.Reconcile(ctx, id, maxId)
					if err != nil {
						return err
					}
					states = append(states, counterState{ThreadId: id, Counter: value, MaxPostId: maxId})
				}

				return opts.print(cmd.OutOrStdout(), states, func(w io.Writer) {
					for _, s := range states {
						fmt.Fprintf(w, "thread %d: counter %d (max stored %d)\n", s.ThreadId, s.Counter, s.MaxPostId)
					}
				})
			})
		},
	}
}
