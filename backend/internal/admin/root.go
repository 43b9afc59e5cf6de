// Package admin implements oboe-admin, the operator CLI for schema and
// post id counter maintenance.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oboe-board/oboe/backend/internal/setup"
	"github.com/oboe-board/oboe/shared/config"
	"github.com/oboe-board/oboe/shared/logger"
	sharedpg "github.com/oboe-board/oboe/shared/storage/pg"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFolder string
	Format       string // "json" | "text"
}

func NewRootCmd() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:          "oboe-admin",
		Short:        "Maintenance commands for an oboe board",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "text" && opts.Format != "json" {
				return fmt.Errorf("invalid format %q: must be text or json", opts.Format)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFolder, "config_folder", "backend/config", "path to folder with configs")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newCountersCmd(opts))
	cmd.AddCommand(newThreadsCmd(opts))
	return cmd
}

// withBackends opens the configured stores for the duration of fn.
func (o *RootOptions) withBackends(ctx context.Context, fn func(*setup.Backends) error) error {
	cfg, err := config.Load(o.ConfigFolder)
	if err != nil {
		return err
	}
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	b, err := setup.OpenBackends(ctx, cfg, sharedpg.LightweightConnectionConfig())
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b)
}

// print writes v as JSON, or text via the given formatter.
func (o *RootOptions) print(w io.Writer, v any, text func(io.Writer)) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
