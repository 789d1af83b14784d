// Package cli implements the glolotto command line: ingestion runs, raw document
// ingestion, reports and a few read commands rendered as tables
package cli

import (
	"context"

	"glolotto/internal/platform/config"
	resultsmod "glolotto/internal/services/results/module"

	"github.com/spf13/cobra"
)

// Opener opens the results module the commands run against
type Opener func(ctx context.Context) (*resultsmod.Opened, error)

// OpenFromEnv opens the store and module selected by the LOTTO_ environment
func OpenFromEnv(ctx context.Context) (*resultsmod.Opened, error) {
	return resultsmod.Open(ctx, config.New())
}

type app struct {
	open Opener
	res  *resultsmod.Opened
}

// NewRoot builds the command tree
func NewRoot(open Opener) *cobra.Command {
	a := &app{open: open}

	root := &cobra.Command{
		Use:           "glolotto",
		Short:         "glolotto fetches, stores and reports Thai government lottery results.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		a.fetchCmd(),
		a.yearCmd(),
		a.ingestRawCmd(),
		a.reportCmd(),
		a.schemaCmd(),
		a.latestCmd(),
		a.searchCmd(),
		a.showCmd(),
	)
	return root
}

// with opens the store around one command run
func (a *app) with(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		res, err := a.open(cmd.Context())
		if err != nil {
			return err
		}
		a.res = res
		defer func() {
			if cerr := res.Close(context.WithoutCancel(cmd.Context())); err == nil {
				err = cerr
			}
			a.res = nil
		}()
		return run(cmd, args)
	}
}
