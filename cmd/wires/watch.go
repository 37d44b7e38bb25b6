package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/pborges/wires/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var wireNames []string
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Resolve wires again every time the circuit file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("wire") {
				wireNames = a.cfg.Wires
			}
			path := args[0]
			out := cmd.OutOrStdout()
			eval := func() {
				res, err := a.evalFile(path, wireNames, a.cfg.Overrides)
				if err != nil {
					level.Error(a.logger).Log("msg", "evaluation failed", "file", path, "err", err)
					return
				}
				printValues(out, res, false)
			}

			w, err := watch.New(path, eval, watch.Options{Logger: a.logger})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			eval()
			level.Info(a.logger).Log("msg", "watching", "file", path)
			return w.Run(ctx)
		},
	}
	cmd.Flags().StringSliceVarP(&wireNames, "wire", "w", nil, "wire to resolve (repeatable); default all")
	return cmd
}
