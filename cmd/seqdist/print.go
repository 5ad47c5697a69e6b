package main

import (
	"github.com/hupe1980/seqdist"
	"github.com/hupe1980/seqdist/config"
	"github.com/spf13/cobra"
)

func printCommand(g *globalFlags) *cobra.Command {
	var checkpointDir string

	cmd := &cobra.Command{
		Use:   "print [matrix-file]",
		Short: "Print a matrix file in square form",
		Long: `Print a matrix file in square form with two decimals. Cells below the
diagonal are printed as -1. Without an argument the matrix recorded in the
checkpoint directory is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := g.logger()
			if err != nil {
				return err
			}
			optFns := []seqdist.Option{
				seqdist.WithLogger(logger),
				seqdist.WithOutput(cmd.OutOrStdout()),
			}

			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				st, err := seqdist.ReadStatus(checkpointDir, optFns...)
				if err != nil {
					return err
				}
				path = st.Options.DistMatFile
			}
			return seqdist.PrintMatrix(path, optFns...)
		},
	}

	cmd.Flags().StringVarP(&checkpointDir, "checkpointdir", "c", config.DefaultCheckpointDir, "Checkpoint directory")
	return cmd
}
