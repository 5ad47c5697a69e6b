package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/seqdist"
	"github.com/hupe1980/seqdist/config"
	"github.com/spf13/cobra"
)

func statusCommand(g *globalFlags) *cobra.Command {
	var (
		checkpointDir string
		pending       int
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the progress recorded in a checkpoint directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := g.logger()
			if err != nil {
				return err
			}
			st, err := seqdist.ReadStatus(checkpointDir, seqdist.WithLogger(logger))
			if err != nil {
				return err
			}
			printStatus(cmd, st, pending)
			return nil
		},
	}

	cmd.Flags().StringVarP(&checkpointDir, "checkpointdir", "c", config.DefaultCheckpointDir, "Checkpoint directory")
	cmd.Flags().IntVar(&pending, "pending", 10, "List at most this many pending rows (0 for all)")
	return cmd
}

func printStatus(cmd *cobra.Command, st *seqdist.Status, limit int) {
	w := cmd.OutOrStdout()
	o := st.Options
	done := st.Done.GetCardinality()

	fmt.Fprintf(w, "checkpoint dir: %s\n", o.CheckpointDir)
	fmt.Fprintf(w, "fasta:          %s\n", o.Fasta)
	fmt.Fprintf(w, "matrix:         %s (%s)\n", o.DistMatFile, humanize.IBytes(uint64(st.MatrixBytes)))
	fmt.Fprintf(w, "measure:        %s\n", measureString(&o))
	fmt.Fprintf(w, "workers:        %d\n", o.NCores)
	fmt.Fprintf(w, "sequences:      %s\n", humanize.Comma(int64(st.N)))
	fmt.Fprintf(w, "rows done:      %s / %s (%s%%)\n",
		humanize.Comma(int64(done)), humanize.Comma(int64(st.N)),
		humanize.FtoaWithDigits(100*float64(done)/float64(max(st.N, 1)), 1))

	if st.Complete() {
		fmt.Fprintln(w, "state:          complete")
		return
	}
	fmt.Fprintln(w, "state:          incomplete (resume with: seqdist run --restart)")

	rows := st.Pending(limit)
	strs := make([]string, len(rows))
	for i, r := range rows {
		strs[i] = fmt.Sprint(r)
	}
	more := ""
	if limit > 0 && uint64(st.N)-done > uint64(len(rows)) {
		more = " ..."
	}
	fmt.Fprintf(w, "pending rows:   %s%s\n", strings.Join(strs, " "), more)
}

func measureString(o *config.Options) string {
	s := o.Measure
	if o.SubMeasure != "" {
		s += "/" + o.SubMeasure
	}
	if o.MeasureOpt != "" {
		s += " (" + o.MeasureOpt + ")"
	}
	return s
}
