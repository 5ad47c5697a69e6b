// Command seqdist computes checkpointed all-against-all distance matrices
// for the sequences of a FASTA file.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hupe1980/seqdist"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logFormat string
	logLevel  string
}

func (g *globalFlags) logger() (*seqdist.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return nil, fmt.Errorf("%w: log level %q", errUsage, g.logLevel)
	}
	switch strings.ToLower(g.logFormat) {
	case "text":
		return seqdist.NewTextLogger(level), nil
	case "json":
		return seqdist.NewJSONLogger(level), nil
	case "none":
		return seqdist.NoopLogger(), nil
	default:
		return nil, fmt.Errorf("%w: log format %q (text, json, none)", errUsage, g.logFormat)
	}
}

// stopSignals cancel a run. Workers stop after their current row.
var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

// errUsage marks command line mistakes.
var errUsage = errors.New("usage error")

func newRootCommand() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "seqdist",
		Short: "Checkpointed pairwise distance matrices for sequences",
		Long: `seqdist computes the N x N distance matrix of the sequences in a FASTA
file with the edit distance or a k-mer frequency distance. The matrix is
stored as a memory-mapped triangle and every finished row is checkpointed,
so interrupted runs can be resumed with --restart.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})
	rootCmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "Log format: text, json or none")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Minimum log level: debug, info, warn, error")

	rootCmd.AddCommand(runCommand(g))
	rootCmd.AddCommand(statusCommand(g))
	rootCmd.AddCommand(printCommand(g))
	rootCmd.AddCommand(exportCommand(g))
	rootCmd.AddCommand(versionCommand())
	return rootCmd
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, errUsage) {
		return seqdist.KindConfig.ExitCode()
	}
	var e *seqdist.Error
	if errors.As(err, &e) {
		return e.Kind.ExitCode()
	}
	if errors.Is(err, context.Canceled) {
		return seqdist.KindInterrupted.ExitCode()
	}
	return seqdist.KindUnknown.ExitCode()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), stopSignals...)
	defer stop()

	err := newRootCommand().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seqdist: %v\n", err)
	}
	stop()
	os.Exit(exitCode(err))
}
