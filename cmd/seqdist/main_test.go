package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/hupe1980/seqdist"
	"github.com/hupe1980/seqdist/config"
	"github.com/hupe1980/seqdist/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(append(args, "--log-format", "none"))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

type cliFixture struct {
	fasta  string
	matrix string
	cpDir  string
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	dir := t.TempDir()
	f := &cliFixture{
		fasta:  filepath.Join(dir, "in.fasta"),
		matrix: filepath.Join(dir, "out.dist"),
		cpDir:  filepath.Join(dir, "cp"),
	}
	recs := testutil.NewRNG(7).Records(6, 20, 40)
	require.NoError(t, testutil.WriteFASTAFile(f.fasta, recs, 60))
	require.NoError(t, os.Mkdir(f.cpDir, 0o755))
	return f
}

func (f *cliFixture) runArgs(extra ...string) []string {
	return append([]string{"run",
		"--ncores", "1",
		"--distmatfname", f.matrix,
		"--fasta", f.fasta,
		"--measure", "kmer",
		"--submeasure", "cosine",
		"--measureopt", "3",
		"--checkpointdir", f.cpDir,
	}, extra...)
}

func TestCLI_RunStatusPrintExport(t *testing.T) {
	f := newCLIFixture(t)

	_, err := execute(t, f.runArgs()...)
	require.NoError(t, err)

	out, err := execute(t, "status", "--checkpointdir", f.cpDir)
	require.NoError(t, err)
	assert.Contains(t, out, "rows done:      6 / 6")
	assert.Contains(t, out, "state:          complete")
	assert.Contains(t, out, "kmer/cosine (3)")

	out, err = execute(t, "print", "--checkpointdir", f.cpDir)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "6", lines[0])

	byPath, err := execute(t, "print", f.matrix)
	require.NoError(t, err)
	assert.Equal(t, out, byPath)

	out, err = execute(t, "export", "mem://", "--checkpointdir", f.cpDir, "--compression", "lz4", "--verify")
	require.NoError(t, err)
	assert.Contains(t, out, "sequences:   6")
	assert.Contains(t, out, "verified:    ok")

	storeDir := t.TempDir()
	_, err = execute(t, "export", "file://"+storeDir, "--checkpointdir", f.cpDir, "--name", "m.sqdm", "--codec", "go-json")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(storeDir, "m.sqdm"))
}

func TestCLI_Restart(t *testing.T) {
	f := newCLIFixture(t)

	_, err := execute(t, f.runArgs()...)
	require.NoError(t, err)

	out, err := execute(t, "run", "--restart", "--checkpointdir", f.cpDir, "--printresult")
	require.NoError(t, err)
	// printresult is tracked, so the stored value wins.
	assert.Empty(t, out)
}

func TestCLI_ExitCodes(t *testing.T) {
	f := newCLIFixture(t)

	_, err := execute(t, "run", "--ncores", "abc")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))

	_, err = execute(t, "run", "--checkpointdir", f.cpDir, "--measure", "edit")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))

	_, err = execute(t, "export", "ftp://host/x", "--checkpointdir", f.cpDir)
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))

	_, err = execute(t, "run", "--log-level", "loud")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 130, exitCode(context.Canceled))
	assert.Equal(t, 2, exitCode(errUsage))
	assert.Equal(t, 4, exitCode(&seqdist.Error{Kind: seqdist.KindCorruption, Err: errors.New("bad")}))
}

func TestStopSignals(t *testing.T) {
	assert.ElementsMatch(t, []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}, stopSignals)
}

func TestRunFlags_Options(t *testing.T) {
	f := &runFlags{
		ncores:        3,
		distMatFile:   "m.dist",
		fasta:         "in.fa",
		measure:       config.MeasureEdit,
		measureOpt:    "cost.txt",
		checkpointDir: "cp",
		printResult:   true,
		restart:       true,
	}
	assert.Equal(t, config.Options{
		NCores:        3,
		DistMatFile:   "m.dist",
		Fasta:         "in.fa",
		Measure:       config.MeasureEdit,
		MeasureOpt:    "cost.txt",
		CheckpointDir: "cp",
		PrintResult:   true,
		Restart:       true,
	}, f.options())

	n, err := (&runFlags{memoryLimit: "2KiB"}).memoryLimitBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(2048), n)

	n, err = (&runFlags{}).memoryLimitBytes()
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = (&runFlags{memoryLimit: "lots"}).memoryLimitBytes()
	assert.ErrorIs(t, err, errUsage)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "seqdist version "+version)
}
