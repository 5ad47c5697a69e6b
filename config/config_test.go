package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions(t *testing.T) Options {
	t.Helper()
	fasta := filepath.Join(t.TempDir(), "seqs.fa")
	require.NoError(t, os.WriteFile(fasta, []byte(">a\nACGT\n"), 0o644))

	o := Default()
	o.NCores = 1
	o.DistMatFile = filepath.Join(t.TempDir(), "dist.mat")
	o.Fasta = fasta
	o.Measure = MeasureKmer
	return o
}

func TestDefault(t *testing.T) {
	o := Default()
	assert.Equal(t, runtime.NumCPU(), o.NCores)
	assert.Equal(t, DefaultCheckpointDir, o.CheckpointDir)
	assert.False(t, o.Restart)
	assert.False(t, o.PrintResult)
}

func TestValidateNCores(t *testing.T) {
	for _, n := range []int{1, runtime.NumCPU()} {
		o := Options{NCores: n}
		assert.NoError(t, o.ValidateNCores(), "ncores=%d", n)
	}
	for _, n := range []int{-1, 0, runtime.NumCPU() + 1} {
		o := Options{NCores: n}
		err := o.ValidateNCores()
		assert.ErrorIs(t, err, ErrInvalidOption, "ncores=%d", n)
		var oe *OptionError
		require.ErrorAs(t, err, &oe)
		assert.Equal(t, "ncores", oe.Name)
	}
}

func TestValidate(t *testing.T) {
	o := validOptions(t)
	require.NoError(t, o.Validate())

	tests := []struct {
		name   string
		mutate func(o *Options)
		want   error
		field  string
	}{
		{"zero cores", func(o *Options) { o.NCores = 0 }, ErrInvalidOption, "ncores"},
		{"too many cores", func(o *Options) { o.NCores = runtime.NumCPU() + 1 }, ErrInvalidOption, "ncores"},
		{"no matrix", func(o *Options) { o.DistMatFile = "" }, ErrMissingOption, "distmatfname"},
		{"no fasta", func(o *Options) { o.Fasta = "" }, ErrMissingOption, "fasta"},
		{"unknown measure", func(o *Options) { o.Measure = "hamming" }, ErrInvalidOption, "measure"},
		{"no checkpoint dir", func(o *Options) { o.CheckpointDir = "" }, ErrMissingOption, "checkpointdir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOptions(t)
			tt.mutate(&o)
			err := o.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var oe *OptionError
			require.ErrorAs(t, err, &oe)
			assert.Equal(t, tt.field, oe.Name)
		})
	}
}

func TestValidate_MissingFastaFile(t *testing.T) {
	o := validOptions(t)
	o.Fasta = filepath.Join(t.TempDir(), "absent.fa")

	err := o.Validate()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	o := Options{NCores: 0, CheckpointDir: "cp"}
	err := o.Validate()
	require.Error(t, err)
	for _, name := range []string{"ncores", "distmatfname", "fasta", "measure"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestValidate_RestartOnlyNeedsCheckpointDir(t *testing.T) {
	o := Options{Restart: true, CheckpointDir: "cp"}
	assert.NoError(t, o.Validate())

	o.CheckpointDir = ""
	assert.ErrorIs(t, o.Validate(), ErrMissingOption)
}

func TestTracked_Order(t *testing.T) {
	var names []string
	for _, f := range Tracked() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"ncores", "distmatfname", "fasta", "measure",
		"submeasure", "measureopt", "checkpointdir", "printresult",
	}, names)
}

func TestTracked_GetSet(t *testing.T) {
	src := Options{
		NCores:        3,
		DistMatFile:   "m.bin",
		Fasta:         "in.fa",
		Measure:       MeasureKmer,
		SubMeasure:    "euclidean",
		MeasureOpt:    "7",
		CheckpointDir: "cp",
		PrintResult:   true,
		Restart:       true,
	}

	var dst Options
	for _, f := range Tracked() {
		require.NoError(t, f.Set(&dst, f.Get(&src)), f.Name)
	}

	want := src
	want.Restart = false
	assert.Equal(t, want, dst)
}

func TestTracked_SetRejectsBadValues(t *testing.T) {
	fields := map[string]Field{}
	for _, f := range Tracked() {
		fields[f.Name] = f
	}

	var o Options
	assert.Error(t, fields["ncores"].Set(&o, "four"))
	assert.Error(t, fields["printresult"].Set(&o, "yes"))
}
